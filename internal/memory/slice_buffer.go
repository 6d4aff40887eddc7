package memory

import (
	"math/bits"
	"unsafe"

	"github.com/parquet-go/rowbinary/internal/unsafecast"
)

// slice is a wrapper around a slice to enable pooling.
type slice[T Datum] struct {
	data []T
}

// SliceBuffer is a buffer that stores data in a single contiguous slice.
// The slice grows by moving to larger size buckets from pools as needed, and
// consumed elements can be discarded from the front to make room at the back.
//
// The zero value is an empty buffer ready to use.
type SliceBuffer[T Datum] struct {
	slice *slice[T]
}

const (
	minBucketBits = 10 // 1 KiB
	maxBucketBits = 23 // 8 MiB
	numBuckets    = maxBucketBits - minBucketBits + 1
)

var slicePools [numBuckets]Pool[slice[byte]]

// Append adds data to the buffer, growing the slice as needed by promoting to
// larger pool buckets.
func (b *SliceBuffer[T]) Append(data ...T) {
	if len(data) == 0 {
		return
	}
	b.Grow(len(data))
	b.slice.data = append(b.slice.data, data...)
}

// AppendValue adds a single value to the buffer.
func (b *SliceBuffer[T]) AppendValue(value T) {
	b.Grow(1)
	b.slice.data = append(b.slice.data, value)
}

// Grow ensures that the buffer can hold n more elements without moving to
// another slice.
func (b *SliceBuffer[T]) Grow(n int) {
	if n <= 0 {
		return
	}
	length := b.Len()
	if b.slice != nil && length+n <= cap(b.slice.data) {
		return
	}
	elemSize := int(unsafe.Sizeof(*new(T)))
	newSlice := getSliceFromPool[T]((length+n)*elemSize, elemSize)
	if b.slice != nil {
		newSlice.data = append(newSlice.data, b.slice.data...)
		putSliceToPool(b.slice, elemSize)
	}
	b.slice = newSlice
}

// Spare returns the unused capacity of the buffer. Elements written to it
// become part of the buffer after a call to Resize.
func (b *SliceBuffer[T]) Spare() []T {
	if b.slice == nil {
		return nil
	}
	return b.slice.data[len(b.slice.data):cap(b.slice.data)]
}

// Resize sets the length of the buffer to n, growing it if needed. Elements
// exposed by growing the length have unspecified values unless they were
// written through Spare.
func (b *SliceBuffer[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n > b.Cap() {
		b.Grow(n - b.Len())
	}
	if b.slice != nil {
		b.slice.data = b.slice.data[:n]
	}
}

// Discard removes the first n elements of the buffer, moving the remaining
// ones to the front of the slice.
func (b *SliceBuffer[T]) Discard(n int) {
	if b.slice == nil || n <= 0 {
		return
	}
	data := b.slice.data
	if n >= len(data) {
		b.slice.data = data[:0]
		return
	}
	m := copy(data, data[n:])
	b.slice.data = data[:m]
}

// Reset returns the slice to its pool and resets the buffer to empty.
func (b *SliceBuffer[T]) Reset() {
	if b.slice != nil {
		elemSize := int(unsafe.Sizeof(*new(T)))
		putSliceToPool(b.slice, elemSize)
		b.slice = nil
	}
}

// Len returns the number of elements currently in the buffer.
func (b *SliceBuffer[T]) Len() int {
	if b.slice == nil {
		return 0
	}
	return len(b.slice.data)
}

// Cap returns the number of elements the buffer can hold before growing.
func (b *SliceBuffer[T]) Cap() int {
	if b.slice == nil {
		return 0
	}
	return cap(b.slice.data)
}

// Slice returns a view of the current data.
// The returned slice is only valid until the next call to a method that
// modifies the buffer.
func (b *SliceBuffer[T]) Slice() []T {
	if b.slice == nil {
		return nil
	}
	return b.slice.data
}

func findBucket(requiredBytes int) int {
	if requiredBytes <= 0 {
		return 0
	}
	bitLen := bits.Len(uint(requiredBytes - 1))
	if bitLen < minBucketBits {
		return 0
	}
	return bitLen - minBucketBits
}

func bucketSize(bucketIndex int) int {
	return 1 << (minBucketBits + bucketIndex)
}

func getSliceFromPool[T Datum](requiredBytes, elemSize int) *slice[T] {
	bucketIndex := findBucket(requiredBytes)
	if bucketIndex >= numBuckets {
		// Oversized slices are not pooled.
		return &slice[T]{data: make([]T, 0, (requiredBytes+elemSize-1)/elemSize)}
	}

	byteSlice := slicePools[bucketIndex].Get(
		func() *slice[byte] {
			return &slice[byte]{data: make([]byte, 0, bucketSize(bucketIndex))}
		},
		func(s *slice[byte]) {
			s.data = s.data[:0]
		},
	)

	typeSlice := (*slice[T])(unsafe.Pointer(byteSlice))
	typeSlice.data = unsafecast.Slice[T](byteSlice.data)
	return typeSlice
}

func putSliceToPool[T Datum](s *slice[T], elemSize int) {
	if s == nil || s.data == nil {
		return
	}

	byteLen := cap(s.data) * elemSize
	bucketIndex := findBucket(byteLen)
	if bucketIndex >= numBuckets || bucketSize(bucketIndex) != byteLen {
		return
	}

	byteSlice := (*slice[byte])(unsafe.Pointer(s))
	byteSlice.data = unsafecast.Slice[byte](s.data[:0])
	slicePools[bucketIndex].Put(byteSlice)
}
