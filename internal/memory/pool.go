// Package memory provides pooled buffers used to accumulate the bytes of a
// stream before they are decoded.
package memory

import "sync"

// Datum is the set of element types supported by SliceBuffer. The types have
// no pointers so their backing arrays can be shared between pools.
type Datum interface {
	~byte | ~int8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Pool is a type-safe wrapper around sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

// Get returns a value from the pool, or a value created by newFunc when the
// pool is empty. Values returned to the pool are passed to resetFunc before
// being reused.
func (p *Pool[T]) Get(newFunc func() *T, resetFunc func(*T)) *T {
	v, _ := p.pool.Get().(*T)
	if v == nil {
		return newFunc()
	}
	resetFunc(v)
	return v
}

// Put returns v to the pool.
func (p *Pool[T]) Put(v *T) {
	if v != nil {
		p.pool.Put(v)
	}
}
