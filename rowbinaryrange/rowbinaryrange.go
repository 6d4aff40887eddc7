// Package rowbinaryrange adapts readers of RowBinary result sets to range
// over function iterators.
package rowbinaryrange

import (
	"io"
	"iter"

	"github.com/go-faster/errors"
)

// DefaultChunkSize is the number of rows read at a time when IterConfig does
// not set one.
const DefaultChunkSize = 100

// RowReader is implemented by *rowbinary.Reader.
type RowReader interface {
	ReadRows(rows [][]any) (int, error)
}

type IterConfig struct {
	ReuseRows bool // Whether to reuse the same slice for each chunk of rows read
	ChunkSize int  // Number of rows to read at a time
}

// Rows returns an iterator over chunks of rows read from reader. The sequence
// ends after the last row, or after yielding the first error other than
// io.EOF; rows read before the error are yielded first.
func Rows(reader RowReader, config IterConfig) iter.Seq2[[][]any, error] {
	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return func(yield func([][]any, error) bool) {
		var rows [][]any
		if config.ReuseRows {
			rows = make([][]any, chunkSize)
		}

		for done := false; !done; {
			if !config.ReuseRows {
				rows = make([][]any, chunkSize)
			}

			n, err := reader.ReadRows(rows)
			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				// The last chunk may still hold rows.
				done = true
			default:
				if n > 0 && !yield(rows[:n], nil) {
					return
				}
				yield(nil, err)
				return
			}

			if n == 0 {
				continue
			}
			if !yield(rows[:n], nil) {
				return
			}
		}
	}
}

// Flatten yields the rows of each chunk of seq one at a time. An error ends
// the sequence; it is yielded along with the zero value of T.
func Flatten[T any, S ~[]T](seq iter.Seq2[S, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for chunk, err := range seq {
			if err != nil {
				yield(zero, err)
				return
			}
			for _, row := range chunk {
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}
