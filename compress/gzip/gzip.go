// Package gzip implements the GZIP codec.
package gzip

import (
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/rowbinary/compress"
)

const (
	NoCompression      = gzip.NoCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
	DefaultCompression = gzip.DefaultCompression
	HuffmanOnly        = gzip.HuffmanOnly
)

type Codec struct {
	// Level is the compression level, zero selects DefaultCompression.
	Level int

	r compress.Decompressor
	w compress.Compressor
}

func (c *Codec) String() string {
	return "GZIP"
}

func (c *Codec) ContentEncoding() string {
	return "gzip"
}

func (c *Codec) level() int {
	if c.Level == 0 {
		return DefaultCompression
	}
	return c.Level
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return c.w.Encode(dst, src, func(w io.Writer) (compress.Writer, error) {
		return gzip.NewWriterLevel(w, c.level())
	})
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return c.r.Decode(dst, src, func(r io.Reader) (compress.Reader, error) {
		return gzip.NewReader(r)
	})
}

func (c *Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}
