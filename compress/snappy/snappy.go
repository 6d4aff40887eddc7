// Package snappy implements the SNAPPY codec on the snappy framing format.
package snappy

import (
	"io"

	"github.com/golang/snappy"
	"github.com/parquet-go/rowbinary/compress"
)

type Codec struct {
	r compress.Decompressor
	w compress.Compressor
}

func (c *Codec) String() string {
	return "SNAPPY"
}

func (c *Codec) ContentEncoding() string {
	return "snappy"
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return c.w.Encode(dst, src, func(w io.Writer) (compress.Writer, error) {
		return snappy.NewBufferedWriter(w), nil
	})
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return c.r.Decode(dst, src, func(r io.Reader) (compress.Reader, error) {
		return compress.NopCloser(snappy.NewReader(r)), nil
	})
}

func (c *Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}
