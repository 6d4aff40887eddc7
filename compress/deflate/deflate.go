// Package deflate implements the codec of the HTTP deflate content encoding,
// which is a zlib stream.
package deflate

import (
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/parquet-go/rowbinary/compress"
)

const (
	NoCompression      = zlib.NoCompression
	BestSpeed          = zlib.BestSpeed
	BestCompression    = zlib.BestCompression
	DefaultCompression = zlib.DefaultCompression
	HuffmanOnly        = zlib.HuffmanOnly
)

type Codec struct {
	// Level is the compression level, zero selects DefaultCompression.
	Level int

	r compress.Decompressor
	w compress.Compressor
}

func (c *Codec) String() string {
	return "DEFLATE"
}

func (c *Codec) ContentEncoding() string {
	return "deflate"
}

func (c *Codec) level() int {
	if c.Level == 0 {
		return DefaultCompression
	}
	return c.Level
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return c.w.Encode(dst, src, func(w io.Writer) (compress.Writer, error) {
		return zlib.NewWriterLevel(w, c.level())
	})
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return c.r.Decode(dst, src, func(r io.Reader) (compress.Reader, error) {
		z, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &reader{z}, nil
	})
}

func (c *Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

type reader struct{ io.ReadCloser }

func (r *reader) Reset(rr io.Reader) error {
	return r.ReadCloser.(zlib.Resetter).Reset(rr, nil)
}
