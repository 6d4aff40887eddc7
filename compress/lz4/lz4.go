// Package lz4 implements the LZ4 codec on the lz4 frame format.
package lz4

import (
	"io"

	"github.com/parquet-go/rowbinary/compress"
	"github.com/pierrec/lz4/v4"
)

type Level = lz4.CompressionLevel

const (
	Fast   = lz4.Fast
	Level1 = lz4.Level1
	Level2 = lz4.Level2
	Level3 = lz4.Level3
	Level4 = lz4.Level4
	Level5 = lz4.Level5
	Level6 = lz4.Level6
	Level7 = lz4.Level7
	Level8 = lz4.Level8
	Level9 = lz4.Level9
)

const (
	DefaultLevel = Fast
)

type Codec struct {
	Level Level

	r compress.Decompressor
	w compress.Compressor
}

func (c *Codec) String() string {
	return "LZ4"
}

func (c *Codec) ContentEncoding() string {
	return "lz4"
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return c.w.Encode(dst, src, func(w io.Writer) (compress.Writer, error) {
		z := lz4.NewWriter(w)
		if err := z.Apply(lz4.CompressionLevelOption(c.Level)); err != nil {
			return nil, err
		}
		return z, nil
	})
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return c.r.Decode(dst, src, func(r io.Reader) (compress.Reader, error) {
		return compress.NopCloser(lz4.NewReader(r)), nil
	})
}

func (c *Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
