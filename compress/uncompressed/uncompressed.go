// Package uncompressed provides the identity codec, used when a stream is
// not compressed.
package uncompressed

import "io"

type Codec struct{}

func (c *Codec) String() string {
	return "UNCOMPRESSED"
}

func (c *Codec) ContentEncoding() string {
	return "identity"
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (c *Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
