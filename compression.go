package rowbinary

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/parquet-go/rowbinary/compress"
	"github.com/parquet-go/rowbinary/compress/brotli"
	"github.com/parquet-go/rowbinary/compress/deflate"
	"github.com/parquet-go/rowbinary/compress/gzip"
	"github.com/parquet-go/rowbinary/compress/lz4"
	"github.com/parquet-go/rowbinary/compress/snappy"
	"github.com/parquet-go/rowbinary/compress/uncompressed"
	"github.com/parquet-go/rowbinary/compress/zstd"
)

// LookupCompression returns the codec decompressing streams sent with the
// given value of the HTTP Content-Encoding header. The empty string and
// "identity" map to the uncompressed codec.
func LookupCompression(contentEncoding string) (compress.Codec, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return new(uncompressed.Codec), nil
	case "gzip", "x-gzip":
		return new(gzip.Codec), nil
	case "deflate":
		return new(deflate.Codec), nil
	case "br":
		return new(brotli.Codec), nil
	case "zstd":
		return new(zstd.Codec), nil
	case "lz4":
		return new(lz4.Codec), nil
	case "snappy":
		return new(snappy.Codec), nil
	default:
		return nil, errors.Errorf("rowbinary: unsupported content encoding %q", contentEncoding)
	}
}
