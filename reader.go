package rowbinary

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/parquet-go/rowbinary/internal/memory"
	"github.com/sirupsen/logrus"
)

var errReaderClosed = errors.New("rowbinary: reader closed")

// ReaderStats reports the amount of data processed by a Reader.
type ReaderStats struct {
	// Number of rows returned by the reader.
	Rows int64
	// Number of bytes read from the underlying input, compressed.
	InputBytes int64
	// Number of bytes of RowBinary data produced by the decompressor.
	DecodedBytes int64
}

// Reader decodes a RowBinaryWithNamesAndTypes stream: a header describing the
// columns followed by rows of values.
//
// The reader accumulates the stream in a growable buffer and retries decoding
// each time more bytes arrive, so it works with inputs returning arbitrarily
// small reads. Reader values are not safe for concurrent use.
type Reader struct {
	config  *ReaderConfig
	log     logrus.FieldLogger
	source  countingReader
	input   io.Reader
	closer  io.Closer
	buffer  memory.SliceBuffer[byte]
	offset  int
	header  *ColumnsHeader
	err     error
	rows    int64
	decoded int64
}

// NewReader constructs a reader of the RowBinaryWithNamesAndTypes stream r.
//
// The function panics if the reader configuration is invalid.
func NewReader(r io.Reader, options ...ReaderOption) *Reader {
	config, err := NewReaderConfig(options...)
	if err != nil {
		panic(err)
	}
	return &Reader{
		config: config,
		log:    config.Logger,
		source: countingReader{reader: r},
	}
}

// Header returns the header of the result set, reading from the input until
// it is complete.
//
// The error is io.EOF if the input is empty, and io.ErrUnexpectedEOF if it
// ends in the middle of the header.
func (r *Reader) Header() (*ColumnsHeader, error) {
	for r.header == nil {
		h, err := decodeHeader(r.buffer.Slice(), &r.config.DecoderConfig)
		switch {
		case err == nil:
			r.header, r.offset = h, h.Offset
			r.log.WithFields(logrus.Fields{
				"columns": len(h.Columns),
				"bytes":   h.Offset,
			}).Debug("decoded result set header")
		case err != ErrInsufficientData:
			r.err = err
			return nil, err
		default:
			if err := r.fill(); err != nil {
				if err == io.EOF && r.buffer.Len() > 0 {
					err = io.ErrUnexpectedEOF
				}
				return nil, err
			}
		}
	}
	return r.header, nil
}

// ReadRow reads the next row of the result set. The returned slice holds one
// value per column of the header.
//
// The error is io.EOF when the input ends after the last row, and
// io.ErrUnexpectedEOF when it ends in the middle of a row.
func (r *Reader) ReadRow() ([]any, error) {
	h, err := r.Header()
	if err != nil {
		return nil, err
	}
	if len(h.Columns) == 0 {
		return nil, io.EOF
	}
	for {
		row, next, err := h.DecodeRow(r.buffer.Slice(), r.offset)
		switch {
		case err == nil:
			r.offset = next
			r.rows++
			return row, nil
		case err != ErrInsufficientData:
			r.err = err
			return nil, err
		}

		if err := r.fill(); err != nil {
			if err == io.EOF {
				if r.offset < r.buffer.Len() {
					return nil, io.ErrUnexpectedEOF
				}
				r.log.WithFields(logrus.Fields{
					"rows":  r.rows,
					"bytes": r.decoded,
				}).Debug("reached end of result set")
			}
			return nil, err
		}
	}
}

// ReadRows reads rows into the slice passed as argument and returns the
// number of rows read, with the same semantics as io.Reader.Read.
func (r *Reader) ReadRows(rows [][]any) (int, error) {
	for n := range rows {
		row, err := r.ReadRow()
		if err != nil {
			return n, err
		}
		rows[n] = row
	}
	return len(rows), nil
}

// Stats returns the amount of data processed by the reader so far.
func (r *Reader) Stats() ReaderStats {
	return ReaderStats{
		Rows:         r.rows,
		InputBytes:   r.source.count,
		DecodedBytes: r.decoded,
	}
}

// Close releases the buffer and the decompressor of r. It does not close the
// underlying input.
func (r *Reader) Close() error {
	r.buffer.Reset()
	r.offset = 0
	r.err = errReaderClosed
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

func (r *Reader) init() error {
	codec := r.config.Compression
	if codec == nil {
		r.input = &r.source
		return nil
	}
	r.log.WithField("encoding", codec.ContentEncoding()).Debug("decompressing result set")
	rc, err := codec.NewReader(&r.source)
	if err != nil {
		return errors.Wrapf(err, "rowbinary: initializing %s decompression", codec)
	}
	r.input, r.closer = rc, rc
	return nil
}

// fill reads more bytes from the input into the buffer. Once more than half
// the buffer was consumed, the consumed bytes are discarded first.
func (r *Reader) fill() error {
	if r.err != nil {
		return r.err
	}
	if r.input == nil {
		if err := r.init(); err != nil {
			r.err = err
			return err
		}
	}

	if r.offset > 0 && r.offset > r.buffer.Len()/2 {
		r.log.WithFields(logrus.Fields{
			"discarded": r.offset,
			"buffered":  r.buffer.Len() - r.offset,
		}).Trace("compacting read buffer")
		r.buffer.Discard(r.offset)
		r.offset = 0
	}

	size := r.config.ReadBufferSize
	r.buffer.Grow(size)
	n, err := r.input.Read(r.buffer.Spare()[:size])
	r.buffer.Resize(r.buffer.Len() + n)
	r.decoded += int64(n)

	if err != nil {
		r.err = err
		if n > 0 {
			return nil
		}
		return err
	}
	return nil
}

type countingReader struct {
	reader io.Reader
	count  int64
}

func (r *countingReader) Read(b []byte) (int, error) {
	n, err := r.reader.Read(b)
	r.count += int64(n)
	return n, err
}
