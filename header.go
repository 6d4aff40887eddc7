package rowbinary

import (
	"github.com/go-faster/errors"
	"github.com/parquet-go/rowbinary/wire"
)

// Column describes one column of a result set.
type Column struct {
	Name    string
	Type    ColumnType
	Decoder Decoder
}

// ColumnsHeader is the header of a RowBinaryWithNamesAndTypes result set: the
// columns in the order of the values of each row, and the offset where the
// first row starts.
type ColumnsHeader struct {
	Columns []Column
	Offset  int
}

// Names returns the names of the columns.
func (h *ColumnsHeader) Names() []string {
	names := make([]string, len(h.Columns))
	for i, c := range h.Columns {
		names[i] = c.Name
	}
	return names
}

// DecodeHeader decodes the header at the beginning of b: a LEB128 number of
// columns, the column names, then the column type names.
//
// If b does not contain the complete header, the function returns
// ErrInsufficientData and keeps no state: the call must be repeated from the
// start of the buffer once more bytes are available. Any other error is a
// *HeaderDecodeError.
func DecodeHeader(b []byte, options ...DecoderOption) (*ColumnsHeader, error) {
	config, err := NewDecoderConfig(options...)
	if err != nil {
		return nil, err
	}
	return decodeHeader(b, config)
}

func decodeHeader(b []byte, config *DecoderConfig) (*ColumnsHeader, error) {
	count, off, ok := wire.Uvarint(b, 0)
	if !ok {
		return nil, ErrInsufficientData
	}
	if count > uint64(config.MaxColumns) {
		return nil, &HeaderDecodeError{
			Column: -1,
			Err:    errors.Errorf("column count %d exceeds the limit of %d", count, config.MaxColumns),
		}
	}
	// Each name and each type name occupies at least one byte.
	if count > uint64(len(b)-off)/2 {
		return nil, ErrInsufficientData
	}

	columns := make([]Column, count)
	for i := range columns {
		name, next, err := headerString(b, off, config)
		if err != nil {
			return nil, headerError(i, "", err)
		}
		columns[i].Name, off = name, next
	}

	for i := range columns {
		c := &columns[i]
		source, next, err := headerString(b, off, config)
		if err != nil {
			return nil, headerError(i, c.Name, err)
		}
		off = next
		if c.Type, err = ParseType(source); err != nil {
			return nil, headerError(i, c.Name, err)
		}
		if c.Decoder, err = newDecoder(c.Type, config); err != nil {
			return nil, headerError(i, c.Name, err)
		}
	}

	return &ColumnsHeader{Columns: columns, Offset: off}, nil
}

func headerString(b []byte, off int, config *DecoderConfig) (string, int, error) {
	n, next, ok := wire.Uvarint(b, off)
	if !ok {
		return "", off, ErrInsufficientData
	}
	if n > uint64(config.MaxStringLength) {
		return "", off, errors.Wrapf(errStringTooLong, "length %d, limit %d", n, config.MaxStringLength)
	}
	s, next, ok := wire.FixedString(b, next, int(n))
	if !ok {
		return "", off, ErrInsufficientData
	}
	return s, next, nil
}

func headerError(column int, name string, err error) error {
	if err == ErrInsufficientData {
		return err
	}
	return &HeaderDecodeError{Column: column, Name: name, Err: err}
}

// DecodeRow decodes the values of one row starting at offset off of b, and
// returns them with the offset of the next row.
//
// If b ends before the row does, DecodeRow returns ErrInsufficientData and
// off unchanged; no value of the partial row is kept. Values violating
// their column type are reported as *DecodeError.
func (h *ColumnsHeader) DecodeRow(b []byte, off int) ([]any, int, error) {
	row := make([]any, len(h.Columns))
	next, err := h.decodeRow(b, off, row)
	if err != nil {
		return nil, off, err
	}
	return row, next, nil
}

func (h *ColumnsHeader) decodeRow(b []byte, off int, row []any) (int, error) {
	next := off
	for i := range h.Columns {
		c := &h.Columns[i]
		v, n, err := c.Decoder(b, next)
		if err != nil {
			if err == ErrInsufficientData {
				return off, err
			}
			return off, &DecodeError{Column: i, Name: c.Name, Err: err}
		}
		row[i], next = v, n
	}
	return next, nil
}

// DecodeRows decodes as many complete rows as b holds from offset off, and
// returns them with the offset of the first byte that was not consumed. The
// error is nil when the rows stopped at the end of b or in the middle of a
// row, the bytes of the partial row being left for the next call.
//
// A header without columns has no rows: nothing is consumed from b.
func (h *ColumnsHeader) DecodeRows(b []byte, off int) ([][]any, int, error) {
	if len(h.Columns) == 0 {
		return nil, off, nil
	}
	var rows [][]any
	for off < len(b) {
		row, next, err := h.DecodeRow(b, off)
		if err != nil {
			if err == ErrInsufficientData {
				break
			}
			return rows, off, err
		}
		rows = append(rows, row)
		off = next
	}
	return rows, off, nil
}
