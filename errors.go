package rowbinary

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
)

// ErrInsufficientData is returned by decoders when the buffer ends before the
// value being decoded. It is not a failure: the same decode must be retried
// from the same offset once more bytes were appended to the buffer.
//
// The error is always returned as is, never wrapped, so it can be compared
// directly as well as with errors.Is.
var ErrInsufficientData = errors.New("rowbinary: insufficient data")

// TypeParseError is returned when a column type name cannot be parsed.
type TypeParseError struct {
	// Reason describes what was wrong with the type name.
	Reason string
	// Source is the complete type name that was being parsed.
	Source string
	// Offending is the part of Source that failed to parse, it may be empty
	// when the whole source is at fault.
	Offending string
}

func (e *TypeParseError) Error() string {
	if e.Offending == "" || e.Offending == e.Source {
		return fmt.Sprintf("rowbinary: cannot parse type %q: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("rowbinary: cannot parse type %q: %s (at %q)", e.Source, e.Reason, e.Offending)
}

// HeaderDecodeError is returned when the header of a result set is malformed
// in a way that more data cannot fix.
type HeaderDecodeError struct {
	// Column is the index of the column at fault, or -1 when the error is not
	// specific to a column.
	Column int
	// Name of the column at fault, when it was already decoded.
	Name string
	// Err is the cause.
	Err error
}

func (e *HeaderDecodeError) Error() string {
	if e.Column < 0 {
		return "rowbinary: decoding header: " + e.Err.Error()
	}
	return fmt.Sprintf("rowbinary: decoding header of column %d (%s): %v", e.Column, columnName(e.Name), e.Err)
}

func (e *HeaderDecodeError) Unwrap() error { return e.Err }

// DecodeError is returned when a row contains a value that violates the
// column type, for example an enum index with no matching entry.
type DecodeError struct {
	// Column is the index of the column at fault.
	Column int
	// Name is the name of the column at fault.
	Name string
	// Err is the cause.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rowbinary: decoding column %d (%s): %v", e.Column, columnName(e.Name), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func columnName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strconv.Quote(name)
}

var (
	errStringTooLong     = errors.New("string length exceeds the limit")
	errCollectionTooLong = errors.New("collection length exceeds the limit")
	errInvalidNullFlag   = errors.New("invalid null flag")
	errUnknownEnumValue  = errors.New("unknown enum value")
)
