package rowbinary

import (
	"math/big"
	"time"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/go-faster/errors"
	"github.com/parquet-go/rowbinary/wire"
)

// Decoder decodes the value starting at offset off of b, returning the value
// and the offset of the byte that follows it.
//
// When b ends before the value does, the decoder returns ErrInsufficientData
// and the same call must be repeated after more bytes were appended to b.
// Decoders hold no state and never retain b after returning.
//
// The Go type of decoded values depends on the column type:
//
//	Int8 ... Int64, UInt8 ... UInt64   int8 ... int64, uint8 ... uint64
//	Int128, Int256, UInt128, UInt256   *big.Int
//	Float32, Float64                   float32, float64
//	Bool                               bool
//	String, FixedString                string
//	UUID                               uuid.UUID
//	Date, Date32, DateTime, DateTime64 time.Time
//	Decimal                            DecimalValue
//	Enum8, Enum16                      string
//	IPv4, IPv6                         netip.Addr
//	Nullable(T)                        nil or the value of T
//	Array(T), Tuple(...)               []any
//	Map(K, V)                          *orderedmap.OrderedMap[any, any]
type Decoder func(b []byte, off int) (value any, next int, err error)

// NewDecoder returns the decoder of values of column type t.
func NewDecoder(t ColumnType, options ...DecoderOption) (Decoder, error) {
	config, err := NewDecoderConfig(options...)
	if err != nil {
		return nil, err
	}
	return newDecoder(t, config)
}

func newDecoder(t ColumnType, config *DecoderConfig) (Decoder, error) {
	switch t := t.(type) {
	case *SimpleType:
		return simpleDecoder(t, config)
	case *FixedStringType:
		return fixedStringDecoder(t.Length), nil
	case *DateTimeType:
		loc, err := location(t.Timezone, config)
		if err != nil {
			return nil, err
		}
		return dateTimeDecoder(loc), nil
	case *DateTime64Type:
		loc, err := location(t.Timezone, config)
		if err != nil {
			return nil, err
		}
		return dateTime64Decoder(t.Precision, loc), nil
	case *DecimalType:
		return decimalDecoder(t)
	case *EnumType:
		return enumDecoder(t)
	case *NullableType:
		elem, err := newDecoder(t.Elem, config)
		if err != nil {
			return nil, err
		}
		return nullableDecoder(elem), nil
	case *ArrayType:
		elem, err := newDecoder(t.Elem, config)
		if err != nil {
			return nil, err
		}
		return arrayDecoder(elem, t.Dimensions, config.MaxCollectionLength), nil
	case *MapType:
		key, err := newDecoder(t.Key, config)
		if err != nil {
			return nil, err
		}
		value, err := newDecoder(t.Value, config)
		if err != nil {
			return nil, err
		}
		return mapDecoder(key, value, config.MaxCollectionLength), nil
	case *TupleType:
		elems := make([]Decoder, len(t.Elems))
		for i, elem := range t.Elems {
			d, err := newDecoder(elem, config)
			if err != nil {
				return nil, err
			}
			elems[i] = d
		}
		return tupleDecoder(elems), nil
	default:
		return nil, errors.Errorf("no decoder for column type %v", t)
	}
}

func decodeWith[T any](read func([]byte, int) (T, int, bool)) Decoder {
	return func(b []byte, off int) (any, int, error) {
		v, next, ok := read(b, off)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		return v, next, nil
	}
}

func simpleDecoder(t *SimpleType, config *DecoderConfig) (Decoder, error) {
	switch t.Name {
	case Int8:
		return decodeWith(wire.Int8), nil
	case Int16:
		return decodeWith(wire.Int16), nil
	case Int32:
		return decodeWith(wire.Int32), nil
	case Int64:
		return decodeWith(wire.Int64), nil
	case Int128:
		return decodeWith(wire.Int128), nil
	case Int256:
		return decodeWith(wire.Int256), nil
	case UInt8:
		return decodeWith(wire.Uint8), nil
	case UInt16:
		return decodeWith(wire.Uint16), nil
	case UInt32:
		return decodeWith(wire.Uint32), nil
	case UInt64:
		return decodeWith(wire.Uint64), nil
	case UInt128:
		return decodeWith(wire.Uint128), nil
	case UInt256:
		return decodeWith(wire.Uint256), nil
	case Float32:
		return decodeWith(wire.Float32), nil
	case Float64:
		return decodeWith(wire.Float64), nil
	case Bool:
		return decodeWith(wire.Bool), nil
	case String:
		return stringDecoder(config.MaxStringLength), nil
	case UUID:
		return decodeWith(wire.UUID), nil
	case Date:
		return decodeWith(wire.Date), nil
	case Date32:
		return decodeWith(wire.Date32), nil
	case IPv4:
		return decodeWith(wire.IPv4), nil
	case IPv6:
		return decodeWith(wire.IPv6), nil
	default:
		return nil, errors.Errorf("no decoder for column type %s", t.Name)
	}
}

func stringDecoder(maxLength int) Decoder {
	return func(b []byte, off int) (any, int, error) {
		n, next, ok := wire.Uvarint(b, off)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		if n > uint64(maxLength) {
			return nil, off, errors.Wrapf(errStringTooLong, "length %d, limit %d", n, maxLength)
		}
		v, next, ok := wire.Bytes(b, next, int(n))
		if !ok {
			return nil, off, ErrInsufficientData
		}
		return string(v), next, nil
	}
}

func fixedStringDecoder(n int) Decoder {
	return func(b []byte, off int) (any, int, error) {
		v, next, ok := wire.FixedString(b, off, n)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		return v, next, nil
	}
}

func location(timezone string, config *DecoderConfig) (*time.Location, error) {
	if timezone == "" {
		return config.Location, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "loading time zone %q", timezone)
	}
	return loc, nil
}

func dateTimeDecoder(loc *time.Location) Decoder {
	return func(b []byte, off int) (any, int, error) {
		v, next, ok := wire.DateTime(b, off, loc)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		return v, next, nil
	}
}

func dateTime64Decoder(precision int, loc *time.Location) Decoder {
	return func(b []byte, off int) (any, int, error) {
		v, next, ok := wire.DateTime64(b, off, precision, loc)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		return v, next, nil
	}
}

func decimalDecoder(t *DecimalType) (Decoder, error) {
	var read func([]byte, int) (*big.Int, int, bool)
	switch t.Width {
	case 32:
		read = func(b []byte, off int) (*big.Int, int, bool) {
			v, next, ok := wire.Int32(b, off)
			if !ok {
				return nil, off, false
			}
			return big.NewInt(int64(v)), next, true
		}
	case 64:
		read = func(b []byte, off int) (*big.Int, int, bool) {
			v, next, ok := wire.Int64(b, off)
			if !ok {
				return nil, off, false
			}
			return big.NewInt(v), next, true
		}
	case 128:
		read = wire.Int128
	case 256:
		read = wire.Int256
	default:
		return nil, errors.Errorf("no decoder for decimals of width %d", t.Width)
	}
	scale := t.Scale
	return func(b []byte, off int) (any, int, error) {
		v, next, ok := read(b, off)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		return DecimalValue{Value: v, Scale: scale}, next, nil
	}, nil
}

func enumDecoder(t *EnumType) (Decoder, error) {
	var read func([]byte, int) (int, int, bool)
	switch t.IntSize {
	case 8:
		read = func(b []byte, off int) (int, int, bool) {
			v, next, ok := wire.Int8(b, off)
			return int(v), next, ok
		}
	case 16:
		read = func(b []byte, off int) (int, int, bool) {
			v, next, ok := wire.Int16(b, off)
			return int(v), next, ok
		}
	default:
		return nil, errors.Errorf("no decoder for enums of size %d", t.IntSize)
	}
	values := t.Values
	return func(b []byte, off int) (any, int, error) {
		index, next, ok := read(b, off)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		name, ok := values[index]
		if !ok {
			return nil, off, errors.Wrapf(errUnknownEnumValue, "index %d", index)
		}
		return name, next, nil
	}, nil
}

func nullableDecoder(elem Decoder) Decoder {
	return func(b []byte, off int) (any, int, error) {
		flag, next, ok := wire.Uint8(b, off)
		if !ok {
			return nil, off, ErrInsufficientData
		}
		switch flag {
		case 0:
			v, next, err := elem(b, next)
			if err != nil {
				return nil, off, err
			}
			return v, next, nil
		case 1:
			return nil, next, nil
		default:
			return nil, off, errors.Wrapf(errInvalidNullFlag, "flag %d", flag)
		}
	}
}

// collectionLength reads the element count of arrays and maps. Every element
// occupies at least one byte, so counts larger than the rest of the buffer
// are reported as insufficient data without allocating.
func collectionLength(b []byte, off, maxLength int) (int, int, error) {
	n, next, ok := wire.Uvarint(b, off)
	if !ok {
		return 0, off, ErrInsufficientData
	}
	if n > uint64(maxLength) {
		return 0, off, errors.Wrapf(errCollectionTooLong, "length %d, limit %d", n, maxLength)
	}
	if n > uint64(len(b)-next) {
		return 0, off, ErrInsufficientData
	}
	return int(n), next, nil
}

func arrayDecoder(elem Decoder, dimensions, maxLength int) Decoder {
	if dimensions > 1 {
		elem = arrayDecoder(elem, dimensions-1, maxLength)
	}
	return func(b []byte, off int) (any, int, error) {
		n, next, err := collectionLength(b, off, maxLength)
		if err != nil {
			return nil, off, err
		}
		values := make([]any, n)
		for i := range values {
			if values[i], next, err = elem(b, next); err != nil {
				return nil, off, err
			}
		}
		return values, next, nil
	}
}

func mapDecoder(key, value Decoder, maxLength int) Decoder {
	return func(b []byte, off int) (any, int, error) {
		n, next, err := collectionLength(b, off, maxLength)
		if err != nil {
			return nil, off, err
		}
		m := orderedmap.NewOrderedMapWithCapacity[any, any](n)
		var bigKeys map[string]any
		for range n {
			var k, v any
			if k, next, err = key(b, next); err != nil {
				return nil, off, err
			}
			if v, next, err = value(b, next); err != nil {
				return nil, off, err
			}
			// Duplicate keys keep the position of the first occurrence and
			// the value of the last one. *big.Int keys are matched by value.
			if i, ok := k.(*big.Int); ok {
				if bigKeys == nil {
					bigKeys = make(map[string]any)
				}
				s := i.String()
				if prev, dup := bigKeys[s]; dup {
					k = prev
				} else {
					bigKeys[s] = k
				}
			}
			m.Set(k, v)
		}
		return m, next, nil
	}
}

func tupleDecoder(elems []Decoder) Decoder {
	return func(b []byte, off int) (any, int, error) {
		values := make([]any, len(elems))
		next := off
		for i, elem := range elems {
			var err error
			if values[i], next, err = elem(b, next); err != nil {
				return nil, off, err
			}
		}
		return values, next, nil
	}
}
