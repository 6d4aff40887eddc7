package rowbinary

import (
	"fmt"
	"math"
	"math/big"
	"net/netip"
	"strconv"
	"time"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// ValueOf converts a value produced by a Decoder to a protobuf value.
//
// Numbers that a float64 represents exactly are converted to numbers; 64 bit
// and wider integers are converted to their decimal representation since
// JSON consumers commonly lose precision above 2^53. Non-finite floats, times
// (RFC 3339), UUIDs, IP addresses and decimals are converted to strings.
// Arrays and tuples become lists and maps become structs keyed by the string
// form of their keys.
func ValueOf(v any) (*structpb.Value, error) {
	return valueOf(nil, v)
}

// RowStruct converts a row decoded with h to a protobuf struct with one field
// per column. Unlike ValueOf, tuples with named elements become structs.
func RowStruct(h *ColumnsHeader, row []any) (*structpb.Struct, error) {
	if len(row) != len(h.Columns) {
		return nil, errors.Errorf("rowbinary: row has %d values but the header has %d columns", len(row), len(h.Columns))
	}
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(row))}
	for i, c := range h.Columns {
		v, err := valueOf(c.Type, row[i])
		if err != nil {
			return nil, errors.Wrapf(err, "converting column %d (%s)", i, columnName(c.Name))
		}
		s.Fields[c.Name] = v
	}
	return s, nil
}

// valueOf converts v using t, when it is not nil, to give names to tuple
// elements.
func valueOf(t ColumnType, v any) (*structpb.Value, error) {
	if v == nil {
		return structpb.NewNullValue(), nil
	}

	switch t := t.(type) {
	case *NullableType:
		return valueOf(t.Elem, v)
	case *ArrayType:
		elem := t.Elem
		if t.Dimensions > 1 {
			elem = &ArrayType{Elem: t.Elem, Dimensions: t.Dimensions - 1}
		}
		if values, ok := v.([]any); ok {
			return listOf(values, func(int) ColumnType { return elem })
		}
	case *MapType:
		if m, ok := v.(*orderedmap.OrderedMap[any, any]); ok {
			return structOf(m, t.Value)
		}
	case *TupleType:
		values, ok := v.([]any)
		if !ok || len(values) != len(t.Elems) {
			break
		}
		if t.Names == nil {
			return listOf(values, func(i int) ColumnType { return t.Elems[i] })
		}
		s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(values))}
		for i, value := range values {
			field, err := valueOf(t.Elems[i], value)
			if err != nil {
				return nil, err
			}
			s.Fields[t.Names[i]] = field
		}
		return structpb.NewStructValue(s), nil
	}

	switch v := v.(type) {
	case bool:
		return structpb.NewBoolValue(v), nil
	case int8:
		return structpb.NewNumberValue(float64(v)), nil
	case int16:
		return structpb.NewNumberValue(float64(v)), nil
	case int32:
		return structpb.NewNumberValue(float64(v)), nil
	case int64:
		return structpb.NewStringValue(strconv.FormatInt(v, 10)), nil
	case uint8:
		return structpb.NewNumberValue(float64(v)), nil
	case uint16:
		return structpb.NewNumberValue(float64(v)), nil
	case uint32:
		return structpb.NewNumberValue(float64(v)), nil
	case uint64:
		return structpb.NewStringValue(strconv.FormatUint(v, 10)), nil
	case float32:
		return numberValue(float64(v)), nil
	case float64:
		return numberValue(v), nil
	case string:
		return structpb.NewStringValue(v), nil
	case *big.Int:
		return structpb.NewStringValue(v.String()), nil
	case DecimalValue:
		return structpb.NewStringValue(v.String()), nil
	case time.Time:
		return structpb.NewStringValue(v.Format(time.RFC3339Nano)), nil
	case uuid.UUID:
		return structpb.NewStringValue(v.String()), nil
	case netip.Addr:
		return structpb.NewStringValue(v.String()), nil
	case []any:
		return listOf(v, func(int) ColumnType { return nil })
	case *orderedmap.OrderedMap[any, any]:
		return structOf(v, nil)
	default:
		return nil, errors.Errorf("rowbinary: cannot convert value of type %T to protobuf", v)
	}
}

func numberValue(f float64) *structpb.Value {
	switch {
	case math.IsNaN(f):
		return structpb.NewStringValue("NaN")
	case math.IsInf(f, +1):
		return structpb.NewStringValue("Infinity")
	case math.IsInf(f, -1):
		return structpb.NewStringValue("-Infinity")
	default:
		return structpb.NewNumberValue(f)
	}
}

func listOf(values []any, elemType func(int) ColumnType) (*structpb.Value, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, len(values))}
	for i, value := range values {
		v, err := valueOf(elemType(i), value)
		if err != nil {
			return nil, err
		}
		list.Values[i] = v
	}
	return structpb.NewListValue(list), nil
}

func structOf(m *orderedmap.OrderedMap[any, any], valueType ColumnType) (*structpb.Value, error) {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, m.Len())}
	for el := m.Front(); el != nil; el = el.Next() {
		v, err := valueOf(valueType, el.Value)
		if err != nil {
			return nil, err
		}
		s.Fields[mapKey(el.Key)] = v
	}
	return structpb.NewStructValue(s), nil
}

func mapKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case time.Time:
		return k.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(k)
	}
}
