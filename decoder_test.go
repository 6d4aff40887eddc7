package rowbinary_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/google/uuid"
	"github.com/parquet-go/rowbinary"
)

func cat(chunks ...[]byte) []byte {
	var b []byte
	for _, c := range chunks {
		b = append(b, c...)
	}
	return b
}

func uvarint(v uint64) []byte { return binary.AppendUvarint(nil, v) }

func str(s string) []byte { return append(uvarint(uint64(len(s))), s...) }

func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }

func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func le64(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }

// leBig encodes v as a size bytes little endian two's complement integer.
func leBig(v *big.Int, size int) []byte {
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), uint(8*size)))
	}
	b := u.FillBytes(make([]byte, size))
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

func uuidBytes(u uuid.UUID) []byte {
	b := make([]byte, 16)
	for i := range 8 {
		b[i] = u[7-i]
		b[8+i] = u[15-i]
	}
	return b
}

func orderedMap(kv ...any) *orderedmap.OrderedMap[any, any] {
	m := orderedmap.NewOrderedMap[any, any]()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// dump renders decoded values with their Go types so values of different
// types never compare equal.
func dump(v any) string {
	var b strings.Builder
	dumpTo(&b, v)
	return b.String()
}

func dumpTo(b *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		b.WriteString("nil")
	case []any:
		b.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				b.WriteByte(' ')
			}
			dumpTo(b, elem)
		}
		b.WriteByte(']')
	case *orderedmap.OrderedMap[any, any]:
		b.WriteByte('{')
		for el := v.Front(); el != nil; el = el.Next() {
			if el != v.Front() {
				b.WriteByte(' ')
			}
			dumpTo(b, el.Key)
			b.WriteByte(':')
			dumpTo(b, el.Value)
		}
		b.WriteByte('}')
	case time.Time:
		fmt.Fprintf(b, "time.Time(%s)", v.Format(time.RFC3339Nano+" MST"))
	default:
		fmt.Fprintf(b, "%T(%v)", v, v)
	}
}

func bigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big integer: " + s)
	}
	return v
}

func mustParseType(t testing.TB, source string) rowbinary.ColumnType {
	t.Helper()
	typ, err := rowbinary.ParseType(source)
	if err != nil {
		t.Fatal(err)
	}
	return typ
}

var decoderTests = []struct {
	scenario string
	typ      string
	input    []byte
	value    any
}{
	{scenario: "int8 negative", typ: "Int8", input: []byte{0xff}, value: int8(-1)},
	{scenario: "int8 positive", typ: "Int8", input: []byte{0x7f}, value: int8(127)},
	{scenario: "int16", typ: "Int16", input: le16(0x8000), value: int16(math.MinInt16)},
	{scenario: "int32", typ: "Int32", input: le32(0xfffffffe), value: int32(-2)},
	{scenario: "int64", typ: "Int64", input: le64(1 << 40), value: int64(1 << 40)},
	{scenario: "uint8", typ: "UInt8", input: []byte{0xff}, value: uint8(255)},
	{scenario: "uint16", typ: "UInt16", input: []byte{0x34, 0x12}, value: uint16(0x1234)},
	{scenario: "uint32", typ: "UInt32", input: le32(math.MaxUint32), value: uint32(math.MaxUint32)},
	{scenario: "uint64", typ: "UInt64", input: le64(math.MaxUint64), value: uint64(math.MaxUint64)},
	{
		scenario: "int128",
		typ:      "Int128",
		input:    leBig(bigInt("-170141183460469231731687303715884105728"), 16),
		value:    bigInt("-170141183460469231731687303715884105728"),
	},
	{
		scenario: "uint128",
		typ:      "UInt128",
		input:    leBig(bigInt("340282366920938463463374607431768211455"), 16),
		value:    bigInt("340282366920938463463374607431768211455"),
	},
	{scenario: "int256", typ: "Int256", input: leBig(big.NewInt(-42), 32), value: big.NewInt(-42)},
	{scenario: "uint256", typ: "UInt256", input: leBig(big.NewInt(42), 32), value: big.NewInt(42)},
	{scenario: "float32", typ: "Float32", input: le32(math.Float32bits(-0.25)), value: float32(-0.25)},
	{scenario: "float64", typ: "Float64", input: le64(math.Float64bits(1.5)), value: float64(1.5)},
	{scenario: "bool", typ: "Bool", input: []byte{1}, value: true},
	{scenario: "string", typ: "String", input: str("hello"), value: "hello"},
	{scenario: "empty string", typ: "String", input: str(""), value: ""},
	{scenario: "fixed string", typ: "FixedString(3)", input: []byte("abc"), value: "abc"},
	{
		scenario: "uuid",
		typ:      "UUID",
		input:    uuidBytes(uuid.MustParse("61f0c404-5cb3-11e7-907b-a6006ad3dba0")),
		value:    uuid.MustParse("61f0c404-5cb3-11e7-907b-a6006ad3dba0"),
	},
	{scenario: "date", typ: "Date", input: le16(1), value: time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)},
	{scenario: "date32", typ: "Date32", input: le32(math.MaxUint32), value: time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)},
	{scenario: "datetime", typ: "DateTime", input: le32(86400), value: time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)},
	{
		scenario: "datetime with time zone",
		typ:      "DateTime('Asia/Tokyo')",
		input:    le32(0),
		value:    time.Unix(0, 0).In(mustLoadLocation("Asia/Tokyo")),
	},
	{
		scenario: "datetime64",
		typ:      "DateTime64(3)",
		input:    le64(1500),
		value:    time.Date(1970, 1, 1, 0, 0, 1, 500e6, time.UTC),
	},
	{
		scenario: "datetime64 before epoch",
		typ:      "DateTime64(6, 'UTC')",
		input:    le64(uint64(math.MaxUint64)),
		value:    time.Date(1969, 12, 31, 23, 59, 59, 999999e3, time.UTC),
	},
	{
		scenario: "decimal32",
		typ:      "Decimal(9, 2)",
		input:    le32(uint32(0xfffffffb)),
		value:    rowbinary.DecimalValue{Value: big.NewInt(-5), Scale: 2},
	},
	{
		scenario: "decimal64",
		typ:      "Decimal64(4)",
		input:    le64(123456),
		value:    rowbinary.DecimalValue{Value: big.NewInt(123456), Scale: 4},
	},
	{
		scenario: "decimal128",
		typ:      "Decimal(38, 3)",
		input:    leBig(big.NewInt(5), 16),
		value:    rowbinary.DecimalValue{Value: big.NewInt(5), Scale: 3},
	},
	{
		scenario: "decimal256",
		typ:      "Decimal(76, 0)",
		input:    leBig(big.NewInt(-7), 32),
		value:    rowbinary.DecimalValue{Value: big.NewInt(-7), Scale: 0},
	},
	{scenario: "enum8", typ: "Enum8('a' = 1, 'b' = 2)", input: []byte{2}, value: "b"},
	{scenario: "enum16", typ: "Enum16('x' = 1000)", input: le16(1000), value: "x"},
	{scenario: "ipv4", typ: "IPv4", input: []byte{4, 3, 2, 1}, value: netip.MustParseAddr("1.2.3.4")},
	{
		scenario: "ipv6",
		typ:      "IPv6",
		input:    netip.MustParseAddr("2001:db8::1").AsSlice(),
		value:    netip.MustParseAddr("2001:db8::1"),
	},
	{scenario: "null", typ: "Nullable(Int8)", input: []byte{1}, value: nil},
	{scenario: "not null", typ: "Nullable(Int8)", input: []byte{0, 7}, value: int8(7)},
	{scenario: "nullable string", typ: "LowCardinality(Nullable(String))", input: cat([]byte{0}, str("x")), value: "x"},
	{scenario: "empty array", typ: "Array(String)", input: uvarint(0), value: []any{}},
	{
		scenario: "array",
		typ:      "Array(String)",
		input:    cat(uvarint(2), str("a"), str("b")),
		value:    []any{"a", "b"},
	},
	{
		scenario: "array of arrays",
		typ:      "Array(Array(UInt8))",
		input:    cat(uvarint(2), uvarint(1), []byte{5}, uvarint(0)),
		value:    []any{[]any{uint8(5)}, []any{}},
	},
	{
		scenario: "array of nullables",
		typ:      "Array(Nullable(UInt8))",
		input:    cat(uvarint(3), []byte{0, 1}, []byte{1}, []byte{0, 3}),
		value:    []any{uint8(1), nil, uint8(3)},
	},
	{
		scenario: "map",
		typ:      "Map(String, UInt8)",
		input:    cat(uvarint(2), str("y"), []byte{2}, str("x"), []byte{1}),
		value:    orderedMap("y", uint8(2), "x", uint8(1)),
	},
	{
		scenario: "nested map",
		typ:      "Map(String, Map(Int32, Array(Int32)))",
		input:    cat(uvarint(1), str("k"), uvarint(1), le32(3), uvarint(2), le32(4), le32(5)),
		value:    orderedMap("k", orderedMap(int32(3), []any{int32(4), int32(5)})),
	},
	{
		scenario: "tuple",
		typ:      "Tuple(String, Nullable(Int8), Enum8('f\\'()' = 1))",
		input:    cat(str("s"), []byte{1}, []byte{1}),
		value:    []any{"s", nil, "f'()"},
	},
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestDecoder(t *testing.T) {
	for _, test := range decoderTests {
		t.Run(test.scenario, func(t *testing.T) {
			decode, err := rowbinary.NewDecoder(mustParseType(t, test.typ))
			if err != nil {
				t.Fatal(err)
			}

			value, next, err := decode(test.input, 0)
			if err != nil {
				t.Fatal(err)
			}
			if next != len(test.input) {
				t.Errorf("offset mismatch: want=%d got=%d", len(test.input), next)
			}
			if want, got := dump(test.value), dump(value); want != got {
				t.Errorf("value mismatch:\nwant = %s\ngot  = %s", want, got)
			}

			t.Run("offset", func(t *testing.T) {
				input := cat([]byte{0xff, 0xff}, test.input, []byte{0xff})
				value, next, err := decode(input, 2)
				if err != nil {
					t.Fatal(err)
				}
				if next != len(input)-1 {
					t.Errorf("offset mismatch: want=%d got=%d", len(input)-1, next)
				}
				if want, got := dump(test.value), dump(value); want != got {
					t.Errorf("value mismatch:\nwant = %s\ngot  = %s", want, got)
				}
			})

			t.Run("insufficient", func(t *testing.T) {
				for n := range len(test.input) {
					value, next, err := decode(test.input[:n], 0)
					if err != rowbinary.ErrInsufficientData {
						t.Fatalf("decoding %d/%d bytes: expected insufficient data, got %v (%s)", n, len(test.input), err, dump(value))
					}
					if next != 0 {
						t.Fatalf("decoding %d/%d bytes: offset moved to %d", n, len(test.input), next)
					}
				}
			})
		})
	}
}

func TestDecoderDoesNotRetainBuffer(t *testing.T) {
	decode, err := rowbinary.NewDecoder(mustParseType(t, "Tuple(String, FixedString(2))"))
	if err != nil {
		t.Fatal(err)
	}
	input := cat(str("abc"), []byte("de"))
	value, _, err := decode(input, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range input {
		input[i] = 'z'
	}
	if want, got := `[string(abc) string(de)]`, dump(value); want != got {
		t.Errorf("value changed with the buffer:\nwant = %s\ngot  = %s", want, got)
	}
}

func TestDecoderMapDuplicateKeys(t *testing.T) {
	tests := []struct {
		typ   string
		input []byte
		want  any
	}{
		{
			typ:   "Map(String, UInt8)",
			input: cat(uvarint(3), str("x"), []byte{1}, str("y"), []byte{2}, str("x"), []byte{3}),
			want:  orderedMap("x", uint8(3), "y", uint8(2)),
		},
		{
			typ: "Map(Int128, UInt8)",
			input: cat(uvarint(3),
				leBig(big.NewInt(7), 16), []byte{1},
				leBig(big.NewInt(-1), 16), []byte{2},
				leBig(big.NewInt(7), 16), []byte{3},
			),
			want: orderedMap(big.NewInt(7), uint8(3), big.NewInt(-1), uint8(2)),
		},
	}

	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			decode, err := rowbinary.NewDecoder(mustParseType(t, test.typ))
			if err != nil {
				t.Fatal(err)
			}
			value, next, err := decode(test.input, 0)
			if err != nil {
				t.Fatal(err)
			}
			if next != len(test.input) {
				t.Errorf("offset mismatch: want=%d got=%d", len(test.input), next)
			}
			if want, got := dump(test.want), dump(value); want != got {
				t.Errorf("value mismatch:\nwant = %s\ngot  = %s", want, got)
			}
			if m := value.(*orderedmap.OrderedMap[any, any]); m.Len() != 2 {
				t.Errorf("map has %d keys, want 2", m.Len())
			}
		})
	}
}

func TestDecoderLocation(t *testing.T) {
	tokyo := mustLoadLocation("Asia/Tokyo")
	tests := []struct {
		typ      string
		location *time.Location
	}{
		{typ: "DateTime", location: tokyo},
		{typ: "DateTime64(0)", location: tokyo},
		{typ: "DateTime('UTC')", location: time.UTC},
		{typ: "DateTime64(0, 'Europe/Paris')", location: mustLoadLocation("Europe/Paris")},
	}

	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			decode, err := rowbinary.NewDecoder(mustParseType(t, test.typ), rowbinary.Location(tokyo))
			if err != nil {
				t.Fatal(err)
			}
			value, _, err := decode(make([]byte, 8), 0)
			if err != nil {
				t.Fatal(err)
			}
			if loc := value.(time.Time).Location(); loc.String() != test.location.String() {
				t.Errorf("location mismatch: want=%s got=%s", test.location, loc)
			}
		})
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		scenario string
		typ      string
		input    []byte
		options  []rowbinary.DecoderOption
	}{
		{
			scenario: "unknown enum index",
			typ:      "Enum8('a' = 1)",
			input:    []byte{2},
		},
		{
			scenario: "invalid null flag",
			typ:      "Nullable(String)",
			input:    []byte{2},
		},
		{
			scenario: "string too long",
			typ:      "String",
			input:    str("hello"),
			options:  []rowbinary.DecoderOption{rowbinary.MaxStringLength(4)},
		},
		{
			scenario: "string longer than the limit with missing bytes",
			typ:      "String",
			input:    uvarint(1 << 40),
		},
		{
			scenario: "array too long",
			typ:      "Array(UInt8)",
			input:    cat(uvarint(2), []byte{1, 2}),
			options:  []rowbinary.DecoderOption{rowbinary.MaxCollectionLength(1)},
		},
		{
			scenario: "map too long",
			typ:      "Map(UInt8, UInt8)",
			input:    cat(uvarint(2), []byte{1, 2, 3, 4}),
			options:  []rowbinary.DecoderOption{rowbinary.MaxCollectionLength(1)},
		},
		{
			scenario: "error in tuple element",
			typ:      "Tuple(UInt8, Enum16('a' = 1))",
			input:    cat([]byte{1}, le16(7)),
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			decode, err := rowbinary.NewDecoder(mustParseType(t, test.typ), test.options...)
			if err != nil {
				t.Fatal(err)
			}
			value, next, err := decode(test.input, 0)
			if err == nil {
				t.Fatalf("expected an error, got %s", dump(value))
			}
			if errors.Is(err, rowbinary.ErrInsufficientData) {
				t.Fatalf("expected a decoding error, got %v", err)
			}
			if next != 0 {
				t.Errorf("offset moved to %d", next)
			}
		})
	}
}

func TestNewDecoderInvalidConfig(t *testing.T) {
	_, err := rowbinary.NewDecoder(mustParseType(t, "String"), rowbinary.MaxStringLength(-1))
	if err == nil {
		t.Fatal("expected an error for a negative string length limit")
	}
}

func TestNewDecoderUnknownTimezone(t *testing.T) {
	_, err := rowbinary.NewDecoder(mustParseType(t, "DateTime('Mars/Olympus_Mons')"))
	if err == nil {
		t.Fatal("expected an error for an unknown time zone")
	}
}

func TestDecodedTypes(t *testing.T) {
	tests := []struct {
		typ  string
		want reflect.Type
	}{
		{typ: "Int128", want: reflect.TypeOf((*big.Int)(nil))},
		{typ: "UUID", want: reflect.TypeOf(uuid.UUID{})},
		{typ: "IPv6", want: reflect.TypeOf(netip.Addr{})},
		{typ: "Decimal(10, 2)", want: reflect.TypeOf(rowbinary.DecimalValue{})},
		{typ: "Map(String, String)", want: reflect.TypeOf((*orderedmap.OrderedMap[any, any])(nil))},
	}

	for _, test := range tests {
		t.Run(test.typ, func(t *testing.T) {
			decode, err := rowbinary.NewDecoder(mustParseType(t, test.typ))
			if err != nil {
				t.Fatal(err)
			}
			value, _, err := decode(make([]byte, 32), 0)
			if err != nil {
				t.Fatal(err)
			}
			if got := reflect.TypeOf(value); got != test.want {
				t.Errorf("type mismatch: want=%s got=%s", test.want, got)
			}
		})
	}
}
