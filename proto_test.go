package rowbinary_test

import (
	"math"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/rowbinary"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func mustValue(t *testing.T, v any) *structpb.Value {
	t.Helper()
	value, err := structpb.NewValue(v)
	require.NoError(t, err)
	return value
}

func mustDecoder(t *testing.T, source string) rowbinary.Decoder {
	t.Helper()
	decode, err := rowbinary.NewDecoder(mustParseType(t, source))
	require.NoError(t, err)
	return decode
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		scenario string
		input    any
		want     any
	}{
		{"null", nil, nil},
		{"bool", true, true},
		{"int8", int8(-8), -8.0},
		{"uint32", uint32(1 << 31), float64(1 << 31)},
		{"int64", int64(-1 << 62), "-4611686018427387904"},
		{"uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"float32", float32(0.5), 0.5},
		{"nan", math.NaN(), "NaN"},
		{"+inf", math.Inf(+1), "Infinity"},
		{"-inf", float32(math.Inf(-1)), "-Infinity"},
		{"string", "hello", "hello"},
		{"big", bigInt("-170141183460469231731687303715884105728"), "-170141183460469231731687303715884105728"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC), "2024-01-02T03:04:05.000006Z"},
		{"uuid", uuid.MustParse("61f0c404-5cb3-11e7-907b-a6006ad3dba0"), "61f0c404-5cb3-11e7-907b-a6006ad3dba0"},
		{"ipv4", netip.MustParseAddr("192.168.0.1"), "192.168.0.1"},
		{"list", []any{int8(1), nil, "x"}, []any{1.0, nil, "x"}},
		{"map", orderedMap(int32(1), "a", int32(2), []any{}), map[string]any{"1": "a", "2": []any{}}},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			got, err := rowbinary.ValueOf(test.input)
			require.NoError(t, err)
			want := mustValue(t, test.want)
			require.True(t, proto.Equal(want, got), "want %v, got %v", want, got)
		})
	}
}

func TestValueOfDecimal(t *testing.T) {
	decode := mustDecoder(t, "Decimal(9, 3)")
	v, _, err := decode(le32(uint32(0xFFFFFFFF)), 0) // -1
	require.NoError(t, err)

	got, err := rowbinary.ValueOf(v)
	require.NoError(t, err)
	require.Equal(t, "-0.001", got.GetStringValue())
}

func TestValueOfUnsupported(t *testing.T) {
	_, err := rowbinary.ValueOf(struct{}{})
	require.Error(t, err)

	_, err = rowbinary.ValueOf([]any{1, complex(1, 2)})
	require.Error(t, err)
}

func TestRowStruct(t *testing.T) {
	stream := cat(
		header(
			"id", "UInt64",
			"point", "Tuple(x Float64, y Float64)",
			"pair", "Tuple(String, Int8)",
			"grid", "Array(Array(Tuple(a Nullable(UInt8))))",
			"attrs", "Map(String, Tuple(n Int16))",
		),
		le64(42),
		le64(math.Float64bits(1.5)), le64(math.Float64bits(-2)),
		str("p"), []byte{0xFF},
		uvarint(2), uvarint(1), []byte{0, 7}, uvarint(1), []byte{1},
		uvarint(1), str("k"), le16(3),
	)

	h, err := rowbinary.DecodeHeader(stream)
	require.NoError(t, err)
	row, _, err := h.DecodeRow(stream, h.Offset)
	require.NoError(t, err)

	got, err := rowbinary.RowStruct(h, row)
	require.NoError(t, err)

	want, err := structpb.NewStruct(map[string]any{
		"id":    "42",
		"point": map[string]any{"x": 1.5, "y": -2.0},
		"pair":  []any{"p", -1.0},
		"grid": []any{
			[]any{map[string]any{"a": 7.0}},
			[]any{map[string]any{"a": nil}},
		},
		"attrs": map[string]any{"k": map[string]any{"n": 3.0}},
	})
	require.NoError(t, err)
	require.True(t, proto.Equal(want, got), "want %v, got %v", want, got)
}

func TestRowStructMismatch(t *testing.T) {
	h, err := rowbinary.DecodeHeader(header("a", "Int8", "b", "Int8"))
	require.NoError(t, err)

	_, err = rowbinary.RowStruct(h, []any{int8(1)})
	require.Error(t, err)
}
