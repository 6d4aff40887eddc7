package rowbinary

import (
	"strconv"
	"strings"
)

// Kind identifies the variant of a ColumnType.
type Kind int8

const (
	Simple Kind = iota
	FixedString
	DateTime
	DateTime64
	Decimal
	Enum
	Nullable
	Array
	Map
	Tuple
)

func (k Kind) String() string {
	switch k {
	case Simple:
		return "Simple"
	case FixedString:
		return "FixedString"
	case DateTime:
		return "DateTime"
	case DateTime64:
		return "DateTime64"
	case Decimal:
		return "Decimal"
	case Enum:
		return "Enum"
	case Nullable:
		return "Nullable"
	case Array:
		return "Array"
	case Map:
		return "Map"
	case Tuple:
		return "Tuple"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ColumnType is the descriptor of a column type, produced by ParseType.
//
// The set of implementations is closed: it is made of the pointer types
// declared in this package (*SimpleType, *FixedStringType, *DateTimeType,
// *DateTime64Type, *DecimalType, *EnumType, *NullableType, *ArrayType,
// *MapType and *TupleType). Column types are immutable and safe to share.
type ColumnType interface {
	// Kind returns the variant of the column type.
	Kind() Kind
	// Source returns the type name the column type was parsed from.
	Source() string
	// String returns the canonical type name.
	String() string

	columnType()
}

// SimpleName is the name of a column type that takes no parameters.
type SimpleName string

const (
	Int8    SimpleName = "Int8"
	Int16   SimpleName = "Int16"
	Int32   SimpleName = "Int32"
	Int64   SimpleName = "Int64"
	Int128  SimpleName = "Int128"
	Int256  SimpleName = "Int256"
	UInt8   SimpleName = "UInt8"
	UInt16  SimpleName = "UInt16"
	UInt32  SimpleName = "UInt32"
	UInt64  SimpleName = "UInt64"
	UInt128 SimpleName = "UInt128"
	UInt256 SimpleName = "UInt256"
	Float32 SimpleName = "Float32"
	Float64 SimpleName = "Float64"
	Bool    SimpleName = "Bool"
	String  SimpleName = "String"
	UUID    SimpleName = "UUID"
	Date    SimpleName = "Date"
	Date32  SimpleName = "Date32"
	IPv4    SimpleName = "IPv4"
	IPv6    SimpleName = "IPv6"
)

var simpleNames = map[SimpleName]struct{}{
	Int8: {}, Int16: {}, Int32: {}, Int64: {}, Int128: {}, Int256: {},
	UInt8: {}, UInt16: {}, UInt32: {}, UInt64: {}, UInt128: {}, UInt256: {},
	Float32: {}, Float64: {}, Bool: {}, String: {}, UUID: {},
	Date: {}, Date32: {}, IPv4: {}, IPv6: {},
}

// SimpleType is a column type without parameters, like Int32 or String.
type SimpleType struct {
	Name   SimpleName
	source string
}

func (t *SimpleType) Kind() Kind { return Simple }
func (t *SimpleType) Source() string { return t.source }
func (t *SimpleType) String() string { return string(t.Name) }
func (t *SimpleType) columnType() {}

// FixedStringType is FixedString(Length).
type FixedStringType struct {
	Length int
	source string
}

func (t *FixedStringType) Kind() Kind { return FixedString }
func (t *FixedStringType) Source() string { return t.source }
func (t *FixedStringType) String() string {
	return "FixedString(" + strconv.Itoa(t.Length) + ")"
}
func (t *FixedStringType) columnType() {}

// DateTimeType is DateTime with an optional time zone.
type DateTimeType struct {
	Timezone string
	source   string
}

func (t *DateTimeType) Kind() Kind { return DateTime }
func (t *DateTimeType) Source() string { return t.source }
func (t *DateTimeType) String() string {
	if t.Timezone == "" {
		return "DateTime"
	}
	return "DateTime(" + quote(t.Timezone) + ")"
}
func (t *DateTimeType) columnType() {}

// DateTime64Type is DateTime64 with a sub-second precision and an optional
// time zone.
type DateTime64Type struct {
	Precision int
	Timezone  string
	source    string
}

func (t *DateTime64Type) Kind() Kind { return DateTime64 }
func (t *DateTime64Type) Source() string { return t.source }
func (t *DateTime64Type) String() string {
	s := "DateTime64(" + strconv.Itoa(t.Precision)
	if t.Timezone != "" {
		s += ", " + quote(t.Timezone)
	}
	return s + ")"
}
func (t *DateTime64Type) columnType() {}

// EnumEntry is one name of an enum type.
type EnumEntry struct {
	Index int
	Name  string
}

// EnumType is Enum8 or Enum16.
type EnumType struct {
	// IntSize is the width of the enum index in bits, 8 or 16.
	IntSize int
	// Values maps enum indexes to names.
	Values map[int]string
	// Entries lists the enum entries in declaration order.
	Entries []EnumEntry
	source  string
}

func (t *EnumType) Kind() Kind { return Enum }
func (t *EnumType) Source() string { return t.source }
func (t *EnumType) String() string {
	var b strings.Builder
	b.WriteString("Enum")
	b.WriteString(strconv.Itoa(t.IntSize))
	b.WriteByte('(')
	for i, e := range t.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(e.Name))
		b.WriteString(" = ")
		b.WriteString(strconv.Itoa(e.Index))
	}
	b.WriteByte(')')
	return b.String()
}
func (t *EnumType) columnType() {}

// NullableType is Nullable(Elem).
type NullableType struct {
	Elem   ColumnType
	source string
}

func (t *NullableType) Kind() Kind { return Nullable }
func (t *NullableType) Source() string { return t.source }
func (t *NullableType) String() string { return "Nullable(" + t.Elem.String() + ")" }
func (t *NullableType) columnType() {}

// ArrayType is Array(Elem) nested Dimensions times. Elem is never an array.
type ArrayType struct {
	Elem       ColumnType
	Dimensions int
	source     string
}

func (t *ArrayType) Kind() Kind { return Array }
func (t *ArrayType) Source() string { return t.source }
func (t *ArrayType) String() string {
	return strings.Repeat("Array(", t.Dimensions) + t.Elem.String() + strings.Repeat(")", t.Dimensions)
}
func (t *ArrayType) columnType() {}

// MapType is Map(Key, Value).
type MapType struct {
	Key    ColumnType
	Value  ColumnType
	source string
}

func (t *MapType) Kind() Kind { return Map }
func (t *MapType) Source() string { return t.source }
func (t *MapType) String() string {
	return "Map(" + t.Key.String() + ", " + t.Value.String() + ")"
}
func (t *MapType) columnType() {}

// TupleType is Tuple(Elems...). Names is nil unless the tuple elements are
// named, in which case it has one name per element.
type TupleType struct {
	Elems  []ColumnType
	Names  []string
	source string
}

func (t *TupleType) Kind() Kind { return Tuple }
func (t *TupleType) Source() string { return t.source }
func (t *TupleType) String() string {
	var b strings.Builder
	b.WriteString("Tuple(")
	for i, elem := range t.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		if t.Names != nil {
			b.WriteString(identifier(t.Names[i]))
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (t *TupleType) columnType() {}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func identifier(name string) string {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (i > 0 && '0' <= c && c <= '9')) {
			return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
		}
	}
	return name
}
