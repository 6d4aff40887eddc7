package rowbinary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/parquet-go/rowbinary/wire"
)

// MaxArrayDimensions is the maximum number of nested Array wrappers accepted
// by ParseType.
const MaxArrayDimensions = 10

// ParseType parses a column type name as reported in the header of a result
// set, for example "Nullable(Decimal(18, 4))" or "Map(String, Array(UInt8))".
//
// LowCardinality wrappers are accepted and dropped: they do not change the
// row encoding of the wrapped type.
//
// The returned error is always a *TypeParseError.
func ParseType(source string) (ColumnType, error) {
	p := typeParser{source: source}
	return p.parse(source)
}

type typeParser struct {
	source string
}

func (p *typeParser) fail(offending, reason string) error {
	return &TypeParseError{
		Reason:    reason,
		Source:    p.source,
		Offending: offending,
	}
}

func (p *typeParser) failf(offending, format string, args ...any) error {
	return p.fail(offending, fmt.Sprintf(format, args...))
}

func (p *typeParser) parse(s string) (ColumnType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, p.fail(s, "empty type name")
	}

	name, body, hasArgs, err := p.call(s)
	if err != nil {
		return nil, err
	}

	switch name {
	case "LowCardinality":
		if !hasArgs {
			break
		}
		return p.parse(body)

	case "Nullable":
		if !hasArgs {
			break
		}
		return p.parseNullable(s, body)

	case "Decimal":
		if !hasArgs {
			break
		}
		return p.parseDecimal(s, body)

	case "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		if !hasArgs {
			break
		}
		return p.parseDecimalAlias(s, name, body)

	case "DateTime64":
		if !hasArgs {
			break
		}
		return p.parseDateTime64(s, body)

	case "DateTime":
		if !hasArgs {
			return &DateTimeType{source: s}, nil
		}
		return p.parseDateTime(s, body)

	case "FixedString":
		if !hasArgs {
			break
		}
		n, err := p.parseInt(body, "fixed string length")
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, p.fail(s, "fixed string length must be at least 1")
		}
		return &FixedStringType{Length: n, source: s}, nil

	case "Enum8":
		if !hasArgs {
			break
		}
		return p.parseEnum(s, 8, body)

	case "Enum16":
		if !hasArgs {
			break
		}
		return p.parseEnum(s, 16, body)

	case "Array":
		if !hasArgs {
			break
		}
		return p.parseArray(s, body)

	case "Map":
		if !hasArgs {
			break
		}
		return p.parseMap(s, body)

	case "Tuple":
		if !hasArgs {
			break
		}
		return p.parseTuple(s, body)

	default:
		if _, ok := simpleNames[SimpleName(name)]; ok && !hasArgs {
			return &SimpleType{Name: SimpleName(name), source: s}, nil
		}
	}

	if hasArgs {
		return nil, p.failf(s, "unsupported type %s", name)
	}
	return nil, p.fail(s, "unsupported type")
}

// call splits s into the name of the type and the content of its parenthesis.
// The parenthesis closing the one that follows the name must end s.
func (p *typeParser) call(s string) (name, body string, hasArgs bool, err error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsAny(s, ")'`, ") {
			return "", "", false, p.fail(s, "malformed type name")
		}
		return s, "", false, nil
	}
	name = s[:open]
	if name == "" || strings.ContainsAny(name, ")'`, ") {
		return "", "", false, p.fail(s, "malformed type name")
	}
	end := matchParen(s, open)
	if end < 0 {
		return "", "", false, p.fail(s, "unbalanced parentheses")
	}
	if end != len(s)-1 {
		return "", "", false, p.fail(s[end+1:], "unexpected characters after closing parenthesis")
	}
	return name, s[open+1 : end], true, nil
}

// matchParen returns the index of the parenthesis closing the one at s[open],
// skipping over quoted sections, or -1 if there is none.
func matchParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '`':
			quote = c
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *typeParser) parseInt(s, what string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, p.failf(s, "missing %s", what)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, p.failf(s, "%s must be a non-negative integer", what)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.failf(s, "%s is out of range", what)
	}
	return n, nil
}

func (p *typeParser) parseNullable(s, body string) (ColumnType, error) {
	elem, err := p.parse(body)
	if err != nil {
		return nil, err
	}
	switch elem.Kind() {
	case Array, Map, Tuple, Nullable:
		return nil, p.failf(s, "%s cannot be nullable", elem.Kind())
	}
	return &NullableType{Elem: elem, source: s}, nil
}

func (p *typeParser) parseDecimal(s, body string) (ColumnType, error) {
	args, err := p.splitElements(body, 1)
	if err != nil {
		return nil, err
	}
	if len(args) > 2 {
		return nil, p.fail(s, "decimal takes a precision and a scale")
	}
	precision, err := p.parseInt(args[0], "decimal precision")
	if err != nil {
		return nil, err
	}
	scale := 0
	if len(args) == 2 {
		if scale, err = p.parseInt(args[1], "decimal scale"); err != nil {
			return nil, err
		}
	}
	return p.decimal(s, precision, scale)
}

func (p *typeParser) parseDecimalAlias(s, name, body string) (ColumnType, error) {
	scale, err := p.parseInt(body, "decimal scale")
	if err != nil {
		return nil, err
	}
	var precision int
	switch name {
	case "Decimal32":
		precision = maxDecimal32Precision
	case "Decimal64":
		precision = maxDecimal64Precision
	case "Decimal128":
		precision = maxDecimal128Precision
	default:
		precision = MaxDecimalPrecision
	}
	return p.decimal(s, precision, scale)
}

func (p *typeParser) decimal(s string, precision, scale int) (ColumnType, error) {
	if precision < 1 || precision > MaxDecimalPrecision {
		return nil, p.failf(s, "decimal precision %d is out of range [1:%d]", precision, MaxDecimalPrecision)
	}
	if scale > precision {
		return nil, p.failf(s, "decimal scale %d is out of range [0:%d]", scale, precision)
	}
	return newDecimalType(precision, scale, s), nil
}

func (p *typeParser) parseDateTime(s, body string) (ColumnType, error) {
	args, err := p.splitElements(body, 1)
	if err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, p.fail(s, "datetime takes a single time zone")
	}
	tz, err := p.timezone(args[0])
	if err != nil {
		return nil, err
	}
	return &DateTimeType{Timezone: tz, source: s}, nil
}

func (p *typeParser) parseDateTime64(s, body string) (ColumnType, error) {
	args, err := p.splitElements(body, 1)
	if err != nil {
		return nil, err
	}
	if len(args) > 2 {
		return nil, p.fail(s, "datetime64 takes a precision and a time zone")
	}
	precision, err := p.parseInt(args[0], "datetime64 precision")
	if err != nil {
		return nil, err
	}
	if precision > wire.MaxDateTime64Precision {
		return nil, p.failf(s, "datetime64 precision %d is out of range [0:%d]", precision, wire.MaxDateTime64Precision)
	}
	t := &DateTime64Type{Precision: precision, source: s}
	if len(args) == 2 {
		if t.Timezone, err = p.timezone(args[1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (p *typeParser) timezone(s string) (string, error) {
	tz, err := p.unquote(s)
	if err != nil {
		return "", err
	}
	if tz == "" {
		return "", p.fail(s, "empty time zone")
	}
	return tz, nil
}

// unquote removes the single quotes around s, if any, and resolves the
// escape sequences between them.
func (p *typeParser) unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "'") {
		return s, nil
	}
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '\'':
			if i != len(s)-1 {
				return "", p.fail(s, "unexpected characters after closing quote")
			}
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", p.fail(s, "unterminated quote")
}

func (p *typeParser) parseArray(s, body string) (ColumnType, error) {
	dimensions := 1
	for {
		name, inner, hasArgs, err := p.call(strings.TrimSpace(body))
		if err != nil || name != "Array" || !hasArgs {
			break
		}
		if dimensions++; dimensions > MaxArrayDimensions {
			return nil, p.failf(s, "too many array dimensions (max %d)", MaxArrayDimensions)
		}
		body = inner
	}
	elem, err := p.parse(body)
	if err != nil {
		return nil, err
	}
	if elem.Kind() == Array {
		return nil, p.fail(body, "array element cannot be an array hidden behind another type")
	}
	return &ArrayType{Elem: elem, Dimensions: dimensions, source: s}, nil
}

func (p *typeParser) parseMap(s, body string) (ColumnType, error) {
	elems, err := p.splitElements(body, 2)
	if err != nil {
		return nil, err
	}
	if len(elems) != 2 {
		return nil, p.failf(s, "map takes a key and a value type, got %d types", len(elems))
	}
	key, err := p.parse(elems[0])
	if err != nil {
		return nil, err
	}
	switch key.Kind() {
	case Simple, FixedString, Enum, DateTime:
	default:
		return nil, p.failf(elems[0], "%s cannot be used as map key", key.Kind())
	}
	value, err := p.parse(elems[1])
	if err != nil {
		return nil, err
	}
	return &MapType{Key: key, Value: value, source: s}, nil
}

func (p *typeParser) parseTuple(s, body string) (ColumnType, error) {
	elems, err := p.splitElements(body, 1)
	if err != nil {
		return nil, err
	}
	t := &TupleType{Elems: make([]ColumnType, len(elems)), source: s}
	for i, elem := range elems {
		name, typ, named, err := p.tupleElement(elem)
		if err != nil {
			return nil, err
		}
		switch {
		case named && i == 0:
			t.Names = make([]string, len(elems))
		case named != (t.Names != nil):
			return nil, p.fail(s, "mixed named and unnamed tuple elements")
		}
		if named {
			t.Names[i] = name
		}
		if t.Elems[i], err = p.parse(typ); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// tupleElement separates the optional name of a tuple element from its type.
// Names are identifiers or back-quoted strings followed by a space; a type
// never has a space before its first parenthesis.
func (p *typeParser) tupleElement(elem string) (name, typ string, named bool, err error) {
	if strings.HasPrefix(elem, "`") {
		var b strings.Builder
		for i := 1; i < len(elem); i++ {
			switch c := elem[i]; c {
			case '\\':
				if i++; i < len(elem) {
					b.WriteByte(elem[i])
				}
			case '`':
				typ = strings.TrimSpace(elem[i+1:])
				if b.Len() == 0 || typ == "" {
					return "", "", false, p.fail(elem, "malformed tuple element name")
				}
				return b.String(), typ, true, nil
			default:
				b.WriteByte(c)
			}
		}
		return "", "", false, p.fail(elem, "unterminated quote")
	}

	space := strings.IndexAny(elem, " \t\n")
	paren := strings.IndexByte(elem, '(')
	if space < 0 || (paren >= 0 && paren < space) {
		return "", elem, false, nil
	}
	name = elem[:space]
	if identifier(name) != name {
		return "", elem, false, nil
	}
	return name, strings.TrimSpace(elem[space:]), true, nil
}
