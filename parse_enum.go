package rowbinary

import (
	"math"
	"strconv"
	"strings"
)

// parseEnum parses the body of Enum8 and Enum16 types:
//
//	'name' = index, 'name' = index, ...
//
// Names are single-quoted and a backslash escapes the character that follows
// it, so names may contain quotes, parentheses, commas or equal signs.
func (p *typeParser) parseEnum(s string, intSize int, body string) (ColumnType, error) {
	maxIndex := math.MaxInt8
	if intSize == 16 {
		maxIndex = math.MaxInt16
	}

	t := &EnumType{
		IntSize: intSize,
		Values:  make(map[int]string),
		source:  s,
	}
	names := make(map[string]struct{})

	var token strings.Builder
	i := skipSpaces(body, 0)
	if i == len(body) {
		return nil, p.fail(s, "enum has no values")
	}

	for {
		entry := body[i:]
		if body[i] != '\'' {
			return nil, p.fail(entry, "expected quoted enum name")
		}

		token.Reset()
		inQuote, escaped := true, false
		for i++; i < len(body) && inQuote; i++ {
			c := body[i]
			switch {
			case escaped:
				token.WriteByte(c)
				escaped = false
			case c == '\\':
				escaped = true
			case c == '\'':
				inQuote = false
			default:
				token.WriteByte(c)
			}
		}
		if inQuote {
			return nil, p.fail(entry, "unterminated enum name")
		}
		name := token.String()

		if i = skipSpaces(body, i); i == len(body) || body[i] != '=' {
			return nil, p.fail(entry, "expected '=' after enum name")
		}
		i = skipSpaces(body, i+1)

		start := i
		for i < len(body) && '0' <= body[i] && body[i] <= '9' {
			i++
		}
		if start == i {
			return nil, p.fail(entry, "enum index must be a non-negative integer")
		}
		index, err := strconv.Atoi(body[start:i])
		if err != nil || index > maxIndex {
			return nil, p.failf(entry, "enum index %s is out of range [0:%d]", body[start:i], maxIndex)
		}
		if _, dup := t.Values[index]; dup {
			return nil, p.failf(entry, "duplicate enum index %d", index)
		}
		if _, dup := names[name]; dup {
			return nil, p.failf(entry, "duplicate enum name %q", name)
		}
		names[name] = struct{}{}
		t.Values[index] = name
		t.Entries = append(t.Entries, EnumEntry{Index: index, Name: name})

		if i = skipSpaces(body, i); i == len(body) {
			return t, nil
		}
		if body[i] != ',' {
			return nil, p.fail(entry, "expected ',' after enum index")
		}
		if i = skipSpaces(body, i+1); i == len(body) {
			return nil, p.fail(entry, "expected enum entry after ','")
		}
	}
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	return i
}
