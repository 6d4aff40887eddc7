package rowbinary

import "strings"

// splitElements splits the comma separated list of s. Commas nested in
// parentheses or quoted strings do not separate elements, and quoted strings
// may contain escaped quotes, as in Tuple(String, Enum8('f\'()' = 1)).
//
// The elements are returned with surrounding spaces removed. The function
// fails if an element is empty or if there are fewer than minElements.
func (p *typeParser) splitElements(s string, minElements int) ([]string, error) {
	elems := make([]string, 0, minElements)
	depth, start := 0, 0
	var quote byte

	for i := 0; i < len(s); i++ {
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
			if depth--; depth < 0 {
				return nil, p.fail(s, "unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				elems = append(elems, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	switch {
	case quote != 0:
		return nil, p.fail(s, "unterminated quote")
	case depth != 0:
		return nil, p.fail(s, "unbalanced parentheses")
	}

	elems = append(elems, strings.TrimSpace(s[start:]))
	for _, elem := range elems {
		if elem == "" {
			return nil, p.fail(s, "empty element")
		}
	}
	if len(elems) < minElements {
		return nil, p.failf(s, "expected at least %d elements, got %d", minElements, len(elems))
	}
	return elems, nil
}
