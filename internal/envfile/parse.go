package envfile

import (
	"fmt"
	"strings"
)

func parseLine(line string, num int) (Row, error) {
	raw := line
	body, cr := strings.CutSuffix(line, "\r")

	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return Row{Kind: RowEmpty, Num: num, raw: raw}, nil
	}

	if after, ok := strings.CutPrefix(trimmed, "#"); ok {
		return Row{
			Kind:    RowComment,
			Num:     num,
			Comment: strings.TrimPrefix(after, " "),
			raw:     raw,
		}, nil
	}

	d, err := parseDeclaration(body)
	if err != nil {
		return Row{}, &ParseError{Line: num, Text: raw, Err: err}
	}
	if cr {
		d.tail += "\r"
	}
	d.raw = raw
	return Row{Kind: RowDeclaration, Num: num, Declaration: d}, nil
}

func parseDeclaration(line string) (Declaration, error) {
	eq := strings.IndexByte(line, '=')
	if eq == -1 {
		return Declaration{}, ErrMissingSeparator
	}

	var d Declaration
	name := strings.TrimSpace(line[:eq])
	if rest, ok := strings.CutPrefix(name, "export"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
		name = strings.TrimSpace(rest)
		d.Exported = true
	}
	if !ValidKey(name) {
		return Declaration{}, fmt.Errorf("%w %q", ErrInvalidKey, name)
	}
	d.Name = name

	valuePart := line[eq+1:]
	lead := len(valuePart) - len(strings.TrimLeft(valuePart, " \t"))
	d.head = line[:eq+1+lead]
	valuePart = valuePart[lead:]

	var (
		value string
		rest  string
		err   error
	)
	switch {
	case strings.HasPrefix(valuePart, "'"):
		d.Quote = QuoteSingle
		value, rest, err = scanSingle(valuePart[1:])
	case strings.HasPrefix(valuePart, `"`):
		d.Quote = QuoteDouble
		value, rest, err = scanDouble(valuePart[1:])
	default:
		value, rest = scanBare(valuePart)
	}
	if err != nil {
		return Declaration{}, err
	}

	comment, err := inlineComment(rest)
	if err != nil {
		return Declaration{}, err
	}

	d.Value = value
	d.Comment = comment
	d.tail = rest
	d.origValue = value
	d.origQuote = d.Quote
	return d, nil
}

// scanBare reads an unquoted value. The value ends at the first '#' and
// never carries trailing whitespace.
func scanBare(s string) (value, rest string) {
	end := strings.IndexByte(s, '#')
	if end == -1 {
		end = len(s)
	}
	value = strings.TrimRight(s[:end], " \t")
	return value, s[len(value):]
}

func scanSingle(s string) (value, rest string, err error) {
	end := strings.IndexByte(s, '\'')
	if end == -1 {
		return "", "", ErrUnterminatedQuote
	}
	return s[:end], s[end+1:], nil
}

func scanDouble(s string) (value, rest string, err error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 == len(s) {
				return "", "", ErrUnterminatedQuote
			}
			i++
			switch next := s[i]; next {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '$', '\'':
				b.WriteByte(next)
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "", ErrUnterminatedQuote
}

// inlineComment validates what follows a value: optional whitespace, then
// either nothing or a '#' comment.
func inlineComment(rest string) (string, error) {
	trimmed := strings.TrimLeft(rest, " \t")
	if trimmed == "" {
		return "", nil
	}
	after, ok := strings.CutPrefix(trimmed, "#")
	if !ok {
		return "", ErrTrailingText
	}
	return strings.TrimSpace(after), nil
}
