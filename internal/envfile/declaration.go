package envfile

import (
	"regexp"
	"strings"
)

type Quote int

const (
	QuoteNone Quote = iota
	QuoteSingle
	QuoteDouble
)

func (q Quote) String() string {
	switch q {
	case QuoteSingle:
		return "single"
	case QuoteDouble:
		return "double"
	default:
		return "none"
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether name can be used as a declaration key.
func ValidKey(name string) bool {
	return keyPattern.MatchString(name)
}

// Declaration is a single KEY=value line. It keeps the text around the value
// so an unchanged declaration renders exactly as it was read.
type Declaration struct {
	Name     string
	Value    string
	Quote    Quote
	Exported bool
	Comment  string

	raw       string
	head      string
	tail      string
	origValue string
	origQuote Quote
}

// NewDeclaration builds a declaration with the default NAME=value rendering.
// The value is double-quoted only when it cannot be written bare.
func NewDeclaration(name, value string) Declaration {
	q := QuoteNone
	if !representable(value, QuoteNone) {
		q = QuoteDouble
	}
	return Declaration{
		Name:  name,
		Value: value,
		Quote: q,
		head:  name + "=",
	}
}

// WithValue returns a copy of d carrying value. Formatting around the value
// is kept.
func (d Declaration) WithValue(value string) Declaration {
	d.Value = value
	return d
}

// Modified reports whether d differs from the line it was parsed from.
func (d Declaration) Modified() bool {
	return d.raw == "" || d.Value != d.origValue || d.Quote != d.origQuote
}

func (d Declaration) String() string {
	if !d.Modified() {
		return d.raw
	}
	head := d.head
	if head == "" {
		head = d.Name + "="
	}
	q := d.Quote
	if !representable(d.Value, q) {
		q = QuoteDouble
	}
	return head + encodeValue(d.Value, q) + d.tail
}

func representable(value string, q Quote) bool {
	switch q {
	case QuoteSingle:
		return !strings.ContainsAny(value, "'\n\r")
	case QuoteDouble:
		return true
	}
	if value == "" {
		return true
	}
	if strings.ContainsAny(value, "#\n\r") {
		return false
	}
	if value[0] == '"' || value[0] == '\'' {
		return false
	}
	return strings.TrimSpace(value) == value
}

func encodeValue(value string, q Quote) string {
	switch q {
	case QuoteSingle:
		return "'" + value + "'"
	case QuoteDouble:
		var b strings.Builder
		b.Grow(len(value) + 2)
		b.WriteByte('"')
		for i := 0; i < len(value); i++ {
			switch c := value[i]; c {
			case '\\':
				b.WriteString(`\\`)
			case '"':
				b.WriteString(`\"`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('"')
		return b.String()
	default:
		return value
	}
}
