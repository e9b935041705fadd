package card

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Width is the length of every header card.
	Width = 80
	// KeywordWidth is the width of the keyword field.
	KeywordWidth = 8
	// valueStart is the 0-based column where a standard value begins.
	valueStart = 10
	// maxStringChunk is the number of characters of quoted text carried by
	// one long-string card before its '&'.
	maxStringChunk = 67
	// commentaryWidth is the text width of COMMENT and HISTORY cards.
	commentaryWidth = Width - KeywordWidth
)

// Keyword names with special meaning.
const (
	Comment  = "COMMENT"
	History  = "HISTORY"
	Continue = "CONTINUE"
	End      = "END"
	Hierarch = "HIERARCH"
)

var (
	ErrBadKeyword   = errors.New("illegal character in keyword name")
	ErrNoQuote      = errors.New("string is missing the closing quote")
	ErrNotString    = errors.New("value is not a quoted string")
	ErrValueTooLong = errors.New("value does not fit in one card")
	ErrBadFloat     = errors.New("value cannot be represented as a FITS float")
)

// EndCard is the blank-padded END record that terminates a header.
var EndCard = Pad(End)

// Pad blank-fills c to Width characters, truncating longer text.
func Pad(c string) string {
	if len(c) >= Width {
		return c[:Width]
	}
	return c + strings.Repeat(" ", Width-len(c))
}

// IsCommentary reports whether key names a card that never carries a value.
func IsCommentary(key string) bool {
	switch key {
	case Comment, History, Continue, End, "":
		return true
	}
	return false
}

// IsStandard reports whether key can be written as a standard 8-character
// keyword: upper case letters, digits, '-' and '_'.
func IsStandard(key string) bool {
	if len(key) == 0 || len(key) > KeywordWidth {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// Normalize returns the name a key is stored under. Short keys are upper
// cased; anything else is kept verbatim for the HIERARCH convention.
func Normalize(key string) string {
	key = strings.TrimSpace(key)
	if up := strings.ToUpper(key); IsStandard(up) {
		return up
	}
	return key
}

// validHierarch reports whether key is usable after HIERARCH.
func validHierarch(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		if c := key[i]; c < ' ' || c > '~' || c == '=' {
			return false
		}
	}
	return true
}

// Keyword returns the keyword name of card c.
func Keyword(c string) string {
	if isHierarch(c) {
		rest := c[len(Hierarch)+1:]
		if eq := strings.IndexByte(rest, '='); eq >= 0 {
			return strings.TrimSpace(rest[:eq])
		}
		return strings.TrimSpace(rest)
	}
	if len(c) > KeywordWidth {
		c = c[:KeywordWidth]
	}
	return strings.TrimRight(c, " ")
}

func isHierarch(c string) bool {
	return strings.HasPrefix(c, Hierarch+" ") && strings.IndexByte(c, '=') > 0
}

// valueIndex returns the index of the value field of c, or -1 when c has no
// value indicator.
func valueIndex(c string) int {
	if isHierarch(c) {
		return strings.IndexByte(c, '=') + 1
	}
	if len(c) < valueStart || c[8:10] != "= " {
		return -1
	}
	if IsCommentary(Keyword(c)) {
		return -1
	}
	return valueStart
}

// HasValue reports whether c carries a value indicator.
func HasValue(c string) bool {
	return valueIndex(c) >= 0
}

// Split separates the raw value text and the comment of card c. String
// values keep their enclosing quotes. Cards without a value indicator
// return an empty value and columns 9-80 as the comment.
func Split(c string) (value, comment string, err error) {
	idx := valueIndex(c)
	if idx < 0 {
		if len(c) <= KeywordWidth {
			return "", "", nil
		}
		return "", strings.TrimRight(c[KeywordWidth:], " "), nil
	}

	v := strings.TrimLeft(c[idx:], " ")
	var rest string
	switch {
	case strings.HasPrefix(v, "'"):
		end := closingQuote(v)
		if end < 0 {
			return "", "", fmt.Errorf("%w: %q", ErrNoQuote, c)
		}
		value, rest = v[:end+1], v[end+1:]
	case strings.HasPrefix(v, "("):
		end := strings.IndexByte(v, ')')
		if end < 0 {
			end = len(v) - 1
			if slash := strings.IndexByte(v, '/'); slash >= 0 {
				end = slash - 1
			}
		}
		value, rest = strings.TrimRight(v[:end+1], " "), v[end+1:]
	default:
		if slash := strings.IndexByte(v, '/'); slash >= 0 {
			value, rest = v[:slash], v[slash:]
		} else {
			value = v
		}
		value = strings.TrimRight(value, " ")
	}

	rest = strings.TrimLeft(rest, " ")
	if strings.HasPrefix(rest, "/") {
		rest = strings.TrimPrefix(rest[1:], " ")
	}
	return value, strings.TrimRight(rest, " "), nil
}

// closingQuote returns the index in s (which starts with a quote) of the
// quote that ends the string, skipping doubled quotes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			i++
			continue
		}
		return i
	}
	return -1
}

// New builds a padded card from a keyword, preformatted value text and
// comment. Comments that do not fit are truncated.
func New(key, value, comment string) (string, error) {
	prefix, err := prefixFor(key)
	if err != nil {
		return "", err
	}
	c := prefix + value
	if len(c) > Width {
		return "", fmt.Errorf("%w: %s", ErrValueTooLong, key)
	}
	if comment != "" && len(c) < valueStart+fixedWidth {
		c += strings.Repeat(" ", valueStart+fixedWidth-len(c))
	}
	return Pad(withComment(c, comment)), nil
}

// prefixFor returns the keyword and value indicator text for key.
func prefixFor(key string) (string, error) {
	switch {
	case IsStandard(key):
		return fmt.Sprintf("%-8s= ", key), nil
	case validHierarch(key):
		return fmt.Sprintf("%s %s = ", Hierarch, key), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadKeyword, key)
	}
}

func withComment(c, comment string) string {
	if comment == "" {
		return c
	}
	c += " / " + comment
	if len(c) > Width {
		c = c[:Width]
	}
	return c
}

// NewCommentary builds COMMENT, HISTORY or blank-keyword cards holding
// text, splitting it over as many cards as needed.
func NewCommentary(key, text string) []string {
	if text == "" {
		return []string{Pad(key)}
	}
	var cards []string
	for len(text) > 0 {
		n := min(len(text), commentaryWidth)
		cards = append(cards, Pad(fmt.Sprintf("%-8s%s", key, text[:n])))
		text = text[n:]
	}
	return cards
}

// NewString builds the card or cards holding a string value. Values too
// long for one card are split with the long-string convention so that no
// text is lost.
func NewString(key, value, comment string) ([]string, error) {
	prefix, err := prefixFor(key)
	if err != nil {
		return nil, err
	}
	escaped := strings.ReplaceAll(value, "'", "''")

	room := Width - len(prefix) - 2
	if room < 2 {
		return nil, fmt.Errorf("%w: %s", ErrValueTooLong, key)
	}
	if len(escaped) <= room {
		c, err := New(key, Quote(value), comment)
		if err != nil {
			return nil, err
		}
		return []string{c}, nil
	}

	chunks := splitEscaped(escaped, room-1, maxStringChunk)
	cards := make([]string, 0, len(chunks)+1)
	for i, chunk := range chunks {
		last := i == len(chunks)-1
		var c string
		if i == 0 {
			c = prefix + "'" + chunk
		} else {
			c = fmt.Sprintf("%-10s'%s", Continue, chunk)
		}
		if !last {
			cards = append(cards, Pad(c+"&'"))
			continue
		}
		c += "'"
		if comment != "" && len(c)+3+len(comment) > Width {
			// Move the comment to its own trailing card.
			cards = append(cards, Pad(strings.TrimSuffix(c, "'")+"&'"))
			c = fmt.Sprintf("%-10s''", Continue)
		}
		cards = append(cards, Pad(withComment(c, comment)))
	}
	return cards, nil
}

// splitEscaped cuts s into a first piece of at most first bytes followed
// by pieces of at most n bytes, never separating the two halves of a
// doubled quote.
func splitEscaped(s string, first, n int) []string {
	var out []string
	size := first
	for len(s) > size {
		cut := size
		// An odd run of quotes before the cut means it falls inside a
		// doubled quote.
		run := 0
		for i := cut - 1; i >= 0 && s[i] == '\''; i-- {
			run++
		}
		if run%2 == 1 {
			cut--
		}
		out = append(out, s[:cut])
		s = s[cut:]
		size = n
	}
	return append(out, s)
}

// Quote renders s as a FITS string literal: doubled inner quotes and at
// least eight characters between the quotes.
func Quote(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	if len(s) < 8 {
		s += strings.Repeat(" ", 8-len(s))
	}
	return "'" + s + "'"
}

// Unquote returns the text of a FITS string literal with doubled quotes
// collapsed and trailing blanks removed.
func Unquote(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "'") {
		return "", fmt.Errorf("%w: %s", ErrNotString, raw)
	}
	end := closingQuote(raw)
	if end < 0 {
		return "", fmt.Errorf("%w: %s", ErrNoQuote, raw)
	}
	s := strings.ReplaceAll(raw[1:end], "''", "'")
	return strings.TrimRight(s, " "), nil
}

// ContinueFragment extracts the quoted fragment and comment of a CONTINUE
// card. The fragment runs from after the opening quote up to and including
// the closing quote, ready to be appended to a value whose "&'" suffix has
// been removed.
func ContinueFragment(c string) (fragment, comment string, err error) {
	first := strings.IndexByte(c, '\'')
	if first < 0 {
		return "", "", ErrNoQuote
	}
	last := closingQuote(c[first:])
	if last < 0 {
		return "", "", ErrNoQuote
	}
	last += first
	fragment = c[first+1 : last+1]
	if slash := strings.IndexByte(c[last+1:], '/'); slash >= 0 {
		comment = strings.TrimSpace(c[last+1+slash+1:])
	}
	return fragment, comment, nil
}

// IsContinued reports whether raw string value text ends in the long-string
// marker.
func IsContinued(value string) bool {
	return len(value) > 2 && value[len(value)-2] == '&'
}
