package track

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field selects the attribute records are ordered or searched by.
type Field string

// Supported fields.
const (
	FieldID         Field = "id"
	FieldName       Field = "name"
	FieldArtist     Field = "artist"
	FieldAlbum      Field = "album"
	FieldYear       Field = "year"
	FieldPopularity Field = "popularity"
	FieldDuration   Field = "duration_ms"
)

// Kind tells how a field's values compare.
type Kind int

// Field kinds.
const (
	KindNumeric Kind = iota
	KindText
)

// Sentinel errors.
var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidTarget = errors.New("invalid search target")
)

// accessor reads one field of a track. Exactly one of num and text is set.
type accessor struct {
	num  func(Track) int64
	text func(Track) string
}

var accessors = map[Field]accessor{
	FieldID:         {num: func(t Track) int64 { return t.ID }},
	FieldYear:       {num: func(t Track) int64 { return t.Year }},
	FieldPopularity: {num: func(t Track) int64 { return t.Popularity }},
	FieldDuration:   {num: func(t Track) int64 { return t.DurationMs }},
	FieldName:       {text: func(t Track) string { return t.Name }},
	FieldArtist:     {text: func(t Track) string { return t.Artist }},
	FieldAlbum:      {text: func(t Track) string { return t.Album }},
}

// Fields returns every supported field in display order.
func Fields() []Field {
	return []Field{FieldID, FieldName, FieldArtist, FieldAlbum, FieldYear, FieldPopularity, FieldDuration}
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := accessors[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	return f, nil
}

// Kind returns how the field compares. Unknown fields compare as text.
func (f Field) Kind() Kind {
	if accessors[f].num != nil {
		return KindNumeric
	}

	return KindText
}

// Value renders the field of t as a string.
func (f Field) Value(t Track) string {
	acc, ok := accessors[f]
	if !ok {
		return ""
	}

	if acc.num != nil {
		return strconv.FormatInt(acc.num(t), 10)
	}

	return acc.text(t)
}

// Comparator resolves the field once and returns an ordering over tracks.
// Numeric fields compare by value, text fields case-insensitively.
// Unknown fields order every pair as equal.
func Comparator(f Field) func(a, b Track) int {
	acc, ok := accessors[f]

	switch {
	case !ok:
		return func(Track, Track) int { return 0 }
	case acc.num != nil:
		get := acc.num

		return func(a, b Track) int { return compareInt(get(a), get(b)) }
	default:
		get := acc.text

		return func(a, b Track) int { return CompareFold(get(a), get(b)) }
	}
}

// CompareValues orders a and b by field f: negative if a precedes b.
func CompareValues(a, b Track, f Field) int {
	return Comparator(f)(a, b)
}

// Probe builds a binary search probe: the sign of the record's field value
// minus target. Numeric fields need an integer target.
func Probe(f Field, target string) (func(Track) int, error) {
	acc, ok := accessors[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	if acc.text != nil {
		get := acc.text

		return func(t Track) int { return CompareFold(get(t), target) }, nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(target), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: field %s needs an integer, got %q", ErrInvalidTarget, f, target)
	}

	get := acc.num

	return func(t Track) int { return compareInt(get(t), n) }, nil
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareFold compares two strings lexicographically by lower-cased runes.
func CompareFold(a, b string) int {
	for a != "" && b != "" {
		ra, sizeA := utf8.DecodeRuneInString(a)
		rb, sizeB := utf8.DecodeRuneInString(b)

		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			return compareInt(int64(la), int64(lb))
		}

		a, b = a[sizeA:], b[sizeB:]
	}

	return compareInt(int64(len(a)), int64(len(b)))
}
