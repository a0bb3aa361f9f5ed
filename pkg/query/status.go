package query

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

// Status is the terminal status of a search.
type Status string

// Search statuses.
const (
	StatusFound        Status = "found"
	StatusNotFound     Status = "not_found"
	StatusInvalidInput Status = "invalid_input"
)

// Sentinel errors.
var (
	ErrEmptyTerm   = errors.New("empty search term")
	ErrInvalidSize = errors.New("invalid query size")
	ErrNoSource    = errors.New("no track source configured")
)

// Size is how many tracks a view shows. SizeAll shows every track.
type Size int

// Selectable sizes. SizeAll disables truncation.
const (
	SizeAll Size = 0
	Size10  Size = 10
	Size20  Size = 20
	Size30  Size = 30
	Size50  Size = 50
)

// allSizeName is the spelling of SizeAll.
const allSizeName = "all"

// Sizes lists the selectable view sizes.
func Sizes() []Size {
	return []Size{Size10, Size20, Size30, Size50, SizeAll}
}

// ParseSize accepts "10", "20", "30", "50" and "all".
func ParseSize(s string) (Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == allSizeName {
		return SizeAll, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n == 0 || !slices.Contains(Sizes(), Size(n)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	return Size(n), nil
}

func (s Size) String() string {
	if s == SizeAll {
		return allSizeName
	}

	return strconv.Itoa(int(s))
}

// Apply truncates tracks to the size. The result is a copy.
func (s Size) Apply(tracks []track.Track) []track.Track {
	if s == SizeAll || int(s) >= len(tracks) {
		return slices.Clone(tracks)
	}

	return slices.Clone(tracks[:s])
}
