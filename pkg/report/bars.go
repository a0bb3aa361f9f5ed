package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/tracksort/pkg/visualize"
)

const (
	// DefaultBarWidth is the width of the longest bar.
	DefaultBarWidth = 40

	barFull  = "█"
	barEmpty = " "
)

var (
	activeColor = color.New(color.FgYellow, color.Bold)
	foundColor  = color.New(color.FgGreen, color.Bold)
)

// Frame renders a snapshot as one horizontal bar per element, scaled so the
// largest value spans width cells. Active elements are highlighted and
// pointer names are listed next to the element they point at.
func Frame(s visualize.Snapshot, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  step %s  %s  comparisons %s  swaps %s\n",
		s.Algorithm, humanize.Comma(s.Step), phaseLabel(s),
		humanize.Comma(s.Metrics.Comparisons), humanize.Comma(s.Metrics.Swaps))

	if len(s.Array) == 0 {
		sb.WriteString("(empty)\n")

		return sb.String()
	}

	peak := max(slices.Max(s.Array), 1)
	labels := pointerLabels(s.Pointers)
	digits := len(fmt.Sprint(peak))

	for i, v := range s.Array {
		n := 0
		if v > 0 {
			n = max(v*width/peak, 1)
		}

		bar := strings.Repeat(barFull, n) + strings.Repeat(barEmpty, width-n)

		switch {
		case s.Found != nil && *s.Found == i:
			bar = foundColor.Sprint(bar)
		case slices.Contains(s.Active, i):
			bar = activeColor.Sprint(bar)
		}

		line := fmt.Sprintf("%*d %s", digits, v, bar)
		if l, ok := labels[i]; ok {
			line += " <- " + l
		}

		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}

	return sb.String()
}

func phaseLabel(s visualize.Snapshot) string {
	if s.Final {
		return "done"
	}

	return string(s.Phase)
}

// pointerLabels groups pointer names by the index they point at, sorted so
// the output is stable.
func pointerLabels(pointers map[string]int) map[int]string {
	byIndex := make(map[int][]string, len(pointers))

	for _, name := range slices.Sorted(maps.Keys(pointers)) {
		idx := pointers[name]
		byIndex[idx] = append(byIndex[idx], name)
	}

	out := make(map[int]string, len(byIndex))
	for idx, names := range byIndex {
		out[idx] = strings.Join(names, ",")
	}

	return out
}
