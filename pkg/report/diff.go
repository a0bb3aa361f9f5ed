package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

// Op is the kind of an order change.
type Op int

// Order change kinds.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

var opPrefix = map[Op]string{OpEqual: "  ", OpInsert: "+ ", OpDelete: "- "}

// Change is one line of an order diff.
type Change struct {
	Op    Op
	Value string
}

// TrackLabels renders each track as "id name" for OrderDiff.
func TrackLabels(tracks []track.Track) []string {
	out := make([]string, len(tracks))

	for i, t := range tracks {
		out[i] = fmt.Sprintf("%d %s", t.ID, t.Name)
	}

	return out
}

// OrderDiff computes a line diff between two orderings. Every input value
// is one line, so values must not contain newlines.
func OrderDiff(before, after []string) []Change {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changes := make([]Change, 0, max(len(before), len(after)))

	for _, d := range diffs {
		op := OpEqual

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffEqual:
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(d.Text, "\n"), "\n") {
			changes = append(changes, Change{Op: op, Value: line})
		}
	}

	return changes
}

// Moved counts the values that left their position.
func Moved(changes []Change) int {
	n := 0

	for _, c := range changes {
		if c.Op == OpDelete {
			n++
		}
	}

	return n
}

// RenderDiff renders changes with diff prefixes, deletions red and
// insertions green.
func RenderDiff(changes []Change) string {
	var sb strings.Builder

	for _, c := range changes {
		line := opPrefix[c.Op] + c.Value

		switch c.Op {
		case OpInsert:
			line = color.GreenString("%s", line)
		case OpDelete:
			line = color.RedString("%s", line)
		case OpEqual:
		}

		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return sb.String()
}

func joinLines(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return strings.Join(values, "\n") + "\n"
}
