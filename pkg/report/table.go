// Package report renders tracks, run metrics, visualizer frames and
// benchmark results for terminals and HTML.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/metrics"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	// msFormat renders elapsed milliseconds.
	msFormat = "%.3f ms"

	// secondsPerMinute splits track durations into m:ss.
	secondsPerMinute = 60

	// ratioFormat renders derived ratios.
	ratioFormat = "%.2f"
)

// derived computes the per-run metrics shown on metric cards.
var derived = metrics.DefaultRegistry()

var statusColors = map[string]*color.Color{
	"found":         color.New(color.FgGreen),
	"completed":     color.New(color.FgGreen),
	"OK":            color.New(color.FgGreen),
	"not_found":     color.New(color.FgYellow),
	"stopped":       color.New(color.FgYellow),
	"invalid_input": color.New(color.FgRed),
	"no_data":       color.New(color.FgRed),
}

// Status colors a run or search status. Unknown statuses are returned as is.
func Status(status string) string {
	c, ok := statusColors[status]
	if !ok {
		return status
	}

	return c.Sprint(status)
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

// Tracks renders tracks as a table. An empty slice renders a single
// "No tracks" line.
func Tracks(tracks []track.Track) string {
	if len(tracks) == 0 {
		return "No tracks\n"
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"#", "ID", "Name", "Artist", "Album", "Year", "Popularity", "Duration"})

	for i, t := range tracks {
		tbl.AppendRow(table.Row{
			i + 1, t.ID, t.Name, t.Artist, t.Album, year(t.Year), t.Popularity, Duration(t.DurationMs),
		})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("Total: %s tracks", humanize.Comma(int64(len(tracks))))})

	return tbl.Render() + "\n"
}

// Duration renders milliseconds as m:ss.
func Duration(ms int64) string {
	if ms <= 0 {
		return "-"
	}

	secs := int64(time.Duration(ms) * time.Millisecond / time.Second)

	return fmt.Sprintf("%d:%02d", secs/secondsPerMinute, secs%secondsPerMinute)
}

func year(y int64) string {
	if y == 0 {
		return "-"
	}

	return strconv.FormatInt(y, 10)
}

// Card describes one run for MetricCard.
type Card struct {
	Result  metrics.Result
	Records int

	// Field and Term are shown when set.
	Field track.Field
	Term  string

	// Status is shown colored when set.
	Status string

	// Presort is shown when a search sorted its data first.
	Presort *metrics.Counters
}

// MetricCard renders a run's metrics as a two-column table.
func MetricCard(c Card) string {
	timeLabel, spaceLabel := c.Result.Algorithm.Complexity()

	tbl := newTable()
	tbl.SetTitle(algorithmTitle(c.Result.Algorithm))
	tbl.AppendRow(table.Row{"Records", humanize.Comma(int64(c.Records))})

	if c.Field != "" {
		tbl.AppendRow(table.Row{"Field", c.Field})
	}

	if c.Term != "" {
		tbl.AppendRow(table.Row{"Term", c.Term})
	}

	tbl.AppendRow(table.Row{"Comparisons", humanize.Comma(c.Result.Comparisons)})
	tbl.AppendRow(table.Row{"Swaps", swaps(c.Result.Swaps)})
	tbl.AppendRow(table.Row{"Elapsed", fmt.Sprintf(msFormat, c.Result.ElapsedMs)})
	tbl.AppendRow(table.Row{"Time", timeLabel})
	tbl.AppendRow(table.Row{"Space", spaceLabel})

	for _, d := range derived.Derive(metrics.Sample{N: c.Records, Result: c.Result}) {
		tbl.AppendRow(table.Row{d.DisplayName, derivedValue(d)})
	}

	if c.Presort != nil {
		tbl.AppendRow(table.Row{"Presort", fmt.Sprintf("%s comparisons, %s swaps",
			humanize.Comma(c.Presort.Comparisons), humanize.Comma(c.Presort.Swaps))})
	}

	if c.Status != "" {
		tbl.AppendRow(table.Row{"Status", Status(c.Status)})
	}

	return tbl.Render() + "\n"
}

func derivedValue(d metrics.Value) string {
	if d.Type == metrics.TypeBound {
		return humanize.Comma(int64(d.Value))
	}

	return fmt.Sprintf(ratioFormat, d.Value)
}

func swaps(s metrics.SwapCount) string {
	n, ok := s.Value()
	if !ok {
		return s.String()
	}

	return humanize.Comma(n)
}

func algorithmTitle(a alg.Algorithm) string {
	if a == "" {
		return "Run"
	}

	return string(a)
}

// Hits renders lookup hits with their relevance score.
func Hits(hits []catalog.Hit) string {
	if len(hits) == 0 {
		return "No matches\n"
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Score", "ID", "Name", "Artist", "Album", "Year"})

	for _, h := range hits {
		tbl.AppendRow(table.Row{fmt.Sprintf("%.3f", h.Score), h.Track.ID, h.Track.Name, h.Track.Artist, h.Track.Album, year(h.Track.Year)})
	}

	return tbl.Render() + "\n"
}
