package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/tracksort/pkg/alg"
	"github.com/Sumatoshi-tech/tracksort/pkg/bench"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
	pageTitle   = "tracksort benchmark"
)

// ErrNoBenchData is returned when there is nothing to plot.
var ErrNoBenchData = errors.New("no benchmark data")

var algorithmColors = map[alg.Algorithm]string{
	alg.QuickSort:    "#5470c6",
	alg.MergeSort:    "#91cc75",
	alg.BinarySearch: "#ee6666",
}

// BenchChart writes an HTML page with comparisons, swaps and median elapsed
// time per dataset size, one series per algorithm.
func BenchChart(points []bench.Point, w io.Writer) error {
	if len(points) == 0 {
		return ErrNoBenchData
	}

	sizes, algorithms := axes(points)

	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(
		lineChart("Comparisons", sizes, algorithms, points, func(p bench.Point) (float64, bool) {
			return p.Comparisons, true
		}),
		lineChart("Swaps", sizes, algorithms, points, func(p bench.Point) (float64, bool) {
			return p.Swaps, p.HasSwaps
		}),
		lineChart("Median elapsed (ms)", sizes, algorithms, points, func(p bench.Point) (float64, bool) {
			return p.ElapsedMs.Median, true
		}),
	)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render benchmark chart: %w", err)
	}

	return nil
}

func axes(points []bench.Point) (sizes []int, algorithms []alg.Algorithm) {
	for _, p := range points {
		if !slices.Contains(sizes, p.Size) {
			sizes = append(sizes, p.Size)
		}

		if !slices.Contains(algorithms, p.Algorithm) {
			algorithms = append(algorithms, p.Algorithm)
		}
	}

	slices.Sort(sizes)

	return sizes, algorithms
}

func lineChart(
	title string,
	sizes []int,
	algorithms []alg.Algorithm,
	points []bench.Point,
	value func(bench.Point) (float64, bool),
) *charts.Line {
	labels := make([]string, len(sizes))
	for i, n := range sizes {
		labels[i] = strconv.Itoa(n)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Records"}),
		charts.WithYAxisOpts(opts.YAxis{Name: title}),
	)
	line.SetXAxis(labels)

	for _, a := range algorithms {
		data := make([]opts.LineData, len(sizes))
		plotted := false

		for i, n := range sizes {
			data[i] = opts.LineData{Value: "-"}

			idx := slices.IndexFunc(points, func(p bench.Point) bool { return p.Algorithm == a && p.Size == n })
			if idx < 0 {
				continue
			}

			v, ok := value(points[idx])
			if !ok {
				continue
			}

			data[i] = opts.LineData{Value: v}
			plotted = true
		}

		if !plotted {
			continue
		}

		line.AddSeries(string(a), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: algorithmColors[a]}),
		)
	}

	return line
}

// BenchTable renders benchmark points as a terminal table.
func BenchTable(points []bench.Point) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Algorithm", "Records", "Comparisons", "Swaps", "Median ms", "P95 ms"})

	for _, p := range points {
		swapCell := "N/A"
		if p.HasSwaps {
			swapCell = humanize.Commaf(p.Swaps)
		}

		tbl.AppendRow(table.Row{
			p.Algorithm,
			humanize.Comma(int64(p.Size)),
			humanize.Commaf(p.Comparisons),
			swapCell,
			fmt.Sprintf("%.3f", p.ElapsedMs.Median),
			fmt.Sprintf("%.3f", p.ElapsedMs.P95),
		})
	}

	return tbl.Render() + "\n"
}
