// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHTMLChart writes an interactive companion to the PNG chart: a
// single zoomable line chart with one series per top article.
func RenderHTMLChart(ds *Dataset, top []string, path string) error {
	minDay, maxDay, ok := ds.Span(top)
	if !ok {
		return fmt.Errorf("no data to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Top Wikipedia Articles (%s to %s)",
				minDay.Format("2006-01-02"), maxDay.Format("2006-01-02")),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{
				Type:  "slider",
				Start: 0,
				End:   100,
			},
			opts.DataZoom{
				Type:  "inside",
				Start: 0,
				End:   100,
			},
		),
	)

	for _, article := range top {
		points := ds.Series(article)
		data := make([]opts.LineData, 0, len(points))
		for _, p := range points {
			data = append(data, opts.LineData{Value: []interface{}{p.Day, p.Views}})
		}
		line.AddSeries(displayTitle(article), data)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}
