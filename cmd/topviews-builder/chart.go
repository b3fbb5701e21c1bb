// SPDX-License-Identifier: MIT
//
// Faceted time-series chart of the top viewed articles: one panel per
// article, shared x axis, per-panel y axis starting at zero.

package main

import (
	"fmt"
	"math"
	"time"

	"github.com/fogleman/gg"
)

const (
	cellWidth    = 420.0
	cellHeight   = 330.0
	plotLeft     = 64.0 // inside a cell, room for y tick labels
	plotTop      = 36.0 // inside a cell, room for the panel title
	plotWidth    = 332.0
	plotHeight   = 232.0
	chartMarginX = 28.0
	headerHeight = 110.0
	marginBottom = 24.0
	maxColumns   = 5
)

// Roughly the matplotlib default category colors.
var palette = [][3]float64{
	{0.122, 0.467, 0.706},
	{1.000, 0.498, 0.055},
	{0.173, 0.627, 0.173},
	{0.839, 0.153, 0.157},
	{0.580, 0.404, 0.741},
	{0.549, 0.337, 0.294},
	{0.890, 0.467, 0.761},
	{0.498, 0.498, 0.498},
	{0.737, 0.741, 0.133},
	{0.090, 0.745, 0.812},
}

type xTick struct {
	Day   time.Time
	Label string
}

// gridLayout returns the panel grid for n articles: at most maxColumns
// panels per row.
func gridLayout(n int) (cols, rows int) {
	cols = n
	if cols > maxColumns {
		cols = maxColumns
	}
	if cols < 1 {
		cols = 1
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

// xTicks picks tick dates and their label format from the span length,
// denser for short ranges, month-granular for long ones.
func xTicks(min, max time.Time) []xTick {
	numDays := int(max.Sub(min)/(24*time.Hour)) + 1

	var interval int
	var format string
	switch {
	case numDays <= 7:
		interval, format = 1, "01/02"
	case numDays <= 30:
		interval, format = 5, "01/02"
	case numDays <= 90:
		interval, format = 14, "Jan 02"
	default:
		months := numDays / 30 / 4
		if months < 1 {
			months = 1
		}
		ticks := make([]xTick, 0, 16)
		t := time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC)
		if t.Before(min) {
			t = t.AddDate(0, 1, 0)
		}
		for !t.After(max) {
			ticks = append(ticks, xTick{Day: t, Label: t.Format("Jan 2006")})
			t = t.AddDate(0, months, 0)
		}
		return ticks
	}

	ticks := make([]xTick, 0, numDays/interval+1)
	for t := min; !t.After(max); t = t.AddDate(0, 0, interval) {
		ticks = append(ticks, xTick{Day: t, Label: t.Format(format)})
	}
	return ticks
}

// RenderChart draws the faceted chart for the given top articles and saves
// it as a PNG.
func RenderChart(ds *Dataset, top []string, fontPath, outPath string) error {
	minDay, maxDay, ok := ds.Span(top)
	if !ok {
		return fmt.Errorf("no data to chart")
	}

	cols, rows := gridLayout(len(top))
	width := 2*chartMarginX + float64(cols)*cellWidth
	height := headerHeight + float64(rows)*cellHeight + marginBottom

	dc := gg.NewContext(int(width), int(height))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	titleFont, err := gg.LoadFontFace(fontPath, 22.0)
	if err != nil {
		return err
	}
	labelFont, err := gg.LoadFontFace(fontPath, 14.0)
	if err != nil {
		return err
	}
	tickFont, err := gg.LoadFontFace(fontPath, 11.0)
	if err != nil {
		return err
	}

	m := ds.Metrics()
	period := fmt.Sprintf("%s to %s",
		minDay.Format("2006-01-02"), maxDay.Format("2006-01-02"))

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(titleFont)
	title := fmt.Sprintf("Top Wikipedia Articles (%s)", period)
	w, _ := dc.MeasureString(title)
	dc.DrawString(title, (width-w)/2, 40)

	dc.SetFontFace(labelFont)
	subtitle := fmt.Sprintf("Mean Daily Views: %s | Max Article Views: %s | Unique Articles: %d",
		humanFormat(m.MeanDailyViews), humanFormat(float64(m.MaxArticleViews)), m.UniqueArticles)
	w, _ = dc.MeasureString(subtitle)
	dc.DrawString(subtitle, (width-w)/2, 68)

	ticks := xTicks(minDay, maxDay)
	span := maxDay.Sub(minDay)

	xFor := func(plotX float64, day time.Time) float64 {
		if span <= 0 {
			return plotX + plotWidth/2
		}
		return plotX + float64(day.Sub(minDay))/float64(span)*plotWidth
	}

	for i, article := range top {
		col := i % cols
		row := i / cols
		cellX := chartMarginX + float64(col)*cellWidth
		cellY := headerHeight + float64(row)*cellHeight
		plotX := cellX + plotLeft
		plotY := cellY + plotTop

		points := ds.Series(article)
		var seriesMax int64
		for _, p := range points {
			if p.Views > seriesMax {
				seriesMax = p.Views
			}
		}
		if seriesMax == 0 {
			seriesMax = 1
		}
		yMax := float64(seriesMax) * 1.05
		yFor := func(views int64) float64 {
			return plotY + plotHeight - float64(views)/yMax*plotHeight
		}

		// Panel title.
		dc.SetRGB(0, 0, 0)
		dc.SetFontFace(labelFont)
		label := truncateToWidth(dc, displayTitle(article), plotWidth)
		w, _ := dc.MeasureString(label)
		dc.DrawString(label, plotX+(plotWidth-w)/2, cellY+24)

		// Horizontal gridlines with view-count labels.
		dc.SetFontFace(tickFont)
		for _, views := range []int64{0, seriesMax / 2, seriesMax} {
			y := yFor(views)
			dc.SetRGB(0.85, 0.85, 0.85)
			dc.MoveTo(plotX, y)
			dc.LineTo(plotX+plotWidth, y)
			dc.Stroke()
			dc.SetRGB(0.25, 0.25, 0.25)
			label := humanFormat(float64(views))
			lw, lh := dc.MeasureString(label)
			dc.DrawString(label, plotX-6-lw, y+lh/2)
		}

		// Axes.
		dc.SetRGB(0, 0, 0)
		dc.MoveTo(plotX, plotY)
		dc.LineTo(plotX, plotY+plotHeight)
		dc.LineTo(plotX+plotWidth, plotY+plotHeight)
		dc.Stroke()

		// X ticks.
		for _, tick := range ticks {
			x := xFor(plotX, tick.Day)
			dc.MoveTo(x, plotY+plotHeight)
			dc.LineTo(x, plotY+plotHeight+4)
			dc.Stroke()
			lw, _ := dc.MeasureString(tick.Label)
			dc.DrawString(tick.Label, x-lw/2, plotY+plotHeight+18)
		}

		// The series itself. Markers are always drawn; some articles make
		// the listing on a single day only, and a bare polyline would be
		// invisible for them.
		color := palette[i%len(palette)]
		dc.SetRGB(color[0], color[1], color[2])
		dc.SetLineWidth(2.5)
		for j, p := range points {
			if j == 0 {
				dc.MoveTo(xFor(plotX, p.Day), yFor(p.Views))
			} else {
				dc.LineTo(xFor(plotX, p.Day), yFor(p.Views))
			}
		}
		if len(points) > 1 {
			dc.Stroke()
		} else {
			dc.ClearPath()
		}
		for _, p := range points {
			dc.DrawCircle(xFor(plotX, p.Day), yFor(p.Views), 3)
			dc.Fill()
		}
		dc.SetLineWidth(1)
	}

	// One rotated "Views" label per panel row.
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(labelFont)
	for row := 0; row < rows; row++ {
		cy := headerHeight + float64(row)*cellHeight + plotTop + plotHeight/2
		dc.Push()
		dc.RotateAbout(-math.Pi/2, 18, cy)
		lw, _ := dc.MeasureString("Views")
		dc.DrawString("Views", 18-lw/2, cy)
		dc.Pop()
	}

	return dc.SavePNG(outPath)
}

// truncateToWidth shortens s until it fits into maxWidth at the current
// font face, appending an ellipsis when it had to cut.
func truncateToWidth(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			return candidate
		}
	}
	return "…"
}
