// SPDX-License-Identifier: MIT

package main

import (
	"sort"
	"time"
)

// Row is one (day, article) observation.
type Row struct {
	Day     time.Time
	Article string
	Views   int64
	Rank    int
}

// Point is one day in an article's time series.
type Point struct {
	Day   time.Time
	Views int64
}

// Metrics summarizes a fetched dataset.
type Metrics struct {
	MaxArticleViews int64   // highest single-day view count of any article
	MeanDailyViews  float64 // mean over days of the summed views per day
	UniqueArticles  int
}

// Dataset accumulates daily top-article rows and answers aggregation
// queries over them. Article titles are NFC-normalized on the way in, so
// differently composed Unicode spellings of the same title end up in one
// series.
type Dataset struct {
	rows   []Row
	series map[string]map[int64]int64 // article -> day (unix) -> views
}

func NewDataset() *Dataset {
	return &Dataset{series: make(map[string]map[int64]int64)}
}

// AddDay ingests one day's article listing.
func (ds *Dataset) AddDay(day time.Time, articles []ArticleViews) {
	for _, a := range articles {
		title := normalizeTitle(a.Article)
		ds.rows = append(ds.rows, Row{Day: day, Article: title, Views: a.Views, Rank: a.Rank})
		s, ok := ds.series[title]
		if !ok {
			s = make(map[int64]int64)
			ds.series[title] = s
		}
		s[day.Unix()] += a.Views
	}
}

func (ds *Dataset) Len() int { return len(ds.rows) }

// Rows returns every ingested row in ingestion order.
func (ds *Dataset) Rows() []Row { return ds.rows }

// Metrics computes the run summary over all ingested rows.
func (ds *Dataset) Metrics() Metrics {
	var m Metrics
	m.UniqueArticles = len(ds.series)

	dailyTotals := make(map[int64]int64)
	for _, s := range ds.series {
		for day, views := range s {
			if views > m.MaxArticleViews {
				m.MaxArticleViews = views
			}
			dailyTotals[day] += views
		}
	}
	if len(dailyTotals) > 0 {
		var sum int64
		for _, total := range dailyTotals {
			sum += total
		}
		m.MeanDailyViews = float64(sum) / float64(len(dailyTotals))
	}
	return m
}

// Top returns the n articles with the highest total views over the whole
// period. The result is ordered by each article's peak daily views, highest
// first, which is the order the chart panels are laid out in.
func (ds *Dataset) Top(n int) []string {
	type articleStat struct {
		article     string
		total, peak int64
	}
	stats := make([]articleStat, 0, len(ds.series))
	for article, s := range ds.series {
		var st articleStat
		st.article = article
		for _, views := range s {
			st.total += views
			if views > st.peak {
				st.peak = views
			}
		}
		stats = append(stats, st)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].total != stats[j].total {
			return stats[i].total > stats[j].total
		}
		return stats[i].article < stats[j].article
	})
	if n < len(stats) {
		stats = stats[:n]
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].peak != stats[j].peak {
			return stats[i].peak > stats[j].peak
		}
		return stats[i].article < stats[j].article
	})

	top := make([]string, len(stats))
	for i, st := range stats {
		top[i] = st.article
	}
	return top
}

// Series returns an article's time series in chronological order.
func (ds *Dataset) Series(article string) []Point {
	s := ds.series[article]
	points := make([]Point, 0, len(s))
	for day, views := range s {
		points = append(points, Point{Day: time.Unix(day, 0).UTC(), Views: views})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })
	return points
}

// Span returns the first and last day that have data among the given
// articles. ok is false if none of them have any.
func (ds *Dataset) Span(articles []string) (min, max time.Time, ok bool) {
	for _, article := range articles {
		for day := range ds.series[article] {
			t := time.Unix(day, 0).UTC()
			if !ok {
				min, max, ok = t, t, true
				continue
			}
			if t.Before(min) {
				min = t
			}
			if t.After(max) {
				max = t
			}
		}
	}
	return min, max, ok
}
