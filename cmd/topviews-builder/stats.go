// SPDX-License-Identifier: MIT

package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Stats describes one run's outputs, for consumers that want to verify or
// track what was produced.
type Stats struct {
	ChartFilename   string   `json:"chart-filename"`
	ChartSha256     string   `json:"chart-sha256"`
	CSVFilename     string   `json:"csv-filename"`
	CSVSha256       string   `json:"csv-sha256"`
	MaxArticleViews int64    `json:"max-article-views"`
	MeanDailyViews  float64  `json:"mean-daily-views"`
	UniqueArticles  int      `json:"unique-articles"`
	DaysFetched     int      `json:"days-fetched"`
	DaysMissing     []string `json:"days-missing"`
}

func buildStats(r DateRange, chartPath, csvPath string, m Metrics, missing []time.Time, outDir string) (string, error) {
	statsPath := filepath.Join(outDir, fmt.Sprintf("stats-%s-%s.json",
		r.Start.Format("20060102"), r.End.Format("20060102")))
	tmpStatsPath := statsPath + ".tmp"

	var stats Stats
	stats.ChartFilename = filepath.Base(chartPath)
	stats.CSVFilename = filepath.Base(csvPath)
	stats.MaxArticleViews = m.MaxArticleViews
	stats.MeanDailyViews = m.MeanDailyViews
	stats.UniqueArticles = m.UniqueArticles
	stats.DaysFetched = r.NumDays() - len(missing)
	stats.DaysMissing = make([]string, 0, len(missing))
	for _, day := range missing {
		stats.DaysMissing = append(stats.DaysMissing, day.Format("2006-01-02"))
	}

	h, err := getSha256(chartPath)
	if err != nil {
		return "", err
	}
	stats.ChartSha256 = h

	h, err = getSha256(csvPath)
	if err != nil {
		return "", err
	}
	stats.CSVSha256 = h

	j, err := json.MarshalIndent(stats, "", "    ")
	if err != nil {
		return "", err
	}
	statsFile, err := os.Create(tmpStatsPath)
	if err != nil {
		return "", err
	}
	defer statsFile.Close()
	if _, err := statsFile.Write(j); err != nil {
		return "", err
	}
	if err := statsFile.Sync(); err != nil {
		return "", err
	}
	if err := statsFile.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpStatsPath, statsPath); err != nil {
		return "", err
	}

	return statsPath, nil
}

func getSha256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
