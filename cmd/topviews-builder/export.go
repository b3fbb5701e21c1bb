// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// writeCSV exports the (day, article) rows of the top articles as a
// gzip-compressed CSV next to the chart. Ranks come straight from the API
// listing, so downstream tooling gets the full record, not just what the
// chart shows.
func writeCSV(ds *Dataset, top []string, r DateRange, outDir string) (string, error) {
	csvPath := filepath.Join(outDir, fmt.Sprintf("topviews-%s-%s.csv.gz",
		r.Start.Format("20060102"), r.End.Format("20060102")))

	start := time.Now()
	tmpPath := csvPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	writer, err := gzip.NewWriterLevel(tmpFile, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	defer writer.Close()

	header := "Date,Article,Views,Rank\n"
	if _, err := writer.Write([]byte(header)); err != nil {
		return "", err
	}

	topSet := make(map[string]bool, len(top))
	for _, article := range top {
		topSet[article] = true
	}

	for _, row := range ds.Rows() {
		if !topSet[row.Article] {
			continue
		}
		var buf bytes.Buffer
		buf.WriteString(row.Day.Format("2006-01-02"))
		buf.WriteByte(',')
		buf.WriteString(csvQuote(row.Article))
		buf.WriteByte(',')
		buf.WriteString(strconv.FormatInt(row.Views, 10))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(row.Rank))
		buf.WriteByte('\n')
		if _, err := writer.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}

	if err := writer.Close(); err != nil {
		return "", err
	}
	if err := tmpFile.Sync(); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, csvPath); err != nil {
		return "", err
	}

	logger.Info("wrote CSV export",
		zap.String("path", csvPath), zap.Duration("elapsed", time.Since(start)))
	return csvPath, nil
}

// csvQuote protects titles that contain a comma or quote. Most article
// titles need no quoting at all.
func csvQuote(s string) string {
	needsQuoting := false
	for i := 0; i < len(s); i++ {
		if s[i] == ',' || s[i] == '"' || s[i] == '\n' {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return s
	}
	var buf bytes.Buffer
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			buf.WriteByte('"')
		}
		buf.WriteByte(s[i])
	}
	buf.WriteByte('"')
	return buf.String()
}
