// Tool for charting Wikipedia's most viewed articles over a date range.
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

func main() {
	start := flag.String("start", "", "start date in YYYYMMDD format")
	end := flag.String("end", "", "end date in YYYYMMDD format")
	project := flag.String("project", "", "Wikimedia project domain (default en.wikipedia.org)")
	access := flag.String("access", "", "access mode: all-access, desktop, mobile-app or mobile-web (default all-access)")
	top := flag.Int("top", 0, "number of articles to chart (default 20)")
	out := flag.String("out", "top_articles.png", "path to output chart being written")
	htmlOut := flag.String("html", "", "if set, also write an interactive HTML chart to this path")
	font := flag.String("font", "./RobotoSlab-Light.ttf", "path to label font")
	cacheDir := flag.String("cache", "cache", "path to response cache directory")
	configPath := flag.String("config", "", "path to optional YAML config file")
	storageKey := flag.String("storage-key", "", "if set, upload outputs using credentials from this key file")
	bucket := flag.String("bucket", "topviews", "storage bucket for uploads")
	verbose := flag.Bool("verbose", false, "log to the console instead of the log file")
	flag.Parse()

	initLogger(*verbose)
	defer logger.Sync()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *project != "" {
		cfg.Project = *project
	}
	if *access != "" {
		cfg.Access = *access
	}
	if *top > 0 {
		cfg.Top = *top
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	r, err := ParseDateRange(*start, *end, time.Now())
	if err != nil {
		fatal(err)
	}

	opts := runOptions{
		out:        *out,
		htmlOut:    *htmlOut,
		font:       *font,
		cacheDir:   *cacheDir,
		storageKey: *storageKey,
		bucket:     *bucket,
	}
	if err := run(context.Background(), cfg, r, opts); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	logger.Error("run failed", zap.Error(err))
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

type runOptions struct {
	out        string
	htmlOut    string
	font       string
	cacheDir   string
	storageKey string
	bucket     string
}

func run(ctx context.Context, cfg Config, r DateRange, opts runOptions) error {
	started := time.Now()
	logger.Info("fetching top pageviews",
		zap.String("project", cfg.Project),
		zap.String("access", cfg.Access),
		zap.String("start", r.Start.Format("2006-01-02")),
		zap.String("end", r.End.Format("2006-01-02")),
		zap.Int("days", r.NumDays()))

	cache, err := NewResponseCache(opts.cacheDir)
	if err != nil {
		return err
	}

	client := NewClient(&http.Client{Timeout: 10 * time.Second}, cfg, cache)
	results, missing, err := client.FetchRange(ctx, r)
	if err != nil {
		return err
	}

	ds := NewDataset()
	for _, result := range results {
		ds.AddDay(result.Day, result.Articles)
	}
	if ds.Len() == 0 {
		fmt.Println("No data found for the specified date range")
		return nil
	}

	topArticles := ds.Top(cfg.Top)
	if err := RenderChart(ds, topArticles, opts.font, opts.out); err != nil {
		return err
	}
	fmt.Printf("Visualization saved to %s\n", opts.out)

	uploads := []string{opts.out}
	if opts.htmlOut != "" {
		if err := RenderHTMLChart(ds, topArticles, opts.htmlOut); err != nil {
			return err
		}
		uploads = append(uploads, opts.htmlOut)
	}

	outDir := filepath.Dir(opts.out)
	csvPath, err := writeCSV(ds, topArticles, r, outDir)
	if err != nil {
		return err
	}
	statsPath, err := buildStats(r, opts.out, csvPath, ds.Metrics(), missing, outDir)
	if err != nil {
		return err
	}
	uploads = append(uploads, csvPath, statsPath)

	if opts.storageKey != "" {
		storage, err := NewStorage(opts.storageKey)
		if err != nil {
			return err
		}
		if err := uploadOutputs(ctx, storage, opts.bucket, uploads); err != nil {
			return err
		}
		if err := cleanupStorage(ctx, storage, opts.bucket); err != nil {
			return err
		}
	}

	logger.Info("done",
		zap.Int("articles", len(topArticles)),
		zap.Int("days_missing", len(missing)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}
