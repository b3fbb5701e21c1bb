// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dsnet/compress/bzip2"
)

// ResponseCache stores raw API responses on local disk, one bzip2-compressed
// file per (project, access, day). Once a day has been fetched it never
// changes, so entries are kept across runs.
type ResponseCache struct {
	dir string
}

func NewResponseCache(dir string) (*ResponseCache, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &ResponseCache{dir: dir}, nil
}

func (c *ResponseCache) path(project, access string, day time.Time) string {
	return filepath.Join(c.dir, fmt.Sprintf("topviews-%s-%s-%04d%02d%02d.json.bz2",
		project, access, day.Year(), day.Month(), day.Day()))
}

// Get returns the cached response body, or nil if there is no usable entry.
// A corrupt entry is treated as a miss.
func (c *ResponseCache) Get(project, access string, day time.Time) ([]byte, error) {
	f, err := os.Open(c.path(project, access, day))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, nil
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil
	}
	return body, nil
}

// Put writes a response body into the cache. The data goes to a temp file
// in the same directory and is renamed into place at the very end, so a
// crash cannot leave a truncated entry behind.
func (c *ResponseCache) Put(project, access string, day time.Time, body []byte) error {
	outPath := c.path(project, access, day)
	tmpPath := outPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer tmpFile.Close()

	bzConfig := bzip2.WriterConfig{Level: bzip2.BestCompression}
	writer, err := bzip2.NewWriter(tmpFile, &bzConfig)
	if err != nil {
		return err
	}
	if _, err := writer.Write(body); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, outPath)
}
