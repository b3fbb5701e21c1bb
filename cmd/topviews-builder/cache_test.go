// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	cache, err := NewResponseCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	payload := []byte(`{"items":[{"articles":[{"article":"Go","views":1,"rank":1}]}]}`)
	if err := cache.Put("en.wikipedia.org", "all-access", day, payload); err != nil {
		t.Fatal(err)
	}

	got, err := cache.Get("en.wikipedia.org", "all-access", day)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
}

func TestResponseCacheMiss(t *testing.T) {
	cache, err := NewResponseCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got, err := cache.Get("en.wikipedia.org", "all-access", day)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected cache miss, got %q", got)
	}

	// Entries are keyed on project and access mode, too.
	if err := cache.Put("en.wikipedia.org", "all-access", day, []byte("x")); err != nil {
		t.Fatal(err)
	}
	got, err = cache.Get("de.wikipedia.org", "all-access", day)
	if err != nil || got != nil {
		t.Errorf("expected miss for other project, got %q, %v", got, err)
	}
	got, err = cache.Get("en.wikipedia.org", "desktop", day)
	if err != nil || got != nil {
		t.Errorf("expected miss for other access mode, got %q, %v", got, err)
	}
}

func TestResponseCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewResponseCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(dir, "topviews-en.wikipedia.org-all-access-20240305.json.bz2")
	if err := os.WriteFile(path, []byte("this is not bzip2"), 0644); err != nil {
		t.Fatal(err)
	}

	// Corrupt entries behave like misses so the day gets refetched.
	got, err := cache.Get("en.wikipedia.org", "all-access", day)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected corrupt entry to read as a miss, got %q", got)
	}
}
