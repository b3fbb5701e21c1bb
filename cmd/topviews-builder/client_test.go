// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// A fake HTTP transport that answers like the Wikimedia pageviews API.
type FakeWikimediaAPI struct {
	// If true, return 503 Service Unavailable for all requests.
	Broken bool

	// Days (as "2006/01/02") that answer 503 regardless of Broken.
	BrokenDays map[string]bool

	// Days that answer 403 Forbidden.
	ForbiddenDays map[string]bool

	// Days that answer 404, as the live API does for dates without data.
	MissingDays map[string]bool

	requests atomic.Int32
}

func (f *FakeWikimediaAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	f.requests.Add(1)
	header := make(http.Header)

	url := req.URL.String()
	day := url[len(url)-10:]

	if f.Broken || f.BrokenDays[day] {
		header.Add("Content-Type", "text/plain")
		body := io.NopCloser(bytes.NewBufferString("Service Unavailable"))
		return &http.Response{StatusCode: 503, Body: body, Header: header}, nil
	}

	if f.ForbiddenDays[day] {
		header.Add("Content-Type", "text/plain")
		body := io.NopCloser(bytes.NewBufferString("Forbidden"))
		return &http.Response{StatusCode: 403, Body: body, Header: header}, nil
	}

	if f.MissingDays[day] {
		header.Add("Content-Type", "application/json")
		body := io.NopCloser(bytes.NewBufferString(`{"type":"about:blank","status":404}`))
		return &http.Response{StatusCode: 404, Body: body, Header: header}, nil
	}

	if !strings.HasPrefix(url, defaultBaseURL+"/en.wikipedia.org/all-access/") {
		return nil, fmt.Errorf("unexpected request: %s", url)
	}

	payload := fmt.Sprintf(`{"items":[{"project":"en.wikipedia","articles":[
		{"article":"Main_Page","views":5000000,"rank":1},
		{"article":"Taylor_Swift","views":%d,"rank":2},
		{"article":"Amélie","views":120000,"rank":3}
	]}]}`, 300000+dayOfMonth(day)*1000)
	header.Add("Content-Type", "application/json")
	body := io.NopCloser(bytes.NewBufferString(payload))
	return &http.Response{StatusCode: 200, Body: body, Header: header}, nil
}

func dayOfMonth(day string) int {
	var y, m, d int
	fmt.Sscanf(day, "%d/%d/%d", &y, &m, &d)
	return d
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Retries = 1
	cfg.RequestsPerMinute = 0 // no throttling in tests
	cfg.FetchWorkers = 2
	return cfg
}

func TestFetchDay(t *testing.T) {
	httpClient := &http.Client{Transport: &FakeWikimediaAPI{}}
	client := NewClient(httpClient, testConfig(), nil)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	articles, err := client.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	if articles[0].Article != "Main_Page" || articles[0].Views != 5000000 || articles[0].Rank != 1 {
		t.Errorf("unexpected first article: %+v", articles[0])
	}
	if articles[1].Views != 305000 {
		t.Errorf("expected 305000 views, got %d", articles[1].Views)
	}
}

func TestFetchDayNoData(t *testing.T) {
	transport := &FakeWikimediaAPI{MissingDays: map[string]bool{"2024/03/05": true}}
	client := NewClient(&http.Client{Transport: transport}, testConfig(), nil)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	articles, err := client.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles for a 404 day, got %d", len(articles))
	}
}

func TestFetchDayServerError(t *testing.T) {
	client := NewClient(&http.Client{Transport: &FakeWikimediaAPI{Broken: true}}, testConfig(), nil)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchDay(context.Background(), day)
	if err == nil || !strings.Contains(err.Error(), "StatusCode=503") {
		t.Errorf("expected fetch failure, got %v", err)
	}
}

func TestFetchDayClientErrorNotRetried(t *testing.T) {
	transport := &FakeWikimediaAPI{ForbiddenDays: map[string]bool{"2024/03/05": true}}
	cfg := testConfig()
	cfg.Retries = 3
	client := NewClient(&http.Client{Transport: transport}, cfg, nil)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchDay(context.Background(), day)
	if err == nil || !strings.Contains(err.Error(), "StatusCode=403") {
		t.Errorf("expected 403 failure, got %v", err)
	}

	// A client error is final; only server errors earn further attempts.
	if got := transport.requests.Load(); got != 1 {
		t.Errorf("expected a single request, got %d", got)
	}
}

func TestFetchDayUsesCache(t *testing.T) {
	cache, err := NewResponseCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	client := NewClient(&http.Client{Transport: &FakeWikimediaAPI{}}, testConfig(), cache)
	if _, err := client.FetchDay(context.Background(), day); err != nil {
		t.Fatal(err)
	}

	// Same cache, but a server that now always fails: the cached response
	// must make the fetch succeed without hitting the network.
	client = NewClient(&http.Client{Transport: &FakeWikimediaAPI{Broken: true}}, testConfig(), cache)
	articles, err := client.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 3 {
		t.Errorf("expected 3 cached articles, got %d", len(articles))
	}
}

func TestFetchDayCachesNoData(t *testing.T) {
	cache, err := NewResponseCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	transport := &FakeWikimediaAPI{MissingDays: map[string]bool{"2024/03/05": true}}
	client := NewClient(&http.Client{Transport: transport}, testConfig(), cache)
	articles, err := client.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles for a 404 day, got %d", len(articles))
	}

	// The no-data answer is cached too: a later run must not refetch it.
	client = NewClient(&http.Client{Transport: &FakeWikimediaAPI{Broken: true}}, testConfig(), cache)
	articles, err = client.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 0 {
		t.Errorf("expected cached empty day, got %d articles", len(articles))
	}
}

func TestFetchRangeSkipsBadDays(t *testing.T) {
	transport := &FakeWikimediaAPI{
		BrokenDays:  map[string]bool{"2024/03/02": true},
		MissingDays: map[string]bool{"2024/03/03": true},
	}
	client := NewClient(&http.Client{Transport: transport}, testConfig(), nil)

	r := DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	results, missing, err := client.FetchRange(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 day results, got %d", len(results))
	}

	// Day 2 failed, day 3 had no data; both come back empty, but only the
	// failure counts as missing.
	if len(results[1].Articles) != 0 || len(results[2].Articles) != 0 {
		t.Errorf("expected empty articles for days 2 and 3")
	}
	if len(results[0].Articles) != 3 || len(results[3].Articles) != 3 {
		t.Errorf("expected 3 articles for days 1 and 4")
	}
	if len(missing) != 1 || missing[0].Day() != 2 {
		t.Errorf("expected 2024-03-02 to be the only missing day, got %v", missing)
	}

	// Results stay in chronological order regardless of fetch order.
	for i, result := range results {
		if result.Day.Day() != i+1 {
			t.Errorf("result %d has day %v", i, result.Day)
		}
	}
}
