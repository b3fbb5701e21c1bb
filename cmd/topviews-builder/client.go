// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBaseURL = "https://wikimedia.org/api/rest_v1/metrics/pageviews/top"

// ArticleViews is one article's row in a daily "top pageviews" listing.
type ArticleViews struct {
	Article string `json:"article"`
	Views   int64  `json:"views"`
	Rank    int    `json:"rank"`
}

type topViewsResponse struct {
	Items []struct {
		Articles []ArticleViews `json:"articles"`
	} `json:"items"`
}

// DayResult holds the articles fetched for a single day. A day that the
// API knows nothing about (HTTP 404) has an empty article list.
type DayResult struct {
	Day      time.Time
	Articles []ArticleViews
}

// Client fetches daily top-pageviews listings from the Wikimedia REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	project    string
	access     string
	userAgent  string
	cache      *ResponseCache
	limiter    *RateLimiter
	retries    int
	workers    int
}

func NewClient(httpClient *http.Client, cfg Config, cache *ResponseCache) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		project:    cfg.Project,
		access:     cfg.Access,
		userAgent:  cfg.UserAgent,
		cache:      cache,
		limiter:    NewRateLimiter(cfg.RequestsPerMinute),
		retries:    cfg.Retries,
		workers:    cfg.FetchWorkers,
	}
}

// FetchDay returns the top articles for one day. Cached responses are
// served without network access. A 404 from the API is not an error; it
// means there is no data for that day.
func (c *Client) FetchDay(ctx context.Context, day time.Time) ([]ArticleViews, error) {
	if c.cache != nil {
		if body, err := c.cache.Get(c.project, c.access, day); err == nil && body != nil {
			return parseTopViews(body)
		}
	}

	var body []byte
	err := Retry(ctx, c.retries, time.Second, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		b, err := c.fetch(ctx, day)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if body == nil {
		// The API has no data for this day. That never changes for past
		// dates, so it is worth a cache entry too.
		body = []byte(`{"items":[]}`)
	}

	articles, err := parseTopViews(body)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Put(c.project, c.access, day, body); err != nil {
			logger.Warn("failed to cache response",
				zap.String("day", day.Format("2006-01-02")), zap.Error(err))
		}
	}
	return articles, nil
}

func (c *Client) fetch(ctx context.Context, day time.Time) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s/%04d/%02d/%02d",
		c.baseURL, c.project, c.access, day.Year(), day.Month(), day.Day())
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	// https://foundation.wikimedia.org/wiki/Policy:User-Agent_policy
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("failed to fetch %s; StatusCode=%d", u, resp.StatusCode)
		if resp.StatusCode < 500 {
			// Client errors won't get better on a second try.
			err = fmt.Errorf("%w: %v", errPermanent, err)
		}
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

// FetchRange fetches every day in the range. Days that keep failing after
// retries are logged, skipped and reported back; they never abort the run.
// Results come back in chronological order.
func (c *Client) FetchRange(ctx context.Context, r DateRange) ([]DayResult, []time.Time, error) {
	days := r.Days()
	results := make([]DayResult, len(days))
	failed := make([]bool, len(days))

	g, subCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			articles, err := c.FetchDay(subCtx, day)
			if err != nil {
				if subCtx.Err() != nil {
					return subCtx.Err()
				}
				logger.Warn("skipping day",
					zap.String("day", day.Format("2006-01-02")), zap.Error(err))
				failed[i] = true
				return nil
			}
			results[i] = DayResult{Day: day, Articles: articles}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	missing := make([]time.Time, 0)
	for i, day := range days {
		if failed[i] {
			missing = append(missing, day)
			results[i] = DayResult{Day: day}
		}
	}
	return results, missing, nil
}

func parseTopViews(body []byte) ([]ArticleViews, error) {
	var resp topViewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return resp.Items[0].Articles, nil
}
