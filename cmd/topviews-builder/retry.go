// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"time"
)

// errPermanent marks failures that retrying cannot fix, such as a 4xx
// answer from the server. Retry gives up on them immediately.
var errPermanent = errors.New("permanent failure")

// Retry calls fn up to maxAttempts times, doubling the delay between
// attempts starting at baseDelay. It returns nil on the first success, the
// last error otherwise. Context cancellation is honored between attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, errPermanent) {
			return err
		}
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return err
}
