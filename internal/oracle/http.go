package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	errRateLimited = errors.New("rate limited")
	errNotFound    = errors.New("not found")
)

// restSource is the shared GET+JSON plumbing for explorer APIs. Every
// request waits on the limiter first so bursts from many workers are
// spread below the public quota.
type restSource struct {
	base    string
	header  http.Header
	client  *http.Client
	limiter *rate.Limiter
}

func newRestSource(base string, ratePerSec int) *restSource {
	return newRestSourceWith(base, newLimiter(ratePerSec))
}

// newRestSourceWith lets several sources share one quota.
func newRestSourceWith(base string, lim *rate.Limiter) *restSource {
	return &restSource{
		base:    base,
		header:  http.Header{},
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: lim,
	}
}

func (s *restSource) getJSON(ctx context.Context, path string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range s.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errRateLimited
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
