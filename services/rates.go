package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// RateFetcher pulls current USD/EUR rates from an external HTTP source. The
// source is untrusted input: values are validated before use, and a failed
// fetch never touches an existing rate set -- the caller simply keeps the
// snapshot it already has.
type RateFetcher struct {
	url    string
	client *http.Client
}

// NewRateFetcher builds a fetcher for the given endpoint. The endpoint must
// answer GET with a JSON object like {"USD": 30.5, "EUR": 33.1}.
func NewRateFetcher(url string, timeout time.Duration) *RateFetcher {
	return &RateFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchCurrentRates requests the current rates and returns them as a new
// RateSet value.
func (f *RateFetcher) FetchCurrentRates(ctx context.Context) (RateSet, error) {
	if f.url == "" {
		return RateSet{}, fmt.Errorf("fetch rates: no rate source configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return RateSet{}, fmt.Errorf("fetch rates: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return RateSet{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RateSet{}, fmt.Errorf("fetch rates: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		USD float64 `json:"USD"`
		EUR float64 `json:"EUR"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return RateSet{}, fmt.Errorf("fetch rates: decode response: %w", err)
	}

	if !validRate(payload.USD) || !validRate(payload.EUR) {
		return RateSet{}, fmt.Errorf("fetch rates: %w: USD=%v EUR=%v",
			ErrIncompleteRateSet, payload.USD, payload.EUR)
	}

	return RateSet{USD: payload.USD, EUR: payload.EUR}, nil
}

func validRate(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
