package spothinta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const apiUrl = "https://api.spot-hinta.fi/TodayAndDayForward"

type rawPrice struct {
	Rank         int       `json:"Rank"`
	DateTime     time.Time `json:"DateTime"`
	PriceNoTax   float64   `json:"PriceNoTax"`
	PriceWithTax float64   `json:"PriceWithTax"`
}

// SpotHinta fetches Finnish spot prices from api.spot-hinta.fi.
// The feed returns 15-minute periods for today and, once published,
// the day ahead. Prices are EUR/kWh including VAT.
type SpotHinta struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

func New(requestsPerSec int) SpotHinta {
	return NewWithUrl(apiUrl, requestsPerSec)
}

func NewWithUrl(url string, requestsPerSec int) SpotHinta {
	if requestsPerSec < 1 {
		requestsPerSec = 1
	}
	return SpotHinta{
		url:     url,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), requestsPerSec),
	}
}

func (s SpotHinta) GetSpotPrices(ctx context.Context) ([]types.PricePoint, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var rawPrices []rawPrice
	operation := func() error {
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		rawPrices = rawPrices[:0]
		return json.NewDecoder(resp.Body).Decode(&rawPrices)
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	prices := make([]types.PricePoint, 0, len(rawPrices))
	for _, raw := range rawPrices {
		ts := raw.DateTime.UTC()
		if !slots.IsAligned(ts) {
			continue // Off-grid samples would misalign every window
		}
		prices = append(prices, types.PricePoint{
			Timestamp: ts,
			Price:     raw.PriceWithTax,
		})
	}

	slices.SortFunc(prices, func(a, b types.PricePoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return prices, nil
}
