package spothinta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedResponse = `[
	{"Rank": 3, "DateTime": "2026-02-14T18:00:00+02:00", "PriceNoTax": 0.1497, "PriceWithTax": 0.18569},
	{"Rank": 4, "DateTime": "2026-02-14T18:15:00+02:00", "PriceNoTax": 0.1574, "PriceWithTax": 0.19519},
	{"Rank": 1, "DateTime": "2026-02-14T18:30:00+02:00", "PriceNoTax": 0.1199, "PriceWithTax": 0.14873},
	{"Rank": 2, "DateTime": "2026-02-14T18:37:00+02:00", "PriceNoTax": 0.1128, "PriceWithTax": 0.13992}
]`

func TestGetSpotPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feedResponse))
	}))
	defer srv.Close()

	provider := NewWithUrl(srv.URL, 10)
	prices, err := provider.GetSpotPrices(context.Background())
	if err != nil {
		t.Fatalf("GetSpotPrices() error: %v", err)
	}

	// The 18:37 sample is off the 15-minute grid and must be dropped.
	if len(prices) != 3 {
		t.Fatalf("expected 3 price points, got %d", len(prices))
	}

	expectedFirst := time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC)
	if !prices[0].Timestamp.Equal(expectedFirst) {
		t.Errorf("first timestamp expected %v (UTC), got %v", expectedFirst, prices[0].Timestamp)
	}
	if prices[0].Price != 0.18569 {
		t.Errorf("first price expected 0.18569, got %f", prices[0].Price)
	}

	for i := 1; i < len(prices); i++ {
		if !prices[i].Timestamp.After(prices[i-1].Timestamp) {
			t.Errorf("prices not strictly increasing at index %d", i)
		}
	}
}

func TestGetSpotPricesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := NewWithUrl(srv.URL, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := provider.GetSpotPrices(ctx); err == nil {
		t.Fatal("expected error on server failure, got nil")
	}
}
