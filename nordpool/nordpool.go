package nordpool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/angas/wattwindow-go/convert"
	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
)

// Nordpool is the fallback provider, fetching day-ahead prices in
// 15-minute delivery periods from the Nord Pool data portal.
type Nordpool struct {
	area string
}

func New(area string) Nordpool {
	return Nordpool{area: area}
}

func (n Nordpool) GetSpotPrices(ctx context.Context) ([]types.PricePoint, error) {
	t := time.Now()
	today, err := n.getSpotPrices(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices from nordpool for today: %w", err)
	}

	tomorrow, err := n.getSpotPrices(ctx, t.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices from nordpool for tomorrow: %w", err)
	}

	return append(today, tomorrow...), nil
}

func (n Nordpool) getSpotPrices(ctx context.Context, date time.Time) ([]types.PricePoint, error) {
	url := fmt.Sprintf("%s/api/DayAheadPrices?date=%s&market=DayAhead&deliveryArea=%s&currency=EUR",
		"https://dataportal-api.nordpoolgroup.com",
		date.Format("2006-01-02"),
		n.area)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []types.PricePoint{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data nordpoolData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	prices := make([]types.PricePoint, 0, len(data.MultiAreaEntries))
	for _, entry := range data.MultiAreaEntries {
		ts := slots.Align(entry.DeliveryStart)
		if slices.ContainsFunc(prices, func(p types.PricePoint) bool { return p.Timestamp.Equal(ts) }) {
			continue
		}
		price, ok := entry.EntryPerArea[n.area]
		if ok {
			prices = append(prices, types.PricePoint{
				Timestamp: ts,
				Price:     normalizePrice(price),
			})
		}
	}

	return prices, nil
}

// normalizePrice converts EUR/MWh from the portal to EUR/kWh.
func normalizePrice(price float64) float64 {
	return convert.RoundFloat64(price/1e3, 5)
}
