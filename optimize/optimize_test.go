package optimize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/angas/wattwindow-go/types"
)

var seriesStart = time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC)

// series builds a 15-minute price series starting at seriesStart.
func series(prices ...float64) []types.PricePoint {
	pts := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = types.PricePoint{
			Timestamp: seriesStart.Add(time.Duration(i) * 15 * time.Minute),
			Price:     p,
		}
	}
	return pts
}

func slotAt(i int) time.Time {
	return seriesStart.Add(time.Duration(i) * 15 * time.Minute)
}

func TestFindWindows(t *testing.T) {
	prices := series(0.10, 0.12, 0.08, 0.09, 0.20, 0.22, 0.05, 0.04)
	req := Request{
		DurationMinutes: 30,
		PowerKw:         2.0,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(8),
		TopN:            3,
	}

	res, err := FindWindows(prices, req, slotAt(0))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}

	if !res.Best.Start.Equal(slotAt(6)) {
		t.Errorf("best window start expected %v, got %v", slotAt(6), res.Best.Start)
	}
	if !res.Best.End.Equal(slotAt(8)) {
		t.Errorf("best window end expected %v, got %v", slotAt(8), res.Best.End)
	}
	if !almostEqual(res.Best.AvgPrice, 0.045) {
		t.Errorf("best window avg price expected 0.045, got %f", res.Best.AvgPrice)
	}
	if !almostEqual(res.Best.EstimatedCost, 0.045) {
		t.Errorf("best window cost expected 0.045, got %f", res.Best.EstimatedCost)
	}

	if !res.Worst.Start.Equal(slotAt(4)) {
		t.Errorf("worst window start expected %v, got %v", slotAt(4), res.Worst.Start)
	}
	if !almostEqual(res.Worst.EstimatedCost, 0.21) {
		t.Errorf("worst window cost expected 0.21, got %f", res.Worst.EstimatedCost)
	}

	if len(res.Ranked) != 3 {
		t.Fatalf("expected 3 ranked windows, got %d", len(res.Ranked))
	}
	for i := 1; i < len(res.Ranked); i++ {
		if res.Ranked[i].EstimatedCost < res.Ranked[i-1].EstimatedCost {
			t.Errorf("ranked windows not sorted ascending at index %d", i)
		}
	}

	// Now is the first slot, so the savings reference is the window at index 0.
	nowCost := (0.10 + 0.12) / 2 * 2.0 * 0.5
	if !almostEqual(res.Best.StartNowCost, nowCost) {
		t.Errorf("start-now cost expected %f, got %f", nowCost, res.Best.StartNowCost)
	}
	if !almostEqual(res.Best.SavingsVsNow, nowCost-0.045) {
		t.Errorf("savings expected %f, got %f", nowCost-0.045, res.Best.SavingsVsNow)
	}
}

func TestFindWindowsDeterministic(t *testing.T) {
	prices := series(0.10, 0.12, 0.08, 0.09, 0.20, 0.22, 0.05, 0.04)
	req := Request{
		DurationMinutes: 45,
		PowerKw:         1.5,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(8),
		TopN:            4,
	}

	first, err := FindWindows(prices, req, slotAt(2))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}
	second, err := FindWindows(prices, req, slotAt(2))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}

	if len(first.Ranked) != len(second.Ranked) {
		t.Fatalf("ranked lengths differ: %d vs %d", len(first.Ranked), len(second.Ranked))
	}
	for i := range first.Ranked {
		if first.Ranked[i] != second.Ranked[i] {
			t.Errorf("ranked window %d differs between identical calls", i)
		}
	}
}

func TestFindWindowsTieBreak(t *testing.T) {
	// Flat series: every window costs the same, earliest start must win.
	prices := series(0.10, 0.10, 0.10, 0.10, 0.10, 0.10)
	req := Request{
		DurationMinutes: 30,
		PowerKw:         1.0,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(6),
		TopN:            2,
	}

	res, err := FindWindows(prices, req, slotAt(0))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}

	if !res.Best.Start.Equal(slotAt(0)) {
		t.Errorf("best window start expected first slot %v, got %v", slotAt(0), res.Best.Start)
	}
	if !res.Worst.Start.Equal(slotAt(0)) {
		t.Errorf("worst window start expected first slot %v, got %v", slotAt(0), res.Worst.Start)
	}
	if !res.Ranked[1].Start.Equal(slotAt(1)) {
		t.Errorf("second ranked window expected start %v, got %v", slotAt(1), res.Ranked[1].Start)
	}
}

func TestFindWindowsGap(t *testing.T) {
	// Slot 3 is missing: windows spanning it must be excluded, windows
	// entirely before or after remain valid.
	prices := series(0.30, 0.30, 0.30, 0.0, 0.10, 0.10, 0.40)
	prices = append(prices[:3], prices[4:]...)

	req := Request{
		DurationMinutes: 30,
		PowerKw:         1.0,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(7),
		TopN:            10,
	}

	res, err := FindWindows(prices, req, slotAt(0))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}

	for _, w := range res.Ranked {
		if w.Start.Before(slotAt(4)) && w.End.After(slotAt(3)) {
			t.Errorf("window %v-%v spans the gap at slot 3", w.Start, w.End)
		}
	}
	// Valid candidates: starts at 0, 1 (before gap), 4, 5 (after gap).
	if len(res.Ranked) != 4 {
		t.Errorf("expected 4 candidates, got %d", len(res.Ranked))
	}
	if !res.Best.Start.Equal(slotAt(4)) {
		t.Errorf("best window start expected %v, got %v", slotAt(4), res.Best.Start)
	}
}

func TestFindWindowsGapExcludesAll(t *testing.T) {
	// Every 90-minute window spans the missing slot.
	prices := series(0.10, 0.10, 0.10, 0.0, 0.10, 0.10, 0.10)
	prices = append(prices[:3], prices[4:]...)

	req := Request{
		DurationMinutes: 90,
		PowerKw:         1.0,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(7),
	}

	_, err := FindWindows(prices, req, slotAt(0))
	if !errors.Is(err, ErrNoWindowAvailable) {
		t.Errorf("expected ErrNoWindowAvailable, got %v", err)
	}
}

func TestFindWindowsSavingsFallback(t *testing.T) {
	// Now is past every candidate, the reference degrades to the first one.
	prices := series(0.20, 0.10, 0.30, 0.40)
	req := Request{
		DurationMinutes: 15,
		PowerKw:         4.0,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(4),
	}

	res, err := FindWindows(prices, req, slotAt(10))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}

	firstCost := 0.20 * 4.0 * 0.25
	if !almostEqual(res.Best.StartNowCost, firstCost) {
		t.Errorf("start-now cost expected %f, got %f", firstCost, res.Best.StartNowCost)
	}
}

func TestFindWindowsBounds(t *testing.T) {
	// Candidates outside [earliest, latest-duration] are never considered.
	prices := series(0.01, 0.50, 0.50, 0.50, 0.02)
	req := Request{
		DurationMinutes: 15,
		PowerKw:         1.0,
		EarliestStart:   slotAt(1),
		LatestEnd:       slotAt(4),
	}

	res, err := FindWindows(prices, req, slotAt(1))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}
	if !res.Best.Start.Equal(slotAt(1)) && !res.Best.Start.Equal(slotAt(2)) && !res.Best.Start.Equal(slotAt(3)) {
		t.Errorf("best window %v outside search bounds", res.Best.Start)
	}
	if res.Best.Start.Before(req.EarliestStart) {
		t.Errorf("best window starts before earliest_start")
	}
	if res.Best.End.After(req.LatestEnd) {
		t.Errorf("best window ends after latest_end")
	}
}

func TestFindWindowsValidation(t *testing.T) {
	prices := series(0.10, 0.10, 0.10)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{
			name: "duration not a multiple of 15",
			req:  Request{DurationMinutes: 25, PowerKw: 1, EarliestStart: slotAt(0), LatestEnd: slotAt(3)},
			want: ErrInvalidRequest,
		},
		{
			name: "zero duration",
			req:  Request{DurationMinutes: 0, PowerKw: 1, EarliestStart: slotAt(0), LatestEnd: slotAt(3)},
			want: ErrInvalidRequest,
		},
		{
			name: "non-positive power",
			req:  Request{DurationMinutes: 15, PowerKw: 0, EarliestStart: slotAt(0), LatestEnd: slotAt(3)},
			want: ErrInvalidRequest,
		},
		{
			name: "earliest not before latest",
			req:  Request{DurationMinutes: 15, PowerKw: 1, EarliestStart: slotAt(3), LatestEnd: slotAt(3)},
			want: ErrInvalidRequest,
		},
		{
			name: "range shorter than one window",
			req:  Request{DurationMinutes: 60, PowerKw: 1, EarliestStart: slotAt(0), LatestEnd: slotAt(2)},
			want: ErrNoWindowAvailable,
		},
		{
			name: "empty series",
			req:  Request{DurationMinutes: 15, PowerKw: 1, EarliestStart: slotAt(0), LatestEnd: slotAt(3)},
			want: ErrNoWindowAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := prices
			if tt.name == "empty series" {
				input = nil
			}
			_, err := FindWindows(input, tt.req, slotAt(0))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFindWindowsNegativePrices(t *testing.T) {
	prices := series(0.05, -0.02, -0.03, 0.08)
	req := Request{
		DurationMinutes: 30,
		PowerKw:         3.0,
		EarliestStart:   slotAt(0),
		LatestEnd:       slotAt(4),
	}

	res, err := FindWindows(prices, req, slotAt(0))
	if err != nil {
		t.Fatalf("FindWindows() unexpected error: %v", err)
	}
	if !res.Best.Start.Equal(slotAt(1)) {
		t.Errorf("best window start expected %v, got %v", slotAt(1), res.Best.Start)
	}
	if !almostEqual(res.Best.EstimatedCost, -0.025*3.0*0.5) {
		t.Errorf("best window cost expected %f, got %f", -0.025*3.0*0.5, res.Best.EstimatedCost)
	}
}

func almostEqual(f1 float64, f2 float64) bool {
	return math.Abs(f1-f2) < 1e-9
}
