package optimize

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
)

var (
	// ErrInvalidRequest means the request parameters violate a constraint.
	// The wrapped message names the violated constraint.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoWindowAvailable means the parameters are valid but no fully
	// covered candidate window exists within the search bounds.
	ErrNoWindowAvailable = errors.New("no window available")
)

type Request struct {
	DurationMinutes int       // Must be a positive multiple of 15
	PowerKw         float64   // Appliance power draw in kW
	EarliestStart   time.Time // Earliest allowed window start
	LatestEnd       time.Time // Latest allowed window end
	TopN            int       // Number of ranked windows to return, 0 means 1
}

func (r Request) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

type Window struct {
	Start         time.Time
	End           time.Time
	AvgPrice      float64 // Mean slot price in EUR/kWh
	EstimatedCost float64 // AvgPrice * PowerKw * duration in hours
	StartNowCost  float64 // Cost of the reference window starting "now"
	SavingsVsNow  float64 // StartNowCost minus EstimatedCost
}

type Result struct {
	Best   Window
	Worst  Window
	Ranked []Window
}

// FindWindows computes the cheapest and most expensive contiguous windows
// of the requested duration over a 15-minute spot price series. The series
// must be ordered by timestamp. Candidate windows spanning a gap in the
// series are excluded. The now argument anchors the savings reference; when
// no candidate starts at or after now, the first candidate is used instead.
//
// Pure function: no I/O, deterministic for identical inputs.
func FindWindows(prices []types.PricePoint, req Request, now time.Time) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	topN := req.TopN
	if topN == 0 {
		topN = 1
	}

	duration := req.Duration()
	if req.LatestEnd.Sub(req.EarliestStart) < duration {
		return Result{}, fmt.Errorf("%w: no full window of %d minutes between %s and %s",
			ErrNoWindowAvailable,
			req.DurationMinutes,
			slots.IsoString(req.EarliestStart),
			slots.IsoString(req.LatestEnd))
	}

	nSlots, _ := slots.Count(duration)
	latestStart := req.LatestEnd.Add(-duration)

	candidates := make([]Window, 0, len(prices))
	for i := range prices {
		start := prices[i].Timestamp
		if start.Before(req.EarliestStart) || start.After(latestStart) {
			continue
		}
		if w, ok := windowAt(prices, i, nSlots, req.PowerKw); ok {
			candidates = append(candidates, w)
		}
	}

	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: price series does not cover any candidate window",
			ErrNoWindowAvailable)
	}

	slices.SortStableFunc(candidates, func(a, b Window) int {
		if c := cmp.Compare(a.EstimatedCost, b.EstimatedCost); c != 0 {
			return c
		}
		return a.Start.Compare(b.Start)
	})

	nowCost := startNowCost(candidates, now)
	for i := range candidates {
		candidates[i].StartNowCost = nowCost
		candidates[i].SavingsVsNow = nowCost - candidates[i].EstimatedCost
	}

	worst := candidates[len(candidates)-1]
	for i := len(candidates) - 2; i >= 0; i-- {
		if candidates[i].EstimatedCost < worst.EstimatedCost {
			break
		}
		if candidates[i].Start.Before(worst.Start) {
			worst = candidates[i]
		}
	}

	return Result{
		Best:   candidates[0],
		Worst:  worst,
		Ranked: candidates[:min(topN, len(candidates))],
	}, nil
}

func validate(req Request) error {
	if req.DurationMinutes <= 0 || req.DurationMinutes%15 != 0 {
		return fmt.Errorf("%w: duration_minutes must be a positive multiple of 15, got %d",
			ErrInvalidRequest, req.DurationMinutes)
	}
	if req.PowerKw <= 0 {
		return fmt.Errorf("%w: power_kw must be positive, got %g", ErrInvalidRequest, req.PowerKw)
	}
	if !req.EarliestStart.Before(req.LatestEnd) {
		return fmt.Errorf("%w: earliest_start must be before latest_end", ErrInvalidRequest)
	}
	if req.TopN < 0 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidRequest, req.TopN)
	}
	return nil
}

// windowAt builds the window whose first slot is prices[i]. Reports false
// when the series ends early or has a gap within the window.
func windowAt(prices []types.PricePoint, i, nSlots int, powerKw float64) (Window, bool) {
	if i+nSlots > len(prices) {
		return Window{}, false
	}

	start := prices[i].Timestamp
	sum := 0.0
	for k := 0; k < nSlots; k++ {
		if !prices[i+k].Timestamp.Equal(slots.Add(start, k)) {
			return Window{}, false
		}
		sum += prices[i+k].Price
	}

	avg := sum / float64(nSlots)
	hours := float64(nSlots) * slots.Interval.Hours()
	return Window{
		Start:         start,
		End:           slots.Add(start, nSlots),
		AvgPrice:      avg,
		EstimatedCost: avg * powerKw * hours,
	}, true
}

// startNowCost picks the savings reference: the earliest candidate starting
// at or after now, falling back to the earliest candidate overall.
func startNowCost(candidates []Window, now time.Time) float64 {
	var first, firstFromNow *Window
	for i := range candidates {
		c := &candidates[i]
		if first == nil || c.Start.Before(first.Start) {
			first = c
		}
		if !c.Start.Before(now) && (firstFromNow == nil || c.Start.Before(firstFromNow.Start)) {
			firstFromNow = c
		}
	}
	if firstFromNow != nil {
		return firstFromNow.EstimatedCost
	}
	return first.EstimatedCost
}
