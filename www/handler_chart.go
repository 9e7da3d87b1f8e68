package www

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/wattwindow-go/database"
	"github.com/angas/wattwindow-go/optimize"
	"github.com/angas/wattwindow-go/slice"
	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
	"github.com/angas/wattwindow-go/www/chartjs"
)

// NewChartHandler renders today's price curve with the cheapest window for
// the requested duration highlighted, slot-aligned with the curve itself.
func NewChartHandler(logger *slog.Logger, db *database.Database, area string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		durationMinutes := intOrDefault(r.URL, "duration_minutes", 60)
		powerKw := floatOrDefault(r.URL, "power_kw", 1.0)

		midnight := slots.FromMidnight()
		nextMidnight := midnight.Add(24 * time.Hour)

		rows, err := db.GetSpotPrices(r.Context(), area, midnight, nextMidnight)
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		slotIndex := func(t time.Time) int {
			return int(t.Sub(midnight) / slots.Interval)
		}

		chart := chartjs.NewChart("")
		for _, row := range rows {
			if i := slotIndex(row.When); i >= 0 && i < chartjs.NoOfSlots {
				chart.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(row.Price, 5)
			}
		}
		chart.Options.Scales["YAxis1"] = chart.Options.Scales["YAxis1"].
			WithTitle("Spot Price (EUR/kWh)")

		prices := slice.Map(rows, func(r database.SpotPriceRow) types.PricePoint { return r.PricePoint() })
		now := time.Now().UTC()
		res, err := optimize.FindWindows(prices, optimize.Request{
			DurationMinutes: durationMinutes,
			PowerKw:         powerKw,
			EarliestStart:   midnight,
			LatestEnd:       nextMidnight,
		}, now)
		if err != nil && !errors.Is(err, optimize.ErrNoWindowAvailable) && !errors.Is(err, optimize.ErrInvalidRequest) {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err == nil {
			for t := res.Best.Start; t.Before(res.Best.End); t = slots.Add(t, 1) {
				if i := slotIndex(t); i >= 0 && i < chartjs.NoOfSlots {
					chart.Data.Datasets[1].Data[i] = chart.Data.Datasets[0].Data[i]
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]chartjs.Chart{chart}); err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
		}
	}
}
