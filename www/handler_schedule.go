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
)

type scheduleRequest struct {
	DurationMinutes int     `json:"duration_minutes"`
	PowerKw         float64 `json:"power_kw"`
	EarliestStart   string  `json:"earliest_start"`
	LatestEnd       string  `json:"latest_end"`
	TopN            int     `json:"top_n"`
}

type windowResponse struct {
	Start             string  `json:"start"`
	End               string  `json:"end"`
	AvgPriceEurPerKwh float64 `json:"avg_price_eur_per_kwh"`
	EstimatedCostEur  float64 `json:"estimated_cost_eur"`
	StartNowCostEur   float64 `json:"start_now_cost_eur"`
	SavingsVsNowEur   float64 `json:"savings_vs_now_eur"`
}

type scheduleResponse struct {
	BestWindow      *windowResponse  `json:"best_window"`
	WorstWindow     *windowResponse  `json:"worst_window"`
	DurationMinutes int              `json:"duration_minutes"`
	Ranked          []windowResponse `json:"ranked"`
}

func NewScheduleHandler(logger *slog.Logger, db *database.Database, area string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJsonError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		earliest := slots.FromIso(body.EarliestStart)
		latest := slots.FromIso(body.LatestEnd)
		if earliest.IsZero() || latest.IsZero() {
			writeJsonError(w, http.StatusBadRequest, "earliest_start and latest_end must be RFC3339 timestamps")
			return
		}

		req := optimize.Request{
			DurationMinutes: body.DurationMinutes,
			PowerKw:         body.PowerKw,
			EarliestStart:   earliest,
			LatestEnd:       latest,
			TopN:            body.TopN,
		}

		rows, err := db.GetSpotPrices(r.Context(), area, earliest, latest)
		if err != nil {
			logger.Error("handling schedule request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		prices := slice.Map(rows, func(r database.SpotPriceRow) types.PricePoint { return r.PricePoint() })

		res, err := optimize.FindWindows(prices, req, time.Now().UTC())
		if err != nil {
			switch {
			case errors.Is(err, optimize.ErrInvalidRequest):
				writeJsonError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, optimize.ErrNoWindowAvailable):
				// A valid request with no feasible window is not a fault
				writeJson(w, scheduleResponse{
					DurationMinutes: body.DurationMinutes,
					Ranked:          []windowResponse{},
				})
			default:
				logger.Error("handling schedule request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		best := toWindowResponse(res.Best)
		worst := toWindowResponse(res.Worst)
		writeJson(w, scheduleResponse{
			BestWindow:      &best,
			WorstWindow:     &worst,
			DurationMinutes: body.DurationMinutes,
			Ranked:          slice.Map(res.Ranked, toWindowResponse),
		})
	}
}

func toWindowResponse(w optimize.Window) windowResponse {
	return windowResponse{
		Start:             slots.IsoString(w.Start),
		End:               slots.IsoString(w.End),
		AvgPriceEurPerKwh: w.AvgPrice,
		EstimatedCostEur:  w.EstimatedCost,
		StartNowCostEur:   w.StartNowCost,
		SavingsVsNowEur:   w.SavingsVsNow,
	}
}
