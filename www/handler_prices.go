package www

import (
	"log/slog"
	"net/http"

	"github.com/angas/wattwindow-go/database"
	"github.com/angas/wattwindow-go/slice"
	"github.com/angas/wattwindow-go/slots"
)

type pricePointResponse struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
}

func NewPricesHandler(logger *slog.Logger, db *database.Database, area string, refreshTask func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			start := slots.FromIso(r.URL.Query().Get("start"))
			end := slots.FromIso(r.URL.Query().Get("end"))
			if start.IsZero() || end.IsZero() || !start.Before(end) {
				writeJsonError(w, http.StatusBadRequest, "start and end must be RFC3339 timestamps with start < end")
				return
			}

			rows, err := db.GetSpotPrices(r.Context(), area, start, end)
			if err != nil {
				logger.Error("handling prices request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			writeJson(w, slice.Map(rows, func(p database.SpotPriceRow) pricePointResponse {
				return pricePointResponse{
					Timestamp: slots.IsoString(p.When),
					Price:     p.Price,
				}
			}))

		case http.MethodPost:
			refreshTask()
			w.WriteHeader(http.StatusAccepted)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
