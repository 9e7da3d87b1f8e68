package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/angas/wattwindow-go/config"
	"github.com/angas/wattwindow-go/database"
	"github.com/angas/wattwindow-go/mqtt"
	"github.com/angas/wattwindow-go/optimize"
	"github.com/angas/wattwindow-go/slice"
	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
)

// NewAnnounceTask publishes the cheapest upcoming window for every
// configured appliance profile.
func NewAnnounceTask(logger *slog.Logger, db *database.Database, announcer *mqtt.Announcer, cnfg config.AppConfigMqtt, area string) func() {
	return func() {
		logger.Debug("running announce task...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		now := time.Now().UTC()
		announced := 0

		for _, appliance := range cnfg.Appliances {
			earliest := slots.Next(now)
			latest := earliest.Add(time.Duration(appliance.GetHorizonHours()) * time.Hour)

			rows, err := db.GetSpotPrices(ctx, area, earliest, latest)
			if err != nil {
				logger.Error("announce task error, reading prices",
					slog.String("appliance", appliance.Name), slog.Any("error", err))
				continue
			}

			prices := slice.Map(rows, func(r database.SpotPriceRow) types.PricePoint { return r.PricePoint() })
			res, err := optimize.FindWindows(prices, optimize.Request{
				DurationMinutes: appliance.DurationMinutes,
				PowerKw:         appliance.PowerKw,
				EarliestStart:   earliest,
				LatestEnd:       latest,
			}, now)
			if err != nil {
				if errors.Is(err, optimize.ErrNoWindowAvailable) {
					logger.Warn("no window to announce", slog.String("appliance", appliance.Name))
				} else {
					logger.Error("announce task error", slog.String("appliance", appliance.Name), slog.Any("error", err))
				}
				continue
			}

			if err := announcer.AnnounceWindow(appliance.Name, res.Best); err != nil {
				logger.Error("announce task error, publishing",
					slog.String("appliance", appliance.Name), slog.Any("error", err))
				continue
			}
			announced++
		}

		logger.Info("announce task done", slog.Int("noOfAppliances", announced))
	}
}
