package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/wattwindow-go/database"
	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
)

func NewSpotPriceTask(logger *slog.Logger, db *database.Database, area string, providers []types.SpotPriceProvider) func() {
	if len(providers) == 0 {
		panic("no spot price providers")
	}

	if needImmediateSpotPriceUpdate(db, area) {
		logger.Info("need an immediate update of spot prices")
		runSpotPriceTask(logger, db, area, providers)
	} else {
		logger.Debug("no need for immediate update of spot prices")
	}

	return func() { runSpotPriceTask(logger, db, area, providers) }
}

func runSpotPriceTask(logger *slog.Logger, db *database.Database, area string, providers []types.SpotPriceProvider) {
	logger.Debug("running spot price task...")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var rows []database.SpotPriceRow
	for _, provider := range providers {
		prices, err := provider.GetSpotPrices(ctx)
		if err != nil {
			logger.Error("spot price task error, fetching spot prices", slog.Any("error", err))
			continue
		}
		if len(prices) == 0 {
			logger.Warn("spot price provider returned no prices")
			continue
		}
		rows = make([]database.SpotPriceRow, len(prices))
		for i, p := range prices {
			rows[i] = database.SpotPriceRow{When: p.Timestamp, Price: p.Price}
		}
		break
	}

	if len(rows) == 0 {
		logger.Error("spot price task error, no prices fetched")
		return
	}

	if err := db.SaveSpotPrices(ctx, area, rows); err != nil {
		logger.Error("spot price task error", slog.Any("error", err))
		return
	}

	logger.Info("spot price task done", slog.Int("noOfSlotsUpdated", len(rows)))
}

// needImmediateSpotPriceUpdate checks whether the cache already covers a
// couple of hours ahead; on a cold start it will not.
func needImmediateSpotPriceUpdate(db *database.Database, area string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	at := slots.Add(slots.FromNow(), 8)
	if _, err := db.GetSpotPrice(ctx, area, at); err != nil {
		return true
	}
	return false
}
