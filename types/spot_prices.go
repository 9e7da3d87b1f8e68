package types

import (
	"context"
	"time"
)

// PricePoint is one 15-minute spot price sample. Timestamp is the UTC
// start of the slot, aligned to the 15-minute grid. Price may be negative.
type PricePoint struct {
	Timestamp time.Time
	Price     float64 // Price in EUR per kWh including VAT
}

type SpotPriceProvider interface {
	GetSpotPrices(ctx context.Context) ([]PricePoint, error)
}
