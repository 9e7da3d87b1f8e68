package database

import (
	"context"
	"fmt"
	"time"

	"github.com/angas/wattwindow-go/convert"
	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/types"
)

type SpotPriceRow struct {
	When  time.Time
	Price float64
}

func (r SpotPriceRow) PricePoint() types.PricePoint {
	return types.PricePoint{Timestamp: r.When, Price: r.Price}
}

func (d *Database) SaveSpotPrices(ctx context.Context, area string, rows []SpotPriceRow) error {
	for _, row := range rows {
		_, err := d.write.ExecContext(ctx, `
			INSERT INTO spot_price (area, ts, price) VALUES (?, ?, ?)
			ON CONFLICT(area, ts) DO UPDATE SET price = excluded.price`,
			area,
			slots.IsoString(row.When),
			convert.RoundFloat64(row.Price, 5))
		if err != nil {
			return fmt.Errorf("saving spot price for %s: %w", slots.IsoString(row.When), err)
		}
	}
	return nil
}

func (d *Database) GetSpotPrice(ctx context.Context, area string, at time.Time) (SpotPriceRow, error) {
	row := d.read.QueryRowContext(ctx, `SELECT
		ts, price
		FROM spot_price
		WHERE area = ? AND ts = ?`,
		area, slots.IsoString(at))

	var ts string
	var sp SpotPriceRow
	if err := row.Scan(&ts, &sp.Price); err != nil {
		return SpotPriceRow{}, err
	}
	sp.When = slots.FromIso(ts)

	return sp, nil
}

// GetSpotPrices returns the cached slots in [from, to), ordered by time.
// RFC3339 UTC strings compare lexicographically in time order.
func (d *Database) GetSpotPrices(ctx context.Context, area string, from, to time.Time) ([]SpotPriceRow, error) {
	rows, err := d.read.QueryContext(ctx, `SELECT
		ts, price
		FROM spot_price
		WHERE area = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC`,
		area, slots.IsoString(from), slots.IsoString(to))
	if err != nil {
		return nil, fmt.Errorf("fetching spot prices: %w", err)
	}
	defer rows.Close()

	var prices []SpotPriceRow
	for rows.Next() {
		var ts string
		var sp SpotPriceRow
		if err := rows.Scan(&ts, &sp.Price); err != nil {
			return nil, fmt.Errorf("scanning spot price row: %w", err)
		}
		sp.When = slots.FromIso(ts)
		prices = append(prices, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading spot price rows: %w", err)
	}

	return prices, nil
}

func (d *Database) PurgeSpotPrice(ctx context.Context, retentionDays int) error {
	d.logger.Debug("purging table spot_price")
	before := time.Now().UTC().Add(-24 * time.Hour * time.Duration(retentionDays))
	res, err := d.write.ExecContext(ctx,
		`DELETE FROM spot_price WHERE ts < ?`, slots.IsoString(before))
	if err != nil {
		return fmt.Errorf("error when purging spot_price: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil {
		d.logger.Debug(fmt.Sprintf("purged %d rows from spot_price", rows))
	}
	return nil
}
