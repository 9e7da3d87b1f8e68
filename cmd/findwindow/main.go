package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/angas/wattwindow-go/optimize"
	"github.com/angas/wattwindow-go/slots"
	"github.com/angas/wattwindow-go/spothinta"
	"github.com/lmittmann/tint"
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	duration := flag.Int("duration", 60, "window duration in minutes (multiple of 15)")
	power := flag.Float64("power", 1.0, "appliance power draw in kW")
	horizon := flag.Int("horizon", 24, "search horizon in hours")
	topN := flag.Int("top", 3, "number of ranked windows to print")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prices, err := spothinta.New(2).GetSpotPrices(ctx)
	if err != nil {
		panic(err)
	}

	now := time.Now().UTC()
	res, err := optimize.FindWindows(prices, optimize.Request{
		DurationMinutes: *duration,
		PowerKw:         *power,
		EarliestStart:   slots.Next(now),
		LatestEnd:       slots.Next(now).Add(time.Duration(*horizon) * time.Hour),
		TopN:            *topN,
	}, now)
	if err != nil {
		panic(err)
	}

	fmt.Printf("best:  %s\n", formatWindow(res.Best))
	fmt.Printf("worst: %s\n", formatWindow(res.Worst))
	for i, w := range res.Ranked {
		fmt.Printf("#%d:    %s\n", i+1, formatWindow(w))
	}
}

func formatWindow(w optimize.Window) string {
	return fmt.Sprintf("%s - %s  avg %.5f EUR/kWh  cost %.4f EUR  saves %.4f EUR",
		w.Start.Format("2006-01-02 15:04"),
		w.End.Format("15:04"),
		w.AvgPrice,
		w.EstimatedCost,
		w.SavingsVsNow)
}
