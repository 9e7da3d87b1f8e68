package task

import (
	"context"
	"log/slog"

	"github.com/angas/wattwindow-go/config"
	"github.com/angas/wattwindow-go/database"
	"github.com/angas/wattwindow-go/mqtt"
	"github.com/angas/wattwindow-go/types"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	SpotPriceTask   func()
	AnnounceTask    func()
	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	providers []types.SpotPriceProvider,
	announcer *mqtt.Announcer,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	t := &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		SpotPriceTask:   NewSpotPriceTask(logger.With(slog.String("task", "spot_price")), db, cnfg.PriceFeed.Area, providers),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
	if announcer != nil {
		t.AnnounceTask = NewAnnounceTask(logger.With(slog.String("task", "announce")), db, announcer, cnfg.Mqtt, cnfg.PriceFeed.Area)
	}
	return t
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.PriceFeed.RunAt, t.SpotPriceTask)
	if err != nil {
		panic(err)
	}
	if t.AnnounceTask != nil {
		_, err = t.cron.AddFunc(t.cnfg.Mqtt.RunAt, t.AnnounceTask)
		if err != nil {
			panic(err)
		}
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
