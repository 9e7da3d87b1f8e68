package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
api:
  address: ""
  port: 8080
database:
  path: "data/wattwindow.db"
  data_retention_days: 30
price_feed:
  area: "FI"
  run_at: "5 14 * * *"
mqtt:
  host: "broker.local"
  port: 1883
  run_at: "10 14 * * *"
  appliances:
    - name: "dishwasher"
      duration_minutes: 90
      power_kw: 1.2
    - name: "ev_charger"
      duration_minutes: 180
      power_kw: 11.0
      horizon_hours: 12
logging:
  console_level: "DEBUG"
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cnfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	t.Run("Api", func(t *testing.T) {
		if cnfg.Api.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cnfg.Api.Port)
		}
	})

	t.Run("Database", func(t *testing.T) {
		if cnfg.Database.Path != "data/wattwindow.db" {
			t.Errorf("unexpected database path %q", cnfg.Database.Path)
		}
		if cnfg.Database.GetDataRetentionDays() != 30 {
			t.Errorf("expected data retention 30, got %d", cnfg.Database.GetDataRetentionDays())
		}
		if cnfg.Database.GetBackupRetentionDays() != 90 {
			t.Errorf("expected default backup retention 90, got %d", cnfg.Database.GetBackupRetentionDays())
		}
	})

	t.Run("PriceFeed", func(t *testing.T) {
		if cnfg.PriceFeed.Area != "FI" {
			t.Errorf("expected area FI, got %q", cnfg.PriceFeed.Area)
		}
		if cnfg.PriceFeed.GetRequestsPerSec() != 2 {
			t.Errorf("expected default requests per sec 2, got %d", cnfg.PriceFeed.GetRequestsPerSec())
		}
	})

	t.Run("Mqtt", func(t *testing.T) {
		if !cnfg.Mqtt.Enabled() {
			t.Error("expected mqtt to be enabled")
		}
		if cnfg.Mqtt.GetTopicPrefix() != "wattwindow" {
			t.Errorf("expected default topic prefix, got %q", cnfg.Mqtt.GetTopicPrefix())
		}
		if len(cnfg.Mqtt.Appliances) != 2 {
			t.Fatalf("expected 2 appliances, got %d", len(cnfg.Mqtt.Appliances))
		}
		if cnfg.Mqtt.Appliances[0].GetHorizonHours() != 24 {
			t.Errorf("expected default horizon 24, got %d", cnfg.Mqtt.Appliances[0].GetHorizonHours())
		}
		if cnfg.Mqtt.Appliances[1].GetHorizonHours() != 12 {
			t.Errorf("expected horizon 12, got %d", cnfg.Mqtt.Appliances[1].GetHorizonHours())
		}
	})

	t.Run("Logging", func(t *testing.T) {
		if cnfg.Logging.GetConsoleLevel().String() != "DEBUG" {
			t.Errorf("expected console level DEBUG, got %s", cnfg.Logging.GetConsoleLevel())
		}
		if cnfg.Logging.GetDbMaxEntries() != 10000 {
			t.Errorf("expected default db max entries 10000, got %d", cnfg.Logging.GetDbMaxEntries())
		}
	})
}
