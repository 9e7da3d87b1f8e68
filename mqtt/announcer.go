package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/angas/wattwindow-go/config"
	"github.com/angas/wattwindow-go/convert"
	"github.com/angas/wattwindow-go/optimize"
	"github.com/angas/wattwindow-go/slots"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Announcer publishes recommended start windows per appliance so home
// automation can switch loads into the cheap slots. Messages are retained,
// subscribers always see the latest recommendation.
type Announcer struct {
	mqttClient mqtt.Client
	logger     *slog.Logger
	prefix     string
}

type windowMessage struct {
	Appliance         string  `json:"appliance"`
	Start             string  `json:"start"`
	End               string  `json:"end"`
	AvgPriceEurPerKwh float64 `json:"avg_price_eur_per_kwh"`
	EstimatedCostEur  float64 `json:"estimated_cost_eur"`
	SavingsVsNowEur   float64 `json:"savings_vs_now_eur"`
}

func NewAnnouncer(cnfg config.AppConfigMqtt) *Announcer {
	logger := slog.Default().With("module", "mqtt")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID("wattwindow")
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("announcer MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("announcer MQTT connection lost", slog.Any("error", err))
	}

	mqtt.CRITICAL = newMqttLogger(logger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(logger, slog.LevelError)
	mqtt.WARN = newMqttLogger(logger, slog.LevelWarn)

	return &Announcer{
		mqttClient: mqtt.NewClient(opts),
		logger:     logger,
		prefix:     cnfg.GetTopicPrefix(),
	}
}

func (a *Announcer) Connect() error {
	a.logger.Debug("connecting announcer MQTT client")
	if token := a.mqttClient.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (a *Announcer) Disconnect() {
	if a.mqttClient.IsConnected() {
		a.mqttClient.Disconnect(250)
	}
}

// AnnounceWindow publishes the recommendation for one appliance to
// <prefix>/<appliance>/next_window.
func (a *Announcer) AnnounceWindow(appliance string, w optimize.Window) error {
	msg := windowMessage{
		Appliance:         appliance,
		Start:             slots.IsoString(w.Start),
		End:               slots.IsoString(w.End),
		AvgPriceEurPerKwh: w.AvgPrice,
		EstimatedCostEur:  convert.RoundFloat64(w.EstimatedCost, 5),
		SavingsVsNowEur:   convert.RoundFloat64(w.SavingsVsNow, 5),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal window message: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/next_window", a.prefix, appliance)
	token := a.mqttClient.Publish(topic, 0, true, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}

	a.logger.Debug("announced window",
		slog.String("topic", topic),
		slog.String("start", msg.Start),
		slog.Float64("cost", msg.EstimatedCostEur))

	return nil
}
