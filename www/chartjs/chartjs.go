package chartjs

import (
	"fmt"
	"math"
)

// NoOfSlots is one day of 15-minute slots.
const NoOfSlots = 96
const ColorYellow = "#ffc107d4"
const ColorGreen = "#4caf50d4"

func NewChart(title string) Chart {
	labels := make([]string, NoOfSlots)
	for i := 0; i < NoOfSlots; i++ {
		labels[i] = fmt.Sprintf("%02d:%02d", i/4, (i%4)*15)
	}

	chart := Chart{
		Type: "line",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{
				{
					Data:        make([]*float64, NoOfSlots),
					BorderWidth: 1,
					Tension:     0.4,
					Fill:        false,
					BorderColor: ColorYellow,
					YAxisID:     "YAxis1",
				},
				{
					// The slots of the selected window, drawn over the
					// price curve so the highlight stays slot-aligned.
					Data:            make([]*float64, NoOfSlots),
					BorderWidth:     1,
					Tension:         0.4,
					Fill:            true,
					BorderColor:     ColorGreen,
					BackgroundColor: ColorGreen,
					YAxisID:         "YAxis1",
				},
			},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: ChartLegend{Display: false},
				Title:  ChartTitle{Display: false},
			},
			Scales: map[string]ChartScale{
				"YAxis1": {
					Type:     "linear",
					Display:  true,
					Position: "left",
					Title:    ChartScaleTitle{Display: true, Text: "", Color: ColorYellow}},
			},
		},
	}

	if title != "" {
		chart.Options.Plugins.Title = ChartTitle{Display: true, Text: title}
	}

	return chart
}

func (cs ChartScale) WithTitle(title string) ChartScale {
	cs.Title.Text = title
	return cs
}

func (cs ChartScale) WithMinAndMax(min, max float64) ChartScale {
	cs.Min = &min
	cs.Max = &max
	return cs
}

func FixedFloat64(num float64, precision int) *float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(num * p)
	result := rounded / p
	return &result
}
