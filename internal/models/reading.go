package models

// Reading is one aggregated data point. Hour is the ordinal position on the x-axis.
type Reading struct {
	Hour          float64 `json:"hour"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Temperature   float64 `json:"temperature"`
	GasResistance float64 `json:"gasResistance"`
}

// Metric names one of the measured parameters of a Reading.
type Metric string

const (
	MetricHumidity      Metric = "humidity"
	MetricPressure      Metric = "pressure"
	MetricTemperature   Metric = "temperature"
	MetricGasResistance Metric = "gasResistance"
)

// Metrics lists every metric in chart order.
var Metrics = []Metric{MetricHumidity, MetricPressure, MetricTemperature, MetricGasResistance}

var metricTitles = map[Metric]string{
	MetricHumidity:      "Humidity",
	MetricPressure:      "Pressure",
	MetricTemperature:   "Temperature",
	MetricGasResistance: "Gas Resistance",
}

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	_, ok := metricTitles[m]
	return ok
}

// Title is the human-readable chart title.
func (m Metric) Title() string {
	if t, ok := metricTitles[m]; ok {
		return t
	}
	return string(m)
}

// Value picks the metric's value out of a reading.
func (m Metric) Value(r Reading) float64 {
	switch m {
	case MetricHumidity:
		return r.Humidity
	case MetricPressure:
		return r.Pressure
	case MetricTemperature:
		return r.Temperature
	case MetricGasResistance:
		return r.GasResistance
	default:
		return 0
	}
}
