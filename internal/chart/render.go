package chart

import "airsense_console/internal/models"

// Surface is a drawing target for chart configs.
type Surface interface {
	Draw(cfg Config)
}

// Config is a Chart.js chart definition.
type Config struct {
	Type    string         `json:"type"`
	Data    Data           `json:"data"`
	Options map[string]any `json:"options"`
}

type Data struct {
	Labels   []float64 `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
}

// Style tunes how a view presents its charts.
type Style struct {
	Color       string
	TitleSuffix string
	Zoom        bool
}

var (
	// DetailStyle is used by the device detail view.
	DetailStyle = Style{Color: "#B39DDB", Zoom: true}
	// OverviewStyle is used by the aggregate overview.
	OverviewStyle = Style{Color: "#E0F7FA", TitleSuffix: " (Avg)"}
)

// Renderer draws line charts in a fixed style.
type Renderer struct {
	Style Style
}

// Render draws one chart of value over readings. It does nothing when the
// surface or the readings are absent.
func (r Renderer) Render(s Surface, title string, readings []models.Reading, value Accessor) {
	if s == nil || readings == nil || value == nil {
		return
	}
	labels, values := Project(readings, value)
	s.Draw(Config{
		Type: "line",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:       title + r.Style.TitleSuffix,
				Data:        values,
				BorderColor: r.Style.Color,
				Fill:        true,
			}},
		},
		Options: r.options(),
	})
}

// RenderMetrics draws one chart per metric, models.Metrics when none given.
func (r Renderer) RenderMetrics(s Surface, readings []models.Reading, metrics ...models.Metric) {
	if len(metrics) == 0 {
		metrics = models.Metrics
	}
	for _, m := range metrics {
		r.Render(s, m.Title(), readings, m.Value)
	}
}

func (r Renderer) options() map[string]any {
	plugins := map[string]any{
		"legend": map[string]any{"position": "bottom", "align": "end"},
	}
	if r.Style.Zoom {
		plugins["zoom"] = map[string]any{
			"zoom": map[string]any{
				"wheel": map[string]any{"enabled": true, "modifierKey": "ctrl"},
				"pinch": map[string]any{"enabled": true},
				"mode":  "xy",
			},
		}
	}
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"scales": map[string]any{
			"x": map[string]any{
				"grid":  map[string]any{"display": false},
				"ticks": map[string]any{"display": false},
			},
			"y": map[string]any{
				"grid": map[string]any{"display": false},
			},
		},
		"plugins": plugins,
	}
}

// Board collects drawn charts in order. The zero value is ready to use.
type Board struct {
	Charts []Config `json:"charts"`
}

func (b *Board) Draw(cfg Config) {
	if b == nil {
		return
	}
	b.Charts = append(b.Charts, cfg)
}
