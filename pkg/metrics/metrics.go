// Package metrics exports responder activity as prometheus metrics.
package metrics

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"github.com/prometheus/client_golang/prometheus"
	"strconv"
)

const namespace = "ergolayer"

// Observer counts presses and tracks layer and indicator state.
type Observer struct {
	presses   *prometheus.CounterVec
	texts     *prometheus.CounterVec
	layer     prometheus.Gauge
	breathing prometheus.Gauge
}

var _ ergolayer.Observer = (*Observer)(nil)

// NewObserver creates the metrics and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		presses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presses_total",
			Help:      "Resolved key presses by layer and action kind.",
		}, []string{"layer", "kind"}),
		texts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "texts_total",
			Help:      "Text snippets typed by custom keys.",
		}, []string{"code"}),
		layer: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_layer",
			Help:      "Topmost active layer.",
		}),
		breathing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indicator_breathing",
			Help:      "1 while the indicator breathes because the keyboard is idle.",
		}),
	}

	for _, c := range []prometheus.Collector{o.presses, o.texts, o.layer, o.breathing} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

func (o *Observer) Pressed(layer int, _ keymap.Position, action keymap.Action) {
	o.presses.WithLabelValues(strconv.Itoa(layer), action.Kind.String()).Inc()

	if action.Kind == keymap.KindCustom {
		if _, ok := action.Custom.Text(); ok {
			o.texts.WithLabelValues(action.Custom.String()).Inc()
		}
	}
}

func (o *Observer) LayerChanged(top int) {
	o.layer.Set(float64(top))
}

func (o *Observer) ModeChanged(mode ergolayer.Mode) {
	if mode == ergolayer.ModeBreathing {
		o.breathing.Set(1)
		return
	}
	o.breathing.Set(0)
}
