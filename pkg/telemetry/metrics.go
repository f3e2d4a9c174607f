package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/odvcencio/userint/pkg/userint"
)

const namespace = "userint"

// Metrics exports protocol counters to Prometheus. It implements userint.Observer.
type Metrics struct {
	Events        *prometheus.CounterVec
	Ticks         *prometheus.CounterVec
	AbortedTicks  prometheus.Counter
	ChoiceChanges prometheus.Counter
	Abandons      prometheus.Counter
	ChoiceHeld    prometheus.Gauge
	Visited       *prometheus.HistogramVec
	TickDuration  *prometheus.HistogramVec
	FramedWidgets prometheus.Gauge
	LiveWidgets   prometheus.Gauge

	mu         sync.Mutex
	lastChoice *userint.Widget
}

var _ userint.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors with reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "widget",
				Name:      "events_total",
				Help:      "Total number of lifecycle events issued to widgets",
			},
			[]string{"event", "kind"},
		),
		Ticks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "ticks_total",
				Help:      "Total number of propagate and update passes",
			},
			[]string{"kind"},
		),
		AbortedTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "aborted_ticks_total",
				Help:      "Total number of propagations whose signal tests were aborted",
			},
		),
		ChoiceChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "choice_changes_total",
				Help:      "Total number of times the choice moved to a different widget",
			},
		),
		Abandons: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "abandons_total",
				Help:      "Total number of choices abandoned",
			},
		),
		ChoiceHeld: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "choice_held",
				Help:      "1 while a widget is chosen, 0 otherwise",
			},
		),
		Visited: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "callbacks_per_tick",
				Help:      "Signal test or update callbacks invoked per pass",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
			[]string{"kind"},
		),
		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "tick_duration_seconds",
				Help:      "Wall time spent inside a propagate or update pass",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us to ~160ms
			},
			[]string{"kind"},
		),
		FramedWidgets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "framed_widgets",
				Help:      "Number of widgets in the frame",
			},
		),
		LiveWidgets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "live_widgets",
				Help:      "Number of widgets owned by the state",
			},
		),
	}
}

// ObserveEvent counts one widget event.
func (m *Metrics) ObserveEvent(w *userint.Widget, ev userint.Event) {
	m.Events.WithLabelValues(ev.String(), w.Kind().String()).Inc()
	if ev == userint.EventAbandon {
		m.Abandons.Inc()
	}
}

// ObserveTick records a pass and tracks choice transitions.
func (m *Metrics) ObserveTick(t userint.Tick) {
	kind := t.Kind.String()
	m.Ticks.WithLabelValues(kind).Inc()
	m.Visited.WithLabelValues(kind).Observe(float64(t.Visited))
	m.TickDuration.WithLabelValues(kind).Observe(t.Elapsed.Seconds())
	if t.Aborted {
		m.AbortedTicks.Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Choice != nil && t.Choice != m.lastChoice {
		m.ChoiceChanges.Inc()
	}
	m.lastChoice = t.Choice
	if t.Choice != nil {
		m.ChoiceHeld.Set(1)
	} else {
		m.ChoiceHeld.Set(0)
	}
}

// ObserveState samples the size gauges from s.
func (m *Metrics) ObserveState(s *userint.State) {
	m.FramedWidgets.Set(float64(s.FrameSize()))
	m.LiveWidgets.Set(float64(s.WidgetCount()))
}
