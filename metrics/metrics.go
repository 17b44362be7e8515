package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bracket holds the counters the session service updates. Each instance owns
// its registry, so tests can build as many as they like.
type Bracket struct {
	registry *prometheus.Registry

	SessionsGenerated prometheus.Counter
	Advances          prometheus.Counter
	Decisions         prometheus.Counter
	Byes              prometheus.Counter
	Reverts           prometheus.Counter
	Resets            prometheus.Counter
	SessionsCompleted prometheus.Counter
	ArchiveFailures   prometheus.Counter
	SessionsLive      prometheus.Gauge
}

func NewBracket() *Bracket {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Bracket{
		registry: reg,
		SessionsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_sessions_generated_total",
			Help: "Brackets generated, including regenerations of the same session",
		}),
		Advances: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_advances_total",
			Help: "Advance calls that settled at least one matchup",
		}),
		Decisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_decisions_total",
			Help: "Matchups settled by advances",
		}),
		Byes: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_byes_total",
			Help: "Competitors promoted past an empty slot",
		}),
		Reverts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_reverts_total",
			Help: "Advances undone",
		}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_resets_total",
			Help: "Brackets cleared",
		}),
		SessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_sessions_completed_total",
			Help: "Sessions archived and closed",
		}),
		ArchiveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bracket_archive_failures_total",
			Help: "Archive uploads that failed",
		}),
		SessionsLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bracket_sessions_live",
			Help: "Sessions currently held in memory",
		}),
	}
}

// WithRuntime adds the Go runtime and process collectors to the registry.
func (b *Bracket) WithRuntime() *Bracket {
	b.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return b
}

func (b *Bracket) Registry() *prometheus.Registry {
	return b.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (b *Bracket) Handler() http.Handler {
	return promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{Registry: b.registry})
}
