// Package metrics exposes Prometheus counters and gauges for the reactor and
// store, plus a system memory gauge sourced the same way the teacher's INFO
// command does, via gopsutil.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/mem"
)

// Registry bundles every metric the reactor drives and implements
// reactor.Metrics without this package importing the reactor package.
type Registry struct {
	connectionsOpened prometheus.Counter
	connectionsActive prometheus.Gauge
	commandsTotal     *prometheus.CounterVec
	commandErrors     *prometheus.CounterVec
	keysExpiredTotal  prometheus.Counter
	systemMemoryBytes prometheus.GaugeFunc
}

// New builds a Registry and registers its collectors on reg.
func New(reg *prometheus.Registry) *Registry {
	r := &Registry{
		connectionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nullkv_connections_opened_total",
			Help: "Total TCP connections accepted.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nullkv_connections_active",
			Help: "Currently open client connections.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nullkv_commands_dispatched_total",
			Help: "Commands dispatched, by command name.",
		}, []string{"command"}),
		commandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nullkv_command_errors_total",
			Help: "Commands that produced an Error reply, by command name.",
		}, []string{"command"}),
		keysExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nullkv_keys_expired_total",
			Help: "Keys removed by the periodic expiry sweep; keys removed lazily on read are not counted.",
		}),
	}

	r.systemMemoryBytes = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "nullkv_system_memory_total_bytes",
		Help: "Total system memory as reported by the host, refreshed on scrape.",
	}, func() float64 {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return 0
		}
		return float64(vm.Total)
	})

	reg.MustRegister(
		r.connectionsOpened,
		r.connectionsActive,
		r.commandsTotal,
		r.commandErrors,
		r.keysExpiredTotal,
		r.systemMemoryBytes,
	)
	return r
}

// ConnectionOpened records a newly accepted connection.
func (r *Registry) ConnectionOpened() {
	r.connectionsOpened.Inc()
	r.connectionsActive.Inc()
}

// ConnectionClosed records a connection going away.
func (r *Registry) ConnectionClosed() {
	r.connectionsActive.Dec()
}

// CommandDispatched records one dispatched command, and whether its reply
// was an Error frame.
func (r *Registry) CommandDispatched(name string, isError bool) {
	if name == "" {
		name = "unknown"
	}
	r.commandsTotal.WithLabelValues(name).Inc()
	if isError {
		r.commandErrors.WithLabelValues(name).Inc()
	}
}

// KeysExpired records n keys removed by expiry.
func (r *Registry) KeysExpired(n int) {
	r.keysExpiredTotal.Add(float64(n))
}

// Serve starts an HTTP server exposing /metrics on addr. It blocks until the
// server stops or errors, matching http.ListenAndServe's contract.
func Serve(addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
