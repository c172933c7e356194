package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT = "error_count"
)

var (
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	stakeTotal *prometheus.CounterVec
)

// Init registers the process's Prometheus metrics: the counters, gauges
// and vectors the dispatch loop and emission tick need - pending-operation
// depth, cumulative minted rewards, per-kind dispatch counts and reaper
// sweep counts.
func Init() {
	counters = make(map[string]prometheus.Counter)
	gauges = make(map[string]prometheus.Gauge)

	registerCounter(METRIC_ERROR_COUNT, "Counts dispatcher errors across every message kind")
	registerCounter("reaper_removed_total", "Counts pending operations removed by the staleness reaper")
	registerCounter("reward_ticks_total", "Counts completed Request-Rewards ticks")

	registerGauge("pending_operations", "Current count of pending stake/unstake operations")
	registerGauge("current_rewards", "Cumulative MINT rewards distributed so far")
	registerGauge("unique_stakers", "Current count of distinct stakers with a positive position")

	stakeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakeengine",
		Subsystem: "dispatch",
		Name:      "messages_total",
		Help:      "Counts dispatched inbound messages by kind and outcome",
	}, []string{"kind", "outcome"})
	prometheus.MustRegister(stakeTotal)
}

func registerCounter(name, help string) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stakeengine",
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(counter)
	counters[name] = counter
}

func registerGauge(name, help string) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stakeengine",
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(gauge)
	gauges[name] = gauge
}

func GetCounter(name string) prometheus.Counter {
	return counters[name]
}

func GetGauge(name string) prometheus.Gauge {
	return gauges[name]
}

func IncErrorCount() {
	counters[METRIC_ERROR_COUNT].Inc()
}

// ObserveDispatch records one dispatched message's kind ("credit-notice",
// "mint-confirm", ...) and outcome ("ok" or "error").
func ObserveDispatch(kind, outcome string) {
	stakeTotal.WithLabelValues(kind, outcome).Inc()
}

func IncReaperRemoved(count int) {
	counters["reaper_removed_total"].Add(float64(count))
}

func IncRewardTicks() {
	counters["reward_ticks_total"].Inc()
}

func SetPendingOperations(n int) {
	gauges["pending_operations"].Set(float64(n))
}

func SetCurrentRewards(v float64) {
	gauges["current_rewards"].Set(v)
}

func SetUniqueStakers(n int) {
	gauges["unique_stakers"].Set(float64(n))
}
