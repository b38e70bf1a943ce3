// internal/utils/metrics/collector.go
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricType names a metric kept by the collector.
type MetricType string

const (
	MessageCounterType   MetricType = "message_counter"
	MessageDurationType  MetricType = "message_duration"
	TradeCounterType     MetricType = "trade_counter"
	OpenOrdersType       MetricType = "open_orders"
	GraduatedPairsType   MetricType = "graduated_pairs"
	WebsocketClientsType MetricType = "websocket_clients"
)

const namespace = "woofpad"

// Collector owns the venue metrics. It satisfies launchpad.Recorder.
type Collector struct {
	metrics sync.Map

	messages   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	trades     *prometheus.CounterVec
	openOrders prometheus.Gauge
	graduated  prometheus.Gauge
	wsClients  prometheus.Gauge
}

// NewCollector creates the metrics and registers them on reg. A nil reg
// falls back to the default registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Execute messages by action and result",
			},
			[]string{"action", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_duration_seconds",
				Help:      "Execute latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{"action"},
		),
		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Executed trades by source",
			},
			[]string{"source"},
		),
		openOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_orders",
			Help:      "Orders resting in the books",
		}),
		graduated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graduated_pairs",
			Help:      "Pairs that left the bonding curve",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected event feed clients",
		}),
	}

	metricsMap := map[MetricType]prometheus.Collector{
		MessageCounterType:   c.messages,
		MessageDurationType:  c.duration,
		TradeCounterType:     c.trades,
		OpenOrdersType:       c.openOrders,
		GraduatedPairsType:   c.graduated,
		WebsocketClientsType: c.wsClients,
	}
	for metricType, metric := range metricsMap {
		if err := reg.Register(metric); err != nil {
			return nil, err
		}
		c.metrics.Store(metricType, metric)
	}
	return c, nil
}

// ObserveMessage counts an execute message and its latency. result is "ok"
// or the error kind.
func (c *Collector) ObserveMessage(action, result string, took time.Duration) {
	c.messages.WithLabelValues(action, result).Inc()
	c.duration.WithLabelValues(action).Observe(took.Seconds())
}

// AddTrades counts executed trades.
func (c *Collector) AddTrades(source string, n int) {
	c.trades.WithLabelValues(source).Add(float64(n))
}

func (c *Collector) SetOpenOrders(n uint64) {
	c.openOrders.Set(float64(n))
}

func (c *Collector) SetGraduatedPairs(n uint64) {
	c.graduated.Set(float64(n))
}

// UpdateWebsocketClients tracks the event feed connections.
func (c *Collector) UpdateWebsocketClients(active int) {
	c.wsClients.Set(float64(active))
}

// Reset clears all metrics (useful in tests).
func (c *Collector) Reset() {
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		case prometheus.Gauge:
			m.Set(0)
		}
		return true
	})
}
