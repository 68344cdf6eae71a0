package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its registry so several instances can coexist in one process (tests).
// All recording methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	ReferralsIssuedTotal  prometheus.Counter
	RedemptionsTotal      *prometheus.CounterVec
	ReferrerRewardsTotal  prometheus.Counter
	AppointmentsTotal     *prometheus.CounterVec
	PromotionDeliveries   *prometheus.CounterVec
	SettingsCacheRequests *prometheus.CounterVec
}

func NewCollector(serviceName string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ReferralsIssuedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "referral",
			Name:      "codes_issued_total",
			Help:      "Total referral codes issued.",
		}),

		RedemptionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "referral",
			Name:      "redemptions_total",
			Help:      "Redemption attempts by result (ok, rejected, self_referral, error).",
		}, []string{"result"}),

		ReferrerRewardsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "referral",
			Name:      "referrer_rewards_total",
			Help:      "Referrer discounts marked as applied.",
		}),

		AppointmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "appointments_total",
			Help:      "Appointment lifecycle events by resulting status.",
		}, []string{"status"}),

		PromotionDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "promotions",
			Name:      "deliveries_total",
			Help:      "Promotion delivery attempts by channel and status.",
		}, []string{"channel", "status"}),

		SettingsCacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "settings",
			Name:      "cache_requests_total",
			Help:      "Settings cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveRequest records one finished HTTP request. path is the route template.
func (c *Collector) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	code := strconv.Itoa(status)
	c.RequestsTotal.WithLabelValues(method, path, code).Inc()
	c.RequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

func (c *Collector) ReferralIssued() {
	if c == nil {
		return
	}
	c.ReferralsIssuedTotal.Inc()
}

func (c *Collector) Redemption(result string) {
	if c == nil {
		return
	}
	c.RedemptionsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) ReferrerRewarded() {
	if c == nil {
		return
	}
	c.ReferrerRewardsTotal.Inc()
}

func (c *Collector) Appointment(status string) {
	if c == nil {
		return
	}
	c.AppointmentsTotal.WithLabelValues(status).Inc()
}

func (c *Collector) Delivery(channel, status string) {
	if c == nil {
		return
	}
	c.PromotionDeliveries.WithLabelValues(channel, status).Inc()
}

func (c *Collector) SettingsCache(result string) {
	if c == nil {
		return
	}
	c.SettingsCacheRequests.WithLabelValues(result).Inc()
}
