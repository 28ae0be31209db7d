// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vms"

// Результаты пересчёта метрик поставщика.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics хранит коллекторы сервиса. Нулевое значение и nil безопасны для вызова.
type Metrics struct {
	recomputeTotal    *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	gatherer          prometheus.Gatherer
}

// New регистрирует коллекторы в переданном реестре.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	recomputeTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "performance_recompute_total",
		Help:      "Vendor performance recomputations by trigger and result.",
	}, []string{"trigger", "result"})
	recomputeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "performance_recompute_duration_seconds",
		Help:      "Duration of vendor performance recomputation in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"trigger"})
	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	reg.MustRegister(recomputeTotal, recomputeDuration, requestsTotal, requestDuration)

	return &Metrics{
		recomputeTotal:    recomputeTotal,
		recomputeDuration: recomputeDuration,
		requestsTotal:     requestsTotal,
		requestDuration:   requestDuration,
		gatherer:          reg,
	}
}

// ObserveRecompute учитывает один пересчёт метрик поставщика.
func (m *Metrics) ObserveRecompute(trigger string, d time.Duration, err error) {
	if m == nil || m.recomputeTotal == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.recomputeTotal.WithLabelValues(trigger, result).Inc()
	m.recomputeDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

// Handler возвращает обработчик, отдающий метрики в формате Prometheus.
// Сжатие ответа выполняет GzipMiddleware роутера, поэтому promhttp его не делает.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{DisableCompression: true})
}

// Middleware учитывает HTTP-запросы. Метка route берётся из шаблона маршрута chi,
// чтобы идентификаторы в пути не раздували кардинальность.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.requestsTotal == nil {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
