package monitoring

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"agora-backend/internal/common/logger"
)

// Sink принимает события и метрики запросов. Реализации должны быть
// безопасны для конкурентного использования.
type Sink interface {
	LogEvent(name string, attrs map[string]interface{})
	IncrementAPIRequests(endpoint, method string, status int)
	IncrementAPIErrors(endpoint string, status int)
	TrackRequestDuration(d time.Duration)
}

// ActiveUserWindow - сколько пользователь считается активным после события с его user_id
const ActiveUserWindow = 15 * time.Minute

// Summary - краткая сводка для /api/v1/metrics
type Summary struct {
	RequestsTotal      int64 `json:"requests_total" example:"120"`
	ErrorsTotal        int64 `json:"errors_total" example:"3"`
	ActiveUsers        int64 `json:"active_users" example:"7"`
	ActiveNegotiations int64 `json:"active_negotiations" example:"0"`
	SuccessfulMatches  int64 `json:"successful_matches" example:"0"`
}

// PrometheusSink пишет события в лог, а счетчики в собственный реестр Prometheus
type PrometheusSink struct {
	registry  *prometheus.Registry
	log       zerolog.Logger
	namespace string

	apiRequests     *prometheus.CounterVec
	apiErrors       *prometheus.CounterVec
	requestDuration prometheus.Histogram
	events          *prometheus.CounterVec

	mu     sync.Mutex
	active map[int64]time.Time
	now    func() time.Time
}

func NewPrometheusSink(namespace string) *PrometheusSink {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	s := &PrometheusSink{
		registry:  reg,
		log:       logger.Component("monitoring"),
		namespace: namespace,
		active:    make(map[int64]time.Time),
		now:       time.Now,

		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API requests",
		}, []string{"endpoint", "method", "status"}),

		apiErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "API errors",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration",
			Buckets:   prometheus.DefBuckets,
		}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Domain events",
		}, []string{"event"}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_users",
		Help:      "Distinct users with events in the last 15 minutes",
	}, func() float64 { return float64(s.activeUsers()) })

	return s
}

func (s *PrometheusSink) LogEvent(name string, attrs map[string]interface{}) {
	s.events.WithLabelValues(name).Inc()
	if id, ok := userID(attrs); ok {
		s.markActive(id)
	}

	evt := s.log.Info().Str("event", name)
	if len(attrs) > 0 {
		evt = evt.Fields(attrs)
	}
	evt.Msg("Event")
}

func (s *PrometheusSink) IncrementAPIRequests(endpoint, method string, status int) {
	s.apiRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
}

func (s *PrometheusSink) IncrementAPIErrors(endpoint string, status int) {
	s.apiErrors.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (s *PrometheusSink) TrackRequestDuration(d time.Duration) {
	s.requestDuration.Observe(d.Seconds())
}

func userID(attrs map[string]interface{}) (int64, bool) {
	switch v := attrs["user_id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func (s *PrometheusSink) markActive(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[id] = s.now()
}

// activeUsers считает пользователей внутри окна и вычищает устаревших
func (s *PrometheusSink) activeUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ActiveUserWindow)
	for id, seen := range s.active {
		if seen.Before(cutoff) {
			delete(s.active, id)
		}
	}
	return len(s.active)
}

// Summary собирает сводку из реестра. Переговоры и сделки этот сервис не ведет, там нули.
func (s *PrometheusSink) Summary() (Summary, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return Summary{}, fmt.Errorf("gather metrics: %w", err)
	}

	var summary Summary
	for _, mf := range families {
		switch mf.GetName() {
		case prometheus.BuildFQName(s.namespace, "", "api_requests_total"):
			summary.RequestsTotal = sumCounters(mf)
		case prometheus.BuildFQName(s.namespace, "", "api_errors_total"):
			summary.ErrorsTotal = sumCounters(mf)
		case prometheus.BuildFQName(s.namespace, "", "active_users"):
			for _, m := range mf.GetMetric() {
				summary.ActiveUsers = int64(m.GetGauge().GetValue())
			}
		}
	}
	return summary, nil
}

func sumCounters(mf *dto.MetricFamily) int64 {
	var total float64
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return int64(total)
}

// Registry возвращает реестр метрик сервиса
func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.registry
}

// Handler отдает метрики в формате Prometheus
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Nop ничего не делает
type Nop struct{}

func (Nop) LogEvent(string, map[string]interface{})  {}
func (Nop) IncrementAPIRequests(string, string, int) {}
func (Nop) IncrementAPIErrors(string, int)           {}
func (Nop) TrackRequestDuration(time.Duration)       {}

// Safe оборачивает Sink так, что паника в нем не доходит до вызывающего
func Safe(sink Sink) Sink {
	if sink == nil {
		return Nop{}
	}
	if s, ok := sink.(*safeSink); ok {
		return s
	}
	return &safeSink{next: sink, log: logger.Component("monitoring")}
}

type safeSink struct {
	next Sink
	log  zerolog.Logger
}

func (s *safeSink) recover(op string) {
	if r := recover(); r != nil {
		s.log.Error().Interface("panic", r).Str("op", op).Msg("Monitoring sink panicked")
	}
}

func (s *safeSink) LogEvent(name string, attrs map[string]interface{}) {
	defer s.recover("log_event")
	s.next.LogEvent(name, attrs)
}

func (s *safeSink) IncrementAPIRequests(endpoint, method string, status int) {
	defer s.recover("increment_api_requests")
	s.next.IncrementAPIRequests(endpoint, method, status)
}

func (s *safeSink) IncrementAPIErrors(endpoint string, status int) {
	defer s.recover("increment_api_errors")
	s.next.IncrementAPIErrors(endpoint, status)
}

func (s *safeSink) TrackRequestDuration(d time.Duration) {
	defer s.recover("track_request_duration")
	s.next.TrackRequestDuration(d)
}
