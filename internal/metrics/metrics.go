// Package metrics содержит Prometheus-метрики игрового цикла коллизий.
//
// Метрики:
// * collision_tick_duration_seconds: histogram
// * collision_ticks_total: counter
// * collision_last_tick: gauge
// * collision_moving_regions: gauge
// * collision_queries_total{op}: counter
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors объединяет метрики одного экземпляра коллизий
type Collectors struct {
	tickDuration prometheus.Histogram
	ticks        prometheus.Counter
	lastTick     prometheus.Gauge
	regions      prometheus.Gauge
	queries      *prometheus.CounterVec
}

// NewCollectors создаёт метрики и регистрирует их в reg.
// При reg == nil используется глобальный регистр Prometheus.
func NewCollectors(namespace string, reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collectors{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Длительность пересчёта движущихся регионов за тик.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.02},
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Общее число выполненных тиков.",
		}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_tick",
			Help:      "Номер последнего выполненного тика.",
		}),
		regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "moving_regions",
			Help:      "Количество движущихся регионов загруженной карты.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Запросы к коллизиям по типу операции.",
		}, []string{"op"}),
	}

	reg.MustRegister(c.tickDuration, c.ticks, c.lastTick, c.regions, c.queries)
	return c
}

// ObserveTick фиксирует выполненный тик
func (c *Collectors) ObserveTick(tick int, regions int, took time.Duration) {
	c.tickDuration.Observe(took.Seconds())
	c.ticks.Inc()
	c.lastTick.Set(float64(tick))
	c.regions.Set(float64(regions))
}

// CountQuery увеличивает счётчик запросов операции op
func (c *Collectors) CountQuery(op string) {
	c.queries.WithLabelValues(op).Inc()
}

// Server отдаёт /metrics на отдельном порту
type Server struct {
	srv *http.Server
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
// При g == nil отдаются метрики глобального регистра.
func StartHTTP(addr string, g prometheus.Gatherer) *Server {
	handler := promhttp.Handler()
	if g != nil {
		handler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return s
}

// Shutdown останавливает HTTP-сервер метрик
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
