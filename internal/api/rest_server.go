// Package api: отладочный HTTP сервер коллизий: запросы к карте,
// снимки движущихся регионов и правка карты операторами.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/metrics"
	"github.com/annel0/mmo-collision/internal/middleware"
	"github.com/annel0/mmo-collision/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// MapLoader загружает карту по имени для перезагрузки
type MapLoader interface {
	Load(name string) (*mapdata.Map, error)
}

// DebugServer представляет отладочный REST API сервер
type DebugServer struct {
	router  *gin.Engine
	server  *http.Server
	loop    *sim.Loop
	maps    MapLoader
	queries *metrics.Collectors
	metrics *ServerMetrics
	logger  *logging.Logger
}

// Config содержит конфигурацию для отладочного сервера
type Config struct {
	Addr     string              // адрес для запуска сервера
	Loop     *sim.Loop           // игровой цикл с загруженной картой
	Maps     MapLoader           // источник карт для /api/admin/reload, может быть nil
	Issuer   *auth.TokenIssuer   // проверка токенов операторов; nil отключает правку
	Queries  *metrics.Collectors // счетчики запросов, может быть nil
	Registry *prometheus.Registry
	Logger   *logging.Logger
}

// NewDebugServer создает новый отладочный сервер
func NewDebugServer(config Config) *DebugServer {
	if config.Addr == "" {
		config.Addr = ":8089"
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())
	router.Use(otelgin.Middleware("collision_debug"))

	promMw := middleware.NewPrometheusMiddleware("collision_debug", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	ds := &DebugServer{
		router:  router,
		loop:    config.Loop,
		maps:    config.Maps,
		queries: config.Queries,
		metrics: NewServerMetrics(),
		logger:  config.Logger,
	}
	ds.server = &http.Server{
		Addr:              config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ds.setupRoutes(config.Issuer)
	return ds
}

// setupRoutes настраивает маршруты API
func (ds *DebugServer) setupRoutes(issuer *auth.TokenIssuer) {
	ds.router.GET("/health", ds.handleHealth)

	api := ds.router.Group("/api")
	{
		api.GET("/status", ds.handleStatus)
		api.GET("/snapshot", ds.handleSnapshot)
		api.GET("/antibot", ds.handleAntibot)
		api.POST("/point", ds.handlePoint)
		api.POST("/intersect", ds.handleIntersect)
		api.POST("/move", ds.handleMove)
	}

	if issuer == nil {
		ds.logger.Warn("секрет операторов не задан: правка карты через API отключена")
		return
	}

	// Изменение карты (требует токен с правом правки)
	admin := api.Group("/admin")
	admin.Use(middleware.OperatorAuth(issuer), middleware.RequireEdit())
	{
		admin.POST("/tile", ds.handleSetTile)
		admin.POST("/door", ds.handleSetDoor)
		admin.POST("/reload", ds.handleReload)
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (ds *DebugServer) Handler() http.Handler {
	return ds.router
}

// Start запускает сервер и блокируется до Stop
func (ds *DebugServer) Start() error {
	ds.logger.Info("🔎 Отладочный API слушает %s", ds.server.Addr)
	if err := ds.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop завершает сервер, дожидаясь текущих запросов
func (ds *DebugServer) Stop(ctx context.Context) error {
	return ds.server.Shutdown(ctx)
}

func (ds *DebugServer) count(op string) {
	if ds.queries != nil {
		ds.queries.CountQuery(op)
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, GenericResponse{
		Success: false,
		Message: message,
	})
}

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// handleHealth проверка состояния сервера
func (ds *DebugServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}
