package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/mmo-collision/internal/api"
	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/collision"
	"github.com/annel0/mmo-collision/internal/config"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/mapgen"
	"github.com/annel0/mmo-collision/internal/metrics"
	"github.com/annel0/mmo-collision/internal/observability"
	"github.com/annel0/mmo-collision/internal/sim"
	"github.com/annel0/mmo-collision/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (по умолчанию $COLLISION_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Logging.Dir != "" {
		logging.SetLogDir(cfg.Logging.Dir)
	}
	if err := logging.InitDefaultLogger("collisiond"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	logging.SetDefaultLevel(logging.ParseLevel(cfg.Logging.Level))
	for name, level := range cfg.Logging.Components {
		if err := logging.SetComponentLevel(logging.Component(name), logging.ParseLevel(level)); err != nil {
			log.Fatalf("❌ Ошибка настройки логирования: %v", err)
		}
	}

	code := 0
	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		code = 1
	}
	if err := logging.CloseComponents(); err != nil {
		logging.Warn("Ошибка закрытия логов: %v", err)
	}
	logging.CloseDefaultLogger()
	os.Exit(code)
}

// run поднимает все сервисы и блокируется до сигнала завершения.
// Отложенные закрытия выполняются и при ошибке запуска.
func run(cfg *config.Config) error {
	logging.Info("🧱 Запуск отладочного сервера коллизий...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === ХРАНИЛИЩЕ И КАРТА ===
	store, err := storage.NewMapStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("ошибка открытия хранилища карт: %w", err)
	}
	defer store.Close()

	m, err := loadMap(ctx, store, cfg.Map)
	if err != nil {
		return fmt.Errorf("ошибка загрузки карты: %w", err)
	}

	coll := collision.New(cfg.Physics.CollisionOptions(), logging.GetCollisionLogger())
	if err := coll.Init(m); err != nil {
		return fmt.Errorf("карта %q непригодна: %w", m.Name, err)
	}

	var issuer *auth.TokenIssuer
	if secret := cfg.Server.GetAuthSecret(); secret != "" {
		issuer, err = auth.NewTokenIssuer(secret, auth.DefaultTTL)
		if err != nil {
			return fmt.Errorf("некорректный секрет операторов: %w", err)
		}
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	collectors := metrics.NewCollectors("collision", registry)
	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	metricsServer := metrics.StartHTTP(metricsAddr, registry)

	// === ИГРОВОЙ ЦИКЛ ===
	loop := sim.NewLoop(coll, collectors, logging.GetSimLogger())
	go loop.Run(ctx)

	// === ОТЛАДОЧНЫЙ API ===
	gin.SetMode(gin.ReleaseMode)
	debugAddr := fmt.Sprintf(":%d", cfg.Server.GetDebugPort())
	debugServer := api.NewDebugServer(api.Config{
		Addr:     debugAddr,
		Loop:     loop,
		Maps:     store,
		Issuer:   issuer,
		Queries:  collectors,
		Registry: registry,
		Logger:   logging.GetAPILogger(),
	})
	go func() {
		if err := debugServer.Start(); err != nil {
			logging.Error("❌ Ошибка отладочного API: %v", err)
			stop()
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🗺️  Карта: %s (%dx%d), %d TPS", m.Name, m.Width, m.Height, coll.Options().TickSpeed)
	logging.Info("   🔎 Отладочный API: http://localhost%s", debugAddr)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", metricsAddr)
	logging.Info("   ❤️  Health check: http://localhost%s/health", debugAddr)

	<-ctx.Done()
	logging.Info("📡 Получен сигнал завершения, остановка...")

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := debugServer.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки отладочного API: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
	}

	logging.Info("👋 Сервер остановлен на тике %d", loop.CurrentTick())
	return nil
}

// loadMap берет карту из хранилища, а при ее отсутствии генерирует
// и сохраняет, чтобы следующий запуск получил ту же карту
func loadMap(ctx context.Context, store *storage.MapStore, cfg config.MapConfig) (*mapdata.Map, error) {
	_, span := observability.Tracer().Start(ctx, "load-map")
	defer span.End()
	span.SetAttributes(attribute.String("map.name", cfg.Name))

	m, err := store.Load(cfg.Name)
	if err == nil {
		span.SetAttributes(attribute.Bool("map.generated", false))
		return m, nil
	}
	if !errors.Is(err, storage.ErrMapNotFound) {
		span.RecordError(err)
		return nil, err
	}

	logging.GetStorageLogger().Info("🌱 Карта %q не найдена, генерация (seed=%d, %dx%d)", cfg.Name, cfg.Seed, cfg.Width, cfg.Height)
	m = mapgen.NewGenerator(cfg.Seed).Generate(cfg.Name, cfg.Width, cfg.Height)
	if _, err := store.Save(m); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("map.generated", true))
	return m, nil
}
