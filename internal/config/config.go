package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/mmo-collision/internal/collision"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Map       MapConfig       `yaml:"map"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type PhysicsConfig struct {
	TickSpeed               int     `yaml:"tick_speed"`
	OldTeleportHook         bool    `yaml:"old_teleport_hook"`
	OldTeleportWeapons      bool    `yaml:"old_teleport_weapons"`
	MoveRestrictionDistance float32 `yaml:"move_restriction_distance"`
}

type ServerConfig struct {
	DebugPort   int    `yaml:"debug_port"`
	MetricsPort int    `yaml:"metrics_port"`
	AuthSecret  string `yaml:"auth_secret"` // base64, не короче 32 байт
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// MapConfig задает карту для загрузки. Если карты Name нет в хранилище,
// она генерируется из Seed.
type MapConfig struct {
	Name   string `yaml:"name"`
	Seed   int64  `yaml:"seed"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	// Components: уровни консоли по подсистемам, например {api: warn}
	Components map[string]string `yaml:"components"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Physics: PhysicsConfig{
			TickSpeed:               50,
			MoveRestrictionDistance: collision.DefaultRestrictionDistance,
		},
		Storage: StorageConfig{Path: "data"},
		Map: MapConfig{
			Name:   "demo",
			Seed:   1,
			Width:  64,
			Height: 48,
		},
		Logging:   LoggingConfig{Level: "INFO"},
		Telemetry: TelemetryConfig{ServiceName: "collisiond"},
	}
}

// CollisionOptions возвращает настройки движка коллизий
func (p *PhysicsConfig) CollisionOptions() collision.Options {
	opts := collision.DefaultOptions()
	if p.TickSpeed > 0 {
		opts.TickSpeed = p.TickSpeed
	}
	opts.OldTeleportHook = p.OldTeleportHook
	opts.OldTeleportWeapons = p.OldTeleportWeapons
	opts.RestrictionDistance = p.MoveRestrictionDistance
	return opts
}

// GetDebugPort возвращает порт отладочного API с поддержкой fallback значений
func (s *ServerConfig) GetDebugPort() int {
	return getPortWithEnvFallback(s.DebugPort, "COLLISION_DEBUG_PORT", 8089)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "COLLISION_METRICS_PORT", 2112)
}

// GetAuthSecret возвращает секрет токенов операторов: config -> env COLLISION_AUTH_SECRET
func (s *ServerConfig) GetAuthSecret() string {
	if s.AuthSecret != "" {
		return s.AuthSecret
	}
	return os.Getenv("COLLISION_AUTH_SECRET")
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Validate проверяет значения, которые движок не может исправить сам
func (c *Config) Validate() error {
	if c.Physics.TickSpeed < 0 {
		return fmt.Errorf("physics.tick_speed: отрицательное значение %d", c.Physics.TickSpeed)
	}
	if d := c.Physics.MoveRestrictionDistance; d < 0 || d > collision.CellSize {
		return fmt.Errorf("physics.move_restriction_distance: %v вне диапазона [0, %d]", d, collision.CellSize)
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map: некорректный размер %dx%d", c.Map.Width, c.Map.Height)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV COLLISION_CONFIG,
// а без него возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("COLLISION_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан: использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфига %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
