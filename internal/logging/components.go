package logging

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
)

// Component: подсистема collisiond со своим логгером и файлом логов
type Component string

const (
	Collision Component = "collision" // загрузка карты, битые квады и слои
	Sim       Component = "sim"       // игровой цикл и перезагрузки карты
	Storage   Component = "storage"   // хранилище и генерация карт
	API       Component = "api"       // отладочный HTTP сервер
)

// Components возвращает подсистемы в порядке запуска сервиса
func Components() []Component {
	return []Component{Storage, Collision, Sim, API}
}

func known(c Component) bool {
	for _, k := range Components() {
		if k == c {
			return true
		}
	}
	return false
}

var components = struct {
	mu      sync.Mutex
	loggers map[Component]*Logger
	levels  map[Component]LogLevel // уровни консоли из конфигурации
}{
	loggers: make(map[Component]*Logger),
	levels:  make(map[Component]LogLevel),
}

// For возвращает логгер подсистемы, создавая его при первом обращении.
// Если файл логов не открылся, логгер пишет только в консоль.
func For(c Component) *Logger {
	components.mu.Lock()
	defer components.mu.Unlock()

	if l, exists := components.loggers[c]; exists {
		return l
	}

	l, err := NewLogger(string(c))
	if err != nil {
		current().Warn("логгер %s пишет только в консоль: %v", c, err)
		l = &Logger{
			component:       string(c),
			consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
			minConsoleLevel: INFO,
			minFileLevel:    ERROR + 1,
		}
	}
	if level, set := components.levels[c]; set {
		l.minConsoleLevel = level
	}
	components.loggers[c] = l
	return l
}

// SetComponentLevel задает уровень консоли подсистемы, в том числе для уже
// созданного логгера. Файл по-прежнему получает все сообщения.
func SetComponentLevel(c Component, level LogLevel) error {
	if !known(c) {
		return fmt.Errorf("неизвестная подсистема логов %q", c)
	}

	components.mu.Lock()
	defer components.mu.Unlock()

	components.levels[c] = level
	if l, exists := components.loggers[c]; exists {
		l.mu.Lock()
		l.minConsoleLevel = level
		l.mu.Unlock()
	}
	return nil
}

// CloseComponents закрывает файлы логов всех подсистем
func CloseComponents() error {
	components.mu.Lock()
	defer components.mu.Unlock()

	var errs []error
	for c, l := range components.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", c, err))
		}
	}
	components.loggers = make(map[Component]*Logger)
	return errors.Join(errs...)
}

func GetCollisionLogger() *Logger { return For(Collision) }

func GetSimLogger() *Logger { return For(Sim) }

func GetStorageLogger() *Logger { return For(Storage) }

func GetAPILogger() *Logger { return For(API) }
