// Package sim содержит игровой цикл фиксированной частоты, который
// продвигает движущиеся регионы коллизий и сериализует изменения карты.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/mmo-collision/internal/collision"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/metrics"
	"github.com/annel0/mmo-collision/internal/movingtile"
)

// Loop владеет экземпляром коллизий. Тики и изменения карты выполняются
// под блокировкой записи, запросы через View читают параллельно.
type Loop struct {
	coll    *collision.Collision
	metrics *metrics.Collectors
	logger  *logging.Logger

	mu   sync.RWMutex
	tick int
}

// NewLoop создаёт цикл для уже инициализированного экземпляра.
// m может быть nil, тогда метрики не пишутся.
func NewLoop(coll *collision.Collision, m *metrics.Collectors, logger *logging.Logger) *Loop {
	if logger == nil {
		logger = logging.GetSimLogger()
	}
	return &Loop{coll: coll, metrics: m, logger: logger}
}

// Run запускает тики с частотой Options.TickSpeed до отмены ctx
func (l *Loop) Run(ctx context.Context) {
	tps := l.coll.Options().TickSpeed
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	l.logger.Info("⏱️ Игровой цикл запущен (%d TPS)", tps)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("⏱️ Игровой цикл остановлен на тике %d", l.CurrentTick())
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step выполняет один тик и возвращает новый снимок регионов
func (l *Loop) Step() *movingtile.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	l.tick++
	snap := l.coll.Tick(l.tick, 0)

	if l.metrics != nil {
		regions := 0
		if snap != nil {
			regions = snap.Len()
		}
		l.metrics.ObserveTick(l.tick, regions, time.Since(start))
	}
	return snap
}

// CurrentTick возвращает номер последнего выполненного тика
func (l *Loop) CurrentTick() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tick
}

// View выполняет запросы на чтение между тиками
func (l *Loop) View(fn func(c *collision.Collision, tick int)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.coll, l.tick)
}

// Do выполняет изменение карты (двери, SetCollisionAt) между тиками
func (l *Loop) Do(fn func(c *collision.Collision)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.coll)
}

// Reload заменяет карту и сбрасывает счётчик тиков.
// При ошибке прежняя карта уже освобождена, и экземпляр остаётся пустым.
func (l *Loop) Reload(m *mapdata.Map) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tick = 0
	return l.coll.Init(m)
}
