// Package collision реализует детерминированные коллизии тайловой карты:
// статическую сетку, движущиеся регионы, запросы семантики тайлов,
// разрешение движения точки и прямоугольника и трассировку отрезков.
//
// Запросы только читают состояние и не возвращают ошибок: некорректные
// индексы и отсутствующие слои дают нейтральный результат. Init, Dest и
// Tick вызываются одним писателем (игровым циклом).
package collision

import (
	"fmt"

	"github.com/annel0/mmo-collision/internal/envelope"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/movingtile"
	"github.com/annel0/mmo-collision/internal/tile"
)

// CellSize: размер клетки сетки в мировых единицах
const CellSize = 32

// Options: настройки, влияющие на результаты запросов
type Options struct {
	// TickSpeed: число тиков в секунду для вычисления огибающих
	TickSpeed int
	// OldTeleportHook: крюк телепортируется обычными телепортами вместо TeleInHook
	OldTeleportHook bool
	// OldTeleportWeapons: оружие телепортируется обычными телепортами вместо TeleInWeapon
	OldTeleportWeapons bool
	// RestrictionDistance: расстояние проб MoveRestrictionsAt, от 0 до CellSize
	RestrictionDistance float32
}

// DefaultOptions возвращает настройки сервера по умолчанию
func DefaultOptions() Options {
	return Options{
		TickSpeed:           envelope.DefaultTickSpeed,
		RestrictionDistance: DefaultRestrictionDistance,
	}
}

// Collision: коллизии одной загруженной карты
type Collision struct {
	opts   Options
	logger *logging.Logger

	width  int
	height int

	// Игровой слой и слой переключателей копируются: первый меняется через
	// SetCollisionAt, второй нормализуется при загрузке. Остальные слои
	// заимствуются у загрузчика карты и не изменяются.
	tiles   []tile.Tile
	front   []tile.Tile
	tele    []tile.TeleTile
	speedup []tile.SpeedupTile
	sw      []tile.SwitchTile
	tune    []tile.TuneTile
	door    []tile.DoorTile

	highestSwitchNumber int

	moving *movingtile.Registry
}

// New создает пустой экземпляр. До Init все точки считаются свободными.
func New(opts Options, logger *logging.Logger) *Collision {
	if opts.TickSpeed <= 0 {
		opts.TickSpeed = envelope.DefaultTickSpeed
	}
	if logger == nil {
		logger = logging.GetCollisionLogger()
	}
	return &Collision{opts: opts, logger: logger}
}

// Init строит коллизии по карте. Предыдущее состояние освобождается.
// Ошибка возвращается только для карты без пригодного игрового слоя.
func (c *Collision) Init(m *mapdata.Map) error {
	c.Dest()

	if err := m.Validate(); err != nil {
		return fmt.Errorf("карта %q: %w", m.Name, err)
	}

	cells := m.Cells()
	c.width = m.Width
	c.height = m.Height
	c.tiles = make([]tile.Tile, cells)
	copy(c.tiles, m.Game)

	c.front = borrowLayer(c.logger, tile.LayerFront, m.Front, cells)
	c.tele = borrowLayer(c.logger, tile.LayerTele, m.Tele, cells)
	c.speedup = borrowLayer(c.logger, tile.LayerSpeedup, m.Speedup, cells)
	c.tune = borrowLayer(c.logger, tile.LayerTune, m.Tune, cells)

	if sw := borrowLayer(c.logger, tile.LayerSwitch, m.Switch, cells); sw != nil {
		c.sw = make([]tile.SwitchTile, cells)
		copy(c.sw, sw)
		c.door = make([]tile.DoorTile, cells)
		c.initSwitches()
	}

	c.moving = movingtile.Build(m, c.opts.TickSpeed, c.logger)

	c.logger.Info("карта %q загружена: %dx%d, front=%t tele=%t speedup=%t switch=%t tune=%t",
		m.Name, c.width, c.height, c.front != nil, c.tele != nil, c.speedup != nil, c.sw != nil, c.tune != nil)
	return nil
}

// initSwitches нормализует типы переключателей и заполняет номера дверей
func (c *Collision) initSwitches() {
	for i := range c.sw {
		s := &c.sw[i]
		if int(s.Number) > c.highestSwitchNumber {
			c.highestSwitchNumber = int(s.Number)
		}
		c.door[i].Number = int32(s.Number)
		if !tile.IsAllowedSwitchType(int(s.Type)) {
			s.Type = 0
		}
	}
}

// borrowLayer возвращает слой, если он покрывает всю сетку. Короткий слой
// считается отсутствующим.
func borrowLayer[T any](logger *logging.Logger, layer tile.LayerID, data []T, cells int) []T {
	if data == nil {
		return nil
	}
	if len(data) < cells {
		logger.Warn("слой %s содержит %d клеток вместо %d и будет проигнорирован", layer, len(data), cells)
		return nil
	}
	return data[:cells:cells]
}

// Dest освобождает данные карты
func (c *Collision) Dest() {
	c.width = 0
	c.height = 0
	c.tiles = nil
	c.front = nil
	c.tele = nil
	c.speedup = nil
	c.sw = nil
	c.tune = nil
	c.door = nil
	c.highestSwitchNumber = 0
	c.moving = nil
}

// Tick пересчитывает положение движущихся регионов
func (c *Collision) Tick(tick int, intra float32) *movingtile.Snapshot {
	if c.moving == nil {
		return nil
	}
	return c.moving.Tick(tick, intra)
}

// Snapshot возвращает текущее положение движущихся регионов или nil до Init
func (c *Collision) Snapshot() *movingtile.Snapshot {
	if c.moving == nil {
		return nil
	}
	return c.moving.Current()
}

// MovingTiles возвращает реестр движущихся регионов или nil до Init
func (c *Collision) MovingTiles() *movingtile.Registry {
	return c.moving
}

// Options возвращает настройки экземпляра
func (c *Collision) Options() Options {
	return c.opts
}

// Width возвращает ширину сетки в клетках
func (c *Collision) Width() int { return c.width }

// Height возвращает высоту сетки в клетках
func (c *Collision) Height() int { return c.height }

// HighestSwitchNumber возвращает максимальный номер переключателя на карте
func (c *Collision) HighestSwitchNumber() int { return c.highestSwitchNumber }

// LayerPresent сообщает, загружен ли слой
func (c *Collision) LayerPresent(layer tile.LayerID) bool {
	switch layer {
	case tile.LayerGame:
		return c.tiles != nil
	case tile.LayerFront:
		return c.front != nil
	case tile.LayerTele:
		return c.tele != nil
	case tile.LayerSpeedup:
		return c.speedup != nil
	case tile.LayerSwitch:
		return c.sw != nil
	case tile.LayerTune:
		return c.tune != nil
	}
	return false
}

func mustf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("collision: "+format, args...))
	}
}
