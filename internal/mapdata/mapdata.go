// Package mapdata описывает уже разобранную карту: массивы тайлов по слоям,
// группы квадов и таблицу ключевых точек огибающих.
package mapdata

import (
	"errors"
	"fmt"

	"github.com/annel0/mmo-collision/internal/envelope"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
)

var (
	// ErrBadDimensions возвращается для карт с неположительными размерами
	ErrBadDimensions = errors.New("некорректные размеры карты")
	// ErrNoGameLayer возвращается, если игровой слой отсутствует или не совпадает по размеру
	ErrNoGameLayer = errors.New("отсутствует игровой слой")
)

// Имена слоев квадов, которые превращаются в движущиеся тайлы
const (
	QuadLayerFreeze   = "QFr"
	QuadLayerUnfreeze = "QUnFr"
	QuadLayerHook     = "QHook"
	QuadLayerUnhook   = "QUnHook"
	QuadLayerDeath    = "QDeath"
)

// Map: результат загрузки карты.
// Необязательные слои равны nil, если карта их не содержит.
type Map struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Game    []tile.Tile        `json:"game"`
	Front   []tile.Tile        `json:"front,omitempty"`
	Tele    []tile.TeleTile    `json:"tele,omitempty"`
	Speedup []tile.SpeedupTile `json:"speedup,omitempty"`
	Switch  []tile.SwitchTile  `json:"switch,omitempty"`
	Tune    []tile.TuneTile    `json:"tune,omitempty"`

	Groups    []Group          `json:"groups,omitempty"`
	Envelopes []Envelope       `json:"envelopes,omitempty"`
	EnvPoints []envelope.Point `json:"env_points,omitempty"`
}

// Group: группа слоев с общими параметрами параллакса
type Group struct {
	Version   int         `json:"version"`
	ParallaxX int         `json:"parallax_x"`
	ParallaxY int         `json:"parallax_y"`
	OffsetX   int         `json:"offset_x"`
	OffsetY   int         `json:"offset_y"`
	Layers    []QuadLayer `json:"layers,omitempty"`
}

// QuadLayer: именованный слой квадов. Quads == nil означает слой без данных.
type QuadLayer struct {
	Name  string `json:"name"`
	Quads []Quad `json:"quads"`
}

// Quad: четырехугольник карты. Points[0..3]: углы, Points[4]: центр вращения.
// Координаты в fixed-point.
type Quad struct {
	Points       [5]vec.Vec2 `json:"points"`
	PosEnv       int         `json:"pos_env"`
	PosEnvOffset int32       `json:"pos_env_offset"`
}

// Envelope: ссылка на отрезок таблицы ключевых точек
type Envelope struct {
	StartPoint int `json:"start_point"`
	NumPoints  int `json:"num_points"`
}

// Cells возвращает число клеток сетки
func (m *Map) Cells() int {
	return m.Width * m.Height
}

// Validate проверяет, что карта пригодна для построения коллизий.
// Ошибки в необязательных слоях и квадах не фатальны и здесь не проверяются.
func (m *Map) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, m.Width, m.Height)
	}
	if len(m.Game) != m.Cells() {
		return fmt.Errorf("%w: ожидалось %d клеток, получено %d", ErrNoGameLayer, m.Cells(), len(m.Game))
	}
	return nil
}

// NewEmpty создает карту заданного размера с пустым игровым слоем
func NewEmpty(name string, width, height int) *Map {
	return &Map{
		Name:   name,
		Width:  width,
		Height: height,
		Game:   make([]tile.Tile, width*height),
	}
}

// Set записывает индекс тайла в игровой слой
func (m *Map) Set(x, y int, index uint8) {
	m.Game[y*m.Width+x] = tile.Tile{Index: index}
}

// SetTile записывает тайл с флагами в игровой слой
func (m *Map) SetTile(x, y int, t tile.Tile) {
	m.Game[y*m.Width+x] = t
}
