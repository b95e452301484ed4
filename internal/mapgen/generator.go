// Package mapgen генерирует детерминированные тестовые карты на основе шума Перлина.
package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/annel0/mmo-collision/internal/envelope"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/aquilax/go-perlin"
)

// Пороги шума высоты для генерации
const (
	SolidMin  = 0.62 // Выше - сплошная стена
	NoHookMin = 0.58 // Выше - стена, за которую нельзя зацепиться
	FreezeMin = 0.70 // Порог шума особенностей для заморозки во фронтальном слое
	DeathMax  = 0.22 // Ниже порога шума особенностей - смерть во фронтальном слое
)

// Generator генерирует карты
type Generator struct {
	Seed         int64   // Сид генерации
	NoiseScale   float64 // Масштаб шума высоты
	FeatureScale float64 // Масштаб шума особенностей фронтального слоя
	Platforms    int     // Число движущихся платформ
	Teleports    int     // Число пар телепортов

	height  *perlin.Perlin
	feature *perlin.Perlin
}

// NewGenerator создает генератор с настройками по умолчанию
func NewGenerator(seed int64) *Generator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Generator{
		Seed:         seed,
		NoiseScale:   0.08,
		FeatureScale: 0.15,
		Platforms:    2,
		Teleports:    1,
		height:       perlin.NewPerlin(alpha, beta, n, seed),
		feature:      perlin.NewPerlin(alpha, beta, n, seed+42),
	}
}

// noise возвращает значение шума в диапазоне от 0 до 1
func noise(p *perlin.Perlin, x, y float64) float64 {
	return (p.Noise2D(x, y) + 1.0) / 2.0
}

// Generate строит карту width x height. Края карты всегда сплошные.
func (g *Generator) Generate(name string, width, height int) *mapdata.Map {
	m := mapdata.NewEmpty(name, width, height)
	m.Front = make([]tile.Tile, width*height)

	// Отдельный генератор случайных чисел для детерминированности
	rng := rand.New(rand.NewSource(g.Seed))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				m.Set(x, y, tile.Solid)
				continue
			}

			h := noise(g.height, float64(x)*g.NoiseScale, float64(y)*g.NoiseScale)
			switch {
			case h > SolidMin:
				m.Set(x, y, tile.Solid)
			case h > NoHookMin:
				m.Set(x, y, tile.NoHook)
			default:
				f := noise(g.feature, float64(x)*g.FeatureScale, float64(y)*g.FeatureScale)
				if f > FreezeMin {
					m.Front[y*width+x] = tile.Tile{Index: tile.Freeze}
				} else if f < DeathMax {
					m.Front[y*width+x] = tile.Tile{Index: tile.Death}
				}
			}
		}
	}

	g.placeTeleports(m, rng)
	g.placePlatforms(m, rng)
	return m
}

// freeCell ищет случайную свободную клетку внутри карты
func freeCell(m *mapdata.Map, rng *rand.Rand) (int, int, bool) {
	if m.Width < 3 || m.Height < 3 {
		return 0, 0, false
	}
	for attempt := 0; attempt < 64; attempt++ {
		x := 1 + rng.Intn(m.Width-2)
		y := 1 + rng.Intn(m.Height-2)
		if m.Game[y*m.Width+x].Index == tile.Air {
			return x, y, true
		}
	}
	return 0, 0, false
}

// placeTeleports добавляет слой телепортов с парами вход/выход
func (g *Generator) placeTeleports(m *mapdata.Map, rng *rand.Rand) {
	if g.Teleports <= 0 {
		return
	}
	m.Tele = make([]tile.TeleTile, m.Cells())
	for i := 1; i <= g.Teleports; i++ {
		for _, typ := range []uint8{tile.TeleIn, tile.TeleOut} {
			x, y, ok := freeCell(m, rng)
			if !ok {
				return
			}
			m.Tele[y*m.Width+x] = tile.TeleTile{Number: uint8(i), Type: typ}
		}
	}
}

// placePlatforms добавляет группу с движущимися платформами QHook.
// Каждая платформа ездит по горизонтали с периодом 2 секунды.
func (g *Generator) placePlatforms(m *mapdata.Map, rng *rand.Rand) {
	if g.Platforms <= 0 {
		return
	}

	const size = 64 << vec.FixedShift
	quads := make([]mapdata.Quad, 0, g.Platforms)
	for i := 0; i < g.Platforms; i++ {
		x, y, ok := freeCell(m, rng)
		if !ok {
			break
		}
		px := (x * 32) << vec.FixedShift
		py := (y * 32) << vec.FixedShift
		quads = append(quads, mapdata.Quad{
			Points: [5]vec.Vec2{
				{X: px, Y: py}, {X: px + size, Y: py},
				{X: px, Y: py + size/2}, {X: px + size, Y: py + size/2},
				{X: px + size/2, Y: py + size/4},
			},
			PosEnv:       0,
			PosEnvOffset: int32(rng.Intn(2000)),
		})
	}
	if len(quads) == 0 {
		return
	}

	m.Groups = append(m.Groups, mapdata.Group{
		Version:   2,
		ParallaxX: 100,
		ParallaxY: 100,
		Layers:    []mapdata.QuadLayer{{Name: mapdata.QuadLayerHook, Quads: quads}},
	})
	m.Envelopes = append(m.Envelopes, mapdata.Envelope{StartPoint: len(m.EnvPoints), NumPoints: 3})
	m.EnvPoints = append(m.EnvPoints,
		envelope.Point{TimeMs: 0, Curve: envelope.CurveSmooth},
		envelope.Point{TimeMs: 1000, Values: [3]int32{96 << vec.FixedShift, 0, 0}, Curve: envelope.CurveSmooth},
		envelope.Point{TimeMs: 2000, Curve: envelope.CurveLinear},
	)
}

// Name возвращает стандартное имя карты для сида
func Name(seed int64) string {
	return fmt.Sprintf("perlin-%d", seed)
}
