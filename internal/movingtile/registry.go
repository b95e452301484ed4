package movingtile

import (
	"sync/atomic"

	"github.com/annel0/mmo-collision/internal/envelope"
	"github.com/annel0/mmo-collision/internal/geometry"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/vec"
)

// Registry хранит регионы карты и общую таблицу ключевых точек.
// Набор регионов неизменен после Build, Tick только публикует новый снимок.
type Registry struct {
	regions   []Region
	points    []envelope.Point
	tickSpeed int

	current atomic.Pointer[Snapshot]
}

// Build собирает регионы из групп карты. Ошибочные квады логируются
// и загружаются без анимации. Начальный снимок соответствует тику 0.
func Build(m *mapdata.Map, tickSpeed int, logger *logging.Logger) *Registry {
	if tickSpeed <= 0 {
		tickSpeed = envelope.DefaultTickSpeed
	}
	r := &Registry{tickSpeed: tickSpeed}

	lastPointUsed := 0
	for gi, group := range m.Groups {
		if group.Version < 2 {
			continue
		}
		para := geometry.Parallax{
			X:       group.ParallaxX,
			Y:       group.ParallaxY,
			OffsetX: group.OffsetX,
			OffsetY: group.OffsetY,
		}

		for _, layer := range group.Layers {
			if layer.Quads == nil {
				continue
			}
			payload, ok := PayloadForLayer(layer.Name)
			if !ok {
				continue
			}

			for qi, q := range layer.Quads {
				binding := envelope.Binding{OffsetMs: q.PosEnvOffset}
				switch {
				case q.PosEnv < 0:
					// квад без анимации
				case q.PosEnv >= len(m.Envelopes):
					logger.Warn("группа %d, слой %s, квад %d: огибающая %d отсутствует (всего %d)",
						gi, layer.Name, qi, q.PosEnv, len(m.Envelopes))
				default:
					env := m.Envelopes[q.PosEnv]
					binding.Start = env.StartPoint
					binding.Count = env.NumPoints
					if binding.Count < 0 {
						binding.Count = 0
					}
					if binding.Count > 0 && binding.End() > lastPointUsed {
						lastPointUsed = binding.End()
					}
				}

				corners := [4]vec.Vec2{q.Points[0], q.Points[1], q.Points[2], q.Points[3]}
				r.regions = append(r.regions, Region{
					ID:       len(r.regions),
					Corners:  corners,
					Center:   q.Points[4],
					Binding:  binding,
					Parallax: para,
					Payload:  payload,
					Pattern:  geometry.ChooseTriangulation(corners),
				})
			}
		}
	}

	if lastPointUsed > len(m.EnvPoints) {
		logger.Error("таблица ключевых точек короче ссылок квадов: %d < %d", len(m.EnvPoints), lastPointUsed)
		lastPointUsed = len(m.EnvPoints)
	}
	r.points = make([]envelope.Point, lastPointUsed)
	copy(r.points, m.EnvPoints[:lastPointUsed])

	for i := range r.regions {
		b := &r.regions[i].Binding
		if b.Count > 0 && (b.Start < 0 || b.End() > len(r.points)) {
			logger.Warn("регион %d: отрезок огибающей [%d, %d) вне таблицы, анимация отключена",
				i, b.Start, b.End())
			b.Start, b.Count = 0, 0
		}
	}

	logger.Info("загружено движущихся регионов: %d, ключевых точек: %d", len(r.regions), len(r.points))

	r.Tick(0, 0)
	return r
}

// Tick пересчитывает положение всех регионов и публикует новый снимок
func (r *Registry) Tick(tick int, intra float32) *Snapshot {
	s := &Snapshot{
		Tick:    tick,
		Intra:   intra,
		corners: make([][4]vec.Vec2Float, len(r.regions)),
	}
	for i := range r.regions {
		s.corners[i] = r.regions[i].place(r.Evaluate(&r.regions[i], tick, intra))
	}
	r.current.Store(s)
	return s
}

// Current возвращает последний опубликованный снимок
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Evaluate вычисляет смещение анимации региона на заданном тике без изменения состояния
func (r *Registry) Evaluate(region *Region, tick int, intra float32) vec.Vec3Float {
	return envelope.Evaluate(r.points, region.Binding, tick, intra, r.tickSpeed)
}

// Regions возвращает регионы. Срез принадлежит реестру и не должен изменяться.
func (r *Registry) Regions() []Region {
	return r.regions
}

// Region возвращает регион по идентификатору или nil
func (r *Registry) Region(id int) *Region {
	if id < 0 || id >= len(r.regions) {
		return nil
	}
	return &r.regions[id]
}

// Len возвращает число регионов
func (r *Registry) Len() int {
	return len(r.regions)
}

// Points возвращает таблицу ключевых точек
func (r *Registry) Points() []envelope.Point {
	return r.points
}

// TickSpeed возвращает частоту тиков, с которой вычисляются огибающие
func (r *Registry) TickSpeed() int {
	return r.tickSpeed
}
