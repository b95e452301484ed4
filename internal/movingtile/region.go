// Package movingtile строит движущиеся регионы из квадов карты и
// пересчитывает их положение на каждом тике.
package movingtile

import (
	"fmt"

	"github.com/annel0/mmo-collision/internal/envelope"
	"github.com/annel0/mmo-collision/internal/geometry"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
)

// Вид полезной нагрузки региона (поле Skip записи тайла)
const (
	PayloadStatic   = 0
	PayloadTeleport = 1
)

// Region: движущийся четырехугольник со своей семантикой тайла.
// Авторские координаты неизменны после загрузки, текущее положение
// хранится в Snapshot.
type Region struct {
	ID       int
	Corners  [4]vec.Vec2
	Center   vec.Vec2
	Binding  envelope.Binding
	Parallax geometry.Parallax

	// Payload: семантика региона в формате тайла.
	// При Skip == 0 в Index лежит индекс тайла, при Skip == 1 в Flags тип телепорта, а в Index его номер.
	Payload tile.Tile

	// Pattern: выбранная диагональ, см. geometry.ChooseTriangulation
	Pattern bool
}

// PayloadForLayer возвращает семантику для имени слоя квадов
func PayloadForLayer(name string) (tile.Tile, bool) {
	switch name {
	case mapdata.QuadLayerFreeze:
		return tile.Tile{Index: tile.Freeze}, true
	case mapdata.QuadLayerUnfreeze:
		return tile.Tile{Index: tile.Unfreeze}, true
	case mapdata.QuadLayerHook:
		return tile.Tile{Index: tile.Solid}, true
	case mapdata.QuadLayerUnhook:
		return tile.Tile{Index: tile.NoHook}, true
	case mapdata.QuadLayerDeath:
		return tile.Tile{Index: tile.Death}, true
	default:
		return tile.Tile{}, false
	}
}

// IsSolid проверяет, блокирует ли регион движение. Слои квадов дают только
// SOLID и NOHOOK из твердых тайлов, сквозных регионов не бывает.
func (r *Region) IsSolid() bool {
	if r.Payload.Skip != PayloadStatic {
		return false
	}
	return r.Payload.Index == tile.Solid || r.Payload.Index == tile.NoHook
}

// TileIndex возвращает индекс тайла региона. Для неизвестного вида нагрузки
// карта считается поврежденной и вызывается паника.
func (r *Region) TileIndex() int {
	switch r.Payload.Skip {
	case PayloadStatic:
		return int(r.Payload.Index)
	case PayloadTeleport:
		return int(r.Payload.Flags)
	default:
		panic(fmt.Sprintf("movingtile: регион %d: неизвестный вид нагрузки %d", r.ID, r.Payload.Skip))
	}
}

// TeleportNumber возвращает номер телепорта заданного типа или 0
func (r *Region) TeleportNumber(teleType int) int {
	if r.Payload.Skip == PayloadTeleport && int(r.Payload.Flags) == teleType {
		return int(r.Payload.Index)
	}
	return 0
}

// TimeCheckpoint всегда -1: регионы не несут чекпоинтов времени
func (r *Region) TimeCheckpoint() int {
	return -1
}

// Animated проверяет, привязан ли регион к огибающей
func (r *Region) Animated() bool {
	return r.Binding.Count > 0
}

// place вычисляет положение углов для смещения анимации
func (r *Region) place(offset vec.Vec3Float) [4]vec.Vec2Float {
	var out [4]vec.Vec2Float
	for i, c := range r.Corners {
		rotated := vec.Rotate(r.Center, c, offset.Z)
		out[i] = vec.Vec2Float{
			X: vec.Fx2F(rotated.X) + offset.X,
			Y: vec.Fx2F(rotated.Y) + offset.Y,
		}
	}
	return out
}
