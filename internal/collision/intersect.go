package collision

import (
	"github.com/annel0/mmo-collision/internal/movingtile"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/chewxy/math32"
)

// LineHit: результат трассировки отрезка.
// Index == 0 означает, что отрезок свободен; тогда обе точки равны концу отрезка.
type LineHit struct {
	// Index: индекс тайла попадания или TeleInHook/TeleInWeapon для телепорта
	Index int
	// Collision: первая точка попадания
	Collision vec.Vec2Float
	// BeforeCollision: последняя свободная точка перед попаданием
	BeforeCollision vec.Vec2Float
	// TeleNumber: номер телепорта, если попадание в телепорт
	TeleNumber int
	// Region: движущийся регион, в который попал крюк
	Region *movingtile.Region
}

func missed(p1 vec.Vec2Float) LineHit {
	return LineHit{Collision: p1, BeforeCollision: p1}
}

// IntersectLine возвращает первое попадание отрезка p0-p1 в твердую клетку
func (c *Collision) IntersectLine(p0, p1 vec.Vec2Float) LineHit {
	end := int(p0.DistanceTo(p1) + 1)
	last := p0
	for i := 0; i <= end; i++ {
		pos := vec.Mix(p0, p1, float32(i)/float32(end))
		if c.CheckPoint(pos) {
			return LineHit{Index: c.GetCollisionAt(pos), Collision: pos, BeforeCollision: last}
		}
		last = pos
	}
	return missed(p1)
}

// IntersectLineTeleHook трассирует крюк: телепорты для крюка, сквозные и
// блокирующие крюк тайлы, затем твердые движущиеся регионы в пространстве
// игрока playerPos
func (c *Collision) IntersectLineTeleHook(p0, p1, playerPos vec.Vec2Float) LineHit {
	snap := c.Snapshot()
	end := int(p0.DistanceTo(p1) + 1)
	last := p0
	dx, dy := ThroughOffset(p0, p1)
	for i := 0; i <= end; i++ {
		pos := vec.Mix(p0, p1, float32(i)/float32(end))
		ix, iy := vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y)

		index := c.GetPureMapIndex(pos)
		var teleNr int
		if c.opts.OldTeleportHook {
			teleNr = c.IsTeleport(StaticCell{Index: index})
		} else {
			teleNr = c.IsTeleportHook(index)
		}
		if teleNr != 0 {
			return LineHit{Index: tile.TeleInHook, Collision: pos, BeforeCollision: last, TeleNumber: teleNr}
		}

		hit := 0
		var region *movingtile.Region
		if c.CheckPoint(pos) {
			if !c.IsThrough(ix, iy, dx, dy, p0, p1) {
				hit = c.GetCollisionAt(pos)
			}
		} else if c.IsHookBlocker(ix, iy, p0, p1) {
			hit = tile.NoHook
		} else if region = c.regionAt(snap, pos, playerPos, true); region != nil {
			hit = region.TileIndex()
		}
		if hit != 0 {
			return LineHit{Index: hit, Collision: pos, BeforeCollision: last, Region: region}
		}
		last = pos
	}
	return missed(p1)
}

// IntersectLineTeleWeapon трассирует снаряд с учетом телепортов для оружия
func (c *Collision) IntersectLineTeleWeapon(p0, p1 vec.Vec2Float) LineHit {
	end := int(p0.DistanceTo(p1) + 1)
	last := p0
	for i := 0; i <= end; i++ {
		pos := vec.Mix(p0, p1, float32(i)/float32(end))

		index := c.GetPureMapIndex(pos)
		var teleNr int
		if c.opts.OldTeleportWeapons {
			teleNr = c.IsTeleport(StaticCell{Index: index})
		} else {
			teleNr = c.IsTeleportWeapon(index)
		}
		if teleNr != 0 {
			return LineHit{Index: tile.TeleInWeapon, Collision: pos, BeforeCollision: last, TeleNumber: teleNr}
		}

		if c.CheckPoint(pos) {
			return LineHit{Index: c.GetCollisionAt(pos), Collision: pos, BeforeCollision: last}
		}
		last = pos
	}
	return missed(p1)
}

// IntersectNoLaser трассирует луч лазера до SOLID, NOHOOK или NOLASER любого слоя
func (c *Collision) IntersectNoLaser(p0, p1 vec.Vec2Float) LineHit {
	d := p0.DistanceTo(p1)
	last := p0
	for i, n := 0, int(math32.Ceil(d)); i < n; i++ {
		pos := vec.Mix(p0, p1, float32(i)/d)
		nx := clampInt(vec.RoundToInt(pos.X)/CellSize, 0, c.width-1)
		ny := clampInt(vec.RoundToInt(pos.Y)/CellSize, 0, c.height-1)
		game := c.GetIndexAt(nx, ny)
		front := c.GetFIndexAt(nx, ny)
		if game == tile.Solid || game == tile.NoHook || game == tile.NoLaser || front == tile.NoLaser {
			hit := LineHit{Collision: pos, BeforeCollision: last}
			if front == tile.NoLaser {
				hit.Index = c.GetFCollisionAt(pos)
			} else {
				hit.Index = c.GetCollisionAt(pos)
			}
			return hit
		}
		last = pos
	}
	return missed(p1)
}

// IntersectNoLaserNW останавливается только на тайлах NOLASER
func (c *Collision) IntersectNoLaserNW(p0, p1 vec.Vec2Float) LineHit {
	d := p0.DistanceTo(p1)
	last := p0
	for i, n := 0, int(math32.Ceil(d)); i < n; i++ {
		pos := vec.Mix(p0, p1, float32(i)/d)
		ix, iy := vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y)
		if c.IsNoLaser(ix, iy) || c.IsFNoLaser(ix, iy) {
			hit := LineHit{Collision: pos, BeforeCollision: last}
			if c.IsNoLaser(ix, iy) {
				hit.Index = c.GetCollisionAt(pos)
			} else {
				hit.Index = c.GetFCollisionAt(pos)
			}
			return hit
		}
		last = pos
	}
	return missed(p1)
}

// IntersectAir ищет первую точку, где нет опоры: твердая клетка или клетка
// без блокирующих тайлов в обоих слоях. Для пустой клетки Index == -1.
func (c *Collision) IntersectAir(p0, p1 vec.Vec2Float) LineHit {
	d := p0.DistanceTo(p1)
	last := p0
	for i, n := 0, int(math32.Ceil(d)); i < n; i++ {
		pos := vec.Mix(p0, p1, float32(i)/d)
		ix, iy := vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y)
		game, front := c.GetTile(ix, iy), c.GetFTile(ix, iy)
		if c.IsSolid(ix, iy) || (game == 0 && front == 0) {
			hit := LineHit{Collision: pos, BeforeCollision: last}
			switch {
			case game == 0 && front == 0:
				hit.Index = -1
			case game == 0:
				hit.Index = front
			default:
				hit.Index = game
			}
			return hit
		}
		last = pos
	}
	return missed(p1)
}
