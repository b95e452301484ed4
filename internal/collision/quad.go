package collision

import (
	"github.com/annel0/mmo-collision/internal/geometry"
	"github.com/annel0/mmo-collision/internal/movingtile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/chewxy/math32"
)

// regionAt ищет первый регион, содержащий точку pos в игровом пространстве игрока player.
// Все проверки одного запроса выполняются по одному снимку.
func (c *Collision) regionAt(snap *movingtile.Snapshot, pos, player vec.Vec2Float, solidOnly bool) *movingtile.Region {
	if snap == nil {
		return nil
	}
	regions := c.moving.Regions()
	for i := range regions {
		r := &regions[i]
		if solidOnly && !r.IsSolid() {
			continue
		}
		if regionContains(snap, r, pos, player) {
			return r
		}
	}
	return nil
}

func regionContains(snap *movingtile.Snapshot, r *movingtile.Region, pos, player vec.Vec2Float) bool {
	t1, t2 := snap.Triangles(r)
	if !r.Parallax.IsIdentity() {
		t1 = r.Parallax.ApplyTriangle(player, t1)
		t2 = r.Parallax.ApplyTriangle(player, t2)
	}
	return geometry.PointInTriangle(t1, pos) || geometry.PointInTriangle(t2, pos)
}

// GetQuadCollisionAt возвращает регион под точкой pos с учетом параллакса
// для игрока в playerPos или nil
func (c *Collision) GetQuadCollisionAt(pos, playerPos vec.Vec2Float) *movingtile.Region {
	return c.regionAt(c.Snapshot(), pos, playerPos, false)
}

// CheckPointQuadRectangular возвращает твердый регион, чей ограничивающий
// прямоугольник (углы 0, 1, 2) содержит округленную точку pos, или nil
func (c *Collision) CheckPointQuadRectangular(pos, playerPos vec.Vec2Float) *movingtile.Region {
	snap := c.Snapshot()
	if snap == nil {
		return nil
	}
	x, y := vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y)
	regions := c.moving.Regions()
	for i := range regions {
		r := &regions[i]
		if !r.IsSolid() {
			continue
		}
		corners := snap.Corners(r.ID)
		c0 := r.Parallax.Apply(playerPos, corners[0])
		c1 := r.Parallax.Apply(playerPos, corners[1])
		c2 := r.Parallax.Apply(playerPos, corners[2])
		if vec.RoundToInt(c0.X) <= x && x <= vec.RoundToInt(c1.X) &&
			vec.RoundToInt(c0.Y) <= y && y <= vec.RoundToInt(c2.Y) {
			return r
		}
	}
	return nil
}

// testBoxQuad проверяет углы прямоугольника против твердых регионов.
// only != nil ограничивает проверку одним регионом.
func (c *Collision) testBoxQuad(snap *movingtile.Snapshot, pos, size vec.Vec2Float, only *movingtile.Region) bool {
	if snap == nil {
		return false
	}
	half := size.Mul(0.5)
	corners := [4]vec.Vec2Float{
		{X: pos.X - half.X, Y: pos.Y - half.Y},
		{X: pos.X + half.X, Y: pos.Y - half.Y},
		{X: pos.X - half.X, Y: pos.Y + half.Y},
		{X: pos.X + half.X, Y: pos.Y + half.Y},
	}
	for _, p := range corners {
		if only != nil {
			if only.IsSolid() && regionContains(snap, only, p, pos) {
				return true
			}
			continue
		}
		if c.regionAt(snap, p, pos, true) != nil {
			return true
		}
	}
	return false
}

// TestBoxQuad проверяет, пересекает ли прямоугольник с центром pos твердый регион
func (c *Collision) TestBoxQuad(pos, size vec.Vec2Float) bool {
	return c.testBoxQuad(c.Snapshot(), pos, size, nil)
}

// MoveBoxOutQuad выталкивает прямоугольник из твердых регионов, в которые он
// уже вошел. Сначала по оси с наименьшим проникновением, затем, если
// пересечение осталось, по второй оси.
func (c *Collision) MoveBoxOutQuad(pos, size vec.Vec2Float) vec.Vec2Float {
	snap := c.Snapshot()
	if snap == nil {
		return pos
	}
	half := size.Mul(0.5)
	regions := c.moving.Regions()
	for i := range regions {
		r := &regions[i]
		if !r.IsSolid() || !c.testBoxQuad(snap, pos, size, r) {
			continue
		}

		corners := snap.Corners(r.ID)
		c0 := r.Parallax.Apply(pos, corners[0])
		c1 := r.Parallax.Apply(pos, corners[1])
		c2 := r.Parallax.Apply(pos, corners[2])

		dx0 := pos.X - c0.X
		dx1 := c1.X - pos.X
		dy0 := pos.Y - c0.Y
		dy2 := c2.Y - pos.Y

		pushX := func() {
			if dx0 < dx1 {
				pos.X = math32.Floor(c0.X-half.X) - 1
			} else {
				pos.X = math32.Ceil(c1.X+half.X) + 1
			}
		}
		pushY := func() {
			if dy0 < dy2 {
				pos.Y = math32.Floor(c0.Y-half.Y) - 1
			} else {
				pos.Y = math32.Ceil(c2.Y+half.Y) + 1
			}
		}

		if math32.Min(dx0, dx1) < math32.Min(dy0, dy2) {
			pushX()
			if c.testBoxQuad(snap, pos, size, r) {
				pushY()
			}
		} else {
			pushY()
			if c.testBoxQuad(snap, pos, size, r) {
				pushX()
			}
		}
	}
	return pos
}

// MoveGroundedQuad возвращает сдвиг региона между тиками initialTick и tick.
// Для неанимированного региона сдвиг нулевой.
func (c *Collision) MoveGroundedQuad(initialTick, tick int, region *movingtile.Region) vec.Vec2Float {
	if region == nil || c.moving == nil || !region.Animated() {
		return vec.Vec2Float{}
	}
	from := c.moving.Evaluate(region, initialTick, 0)
	to := c.moving.Evaluate(region, tick, 0)
	return to.Sub(from).XY()
}

// GetQuadCollisionsBetween возвращает регионы, чьи треугольники пересекает отрезок a-b
func (c *Collision) GetQuadCollisionsBetween(a, b, playerPos vec.Vec2Float) []*movingtile.Region {
	snap := c.Snapshot()
	if snap == nil {
		return nil
	}
	var hits []*movingtile.Region
	regions := c.moving.Regions()
	for i := range regions {
		r := &regions[i]
		t1, t2 := snap.Triangles(r)
		t1 = r.Parallax.ApplyTriangle(playerPos, t1)
		t2 = r.Parallax.ApplyTriangle(playerPos, t2)
		if geometry.SegmentIntersectsTriangle(a, b, t1) || geometry.SegmentIntersectsTriangle(a, b, t2) {
			hits = append(hits, r)
		}
	}
	return hits
}

// UpdateHookPos переносит точку зацепа крюка вместе с регионом: сдвигает и
// поворачивает ее на изменение анимации между hookTick и tick, затем
// применяет параллакс региона.
func (c *Collision) UpdateHookPos(initialHookPos vec.Vec2Float, hookTick, tick int, region *movingtile.Region, playerPos vec.Vec2Float) vec.Vec2Float {
	if region == nil || c.moving == nil {
		return initialHookPos
	}
	if !region.Animated() {
		return region.Parallax.Apply(playerPos, initialHookPos)
	}

	from := c.moving.Evaluate(region, hookTick, 0)
	to := c.moving.Evaluate(region, tick, 0)
	delta := to.Sub(from)

	anchor := vec.Vec2{X: vec.F2Fx(initialHookPos.X), Y: vec.F2Fx(initialHookPos.Y)}
	rotated := vec.Rotate(region.Center, anchor, delta.Z)
	moved := vec.Vec2Float{
		X: vec.Fx2F(rotated.X) + delta.X,
		Y: vec.Fx2F(rotated.Y) + delta.Y,
	}
	return region.Parallax.Apply(playerPos, moved)
}

// ApplyParaToHook применяет к точке зацепа только параллакс региона
func (c *Collision) ApplyParaToHook(hookPos vec.Vec2Float, region *movingtile.Region, playerPos vec.Vec2Float) vec.Vec2Float {
	if region == nil {
		return hookPos
	}
	return region.Parallax.Apply(playerPos, hookPos)
}
