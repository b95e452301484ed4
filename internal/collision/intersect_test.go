package collision

import (
	"testing"

	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersectLineEmptyPath(t *testing.T) {
	c := newCollision(t, gridMap("....", "....", "....", "...."))

	p0 := vec.Vec2Float{X: 10, Y: 10}
	p1 := vec.Vec2Float{X: 100, Y: 90}
	hit := c.IntersectLine(p0, p1)
	assert.Equal(t, 0, hit.Index)
	assert.Equal(t, p1, hit.Collision, "точка столкновения равна концу отрезка")
	assert.Equal(t, p1, hit.BeforeCollision)
}

func TestIntersectLineHitsWall(t *testing.T) {
	c := newCollision(t, gridMap("..#"))

	hit := c.IntersectLine(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 90, Y: 16})
	assert.Equal(t, tile.Solid, hit.Index)
	assert.GreaterOrEqual(t, vec.RoundToInt(hit.Collision.X), 64)
	assert.Less(t, vec.RoundToInt(hit.BeforeCollision.X), 64, "точка перед столкновением свободна")
	assert.Less(t, hit.Collision.X-hit.BeforeCollision.X, float32(1.01))
}

func TestIntersectLineTeleHook(t *testing.T) {
	m := gridMap(".....")
	m.Tele = make([]tile.TeleTile, m.Cells())
	m.Tele[2] = tile.TeleTile{Number: 4, Type: tile.TeleInHook}
	m.Tele[3] = tile.TeleTile{Number: 9, Type: tile.TeleIn}
	c := newCollision(t, m)

	hit := c.IntersectLineTeleHook(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 150, Y: 16}, vec.Vec2Float{})
	assert.Equal(t, tile.TeleInHook, hit.Index)
	assert.Equal(t, 4, hit.TeleNumber)
	assert.Nil(t, hit.Region)

	opts := DefaultOptions()
	opts.OldTeleportHook = true
	old := New(opts, logging.NewNopLogger())
	require.NoError(t, old.Init(m))

	hit = old.IntersectLineTeleHook(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 150, Y: 16}, vec.Vec2Float{})
	assert.Equal(t, tile.TeleInHook, hit.Index, "со старыми правилами крюк берет обычные телепорты")
	assert.Equal(t, 9, hit.TeleNumber)
}

func TestIntersectLineTeleHookBlockers(t *testing.T) {
	c := newCollision(t, gridMap("..h"))
	hit := c.IntersectLineTeleHook(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 90, Y: 16}, vec.Vec2Float{})
	assert.Equal(t, tile.NoHook, hit.Index)

	m := gridMap("....")
	m.Front = make([]tile.Tile, m.Cells())
	m.Front[2] = tile.Tile{Index: tile.ThroughAll}
	c = newCollision(t, m)
	hit = c.IntersectLineTeleHook(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16}, vec.Vec2Float{})
	assert.Equal(t, tile.NoHook, hit.Index, "THROUGH_ALL останавливает крюк")

	// THROUGH_CUT во фронтальном слое делает стену проходимой для крюка
	m = gridMap("..#.")
	m.Front = make([]tile.Tile, m.Cells())
	m.Front[2] = tile.Tile{Index: tile.ThroughCut}
	c = newCollision(t, m)
	hit = c.IntersectLineTeleHook(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16}, vec.Vec2Float{})
	assert.Equal(t, 0, hit.Index, "THROUGH_CUT пропускает крюк сквозь стену")
}

func TestIntersectLineTeleHookPlatform(t *testing.T) {
	c := newCollision(t, platformMap())

	hit := c.IntersectLineTeleHook(vec.Vec2Float{X: 96, Y: 5}, vec.Vec2Float{X: 96, Y: 200}, vec.Vec2Float{})
	assert.Equal(t, tile.Solid, hit.Index)
	require.NotNil(t, hit.Region, "крюк зацепился за регион")
	assert.Equal(t, 0, hit.Region.ID)
	assert.GreaterOrEqual(t, hit.Collision.Y, float32(31.5))
	assert.Less(t, hit.Collision.Y, float32(34))
}

func TestIntersectLineTeleWeapon(t *testing.T) {
	m := gridMap("....#")
	m.Tele = make([]tile.TeleTile, m.Cells())
	m.Tele[2] = tile.TeleTile{Number: 2, Type: tile.TeleInWeapon}
	c := newCollision(t, m)

	hit := c.IntersectLineTeleWeapon(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 150, Y: 16})
	assert.Equal(t, tile.TeleInWeapon, hit.Index)
	assert.Equal(t, 2, hit.TeleNumber)

	m.Tele[2] = tile.TeleTile{}
	c = newCollision(t, m)
	hit = c.IntersectLineTeleWeapon(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 150, Y: 16})
	assert.Equal(t, tile.Solid, hit.Index)
	assert.Equal(t, 0, hit.TeleNumber)
}

func TestIntersectNoLaser(t *testing.T) {
	c := newCollision(t, gridMap("..x."))
	hit := c.IntersectNoLaser(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16})
	assert.Equal(t, tile.NoLaser, hit.Index)

	m := gridMap("....")
	m.Front = make([]tile.Tile, m.Cells())
	m.Front[2] = tile.Tile{Index: tile.NoLaser}
	c = newCollision(t, m)
	hit = c.IntersectNoLaser(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16})
	assert.Equal(t, tile.NoLaser, hit.Index, "фронтальный NOLASER")

	hit = c.IntersectNoLaser(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 16, Y: 16})
	assert.Equal(t, 0, hit.Index, "отрезок нулевой длины ничего не задевает")
}

func TestIntersectNoLaserNW(t *testing.T) {
	c := newCollision(t, gridMap(".#x."))

	hit := c.IntersectNoLaserNW(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16})
	assert.Equal(t, tile.NoLaser, hit.Index, "стены пропускаются")
	assert.Equal(t, 2, vec.RoundToInt(hit.Collision.X)/CellSize)
}

func TestIntersectAir(t *testing.T) {
	c := newCollision(t, gridMap("dd.."))
	hit := c.IntersectAir(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16})
	assert.Equal(t, -1, hit.Index, "пустая клетка")
	assert.Equal(t, 2, vec.RoundToInt(hit.Collision.X)/CellSize)

	c = newCollision(t, gridMap("d#.."))
	hit = c.IntersectAir(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16})
	assert.Equal(t, tile.Solid, hit.Index)

	c = newCollision(t, gridMap("dddd"))
	hit = c.IntersectAir(vec.Vec2Float{X: 16, Y: 16}, vec.Vec2Float{X: 120, Y: 16})
	assert.Equal(t, 0, hit.Index)
	assert.Equal(t, vec.Vec2Float{X: 120, Y: 16}, hit.Collision)
}
