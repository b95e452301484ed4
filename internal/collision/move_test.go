package collision

import (
	"math/rand"
	"testing"

	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/mapgen"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var playerSize = vec.Vec2Float{X: 28, Y: 28}

func TestMovePointElasticBounce(t *testing.T) {
	c := newCollision(t, gridMap("#.."))

	pos := vec.Vec2Float{X: 32, Y: 16}
	newPos, vel, bounces := c.MovePoint(pos, vec.Vec2Float{X: -1, Y: 0}, 1)

	assert.Equal(t, float32(1), vel.X, "скорость отражается полностью")
	assert.Equal(t, float32(0), vel.Y)
	assert.Equal(t, pos, newPos, "точка остается на границе")
	assert.Equal(t, 1, bounces)
}

func TestMovePointWallToTheRight(t *testing.T) {
	c := newCollision(t, gridMap("..#", "..."))

	_, vel, _ := c.MovePoint(vec.Vec2Float{X: 60, Y: 16}, vec.Vec2Float{X: 6, Y: 2}, 0.5)
	assert.Equal(t, float32(-3), vel.X)
	assert.Equal(t, float32(2), vel.Y, "вертикальная скорость не меняется")
}

func TestMovePointCorner(t *testing.T) {
	// свободны и шаг по X, и шаг по Y, но не диагональ
	c := newCollision(t, gridMap("..", ".#"))

	pos, vel, bounces := c.MovePoint(vec.Vec2Float{X: 28, Y: 28}, vec.Vec2Float{X: 6, Y: 6}, 1)
	assert.Equal(t, vec.Vec2Float{X: 28, Y: 28}, pos)
	assert.Equal(t, vec.Vec2Float{X: -6, Y: -6}, vel)
	assert.Equal(t, 0, bounces)
}

func TestMovePointFree(t *testing.T) {
	c := newCollision(t, gridMap("...", "..."))

	pos, vel, bounces := c.MovePoint(vec.Vec2Float{X: 10, Y: 10}, vec.Vec2Float{X: 5, Y: 7}, 1)
	assert.Equal(t, vec.Vec2Float{X: 15, Y: 17}, pos)
	assert.Equal(t, vec.Vec2Float{X: 5, Y: 7}, vel)
	assert.Equal(t, 0, bounces)
}

func TestMoveBoxZeroVelocityIsIdempotent(t *testing.T) {
	c := newCollision(t, mapgen.NewGenerator(5).Generate("zero", 30, 30))

	pos := vec.Vec2Float{X: 200.5, Y: 300.25}
	for i := 0; i < 10; i++ {
		var vel vec.Vec2Float
		pos, vel = c.MoveBox(pos, vel, playerSize, 0.5)
		assert.True(t, vel.IsZero())
	}
	assert.Equal(t, vec.Vec2Float{X: 200.5, Y: 300.25}, pos)
}

func TestMoveBoxStopsAtFloor(t *testing.T) {
	c := newCollision(t, gridMap(
		"....",
		"....",
		"####",
	))

	pos, vel := c.MoveBox(vec.Vec2Float{X: 64, Y: 40}, vec.Vec2Float{X: 0, Y: 20}, playerSize, 0)
	assert.Equal(t, float32(0), vel.Y, "скорость гасится без упругости")
	assert.LessOrEqual(t, pos.Y+playerSize.Y/2, float32(63.5), "прямоугольник не входит в пол")
	assert.False(t, c.TestBox(pos, playerSize))
}

// freeStarts возвращает позиции центров клеток, где прямоугольник игрока не пересекает стены
func freeStarts(c *Collision) []vec.Vec2Float {
	var out []vec.Vec2Float
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			pos := c.GetPos(y*c.Width() + x)
			if !c.TestBox(pos, playerSize) {
				out = append(out, pos)
			}
		}
	}
	return out
}

func TestMoveBoxNeverEntersStaticSolids(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		g := mapgen.NewGenerator(seed)
		g.Platforms = 0
		c := newCollision(t, g.Generate(mapgen.Name(seed), 40, 40))

		starts := freeStarts(c)
		require.NotEmpty(t, starts)

		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < 200; i++ {
			pos := starts[rng.Intn(len(starts))]
			vel := vec.Vec2Float{X: rng.Float32()*80 - 40, Y: rng.Float32()*80 - 40}
			for step := 0; step < 5; step++ {
				pos, vel = c.MoveBox(pos, vel, playerSize, 0.3)
				require.False(t, c.TestBox(pos, playerSize), "сид %d: прямоугольник вошел в стену в %v", seed, pos)
			}
		}
	}
}

// staticPlatform: неподвижный квад QHook с мировыми границами x0..x1, y0..y1
func staticPlatform(x0, y0, x1, y1 float32) mapdata.Quad {
	a, b := vec.F2Fx(x0), vec.F2Fx(y0)
	c, d := vec.F2Fx(x1), vec.F2Fx(y1)
	return mapdata.Quad{
		Points: [5]vec.Vec2{
			{X: a, Y: b}, {X: c, Y: b},
			{X: a, Y: d}, {X: c, Y: d},
			{X: (a + c) / 2, Y: (b + d) / 2},
		},
		PosEnv: -1,
	}
}

// withPlatforms добавляет карте группу неподвижных платформ
func withPlatforms(m *mapdata.Map, quads ...mapdata.Quad) *mapdata.Map {
	m.Groups = append(m.Groups, mapdata.Group{
		Version: 2, ParallaxX: 100, ParallaxY: 100,
		Layers: []mapdata.QuadLayer{{Name: mapdata.QuadLayerHook, Quads: quads}},
	})
	return m
}

func TestMoveBoxWallAndPlatformInOneStep(t *testing.T) {
	// стена в клетке (3, 1), платформа начинается на 0.1 ниже прямоугольника
	m := mapdata.NewEmpty("mixed", 10, 10)
	m.Set(3, 1, tile.Solid)
	c := newCollision(t, withPlatforms(m, staticPlatform(0, 91.5, 320, 200)))

	start := vec.Vec2Float{X: 81.4, Y: 77.4}
	require.False(t, c.TestBox(start, playerSize))
	require.False(t, c.TestBoxQuad(start, playerSize))

	pos, vel := c.MoveBox(start, vec.Vec2Float{X: 0.5, Y: 0.5}, playerSize, 0)
	assert.False(t, c.TestBox(pos, playerSize), "прямоугольник вошел в стену в %v", pos)
	assert.False(t, c.TestBoxQuad(pos, playerSize), "прямоугольник вошел в платформу в %v", pos)
	assert.Equal(t, start, pos, "обе оси упираются: шаг отменяется")
	assert.True(t, vel.IsZero())
}

func TestMoveBoxNeverEntersWallsOrPlatforms(t *testing.T) {
	for _, seed := range []int64{4, 5, 6, 7} {
		rng := rand.New(rand.NewSource(seed))

		m := mapdata.NewEmpty("mixed", 16, 16)
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if rng.Intn(6) == 0 {
					m.Set(x, y, tile.Solid)
				}
			}
		}
		quads := make([]mapdata.Quad, 0, 4)
		for i := 0; i < 4; i++ {
			x0 := rng.Float32() * 400
			y0 := rng.Float32() * 400
			quads = append(quads, staticPlatform(x0, y0, x0+20+rng.Float32()*80, y0+20+rng.Float32()*80))
		}
		c := newCollision(t, withPlatforms(m, quads...))

		var starts []vec.Vec2Float
		for _, pos := range freeStarts(c) {
			if !c.TestBoxQuad(pos, playerSize) {
				starts = append(starts, pos)
			}
		}
		require.NotEmpty(t, starts, "сид %d", seed)

		for i := 0; i < 200; i++ {
			pos := starts[rng.Intn(len(starts))]
			vel := vec.Vec2Float{X: rng.Float32()*80 - 40, Y: rng.Float32()*80 - 40}
			for step := 0; step < 5; step++ {
				pos, vel = c.MoveBox(pos, vel, playerSize, rng.Float32())
				require.False(t, c.TestBox(pos, playerSize), "сид %d: прямоугольник вошел в стену в %v", seed, pos)
				require.False(t, c.TestBoxQuad(pos, playerSize), "сид %d: прямоугольник вошел в платформу в %v", seed, pos)
			}
		}
	}
}

func TestMapIndexIsAlwaysClamped(t *testing.T) {
	c := newCollision(t, mapgen.NewGenerator(9).Generate("clamp", 25, 17))
	cells := c.Width() * c.Height()

	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		pos := vec.Vec2Float{X: rng.Float32()*4000 - 2000, Y: rng.Float32()*4000 - 2000}
		index := c.GetPureMapIndex(pos)
		require.GreaterOrEqual(t, index, 0)
		require.Less(t, index, cells)
	}
}

func TestMoveBoxIsDeterministic(t *testing.T) {
	m := mapgen.NewGenerator(13).Generate("det", 40, 40)
	a := newCollision(t, m)
	b := newCollision(t, mapgen.NewGenerator(13).Generate("det", 40, 40))

	starts := freeStarts(a)
	require.NotEmpty(t, starts)

	for tick := 0; tick < 100; tick++ {
		sa := a.Tick(tick, 0)
		sb := b.Tick(tick, 0)
		require.Equal(t, sa.Digest(), sb.Digest(), "тик %d", tick)

		pos := starts[tick%len(starts)]
		vel := vec.Vec2Float{X: float32(tick%17) - 8, Y: float32(tick%11) - 5}
		pa, va := a.MoveBox(pos, vel, playerSize, 0.5)
		pb, vb := b.MoveBox(pos, vel, playerSize, 0.5)
		require.Equal(t, pa, pb)
		require.Equal(t, va, vb)
	}
}

func TestMoveBoxBlockedByPlatform(t *testing.T) {
	c := newCollision(t, platformMap())

	// платформа в покое занимает x 64..128, y 32..96
	pos, vel := c.MoveBox(vec.Vec2Float{X: 30, Y: 64}, vec.Vec2Float{X: 30, Y: 0}, playerSize, 0)
	assert.Equal(t, float32(0), vel.X)
	assert.Less(t, pos.X+playerSize.X/2, float32(64.5))

	pos, _ = c.MoveBoxStatic(vec.Vec2Float{X: 30, Y: 64}, vec.Vec2Float{X: 30, Y: 0}, playerSize, 0)
	assert.InDelta(t, 60, pos.X, 1e-3, "без регионов путь свободен")
}
