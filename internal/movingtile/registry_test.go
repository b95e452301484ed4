package movingtile

import (
	"testing"

	"github.com/annel0/mmo-collision/internal/envelope"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square возвращает квад 64x64 мировых единиц с левым верхним углом (x, y)
func square(x, y int, env int) mapdata.Quad {
	const size = 64 << vec.FixedShift
	x <<= vec.FixedShift
	y <<= vec.FixedShift
	return mapdata.Quad{
		Points: [5]vec.Vec2{
			{X: x, Y: y}, {X: x + size, Y: y},
			{X: x, Y: y + size}, {X: x + size, Y: y + size},
			{X: x + size/2, Y: y + size/2},
		},
		PosEnv: env,
	}
}

func testMap() *mapdata.Map {
	m := mapdata.NewEmpty("moving", 10, 10)
	m.Groups = []mapdata.Group{
		{
			Version: 1, ParallaxX: 100, ParallaxY: 100,
			Layers: []mapdata.QuadLayer{{Name: mapdata.QuadLayerHook, Quads: []mapdata.Quad{square(0, 0, -1)}}},
		},
		{
			Version: 2, ParallaxX: 100, ParallaxY: 100,
			Layers: []mapdata.QuadLayer{
				{Name: mapdata.QuadLayerHook, Quads: []mapdata.Quad{square(64, 32, 0)}},
				{Name: "background", Quads: []mapdata.Quad{square(0, 0, -1)}},
				{Name: mapdata.QuadLayerFreeze},
				{Name: mapdata.QuadLayerDeath, Quads: []mapdata.Quad{square(128, 128, 5)}},
			},
		},
	}
	m.Envelopes = []mapdata.Envelope{{StartPoint: 0, NumPoints: 2}}
	m.EnvPoints = []envelope.Point{
		{TimeMs: 0, Values: [3]int32{0, 0, 0}, Curve: envelope.CurveLinear},
		{TimeMs: 1000, Values: [3]int32{100 << vec.FixedShift, 0, 0}, Curve: envelope.CurveLinear},
		{TimeMs: 0, Values: [3]int32{7, 7, 7}},
	}
	return m
}

func TestBuildSelectsRecognisedLayers(t *testing.T) {
	r := Build(testMap(), envelope.DefaultTickSpeed, logging.NewNopLogger())

	require.Equal(t, 2, r.Len(), "старые группы и неизвестные слои пропускаются")
	assert.Equal(t, uint8(tile.Solid), r.Region(0).Payload.Index)
	assert.Equal(t, uint8(tile.Death), r.Region(1).Payload.Index)
	assert.False(t, r.Region(1).Animated(), "квад с отсутствующей огибающей грузится без анимации")
	assert.Len(t, r.Points(), 2, "таблица точек обрезается до последней используемой")
	assert.Nil(t, r.Region(2))
}

func TestTickLinearMidpoint(t *testing.T) {
	r := Build(testMap(), envelope.DefaultTickSpeed, logging.NewNopLogger())
	region := r.Region(0)
	authored := vec.Fx2F(region.Corners[0].X)

	s := r.Tick(25, 0)
	assert.Equal(t, 25, s.Tick)
	assert.Equal(t, authored+50, s.Corners(region.ID)[0].X)
	assert.Equal(t, vec.Fx2F(region.Corners[0].Y), s.Corners(region.ID)[0].Y)
	assert.Same(t, s, r.Current())
}

func TestSnapshotsAreImmutable(t *testing.T) {
	r := Build(testMap(), envelope.DefaultTickSpeed, logging.NewNopLogger())
	first := r.Current()
	before := first.Corners(0)

	r.Tick(10, 0.5)
	assert.Equal(t, before, first.Corners(0), "старый снимок не меняется после нового тика")
	assert.NotSame(t, first, r.Current())
}

func TestDigestIsDeterministic(t *testing.T) {
	a := Build(testMap(), envelope.DefaultTickSpeed, logging.NewNopLogger())
	b := Build(testMap(), envelope.DefaultTickSpeed, logging.NewNopLogger())

	for tick := 0; tick < 200; tick += 13 {
		da := a.Tick(tick, 0.3).Digest()
		db := b.Tick(tick, 0.3).Digest()
		assert.Equal(t, da, db, "тик %d", tick)
	}
	assert.NotEqual(t, a.Tick(5, 0).Digest(), a.Tick(30, 0).Digest())
}

func TestBindingOutsideTableIsDisabled(t *testing.T) {
	m := testMap()
	m.Envelopes[0] = mapdata.Envelope{StartPoint: 1, NumPoints: 10}
	r := Build(m, envelope.DefaultTickSpeed, logging.NewNopLogger())

	assert.False(t, r.Region(0).Animated())
	assert.Len(t, r.Points(), 3)
	assert.NotPanics(t, func() { r.Tick(100, 0) })
}

func TestRegionSemantics(t *testing.T) {
	hook := &Region{Payload: tile.Tile{Index: tile.Solid}}
	assert.True(t, hook.IsSolid())
	unhook := &Region{Payload: tile.Tile{Index: tile.NoHook}}
	assert.True(t, unhook.IsSolid())

	// сквозные тайлы из слоев квадов не приходят и твердыми не считаются
	through := &Region{Payload: tile.Tile{Index: tile.ThroughAll}}
	assert.False(t, through.IsSolid())

	freeze := &Region{Payload: tile.Tile{Index: tile.Freeze}}
	assert.False(t, freeze.IsSolid())
	assert.Equal(t, tile.Freeze, freeze.TileIndex())
	assert.Equal(t, -1, freeze.TimeCheckpoint())

	tele := &Region{Payload: tile.Tile{Skip: PayloadTeleport, Flags: tile.TeleIn, Index: 4}}
	assert.False(t, tele.IsSolid())
	assert.Equal(t, tile.TeleIn, tele.TileIndex())
	assert.Equal(t, 4, tele.TeleportNumber(tile.TeleIn))
	assert.Equal(t, 0, tele.TeleportNumber(tile.TeleInEvil))

	broken := &Region{Payload: tile.Tile{Skip: 7}}
	assert.Panics(t, func() { broken.TileIndex() })
}

func TestPayloadForLayer(t *testing.T) {
	p, ok := PayloadForLayer(mapdata.QuadLayerUnfreeze)
	assert.True(t, ok)
	assert.Equal(t, uint8(tile.Unfreeze), p.Index)

	p, ok = PayloadForLayer(mapdata.QuadLayerUnhook)
	assert.True(t, ok)
	assert.Equal(t, uint8(tile.NoHook), p.Index)

	_, ok = PayloadForLayer("QCfrm")
	assert.False(t, ok)
}
