package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/collision"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/annel0/mmo-collision/internal/mapgen"
	"github.com/annel0/mmo-collision/internal/metrics"
	"github.com/annel0/mmo-collision/internal/sim"
	"github.com/annel0/mmo-collision/internal/storage"
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *DebugServer
	loop   *sim.Loop
	store  *storage.MapStore
	editor string
	viewer string
}

// corridorMap: карта 6x4 со стенами по краям и столбом в клетке (3, 2)
func corridorMap(name string) *mapdata.Map {
	m := mapdata.NewEmpty(name, 6, 4)
	for x := 0; x < 6; x++ {
		m.Set(x, 0, tile.Solid)
		m.Set(x, 3, tile.Solid)
	}
	for y := 0; y < 4; y++ {
		m.Set(0, y, tile.Solid)
		m.Set(5, y, tile.Solid)
	}
	m.Set(3, 2, tile.NoHook)
	return m
}

func newTestEnv(t *testing.T, m *mapdata.Map) *testEnv {
	t.Helper()
	coll := collision.New(collision.DefaultOptions(), logging.NewNopLogger())
	require.NoError(t, coll.Init(m))

	reg := prometheus.NewRegistry()
	loop := sim.NewLoop(coll, nil, logging.NewNopLogger())

	store, err := storage.NewMapStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	issuer, err := auth.NewTokenIssuer("", time.Hour)
	require.NoError(t, err)
	editor, err := issuer.Issue("alice", true)
	require.NoError(t, err)
	viewer, err := issuer.Issue("bob", false)
	require.NoError(t, err)

	server := NewDebugServer(Config{
		Loop:     loop,
		Maps:     store,
		Issuer:   issuer,
		Queries:  metrics.NewCollectors("collision", reg),
		Registry: reg,
		Logger:   logging.NewNopLogger(),
	})
	return &testEnv{server: server, loop: loop, store: store, editor: editor, viewer: viewer}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// decode разбирает GenericResponse и кладет Data в out
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) GenericResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return GenericResponse{Success: raw.Success, Message: raw.Message}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, corridorMap("health"))
	w := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestPointQuery(t *testing.T) {
	env := newTestEnv(t, corridorMap("point"))

	w := env.do(t, http.MethodPost, "/api/point", PointRequest{Pos: Point{X: 100, Y: 80}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp PointResponse
	assert.True(t, decode(t, w, &resp).Success)
	assert.True(t, resp.Solid)
	assert.Equal(t, tile.NoHook, resp.Collision)
	assert.Equal(t, 2*6+3, resp.MapIndex)
	assert.Equal(t, -1, resp.Region)

	w = env.do(t, http.MethodPost, "/api/point", PointRequest{Pos: Point{X: 48, Y: 48}}, "")
	decode(t, w, &resp)
	assert.False(t, resp.Solid)
	assert.Equal(t, 0, resp.Collision)
}

func TestPointRejectsBadJSON(t *testing.T) {
	env := newTestEnv(t, corridorMap("bad"))
	req := httptest.NewRequest(http.MethodPost, "/api/point", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntersect(t *testing.T) {
	env := newTestEnv(t, corridorMap("intersect"))

	w := env.do(t, http.MethodPost, "/api/intersect", IntersectRequest{
		From: Point{X: 48, Y: 80},
		To:   Point{X: 150, Y: 80},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp IntersectResponse
	decode(t, w, &resp)
	assert.Equal(t, tile.NoHook, resp.Index, "луч упирается в столб")
	assert.InDelta(t, 96, resp.Collision.X, 1)
	assert.Less(t, resp.BeforeCollision.X, resp.Collision.X)

	w = env.do(t, http.MethodPost, "/api/intersect", IntersectRequest{Kind: "bogus"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMove(t *testing.T) {
	env := newTestEnv(t, corridorMap("move"))

	w := env.do(t, http.MethodPost, "/api/move", MoveRequest{
		Pos:  Point{X: 48, Y: 48},
		Vel:  Point{X: 0, Y: 40},
		Size: Point{X: 28, Y: 28},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp MoveResponse
	decode(t, w, &resp)
	assert.Equal(t, float32(0), resp.Vel.Y, "пол останавливает падение")
	assert.Less(t, resp.Pos.Y, float32(82))

	w = env.do(t, http.MethodPost, "/api/move", MoveRequest{
		Pos: Point{X: 48, Y: 48},
		Vel: Point{X: -40, Y: 0},
	}, "")
	decode(t, w, &resp)
	assert.Equal(t, 1, resp.Bounces, "точка отражается от левой стены")
}

func TestMoveClampsHugeVelocity(t *testing.T) {
	env := newTestEnv(t, corridorMap("fast"))

	w := env.do(t, http.MethodPost, "/api/move", MoveRequest{
		Pos:  Point{X: 48, Y: 48},
		Vel:  Point{X: 1e30, Y: 0},
		Size: Point{X: 28, Y: 28},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp MoveResponse
	decode(t, w, &resp)
	assert.Less(t, resp.Pos.X, float32(5*32), "прямоугольник остается внутри коридора")
	assert.LessOrEqual(t, resp.Vel.X, float32(MaxMoveSpeed))
}

func TestClampSpeed(t *testing.T) {
	slow := vec.Vec2Float{X: 30, Y: -40}
	assert.Equal(t, slow, clampSpeed(slow, MaxMoveSpeed))

	fast := clampSpeed(vec.Vec2Float{X: 3e30, Y: -4e30}, 50)
	assert.InDelta(t, 30, fast.X, 1e-3, "направление сохраняется")
	assert.InDelta(t, -40, fast.Y, 1e-3)
}

func TestSnapshotAndStatus(t *testing.T) {
	env := newTestEnv(t, mapgen.NewGenerator(11).Generate("platforms", 64, 64))
	env.loop.Step()

	w := env.do(t, http.MethodGet, "/api/snapshot", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap SnapshotResponse
	decode(t, w, &snap)
	assert.Equal(t, 1, snap.Tick)
	assert.Len(t, snap.Digest, 16)
	assert.NotEmpty(t, snap.Regions)

	w = env.do(t, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tick":1`)
	assert.Contains(t, w.Body.String(), `"uptime"`)
}

func TestSnapshotWithoutMap(t *testing.T) {
	env := newTestEnv(t, corridorMap("gone"))
	env.loop.Do(func(c *collision.Collision) { c.Dest() })

	w := env.do(t, http.MethodGet, "/api/snapshot", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAntibotExport(t *testing.T) {
	env := newTestEnv(t, corridorMap("antibot"))

	w := env.do(t, http.MethodGet, "/api/antibot", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data, err := collision.ReadAntibot(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 6, data.Width)
	assert.Equal(t, byte(tile.NoHook), data.Tiles[2*6+3])
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t, corridorMap("admin"))
	edit := TileEdit{Pos: Point{X: 48, Y: 48}, Index: tile.Solid}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/admin/tile", edit, "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/admin/tile", edit, env.viewer).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/admin/tile", edit, env.editor).Code)

	env.loop.View(func(c *collision.Collision, _ int) {
		assert.Equal(t, tile.Solid, c.GetTile(48, 48), "тайл заменен")
	})

	edit.Index = 300
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/admin/tile", edit, env.editor).Code)
}

func TestAdminReload(t *testing.T) {
	env := newTestEnv(t, corridorMap("first"))
	_, err := env.store.Save(mapdata.NewEmpty("second", 10, 3))
	require.NoError(t, err)
	env.loop.Step()

	w := env.do(t, http.MethodPost, "/api/admin/reload", ReloadRequest{Name: "second"}, env.editor)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.loop.CurrentTick())
	env.loop.View(func(c *collision.Collision, _ int) {
		assert.Equal(t, 10, c.Width())
	})

	w = env.do(t, http.MethodPost, "/api/admin/reload", ReloadRequest{Name: "missing"}, env.editor)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDisabledWithoutIssuer(t *testing.T) {
	coll := collision.New(collision.DefaultOptions(), logging.NewNopLogger())
	require.NoError(t, coll.Init(corridorMap("ro")))
	server := NewDebugServer(Config{
		Loop:     sim.NewLoop(coll, nil, logging.NewNopLogger()),
		Registry: prometheus.NewRegistry(),
		Logger:   logging.NewNopLogger(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/tile", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueriesAreCounted(t *testing.T) {
	env := newTestEnv(t, corridorMap("count"))
	env.do(t, http.MethodPost, "/api/point", PointRequest{}, "")

	w := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `collision_queries_total{op="point"} 1`)
	assert.Contains(t, w.Body.String(), "collision_debug_http_request_duration_seconds")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1д 1ч 0м 0с", formatUptime(25*time.Hour))
}
