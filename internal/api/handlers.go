package api

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/collision"
	"github.com/annel0/mmo-collision/internal/middleware"
	"github.com/annel0/mmo-collision/internal/storage"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/gin-gonic/gin"
)

// MaxMoveSpeed ограничивает скорость в /api/move: число подшагов MoveBox
// растет линейно со скоростью
const MaxMoveSpeed = 6000

// intersectors: семейство трассировок по имени
var intersectors = map[string]func(c *collision.Collision, req IntersectRequest) collision.LineHit{
	"line": func(c *collision.Collision, req IntersectRequest) collision.LineHit {
		return c.IntersectLine(req.From.vec(), req.To.vec())
	},
	"tele_hook": func(c *collision.Collision, req IntersectRequest) collision.LineHit {
		return c.IntersectLineTeleHook(req.From.vec(), req.To.vec(), req.Player.vec())
	},
	"tele_weapon": func(c *collision.Collision, req IntersectRequest) collision.LineHit {
		return c.IntersectLineTeleWeapon(req.From.vec(), req.To.vec())
	},
	"no_laser": func(c *collision.Collision, req IntersectRequest) collision.LineHit {
		return c.IntersectNoLaser(req.From.vec(), req.To.vec())
	},
	"no_laser_nw": func(c *collision.Collision, req IntersectRequest) collision.LineHit {
		return c.IntersectNoLaserNW(req.From.vec(), req.To.vec())
	},
	"air": func(c *collision.Collision, req IntersectRequest) collision.LineHit {
		return c.IntersectAir(req.From.vec(), req.To.vec())
	},
}

// handleStatus возвращает состояние карты и процесса
func (ds *DebugServer) handleStatus(c *gin.Context) {
	data := gin.H{"process": ds.metrics.Status()}

	ds.loop.View(func(coll *collision.Collision, tick int) {
		regions := 0
		if reg := coll.MovingTiles(); reg != nil {
			regions = reg.Len()
		}
		data["map"] = gin.H{
			"width":          coll.Width(),
			"height":         coll.Height(),
			"tick":           tick,
			"tick_speed":     coll.Options().TickSpeed,
			"regions":        regions,
			"highest_switch": coll.HighestSwitchNumber(),
		}
	})

	ok(c, "Состояние сервера", data)
}

// handleSnapshot возвращает текущее положение движущихся регионов
func (ds *DebugServer) handleSnapshot(c *gin.Context) {
	var resp *SnapshotResponse
	ds.loop.View(func(coll *collision.Collision, _ int) {
		snap := coll.Snapshot()
		if snap == nil {
			return
		}

		regions := coll.MovingTiles().Regions()
		resp = &SnapshotResponse{
			Tick:    snap.Tick,
			Digest:  fmt.Sprintf("%016x", snap.Digest()),
			Regions: make([]RegionState, 0, len(regions)),
		}
		for i := range regions {
			r := &regions[i]
			state := RegionState{
				ID:    r.ID,
				Index: int(r.Payload.Index),
				Skip:  int(r.Payload.Skip),
				Solid: r.IsSolid(),
			}
			for k, corner := range snap.Corners(r.ID) {
				state.Corners[k] = pointOf(corner)
			}
			resp.Regions = append(resp.Regions, state)
		}
	})

	if resp == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Карта не загружена",
		})
		return
	}
	ds.count("snapshot")
	ok(c, "Снимок регионов", resp)
}

// handleAntibot отдает сжатую сетку для античита
func (ds *DebugServer) handleAntibot(c *gin.Context) {
	var buf bytes.Buffer
	var err error
	ds.loop.View(func(coll *collision.Collision, _ int) {
		err = coll.ExportAntibot(&buf)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Ошибка экспорта: %v", err),
		})
		return
	}

	ds.count("antibot")
	c.Data(http.StatusOK, "application/zstd", buf.Bytes())
}

// handlePoint возвращает состояние точки карты
func (ds *DebugServer) handlePoint(c *gin.Context) {
	var req PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var resp PointResponse
	ds.loop.View(func(coll *collision.Collision, _ int) {
		pos := req.Pos.vec()
		index := coll.GetPureMapIndex(pos)

		resp = PointResponse{
			Solid:        coll.CheckPoint(pos),
			Collision:    coll.GetCollisionAt(pos),
			FCollision:   coll.GetFCollisionAt(pos),
			MapIndex:     index,
			TileIndex:    coll.GetTileIndex(index),
			TileFlags:    coll.GetTileFlags(index),
			FrontIndex:   coll.GetFTileIndex(index),
			Teleport:     coll.IsTeleport(collision.StaticCell{Index: index}),
			SwitchType:   coll.GetSwitchType(index),
			SwitchNumber: coll.GetSwitchNumber(index),
			Region:       -1,
			Restrictions: coll.MoveRestrictionsAt(pos),
		}
		if s, found := coll.GetSpeedup(index); found {
			resp.SpeedupForce = s.Force
		}
		if region := coll.GetQuadCollisionAt(pos, req.Player.vec()); region != nil {
			resp.Region = region.ID
		}
	})

	ds.count("point")
	ok(c, "Состояние точки", resp)
}

// handleIntersect трассирует отрезок
func (ds *DebugServer) handleIntersect(c *gin.Context) {
	var req IntersectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	if req.Kind == "" {
		req.Kind = "line"
	}
	intersect, found := intersectors[req.Kind]
	if !found {
		badRequest(c, fmt.Sprintf("Неизвестный вид трассировки: %s", req.Kind))
		return
	}

	var hit collision.LineHit
	ds.loop.View(func(coll *collision.Collision, _ int) {
		hit = intersect(coll, req)
	})

	ds.count("intersect_" + req.Kind)
	ok(c, "Результат трассировки", intersectResponse(hit))
}

// handleMove разрешает движение точки или прямоугольника за один тик
func (ds *DebugServer) handleMove(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	vel := clampSpeed(req.Vel.vec(), MaxMoveSpeed)

	var resp MoveResponse
	op := "move_box"
	ds.loop.View(func(coll *collision.Collision, _ int) {
		var pos vec.Vec2Float
		switch {
		case req.Size == (Point{}):
			op = "move_point"
			pos, vel, resp.Bounces = coll.MovePoint(req.Pos.vec(), vel, req.Elasticity)
		case req.Static:
			op = "move_box_static"
			pos, vel = coll.MoveBoxStatic(req.Pos.vec(), vel, req.Size.vec(), req.Elasticity)
		default:
			pos, vel = coll.MoveBox(req.Pos.vec(), vel, req.Size.vec(), req.Elasticity)
		}
		resp.Pos = pointOf(pos)
		resp.Vel = pointOf(vel)
	})

	ds.count(op)
	ok(c, "Результат движения", resp)
}

// handleSetTile заменяет тайл игрового слоя
func (ds *DebugServer) handleSetTile(c *gin.Context) {
	var req TileEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	if req.Index < 0 || req.Index > 255 {
		badRequest(c, "Индекс тайла вне диапазона 0..255")
		return
	}

	ds.loop.Do(func(coll *collision.Collision) {
		coll.SetCollisionAt(req.Pos.vec(), req.Index)
	})

	ds.logger.Info("тайл в (%.0f, %.0f) заменен на %d оператором %s", req.Pos.X, req.Pos.Y, req.Index, operator(c))
	ok(c, "Тайл изменен", nil)
}

// handleSetDoor записывает дверь
func (ds *DebugServer) handleSetDoor(c *gin.Context) {
	var req DoorEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	ds.loop.Do(func(coll *collision.Collision) {
		coll.SetDCollisionAt(req.Pos.vec(), req.Type, req.Flags, req.Number)
	})

	ds.logger.Info("дверь %d в (%.0f, %.0f) записана оператором %s", req.Number, req.Pos.X, req.Pos.Y, operator(c))
	ok(c, "Дверь записана", nil)
}

// handleReload загружает карту из хранилища и сбрасывает тики
func (ds *DebugServer) handleReload(c *gin.Context) {
	var req ReloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}
	if ds.maps == nil {
		c.JSON(http.StatusNotImplemented, GenericResponse{
			Success: false,
			Message: "Хранилище карт не подключено",
		})
		return
	}

	m, err := ds.maps.Load(req.Name)
	if errors.Is(err, storage.ErrMapNotFound) {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	if err == nil {
		err = ds.loop.Reload(m)
	}
	if err != nil {
		ds.logger.Error("перезагрузка карты %q: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	ds.logger.Info("карта %q перезагружена оператором %s", req.Name, operator(c))
	ok(c, "Карта перезагружена", gin.H{"name": m.Name, "width": m.Width, "height": m.Height})
}

// clampSpeed укорачивает скорость до limit, сохраняя направление.
// Длина считается в float64: квадрат большой float32 скорости переполняется.
func clampSpeed(vel vec.Vec2Float, limit float64) vec.Vec2Float {
	length := math.Hypot(float64(vel.X), float64(vel.Y))
	if length <= limit {
		return vel
	}
	scale := limit / length
	return vec.Vec2Float{X: float32(float64(vel.X) * scale), Y: float32(float64(vel.Y) * scale)}
}

// operator возвращает имя оператора из токена запроса
func operator(c *gin.Context) string {
	if value, exists := c.Get(middleware.OperatorKey); exists {
		if claims, isClaims := value.(*auth.Claims); isClaims {
			return claims.Operator
		}
	}
	return "?"
}
