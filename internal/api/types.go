package api

import (
	"github.com/annel0/mmo-collision/internal/collision"
	"github.com/annel0/mmo-collision/internal/vec"
)

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Point: точка в мировых координатах
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) vec() vec.Vec2Float {
	return vec.Vec2Float{X: p.X, Y: p.Y}
}

func pointOf(v vec.Vec2Float) Point {
	return Point{X: v.X, Y: v.Y}
}

// PointRequest: запрос состояния точки
type PointRequest struct {
	Pos    Point `json:"pos"`
	Player Point `json:"player"` // Позиция игрока для параллакса
}

// PointResponse: состояние точки
type PointResponse struct {
	Solid        bool `json:"solid"`
	Collision    int  `json:"collision"`
	FCollision   int  `json:"front_collision"`
	MapIndex     int  `json:"map_index"` // -1 вне карты
	TileIndex    int  `json:"tile_index"`
	TileFlags    int  `json:"tile_flags"`
	FrontIndex   int  `json:"front_index"`
	Teleport     int  `json:"teleport"`
	SwitchType   int  `json:"switch_type"`
	SwitchNumber int  `json:"switch_number"`
	SpeedupForce int  `json:"speedup_force"`
	Region       int  `json:"region"` // -1 без движущегося региона
	Restrictions int  `json:"restrictions"`
}

// IntersectRequest: запрос трассировки отрезка
type IntersectRequest struct {
	From   Point  `json:"from"`
	To     Point  `json:"to"`
	Player Point  `json:"player"`
	Kind   string `json:"kind"` // line, tele_hook, tele_weapon, no_laser, no_laser_nw, air
}

// IntersectResponse: результат трассировки
type IntersectResponse struct {
	Index           int   `json:"index"`
	Collision       Point `json:"collision"`
	BeforeCollision Point `json:"before_collision"`
	TeleNumber      int   `json:"tele_number,omitempty"`
	Region          int   `json:"region"`
}

func intersectResponse(hit collision.LineHit) IntersectResponse {
	resp := IntersectResponse{
		Index:           hit.Index,
		Collision:       pointOf(hit.Collision),
		BeforeCollision: pointOf(hit.BeforeCollision),
		TeleNumber:      hit.TeleNumber,
		Region:          -1,
	}
	if hit.Region != nil {
		resp.Region = hit.Region.ID
	}
	return resp
}

// MoveRequest: запрос разрешения движения точки или прямоугольника.
// Нулевой Size означает точку.
type MoveRequest struct {
	Pos        Point   `json:"pos"`
	Vel        Point   `json:"vel"`
	Size       Point   `json:"size"`
	Elasticity float32 `json:"elasticity"`
	Static     bool    `json:"static"` // Игнорировать движущиеся регионы
}

// MoveResponse: результат движения
type MoveResponse struct {
	Pos     Point `json:"pos"`
	Vel     Point `json:"vel"`
	Bounces int   `json:"bounces,omitempty"`
}

// RegionState: регион в снимке
type RegionState struct {
	ID      int      `json:"id"`
	Index   int      `json:"index"`
	Skip    int      `json:"skip"`
	Solid   bool     `json:"solid"`
	Corners [4]Point `json:"corners"`
}

// SnapshotResponse: положение регионов на тике
type SnapshotResponse struct {
	Tick    int           `json:"tick"`
	Digest  string        `json:"digest"`
	Regions []RegionState `json:"regions"`
}

// TileEdit: изменение тайла игрового слоя
type TileEdit struct {
	Pos   Point `json:"pos"`
	Index int   `json:"index"`
}

// DoorEdit: запись двери
type DoorEdit struct {
	Pos    Point `json:"pos"`
	Type   int   `json:"type"`
	Flags  int   `json:"flags"`
	Number int   `json:"number"`
}

// ReloadRequest: перезагрузка карты из хранилища
type ReloadRequest struct {
	Name string `json:"name" binding:"required"`
}
