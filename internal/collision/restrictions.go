package collision

import (
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
)

// Биты маски ограничений движения
const (
	CantMoveLeft  = 1 << 0
	CantMoveRight = 1 << 1
	CantMoveUp    = 1 << 2
	CantMoveDown  = 1 << 3
)

// DefaultRestrictionDistance: расстояние проб от центра персонажа
const DefaultRestrictionDistance = 18

// SwitchActiveFunc сообщает, активен ли переключатель с номером number
type SwitchActiveFunc func(number int) bool

type moveDir int

const (
	dirHere moveDir = iota
	dirRight
	dirDown
	dirLeft
	dirUp
	numDirs
)

var dirOffsets = [numDirs]vec.Vec2Float{
	dirHere:  {X: 0, Y: 0},
	dirRight: {X: 1, Y: 0},
	dirDown:  {X: 0, Y: 1},
	dirLeft:  {X: -1, Y: 0},
	dirUp:    {X: 0, Y: -1},
}

// ClampVel обнуляет компоненты скорости, запрещенные маской
func ClampVel(restrictions int, vel vec.Vec2Float) vec.Vec2Float {
	if vel.X > 0 && restrictions&CantMoveRight != 0 {
		vel.X = 0
	}
	if vel.X < 0 && restrictions&CantMoveLeft != 0 {
		vel.X = 0
	}
	if vel.Y > 0 && restrictions&CantMoveDown != 0 {
		vel.Y = 0
	}
	if vel.Y < 0 && restrictions&CantMoveUp != 0 {
		vel.Y = 0
	}
	return vel
}

// rawRestrictions возвращает все направления, которые блокирует стоппер
func rawRestrictions(index, flags int) int {
	flags &= tile.RotationMask
	switch index {
	case tile.Stop:
		switch flags {
		case tile.Rotation0:
			return CantMoveDown
		case tile.Rotation90:
			return CantMoveLeft
		case tile.Rotation180:
			return CantMoveUp
		case tile.Rotation270:
			return CantMoveRight

		case tile.FlagYFlip ^ tile.Rotation0:
			return CantMoveUp
		case tile.FlagYFlip ^ tile.Rotation90:
			return CantMoveRight
		case tile.FlagYFlip ^ tile.Rotation180:
			return CantMoveDown
		case tile.FlagYFlip ^ tile.Rotation270:
			return CantMoveLeft
		}
	case tile.StopS:
		switch flags {
		case tile.Rotation0, tile.Rotation180, tile.FlagYFlip ^ tile.Rotation0, tile.FlagYFlip ^ tile.Rotation180:
			return CantMoveDown | CantMoveUp
		case tile.Rotation90, tile.Rotation270, tile.FlagYFlip ^ tile.Rotation90, tile.FlagYFlip ^ tile.Rotation270:
			return CantMoveLeft | CantMoveRight
		}
	case tile.StopA:
		return CantMoveLeft | CantMoveRight | CantMoveUp | CantMoveDown
	}
	return 0
}

func dirMask(d moveDir) int {
	switch d {
	case dirHere:
		return 0
	case dirRight:
		return CantMoveRight
	case dirDown:
		return CantMoveDown
	case dirLeft:
		return CantMoveLeft
	case dirUp:
		return CantMoveUp
	}
	panic("collision: некорректное направление")
}

// restrictionsFor учитывает стоппер только если он мешает зайти на него.
// Односторонний стоппер действует и когда персонаж стоит на нем.
func restrictionsFor(d moveDir, index, flags int) int {
	result := rawRestrictions(index, flags)
	if d == dirHere && index == tile.Stop {
		return result
	}
	return result & dirMask(d)
}

// GetMoveRestrictions вычисляет маску запрещенных направлений в точке pos.
// Пробы делаются в центре и на расстоянии distance по четырем осям.
// overrideCenter >= 0 заменяет клетку центральной пробы. switchActive может быть nil,
// тогда двери не учитываются.
func (c *Collision) GetMoveRestrictions(switchActive SwitchActiveFunc, pos vec.Vec2Float, distance float32, overrideCenter int) int {
	mustf(distance >= 0 && distance <= CellSize, "некорректное расстояние %v", distance)
	if c.tiles == nil {
		return 0
	}

	restrictions := 0
	for d := dirHere; d < numDirs; d++ {
		index := c.GetPureMapIndex(pos.Add(dirOffsets[d].Mul(distance)))
		if d == dirHere && overrideCenter >= 0 {
			index = overrideCenter
		}

		restrictions |= restrictionsFor(d, c.GetTileIndex(index), c.GetTileFlags(index))
		restrictions |= restrictionsFor(d, c.GetFTileIndex(index), c.GetFTileFlags(index))

		if switchActive != nil && switchActive(c.GetDTileNumber(index)) {
			restrictions |= restrictionsFor(d, c.GetDTileIndex(index), c.GetDTileFlags(index))
		}
	}
	return restrictions
}

// MoveRestrictionsAt: GetMoveRestrictions без дверей на расстоянии из Options
func (c *Collision) MoveRestrictionsAt(pos vec.Vec2Float) int {
	return c.GetMoveRestrictions(nil, pos, c.opts.RestrictionDistance, -1)
}
