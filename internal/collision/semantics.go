package collision

import (
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/chewxy/math32"
)

// teleNumber возвращает номер телепорта типа teleType для источника или 0
func (c *Collision) teleNumber(src Source, teleType int) int {
	switch s := src.(type) {
	case StaticCell:
		if c.tele == nil || !c.valid(s.Index) {
			return 0
		}
		if int(c.tele[s.Index].Type) == teleType {
			return int(c.tele[s.Index].Number)
		}
		return 0
	case DynamicRegion:
		if s.Region == nil {
			return 0
		}
		return s.Region.TeleportNumber(teleType)
	default:
		panic("collision: неизвестный источник семантики")
	}
}

// IsTeleport возвращает номер обычного телепорта или 0
func (c *Collision) IsTeleport(src Source) int {
	return c.teleNumber(src, tile.TeleIn)
}

// IsEvilTeleport возвращает номер "злого" телепорта (со сбросом скорости) или 0
func (c *Collision) IsEvilTeleport(src Source) int {
	return c.teleNumber(src, tile.TeleInEvil)
}

// IsCheckTeleport возвращает номер телепорта к чекпоинту или 0
func (c *Collision) IsCheckTeleport(src Source) int {
	return c.teleNumber(src, tile.TeleCheckIn)
}

// IsCheckEvilTeleport возвращает номер "злого" телепорта к чекпоинту или 0
func (c *Collision) IsCheckEvilTeleport(src Source) int {
	return c.teleNumber(src, tile.TeleCheckInEvil)
}

// IsTeleCheckpoint возвращает номер телепорт-чекпоинта или 0
func (c *Collision) IsTeleCheckpoint(src Source) int {
	return c.teleNumber(src, tile.TeleCheck)
}

// IsTeleportWeapon возвращает номер телепорта для снарядов или 0
func (c *Collision) IsTeleportWeapon(index int) int {
	return c.teleNumber(StaticCell{Index: index}, tile.TeleInWeapon)
}

// IsTeleportHook возвращает номер телепорта для крюка или 0
func (c *Collision) IsTeleportHook(index int) int {
	return c.teleNumber(StaticCell{Index: index}, tile.TeleInHook)
}

// IsTimeCheckpoint возвращает номер чекпоинта времени игрового слоя или -1
func (c *Collision) IsTimeCheckpoint(src Source) int {
	switch s := src.(type) {
	case StaticCell:
		if !c.valid(s.Index) {
			return -1
		}
		return tile.IsTimeCheckpoint(int(c.tiles[s.Index].Index))
	case DynamicRegion:
		if s.Region == nil {
			return -1
		}
		return s.Region.TimeCheckpoint()
	default:
		panic("collision: неизвестный источник семантики")
	}
}

// IsFTimeCheckpoint возвращает номер чекпоинта времени фронтального слоя или -1
func (c *Collision) IsFTimeCheckpoint(index int) int {
	if !c.valid(index) || c.front == nil {
		return -1
	}
	return tile.IsTimeCheckpoint(int(c.front[index].Index))
}

// IsSpeedup возвращает index, если в клетке есть ускоритель, иначе 0
func (c *Collision) IsSpeedup(index int) int {
	if c.speedup == nil || !c.valid(index) {
		return 0
	}
	if c.speedup[index].Force > 0 {
		return index
	}
	return 0
}

// Speedup: параметры ускорителя
type Speedup struct {
	Direction vec.Vec2Float
	Force     int
	MaxSpeed  int
}

// GetSpeedup возвращает параметры ускорителя клетки. ok == false, если слоя нет.
func (c *Collision) GetSpeedup(index int) (Speedup, bool) {
	if c.speedup == nil || !c.valid(index) {
		return Speedup{}, false
	}
	s := c.speedup[index]
	angle := float32(s.Angle) * (math32.Pi / 180)
	return Speedup{
		Direction: vec.Direction(angle),
		Force:     int(s.Force),
		MaxSpeed:  int(s.MaxSpeed),
	}, true
}

// IsTune возвращает номер зоны настроек или 0
func (c *Collision) IsTune(index int) int {
	if c.tune == nil || !c.valid(index) {
		return 0
	}
	if c.tune[index].Type != 0 {
		return int(c.tune[index].Number)
	}
	return 0
}

// GetSwitchType возвращает тип переключателя или 0
func (c *Collision) GetSwitchType(index int) int {
	if c.sw == nil || !c.valid(index) {
		return 0
	}
	return int(c.sw[index].Type)
}

// GetSwitchNumber возвращает номер переключателя или 0
func (c *Collision) GetSwitchNumber(index int) int {
	if c.sw == nil || !c.valid(index) {
		return 0
	}
	if c.sw[index].Type > 0 && c.sw[index].Number > 0 {
		return int(c.sw[index].Number)
	}
	return 0
}

// GetSwitchDelay возвращает задержку переключателя или 0
func (c *Collision) GetSwitchDelay(index int) int {
	if c.sw == nil || !c.valid(index) {
		return 0
	}
	if c.sw[index].Type > 0 {
		return int(c.sw[index].Delay)
	}
	return 0
}

// IsWallJump проверяет игровой тайл WALLJUMP
func (c *Collision) IsWallJump(index int) bool {
	if !c.valid(index) {
		return false
	}
	return c.tiles[index].Index == tile.WallJump
}

// passesDir проверяет направленный проход для поворота тайла: 0 вверх, 90 вправо,
// 180 вниз, 270 влево
func passesDir(flags uint8, p0, p1 vec.Vec2Float) bool {
	switch flags {
	case tile.Rotation0:
		return p0.Y > p1.Y
	case tile.Rotation90:
		return p0.X < p1.X
	case tile.Rotation180:
		return p0.Y < p1.Y
	case tile.Rotation270:
		return p0.X > p1.X
	}
	return false
}

// IsThrough проверяет, пропускает ли клетка (x, y) отрезок p0-p1.
// (xoff, yoff): смещение к соседней клетке, где может лежать тайл THROUGH.
func (c *Collision) IsThrough(x, y, xoff, yoff int, p0, p1 vec.Vec2Float) bool {
	if c.tiles == nil {
		return false
	}
	pos := c.cellIndex(x, y)
	if c.front != nil {
		f := c.front[pos]
		if f.Index == tile.ThroughAll || f.Index == tile.ThroughCut {
			return true
		}
		if f.Index == tile.ThroughDir && passesDir(f.Flags, p0, p1) {
			return true
		}
	}
	off := c.cellIndex(x+xoff, y+yoff)
	return c.tiles[off].Index == tile.Through || (c.front != nil && c.front[off].Index == tile.Through)
}

// IsHookBlocker проверяет, останавливает ли клетка (x, y) крюк, летящий из p0 в p1
func (c *Collision) IsHookBlocker(x, y int, p0, p1 vec.Vec2Float) bool {
	if c.tiles == nil {
		return false
	}
	pos := c.cellIndex(x, y)
	g := c.tiles[pos]
	if g.Index == tile.ThroughAll || (c.front != nil && c.front[pos].Index == tile.ThroughAll) {
		return true
	}
	// блокирует полет против направления прохода, то есть прямой путь p1 -> p0
	if g.Index == tile.ThroughDir && passesDir(g.Flags, p1, p0) {
		return true
	}
	if c.front != nil && c.front[pos].Index == tile.ThroughDir && passesDir(c.front[pos].Flags, p1, p0) {
		return true
	}
	return false
}

// ThroughOffset возвращает смещение в одну клетку против доминирующей оси движения
func ThroughOffset(p0, p1 vec.Vec2Float) (int, int) {
	x := p0.X - p1.X
	y := p0.Y - p1.Y
	if math32.Abs(x) > math32.Abs(y) {
		if x < 0 {
			return -CellSize, 0
		}
		return CellSize, 0
	}
	if y < 0 {
		return 0, -CellSize
	}
	return 0, CellSize
}
