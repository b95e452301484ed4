package collision

import (
	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/chewxy/math32"
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// valid проверяет, что индекс клетки лежит в пределах сетки
func (c *Collision) valid(index int) bool {
	return index >= 0 && index < len(c.tiles)
}

// cellIndex переводит целые мировые координаты в индекс клетки с ограничением по краям
func (c *Collision) cellIndex(x, y int) int {
	nx := clampInt(x/CellSize, 0, c.width-1)
	ny := clampInt(y/CellSize, 0, c.height-1)
	return ny*c.width + nx
}

// truncIndex как cellIndex, но координаты усекаются, а не округляются
func (c *Collision) truncIndex(pos vec.Vec2Float) int {
	return c.cellIndex(int(pos.X), int(pos.Y))
}

// GetTile возвращает индекс игрового тайла, если он в диапазоне SOLID..NOLASER, иначе 0
func (c *Collision) GetTile(x, y int) int {
	if c.tiles == nil {
		return 0
	}
	index := int(c.tiles[c.cellIndex(x, y)].Index)
	if tile.IsBlockingRange(index) {
		return index
	}
	return 0
}

// GetFTile возвращает индекс фронтального тайла, если это DEATH или NOLASER, иначе 0
func (c *Collision) GetFTile(x, y int) int {
	if c.front == nil || c.tiles == nil {
		return 0
	}
	index := int(c.front[c.cellIndex(x, y)].Index)
	if index == tile.Death || index == tile.NoLaser {
		return index
	}
	return 0
}

// IsSolid проверяет клетку на SOLID или NOHOOK
func (c *Collision) IsSolid(x, y int) bool {
	index := c.GetTile(x, y)
	return index == tile.Solid || index == tile.NoHook
}

// CheckPoint проверяет статическую твердость точки
func (c *Collision) CheckPoint(pos vec.Vec2Float) bool {
	return c.IsSolid(vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y))
}

// GetCollisionAt возвращает GetTile для округленной точки
func (c *Collision) GetCollisionAt(pos vec.Vec2Float) int {
	return c.GetTile(vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y))
}

// GetFCollisionAt возвращает GetFTile для округленной точки
func (c *Collision) GetFCollisionAt(pos vec.Vec2Float) int {
	return c.GetFTile(vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y))
}

// TestBox проверяет статическую твердость четырех углов прямоугольника с центром pos
func (c *Collision) TestBox(pos, size vec.Vec2Float) bool {
	half := size.Mul(0.5)
	return c.CheckPoint(vec.Vec2Float{X: pos.X - half.X, Y: pos.Y - half.Y}) ||
		c.CheckPoint(vec.Vec2Float{X: pos.X + half.X, Y: pos.Y - half.Y}) ||
		c.CheckPoint(vec.Vec2Float{X: pos.X - half.X, Y: pos.Y + half.Y}) ||
		c.CheckPoint(vec.Vec2Float{X: pos.X + half.X, Y: pos.Y + half.Y})
}

// IsNoLaser проверяет игровой тайл NOLASER
func (c *Collision) IsNoLaser(x, y int) bool {
	return c.GetTile(x, y) == tile.NoLaser
}

// IsFNoLaser проверяет фронтальный тайл NOLASER
func (c *Collision) IsFNoLaser(x, y int) bool {
	return c.GetFTile(x, y) == tile.NoLaser
}

// GetPureMapIndex возвращает индекс клетки для мировой точки
func (c *Collision) GetPureMapIndex(pos vec.Vec2Float) int {
	if c.tiles == nil {
		return -1
	}
	return c.cellIndex(vec.RoundToInt(pos.X), vec.RoundToInt(pos.Y))
}

// GetMapIndex возвращает индекс клетки, если в ней есть значимый тайл, иначе -1
func (c *Collision) GetMapIndex(pos vec.Vec2Float) int {
	if c.tiles == nil {
		return -1
	}
	index := c.truncIndex(pos)
	if c.TileExists(index) {
		return index
	}
	return -1
}

// GetMapIndices возвращает значимые клетки на отрезке в порядке прохождения.
// maxIndices > 0 ограничивает число результатов.
func (c *Collision) GetMapIndices(prev, pos vec.Vec2Float, maxIndices int) []int {
	if c.tiles == nil {
		return nil
	}

	d := prev.DistanceTo(pos)
	if d == 0 {
		index := c.truncIndex(pos)
		if c.TileExists(index) {
			return []int{index}
		}
		return nil
	}

	var indices []int
	last := -1
	end := int(d + 1)
	for i := 0; i < end; i++ {
		index := c.truncIndex(vec.Mix(prev, pos, float32(i)/d))
		if index == last || !c.TileExists(index) {
			continue
		}
		if maxIndices > 0 && len(indices) >= maxIndices {
			break
		}
		indices = append(indices, index)
		last = index
	}
	return indices
}

// TileExists проверяет, несет ли клетка игровую семантику в любом слое
// или соседствует со стоппером
func (c *Collision) TileExists(index int) bool {
	if !c.valid(index) {
		return false
	}
	if tile.IsExisting(int(c.tiles[index].Index)) {
		return true
	}
	if c.front != nil && tile.IsExisting(int(c.front[index].Index)) {
		return true
	}
	if c.tele != nil {
		switch c.tele[index].Type {
		case tile.TeleIn, tile.TeleInEvil, tile.TeleCheckInEvil, tile.TeleCheck, tile.TeleCheckIn:
			return true
		}
	}
	if c.speedup != nil && c.speedup[index].Force > 0 {
		return true
	}
	if c.door != nil && c.door[index].Index != 0 {
		return true
	}
	if c.sw != nil && c.sw[index].Type != 0 {
		return true
	}
	if c.tune != nil && c.tune[index].Type != 0 {
		return true
	}
	return c.TileExistsNext(index)
}

// stopperAt описывает стоппер в клетке соседа
type stopperAt struct {
	index, flags uint8
}

func (s stopperAt) is(index, flags int) bool {
	return int(s.index) == index && int(s.flags) == flags
}

func (s stopperAt) blocks() bool {
	return s.index == tile.StopA || s.index == tile.StopS
}

// TileExistsNext проверяет, есть ли у клетки сосед-стоппер, направленный на нее
func (c *Collision) TileExistsNext(index int) bool {
	if !c.valid(index) {
		return false
	}
	cells := len(c.tiles)

	left := index
	if index-1 > 0 {
		left = index - 1
	}
	right := index
	if index+1 < cells {
		right = index + 1
	}
	below := index
	if index+c.width < cells {
		below = index + c.width
	}
	above := index
	if index-c.width > 0 {
		above = index - c.width
	}

	check := func(at func(int) stopperAt) bool {
		r, l, b, a := at(right), at(left), at(below), at(above)
		if r.is(tile.Stop, tile.Rotation270) || l.is(tile.Stop, tile.Rotation90) {
			return true
		}
		if b.is(tile.Stop, tile.Rotation0) || a.is(tile.Stop, tile.Rotation180) {
			return true
		}
		return r.blocks() || l.blocks() || b.blocks() || a.blocks()
	}

	if check(func(i int) stopperAt { return stopperAt{c.tiles[i].Index, c.tiles[i].Flags} }) {
		return true
	}
	if c.front != nil && check(func(i int) stopperAt { return stopperAt{c.front[i].Index, c.front[i].Flags} }) {
		return true
	}
	if c.door != nil && check(func(i int) stopperAt { return stopperAt{c.door[i].Index, c.door[i].Flags} }) {
		return true
	}
	return false
}

// GetPos возвращает центр клетки
func (c *Collision) GetPos(index int) vec.Vec2Float {
	if index < 0 || c.width == 0 {
		return vec.Vec2Float{}
	}
	x := index % c.width
	y := index / c.width
	return vec.Vec2Float{X: float32(x*CellSize + CellSize/2), Y: float32(y*CellSize + CellSize/2)}
}

// GetTileIndex возвращает индекс игрового тайла клетки
func (c *Collision) GetTileIndex(index int) int {
	if !c.valid(index) {
		return 0
	}
	return int(c.tiles[index].Index)
}

// GetFTileIndex возвращает индекс фронтального тайла клетки
func (c *Collision) GetFTileIndex(index int) int {
	if !c.valid(index) || c.front == nil {
		return 0
	}
	return int(c.front[index].Index)
}

// GetTileFlags возвращает флаги игрового тайла клетки
func (c *Collision) GetTileFlags(index int) int {
	if !c.valid(index) {
		return 0
	}
	return int(c.tiles[index].Flags)
}

// GetFTileFlags возвращает флаги фронтального тайла клетки
func (c *Collision) GetFTileFlags(index int) int {
	if !c.valid(index) || c.front == nil {
		return 0
	}
	return int(c.front[index].Flags)
}

// GetIndexAt возвращает игровой индекс клетки (nx, ny) с ограничением по краям
func (c *Collision) GetIndexAt(nx, ny int) int {
	if c.tiles == nil {
		return 0
	}
	return int(c.tiles[clampInt(ny, 0, c.height-1)*c.width+clampInt(nx, 0, c.width-1)].Index)
}

// GetFIndexAt возвращает фронтальный индекс клетки (nx, ny)
func (c *Collision) GetFIndexAt(nx, ny int) int {
	if c.front == nil || c.tiles == nil {
		return 0
	}
	return int(c.front[clampInt(ny, 0, c.height-1)*c.width+clampInt(nx, 0, c.width-1)].Index)
}

// GetIndex возвращает первую клетку на отрезке, которую должны обработать
// телепорты или ускорители, либо -1
func (c *Collision) GetIndex(prev, pos vec.Vec2Float) int {
	if c.tiles == nil {
		return -1
	}

	hit := func(index int) bool {
		return c.tele != nil || (c.speedup != nil && c.speedup[index].Force > 0)
	}

	d := prev.DistanceTo(pos)
	if d == 0 {
		if index := c.truncIndex(pos); hit(index) {
			return index
		}
	}

	steps := int(math32.Ceil(d))
	for i := 0; i < steps; i++ {
		index := c.truncIndex(vec.Mix(prev, pos, float32(i)/d))
		if hit(index) {
			return index
		}
	}
	return -1
}

// Entity возвращает индекс сущности слоя в клетке (x, y).
// Координаты вне карты означают поврежденную карту и логируются.
func (c *Collision) Entity(x, y int, layer tile.LayerID) int {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		c.logger.Error("обращение к слою %s вне карты: (%d, %d), карта повреждена", layer, x, y)
		return 0
	}
	i := y*c.width + x
	switch layer {
	case tile.LayerGame:
		return int(c.tiles[i].Index) - tile.EntityOffset
	case tile.LayerFront:
		if c.front != nil {
			return int(c.front[i].Index) - tile.EntityOffset
		}
	case tile.LayerSwitch:
		if c.sw != nil {
			return int(c.sw[i].Type) - tile.EntityOffset
		}
	case tile.LayerTele:
		if c.tele != nil {
			return int(c.tele[i].Type) - tile.EntityOffset
		}
	case tile.LayerSpeedup:
		if c.speedup != nil {
			return int(c.speedup[i].Type) - tile.EntityOffset
		}
	case tile.LayerTune:
		if c.tune != nil {
			return int(c.tune[i].Type) - tile.EntityOffset
		}
	}
	return 0
}

// SetCollisionAt заменяет индекс игрового тайла в клетке точки
func (c *Collision) SetCollisionAt(pos vec.Vec2Float, id int) {
	if c.tiles == nil {
		return
	}
	c.tiles[c.GetPureMapIndex(pos)].Index = uint8(id)
}

// SetDCollisionAt записывает дверь в клетку точки
func (c *Collision) SetDCollisionAt(pos vec.Vec2Float, typ, flags, number int) {
	if c.door == nil {
		return
	}
	d := &c.door[c.GetPureMapIndex(pos)]
	d.Index = uint8(typ)
	d.Flags = uint8(flags)
	d.Number = int32(number)
}

// GetDTileIndex возвращает индекс двери или 0
func (c *Collision) GetDTileIndex(index int) int {
	if c.door == nil || !c.valid(index) {
		return 0
	}
	return int(c.door[index].Index)
}

// GetDTileNumber возвращает номер переключателя двери или 0, если двери нет
func (c *Collision) GetDTileNumber(index int) int {
	if c.door == nil || !c.valid(index) || c.door[index].Index == 0 {
		return 0
	}
	return int(c.door[index].Number)
}

// GetDTileFlags возвращает флаги двери или 0, если двери нет
func (c *Collision) GetDTileFlags(index int) int {
	if c.door == nil || !c.valid(index) || c.door[index].Index == 0 {
		return 0
	}
	return int(c.door[index].Flags)
}

// IsMover возвращает индекс конвейерного тайла в точке (CP или CP_F) и его флаги
func (c *Collision) IsMover(x, y int) (index int, flags int) {
	if c.tiles == nil {
		return 0, 0
	}
	t := c.tiles[c.cellIndex(x, y)]
	if t.Index == tile.CP || t.Index == tile.CPF {
		return int(t.Index), int(t.Flags)
	}
	return 0, int(t.Flags)
}

// CpSpeed возвращает скорость конвейера для индекса и поворота
func CpSpeed(index, flags int) vec.Vec2Float {
	if index != tile.CP && index != tile.CPF {
		return vec.Vec2Float{}
	}
	var target vec.Vec2Float
	switch flags {
	case tile.Rotation0:
		target = vec.Vec2Float{X: 0, Y: -4}
	case tile.Rotation90:
		target = vec.Vec2Float{X: 4, Y: 0}
	case tile.Rotation180:
		target = vec.Vec2Float{X: 0, Y: 4}
	case tile.Rotation270:
		target = vec.Vec2Float{X: -4, Y: 0}
	}
	if index == tile.CPF {
		target = target.Mul(4)
	}
	return target
}
