// Package geometry содержит примитивы для проверки пересечений с
// треугольниками движущихся регионов.
package geometry

import (
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/chewxy/math32"
)

// Triangle: три вершины в мировых координатах.
// Порядок вершин важен: PointInTriangle не симметрична относительно перестановок.
type Triangle [3]vec.Vec2Float

// PointInTriangle: барицентрический тест. Ребра t0-t1 и t0-t2 включаются,
// ребро t1-t2 исключается.
func PointInTriangle(t Triangle, p vec.Vec2Float) bool {
	v0 := t[2].Sub(t[0])
	v1 := t[1].Sub(t[0])
	v2 := p.Sub(t[0])

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	invDenom := 1 / (float32(dot00*dot11) - float32(dot01*dot01))
	u := (float32(dot11*dot02) - float32(dot01*dot12)) * invDenom
	v := (float32(dot00*dot12) - float32(dot01*dot02)) * invDenom

	return u >= 0 && v >= 0 && u+v < 1
}

// SegmentsIntersect проверяет пересечение отрезков p0-p1 и q0-q1.
// Параллельные отрезки считаются непересекающимися.
func SegmentsIntersect(p0, p1, q0, q1 vec.Vec2Float) bool {
	r := p1.Sub(p0)
	s := q1.Sub(q0)
	rxs := r.Cross(s)
	if rxs == 0 {
		return false
	}
	qp := q0.Sub(p0)
	t := qp.Cross(s) / rxs
	u := qp.Cross(r) / rxs
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// SegmentIntersectsTriangle истинна, если конец отрезка лежит внутри
// треугольника или отрезок пересекает одно из ребер.
func SegmentIntersectsTriangle(p0, p1 vec.Vec2Float, t Triangle) bool {
	if PointInTriangle(t, p0) || PointInTriangle(t, p1) {
		return true
	}
	for i := 0; i < 3; i++ {
		if SegmentsIntersect(p0, p1, t[i], t[(i+1)%3]) {
			return true
		}
	}
	return false
}

// Parallax описывает сдвиг группы слоев относительно камеры.
// X и Y задаются в процентах, смещения в мировых единицах.
type Parallax struct {
	X, Y             int
	OffsetX, OffsetY int
}

// IsIdentity проверяет, что преобразование не меняет координаты ни при какой камере
func (p Parallax) IsIdentity() bool {
	return p.X == 100 && p.Y == 100 && p.OffsetX == 0 && p.OffsetY == 0
}

// Apply переводит точку региона в игровое пространство для заданной позиции игрока
func (p Parallax) Apply(player, pos vec.Vec2Float) vec.Vec2Float {
	return vec.Vec2Float{
		X: pos.X + player.X - player.X*float32(p.X)/100 - float32(p.OffsetX),
		Y: pos.Y + player.Y - player.Y*float32(p.Y)/100 - float32(p.OffsetY),
	}
}

// Remove выполняет обратное к Apply преобразование
func (p Parallax) Remove(player, pos vec.Vec2Float) vec.Vec2Float {
	return vec.Vec2Float{
		X: pos.X - player.X + player.X*float32(p.X)/100 + float32(p.OffsetX),
		Y: pos.Y - player.Y + player.Y*float32(p.Y)/100 + float32(p.OffsetY),
	}
}

// ApplyTriangle применяет параллакс ко всем вершинам
func (p Parallax) ApplyTriangle(player vec.Vec2Float, t Triangle) Triangle {
	var out Triangle
	for i := range t {
		out[i] = p.Apply(player, t[i])
	}
	return out
}

// ChooseTriangulation выбирает диагональ четырехугольника.
// true означает разбиение по диагонали 1-2, false по диагонали 0-3.
// Выбирается вариант с меньшей суммой противолежащих углов.
func ChooseTriangulation(c [4]vec.Vec2) bool {
	angle0 := cornerAngle(c[3], c[2], c[1]) + cornerAngle(c[0], c[2], c[1])
	angle1 := cornerAngle(c[2], c[0], c[3]) + cornerAngle(c[1], c[0], c[3])
	return angle0 < angle1
}

// cornerAngle возвращает угол при вершине apex между направлениями на a и b
func cornerAngle(apex, a, b vec.Vec2) float32 {
	d := a.Sub(apex).Normalized().Dot(b.Sub(apex).Normalized())
	d = math32.Max(-1, math32.Min(1, d))
	return math32.Acos(d)
}

// Triangulate разбивает четырехугольник на два треугольника согласно выбранной диагонали
func Triangulate(c [4]vec.Vec2Float, pattern bool) (Triangle, Triangle) {
	if pattern {
		return Triangle{c[3], c[2], c[1]}, Triangle{c[1], c[2], c[0]}
	}
	return Triangle{c[1], c[3], c[0]}, Triangle{c[0], c[3], c[2]}
}
