package vec

import "github.com/chewxy/math32"

// Vec2Float представляет 2D координаты с плавающей точкой.
// Используется float32, чтобы результаты совпадали с данными карты бит в бит.
type Vec2Float struct {
	X, Y float32
}

// ToVec2 преобразует в целочисленные координаты (усечение)
func (v Vec2Float) ToVec2() Vec2 {
	return Vec2{X: int(v.X), Y: int(v.Y)}
}

// Round округляет обе координаты до ближайшего целого
func (v Vec2Float) Round() Vec2 {
	return Vec2{X: RoundToInt(v.X), Y: RoundToInt(v.Y)}
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float32(v.X), Y: float32(v.Y)}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float32) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot скалярное произведение
func (v Vec2Float) Dot(other Vec2Float) float32 {
	return float32(v.X*other.X) + float32(v.Y*other.Y)
}

// Cross псевдоскалярное (2D векторное) произведение
func (v Vec2Float) Cross(other Vec2Float) float32 {
	return float32(v.X*other.Y) - float32(v.Y*other.X)
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float32 {
	return math32.Sqrt(float32(v.X*v.X) + float32(v.Y*v.Y))
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float32 {
	return v.Sub(other).Length()
}

// IsZero проверяет, что обе компоненты равны нулю
func (v Vec2Float) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Mix линейно интерполирует между a и b
func Mix(a, b Vec2Float, t float32) Vec2Float {
	return Vec2Float{
		X: a.X + float32((b.X-a.X)*t),
		Y: a.Y + float32((b.Y-a.Y)*t),
	}
}

// Direction возвращает единичный вектор для угла в радианах
func Direction(angle float32) Vec2Float {
	return Vec2Float{X: math32.Cos(angle), Y: math32.Sin(angle)}
}

// RoundToInt округляет половину от нуля
func RoundToInt(f float32) int {
	if f > 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}
