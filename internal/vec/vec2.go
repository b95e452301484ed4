package vec

import "github.com/chewxy/math32"

// FixedShift: число дробных бит в координатах и значениях карты (fixed-point).
const FixedShift = 10

// Vec2 представляет 2D координаты в целочисленном fixed-point пространстве карты
type Vec2 struct {
	X, Y int
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// ToFloat преобразует вектор без масштабирования
func (v Vec2) ToFloat() Vec2Float {
	return Vec2Float{X: float32(v.X), Y: float32(v.Y)}
}

// Fixed2Float переводит fixed-point координаты в мировые
func (v Vec2) Fixed2Float() Vec2Float {
	return Vec2Float{X: Fx2F(v.X), Y: Fx2F(v.Y)}
}

// Normalized возвращает единичный вектор того же направления
func (v Vec2) Normalized() Vec2Float {
	return v.ToFloat().Normalized()
}

// Rotate поворачивает точку вокруг центра на угол (радианы).
// Результат усекается до целого так же, как при отрисовке квадов.
func Rotate(center, point Vec2, rotation float32) Vec2 {
	x := float32(point.X - center.X)
	y := float32(point.Y - center.Y)
	c := math32.Cos(rotation)
	s := math32.Sin(rotation)

	// явные преобразования запрещают компилятору сливать умножение и сложение (FMA)
	return Vec2{
		X: int(float32(x*c) - float32(y*s) + float32(center.X)),
		Y: int(float32(x*s) + float32(y*c) + float32(center.Y)),
	}
}

// Fx2F переводит fixed-point значение в число с плавающей точкой
func Fx2F(v int) float32 {
	return float32(v) * (1.0 / (1 << FixedShift))
}

// F2Fx переводит число с плавающей точкой в fixed-point с округлением
func F2Fx(v float32) int {
	return RoundToInt(v * (1 << FixedShift))
}
