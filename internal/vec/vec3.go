package vec

// Vec3Float представляет трехмерный вектор с плавающими координатами.
// В коллизиях это смещение анимации: X, Y и поворот Z (радианы).
type Vec3Float struct {
	X float32
	Y float32
	Z float32
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// XY возвращает плоскую часть вектора
func (v Vec3Float) XY() Vec2Float {
	return Vec2Float{X: v.X, Y: v.Y}
}
