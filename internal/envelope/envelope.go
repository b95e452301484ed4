// Package envelope вычисляет анимационные огибающие (keyframe-кривые)
// для движущихся тайлов. Все функции чистые: одна и та же пара
// (тик, доля тика) всегда дает бит-в-бит одинаковый результат.
package envelope

import (
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/chewxy/math32"
)

// DefaultTickSpeed: частота симуляции сервера по умолчанию (тиков в секунду)
const DefaultTickSpeed = 50

// CurveType определяет форму интерполяции между ключевыми точками
type CurveType int32

const (
	CurveStep CurveType = iota
	CurveLinear
	CurveSlow
	CurveFast
	CurveSmooth
	CurveBezier
)

// String возвращает имя кривой
func (c CurveType) String() string {
	switch c {
	case CurveStep:
		return "step"
	case CurveLinear:
		return "linear"
	case CurveSlow:
		return "slow"
	case CurveFast:
		return "fast"
	case CurveSmooth:
		return "smooth"
	case CurveBezier:
		return "bezier"
	default:
		return "unknown"
	}
}

// Point: ключевая точка огибающей. Значения хранятся в fixed-point.
type Point struct {
	TimeMs int32     `json:"time"`
	Values [3]int32  `json:"values"`
	Curve  CurveType `json:"curve"`
}

// Binding: привязка региона к отрезку общей таблицы ключевых точек
type Binding struct {
	OffsetMs int32
	Start    int
	Count    int
}

// End возвращает индекс за последней точкой привязки
func (b Binding) End() int {
	return b.Start + b.Count
}

const (
	nanosPerMilli  = int64(1_000_000)
	nanosPerSecond = int64(1_000_000_000)
)

// Evaluate возвращает смещение (X, Y) и поворот Z в радианах для заданного тика.
// Для tickSpeed <= 0 используется DefaultTickSpeed.
func Evaluate(points []Point, b Binding, tick int, intra float32, tickSpeed int) vec.Vec3Float {
	var out vec.Vec3Float

	switch {
	case b.Count <= 0:
		// ничего не анимируется
	case b.Count == 1:
		p := points[b.Start]
		out = vec.Vec3Float{X: fx(p.Values[0]), Y: fx(p.Values[1]), Z: fx(p.Values[2])}
	default:
		out = interpolate(points[b.Start:b.End()], timeNanos(b.OffsetMs, tick, intra, tickSpeed))
	}

	out.Z = out.Z / 180 * math32.Pi
	return out
}

// timeNanos переводит тик в абсолютное время анимации
func timeNanos(offsetMs int32, tick int, intra float32, tickSpeed int) int64 {
	if tickSpeed <= 0 {
		tickSpeed = DefaultTickSpeed
	}
	tickNanos := nanosPerSecond / int64(tickSpeed)
	return int64(offsetMs)*nanosPerMilli + tickNanos*int64(tick) + int64(float32(tickNanos)*intra)
}

func interpolate(seg []Point, nanos int64) vec.Vec3Float {
	last := seg[len(seg)-1]
	if period := int64(last.TimeMs) * nanosPerMilli; period > 0 {
		nanos %= period
	} else {
		nanos = 0
	}
	millis := int32(nanos / nanosPerMilli)

	var out vec.Vec3Float
	found := false
	// при перекрывающихся интервалах выигрывает последний подходящий
	for i := 0; i < len(seg)-1; i++ {
		p0, p1 := seg[i], seg[i+1]
		if millis < p0.TimeMs || millis > p1.TimeMs {
			continue
		}
		found = true

		delta := float32(p1.TimeMs - p0.TimeMs)
		var a float32
		if delta != 0 {
			a = float32(float64(nanos)/float64(nanosPerMilli)-float64(p0.TimeMs)) / delta
		}
		a = reshape(p0.Curve, a)

		out = vec.Vec3Float{
			X: blend(p0.Values[0], p1.Values[0], a),
			Y: blend(p0.Values[1], p1.Values[1], a),
			Z: blend(p0.Values[2], p1.Values[2], a),
		}
	}

	if !found {
		out = vec.Vec3Float{X: fx(last.Values[0]), Y: fx(last.Values[1]), Z: fx(last.Values[2])}
	}
	return out
}

// reshape применяет форму кривой левой точки к параметру a
func reshape(c CurveType, a float32) float32 {
	switch c {
	case CurveSmooth:
		return float32(-2*a*a*a) + float32(3*a*a)
	case CurveSlow:
		return a * a * a
	case CurveFast:
		a = 1 - a
		return 1 - a*a*a
	case CurveStep:
		return 0
	default:
		return a
	}
}

func blend(from, to int32, a float32) float32 {
	v0 := fx(from)
	v1 := fx(to)
	return v0 + float32((v1-v0)*a)
}

func fx(v int32) float32 {
	return vec.Fx2F(int(v))
}
