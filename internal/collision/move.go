package collision

import "github.com/annel0/mmo-collision/internal/vec"

// MovePoint сдвигает точку на скорость за один шаг. При столкновении точка
// остается на месте, а столкнувшиеся компоненты скорости отражаются с
// коэффициентом elasticity. Возвращает новые позицию, скорость и число отскоков.
func (c *Collision) MovePoint(pos, vel vec.Vec2Float, elasticity float32) (vec.Vec2Float, vec.Vec2Float, int) {
	if !c.CheckPoint(pos.Add(vel)) {
		return pos.Add(vel), vel, 0
	}

	bounces := 0
	affected := 0
	if c.CheckPoint(vec.Vec2Float{X: pos.X + vel.X, Y: pos.Y}) {
		vel.X *= -elasticity
		bounces++
		affected++
	}
	if c.CheckPoint(vec.Vec2Float{X: pos.X, Y: pos.Y + vel.Y}) {
		vel.Y *= -elasticity
		bounces++
		affected++
	}
	// угол: по отдельности оси свободны, вместе нет
	if affected == 0 {
		vel.X *= -elasticity
		vel.Y *= -elasticity
	}
	return pos, vel, bounces
}

// boxTest проверяет прямоугольник с центром в точке
type boxTest func(pos vec.Vec2Float) bool

// resolveStep отменяет движение по осям, на которых прямоугольник упирается в препятствие
func resolveStep(test boxTest, pos, newPos, vel vec.Vec2Float, elasticity float32) (vec.Vec2Float, vec.Vec2Float) {
	if !test(newPos) {
		return newPos, vel
	}

	hits := 0
	if test(vec.Vec2Float{X: pos.X, Y: newPos.Y}) {
		newPos.Y = pos.Y
		vel.Y *= -elasticity
		hits++
	}
	if test(vec.Vec2Float{X: newPos.X, Y: pos.Y}) {
		newPos.X = pos.X
		vel.X *= -elasticity
		hits++
	}
	if hits == 0 {
		newPos = pos
		vel.X *= -elasticity
		vel.Y *= -elasticity
	}
	return newPos, vel
}

// MoveBox перемещает прямоугольник size с центром pos на скорость vel,
// разбивая путь на шаги не длиннее единицы. Каждая ось шага проверяется
// сразу против статической сетки и движущихся регионов, поэтому принятая
// позиция всегда свободна от обоих, если свободна начальная.
func (c *Collision) MoveBox(pos, vel, size vec.Vec2Float, elasticity float32) (vec.Vec2Float, vec.Vec2Float) {
	snap := c.Snapshot()
	return c.moveBox(pos, vel, elasticity, func(p vec.Vec2Float) bool {
		return c.TestBox(p, size) || c.testBoxQuad(snap, p, size, nil)
	})
}

// MoveBoxStatic как MoveBox, но без движущихся регионов
func (c *Collision) MoveBoxStatic(pos, vel, size vec.Vec2Float, elasticity float32) (vec.Vec2Float, vec.Vec2Float) {
	return c.moveBox(pos, vel, elasticity, func(p vec.Vec2Float) bool { return c.TestBox(p, size) })
}

func (c *Collision) moveBox(pos, vel vec.Vec2Float, elasticity float32, test boxTest) (vec.Vec2Float, vec.Vec2Float) {
	distance := vel.Length()
	if distance <= 0.00001 {
		return pos, vel
	}

	steps := int(distance) + 1
	fraction := 1 / float32(steps+1)
	for i := 0; i <= steps; i++ {
		if vel.IsZero() {
			break
		}
		newPos := pos.Add(vel.Mul(fraction))
		if newPos == pos {
			break
		}
		pos, vel = resolveStep(test, pos, newPos, vel, elasticity)
	}
	return pos, vel
}
