package movingtile

import (
	"encoding/binary"

	"github.com/annel0/mmo-collision/internal/geometry"
	"github.com/annel0/mmo-collision/internal/vec"
	"github.com/cespare/xxhash/v2"
	"github.com/chewxy/math32"
)

// Snapshot: неизменяемое положение всех регионов на конкретном тике.
// Каждый Tick создает новый снимок, поэтому читатели никогда не видят
// частично обновленный набор.
type Snapshot struct {
	Tick  int
	Intra float32

	corners [][4]vec.Vec2Float
}

// Len возвращает число регионов в снимке
func (s *Snapshot) Len() int {
	return len(s.corners)
}

// Corners возвращает текущие углы региона
func (s *Snapshot) Corners(id int) [4]vec.Vec2Float {
	return s.corners[id]
}

// Triangles возвращает два треугольника региона в текущем положении
func (s *Snapshot) Triangles(r *Region) (geometry.Triangle, geometry.Triangle) {
	return geometry.Triangulate(s.corners[r.ID], r.Pattern)
}

// Digest возвращает отпечаток положения всех углов.
// Совпадение дайджестов на клиенте и сервере подтверждает детерминизм.
func (s *Snapshot) Digest() uint64 {
	h := xxhash.New()
	var buf [4]byte
	for _, quad := range s.corners {
		for _, c := range quad {
			binary.LittleEndian.PutUint32(buf[:], math32.Float32bits(c.X))
			_, _ = h.Write(buf[:])
			binary.LittleEndian.PutUint32(buf[:], math32.Float32bits(c.Y))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}
