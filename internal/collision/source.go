package collision

import "github.com/annel0/mmo-collision/internal/movingtile"

// Source: источник семантики тайла: клетка статической сетки
// или движущийся регион. Реализуется только StaticCell и DynamicRegion.
type Source interface {
	isSource()
}

// StaticCell: клетка сетки с индексом Index
type StaticCell struct {
	Index int
}

// DynamicRegion: движущийся регион
type DynamicRegion struct {
	Region *movingtile.Region
}

func (StaticCell) isSource()    {}
func (DynamicRegion) isSource() {}

// SourceOf возвращает DynamicRegion для ненулевого региона, иначе StaticCell с index
func SourceOf(index int, region *movingtile.Region) Source {
	if region != nil {
		return DynamicRegion{Region: region}
	}
	return StaticCell{Index: index}
}
