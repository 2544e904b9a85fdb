package zone

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Rects handed to the R-tree need strictly positive extents, degenerate
// polygon bounds get padded to this span. NewRect only fails on a
// non-positive length, so boundRect can discard its error once both spans
// are padded.
const minRectSpan = 1e-9

// Set is a sales zone made up of one or more polygons. A point is inside the
// zone when it is inside at least one member polygon; overlapping members are
// not unioned, the first matching polygon decides. Immutable after
// construction.
type Set struct {
	polygons []Polygon
	index    *rtreego.Rtree
}

type setEntry struct {
	poly *Polygon
	rect rtreego.Rect
}

func (e *setEntry) Bounds() rtreego.Rect {
	return e.rect
}

func NewSet(polygons []Polygon) *Set {
	s := &Set{
		polygons: polygons,
		index:    rtreego.NewTree(2, 2, 8),
	}
	for i := range s.polygons {
		s.index.Insert(&setEntry{
			poly: &s.polygons[i],
			rect: boundRect(s.polygons[i].Bound()),
		})
	}
	return s
}

func boundRect(b orb.Bound) rtreego.Rect {
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	if dx < minRectSpan {
		dx = minRectSpan
	}
	if dy < minRectSpan {
		dy = minRectSpan
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{dx, dy})
	return rect
}

// Len returns the number of polygons in the zone.
func (s *Set) Len() int {
	return len(s.polygons)
}

// Contains returns true if pt is inside at least one polygon of the zone. The
// bounding-box index only skips polygons whose box cannot contain pt, it
// never changes the answer of the exact test.
func (s *Set) Contains(pt orb.Point) bool {
	if s == nil || len(s.polygons) == 0 {
		return false
	}

	candidates := s.index.SearchIntersect(rtreego.Point{pt[0], pt[1]}.ToRect(minRectSpan))
	for _, c := range candidates {
		if c.(*setEntry).poly.Contains(pt) {
			return true
		}
	}
	return false
}
