package zone

import (
	"math"

	"github.com/paulmach/orb"
)

// This file contains the code for testing arbitrary lat/lon rings for point
// containment.

// Polygon is the closed outer boundary of one part of a sales zone. The ring
// wraps implicitly, the last vertex connects back to the first. A duplicated
// closing vertex is tolerated; the zero-length edge it forms never crosses
// the test ray.
type Polygon struct {
	ring orb.Ring
}

func NewPolygon(ring orb.Ring) Polygon {
	return Polygon{ring: ring}
}

func (p Polygon) Bound() orb.Bound {
	return p.ring.Bound()
}

// Contains returns true if pt is inside the ring.
//
// Cast a ray from pt to the right and count crossings with the edges of the
// ring. An odd number of crossings means pt is inside. All comparisons are
// plain float64, so a point exactly on an edge gets whatever the crossing
// parity says; the result is deterministic but boundary-sensitive.
func (p Polygon) Contains(pt orb.Point) bool {
	n := len(p.ring)
	if n < 3 {
		return false
	}

	x, y := pt[0], pt[1]
	inside := false

	p1 := p.ring[0]
	for i := 1; i <= n; i++ {
		p2 := p.ring[i%n]
		// Horizontal edges have min == max latitude and can never satisfy
		// y > min && y <= max, so they cast no crossing.
		if y > math.Min(p1[1], p2[1]) && y <= math.Max(p1[1], p2[1]) && x <= math.Max(p1[0], p2[0]) && p1[1] != p2[1] {
			xCross := (y-p1[1])*(p2[0]-p1[0])/(p2[1]-p1[1]) + p1[0]
			if p1[0] == p2[0] || x <= xCross {
				inside = !inside
			}
		}
		p1 = p2
	}

	return inside
}
