package zone

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type InvalidCoordinateError struct {
	s string
	v []string
}

func (e InvalidCoordinateError) Error() string {
	return fmt.Sprintf("Invalid coordinate string '%s', splits into %#v", e.s, e.v)
}

// ParsePoint returns the point encoded in s. s has the following layout:
//
//	s := "50.1,7.8" // Latitude, Longitude
//
// The returned point stores longitude as x and latitude as y, so the two
// components swap position relative to the input.
func ParsePoint(s string) (orb.Point, error) {
	var p orb.Point
	v := strings.Split(strings.TrimSpace(s), ",")
	if len(v) != 2 {
		return p, InvalidCoordinateError{s, v}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(v[0]), 64)
	if err != nil {
		return p, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(v[1]), 64)
	if err != nil {
		return p, fmt.Errorf("parsing longitude: %w", err)
	}

	// ParseFloat accepts "Inf" and "NaN", both components must be finite.
	if math.IsInf(lat, 0) || math.IsNaN(lat) {
		return p, fmt.Errorf("latitude %q is not finite", v[0])
	}
	if math.IsInf(lon, 0) || math.IsNaN(lon) {
		return p, fmt.Errorf("longitude %q is not finite", v[1])
	}

	p[0] = lon
	p[1] = lat
	return p, nil
}
