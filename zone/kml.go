package zone

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// The subset of KML 2.2 this tool reads. Only the outer boundary of each
// polygon matters for membership-by-disjunction, inner boundaries (holes) are
// not decoded.
type kmlPolygon struct {
	OuterBoundary kmlBoundary `xml:"outerBoundaryIs"`
}

type kmlBoundary struct {
	Ring kmlLinearRing `xml:"LinearRing"`
}

type kmlLinearRing struct {
	Coordinates string `xml:"coordinates"`
}

// LoadKML reads the KML file at path and returns the sales zone built from
// its polygon outer boundaries.
func LoadKML(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening KML file: %w", err)
	}
	defer f.Close()

	polygons, err := ParseKML(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return NewSet(polygons), nil
}

// ParseKML extracts one Polygon per outer-boundary ring found in the KML
// document, wherever the Polygon elements are nested. Rings with fewer than 3
// valid vertices are dropped. A malformed document is an error, the caller is
// expected to abort.
func ParseKML(r io.Reader) ([]Polygon, error) {
	dec := xml.NewDecoder(r)
	log := logrus.WithField("component", "kml")

	var polygons []Polygon
	dropped := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading KML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Polygon" {
			continue
		}

		var elem kmlPolygon
		if err := dec.DecodeElement(&elem, &start); err != nil {
			return nil, fmt.Errorf("decoding Polygon element: %w", err)
		}

		ring := parseCoordinateList(elem.OuterBoundary.Ring.Coordinates)
		if len(ring) < 3 {
			dropped++
			continue
		}
		polygons = append(polygons, NewPolygon(ring))
	}

	if dropped > 0 {
		log.WithField("count", dropped).Warn("dropped boundary rings with fewer than 3 valid vertices")
	}

	return polygons, nil
}

// parseCoordinateList parses a KML coordinates text node. Tuples are
// whitespace-separated "lon,lat" or "lon,lat,elevation"; elevation is
// discarded. Malformed tuples are skipped individually, they don't invalidate
// the ring.
func parseCoordinateList(text string) orb.Ring {
	var ring orb.Ring
	skipped := 0

	for _, tuple := range strings.Fields(text) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			skipped++
			continue
		}
		lon, lonErr := strconv.ParseFloat(parts[0], 64)
		lat, latErr := strconv.ParseFloat(parts[1], 64)
		if lonErr != nil || latErr != nil {
			skipped++
			continue
		}
		ring = append(ring, orb.Point{lon, lat})
	}

	if skipped > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "kml",
			"count":     skipped,
		}).Debug("skipped malformed coordinate tuples")
	}

	return ring
}
