// README: Common geographic point value object used across modules.
package types

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var ErrBadPoint = errors.New("malformed coordinate pair")

// ParsePoint parses a "lat,lng" query value into a Point.
func ParsePoint(s string) (Point, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Point{}, ErrBadPoint
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, ErrBadPoint
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, ErrBadPoint
	}
	p := Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Point{}, ErrBadPoint
	}
	return p, nil
}

// Valid reports whether the point lies inside the WGS84 coordinate range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return math.Abs(p.Lat) <= 90 && math.Abs(p.Lng) <= 180
}
