package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/phil-mansfield/gogrid/errs"
)

// EarthRadius is the mean radius of the Earth in km.
const EarthRadius = 6371.0088

// CoordSystem tags the coordinate system a grid (and the samples resampled
// onto it) live in.
type CoordSystem int

const (
	// Cartesian coordinates use plain Euclidean distances.
	Cartesian CoordSystem = iota
	// Geographic coordinates put longitude on axis 0 and latitude on axis 1,
	// both in degrees. Distances along the surface are in km and any further
	// axes (depth, time, ...) are combined with them in quadrature.
	Geographic
)

func (cs CoordSystem) String() string {
	switch cs {
	case Cartesian: return "cartesian"
	case Geographic: return "geographic"
	}
	return fmt.Sprintf("CoordSystem(%d)", int(cs))
}

// ParseCoordSystem converts a (case-insensitive) name into a CoordSystem.
func ParseCoordSystem(name string) (CoordSystem, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cartesian": return Cartesian, nil
	case "geographic", "lonlat": return Geographic, nil
	}
	return Cartesian, errs.Validation("unrecognized coordinate system '%s'", name)
}

func (cs CoordSystem) check(axes []Axis) error {
	switch cs {
	case Cartesian:
		return nil
	case Geographic:
		if len(axes) < 2 {
			return errs.InvalidGrid(
				"geographic grid needs lon and lat axes, got %d axes", len(axes),
			)
		} else if axes[1].Min < -90 || axes[1].Max > 90 {
			return errs.InvalidGrid(
				"latitude range [%g, %g] outside [-90, 90]",
				axes[1].Min, axes[1].Max,
			)
		}
		return nil
	}
	return errs.InvalidGrid("unknown coordinate system %d", int(cs))
}

// Metric returns the distance function used for the coordinate system.
func (cs CoordSystem) Metric() Metric {
	if cs == Geographic { return Haversine{Radius: EarthRadius} }
	return Euclidean{}
}

// Metric measures the distance between two points of equal dimension.
type Metric interface {
	Distance(a, b []float64) float64
}

// Euclidean is the usual straight-line distance.
type Euclidean struct{}

func (Euclidean) Distance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Haversine is the great-circle distance between (lon, lat, ...) points
// given in degrees, on a sphere of the given radius.
type Haversine struct {
	Radius float64
}

func (h Haversine) Distance(a, b []float64) float64 {
	const rad = math.Pi / 180
	lat1, lat2 := a[1]*rad, b[1]*rad
	dLat, dLon := lat2-lat1, (b[0]-a[0])*rad

	sinLat, sinLon := math.Sin(dLat/2), math.Sin(dLon/2)
	hav := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	if hav > 1 { hav = 1 }
	d := 2 * h.Radius * math.Asin(math.Sqrt(hav))

	if len(a) == 2 { return d }
	sum := d * d
	for i := 2; i < len(a); i++ {
		dx := a[i] - b[i]
		sum += dx * dx
	}
	return math.Sqrt(sum)
}
