package solver

import "math"

// WGS-84 ellipsoid constants.
const (
	wgs84SemiMajorAxis = 6378137.0
	wgs84Flattening    = 1.0 / 298.257223563
)

// Geodetic is a latitude/longitude/height position in WGS-84.
type Geodetic struct {
	LatitudeRad  float64
	LongitudeRad float64
	HeightMeters float64
}

// ToGeodetic converts an ECEF estimate to geodetic coordinates using
// Bowring's iterative method, deliberately not the closed-form shortcut:
// it converges to sub-millimeter accuracy in a handful of iterations and
// stays correct near the poles, where closed-form formulations lose
// precision.
func ToGeodetic(x, y, z float64) Geodetic {
	a := wgs84SemiMajorAxis
	f := wgs84Flattening
	e2 := f * (2 - f)

	lon := math.Atan2(y, x)
	p := math.Sqrt(x*x + y*y)

	lat := math.Atan2(z, p*(1-e2))
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		n := a / math.Sqrt(1-e2*sinLat*sinLat)
		next := math.Atan2(z+e2*n*sinLat, p)
		if math.Abs(next-lat) < 1e-12 {
			lat = next
			break
		}
		lat = next
	}

	sinLat := math.Sin(lat)
	n := a / math.Sqrt(1-e2*sinLat*sinLat)
	var height float64
	if math.Abs(math.Cos(lat)) > 1e-12 {
		height = p/math.Cos(lat) - n
	} else {
		height = z/sinLat - n*(1-e2)
	}

	return Geodetic{LatitudeRad: lat, LongitudeRad: lon, HeightMeters: height}
}
