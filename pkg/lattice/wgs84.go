package lattice

import (
	"fmt"
	"math"
	"runtime"

	"github.com/ctessum/geom/proj"
	"github.com/lintang-b-s/fibgrid/pkg"
	"github.com/lintang-b-s/fibgrid/pkg/concurrent"
	"go.uber.org/multierr"
)

// The lattice is defined on a sphere of radius 6,370,997 m with zero
// datum shift; WGS84 output must match the geodetic transform from
// that sphere definition to EPSG:4326.
const (
	sphereProj4 = "+proj=longlat +a=6370997 +b=6370997 +no_defs"
	wgs84Proj4  = "+proj=longlat +ellps=WGS84 +no_defs"
)

// ComputeWGS84 builds the Fibonacci lattice and reprojects every point
// from the sphere to WGS84 geodetic coordinates. Point order and
// indices are identical to Compute; only lon/lat values change.
func ComputeWGS84(n int) (*Lattice, error) {
	l, err := Compute(n)
	if err != nil {
		return nil, err
	}

	if err := reprojectToWGS84(l); err != nil {
		return nil, err
	}

	return l, nil
}

type indexChunk struct {
	start int
	end   int
}

// reprojectToWGS84 transforms l in place. Every point is independent,
// so the index range is split into one chunk per worker. Each worker
// owns its transformer and writes only inside its chunk, which keeps
// the output deterministic and order-preserving regardless of worker
// count.
func reprojectToWGS84(l *Lattice) error {
	size := l.Len()
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > size {
		numWorkers = size
	}
	chunkSize := (size + numWorkers - 1) / numWorkers
	numChunks := (size + chunkSize - 1) / chunkSize

	pool := concurrent.NewPool[indexChunk](numWorkers, numChunks)

	pool.Start(func(c indexChunk) error {
		transform, err := newSphereToWGS84()
		if err != nil {
			return err
		}

		for j := c.start; j < c.end; j++ {
			lon, lat, err := transform(l.Lon[j], l.Lat[j])
			if err != nil {
				return fmt.Errorf("%w: gpi %d: %v", pkg.ErrReprojection, l.GPI[j], err)
			}
			l.Lon[j] = lon
			l.Lat[j] = lat
		}
		return nil
	})

	for start := 0; start < size; start += chunkSize {
		end := start + chunkSize
		if end > size {
			end = size
		}
		pool.Submit(indexChunk{start: start, end: end})
	}
	pool.Close()

	var errs error
	for err := range pool.Wait() {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// newSphereToWGS84 builds the datum transformer. The ellipsoid
// constants come from the parsed CRS definitions, but the datum pass
// itself runs here explicitly: the proj port skips its datum step when
// a CRS carries no datum code (a zero +towgs84 shift does not register
// as one), which would silently leave the spherical latitudes in
// place. With a zero shift the transform is exactly geodetic on the
// sphere -> geocentric -> geodetic on the WGS84 ellipsoid.
func newSphereToWGS84() (proj.Transformer, error) {
	sphereSR, err := proj.Parse(sphereProj4)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing sphere CRS: %v", pkg.ErrReprojection, err)
	}
	wgs84SR, err := proj.Parse(wgs84Proj4)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing WGS84 CRS: %v", pkg.ErrReprojection, err)
	}

	transform := func(lon, lat float64) (float64, float64, error) {
		x, y, z := geodeticToGeocentric(lon, lat, sphereSR.A, sphereSR.Es)
		return geocentricToGeodetic(x, y, z, wgs84SR.A, wgs84SR.Es)
	}
	return transform, nil
}

// geodeticToGeocentric maps geodetic lon/lat in degrees on the surface
// of an ellipsoid (semi-major axis a, first eccentricity squared es)
// to earth-centered cartesian coordinates in meters.
func geodeticToGeocentric(lon, lat, a, es float64) (x, y, z float64) {
	lonRad := lon * math.Pi / 180.0
	latRad := lat * math.Pi / 180.0
	sinLat := math.Sin(latRad)
	cosLat := math.Cos(latRad)
	rn := a / math.Sqrt(1.0-es*sinLat*sinLat)

	x = rn * cosLat * math.Cos(lonRad)
	y = rn * cosLat * math.Sin(lonRad)
	z = rn * (1.0 - es) * sinLat
	return x, y, z
}

// geocentricToGeodetic inverts geodeticToGeocentric for an arbitrary
// point, by fixed-point iteration on the latitude. Longitude is exact.
func geocentricToGeodetic(x, y, z, a, es float64) (float64, float64, error) {
	const (
		maxIter = 30
		tol     = 1e-15
	)

	lonRad := math.Atan2(y, x)
	p := math.Hypot(x, y)

	latRad := math.Atan2(z, p*(1.0-es))
	for i := 0; i < maxIter; i++ {
		sinLat := math.Sin(latRad)
		rn := a / math.Sqrt(1.0-es*sinLat*sinLat)
		next := math.Atan2(z+es*rn*sinLat, p)
		if math.Abs(next-latRad) < tol {
			latRad = next
			break
		}
		latRad = next
	}

	return lonRad * 180.0 / math.Pi, latRad * 180.0 / math.Pi, nil
}
