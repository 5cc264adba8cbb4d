package lattice

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/fibgrid/pkg"
)

// Lattice is one Fibonacci lattice held as parallel arrays, the same
// layout the pre-computed grid files use. For the operational grid
// sizes (up to n=6,600,000) a struct-per-point layout would waste
// memory and cache, so coordinates stay columnar.
type Lattice struct {
	Points []int32 // signed point number, -n..n
	GPI    []int32 // dense grid point index, 0..2n
	Lon    []float64
	Lat    []float64
}

func (l *Lattice) Len() int {
	return len(l.GPI)
}

// Compute builds the Fibonacci lattice with 2n+1 points on a sphere.
//
// Latitude follows the arcsine law lat(i) = asin(2i/(2n+1)), so points
// fall into latitude bands of equal area. Longitude steps by the golden
// ratio: lon(i) = mod(i, phi) * 360/phi, wrapped into (-180, 180].
// Output is deterministic for a given n.
func Compute(n int) (*Lattice, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", pkg.ErrInvalidPointCount, n)
	}

	size := 2*n + 1
	l := &Lattice{
		Points: make([]int32, size),
		GPI:    make([]int32, size),
		Lon:    make([]float64, size),
		Lat:    make([]float64, size),
	}

	phi := (1.0 + math.Sqrt(5.0)) / 2.0

	for i := -n; i <= n; i++ {
		j := i + n
		l.Points[j] = int32(i)
		l.GPI[j] = int32(j)
		l.Lat[j] = math.Asin(float64(2*i)/float64(2*n+1)) * 180.0 / math.Pi

		lon := floorMod(float64(i), phi) * 360.0 / phi
		if lon < -180 {
			lon += 360.0
		}
		if lon > 180 {
			lon -= 360.0
		}
		l.Lon[j] = lon
	}

	return l, nil
}

// floorMod is the real-valued modulo with a result in [0, y) for any
// sign of x. math.Mod alone truncates, which would send negative point
// numbers to (-y, 0] and break the longitude spiral south of the
// equator.
func floorMod(x, y float64) float64 {
	m := math.Mod(x, y)
	if m < 0 {
		m += y
	}
	return m
}
