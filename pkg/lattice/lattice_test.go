package lattice

import (
	"math"
	"testing"

	"github.com/lintang-b-s/fibgrid/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenAngle = 222.49223594996212 // 360/phi

func TestComputeSmallest(t *testing.T) {
	l, err := Compute(1)
	require.NoError(t, err)
	require.Equal(t, 3, l.Len())

	assert.Equal(t, []int32{-1, 0, 1}, l.Points)
	assert.Equal(t, []int32{0, 1, 2}, l.GPI)

	wantLat := math.Asin(2.0/3.0) * 180.0 / math.Pi
	assert.InDelta(t, 41.81, wantLat, 0.01)
	assert.InDelta(t, -wantLat, l.Lat[0], 1e-12)
	assert.Equal(t, 0.0, l.Lat[1])
	assert.InDelta(t, wantLat, l.Lat[2], 1e-12)

	// lon(-1) is the golden angle, lon(1) wraps to its negative
	assert.InDelta(t, 137.50776405003785, l.Lon[0], 1e-9)
	assert.Equal(t, 0.0, l.Lon[1])
	assert.InDelta(t, -137.50776405003785, l.Lon[2], 1e-9)
}

func TestComputeInvalidPointCount(t *testing.T) {
	for _, n := range []int{0, -1, -430000} {
		_, err := Compute(n)
		assert.ErrorIs(t, err, pkg.ErrInvalidPointCount, "n=%d", n)
	}

	_, err := ComputeWGS84(0)
	assert.ErrorIs(t, err, pkg.ErrInvalidPointCount)
}

func TestComputeDensePointNumbers(t *testing.T) {
	n := 1000
	l, err := Compute(n)
	require.NoError(t, err)
	require.Equal(t, 2*n+1, l.Len())

	for j := 0; j < l.Len(); j++ {
		assert.Equal(t, int32(j), l.GPI[j])
		assert.Equal(t, int32(j-n), l.Points[j])
	}
}

func TestComputeCoordinateRanges(t *testing.T) {
	l, err := Compute(1000)
	require.NoError(t, err)

	for j := 0; j < l.Len(); j++ {
		if l.Lat[j] < -90 || l.Lat[j] > 90 {
			t.Fatalf("latitude out of range at gpi %d: %v", j, l.Lat[j])
		}
		if l.Lon[j] <= -180 || l.Lon[j] > 180 {
			t.Fatalf("longitude out of range at gpi %d: %v", j, l.Lon[j])
		}
	}
}

func TestComputeLatitudeSymmetry(t *testing.T) {
	n := 777
	l, err := Compute(n)
	require.NoError(t, err)

	for i := 1; i <= n; i++ {
		assert.InDelta(t, -l.Lat[n-i], l.Lat[n+i], 1e-12)
	}
}

// Consecutive points differ in longitude by the golden angle modulo a
// full turn, on both sides of the equator. A truncating modulo would
// break this for negative point numbers.
func TestComputeGoldenAngleSpiral(t *testing.T) {
	n := 200
	l, err := Compute(n)
	require.NoError(t, err)

	for j := 1; j < l.Len(); j++ {
		step := math.Mod(l.Lon[j]-l.Lon[j-1]+720.0, 360.0)
		assert.InDelta(t, goldenAngle, step, 1e-9, "gpi %d", j)
	}
}

func TestComputeNegativeIndexModulo(t *testing.T) {
	l, err := Compute(2)
	require.NoError(t, err)

	// mod(-2, phi) = -2 + 2*phi = sqrt(5) - 1; scaled past 180 and wrapped
	phi := (1.0 + math.Sqrt(5.0)) / 2.0
	want := (math.Sqrt(5.0)-1.0)*360.0/phi - 360.0
	assert.InDelta(t, want, l.Lon[0], 1e-9)
	assert.InDelta(t, 137.50776405003785, l.Lon[1], 1e-9)
}

func TestFloorMod(t *testing.T) {
	phi := (1.0 + math.Sqrt(5.0)) / 2.0

	for x := -10.0; x <= 10.0; x++ {
		m := floorMod(x, phi)
		assert.GreaterOrEqual(t, m, 0.0, "x=%v", x)
		assert.Less(t, m, phi, "x=%v", x)
	}
	assert.InDelta(t, phi-1.0, floorMod(-1.0, phi), 1e-15)
}

func TestComputeDeterminism(t *testing.T) {
	a, err := Compute(5000)
	require.NoError(t, err)
	b, err := Compute(5000)
	require.NoError(t, err)

	// bit-identical, not merely close
	assert.Equal(t, a, b)
}

func TestComputeWGS84(t *testing.T) {
	n := 500
	sphere, err := Compute(n)
	require.NoError(t, err)

	w, err := ComputeWGS84(n)
	require.NoError(t, err)
	require.Equal(t, sphere.Len(), w.Len())

	// ordering and identifiers survive the reprojection untouched
	assert.Equal(t, sphere.Points, w.Points)
	assert.Equal(t, sphere.GPI, w.GPI)

	for j := 0; j < w.Len(); j++ {
		// a pure datum change never moves longitude
		assert.InDelta(t, sphere.Lon[j], w.Lon[j], 1e-9)
		assert.GreaterOrEqual(t, w.Lat[j], -90.0)
		assert.LessOrEqual(t, w.Lat[j], 90.0)
	}

	// the equator maps to itself
	assert.InDelta(t, 0.0, w.Lat[n], 1e-9)

	// odd symmetry survives the datum shift
	for i := 1; i <= n; i++ {
		assert.InDelta(t, -w.Lat[n-i], w.Lat[n+i], 1e-6)
	}

	// off the equator, geodetic latitude on the ellipsoid exceeds the
	// spherical latitude in magnitude
	mid := n + n/2 // northern mid-latitudes
	assert.Greater(t, w.Lat[mid], sphere.Lat[mid])

	// the datum change is not an identity: every point off the equator
	// moves, and at mid-latitudes the shift is a few tenths of a degree
	changed := 0
	for j := 0; j < w.Len(); j++ {
		if w.Lat[j] != sphere.Lat[j] {
			changed++
		}
	}
	assert.Greater(t, changed, w.Len()*9/10)

	shift := w.Lat[mid] - sphere.Lat[mid]
	assert.Greater(t, shift, 0.05)
	assert.Less(t, shift, 0.3)
}

func TestSphereToWGS84ShiftsMidLatitudes(t *testing.T) {
	transform, err := newSphereToWGS84()
	require.NoError(t, err)

	lon, lat, err := transform(10.0, 45.0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, lon, 1e-9)

	// tan(latWGS84) ~= tan(latSphere)/(1-es) for a surface point, which
	// at 45 degrees is a shift of roughly +0.19 degrees
	assert.Greater(t, lat, 45.1)
	assert.Less(t, lat, 45.3)

	// the equator is a fixed point of the datum change
	lon0, lat0, err := transform(33.0, 0.0)
	require.NoError(t, err)
	assert.InDelta(t, 33.0, lon0, 1e-12)
	assert.InDelta(t, 0.0, lat0, 1e-12)
}

func TestGeocentricRoundTrip(t *testing.T) {
	const (
		a  = 6378137.0
		es = 0.006694379990141317
	)

	for _, c := range []struct{ lon, lat float64 }{
		{0.0, 0.0},
		{120.5, 45.0},
		{-77.3, -33.7},
		{137.5, 80.0},
		{-180.0, -89.9},
	} {
		x, y, z := geodeticToGeocentric(c.lon, c.lat, a, es)
		lon, lat, err := geocentricToGeodetic(x, y, z, a, es)
		require.NoError(t, err)
		assert.InDelta(t, c.lon, lon, 1e-12, "lon=%v lat=%v", c.lon, c.lat)
		assert.InDelta(t, c.lat, lat, 1e-12, "lon=%v lat=%v", c.lon, c.lat)
	}
}

func TestComputeWGS84Determinism(t *testing.T) {
	a, err := ComputeWGS84(300)
	require.NoError(t, err)
	b, err := ComputeWGS84(300)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
