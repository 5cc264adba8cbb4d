package cellgrid

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"
)

const (
	earthRadiusKM = 6371.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// HaversineDistanceM returns the great-circle distance in meters
// between two coordinates in degrees.
func HaversineDistanceM(latOne, lonOne, latTwo, lonTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	lonOne = degreeToRadians(lonOne)
	latTwo = degreeToRadians(latTwo)
	lonTwo = degreeToRadians(lonTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(lonOne-lonTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c * 1000.0
}

// unitVector maps a lon/lat in degrees onto the unit sphere. Chord
// distance between unit vectors is monotonic in great-circle distance,
// so nearest neighbor in this space equals spherical nearest neighbor
// and stays correct across the antimeridian and at the poles.
func unitVector(lon, lat float64) rtreego.Point {
	p := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	return rtreego.Point{p.X, p.Y, p.Z}
}

// Cell5Deg returns the cell number of a 5x5 degree box, counting
// south-to-north columns eastward from (-180, -90). Grid files store
// this numbering in their cell variable.
func Cell5Deg(lon, lat float64) int32 {
	const cellSize = 5.0

	col := int32(math.Floor((lon + 180.0) / cellSize))
	row := int32(math.Floor((lat + 90.0) / cellSize))
	// lon=180 and lat=90 close the last box instead of opening a new one
	if col > 71 {
		col = 71
	}
	if row > 35 {
		row = 35
	}
	return col*36 + row
}
