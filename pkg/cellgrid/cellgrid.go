// Package cellgrid indexes a fixed set of grid points for
// nearest-neighbor and cell-membership queries. Points are bucketed by
// a coarse cell number and indexed in an r-tree over 3D unit vectors.
package cellgrid

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/fibgrid/pkg"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	pointRectTol     = 1e-9
)

type gridPoint struct {
	arrayIdx int
	loc      rtreego.Point
}

func (p *gridPoint) Bounds() rtreego.Rect {
	return p.loc.ToRect(pointRectTol)
}

// Grid is a read-only cell-indexed point set. An optional subset
// restricts queries to a selection of array positions without
// renumbering grid point indices.
type Grid struct {
	lon  []float64
	lat  []float64
	cell []int32
	gpi  []int32

	geodatum pkg.Geodatum
	active   []int // array positions visible to queries

	tree    *rtreego.Rtree
	cellIdx map[int32][]int // cell number -> active array positions
	gpiIdx  map[int32]int   // gpi -> array position, active only
}

type Option func(*Grid)

// WithSubset restricts the grid to the given array positions. Indices
// outside [0, len) are rejected by New.
func WithSubset(idx []int) Option {
	return func(g *Grid) {
		g.active = idx
	}
}

func WithGeodatum(geodatum pkg.Geodatum) Option {
	return func(g *Grid) {
		g.geodatum = geodatum
	}
}

// Neighbor is one grid point returned by a lookup, with the
// great-circle distance from the query coordinate in meters.
type Neighbor struct {
	GPI       int32
	Lon       float64
	Lat       float64
	Cell      int32
	DistanceM float64
}

func New(lon, lat []float64, cell, gpi []int32, opts ...Option) (*Grid, error) {
	if len(lat) != len(lon) || len(cell) != len(lon) || len(gpi) != len(lon) {
		return nil, fmt.Errorf("lon, lat, cell and gpi must have equal length: %d/%d/%d/%d",
			len(lon), len(lat), len(cell), len(gpi))
	}

	g := &Grid{
		lon:      lon,
		lat:      lat,
		cell:     cell,
		gpi:      gpi,
		geodatum: pkg.WGS84,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.active == nil {
		g.active = make([]int, len(lon))
		for i := range g.active {
			g.active[i] = i
		}
	}

	g.cellIdx = make(map[int32][]int)
	g.gpiIdx = make(map[int32]int, len(g.active))
	points := make([]rtreego.Spatial, 0, len(g.active))
	for _, i := range g.active {
		if i < 0 || i >= len(lon) {
			return nil, fmt.Errorf("subset index %d out of range [0, %d)", i, len(lon))
		}
		g.cellIdx[cell[i]] = append(g.cellIdx[cell[i]], i)
		g.gpiIdx[gpi[i]] = i
		points = append(points, &gridPoint{arrayIdx: i, loc: unitVector(lon[i], lat[i])})
	}
	g.tree = rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren, points...)

	return g, nil
}

// Len returns the number of active points.
func (g *Grid) Len() int {
	return len(g.active)
}

func (g *Grid) Geodatum() pkg.Geodatum {
	return g.geodatum
}

// FindNearest returns the active grid point closest to a coordinate.
func (g *Grid) FindNearest(lon, lat float64) (Neighbor, error) {
	if len(g.active) == 0 {
		return Neighbor{}, fmt.Errorf("grid has no active points")
	}

	found := g.tree.NearestNeighbor(unitVector(lon, lat))
	gp, ok := found.(*gridPoint)
	if !ok {
		return Neighbor{}, fmt.Errorf("grid has no active points")
	}
	return g.neighborAt(gp.arrayIdx, lon, lat), nil
}

// FindKNearest returns up to k active grid points ordered by distance.
func (g *Grid) FindKNearest(lon, lat float64, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive: %d", k)
	}
	if len(g.active) == 0 {
		return nil, fmt.Errorf("grid has no active points")
	}

	found := g.tree.NearestNeighbors(k, unitVector(lon, lat))
	neighbors := make([]Neighbor, 0, len(found))
	for _, f := range found {
		gp, ok := f.(*gridPoint)
		if !ok {
			continue
		}
		neighbors = append(neighbors, g.neighborAt(gp.arrayIdx, lon, lat))
	}
	return neighbors, nil
}

func (g *Grid) neighborAt(i int, queryLon, queryLat float64) Neighbor {
	return Neighbor{
		GPI:       g.gpi[i],
		Lon:       g.lon[i],
		Lat:       g.lat[i],
		Cell:      g.cell[i],
		DistanceM: HaversineDistanceM(queryLat, queryLon, g.lat[i], g.lon[i]),
	}
}

// GPIsForCell returns the grid point indices of the active points in a
// cell, in storage order.
func (g *Grid) GPIsForCell(cell int32) []int32 {
	positions := g.cellIdx[cell]
	gpis := make([]int32, len(positions))
	for i, p := range positions {
		gpis[i] = g.gpi[p]
	}
	return gpis
}

// Cells returns the sorted cell numbers that contain active points.
func (g *Grid) Cells() []int32 {
	cells := make([]int32, 0, len(g.cellIdx))
	for c := range g.cellIdx {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return cells
}

func (g *Grid) CellForGPI(gpi int32) (int32, error) {
	i, ok := g.gpiIdx[gpi]
	if !ok {
		return 0, fmt.Errorf("gpi %d not in grid", gpi)
	}
	return g.cell[i], nil
}

func (g *Grid) LonLatForGPI(gpi int32) (float64, float64, error) {
	i, ok := g.gpiIdx[gpi]
	if !ok {
		return 0, 0, fmt.Errorf("gpi %d not in grid", gpi)
	}
	return g.lon[i], g.lat[i], nil
}

// EachActive calls fn for every active point in storage order, until
// fn returns false.
func (g *Grid) EachActive(fn func(gpi int32, lon, lat float64, cell int32) bool) {
	for _, i := range g.active {
		if !fn(g.gpi[i], g.lon[i], g.lat[i], g.cell[i]) {
			return
		}
	}
}
