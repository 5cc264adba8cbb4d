// Package grid exposes the Fibonacci grids at their operational
// sampling resolutions, backed by pre-computed grid files.
package grid

import (
	"fmt"

	"github.com/lintang-b-s/fibgrid/pkg"
	"github.com/lintang-b-s/fibgrid/pkg/cellgrid"
	"github.com/lintang-b-s/fibgrid/pkg/gridfile"
)

// Resolution is the grid sampling in km. Supported values are 6.25,
// 12.5 and 25.
type Resolution float64

// PointCount maps a resolution to the lattice size n of its
// pre-computed grid file.
func (r Resolution) PointCount() (int, error) {
	switch r {
	case 6.25:
		return pkg.N_6_25KM, nil
	case 12.5:
		return pkg.N_12_5KM, nil
	case 25:
		return pkg.N_25KM, nil
	default:
		return 0, fmt.Errorf("%w: %v km", pkg.ErrUnsupportedResolution, float64(r))
	}
}

// FibGrid is a Fibonacci grid loaded at a given resolution, queryable
// for nearest neighbors and cell membership.
type FibGrid struct {
	*cellgrid.Grid

	Res       Resolution
	SortOrder pkg.SortOrder
	Metadata  gridfile.Metadata
}

// NewFibGrid resolves a resolution to its pre-computed grid file and
// builds the cell-indexed grid over all points.
func NewFibGrid(src *gridfile.Source, res Resolution, geodatum pkg.Geodatum, sortOrder pkg.SortOrder) (*FibGrid, error) {
	return newFibGrid(src, res, geodatum, sortOrder, false)
}

// NewFibLandGrid is NewFibGrid restricted to points whose land flag is
// set. Grid point indices keep their original dense values, they are
// just sparse within the subset.
func NewFibLandGrid(src *gridfile.Source, res Resolution, geodatum pkg.Geodatum, sortOrder pkg.SortOrder) (*FibGrid, error) {
	return newFibGrid(src, res, geodatum, sortOrder, true)
}

func newFibGrid(src *gridfile.Source, res Resolution, geodatum pkg.Geodatum, sortOrder pkg.SortOrder, landOnly bool) (*FibGrid, error) {
	n, err := res.PointCount()
	if err != nil {
		return nil, err
	}

	data, err := src.Read(n, geodatum, sortOrder)
	if err != nil {
		return nil, err
	}

	opts := []cellgrid.Option{cellgrid.WithGeodatum(geodatum)}
	if landOnly {
		opts = append(opts, cellgrid.WithSubset(data.Meta.LandIndices()))
	}

	cg, err := cellgrid.New(data.Lon, data.Lat, data.Cell, data.GPI, opts...)
	if err != nil {
		return nil, err
	}

	return &FibGrid{
		Grid:      cg,
		Res:       res,
		SortOrder: sortOrder,
		Metadata:  data.Meta,
	}, nil
}
