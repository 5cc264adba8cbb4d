package gridfile

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/lintang-b-s/fibgrid/pkg"
)

// Variable names inside a grid file. Every metadata field is permuted
// together with the coordinate arrays when a sort order is applied.
const (
	varLon  = "lon"
	varLat  = "lat"
	varCell = "cell"
	varGPI  = "gpi"
)

var metadataFields = []string{
	"land_frac_fw",
	"land_frac_hw",
	"land_mask_hw",
	"land_mask_fw",
	"land_flag",
}

func readGridFile(path string, sortOrder pkg.SortOrder) (*GridData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrArtifactParse, err)
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pkg.ErrArtifactParse, path, err)
	}

	size, err := variableLength(nc, varLon)
	if err != nil {
		return nil, err
	}

	data := &GridData{}
	if data.Lon, err = readFloats(nc, varLon, size); err != nil {
		return nil, err
	}
	if data.Lat, err = readFloats(nc, varLat, size); err != nil {
		return nil, err
	}
	if data.Cell, err = readInts(nc, varCell, size); err != nil {
		return nil, err
	}
	if data.GPI, err = readInts(nc, varGPI, size); err != nil {
		return nil, err
	}
	if data.Meta.LandFracFW, err = readFloats(nc, "land_frac_fw", size); err != nil {
		return nil, err
	}
	if data.Meta.LandFracHW, err = readFloats(nc, "land_frac_hw", size); err != nil {
		return nil, err
	}
	if data.Meta.LandMaskHW, err = readFlags(nc, "land_mask_hw", size); err != nil {
		return nil, err
	}
	if data.Meta.LandMaskFW, err = readFlags(nc, "land_mask_fw", size); err != nil {
		return nil, err
	}
	if data.Meta.LandFlag, err = readFlags(nc, "land_flag", size); err != nil {
		return nil, err
	}

	if sortOrder != pkg.SORT_NONE {
		name := fmt.Sprintf("%s_sorting", sortOrder)
		idx, err := readInts(nc, name, size)
		if err != nil {
			return nil, err
		}
		if err := checkSorting(name, idx, size); err != nil {
			return nil, err
		}
		data.applySorting(idx)
	}

	return data, nil
}

// checkSorting rejects a stored index sequence that is not a
// permutation of [0, size), so a corrupt artifact fails the read
// instead of panicking or silently duplicating records.
func checkSorting(name string, idx []int32, size int) error {
	seen := make([]bool, size)
	for i, j := range idx {
		if j < 0 || int(j) >= size {
			return fmt.Errorf("%w: variable %q: index %d out of range [0, %d) at position %d",
				pkg.ErrArtifactParse, name, j, size, i)
		}
		if seen[j] {
			return fmt.Errorf("%w: variable %q: index %d repeated at position %d",
				pkg.ErrArtifactParse, name, j, i)
		}
		seen[j] = true
	}
	return nil
}

// applySorting permutes every array by the same stored index sequence,
// so per-point correspondence is never broken.
func (d *GridData) applySorting(idx []int32) {
	d.Lon = permute(d.Lon, idx)
	d.Lat = permute(d.Lat, idx)
	d.Cell = permute(d.Cell, idx)
	d.GPI = permute(d.GPI, idx)
	d.Meta.LandFracFW = permute(d.Meta.LandFracFW, idx)
	d.Meta.LandFracHW = permute(d.Meta.LandFracHW, idx)
	d.Meta.LandMaskHW = permute(d.Meta.LandMaskHW, idx)
	d.Meta.LandMaskFW = permute(d.Meta.LandMaskFW, idx)
	d.Meta.LandFlag = permute(d.Meta.LandFlag, idx)
}

func permute[T any](a []T, idx []int32) []T {
	out := make([]T, len(a))
	for i, j := range idx {
		out[i] = a[j]
	}
	return out
}

func hasVariable(nc *cdf.File, name string) bool {
	for _, v := range nc.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

func variableLength(nc *cdf.File, name string) (int, error) {
	if !hasVariable(nc, name) {
		return 0, fmt.Errorf("%w: missing variable %q", pkg.ErrArtifactParse, name)
	}
	size := 1
	for _, l := range nc.Header.Lengths(name) {
		size *= l
	}
	return size, nil
}

func readRaw(nc *cdf.File, name string, want int) (interface{}, error) {
	size, err := variableLength(nc, name)
	if err != nil {
		return nil, err
	}
	if size != want {
		return nil, fmt.Errorf("%w: variable %q has %d values, want %d",
			pkg.ErrArtifactParse, name, size, want)
	}

	r := nc.Reader(name, nil, nil)
	buf := r.Zero(size)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", pkg.ErrArtifactParse, name, err)
	}
	return buf, nil
}

func readFloats(nc *cdf.File, name string, want int) ([]float64, error) {
	buf, err := readRaw(nc, name, want)
	if err != nil {
		return nil, err
	}

	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: variable %q holds %T, want floating point",
			pkg.ErrArtifactParse, name, buf)
	}
}

func readInts(nc *cdf.File, name string, want int) ([]int32, error) {
	buf, err := readRaw(nc, name, want)
	if err != nil {
		return nil, err
	}

	switch b := buf.(type) {
	case []int32:
		return b, nil
	case []int16:
		out := make([]int32, len(b))
		for i, v := range b {
			out[i] = int32(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: variable %q holds %T, want integer",
			pkg.ErrArtifactParse, name, buf)
	}
}

func readFlags(nc *cdf.File, name string, want int) ([]int8, error) {
	buf, err := readRaw(nc, name, want)
	if err != nil {
		return nil, err
	}

	switch b := buf.(type) {
	case []int8:
		return b, nil
	case []byte:
		out := make([]int8, len(b))
		for i, v := range b {
			out[i] = int8(v)
		}
		return out, nil
	case []int16:
		out := make([]int8, len(b))
		for i, v := range b {
			out[i] = int8(v)
		}
		return out, nil
	case []int32:
		out := make([]int8, len(b))
		for i, v := range b {
			out[i] = int8(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: variable %q holds %T, want flag",
			pkg.ErrArtifactParse, name, buf)
	}
}
