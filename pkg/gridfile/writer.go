package gridfile

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/lintang-b-s/fibgrid/pkg"
)

const gpDim = "gp"

// Write stores grid data as a NetCDF classic artifact with the
// canonical variable set, plus one <order>_sorting index variable per
// entry in sortings. This is the offline production half of the grid
// files Read consumes, and it is what tests use to fabricate
// artifacts.
func Write(path string, data *GridData, sortings map[pkg.SortOrder][]int32) error {
	size := data.Len()

	h := cdf.NewHeader([]string{gpDim}, []int{size})
	h.AddAttribute("", "title", "Fibonacci grid")

	h.AddVariable(varLon, []string{gpDim}, []float64{0})
	h.AddAttribute(varLon, "units", "degrees_east")
	h.AddVariable(varLat, []string{gpDim}, []float64{0})
	h.AddAttribute(varLat, "units", "degrees_north")
	h.AddVariable(varCell, []string{gpDim}, []int32{0})
	h.AddVariable(varGPI, []string{gpDim}, []int32{0})

	h.AddVariable("land_frac_fw", []string{gpDim}, []float64{0})
	h.AddVariable("land_frac_hw", []string{gpDim}, []float64{0})
	h.AddVariable("land_mask_hw", []string{gpDim}, []uint8{0})
	h.AddVariable("land_mask_fw", []string{gpDim}, []uint8{0})
	h.AddVariable("land_flag", []string{gpDim}, []uint8{0})

	orders := make([]pkg.SortOrder, 0, len(sortings))
	for order := range sortings {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i] < orders[j] })
	for _, order := range orders {
		h.AddVariable(fmt.Sprintf("%s_sorting", order), []string{gpDim}, []int32{0})
	}

	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	nc, err := cdf.Create(f, h)
	if err != nil {
		return err
	}

	vars := []struct {
		name string
		buf  interface{}
	}{
		{varLon, data.Lon},
		{varLat, data.Lat},
		{varCell, data.Cell},
		{varGPI, data.GPI},
		{"land_frac_fw", data.Meta.LandFracFW},
		{"land_frac_hw", data.Meta.LandFracHW},
		{"land_mask_hw", flagBytes(data.Meta.LandMaskHW)},
		{"land_mask_fw", flagBytes(data.Meta.LandMaskFW)},
		{"land_flag", flagBytes(data.Meta.LandFlag)},
	}
	for _, v := range vars {
		if err := writeVar(nc, v.name, v.buf); err != nil {
			return err
		}
	}
	for _, order := range orders {
		if len(sortings[order]) != size {
			return fmt.Errorf("%s sorting has %d indices, want %d",
				order, len(sortings[order]), size)
		}
		if err := writeVar(nc, fmt.Sprintf("%s_sorting", order), sortings[order]); err != nil {
			return err
		}
	}

	return cdf.UpdateNumRecs(f)
}

// flagBytes reinterprets flag values as the []uint8 the cdf library
// requires for NetCDF BYTE variables; readFlags converts them back.
func flagBytes(f []int8) []uint8 {
	out := make([]uint8, len(f))
	for i, v := range f {
		out[i] = uint8(v)
	}
	return out
}

func writeVar(nc *cdf.File, name string, buf interface{}) error {
	w := nc.Writer(name, nil, nil)
	n, err := w.Write(buf)
	// cdf returns io.EOF as a benign sentinel once a fixed-size
	// variable has been written in full; per its Writer contract the
	// error only matters when fewer elements were written.
	if err == io.EOF && n == reflect.ValueOf(buf).Len() {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("writing variable %q: %v", name, err)
	}
	return nil
}

// LatBandSorting returns the permutation that orders points by
// latitude band from 90S to 90N, i.e. the index array stored as
// latband_sorting. The sort is stable so points inside a band keep
// their original relative order.
func LatBandSorting(lat []float64) []int32 {
	idx := make([]int32, len(lat))
	for i := range idx {
		idx[i] = int32(i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lat[idx[a]] < lat[idx[b]]
	})
	return idx
}
