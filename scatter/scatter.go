// Package scatter implements scatter-reduce operations over the leading
// (row) axis of a tensor: rows are grouped by an integer index and reduced
// into one output row per group ("bin").
//
// The index is dense: bin ids are small non-negative integers, and the output
// always has one row per bin in [0, numBins), zero-filled for bins with no
// rows. This is the primitive behind the runstats accumulators, but it is
// usable on its own.
package scatter

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/runstats/shapes"
	"github.com/gomlx/runstats/tensors"
	"gonum.org/v1/gonum/floats"
)

// AutoNumBins can be given as numBins to Sum or Mean to size the output from
// the largest index present: numBins becomes `max(index)+1`.
const AutoNumBins = -1

// checkSrcIndex validates the src/index pair shared by Sum and Mean and
// returns the number of rows, the flat size of one row, and the resolved
// number of bins.
func checkSrcIndex(src *tensors.Tensor, index []int, numBins int) (rows, rowSize, resolvedBins int) {
	src.AssertValid()
	if src.Rank() < 1 {
		exceptions.Panicf("scatter: src must have at least the leading row axis, got a scalar")
	}
	rows = src.Dim(0)
	rowSize = src.Size() / rows
	if len(index) != rows {
		exceptions.Panicf("scatter: index has %d entries, src %s has %d rows", len(index), src.Shape(), rows)
	}
	maxIdx := 0
	for _, bin := range index {
		if bin < 0 {
			exceptions.Panicf("scatter: bin index %d is negative", bin)
		}
		maxIdx = max(maxIdx, bin)
	}
	resolvedBins = numBins
	if resolvedBins == AutoNumBins {
		resolvedBins = maxIdx + 1
	} else if resolvedBins < maxIdx+1 {
		exceptions.Panicf("scatter: numBins=%d cannot hold bin index %d", numBins, maxIdx)
	}
	return
}

// outShape is the shape of a scatter result: the row axis replaced by the
// bin axis.
func outShape(src *tensors.Tensor, numBins int) shapes.Shape {
	dims := append([]int{numBins}, src.Shape().Dimensions[1:]...)
	return shapes.Make(dims...)
}

// Sum scatters the rows of src by index, summing rows that share a bin. The
// result is shaped like src with the leading axis replaced by numBins; bins
// with no rows are zero. numBins can be AutoNumBins.
//
// It panics with an error if len(index) doesn't match the number of rows, if
// any index is negative, or if numBins cannot hold the largest index.
func Sum(src *tensors.Tensor, index []int, numBins int) *tensors.Tensor {
	rows, rowSize, resolvedBins := checkSrcIndex(src, index, numBins)
	out := tensors.FromShape(outShape(src, resolvedBins))
	srcFlat := src.ConstFlatData()
	outFlat := out.MutableFlatData()
	for row := 0; row < rows; row++ {
		bin := index[row]
		floats.Add(outFlat[bin*rowSize:(bin+1)*rowSize], srcFlat[row*rowSize:(row+1)*rowSize])
	}
	return out
}

// Mean scatters the rows of src by index and averages the rows of each bin.
// Bins with no rows are zero, not NaN. numBins can be AutoNumBins.
func Mean(src *tensors.Tensor, index []int, numBins int) *tensors.Tensor {
	out := Sum(src, index, numBins)
	rowSize := src.Size() / src.Dim(0)
	counts := make([]float64, out.Dim(0))
	for _, bin := range index {
		counts[bin]++
	}
	outFlat := out.MutableFlatData()
	for bin, count := range counts {
		if count == 0 {
			continue
		}
		floats.Scale(1/count, outFlat[bin*rowSize:(bin+1)*rowSize])
	}
	return out
}

// RowCounts returns how many rows of index fall into each bin, as a tensor of
// shape (numBins,). numBins can be AutoNumBins, in which case index must not
// be empty.
func RowCounts(index []int, numBins int) *tensors.Tensor {
	if numBins == AutoNumBins {
		if len(index) == 0 {
			exceptions.Panicf("scatter.RowCounts: cannot infer numBins from an empty index")
		}
		numBins = slices.Max(index) + 1
	}
	out := tensors.FromShape(shapes.Make(numBins))
	outFlat := out.MutableFlatData()
	for _, bin := range index {
		if bin < 0 || bin >= numBins {
			exceptions.Panicf("scatter.RowCounts: bin index %d out of range [0, %d)", bin, numBins)
		}
		outFlat[bin]++
	}
	return out
}
