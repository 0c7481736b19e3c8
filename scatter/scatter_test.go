package scatter

import (
	"testing"

	"github.com/gomlx/runstats/shapes"
	"github.com/gomlx/runstats/tensors"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	// 4 rows of shape [2].
	src := tensors.FromFlatDataAndDimensions([]float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	}, 4, 2)

	out := Sum(src, []int{0, 1, 0, 1}, 2)
	require.True(t, out.Shape().Equal(shapes.Make(2, 2)))
	require.Equal(t, []float64{6, 8, 10, 12}, out.ConstFlatData())

	// Empty bins stay zero.
	out = Sum(src, []int{0, 0, 3, 3}, 5)
	require.True(t, out.Shape().Equal(shapes.Make(5, 2)))
	require.Equal(t, []float64{4, 6, 0, 0, 0, 0, 12, 14, 0, 0}, out.ConstFlatData())

	// AutoNumBins sizes from the largest index.
	out = Sum(src, []int{2, 0, 2, 0}, AutoNumBins)
	require.True(t, out.Shape().Equal(shapes.Make(3, 2)))
	require.Equal(t, []float64{10, 12, 0, 0, 6, 8}, out.ConstFlatData())
}

func TestSumRank1(t *testing.T) {
	src := tensors.FromFlatDataAndDimensions([]float64{1, 2, 3}, 3)
	out := Sum(src, []int{1, 1, 0}, AutoNumBins)
	require.True(t, out.Shape().Equal(shapes.Make(2)))
	require.Equal(t, []float64{3, 3}, out.ConstFlatData())
}

func TestMean(t *testing.T) {
	src := tensors.FromFlatDataAndDimensions([]float64{
		1, 2,
		3, 4,
		5, 6,
	}, 3, 2)
	out := Mean(src, []int{0, 0, 2}, 4)
	require.True(t, out.Shape().Equal(shapes.Make(4, 2)))
	require.Equal(t, []float64{2, 3, 0, 0, 5, 6, 0, 0}, out.ConstFlatData())
}

func TestRowCounts(t *testing.T) {
	counts := RowCounts([]int{0, 2, 2, 0, 0}, AutoNumBins)
	require.True(t, counts.Shape().Equal(shapes.Make(3)))
	require.Equal(t, []float64{3, 0, 2}, counts.ConstFlatData())

	counts = RowCounts([]int{1}, 4)
	require.Equal(t, []float64{0, 1, 0, 0}, counts.ConstFlatData())

	require.Panics(t, func() { RowCounts([]int{4}, 2) })
	require.Panics(t, func() { RowCounts(nil, AutoNumBins) })
}

func TestValidation(t *testing.T) {
	src := tensors.FromFlatDataAndDimensions([]float64{1, 2, 3, 4}, 2, 2)
	require.Panics(t, func() { Sum(src, []int{0}, 1) })          // Wrong index length.
	require.Panics(t, func() { Sum(src, []int{0, -1}, 1) })      // Negative bin.
	require.Panics(t, func() { Sum(src, []int{0, 3}, 2) })       // numBins too small.
	require.Panics(t, func() { Sum(tensors.FromScalar(1), nil, 1) }) // Scalar src.
}
