// Package runstats maintains running (online) statistics -- arithmetic mean
// and root-mean-square -- over a stream of batches of numeric tensors,
// optionally partitioned into a dynamically growing number of bins.
//
// It is meant for settings where data arrives incrementally (per-step or
// per-epoch samples) and retaining every sample is infeasible: only the
// sufficient statistics (a running sum and count) are kept per bin.
//
// A RunningStats is configured with the shape of one sample (its "dimension
// spec"), a Reduction policy and an optional set of reduce-axes: sample axes
// that are averaged away in every output rather than retained
// per-output-element. Batches are tensors with one extra leading row axis,
// one row per sample. Each row can be routed to a bin with an accumulate-by
// index; rows sharing a bin contribute to one running statistic, and the set
// of bins grows on demand as larger indices appear.
//
// NaN values in the input are tolerated by exclusion at per-element
// granularity: a NaN contributes neither to the running sum nor to the
// count, so a batch with partial NaNs still yields a valid partial
// statistic. All other malformed inputs are errors.
//
// Example, mean loss per dataset partition:
//
//	stats := runstats.New(shapes.Make(), runstats.ReductionMean)
//	for _, step := range steps {
//		// step.Losses: (rows,), step.Partitions: one bin id per row.
//		stats.AccumulateBatch(step.Losses, step.Partitions)
//	}
//	perPartition := stats.CurrentResult() // (numPartitions,)
//
// A RunningStats is not safe for concurrent use: guard it with external
// locking if AccumulateBatch, CurrentResult or Reset can race.
package runstats

import (
	"fmt"
	"slices"

	"github.com/gomlx/runstats/scatter"
	"github.com/gomlx/runstats/shapes"
	"github.com/gomlx/runstats/tensors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// RunningStats accumulates an online per-bin statistic over shaped batches.
// Create it with New; the zero value is not usable.
//
// State is one running sum tensor and one running count tensor, both shaped
// `(nBins,)+keptShape`. The count is kept per output element, not per bin,
// because NaN exclusion can give elements of the same bin different
// denominators.
type RunningStats struct {
	dim        shapes.Shape
	reduction  Reduction
	reduceAxes []int // Sorted, in sample coordinates (batch axis excluded).
	keptShape  shapes.Shape

	nBins  int
	binned bool // Whether an accumulate-by index was ever supplied.
	sum    *tensors.Tensor
	count  *tensors.Tensor
}

// New creates a RunningStats accumulator for samples of shape dim, reduced
// with the given policy. Each reduce-axis is an axis of dim (0 is the first
// sample axis, not the batch row axis) to be averaged away in every output;
// the axes that remain form the kept shape of all results.
//
// It panics with a *ConfigurationError if reduction is not a valid Reduction
// or if reduceAxes contains an out-of-range or duplicate axis. A rank-0 dim
// (scalar samples) is valid.
func New(dim shapes.Shape, reduction Reduction, reduceAxes ...int) *RunningStats {
	if !reduction.IsAReduction() {
		configErrorf("runstats.New: invalid reduction %d, valid values are %v", reduction, ReductionValues())
	}
	if err := shapes.CheckAxes(dim.Rank(), reduceAxes...); err != nil {
		configErrorf("runstats.New(dim=%s): invalid reduce-axes %v: %v", dim, reduceAxes, err)
	}
	rs := &RunningStats{
		dim:        dim.Clone(),
		reduction:  reduction,
		reduceAxes: slices.Clone(reduceAxes),
		keptShape:  dim.DropAxes(reduceAxes...),
		nBins:      1,
	}
	slices.Sort(rs.reduceAxes)
	rs.sum = tensors.FromShape(rs.stateShape(1))
	rs.count = tensors.FromShape(rs.stateShape(1))
	return rs
}

// Dim returns the configured per-sample shape.
func (rs *RunningStats) Dim() shapes.Shape { return rs.dim.Clone() }

// KeptShape returns the per-sample shape with the reduce-axes removed: the
// trailing shape of every result.
func (rs *RunningStats) KeptShape() shapes.Shape { return rs.keptShape.Clone() }

// Reduction returns the configured reduction policy.
func (rs *RunningStats) Reduction() Reduction { return rs.reduction }

// NBins returns the current number of known bins. It is at least 1 and grows
// monotonically as larger accumulate-by indices are observed; only
// Reset(true) shrinks it back.
func (rs *RunningStats) NBins() int { return rs.nBins }

// String implements fmt.Stringer.
func (rs *RunningStats) String() string {
	return fmt.Sprintf("RunningStats(%s, dim=%s, reduceAxes=%v, bins=%d)",
		rs.reduction, rs.dim, rs.reduceAxes, rs.nBins)
}

// stateShape is the shape of the running sum/count for the given number of
// bins: `(nBins,)+keptShape`.
func (rs *RunningStats) stateShape(nBins int) shapes.Shape {
	dims := append([]int{nBins}, rs.keptShape.Dimensions...)
	return shapes.Make(dims...)
}

// batchReduceAxes translates the configured reduce-axes from sample
// coordinates to batch coordinates (everything shifts by the row axis).
func (rs *RunningStats) batchReduceAxes() []int {
	axes := make([]int, len(rs.reduceAxes))
	for ii, axis := range rs.reduceAxes {
		axes[ii] = axis + 1
	}
	return axes
}

// checkBatch validates a batch and its accumulate-by index, panicking with a
// *ShapeError on any mismatch, and returns the number of rows. It does not
// touch accumulator state.
func (rs *RunningStats) checkBatch(batch *tensors.Tensor, accumulateBy []int) (rows int) {
	if batch == nil {
		shapeErrorf("%s.AccumulateBatch: batch is nil", rs)
	}
	if batch.Rank() != rs.dim.Rank()+1 {
		shapeErrorf("%s.AccumulateBatch: batch %s must have one leading row axis followed by the sample shape %s",
			rs, batch.Shape(), rs.dim)
	}
	if !batch.Shape().DropAxes(0).Equal(rs.dim) {
		shapeErrorf("%s.AccumulateBatch: batch %s rows don't match the sample shape %s",
			rs, batch.Shape(), rs.dim)
	}
	rows = batch.Dim(0)
	if accumulateBy == nil {
		return
	}
	if len(accumulateBy) != rows {
		shapeErrorf("%s.AccumulateBatch: accumulateBy has %d entries for %d rows", rs, len(accumulateBy), rows)
	}
	for _, bin := range accumulateBy {
		if bin < 0 {
			shapeErrorf("%s.AccumulateBatch: bin index %d is negative", rs, bin)
		}
	}
	return
}

// AccumulateBatch folds one batch into the running per-bin statistics and
// returns the batch-local statistic: the reduction computed over this call's
// rows only, independent of any prior history.
//
// The batch must be shaped `(rows,)+dim`. accumulateBy, when non-nil, gives
// one non-negative bin index per row; when nil, every row goes to bin 0. A
// bin index at or beyond the current NBins grows the per-bin state,
// zero-padded, to `max(accumulateBy)+1` bins.
//
// The returned tensor is shaped `(max(accumulateBy)+1,)+keptShape`, with
// zeros for bins that got no rows in this call. When accumulateBy is nil the
// bin axis is elided and the result is shaped keptShape. NaN elements of the
// batch are excluded -- individually, not per row -- from both the batch-local
// result and the running state.
//
// It panics with a *ShapeError on any batch or accumulateBy mismatch, in
// which case the accumulator state is unchanged.
func (rs *RunningStats) AccumulateBatch(batch *tensors.Tensor, accumulateBy []int) *tensors.Tensor {
	rows := rs.checkBatch(batch, accumulateBy)

	// NaN exclusion: a mask of valid elements follows the values through
	// the same reductions, giving a per-element count.
	values, mask := tensors.MaskNaN(rs.reduction.preTransform(batch))
	rowSums := tensors.ReduceSum(values, rs.batchReduceAxes()...)
	rowCounts := tensors.ReduceSum(mask, rs.batchReduceAxes()...)

	by := accumulateBy
	if by == nil {
		by = make([]int, rows)
	}
	binSums := scatter.Sum(rowSums, by, scatter.AutoNumBins)
	binCounts := scatter.Sum(rowCounts, by, scatter.AutoNumBins)
	batchBins := binSums.Dim(0)

	// Fold into the cumulative state. The batch bins are always a prefix of
	// the (possibly grown) state bins.
	if batchBins > rs.nBins {
		rs.grow(batchBins)
	}
	if accumulateBy != nil {
		rs.binned = true
	}
	floats.Add(rs.sum.MutableFlatData()[:binSums.Size()], binSums.ConstFlatData())
	floats.Add(rs.count.MutableFlatData()[:binCounts.Size()], binCounts.ConstFlatData())

	result := rs.reduction.postTransform(meanOrZero(binSums, binCounts))
	if accumulateBy == nil {
		return tensors.Reshape(result, rs.keptShape.Dimensions...)
	}
	return result
}

// CurrentResult returns the cumulative per-bin statistic over everything
// accumulated since construction or the last Reset. Bins with no
// contributions report zero, never NaN.
//
// The result is shaped `(NBins(),)+keptShape`; if no accumulate-by index was
// ever supplied the bin axis is elided and the result is shaped keptShape
// (the squeeze-if-never-binned rule). It is a pure query: no state changes.
func (rs *RunningStats) CurrentResult() *tensors.Tensor {
	result := rs.reduction.postTransform(meanOrZero(rs.sum, rs.count))
	if !rs.binned {
		return tensors.Reshape(result, rs.keptShape.Dimensions...)
	}
	return result
}

// Reset clears all accumulated sums and counts. If resetNBins is true it
// also collapses the state back to a single bin and forgets that binning was
// ever requested, so results are reported without a bin axis again until a
// new accumulate-by index arrives.
func (rs *RunningStats) Reset(resetNBins bool) {
	klog.V(2).Infof("%s: reset (resetNBins=%v)", rs, resetNBins)
	if resetNBins && rs.nBins > 1 {
		rs.nBins = 1
		rs.sum = tensors.FromShape(rs.stateShape(1))
		rs.count = tensors.FromShape(rs.stateShape(1))
	} else {
		tensors.Zero(rs.sum)
		tensors.Zero(rs.count)
	}
	if resetNBins {
		rs.binned = false
	}
}

// grow resizes the per-bin state to newNBins, zero-padding the new bins. The
// grown tensors are fully built before being swapped in.
func (rs *RunningStats) grow(newNBins int) {
	klog.V(2).Infof("%s: growing to %d bins", rs, newNBins)
	sum := tensors.FromShape(rs.stateShape(newNBins))
	count := tensors.FromShape(rs.stateShape(newNBins))
	copy(sum.MutableFlatData(), rs.sum.ConstFlatData())
	copy(count.MutableFlatData(), rs.count.ConstFlatData())
	rs.sum = sum
	rs.count = count
	rs.nBins = newNBins
}

// meanOrZero divides sum by count elementwise, reporting 0 (not NaN) where
// the count is zero. Shapes must match; it returns a new tensor.
func meanOrZero(sum, count *tensors.Tensor) *tensors.Tensor {
	out := sum.Clone()
	outFlat := out.MutableFlatData()
	for ii, n := range count.ConstFlatData() {
		if n == 0 {
			outFlat[ii] = 0
		} else {
			outFlat[ii] /= n
		}
	}
	return out
}
