package runstats

import "github.com/gomlx/runstats/tensors"

// Reduction selects which running statistic a RunningStats accumulator
// maintains. Both reductions accumulate identically (a running sum and
// count); they differ only in a pure pre-transform of the inputs and a pure
// post-transform of the accumulated mean.
type Reduction int

const (
	// ReductionMean maintains the arithmetic mean.
	ReductionMean Reduction = iota

	// ReductionRMS maintains the root-mean-square: inputs are squared before
	// accumulation, and the accumulated mean is square-rooted on output.
	ReductionRMS
)

//go:generate go tool enumer -type Reduction -trimprefix=Reduction -transform=snake -values -text -json -output=gen_reduction_enumer.go reduction.go

// preTransform is applied elementwise to batch values before any
// accumulation. NaN values stay NaN through it, so masking can happen after.
func (r Reduction) preTransform(t *tensors.Tensor) *tensors.Tensor {
	if r == ReductionRMS {
		return tensors.Square(t)
	}
	return t
}

// postTransform is applied elementwise to an accumulated mean to produce the
// reported statistic.
func (r Reduction) postTransform(t *tensors.Tensor) *tensors.Tensor {
	if r == ReductionRMS {
		return tensors.Sqrt(t)
	}
	return t
}
