/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package tensors

// This file holds the small set of kernels the runstats accumulators need:
// elementwise transforms, NaN masking and strided axis reductions.

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/runstats/shapes"
	"gonum.org/v1/gonum/floats"
)

// Square returns a new tensor with every element squared.
func Square(t *Tensor) *Tensor {
	out := t.Clone()
	floats.Mul(out.flat, t.flat)
	return out
}

// Sqrt returns a new tensor with the square root of every element.
func Sqrt(t *Tensor) *Tensor {
	out := t.Clone()
	for ii, value := range out.flat {
		out.flat[ii] = math.Sqrt(value)
	}
	return out
}

// AddInPlace adds src elementwise into dst. The shapes must be equal.
func AddInPlace(dst, src *Tensor) {
	dst.AssertValid()
	src.AssertValid()
	if !dst.shape.Equal(src.shape) {
		exceptions.Panicf("AddInPlace: dst shape %s and src shape %s differ", dst.shape, src.shape)
	}
	floats.Add(dst.flat, src.flat)
}

// Zero clears all values of the tensor in place.
func Zero(t *Tensor) {
	t.AssertValid()
	clear(t.flat)
}

// MaskNaN splits t into values and a validity mask, at per-element
// granularity: values is a copy of t with every NaN replaced by 0, and mask
// holds 1 where the corresponding element of t is not NaN and 0 where it is.
// Infinities are not masked, they are values like any other.
func MaskNaN(t *Tensor) (values, mask *Tensor) {
	values = t.Clone()
	mask = FromShape(t.shape)
	for ii, value := range values.flat {
		if math.IsNaN(value) {
			values.flat[ii] = 0
		} else {
			mask.flat[ii] = 1
		}
	}
	return
}

// Reshape returns a tensor with the same values and the new dimensions. The
// total size must not change. Called without dimensions it returns a scalar
// (the input must then have exactly one element).
func Reshape(t *Tensor, dimensions ...int) *Tensor {
	t.AssertValid()
	shape := shapes.Make(dimensions...)
	if shape.Size() != t.Size() {
		exceptions.Panicf("Reshape: cannot reshape %s to %s, sizes differ", t.shape, shape)
	}
	out := t.Clone()
	out.shape = shape
	return out
}

// ReduceSum sums the tensor along the given axes, returning a tensor shaped
// `t.Shape().DropAxes(axes...)`. With no axes it returns a copy of t; summing
// over all axes returns a scalar.
//
// It panics with an error if any axis is out-of-range or duplicated.
func ReduceSum(t *Tensor, axes ...int) *Tensor {
	t.AssertValid()
	if err := shapes.CheckAxes(t.Rank(), axes...); err != nil {
		exceptions.Panicf("ReduceSum(%s, axes=%v): %v", t.shape, axes, err)
	}
	out := FromShape(t.shape.DropAxes(axes...))

	// Per input axis: the flat stride in the output, 0 for reduced axes.
	reduced := make([]bool, t.Rank())
	for _, axis := range axes {
		reduced[axis] = true
	}
	outStrides := make([]int, t.Rank())
	stride := 1
	for axis := t.Rank() - 1; axis >= 0; axis-- {
		if reduced[axis] {
			continue
		}
		outStrides[axis] = stride
		stride *= t.shape.Dimensions[axis]
	}

	// Single pass over the flat input, carrying the multi-index and the
	// corresponding output flat index.
	index := make([]int, t.Rank())
	outIdx := 0
	for _, value := range t.flat {
		out.flat[outIdx] += value
		for axis := t.Rank() - 1; axis >= 0; axis-- {
			index[axis]++
			outIdx += outStrides[axis]
			if index[axis] < t.shape.Dimensions[axis] {
				break
			}
			index[axis] = 0
			outIdx -= outStrides[axis] * t.shape.Dimensions[axis]
		}
	}
	return out
}
