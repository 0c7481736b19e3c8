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

// Package tensors implements Tensor, a host-only dense multidimensional array
// of float64 values, the numeric-array capability used by the runstats
// accumulators.
//
// Tensors are defined by their shape (see the shapes package) and their
// content, always stored as a flat (1D) row-major slice of float64.
//
// There are a few ways to construct a Tensor:
//
//   - FromShape(shape shapes.Shape): creates a tensor with the given shape,
//     and zero values.
//
//   - FromScalar(value float64): creates a rank-0 (scalar) tensor.
//
//   - FromFlatDataAndDimensions[T Number](data []T, dimensions ...int):
//     creates a Tensor with the given dimensions and sets the flattened
//     values with the given data, converting to float64. Example:
//
//     t := FromFlatDataAndDimensions([]int{1, 2, 3, 4}, 2, 2) // Tensor with [[1,2], [3,4]]
//
// Direct access to the flat data is through ConstFlatData and
// MutableFlatData. A Tensor is not safe for concurrent mutation.
package tensors

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/runstats/shapes"
	"golang.org/x/exp/constraints"
)

// Number constrains the types accepted by FromFlatDataAndDimensions. Values
// are converted to float64 for storage.
type Number interface {
	constraints.Integer | constraints.Float
}

// Tensor represents a dense multidimensional array of float64 values (from
// scalar with 0 dimensions to arbitrarily large dimensions), defined by its
// shape and its content, stored as a flat row-major slice.
type Tensor struct {
	shape shapes.Shape
	flat  []float64
}

// FromShape returns a Tensor of the given shape with all values zero.
func FromShape(shape shapes.Shape) *Tensor {
	return &Tensor{
		shape: shape.Clone(),
		flat:  make([]float64, shape.Size()),
	}
}

// FromScalar returns a rank-0 Tensor holding the given value.
func FromScalar(value float64) *Tensor {
	return &Tensor{shape: shapes.Scalar(), flat: []float64{value}}
}

// FromFlatDataAndDimensions returns a Tensor with the given dimensions, its
// flattened values initialized (and converted to float64) from data.
//
// It panics with an error if the size of data doesn't match the dimensions.
func FromFlatDataAndDimensions[T Number](data []T, dimensions ...int) *Tensor {
	shape := shapes.Make(dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("FromFlatDataAndDimensions(%s): data size is %d, but dimensions size is %d",
			shape, len(data), shape.Size())
	}
	flat := make([]float64, len(data))
	for ii, value := range data {
		flat[ii] = float64(value)
	}
	return &Tensor{shape: shape, flat: flat}
}

// Shape of the tensor, includes its dimensions.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// Rank returns the rank of the tensor's shape.
// It is a shortcut to `Tensor.Shape().Rank()`.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// IsScalar returns whether the tensor represents a scalar value.
// It is a shortcut to `Tensor.Shape().IsScalar()`.
func (t *Tensor) IsScalar() bool { return t.shape.IsScalar() }

// Size returns the number of elements in the tensor.
// It is a shortcut to `Tensor.Shape().Size()`.
func (t *Tensor) Size() int { return t.shape.Size() }

// Dim returns the dimension of the given axis, negative axes counting from
// the end. It is a shortcut to `Tensor.Shape().Dim(axis)`.
func (t *Tensor) Dim(axis int) int { return t.shape.Dim(axis) }

// AssertValid panics if the tensor is nil or if its backing data doesn't
// match its shape.
func (t *Tensor) AssertValid() {
	if t == nil {
		exceptions.Panicf("Tensor is nil")
	}
	if len(t.flat) != t.shape.Size() {
		exceptions.Panicf("Tensor(shape=%s) has %d values, shape requires %d", t.shape, len(t.flat), t.shape.Size())
	}
}

// ConstFlatData returns the flat row-major data of the tensor for reading.
// The returned slice is owned by the tensor: don't modify it, use
// MutableFlatData instead.
func (t *Tensor) ConstFlatData() []float64 {
	t.AssertValid()
	return t.flat
}

// MutableFlatData returns the flat row-major data of the tensor for
// reading and writing.
func (t *Tensor) MutableFlatData() []float64 {
	t.AssertValid()
	return t.flat
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	t.AssertValid()
	return &Tensor{shape: t.shape.Clone(), flat: slices.Clone(t.flat)}
}

// Equal reports whether two tensors have the same shape and exactly the same
// values. Notice NaN != NaN, so tensors holding NaN values never compare
// equal -- use the flat data directly for NaN-aware comparisons.
func (t *Tensor) Equal(t2 *Tensor) bool {
	t.AssertValid()
	t2.AssertValid()
	return t.shape.Equal(t2.shape) && slices.Equal(t.flat, t2.flat)
}

// String prints the shape and, for small tensors, the flattened values.
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(nil)"
	}
	const maxElementsToPrint = 16
	if t.Size() <= maxElementsToPrint {
		return fmt.Sprintf("Tensor%s: %v", t.shape, t.flat)
	}
	return fmt.Sprintf("Tensor%s: (%d values)", t.shape, t.Size())
}
