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

// Package shapes defines Shape, the dimension spec of a dense array, and the
// axis bookkeeping used by the runstats accumulators.
//
// A Shape is an ordered list of positive extents, one per axis. Rank 0 is
// allowed and means a scalar. Unlike a full tensor library there is no dtype
// here: every array in this module holds float64 values.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a Shape.
//   - Axis: the index of a dimension. We refer to a dimension index as "axis"
//     (plural axes), and its size as its dimension.
//   - Scalar: a shape with no axes, holding a single value.
//   - Kept shape: the shape that remains after dropping a set of axes, see
//     Shape.DropAxes.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Shape represents the shape of a dense array: the ordered extents of its
// axes. Use Make to create one; the zero value is a valid scalar shape.
type Shape struct {
	Dimensions []int
}

// Make returns a Shape with the given dimensions. Called without arguments it
// returns a scalar shape.
//
// It panics with an error if any dimension is smaller than 1.
func Make(dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%v): cannot create a shape with an axis with dimension <= 0", dimensions)
		}
	}
	return s
}

// Scalar returns a rank-0 shape.
func Scalar() Shape { return Shape{} }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return "()"
	}
	return fmt.Sprintf("%v", s.Dimensions)
}

// Size returns the number of elements an array of this shape holds. It's the
// product of all dimensions, and 1 for a scalar.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Equal compares two shapes for equality: rank and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	if s.Rank() != s2.Rank() {
		return false
	}
	if s.IsScalar() {
		return true
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// CheckAxes validates a set of axes against a shape of the given rank: every
// axis must be in [0, rank) and no axis may repeat. It returns a descriptive
// error, or nil if the axes are valid.
func CheckAxes(rank int, axes ...int) error {
	seen := make(map[int]bool, len(axes))
	for _, axis := range axes {
		if axis < 0 || axis >= rank {
			return errors.Errorf("axis %d out-of-range for rank %d", axis, rank)
		}
		if seen[axis] {
			return errors.Errorf("axis %d given more than once", axis)
		}
		seen[axis] = true
	}
	return nil
}

// DropAxes returns the shape that remains after removing the given axes,
// preserving the relative order of the remaining ones. The result has rank
// `s.Rank() - len(axes)`.
//
// It panics with an error if any axis is out-of-range or duplicated -- use
// CheckAxes beforehand to validate externally provided axes.
func (s Shape) DropAxes(axes ...int) Shape {
	if err := CheckAxes(s.Rank(), axes...); err != nil {
		exceptions.Panicf("Shape.DropAxes(%s, %v): %v", s, axes, err)
	}
	if len(axes) == 0 {
		return s.Clone()
	}
	dropped := make([]bool, s.Rank())
	for _, axis := range axes {
		dropped[axis] = true
	}
	kept := make([]int, 0, s.Rank()-len(axes))
	for axis, dim := range s.Dimensions {
		if !dropped[axis] {
			kept = append(kept, dim)
		}
	}
	return Shape{Dimensions: kept}
}
