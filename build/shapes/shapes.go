// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package shapes defines the type of values flowing through an HLO graph.
//
// A shape is either an array (an element type, a list of dimensions,
// and an optional physical layout), a tuple of shapes, or a token.
package shapes

import (
	"fmt"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"golang.org/x/exp/slices"
)

// Kind of a shape.
type Kind int

const (
	// Array is a dense multi-dimensional array of elements.
	Array Kind = iota
	// Tuple groups other shapes.
	Tuple
	// Token orders side effects. It carries no data.
	Token
)

func (k Kind) String() string {
	switch k {
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Token:
		return "token"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type (
	// Layout of an array in memory.
	// MinorToMajor lists the dimensions from the fastest varying to the slowest.
	Layout struct {
		MinorToMajor []int
	}

	// Shape of a value.
	Shape struct {
		Kind Kind

		// Array is the element type and the dimensions of an array shape.
		Array shape.Shape

		// Layout is the physical layout of an array shape.
		// A nil layout means the layout has not been assigned yet.
		Layout *Layout

		// Elements of a tuple shape.
		Elements []*Shape
	}
)

// DefaultLayout returns the major-to-minor layout of an array of the given rank,
// that is {rank-1, ..., 1, 0}.
func DefaultLayout(rank int) *Layout {
	m2m := make([]int, rank)
	for i := range m2m {
		m2m[i] = rank - 1 - i
	}
	return &Layout{MinorToMajor: m2m}
}

// IsDefault returns true if the layout is the default major-to-minor layout.
func (l *Layout) IsDefault() bool {
	rank := len(l.MinorToMajor)
	for i, dim := range l.MinorToMajor {
		if dim != rank-1-i {
			return false
		}
	}
	return true
}

// Equal returns true if two layouts are the same.
func (l *Layout) Equal(other *Layout) bool {
	if l == nil || other == nil {
		return l == other
	}
	return slices.Equal(l.MinorToMajor, other.MinorToMajor)
}

func (l *Layout) String() string {
	ss := make([]string, len(l.MinorToMajor))
	for i, dim := range l.MinorToMajor {
		ss[i] = fmt.Sprint(dim)
	}
	return "{" + strings.Join(ss, ",") + "}"
}

// Make returns an array shape with the default layout.
func Make(dt dtype.DataType, dims ...int) *Shape {
	sh := MakeNoLayout(dt, dims...)
	sh.Layout = DefaultLayout(len(dims))
	return sh
}

// MakeNoLayout returns an array shape without a layout.
func MakeNoLayout(dt dtype.DataType, dims ...int) *Shape {
	return &Shape{
		Kind: Array,
		Array: shape.Shape{
			DType:       dt,
			AxisLengths: append([]int{}, dims...),
		},
	}
}

// MakeTuple returns a tuple shape.
func MakeTuple(elements ...*Shape) *Shape {
	return &Shape{Kind: Tuple, Elements: elements}
}

// MakeToken returns a token shape.
func MakeToken() *Shape {
	return &Shape{Kind: Token}
}

// IsArray returns true if the shape is an array.
func (s *Shape) IsArray() bool {
	return s.Kind == Array
}

// IsTuple returns true if the shape is a tuple.
func (s *Shape) IsTuple() bool {
	return s.Kind == Tuple
}

// IsToken returns true if the shape is a token.
func (s *Shape) IsToken() bool {
	return s.Kind == Token
}

// IsScalar returns true if the shape is an array of rank 0.
func (s *Shape) IsScalar() bool {
	return s.Kind == Array && len(s.Array.AxisLengths) == 0
}

// DType returns the element type of an array shape.
func (s *Shape) DType() dtype.DataType {
	return s.Array.DType
}

// Dims returns the dimensions of an array shape.
func (s *Shape) Dims() []int {
	return s.Array.AxisLengths
}

// Rank returns the number of dimensions of an array shape.
func (s *Shape) Rank() int {
	return len(s.Array.AxisLengths)
}

// ElementsIn returns the number of elements in the shape.
// Tuples count the elements of all their leaves. Tokens have no elements.
func (s *Shape) ElementsIn() int {
	switch s.Kind {
	case Array:
		return Product(s.Array.AxisLengths)
	case Tuple:
		total := 0
		for _, el := range s.Elements {
			total += el.ElementsIn()
		}
		return total
	}
	return 0
}

// Product returns the number of elements of an array given its dimensions.
func Product(dims []int) int {
	n := 1
	for _, dim := range dims {
		n *= dim
	}
	return n
}

// Strides returns, for each dimension, the distance between two consecutive
// elements along that dimension in a row-major buffer.
func Strides(dims []int) []int {
	strides := make([]int, len(dims))
	stride := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= dims[i]
	}
	return strides
}

// HasLayout returns true if the shape and all its sub-shapes have a layout.
func (s *Shape) HasLayout() bool {
	switch s.Kind {
	case Array:
		return s.Layout != nil && len(s.Layout.MinorToMajor) == s.Rank()
	case Tuple:
		for _, el := range s.Elements {
			if !el.HasLayout() {
				return false
			}
		}
	}
	return true
}

// HasDefaultLayout returns true if the shape is an array with the default layout.
func (s *Shape) HasDefaultLayout() bool {
	return s.Kind == Array && s.HasLayout() && s.Layout.IsDefault()
}

// ContainsToken returns true if the shape is a token or a tuple containing a token.
func (s *Shape) ContainsToken() bool {
	switch s.Kind {
	case Token:
		return true
	case Tuple:
		for _, el := range s.Elements {
			if el.ContainsToken() {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of the shape.
func (s *Shape) Clone() *Shape {
	c := &Shape{
		Kind: s.Kind,
		Array: shape.Shape{
			DType:       s.Array.DType,
			AxisLengths: append([]int{}, s.Array.AxisLengths...),
		},
	}
	if s.Layout != nil {
		c.Layout = &Layout{MinorToMajor: append([]int{}, s.Layout.MinorToMajor...)}
	}
	if s.Elements != nil {
		c.Elements = make([]*Shape, len(s.Elements))
		for i, el := range s.Elements {
			c.Elements[i] = el.Clone()
		}
	}
	return c
}

// ClearLayout removes the layout of the shape and all its sub-shapes.
func (s *Shape) ClearLayout() {
	s.Layout = nil
	for _, el := range s.Elements {
		el.ClearLayout()
	}
}

// WithDType returns a copy of the array shape with a different element type.
func (s *Shape) WithDType(dt dtype.DataType) *Shape {
	c := s.Clone()
	c.Array.DType = dt
	return c
}

// Compatible returns true if two shapes are equal, ignoring layouts.
func (s *Shape) Compatible(other *Shape) bool {
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case Array:
		return s.Array.DType == other.Array.DType && slices.Equal(s.Array.AxisLengths, other.Array.AxisLengths)
	case Tuple:
		if len(s.Elements) != len(other.Elements) {
			return false
		}
		for i, el := range s.Elements {
			if !el.Compatible(other.Elements[i]) {
				return false
			}
		}
	}
	return true
}

// Equal returns true if two shapes are equal, including their layouts.
func (s *Shape) Equal(other *Shape) bool {
	if !s.Compatible(other) {
		return false
	}
	switch s.Kind {
	case Array:
		return s.Layout.Equal(other.Layout)
	case Tuple:
		for i, el := range s.Elements {
			if !el.Equal(other.Elements[i]) {
				return false
			}
		}
	}
	return true
}

// String representation of the shape, for example f32[2,3]{1,0}.
func (s *Shape) String() string {
	switch s.Kind {
	case Token:
		return "token[]"
	case Tuple:
		ss := make([]string, len(s.Elements))
		for i, el := range s.Elements {
			ss[i] = el.String()
		}
		return "(" + strings.Join(ss, ", ") + ")"
	}
	dims := make([]string, s.Rank())
	for i, dim := range s.Array.AxisLengths {
		dims[i] = fmt.Sprint(dim)
	}
	str := fmt.Sprintf("%s[%s]", PrimitiveName(s.Array.DType), strings.Join(dims, ","))
	if s.Layout != nil && s.Rank() > 0 {
		str += s.Layout.String()
	}
	return str
}

// PrimitiveName returns the short name of an element type (f32, s64, pred, ...).
func PrimitiveName(dt dtype.DataType) string {
	switch dt {
	case dtype.Bool:
		return "pred"
	case dtype.Bfloat16:
		return "bf16"
	case dtype.Float32:
		return "f32"
	case dtype.Float64:
		return "f64"
	case dtype.Int32:
		return "s32"
	case dtype.Int64:
		return "s64"
	case dtype.Uint32:
		return "u32"
	case dtype.Uint64:
		return "u64"
	}
	return dt.String()
}
