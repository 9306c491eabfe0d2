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

// Package literal implements materialized values of HLO shapes.
//
// A literal is immutable once built. Array data is stored densely in
// row-major order (the last dimension varies the fastest), independently
// of the layout of the shape.
package literal

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/shapes"
	"github.com/gx-org/hlo/fmt/fmtarray"
)

// Literal is a shape-typed value.
type Literal struct {
	shape    *shapes.Shape
	data     any
	elements []*Literal
}

// New returns a new array literal given a shape and its row-major values.
func New[T dtype.GoDataType](sh *shapes.Shape, values []T) (*Literal, error) {
	if !sh.IsArray() {
		return nil, errors.Errorf("cannot build an array literal of shape %s", sh.String())
	}
	if got := dtype.Generic[T](); got != sh.DType() {
		return nil, errors.Errorf("cannot build a literal of shape %s from %s values", sh.String(), got.String())
	}
	if len(values) != sh.ElementsIn() {
		return nil, errors.Errorf("mismatch between the number of values (=%d) and the number of elements (=%d) in shape %s", len(values), sh.ElementsIn(), sh.String())
	}
	return &Literal{shape: sh, data: values}, nil
}

// Array returns a literal with the default layout given its values and dimensions.
// It panics if the number of values does not match the dimensions.
func Array[T dtype.GoDataType](values []T, dims ...int) *Literal {
	lit, err := New(shapes.Make(dtype.Generic[T](), dims...), values)
	if err != nil {
		panic(err.Error())
	}
	return lit
}

// Scalar returns a literal of rank 0.
func Scalar[T dtype.GoDataType](val T) *Literal {
	return Array([]T{val})
}

// Vector returns a literal of rank 1.
func Vector[T dtype.GoDataType](vals ...T) *Literal {
	return Array(vals, len(vals))
}

// Tuple returns a tuple literal.
func Tuple(elements ...*Literal) *Literal {
	shs := make([]*shapes.Shape, len(elements))
	for i, el := range elements {
		shs[i] = el.shape
	}
	return &Literal{shape: shapes.MakeTuple(shs...), elements: elements}
}

// FromRaw returns a literal given a shape and a slice of values.
// The type of the slice must match the element type of the shape.
func FromRaw(sh *shapes.Shape, data any) (*Literal, error) {
	switch dataT := data.(type) {
	case []bool:
		return New(sh, dataT)
	case []dtype.Bfloat16T:
		return New(sh, dataT)
	case []float32:
		return New(sh, dataT)
	case []float64:
		return New(sh, dataT)
	case []int32:
		return New(sh, dataT)
	case []int64:
		return New(sh, dataT)
	case []uint32:
		return New(sh, dataT)
	case []uint64:
		return New(sh, dataT)
	}
	return nil, errors.Errorf("cannot build a literal from %T", data)
}

// Zeros returns a literal filled with zeros.
func Zeros(sh *shapes.Shape) (*Literal, error) {
	if sh.IsTuple() {
		els := make([]*Literal, len(sh.Elements))
		for i, elShape := range sh.Elements {
			el, err := Zeros(elShape)
			if err != nil {
				return nil, err
			}
			els[i] = el
		}
		lit := Tuple(els...)
		lit.shape = sh
		return lit, nil
	}
	data, err := makeSlice(sh.DType(), sh.ElementsIn())
	if err != nil {
		return nil, err
	}
	return FromRaw(sh, data)
}

func makeSlice(dt dtype.DataType, n int) (any, error) {
	switch dt {
	case dtype.Bool:
		return make([]bool, n), nil
	case dtype.Bfloat16:
		return make([]dtype.Bfloat16T, n), nil
	case dtype.Float32:
		return make([]float32, n), nil
	case dtype.Float64:
		return make([]float64, n), nil
	case dtype.Int32:
		return make([]int32, n), nil
	case dtype.Int64:
		return make([]int64, n), nil
	case dtype.Uint32:
		return make([]uint32, n), nil
	case dtype.Uint64:
		return make([]uint64, n), nil
	}
	return nil, errors.Errorf("element type %s not supported", dt.String())
}

// Shape of the literal.
func (l *Literal) Shape() *shapes.Shape {
	return l.shape
}

// Size returns the number of elements in the literal.
func (l *Literal) Size() int {
	return l.shape.ElementsIn()
}

// Raw returns the row-major values of an array literal as a typed slice.
// The slice must not be modified.
func (l *Literal) Raw() any {
	return l.data
}

// Elements returns the elements of a tuple literal.
func (l *Literal) Elements() []*Literal {
	return l.elements
}

// Data returns the values of an array literal.
// It returns nil if T does not match the element type of the literal.
func Data[T dtype.GoDataType](l *Literal) []T {
	vals, _ := l.data.([]T)
	return vals
}

// Get returns the element at a given multi-index.
func Get[T dtype.GoDataType](l *Literal, index ...int) (val T, err error) {
	vals, ok := l.data.([]T)
	if !ok {
		return val, errors.Errorf("cannot read %T values from a literal of shape %s", val, l.shape.String())
	}
	dims := l.shape.Dims()
	if len(index) != len(dims) {
		return val, errors.Errorf("index %v has %d dimensions but shape %s has %d", index, len(index), l.shape.String(), len(dims))
	}
	strides := shapes.Strides(dims)
	linear := 0
	for i, idx := range index {
		if idx < 0 || idx >= dims[i] {
			return val, errors.Errorf("index %v out of bounds for shape %s", index, l.shape.String())
		}
		linear += idx * strides[i]
	}
	return vals[linear], nil
}

// First returns the first element of an array literal.
func First[T dtype.GoDataType](l *Literal) (val T, err error) {
	vals, ok := l.data.([]T)
	if !ok || len(vals) == 0 {
		return val, errors.Errorf("cannot read the first %T value from a literal of shape %s", val, l.shape.String())
	}
	return vals[0], nil
}

// Relabel returns a literal sharing the same data with a different shape.
// Both shapes must have the same element type and number of elements.
func (l *Literal) Relabel(sh *shapes.Shape) (*Literal, error) {
	if !sh.IsArray() || !l.shape.IsArray() {
		return nil, errors.Errorf("cannot relabel %s as %s", l.shape.String(), sh.String())
	}
	if sh.DType() != l.shape.DType() || sh.ElementsIn() != l.shape.ElementsIn() {
		return nil, errors.Errorf("cannot relabel %s as %s", l.shape.String(), sh.String())
	}
	return &Literal{shape: sh, data: l.data}, nil
}

// Equal returns true if two literals have compatible shapes and the same values.
// Layouts are ignored.
func (l *Literal) Equal(other *Literal) bool {
	if l == nil || other == nil {
		return l == other
	}
	if !l.shape.Compatible(other.shape) {
		return false
	}
	if l.shape.IsTuple() {
		for i, el := range l.elements {
			if !el.Equal(other.elements[i]) {
				return false
			}
		}
		return true
	}
	switch lT := l.data.(type) {
	case []bool:
		return equalValues(lT, other.data)
	case []dtype.Bfloat16T:
		return equalValues(lT, other.data)
	case []float32:
		return equalValues(lT, other.data)
	case []float64:
		return equalValues(lT, other.data)
	case []int32:
		return equalValues(lT, other.data)
	case []int64:
		return equalValues(lT, other.data)
	case []uint32:
		return equalValues(lT, other.data)
	case []uint64:
		return equalValues(lT, other.data)
	}
	return l.data == nil && other.data == nil
}

func equalValues[T comparable](x []T, yAny any) bool {
	y, ok := yAny.([]T)
	if !ok || len(x) != len(y) {
		return false
	}
	for i, xi := range x {
		if xi != y[i] {
			return false
		}
	}
	return true
}

// ValuesString returns the values of the literal without the shape.
func (l *Literal) ValuesString() string {
	if l.shape.IsTuple() {
		ss := make([]string, len(l.elements))
		for i, el := range l.elements {
			ss[i] = el.String()
		}
		return "(" + strings.Join(ss, ", ") + ")"
	}
	dims := l.shape.Dims()
	switch lT := l.data.(type) {
	case []bool:
		return fmtarray.SDataPrint(lT, dims)
	case []dtype.Bfloat16T:
		return fmtarray.SDataPrint(lT, dims)
	case []float32:
		return fmtarray.SDataPrint(lT, dims)
	case []float64:
		return fmtarray.SDataPrint(lT, dims)
	case []int32:
		return fmtarray.SDataPrint(lT, dims)
	case []int64:
		return fmtarray.SDataPrint(lT, dims)
	case []uint32:
		return fmtarray.SDataPrint(lT, dims)
	case []uint64:
		return fmtarray.SDataPrint(lT, dims)
	}
	return fmt.Sprintf("%v", l.data)
}

// String representation of the literal, for example f32[3]{0} {1, 2, 3}.
func (l *Literal) String() string {
	if l.shape.IsTuple() {
		return l.ValuesString()
	}
	return l.shape.String() + " " + l.ValuesString()
}
