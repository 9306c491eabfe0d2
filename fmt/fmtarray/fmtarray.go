// Copyright 2024 Google LLC
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

// Package fmtarray formats the content of literals into strings.
package fmtarray

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// maxElements is the number of elements above which the values are elided.
const maxElements = 1 << 12

type float32er interface {
	Float32() float32
}

type builder[T any] struct {
	w       *strings.Builder
	data    []T
	axes    []int
	strides []int
}

func newBuilder[T any](data []T, axes []int) (*builder[T], error) {
	b := &builder[T]{
		w:       &strings.Builder{},
		data:    data,
		axes:    axes,
		strides: axesStrides(axes),
	}
	total := 1
	for _, size := range b.axes {
		total *= size
	}
	if total != len(data) {
		return b, errors.Errorf("len(data)=%d does not match axes %v=%d", len(data), axes, total)
	}
	return b, nil
}

func toValue[T any](x T) string {
	var fmtstr string
	var val any = x
	switch xT := val.(type) {
	case float32:
		fmtstr = "%.6f"
	case float64:
		fmtstr = "%.10f"
	case float32er:
		fmtstr = "%.4f"
		val = xT.Float32()
	case bool:
		if xT {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}

	result := fmt.Sprintf(fmtstr, val)
	if strings.ContainsRune(result, '.') {
		// Remove any number of trailing zeroes after the decimal point, and remove
		// the point itself if there are no digits after it.
		result = strings.TrimRight(result, "0")
		result = strings.TrimSuffix(result, ".")
	}
	return result
}

func (b *builder[T]) printRec(axis, offset int) {
	if axis == len(b.axes) {
		b.w.WriteString(toValue(b.data[offset]))
		return
	}
	b.w.WriteString("{")
	if axis < len(b.axes)-1 {
		b.w.WriteString(" ")
	}
	for i := 0; i < b.axes[axis]; i++ {
		if i > 0 {
			b.w.WriteString(", ")
		}
		b.printRec(axis+1, offset+i*b.strides[axis])
	}
	if axis < len(b.axes)-1 {
		b.w.WriteString(" ")
	}
	b.w.WriteString("}")
}

func axesStrides(axes []int) []int {
	strides := make([]int, len(axes))
	for i := range strides {
		strides[i] = 1
		for _, d := range axes[i+1:] {
			strides[i] *= d
		}
	}
	return strides
}

// SDataPrint returns a string representation of the content of an array without the type.
// Scalars are printed as a single value, arrays as nested braces: { {1, 2}, {3, 4} }.
func SDataPrint[T any](data []T, axes []int) string {
	b, err := newBuilder[T](data, axes)
	if err != nil {
		return err.Error()
	}
	if len(data) > maxElements {
		return "{...}"
	}
	b.printRec(0, 0)
	return b.w.String()
}

// Sprint returns a string representation of an array prefixed by its type.
func Sprint[T any](typ string, data []T, axes []int) string {
	return typ + " " + SDataPrint(data, axes)
}
