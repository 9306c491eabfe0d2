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

// Package kernels implements elementwise and reduction kernels on literals.
package kernels

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

type (
	unaryFactory[T any]  func(ir.Opcode) (func(T) T, error)
	binaryFactory[T any] func(ir.Opcode) (func(T, T) T, error)
)

func mapUnary[S, D any](x []S, f func(S) D) []D {
	out := make([]D, len(x))
	for i, xi := range x {
		out[i] = f(xi)
	}
	return out
}

func mapBinary[S, D any](x, y []S, f func(S, S) D) []D {
	out := make([]D, len(x))
	for i, xi := range x {
		out[i] = f(xi, y[i])
	}
	return out
}

func unary[T any](x []T, factory unaryFactory[T], op ir.Opcode) (any, error) {
	f, err := factory(op)
	if err != nil {
		return nil, err
	}
	return mapUnary(x, f), nil
}

func binary[T any](x []T, yAny any, factory binaryFactory[T], op ir.Opcode) (any, error) {
	f, err := factory(op)
	if err != nil {
		return nil, err
	}
	return mapBinary(x, yAny.([]T), f), nil
}

func comparison[T any](x []T, yAny any, f func(T, T) bool, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return mapBinary(x, yAny.([]T), f), nil
}

func bf16(x float32) dtype.Bfloat16T {
	return dtype.BFloat16FromFloat64(float64(x))
}

func bf16Unary(op ir.Opcode) (func(dtype.Bfloat16T) dtype.Bfloat16T, error) {
	f, err := floatUnary[float32](op)
	if err != nil {
		return nil, err
	}
	return func(x dtype.Bfloat16T) dtype.Bfloat16T {
		return bf16(f(x.Float32()))
	}, nil
}

func bf16Binary(op ir.Opcode) (func(dtype.Bfloat16T, dtype.Bfloat16T) dtype.Bfloat16T, error) {
	f, err := floatBinary[float32](op)
	if err != nil {
		return nil, err
	}
	return func(x, y dtype.Bfloat16T) dtype.Bfloat16T {
		return bf16(f(x.Float32(), y.Float32()))
	}, nil
}

func bf16Compare(dir ir.ComparisonDirection) (func(dtype.Bfloat16T, dtype.Bfloat16T) bool, error) {
	f, err := compare[float32](dir)
	if err != nil {
		return nil, err
	}
	return func(x, y dtype.Bfloat16T) bool {
		return f(x.Float32(), y.Float32())
	}, nil
}

func checkOperand(op ir.Opcode, sh *shapes.Shape, x *literal.Literal) error {
	if !x.Shape().IsArray() || !sh.IsArray() {
		return errors.Errorf("%s: cannot compute %s from %s", op, sh.String(), x.Shape().String())
	}
	if x.Size() != sh.ElementsIn() {
		return errors.Errorf("%s: operand of shape %s does not match output shape %s", op, x.Shape().String(), sh.String())
	}
	return nil
}

// Unary applies an elementwise unary operator.
func Unary(op ir.Opcode, sh *shapes.Shape, x *literal.Literal) (*literal.Literal, error) {
	if !op.IsElementwiseUnary() {
		return nil, errors.Errorf("%s is not a unary operator", op)
	}
	if err := checkOperand(op, sh, x); err != nil {
		return nil, err
	}
	var data any
	var err error
	switch xT := x.Raw().(type) {
	case []bool:
		data, err = unary(xT, boolUnary, op)
	case []dtype.Bfloat16T:
		data, err = unary(xT, bf16Unary, op)
	case []float32:
		data, err = unary(xT, floatUnary[float32], op)
	case []float64:
		data, err = unary(xT, floatUnary[float64], op)
	case []int32:
		data, err = unary(xT, integerUnary[int32], op)
	case []int64:
		data, err = unary(xT, integerUnary[int64], op)
	case []uint32:
		data, err = unary(xT, integerUnary[uint32], op)
	case []uint64:
		data, err = unary(xT, integerUnary[uint64], op)
	default:
		return nil, errors.Errorf("%s: element type %T not supported", op, x.Raw())
	}
	if err != nil {
		return nil, err
	}
	return literal.FromRaw(sh, data)
}

// Binary applies an elementwise binary operator to two literals with the same
// element type and number of elements. dir is only used by compare.
func Binary(op ir.Opcode, dir ir.ComparisonDirection, sh *shapes.Shape, x, y *literal.Literal) (*literal.Literal, error) {
	if !op.IsElementwiseBinary() {
		return nil, errors.Errorf("%s is not a binary operator", op)
	}
	for _, operand := range []*literal.Literal{x, y} {
		if err := checkOperand(op, sh, operand); err != nil {
			return nil, err
		}
	}
	if x.Shape().DType() != y.Shape().DType() {
		return nil, errors.Errorf("%s: element type mismatch between %s and %s", op, x.Shape().String(), y.Shape().String())
	}
	var data any
	var err error
	if op == ir.OpCompare {
		data, err = compareValues(dir, x.Raw(), y.Raw())
	} else {
		data, err = binaryValues(op, x.Raw(), y.Raw())
	}
	if err != nil {
		return nil, err
	}
	return literal.FromRaw(sh, data)
}

func binaryValues(op ir.Opcode, x, y any) (any, error) {
	switch xT := x.(type) {
	case []bool:
		return binary(xT, y, boolBinary, op)
	case []dtype.Bfloat16T:
		return binary(xT, y, bf16Binary, op)
	case []float32:
		return binary(xT, y, floatBinary[float32], op)
	case []float64:
		return binary(xT, y, floatBinary[float64], op)
	case []int32:
		return binary(xT, y, integerBinary[int32], op)
	case []int64:
		return binary(xT, y, integerBinary[int64], op)
	case []uint32:
		return binary(xT, y, integerBinary[uint32], op)
	case []uint64:
		return binary(xT, y, integerBinary[uint64], op)
	}
	return nil, errors.Errorf("%s: element type %T not supported", op, x)
}

func compareValues(dir ir.ComparisonDirection, x, y any) (any, error) {
	switch xT := x.(type) {
	case []bool:
		f, err := compareBool(dir)
		return comparison(xT, y, f, err)
	case []dtype.Bfloat16T:
		f, err := bf16Compare(dir)
		return comparison(xT, y, f, err)
	case []float32:
		f, err := compare[float32](dir)
		return comparison(xT, y, f, err)
	case []float64:
		f, err := compare[float64](dir)
		return comparison(xT, y, f, err)
	case []int32:
		f, err := compare[int32](dir)
		return comparison(xT, y, f, err)
	case []int64:
		f, err := compare[int64](dir)
		return comparison(xT, y, f, err)
	case []uint32:
		f, err := compare[uint32](dir)
		return comparison(xT, y, f, err)
	case []uint64:
		f, err := compare[uint64](dir)
		return comparison(xT, y, f, err)
	}
	return nil, errors.Errorf("compare: element type %T not supported", x)
}

// Select returns, for each element, the element of x if pred is true or
// the element of y otherwise. pred is either a scalar or has the same number
// of elements as the output.
func Select(sh *shapes.Shape, pred, x, y *literal.Literal) (*literal.Literal, error) {
	for _, operand := range []*literal.Literal{x, y} {
		if err := checkOperand(ir.OpSelect, sh, operand); err != nil {
			return nil, err
		}
	}
	preds := literal.Data[bool](pred)
	if preds == nil || (len(preds) != 1 && len(preds) != sh.ElementsIn()) {
		return nil, errors.Errorf("select: invalid predicate of shape %s for output %s", pred.Shape().String(), sh.String())
	}
	if len(preds) == 1 {
		if preds[0] {
			return x.Relabel(sh)
		}
		return y.Relabel(sh)
	}
	// Every output element is gathered from x (index i) or y (index n+i).
	n := sh.ElementsIn()
	indices := make([]int, n)
	for i, p := range preds {
		indices[i] = i
		if !p {
			indices[i] = n + i
		}
	}
	both, err := literal.Concatenate(shapes.Make(sh.DType(), 2*n), []*literal.Literal{x, y}, 1, []int{n, n})
	if err != nil {
		return nil, err
	}
	return both.Gather(sh, indices, nil)
}
