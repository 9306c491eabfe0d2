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

package kernels

import (
	"cmp"
	"math"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
)

// floatBinary returns the scalar function of a binary opcode for floating point values.
func floatBinary[T dtype.Float](op ir.Opcode) (func(T, T) T, error) {
	switch op {
	case ir.OpAdd:
		return func(x, y T) T { return x + y }, nil
	case ir.OpSubtract:
		return func(x, y T) T { return x - y }, nil
	case ir.OpMultiply:
		return func(x, y T) T { return x * y }, nil
	case ir.OpDivide:
		return func(x, y T) T { return x / y }, nil
	case ir.OpRemainder:
		return func(x, y T) T { return T(math.Mod(float64(x), float64(y))) }, nil
	case ir.OpMaximum:
		return func(x, y T) T {
			if math.IsNaN(float64(x)) || x > y {
				return x
			}
			return y
		}, nil
	case ir.OpMinimum:
		return func(x, y T) T {
			if math.IsNaN(float64(x)) || x < y {
				return x
			}
			return y
		}, nil
	case ir.OpPower:
		return func(x, y T) T { return T(math.Pow(float64(x), float64(y))) }, nil
	}
	return nil, errors.Errorf("operator %s not supported for floating point values", op)
}

// integerBinary returns the scalar function of a binary opcode for integer values.
// Division by zero returns -1 (all bits set) and the remainder by zero returns the dividend.
func integerBinary[T dtype.IntegerType](op ir.Opcode) (func(T, T) T, error) {
	switch op {
	case ir.OpAdd:
		return func(x, y T) T { return x + y }, nil
	case ir.OpSubtract:
		return func(x, y T) T { return x - y }, nil
	case ir.OpMultiply:
		return func(x, y T) T { return x * y }, nil
	case ir.OpDivide:
		return func(x, y T) T {
			if y == 0 {
				return ^T(0)
			}
			return x / y
		}, nil
	case ir.OpRemainder:
		return func(x, y T) T {
			if y == 0 {
				return x
			}
			return x % y
		}, nil
	case ir.OpMaximum:
		return func(x, y T) T { return max(x, y) }, nil
	case ir.OpMinimum:
		return func(x, y T) T { return min(x, y) }, nil
	case ir.OpPower:
		return func(x, y T) T {
			if y < 0 {
				if x == 1 {
					return 1
				}
				return 0
			}
			result := T(1)
			for ; y > 0; y-- {
				result *= x
			}
			return result
		}, nil
	case ir.OpAnd:
		return func(x, y T) T { return x & y }, nil
	case ir.OpOr:
		return func(x, y T) T { return x | y }, nil
	case ir.OpXor:
		return func(x, y T) T { return x ^ y }, nil
	}
	return nil, errors.Errorf("operator %s not supported for integer values", op)
}

func boolBinary(op ir.Opcode) (func(bool, bool) bool, error) {
	switch op {
	case ir.OpAnd, ir.OpMinimum, ir.OpMultiply:
		return func(x, y bool) bool { return x && y }, nil
	case ir.OpOr, ir.OpMaximum, ir.OpAdd:
		return func(x, y bool) bool { return x || y }, nil
	case ir.OpXor:
		return func(x, y bool) bool { return x != y }, nil
	}
	return nil, errors.Errorf("operator %s not supported for booleans", op)
}

func compare[T cmp.Ordered](dir ir.ComparisonDirection) (func(T, T) bool, error) {
	switch dir {
	case ir.CmpEQ:
		return func(x, y T) bool { return x == y }, nil
	case ir.CmpNE:
		return func(x, y T) bool { return x != y }, nil
	case ir.CmpLT:
		return func(x, y T) bool { return x < y }, nil
	case ir.CmpLE:
		return func(x, y T) bool { return x <= y }, nil
	case ir.CmpGT:
		return func(x, y T) bool { return x > y }, nil
	case ir.CmpGE:
		return func(x, y T) bool { return x >= y }, nil
	}
	return nil, errors.Errorf("comparison direction %s not supported", dir)
}

func compareBool(dir ir.ComparisonDirection) (func(bool, bool) bool, error) {
	switch dir {
	case ir.CmpEQ:
		return func(x, y bool) bool { return x == y }, nil
	case ir.CmpNE:
		return func(x, y bool) bool { return x != y }, nil
	}
	return nil, errors.Errorf("comparison direction %s not supported for booleans", dir)
}

// kernelize turns a Go math function into a scalar function of type T.
func kernelize[T dtype.Float](f func(float64) float64) func(T) T {
	return func(x T) T {
		return T(f(float64(x)))
	}
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

func floatUnary[T dtype.Float](op ir.Opcode) (func(T) T, error) {
	switch op {
	case ir.OpNegate:
		return func(x T) T { return -x }, nil
	case ir.OpAbs:
		return kernelize[T](math.Abs), nil
	case ir.OpSign:
		return kernelize[T](sign), nil
	case ir.OpExp:
		return kernelize[T](math.Exp), nil
	case ir.OpLog:
		return kernelize[T](math.Log), nil
	case ir.OpSqrt:
		return kernelize[T](math.Sqrt), nil
	}
	return nil, errors.Errorf("operator %s not supported for floating point values", op)
}

func integerUnary[T dtype.IntegerType](op ir.Opcode) (func(T) T, error) {
	switch op {
	case ir.OpNegate:
		return func(x T) T { return -x }, nil
	case ir.OpAbs:
		return func(x T) T {
			if x < 0 {
				return -x
			}
			return x
		}, nil
	case ir.OpSign:
		return func(x T) T {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return ^T(0)
			}
			return 0
		}, nil
	case ir.OpNot:
		return func(x T) T { return ^x }, nil
	}
	return nil, errors.Errorf("operator %s not supported for integer values", op)
}

func boolUnary(op ir.Opcode) (func(bool) bool, error) {
	if op == ir.OpNot {
		return func(x bool) bool { return !x }, nil
	}
	return nil, errors.Errorf("operator %s not supported for booleans", op)
}
