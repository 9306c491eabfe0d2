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

package kernels

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

// Groups lists, for each output element i, the source elements
// Indices[Starts[i]:Starts[i+1]] reduced into it.
// An index of -1 stands for the initial value (padding of a window).
type Groups struct {
	Starts  []int
	Indices []int
}

// NewGroups returns groups with room for n outputs.
func NewGroups(n int) *Groups {
	return &Groups{Starts: append(make([]int, 0, n+1), 0)}
}

// Close ends the group of the current output element.
func (g *Groups) Close() {
	g.Starts = append(g.Starts, len(g.Indices))
}

// Add appends a source index to the current group.
func (g *Groups) Add(index int) {
	g.Indices = append(g.Indices, index)
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.Starts) - 1
}

func (g *Groups) check(sh *shapes.Shape, src, init *literal.Literal) error {
	if !src.Shape().IsArray() || !init.Shape().IsScalar() {
		return errors.Errorf("cannot reduce %s with an initial value of shape %s", src.Shape().String(), init.Shape().String())
	}
	if src.Shape().DType() != init.Shape().DType() || sh.DType() != src.Shape().DType() {
		return errors.Errorf("element type mismatch in reduction of %s to %s", src.Shape().String(), sh.String())
	}
	if g.Len() != sh.ElementsIn() {
		return errors.Errorf("got %d groups to reduce into %s", g.Len(), sh.String())
	}
	for _, idx := range g.Indices {
		if idx < -1 || idx >= src.Size() {
			return errors.Errorf("reduction index %d out of bounds [0,%d)", idx, src.Size())
		}
	}
	return nil
}

func reduceGroups[T any](g *Groups, src []T, initAny any, f func(T, T) T) []T {
	init := initAny.([]T)[0]
	out := make([]T, g.Len())
	for i := range out {
		acc := init
		for _, idx := range g.Indices[g.Starts[i]:g.Starts[i+1]] {
			x := init
			if idx >= 0 {
				x = src[idx]
			}
			acc = f(acc, x)
		}
		out[i] = acc
	}
	return out
}

func reduce[T any](g *Groups, src []T, init any, factory binaryFactory[T], op ir.Opcode) (any, error) {
	f, err := factory(op)
	if err != nil {
		return nil, err
	}
	return reduceGroups(g, src, init, f), nil
}

// Reduce reduces every group of src with a binary operator.
func Reduce(op ir.Opcode, sh *shapes.Shape, src, init *literal.Literal, g *Groups) (*literal.Literal, error) {
	if !op.IsElementwiseBinary() || op == ir.OpCompare {
		return nil, errors.Errorf("%s cannot be used as a reducer", op)
	}
	if err := g.check(sh, src, init); err != nil {
		return nil, err
	}
	var data any
	var err error
	switch srcT := src.Raw().(type) {
	case []bool:
		data, err = reduce(g, srcT, init.Raw(), boolBinary, op)
	case []dtype.Bfloat16T:
		data, err = reduce(g, srcT, init.Raw(), bf16Binary, op)
	case []float32:
		data, err = reduce(g, srcT, init.Raw(), floatBinary[float32], op)
	case []float64:
		data, err = reduce(g, srcT, init.Raw(), floatBinary[float64], op)
	case []int32:
		data, err = reduce(g, srcT, init.Raw(), integerBinary[int32], op)
	case []int64:
		data, err = reduce(g, srcT, init.Raw(), integerBinary[int64], op)
	case []uint32:
		data, err = reduce(g, srcT, init.Raw(), integerBinary[uint32], op)
	case []uint64:
		data, err = reduce(g, srcT, init.Raw(), integerBinary[uint64], op)
	default:
		return nil, errors.Errorf("reduce: element type %T not supported", src.Raw())
	}
	if err != nil {
		return nil, err
	}
	return literal.FromRaw(sh, data)
}

// Reducer combines an accumulator with a value. Both are scalar literals.
type Reducer func(acc, x *literal.Literal) (*literal.Literal, error)

// ReduceWith reduces every group of src by calling a reducer on scalar literals.
func ReduceWith(f Reducer, sh *shapes.Shape, src, init *literal.Literal, g *Groups) (*literal.Literal, error) {
	if err := g.check(sh, src, init); err != nil {
		return nil, err
	}
	scalar := init.Shape()
	out := make([]*literal.Literal, g.Len())
	blocks := make([]int, g.Len())
	for i := range out {
		acc := init
		for _, idx := range g.Indices[g.Starts[i]:g.Starts[i+1]] {
			x := init
			if idx >= 0 {
				var err error
				if x, err = src.Gather(scalar, []int{idx}, nil); err != nil {
					return nil, err
				}
			}
			var err error
			if acc, err = f(acc, x); err != nil {
				return nil, err
			}
			if !acc.Shape().IsScalar() || acc.Shape().DType() != scalar.DType() {
				return nil, errors.Errorf("reducer returned a value of shape %s but want %s", acc.Shape().String(), scalar.String())
			}
		}
		out[i] = acc
		blocks[i] = 1
	}
	if len(out) == 0 {
		return literal.Zeros(sh)
	}
	return literal.Concatenate(sh, out, 1, blocks)
}
