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

package evaluator

import (
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
	"github.com/gx-org/hlo/interp/kernels"
	"golang.org/x/exp/slices"
)

// scalarOp returns the opcode of a computation computing op(param0, param1).
func scalarOp(comp *ir.Computation) (ir.Opcode, bool) {
	params := comp.Parameters()
	root := comp.Root()
	if len(params) != 2 || root == nil {
		return ir.OpInvalid, false
	}
	op := root.Opcode()
	if !op.IsElementwiseBinary() || op == ir.OpCompare {
		return ir.OpInvalid, false
	}
	if root.Operand(0) != params[0] || root.Operand(1) != params[1] {
		return ir.OpInvalid, false
	}
	return op, true
}

// reduceGroups reduces groups of elements either with a scalar kernel
// or by evaluating the reducer computation on every pair of values.
func (fr *frame) reduceGroups(inst *ir.Instruction, x, init *literal.Literal, g *kernels.Groups) (*literal.Literal, error) {
	comp, err := calledComputation(inst)
	if err != nil {
		return nil, err
	}
	if op, ok := scalarOp(comp); ok {
		return kernels.Reduce(op, inst.Shape(), x, init, g)
	}
	return kernels.ReduceWith(func(acc, val *literal.Literal) (*literal.Literal, error) {
		return fr.computation(comp, []*literal.Literal{acc, val})
	}, inst.Shape(), x, init, g)
}

func (fr *frame) reduce(inst *ir.Instruction, x, init *literal.Literal) (*literal.Literal, error) {
	sh := inst.Shape()
	if err := checkArray("reduce", sh, x.Shape()); err != nil {
		return nil, err
	}
	srcDims := x.Shape().Dims()
	reduced := make([]bool, len(srcDims))
	for _, d := range inst.Attributes().Dimensions {
		if d < 0 || d >= len(srcDims) || reduced[d] {
			return nil, errors.Errorf("%s: invalid reduced dimensions %v for %s", inst.Name(), inst.Attributes().Dimensions, x.Shape().String())
		}
		reduced[d] = true
	}
	var kept []int
	for d, dim := range srcDims {
		if !reduced[d] {
			kept = append(kept, dim)
		}
	}
	if !slices.Equal(kept, sh.Dims()) {
		return nil, errors.Errorf("%s: cannot reduce %s into %s", inst.Name(), x.Shape().String(), sh.String())
	}
	// Bucket every source element into its output element.
	outStrides := shapes.Strides(kept)
	target := make([]int, x.Size())
	counts := make([]int, sh.ElementsIn()+1)
	index := make([]int, len(srcDims))
	for i := range target {
		out, k := 0, 0
		for d, idx := range index {
			if !reduced[d] {
				out += idx * outStrides[k]
				k++
			}
		}
		target[i] = out
		counts[out+1]++
		next(index, srcDims)
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	g := &kernels.Groups{Starts: slices.Clone(counts), Indices: make([]int, len(target))}
	for src, out := range target {
		g.Indices[counts[out]] = src
		counts[out]++
	}
	return fr.reduceGroups(inst, x, init, g)
}

func (fr *frame) reduceWindow(inst *ir.Instruction, x, init *literal.Literal) (*literal.Literal, error) {
	sh := inst.Shape()
	if err := checkArray("reduce-window", sh, x.Shape()); err != nil {
		return nil, err
	}
	window := inst.Attributes().Window
	srcDims := x.Shape().Dims()
	outDims := sh.Dims()
	if len(window) != len(srcDims) || len(outDims) != len(srcDims) {
		return nil, errors.Errorf("%s: got %d window dimensions for %s", inst.Name(), len(window), x.Shape().String())
	}
	sizes := make([]int, len(window))
	for d, w := range window {
		if w.Size <= 0 || w.Stride <= 0 {
			return nil, errors.Errorf("%s: invalid window size %d or stride %d", inst.Name(), w.Size, w.Stride)
		}
		padded := srcDims[d] + w.PadLow + w.PadHigh
		want := 0
		if padded >= w.Size {
			want = (padded-w.Size)/w.Stride + 1
		}
		if outDims[d] != want {
			return nil, errors.Errorf("%s: dimension %d of %s should be %d", inst.Name(), d, sh.String(), want)
		}
		sizes[d] = w.Size
	}
	strides := shapes.Strides(srcDims)
	windowSize := shapes.Product(sizes)
	g := kernels.NewGroups(sh.ElementsIn())
	out := make([]int, len(outDims))
	offset := make([]int, len(sizes))
	for range sh.ElementsIn() {
		for range windowSize {
			src, inside := 0, true
			for d, w := range window {
				pos := out[d]*w.Stride - w.PadLow + offset[d]
				if pos < 0 || pos >= srcDims[d] {
					inside = false
					break
				}
				src += pos * strides[d]
			}
			// Padding elements are skipped.
			if inside {
				g.Add(src)
			}
			next(offset, sizes)
		}
		g.Close()
		next(out, outDims)
	}
	return fr.reduceGroups(inst, x, init, g)
}

func (fr *frame) mapComputation(inst *ir.Instruction, xs []*literal.Literal) (*literal.Literal, error) {
	comp, err := calledComputation(inst)
	if err != nil {
		return nil, err
	}
	sh := inst.Shape()
	if err := checkArray("map", sh); err != nil {
		return nil, err
	}
	n := sh.ElementsIn()
	for _, x := range xs {
		if err := checkArray("map", x.Shape()); err != nil {
			return nil, err
		}
		if x.Size() != n {
			return nil, errors.Errorf("%s: operand of shape %s does not match %s", inst.Name(), x.Shape().String(), sh.String())
		}
	}
	scalar := shapes.Make(sh.DType())
	vals := make([]*literal.Literal, n)
	blocks := make([]int, n)
	for i := range vals {
		args := make([]*literal.Literal, len(xs))
		for j, x := range xs {
			if args[j], err = x.Gather(shapes.Make(x.Shape().DType()), []int{i}, nil); err != nil {
				return nil, err
			}
		}
		if vals[i], err = fr.computation(comp, args); err != nil {
			return nil, err
		}
		if !vals[i].Shape().Compatible(scalar) {
			return nil, errors.Errorf("%s: mapped computation %s returned %s but want %s", inst.Name(), comp.Name(), vals[i].Shape().String(), scalar.String())
		}
		blocks[i] = 1
	}
	if n == 0 {
		return literal.Zeros(sh)
	}
	return literal.Concatenate(sh, vals, 1, blocks)
}

func (fr *frame) less(comp *ir.Computation, scalar *shapes.Shape, x *literal.Literal, i, j int) (bool, error) {
	a, err := x.Gather(scalar, []int{i}, nil)
	if err != nil {
		return false, err
	}
	b, err := x.Gather(scalar, []int{j}, nil)
	if err != nil {
		return false, err
	}
	res, err := fr.computation(comp, []*literal.Literal{a, b})
	if err != nil {
		return false, err
	}
	return literal.First[bool](res)
}

// sort sorts every slice along the sort dimension with a stable sort.
func (fr *frame) sort(inst *ir.Instruction, x *literal.Literal) (*literal.Literal, error) {
	comp, err := calledComputation(inst)
	if err != nil {
		return nil, err
	}
	sh := inst.Shape()
	if err := checkArray("sort", sh, x.Shape()); err != nil {
		return nil, err
	}
	dims := x.Shape().Dims()
	sortDims := inst.Attributes().Dimensions
	if len(sortDims) != 1 || sortDims[0] < 0 || sortDims[0] >= len(dims) || !slices.Equal(dims, sh.Dims()) {
		return nil, errors.Errorf("%s: invalid sort of %s along %v", inst.Name(), x.Shape().String(), sortDims)
	}
	dim := sortDims[0]
	stride := shapes.Strides(dims)[dim]
	scalar := shapes.Make(x.Shape().DType())
	indices := make([]int, x.Size())
	outer := shapes.Product(dims[:dim])
	for o := 0; o < outer; o++ {
		for in := 0; in < stride; in++ {
			base := o*dims[dim]*stride + in
			row := make([]int, dims[dim])
			for k := range row {
				row[k] = base + k*stride
			}
			var sortErr error
			slices.SortStableFunc(row, func(i, j int) int {
				if sortErr != nil {
					return 0
				}
				lt, err := fr.less(comp, scalar, x, i, j)
				if err != nil {
					sortErr = err
					return 0
				}
				if lt {
					return -1
				}
				gt, err := fr.less(comp, scalar, x, j, i)
				if err != nil {
					sortErr = err
					return 0
				}
				if gt {
					return 1
				}
				return 0
			})
			if sortErr != nil {
				return nil, errors.Wrapf(sortErr, "%s: comparator %s", inst.Name(), comp.Name())
			}
			for k, src := range row {
				indices[base+k*stride] = src
			}
		}
	}
	return x.Gather(sh, indices, nil)
}
