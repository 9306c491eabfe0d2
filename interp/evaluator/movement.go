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
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

// next increments a row-major multi-index.
func next(index, dims []int) {
	for d := len(dims) - 1; d >= 0; d-- {
		index[d]++
		if index[d] < dims[d] {
			return
		}
		index[d] = 0
	}
}

// indexMap returns, for every element of an array of dimensions dims,
// the source index computed by src from its multi-index.
func indexMap(dims []int, src func(index []int) int) []int {
	n := shapes.Product(dims)
	out := make([]int, n)
	index := make([]int, len(dims))
	for i := range out {
		out[i] = src(index)
		next(index, dims)
	}
	return out
}

func checkArray(what string, shs ...*shapes.Shape) error {
	for _, sh := range shs {
		if !sh.IsArray() {
			return errors.Errorf("%s: %s is not an array shape", what, sh.String())
		}
	}
	return nil
}

func iotaValues(sh *shapes.Shape, attrs *ir.Attributes) (*literal.Literal, error) {
	if err := checkArray("iota", sh); err != nil {
		return nil, err
	}
	if len(attrs.Dimensions) != 1 || attrs.Dimensions[0] < 0 || attrs.Dimensions[0] >= sh.Rank() {
		return nil, errors.Errorf("iota: invalid dimension %v for shape %s", attrs.Dimensions, sh.String())
	}
	if sh.DType() == dtype.Bool {
		return nil, errors.Errorf("iota: element type %s not supported", sh.DType().String())
	}
	dim := attrs.Dimensions[0]
	dims := sh.Dims()
	vals := make([]int64, 0, sh.ElementsIn())
	index := make([]int, len(dims))
	for range sh.ElementsIn() {
		vals = append(vals, int64(index[dim]))
		next(index, dims)
	}
	ints, err := literal.New(shapes.Make(dtype.Int64, dims...), vals)
	if err != nil {
		return nil, err
	}
	return ints.Convert(sh)
}

func bitcast(sh *shapes.Shape, x *literal.Literal) (*literal.Literal, error) {
	if err := checkArray("bitcast", sh, x.Shape()); err != nil {
		return nil, err
	}
	if !sh.HasDefaultLayout() || !x.Shape().HasDefaultLayout() {
		return nil, errors.Errorf("bitcast from %s to %s: only default layouts are supported", x.Shape().String(), sh.String())
	}
	if sh.DType() != x.Shape().DType() {
		return nil, errors.Errorf("bitcast from %s to %s: element type reinterpretation not supported", x.Shape().String(), sh.String())
	}
	return x.Relabel(sh)
}

func broadcast(sh *shapes.Shape, x *literal.Literal, dims []int) (*literal.Literal, error) {
	if err := checkArray("broadcast", sh, x.Shape()); err != nil {
		return nil, err
	}
	srcDims := x.Shape().Dims()
	outDims := sh.Dims()
	if len(dims) != len(srcDims) {
		return nil, errors.Errorf("broadcast: got %d dimensions to broadcast %s", len(dims), x.Shape().String())
	}
	for i, d := range dims {
		if d < 0 || d >= len(outDims) || outDims[d] != srcDims[i] {
			return nil, errors.Errorf("broadcast: cannot map dimension %d of %s to dimension %d of %s", i, x.Shape().String(), d, sh.String())
		}
	}
	strides := shapes.Strides(srcDims)
	indices := indexMap(outDims, func(index []int) int {
		src := 0
		for i, d := range dims {
			src += index[d] * strides[i]
		}
		return src
	})
	return x.Gather(sh, indices, nil)
}

func slice(sh *shapes.Shape, x *literal.Literal, cfg *ir.SliceConfig) (*literal.Literal, error) {
	if err := checkArray("slice", sh, x.Shape()); err != nil {
		return nil, err
	}
	srcDims := x.Shape().Dims()
	outDims := sh.Dims()
	if cfg == nil || len(cfg.Starts) != len(srcDims) || len(cfg.Limits) != len(srcDims) || len(cfg.Strides) != len(srcDims) || len(outDims) != len(srcDims) {
		return nil, errors.Errorf("slice: invalid configuration for %s", x.Shape().String())
	}
	for d, dim := range srcDims {
		start, limit, stride := cfg.Starts[d], cfg.Limits[d], cfg.Strides[d]
		if start < 0 || limit > dim || start > limit || stride <= 0 {
			return nil, errors.Errorf("slice: invalid range [%d:%d:%d] for dimension %d of %s", start, limit, stride, d, x.Shape().String())
		}
		if want := (limit - start + stride - 1) / stride; outDims[d] != want {
			return nil, errors.Errorf("slice: dimension %d of %s should be %d", d, sh.String(), want)
		}
	}
	strides := shapes.Strides(srcDims)
	indices := indexMap(outDims, func(index []int) int {
		src := 0
		for d, i := range index {
			src += (cfg.Starts[d] + i*cfg.Strides[d]) * strides[d]
		}
		return src
	})
	return x.Gather(sh, indices, nil)
}

func transpose(sh *shapes.Shape, x *literal.Literal, perm []int) (*literal.Literal, error) {
	if err := checkArray("transpose", sh, x.Shape()); err != nil {
		return nil, err
	}
	srcDims := x.Shape().Dims()
	outDims := sh.Dims()
	if len(perm) != len(srcDims) || len(outDims) != len(srcDims) {
		return nil, errors.Errorf("transpose: invalid permutation %v for %s", perm, x.Shape().String())
	}
	seen := make([]bool, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] || outDims[i] != srcDims[p] {
			return nil, errors.Errorf("transpose: invalid permutation %v from %s to %s", perm, x.Shape().String(), sh.String())
		}
		seen[p] = true
	}
	strides := shapes.Strides(srcDims)
	indices := indexMap(outDims, func(index []int) int {
		src := 0
		for i, p := range perm {
			src += index[i] * strides[p]
		}
		return src
	})
	return x.Gather(sh, indices, nil)
}

func concatenate(sh *shapes.Shape, xs []*literal.Literal, dims []int) (*literal.Literal, error) {
	if len(xs) == 0 || len(dims) != 1 {
		return nil, errors.Errorf("concatenate: invalid dimensions %v for %d operands", dims, len(xs))
	}
	if err := checkArray("concatenate", sh); err != nil {
		return nil, err
	}
	dim := dims[0]
	outDims := sh.Dims()
	if dim < 0 || dim >= len(outDims) {
		return nil, errors.Errorf("concatenate: dimension %d out of range for %s", dim, sh.String())
	}
	blocks := make([]int, len(xs))
	total := 0
	for i, x := range xs {
		if err := checkArray("concatenate", x.Shape()); err != nil {
			return nil, err
		}
		xDims := x.Shape().Dims()
		if len(xDims) != len(outDims) {
			return nil, errors.Errorf("concatenate: rank mismatch between %s and %s", x.Shape().String(), sh.String())
		}
		for d := range xDims {
			if d != dim && xDims[d] != outDims[d] {
				return nil, errors.Errorf("concatenate: dimension %d mismatch between %s and %s", d, x.Shape().String(), sh.String())
			}
		}
		blocks[i] = shapes.Product(xDims[dim:])
		total += xDims[dim]
	}
	if total != outDims[dim] {
		return nil, errors.Errorf("concatenate: operands sum to %d along dimension %d but %s has %d", total, dim, sh.String(), outDims[dim])
	}
	return literal.Concatenate(sh, xs, shapes.Product(outDims[:dim]), blocks)
}

func pad(sh *shapes.Shape, x, value *literal.Literal, padding []ir.PaddingDim) (*literal.Literal, error) {
	if err := checkArray("pad", sh, x.Shape()); err != nil {
		return nil, err
	}
	srcDims := x.Shape().Dims()
	outDims := sh.Dims()
	if len(padding) != len(srcDims) || len(outDims) != len(srcDims) {
		return nil, errors.Errorf("pad: got %d padding dimensions for %s", len(padding), x.Shape().String())
	}
	for d, p := range padding {
		if p.Interior < 0 {
			return nil, errors.Errorf("pad: negative interior padding for dimension %d", d)
		}
		inner := 0
		if srcDims[d] > 0 {
			inner = srcDims[d] + (srcDims[d]-1)*p.Interior
		}
		if want := p.Low + inner + p.High; want != outDims[d] || want < 0 {
			return nil, errors.Errorf("pad: dimension %d of %s should be %d", d, sh.String(), want)
		}
	}
	strides := shapes.Strides(srcDims)
	indices := indexMap(outDims, func(index []int) int {
		src := 0
		for d, i := range index {
			pos := i - padding[d].Low
			step := padding[d].Interior + 1
			if pos < 0 || pos%step != 0 || pos/step >= srcDims[d] {
				return -1
			}
			src += pos / step * strides[d]
		}
		return src
	})
	return x.Gather(sh, indices, value)
}
