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

package literal

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/shapes"
)

// Gather builds a new literal of shape sh where the element i is the element
// indices[i] of the source literal. An index of -1 selects the (scalar) fill value.
// All data movement operations (broadcast, slice, transpose, pad, ...) are
// expressed as an index map.
func (l *Literal) Gather(sh *shapes.Shape, indices []int, fill *Literal) (*Literal, error) {
	if !l.shape.IsArray() || !sh.IsArray() {
		return nil, errors.Errorf("cannot gather %s from %s", sh.String(), l.shape.String())
	}
	if sh.DType() != l.shape.DType() {
		return nil, errors.Errorf("cannot gather %s from %s: element type mismatch", sh.String(), l.shape.String())
	}
	if len(indices) != sh.ElementsIn() {
		return nil, errors.Errorf("got %d indices to gather %s", len(indices), sh.String())
	}
	var fillData any
	if fill != nil {
		if !fill.shape.IsScalar() || fill.shape.DType() != l.shape.DType() {
			return nil, errors.Errorf("invalid fill value of shape %s to gather %s", fill.shape.String(), sh.String())
		}
		fillData = fill.data
	}
	var data any
	var err error
	switch src := l.data.(type) {
	case []bool:
		data, err = gather(src, indices, fillData)
	case []dtype.Bfloat16T:
		data, err = gather(src, indices, fillData)
	case []float32:
		data, err = gather(src, indices, fillData)
	case []float64:
		data, err = gather(src, indices, fillData)
	case []int32:
		data, err = gather(src, indices, fillData)
	case []int64:
		data, err = gather(src, indices, fillData)
	case []uint32:
		data, err = gather(src, indices, fillData)
	case []uint64:
		data, err = gather(src, indices, fillData)
	default:
		return nil, errors.Errorf("cannot gather from %T", l.data)
	}
	if err != nil {
		return nil, err
	}
	return FromRaw(sh, data)
}

func gather[T any](src []T, indices []int, fillAny any) ([]T, error) {
	var fill T
	hasFill := false
	if fillAny != nil {
		fill = fillAny.([]T)[0]
		hasFill = true
	}
	out := make([]T, len(indices))
	for i, idx := range indices {
		switch {
		case idx >= 0 && idx < len(src):
			out[i] = src[idx]
		case idx == -1 && hasFill:
			out[i] = fill
		default:
			return nil, errors.Errorf("gather index %d out of bounds [0,%d)", idx, len(src))
		}
	}
	return out, nil
}

// Concatenate the data of literals of the same element type into a single
// row-major buffer. Blocks are interleaved: for each outer index, blockSizes[i]
// consecutive values are copied from literal i.
func Concatenate(sh *shapes.Shape, lits []*Literal, outer int, blockSizes []int) (*Literal, error) {
	if len(lits) == 0 || len(lits) != len(blockSizes) {
		return nil, errors.Errorf("invalid concatenation of %d literals", len(lits))
	}
	// Every operand contributes one block per outer index: express it as a gather
	// from a virtual buffer made of all the operand buffers one after the other.
	offsets := make([]int, len(lits))
	total := 0
	for i, lit := range lits {
		if lit.shape.DType() != sh.DType() {
			return nil, errors.Errorf("cannot concatenate %s into %s", lit.shape.String(), sh.String())
		}
		offsets[i] = total
		total += lit.Size()
	}
	indices := make([]int, 0, sh.ElementsIn())
	for o := 0; o < outer; o++ {
		for i, block := range blockSizes {
			start := offsets[i] + o*block
			for j := 0; j < block; j++ {
				indices = append(indices, start+j)
			}
		}
	}
	joined, err := join(lits, total)
	if err != nil {
		return nil, err
	}
	return joined.Gather(sh, indices, nil)
}

func join(lits []*Literal, total int) (*Literal, error) {
	flat := shapes.Make(lits[0].shape.DType(), total)
	switch lits[0].data.(type) {
	case []bool:
		return New(flat, joinData[bool](lits))
	case []dtype.Bfloat16T:
		return New(flat, joinData[dtype.Bfloat16T](lits))
	case []float32:
		return New(flat, joinData[float32](lits))
	case []float64:
		return New(flat, joinData[float64](lits))
	case []int32:
		return New(flat, joinData[int32](lits))
	case []int64:
		return New(flat, joinData[int64](lits))
	case []uint32:
		return New(flat, joinData[uint32](lits))
	case []uint64:
		return New(flat, joinData[uint64](lits))
	}
	return nil, errors.Errorf("cannot join %T", lits[0].data)
}

func joinData[T dtype.GoDataType](lits []*Literal) []T {
	var out []T
	for _, lit := range lits {
		out = append(out, Data[T](lit)...)
	}
	return out
}
