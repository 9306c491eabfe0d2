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

package evaluator_test

import (
	"strings"
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
	"github.com/gx-org/hlo/interp/evaluator"
	"go.uber.org/zap/zaptest"
)

func s32(dims ...int) *shapes.Shape {
	return shapes.Make(dtype.Int32, dims...)
}

func f32(dims ...int) *shapes.Shape {
	return shapes.Make(dtype.Float32, dims...)
}

func binaryComputation(name string, op ir.Opcode, sh *shapes.Shape) *ir.Computation {
	b := ir.NewBuilder(name)
	x := b.Parameter(0, sh)
	y := b.Parameter(1, sh)
	b.Binary(op, sh, x, y)
	return b.Build()
}

// addPlusZero adds its parameters through an extra instruction so that
// the reducer is not recognized as a single scalar operator.
func addPlusZero(sh *shapes.Shape) *ir.Computation {
	b := ir.NewBuilder("add_plus_zero")
	x := b.Parameter(0, sh)
	y := b.Parameter(1, sh)
	sum := b.Binary(ir.OpAdd, sh, x, y)
	zero, err := literal.Zeros(sh)
	if err != nil {
		panic(err)
	}
	b.Binary(ir.OpAdd, sh, sum, b.Constant(zero))
	return b.Build()
}

func lessThan(sh *shapes.Shape) *ir.Computation {
	b := ir.NewBuilder("less_than")
	x := b.Parameter(0, sh)
	y := b.Parameter(1, sh)
	b.Compare(shapes.Make(dtype.Bool), ir.CmpLT, x, y)
	return b.Build()
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		desc  string
		build func(b *ir.Builder, x *ir.Instruction)
		in    *literal.Literal
		want  *literal.Literal
	}{
		{
			desc: "iota",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Iota(f32(2, 3), 1)
			},
			in:   literal.Scalar[int32](0),
			want: literal.Array([]float32{0, 1, 2, 0, 1, 2}, 2, 3),
		},
		{
			desc: "broadcast",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Broadcast(s32(2, 3), x, 0)
			},
			in:   literal.Vector[int32](1, 2),
			want: literal.Array([]int32{1, 1, 1, 2, 2, 2}, 2, 3),
		},
		{
			desc: "slice",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Slice(s32(2, 2), x, []int{0, 1}, []int{3, 4}, []int{2, 2})
			},
			in:   literal.Array([]int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, 3, 4),
			want: literal.Array([]int32{1, 3, 9, 11}, 2, 2),
		},
		{
			desc: "transpose",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Transpose(s32(3, 2), x, 1, 0)
			},
			in:   literal.Array([]int32{0, 1, 2, 3, 4, 5}, 2, 3),
			want: literal.Array([]int32{0, 3, 1, 4, 2, 5}, 3, 2),
		},
		{
			desc: "concatenate",
			build: func(b *ir.Builder, x *ir.Instruction) {
				y := b.Constant(literal.Array([]int32{10, 11}, 2, 1))
				b.Concatenate(s32(2, 3), 1, x, y)
			},
			in:   literal.Array([]int32{0, 1, 2, 3}, 2, 2),
			want: literal.Array([]int32{0, 1, 10, 2, 3, 11}, 2, 3),
		},
		{
			desc: "pad with interior padding",
			build: func(b *ir.Builder, x *ir.Instruction) {
				v := b.Constant(literal.Scalar[int32](-1))
				b.Pad(s32(6), x, v, ir.PaddingDim{Low: 1, High: 0, Interior: 1})
			},
			in:   literal.Vector[int32](1, 2, 3),
			want: literal.Vector[int32](-1, 1, -1, 2, -1, 3),
		},
		{
			desc: "pad with negative padding",
			build: func(b *ir.Builder, x *ir.Instruction) {
				v := b.Constant(literal.Scalar[int32](0))
				b.Pad(s32(3), x, v, ir.PaddingDim{Low: -2, High: 1})
			},
			in:   literal.Vector[int32](1, 2, 3, 4),
			want: literal.Vector[int32](3, 4, 0),
		},
		{
			desc: "reduce",
			build: func(b *ir.Builder, x *ir.Instruction) {
				init := b.Constant(literal.Scalar[float32](0))
				b.Reduce(f32(2), x, init, []int{1}, binaryComputation("add", ir.OpAdd, f32()))
			},
			in:   literal.Array([]float32{1, 2, 3, 4, 5, 6}, 2, 3),
			want: literal.Vector[float32](6, 15),
		},
		{
			desc: "reduce with a computation",
			build: func(b *ir.Builder, x *ir.Instruction) {
				init := b.Constant(literal.Scalar[float32](1))
				b.Reduce(f32(3), x, init, []int{0}, addPlusZero(f32()))
			},
			in:   literal.Array([]float32{1, 2, 3, 4, 5, 6}, 2, 3),
			want: literal.Vector[float32](6, 8, 10),
		},
		{
			desc: "reduce-window",
			build: func(b *ir.Builder, x *ir.Instruction) {
				init := b.Constant(literal.Scalar[int32](0))
				window := []ir.WindowDim{{Size: 2, Stride: 2, PadLow: 1, PadHigh: 0}}
				b.ReduceWindow(s32(3), x, init, window, binaryComputation("max", ir.OpMaximum, s32()))
			},
			in:   literal.Vector[int32](5, 1, 7, 3, 2),
			want: literal.Vector[int32](5, 7, 3),
		},
		{
			desc: "sort",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Sort(s32(2, 3), x, 1, lessThan(s32()))
			},
			in:   literal.Array([]int32{3, 1, 2, 9, 7, 8}, 2, 3),
			want: literal.Array([]int32{1, 2, 3, 7, 8, 9}, 2, 3),
		},
		{
			desc: "map",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Map(s32(3), binaryComputation("mul", ir.OpMultiply, s32()), x, x)
			},
			in:   literal.Vector[int32](1, 2, 3),
			want: literal.Vector[int32](1, 4, 9),
		},
		{
			desc: "call",
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Call(s32(2), binaryComputation("sub", ir.OpSubtract, s32(2)), x, x)
			},
			in:   literal.Vector[int32](4, 5),
			want: literal.Vector[int32](0, 0),
		},
		{
			desc: "get-tuple-element",
			build: func(b *ir.Builder, x *ir.Instruction) {
				neg := b.Unary(ir.OpNegate, s32(2), x)
				b.GetTupleElement(b.Tuple(x, neg), 1)
			},
			in:   literal.Vector[int32](4, 5),
			want: literal.Vector[int32](-4, -5),
		},
	}
	ev := evaluator.New(evaluator.WithLogger(zaptest.NewLogger(t)))
	for i, test := range tests {
		b := ir.NewBuilder("test")
		x := b.Parameter(0, test.in.Shape())
		test.build(b, x)
		got, err := ev.EvaluateComputation(b.Build(), []*literal.Literal{test.in})
		if err != nil {
			t.Errorf("test %d: %s: %+v", i, test.desc, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("test %d: %s: got %s but want %s", i, test.desc, got, test.want)
		}
	}
}

func TestEvaluateInstruction(t *testing.T) {
	b := ir.NewBuilder("entry")
	x := b.Constant(literal.Vector[int32](1, 2))
	y := b.Constant(literal.Vector[int32](3, 4))
	sum := b.Binary(ir.OpAdd, s32(2), x, y)
	b.Build()

	ev := evaluator.New()
	got, err := ev.Evaluate(sum, []*literal.Literal{x.Literal(), y.Literal()})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if want := literal.Vector[int32](4, 6); !got.Equal(want) {
		t.Errorf("got %s but want %s", got, want)
	}
	if _, err := ev.Evaluate(sum, []*literal.Literal{x.Literal()}); err == nil {
		t.Errorf("expected an error for a missing operand value")
	}
}

func TestUnsupported(t *testing.T) {
	tests := []struct {
		build func(b *ir.Builder, x *ir.Instruction)
		want  string
	}{
		{
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Dot(f32(), x, x)
			},
			want: "not supported",
		},
		{
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.CustomCall(f32(2), "foo", false, x)
			},
			want: "not supported",
		},
		{
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Rng(f32(2), "uniform", x, x)
			},
			want: "not supported",
		},
		{
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Bitcast(shapes.MakeNoLayout(dtype.Float32, 2), x)
			},
			want: "default layouts",
		},
		{
			build: func(b *ir.Builder, x *ir.Instruction) {
				b.Slice(f32(3), x, []int{0}, []int{3}, []int{1})
			},
			want: "invalid range",
		},
	}
	ev := evaluator.New()
	for i, test := range tests {
		b := ir.NewBuilder("test")
		x := b.Parameter(0, f32(2))
		test.build(b, x)
		_, err := ev.EvaluateComputation(b.Build(), []*literal.Literal{literal.Vector[float32](1, 2)})
		if err == nil {
			t.Errorf("test %d: expected an error", i)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("test %d: error %q does not contain %q", i, err.Error(), test.want)
		}
	}
}

func TestMaxCallDepth(t *testing.T) {
	inner := ir.NewBuilder("inner")
	inner.Constant(literal.Scalar[int32](1))
	innerComp := inner.Build()

	outer := ir.NewBuilder("outer")
	outer.Call(s32(), innerComp)
	outerComp := outer.Build()

	if _, err := evaluator.New(evaluator.WithMaxCallDepth(1)).EvaluateComputation(outerComp, nil); err == nil {
		t.Errorf("expected an error when exceeding the call depth")
	}
	got, err := evaluator.New(evaluator.WithMaxCallDepth(2)).EvaluateComputation(outerComp, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if want := literal.Scalar[int32](1); !got.Equal(want) {
		t.Errorf("got %s but want %s", got, want)
	}
}
