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

package ir_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
	"go.uber.org/multierr"
)

var f32 = shapes.Make(dtype.Float32)

func names(insts []*ir.Instruction) []string {
	ss := make([]string, len(insts))
	for i, inst := range insts {
		ss[i] = inst.Name()
	}
	return ss
}

func addComputation() *ir.Computation {
	b := ir.NewBuilder("add")
	x := b.Parameter(0, f32)
	y := b.Parameter(1, f32)
	b.Binary(ir.OpAdd, f32, x, y)
	return b.Build()
}

func TestPostOrder(t *testing.T) {
	b := ir.NewBuilder("entry")
	c1 := b.Named("c1", ir.NewConstant(literal.Scalar[float32](1)))
	c2 := b.Named("c2", ir.NewConstant(literal.Scalar[float32](2)))
	b.Named("unused", ir.NewConstant(literal.Scalar[float32](3)))
	neg := b.Named("neg", ir.NewInstruction(ir.OpNegate, f32, []*ir.Instruction{c2}, ir.Attributes{}))
	sum := b.Named("sum", ir.NewInstruction(ir.OpAdd, f32, []*ir.Instruction{neg, c1}, ir.Attributes{}))
	b.Named("mul", ir.NewInstruction(ir.OpMultiply, f32, []*ir.Instruction{sum, neg}, ir.Attributes{}))
	comp := b.Build()
	got := names(comp.PostOrder())
	want := []string{"c2", "neg", "c1", "sum", "mul"}
	if !cmp.Equal(got, want) {
		t.Errorf("incorrect post order: got %v but want %v", got, want)
	}
	if got := len(comp.Instructions()); got != 6 {
		t.Errorf("got %d instructions in the arena but want 6", got)
	}
}

func TestReplaceAllUsesWith(t *testing.T) {
	b := ir.NewBuilder("entry")
	c := b.Constant(literal.Scalar[float32](2))
	neg := b.Unary(ir.OpNegate, f32, c)
	x := b.Binary(ir.OpAdd, f32, neg, neg)
	y := b.Binary(ir.OpMultiply, f32, neg, c)
	b.Tuple(x, y)
	b.SetRoot(neg)
	comp := b.Build()

	folded := comp.AddInstruction(ir.NewConstant(literal.Scalar[float32](-2)))
	if err := comp.ReplaceAllUsesWith(neg, folded); err != nil {
		t.Fatal(err)
	}
	if comp.Root() != folded {
		t.Errorf("root not updated: got %s but want %s", comp.Root().Name(), folded.Name())
	}
	if len(neg.Users()) != 0 {
		t.Errorf("replaced instruction still has users: %v", names(neg.Users()))
	}
	if got, want := names(folded.Users()), []string{"add", "multiply"}; !cmp.Equal(got, want) {
		t.Errorf("incorrect users: got %v but want %v", got, want)
	}
	for _, user := range []*ir.Instruction{x, y} {
		if user.Operand(0) != folded {
			t.Errorf("%s: operand not redirected", user)
		}
	}
	if neg.Parent() != comp {
		t.Errorf("replaced instruction removed from its computation")
	}

	wrongShape := comp.AddInstruction(ir.NewConstant(literal.Vector[float32](1, 2)))
	if err := comp.ReplaceAllUsesWith(folded, wrongShape); err == nil {
		t.Errorf("expected an error when replacing with an incompatible shape")
	}
}

func TestModulePostOrder(t *testing.T) {
	m := ir.NewModule("test")
	add := m.AddEmbeddedComputation(addComputation())

	fb := ir.NewBuilder("fused")
	fb.Constant(literal.Scalar[float32](1))
	fused := m.AddEmbeddedComputation(fb.Build())

	b := ir.NewBuilder("entry")
	x := b.Fusion(f32, "kLoop", fused)
	zero := b.Constant(literal.Scalar[float32](0))
	b.Reduce(f32, x, zero, nil, add)
	entry := m.AddEntryComputation(b.Build())

	order, err := m.PostOrder()
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(order))
	for i, c := range order {
		got[i] = c.Name()
	}
	if want := []string{"add", "fused", "entry"}; !cmp.Equal(got, want) {
		t.Errorf("incorrect computation post order: got %v but want %v", got, want)
	}
	nonFusion, err := m.NonFusionComputations()
	if err != nil {
		t.Fatal(err)
	}
	if len(nonFusion) != 2 || nonFusion[0] != add || nonFusion[1] != entry {
		t.Errorf("incorrect non-fusion computations: %v", nonFusion)
	}
	if !fused.IsFusion() {
		t.Errorf("computation %s not marked as fusion", fused.Name())
	}
	if err := ir.Verify(m); err != nil {
		t.Errorf("unexpected verification error: %v", err)
	}
}

func TestCyclicCallGraph(t *testing.T) {
	m := ir.NewModule("cycle")
	bb := ir.NewBuilder("b")
	bb.Constant(literal.Scalar[float32](1))
	compB := m.AddEmbeddedComputation(bb.Build())
	ba := ir.NewBuilder("a")
	ba.Call(f32, compB)
	compA := m.AddEntryComputation(ba.Build())
	bb.SetRoot(bb.Call(f32, compA))
	bb.Build()

	if _, err := m.PostOrder(); err == nil {
		t.Errorf("expected an error for a cyclic call graph")
	}
	if err := ir.Verify(m); err == nil {
		t.Errorf("expected a verification error for a cyclic call graph")
	}
}

func TestVerify(t *testing.T) {
	m := ir.NewModule("invalid")
	other := ir.NewBuilder("other")
	p := other.Parameter(0, f32)
	m.AddEmbeddedComputation(other.Build())

	add := m.AddEmbeddedComputation(addComputation())
	b := ir.NewBuilder("entry")
	b.Unary(ir.OpNegate, f32, p)
	b.Call(f32, add, b.Constant(literal.Scalar[float32](1)))
	m.AddEntryComputation(b.Build())

	err := ir.Verify(m)
	if err == nil {
		t.Fatalf("expected verification errors")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors but want 2: %v", len(errs), err)
	}
	if !strings.Contains(errs[0].Error(), "owned by another computation") {
		t.Errorf("unexpected error: %v", errs[0])
	}
	if !strings.Contains(errs[1].Error(), "1 operands bound to computation add with 2 parameters") {
		t.Errorf("unexpected error: %v", errs[1])
	}
}

func TestVerifyOperandGraph(t *testing.T) {
	tests := []struct {
		desc    string
		rewrite func(c *ir.Computation, x, neg *ir.Instruction) error
		want    string
	}{
		{
			desc: "constant appended after its user",
			rewrite: func(c *ir.Computation, x, neg *ir.Instruction) error {
				cst := c.AddInstruction(ir.NewConstant(literal.Vector[float32](-1, -2)))
				return c.ReplaceAllUsesWith(neg, cst)
			},
		},
		{
			desc: "instruction using itself",
			rewrite: func(c *ir.Computation, x, neg *ir.Instruction) error {
				return c.ReplaceAllUsesWith(x, neg)
			},
			want: "its own transitive operand",
		},
	}
	vec := shapes.Make(dtype.Float32, 2)
	for i, test := range tests {
		m := ir.NewModule("verify")
		b := ir.NewBuilder("entry")
		x := b.Constant(literal.Vector[float32](1, 2))
		neg := b.Unary(ir.OpNegate, vec, x)
		b.Binary(ir.OpAdd, vec, neg, b.Parameter(0, vec))
		c := m.AddEntryComputation(b.Build())
		if err := ir.Verify(m); err != nil {
			t.Errorf("test %d: %s: unexpected error before rewriting: %v", i, test.desc, err)
			continue
		}
		if err := test.rewrite(c, x, neg); err != nil {
			t.Errorf("test %d: %s: %+v", i, test.desc, err)
			continue
		}
		err := ir.Verify(m)
		if test.want == "" {
			if err != nil {
				t.Errorf("test %d: %s: unexpected error: %v", i, test.desc, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("test %d: %s: got error %v but want %q", i, test.desc, err, test.want)
		}
	}
}

func TestString(t *testing.T) {
	m := ir.NewModule("print")
	add := m.AddEmbeddedComputation(addComputation())
	b := ir.NewBuilder("entry")
	x := b.Constant(literal.Vector[int32](1, 2, 3))
	init := b.Constant(literal.Scalar[int32](0))
	b.Reduce(shapes.Make(dtype.Int32), x, init, []int{0}, add)
	m.AddEntryComputation(b.Build())

	want := `HloModule print

add {
  parameter = f32[] parameter(0)
  parameter.1 = f32[] parameter(1)
  ROOT add = f32[] add(parameter, parameter.1)
}

ENTRY entry {
  constant = s32[3]{0} constant({1, 2, 3})
  constant.1 = s32[] constant(0)
  ROOT reduce = s32[] reduce(constant, constant.1), dimensions={0}, to_apply=add
}
`
	if diff := cmp.Diff(want, m.String()); diff != "" {
		t.Errorf("incorrect module string (-want +got):\n%s", diff)
	}
}
