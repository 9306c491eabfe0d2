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

package ir

import (
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

// Builder builds a computation instruction by instruction.
// Shapes are not inferred: every instruction is given its result shape.
type Builder struct {
	comp *Computation
	root *Instruction
}

// NewBuilder returns a builder for a new computation.
func NewBuilder(name string) *Builder {
	return &Builder{comp: newComputation(name)}
}

// Build returns the computation. The root is the instruction set by SetRoot
// or, if none, the last instruction added.
func (b *Builder) Build() *Computation {
	root := b.root
	if root == nil && len(b.comp.instructions) > 0 {
		root = b.comp.instructions[len(b.comp.instructions)-1]
	}
	b.comp.root = root
	return b.comp
}

// SetRoot sets the root of the computation being built.
func (b *Builder) SetRoot(inst *Instruction) {
	b.root = inst
}

// Add appends an instruction to the computation.
func (b *Builder) Add(inst *Instruction) *Instruction {
	return b.comp.AddInstruction(inst)
}

// Named appends an instruction to the computation with a given name.
func (b *Builder) Named(name string, inst *Instruction) *Instruction {
	return b.comp.addInstructionWithName(inst, name)
}

func (b *Builder) op(op Opcode, sh *shapes.Shape, attrs Attributes, operands ...*Instruction) *Instruction {
	return b.Add(NewInstruction(op, sh, operands, attrs))
}

func (b *Builder) call(op Opcode, sh *shapes.Shape, attrs Attributes, called []*Computation, operands ...*Instruction) *Instruction {
	inst := NewInstruction(op, sh, operands, attrs)
	inst.called = called
	return b.Add(inst)
}

// Parameter adds a parameter of the computation.
func (b *Builder) Parameter(num int, sh *shapes.Shape) *Instruction {
	return b.op(OpParameter, sh, Attributes{ParameterNumber: num})
}

// Constant adds a constant.
func (b *Builder) Constant(lit *literal.Literal) *Instruction {
	return b.Add(NewConstant(lit))
}

// Iota adds an iota filling the output with increasing values along dimension dim.
func (b *Builder) Iota(sh *shapes.Shape, dim int) *Instruction {
	return b.op(OpIota, sh, Attributes{Dimensions: []int{dim}})
}

// Convert adds an element type conversion.
func (b *Builder) Convert(sh *shapes.Shape, x *Instruction) *Instruction {
	return b.op(OpConvert, sh, Attributes{}, x)
}

// Bitcast adds a reinterpretation of the operand buffer with another shape.
func (b *Builder) Bitcast(sh *shapes.Shape, x *Instruction) *Instruction {
	return b.op(OpBitcast, sh, Attributes{}, x)
}

// Reshape adds a reshape.
func (b *Builder) Reshape(sh *shapes.Shape, x *Instruction) *Instruction {
	return b.op(OpReshape, sh, Attributes{}, x)
}

// Broadcast adds a broadcast. dims maps each operand dimension to an output dimension.
func (b *Builder) Broadcast(sh *shapes.Shape, x *Instruction, dims ...int) *Instruction {
	return b.op(OpBroadcast, sh, Attributes{Dimensions: append([]int{}, dims...)}, x)
}

// Slice adds a slice.
func (b *Builder) Slice(sh *shapes.Shape, x *Instruction, starts, limits, strides []int) *Instruction {
	return b.op(OpSlice, sh, Attributes{Slice: &SliceConfig{Starts: starts, Limits: limits, Strides: strides}}, x)
}

// Transpose adds a transpose. Output dimension i is operand dimension perm[i].
func (b *Builder) Transpose(sh *shapes.Shape, x *Instruction, perm ...int) *Instruction {
	return b.op(OpTranspose, sh, Attributes{Dimensions: append([]int{}, perm...)}, x)
}

// Concatenate adds a concatenation along a dimension.
func (b *Builder) Concatenate(sh *shapes.Shape, dim int, xs ...*Instruction) *Instruction {
	return b.op(OpConcatenate, sh, Attributes{Dimensions: []int{dim}}, xs...)
}

// Pad adds a pad of x with the scalar value v.
func (b *Builder) Pad(sh *shapes.Shape, x, v *Instruction, padding ...PaddingDim) *Instruction {
	return b.op(OpPad, sh, Attributes{Padding: padding}, x, v)
}

// Tuple adds a tuple of values. The shape is inferred from the operands.
func (b *Builder) Tuple(xs ...*Instruction) *Instruction {
	shs := make([]*shapes.Shape, len(xs))
	for i, x := range xs {
		shs[i] = x.shape
	}
	return b.op(OpTuple, shapes.MakeTuple(shs...), Attributes{}, xs...)
}

// GetTupleElement adds an extraction of the element of a tuple.
func (b *Builder) GetTupleElement(x *Instruction, index int) *Instruction {
	return b.op(OpGetTupleElement, x.shape.Elements[index], Attributes{TupleIndex: index}, x)
}

// Reduce adds a reduction of x along dims, starting from init and combining elements with comp.
func (b *Builder) Reduce(sh *shapes.Shape, x, init *Instruction, dims []int, comp *Computation) *Instruction {
	return b.call(OpReduce, sh, Attributes{Dimensions: dims}, []*Computation{comp}, x, init)
}

// ReduceWindow adds a windowed reduction.
func (b *Builder) ReduceWindow(sh *shapes.Shape, x, init *Instruction, window []WindowDim, comp *Computation) *Instruction {
	return b.call(OpReduceWindow, sh, Attributes{Window: window}, []*Computation{comp}, x, init)
}

// Map adds an elementwise application of comp to the operands.
func (b *Builder) Map(sh *shapes.Shape, comp *Computation, xs ...*Instruction) *Instruction {
	return b.call(OpMap, sh, Attributes{}, []*Computation{comp}, xs...)
}

// Sort adds a sort of x along dim using comp as a less-than comparator.
func (b *Builder) Sort(sh *shapes.Shape, x *Instruction, dim int, comp *Computation) *Instruction {
	return b.call(OpSort, sh, Attributes{Dimensions: []int{dim}}, []*Computation{comp}, x)
}

// Unary adds an elementwise unary operation.
func (b *Builder) Unary(op Opcode, sh *shapes.Shape, x *Instruction) *Instruction {
	return b.op(op, sh, Attributes{}, x)
}

// Binary adds an elementwise binary operation.
func (b *Builder) Binary(op Opcode, sh *shapes.Shape, x, y *Instruction) *Instruction {
	return b.op(op, sh, Attributes{}, x, y)
}

// Compare adds an elementwise comparison.
func (b *Builder) Compare(sh *shapes.Shape, dir ComparisonDirection, x, y *Instruction) *Instruction {
	return b.op(OpCompare, sh, Attributes{Direction: dir}, x, y)
}

// Select adds an elementwise choice between x and y given a predicate.
func (b *Builder) Select(sh *shapes.Shape, pred, x, y *Instruction) *Instruction {
	return b.op(OpSelect, sh, Attributes{}, pred, x, y)
}

// Dot adds a matrix product.
func (b *Builder) Dot(sh *shapes.Shape, x, y *Instruction) *Instruction {
	return b.op(OpDot, sh, Attributes{}, x, y)
}

// Fft adds a fast Fourier transform.
func (b *Builder) Fft(sh *shapes.Shape, x *Instruction) *Instruction {
	return b.op(OpFft, sh, Attributes{}, x)
}

// Call adds a call to a computation.
func (b *Builder) Call(sh *shapes.Shape, comp *Computation, args ...*Instruction) *Instruction {
	return b.call(OpCall, sh, Attributes{}, []*Computation{comp}, args...)
}

// Fusion adds a fusion instruction calling a fused computation.
func (b *Builder) Fusion(sh *shapes.Shape, kind string, comp *Computation, args ...*Instruction) *Instruction {
	return b.call(OpFusion, sh, Attributes{FusionKind: kind}, []*Computation{comp}, args...)
}

// CustomCall adds a call to an external function.
func (b *Builder) CustomCall(sh *shapes.Shape, target string, sideEffect bool, args ...*Instruction) *Instruction {
	return b.op(OpCustomCall, sh, Attributes{CustomCallTarget: target, HasSideEffect: sideEffect}, args...)
}

// While adds a loop. body and cond are called with the loop state.
func (b *Builder) While(sh *shapes.Shape, cond, body *Computation, init *Instruction) *Instruction {
	return b.call(OpWhile, sh, Attributes{}, []*Computation{cond, body}, init)
}

// Conditional adds a branch: branches[i] is called with args[i+1] when the index args[0] is i.
func (b *Builder) Conditional(sh *shapes.Shape, branches []*Computation, args ...*Instruction) *Instruction {
	return b.call(OpConditional, sh, Attributes{}, branches, args...)
}

// Rng adds a random number generator.
func (b *Builder) Rng(sh *shapes.Shape, distribution string, a, bb *Instruction) *Instruction {
	return b.op(OpRng, sh, Attributes{Distribution: distribution}, a, bb)
}

// AfterAll adds a token joining other tokens.
func (b *Builder) AfterAll(tokens ...*Instruction) *Instruction {
	return b.op(OpAfterAll, shapes.MakeToken(), Attributes{}, tokens...)
}

// Infeed adds a read from the host.
func (b *Builder) Infeed(sh *shapes.Shape, token *Instruction) *Instruction {
	return b.op(OpInfeed, sh, Attributes{}, token)
}

// Outfeed adds a write to the host.
func (b *Builder) Outfeed(x, token *Instruction) *Instruction {
	return b.op(OpOutfeed, shapes.MakeToken(), Attributes{}, x, token)
}

// AllReduce adds a reduction across devices.
func (b *Builder) AllReduce(sh *shapes.Shape, comp *Computation, xs ...*Instruction) *Instruction {
	return b.call(OpAllReduce, sh, Attributes{}, []*Computation{comp}, xs...)
}

// Op adds an instruction given its opcode, shape, attributes and operands.
func (b *Builder) Op(op Opcode, sh *shapes.Shape, attrs Attributes, operands ...*Instruction) *Instruction {
	return b.op(op, sh, attrs, operands...)
}
