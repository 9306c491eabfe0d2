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
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

type (
	// SliceConfig specifies the elements selected by a slice instruction.
	// Limits are exclusive.
	SliceConfig struct {
		Starts, Limits, Strides []int
	}

	// PaddingDim specifies the padding of one dimension.
	// Edge padding can be negative, in which case elements are removed.
	PaddingDim struct {
		Low, High, Interior int
	}

	// WindowDim specifies the window of a reduce-window along one dimension.
	WindowDim struct {
		Size, Stride    int
		PadLow, PadHigh int
	}

	// Attributes are the opcode specific fields of an instruction.
	Attributes struct {
		// Dimensions are the broadcast dimensions, the reduced dimensions,
		// the transpose permutation, the concatenate or iota dimension (one element),
		// or the sort dimension (one element).
		Dimensions []int

		// Slice of a slice instruction.
		Slice *SliceConfig

		// Padding of a pad instruction, one per dimension.
		Padding []PaddingDim

		// Window of a reduce-window instruction, one per dimension.
		Window []WindowDim

		// Direction of a compare instruction.
		Direction ComparisonDirection

		// TupleIndex of a get-tuple-element instruction.
		TupleIndex int

		// ParameterNumber of a parameter instruction.
		ParameterNumber int

		// CustomCallTarget is the name of the function called by a custom-call.
		CustomCallTarget string

		// HasSideEffect marks a custom-call as side-effecting.
		HasSideEffect bool

		// FusionKind is the kind of a fusion instruction (kLoop, kInput, ...).
		FusionKind string

		// Distribution of a rng instruction.
		Distribution string
	}

	// Instruction is a node of a computation graph.
	Instruction struct {
		id       int
		name     string
		opcode   Opcode
		shape    *shapes.Shape
		operands []*Instruction
		users    []*Instruction
		called   []*Computation
		parent   *Computation
		literal  *literal.Literal
		attrs    Attributes
	}
)

// NewInstruction returns a new instruction not attached to any computation.
func NewInstruction(op Opcode, sh *shapes.Shape, operands []*Instruction, attrs Attributes) *Instruction {
	return &Instruction{
		id:       -1,
		opcode:   op,
		shape:    sh,
		operands: append([]*Instruction{}, operands...),
		attrs:    attrs,
	}
}

// NewConstant returns a new constant instruction holding a literal.
// The shape of the instruction is the shape of the literal.
func NewConstant(lit *literal.Literal) *Instruction {
	inst := NewInstruction(OpConstant, lit.Shape(), nil, Attributes{})
	inst.literal = lit
	return inst
}

// NewConstantOfShape returns a new constant instruction holding a literal
// with an explicit shape. The shape must be compatible with the shape of the literal
// and can carry a different layout.
func NewConstantOfShape(sh *shapes.Shape, lit *literal.Literal) (*Instruction, error) {
	if !sh.Compatible(lit.Shape()) {
		return nil, errors.Errorf("cannot create a constant of shape %s from a literal of shape %s", sh.String(), lit.Shape().String())
	}
	inst := NewConstant(lit)
	inst.shape = sh.Clone()
	return inst, nil
}

// ID returns the index of the instruction in its computation.
// It is -1 if the instruction has not been added to a computation.
func (inst *Instruction) ID() int {
	return inst.id
}

// Name of the instruction. Names are unique within a computation.
func (inst *Instruction) Name() string {
	return inst.name
}

// Opcode of the instruction.
func (inst *Instruction) Opcode() Opcode {
	return inst.opcode
}

// Shape of the value computed by the instruction.
func (inst *Instruction) Shape() *shapes.Shape {
	return inst.shape
}

// Operands of the instruction.
func (inst *Instruction) Operands() []*Instruction {
	return inst.operands
}

// Operand returns the i-th operand.
func (inst *Instruction) Operand(i int) *Instruction {
	return inst.operands[i]
}

// Users returns the instructions using this instruction as an operand.
func (inst *Instruction) Users() []*Instruction {
	return inst.users
}

// CalledComputations returns the computations invoked by the instruction.
func (inst *Instruction) CalledComputations() []*Computation {
	return inst.called
}

// Parent returns the computation owning the instruction.
func (inst *Instruction) Parent() *Computation {
	return inst.parent
}

// Literal returns the value of a constant instruction, nil otherwise.
func (inst *Instruction) Literal() *literal.Literal {
	return inst.literal
}

// Attributes returns the opcode specific fields of the instruction.
func (inst *Instruction) Attributes() *Attributes {
	return &inst.attrs
}

// IsConstant returns true if the instruction is a constant.
func (inst *Instruction) IsConstant() bool {
	return inst.opcode == OpConstant
}

// IsRoot returns true if the instruction is the root of its computation.
func (inst *Instruction) IsRoot() bool {
	return inst.parent != nil && inst.parent.root == inst
}

// HasSideEffect returns true if executing the instruction has an effect other
// than computing its value. Nested computations are not inspected.
func (inst *Instruction) HasSideEffect() bool {
	switch inst.opcode {
	case OpRng, OpAfterAll, OpSend, OpSendDone, OpRecv, OpRecvDone, OpInfeed, OpOutfeed,
		OpAllReduce, OpAllGather, OpAllToAll, OpCollectivePermute, OpReduceScatter:
		return true
	case OpCustomCall:
		return inst.attrs.HasSideEffect
	}
	return false
}

func (inst *Instruction) addUser(user *Instruction) {
	for _, u := range inst.users {
		if u == user {
			return
		}
	}
	inst.users = append(inst.users, user)
}
