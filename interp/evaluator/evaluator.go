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

// Package evaluator computes the value of instructions from the values of their operands.
package evaluator

import (
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/interp/kernels"
	"go.uber.org/zap"
)

// DefaultMaxCallDepth is the default maximum number of nested computation calls.
const DefaultMaxCallDepth = 64

type (
	// Option configures an evaluator.
	Option func(*Evaluator)

	// Evaluator computes the value of instructions from constant operands.
	Evaluator struct {
		log          *zap.Logger
		maxCallDepth int
	}

	// frame evaluates instructions at a given depth of nested computation calls.
	frame struct {
		ev    *Evaluator
		depth int
	}
)

// WithLogger sets the logger of the evaluator.
func WithLogger(log *zap.Logger) Option {
	return func(ev *Evaluator) {
		ev.log = log.With(zap.String("service", "evaluator"))
	}
}

// WithMaxCallDepth sets the maximum number of nested computation calls.
func WithMaxCallDepth(depth int) Option {
	return func(ev *Evaluator) {
		ev.maxCallDepth = depth
	}
}

// New returns a new evaluator.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		log:          zap.NewNop(),
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Evaluate computes the value of an instruction given the values of its operands.
func (ev *Evaluator) Evaluate(inst *ir.Instruction, operands []*literal.Literal) (*literal.Literal, error) {
	return (&frame{ev: ev}).evaluate(inst, operands)
}

// EvaluateComputation computes the value of the root of a computation given its arguments.
func (ev *Evaluator) EvaluateComputation(comp *ir.Computation, args []*literal.Literal) (*literal.Literal, error) {
	return (&frame{ev: ev}).computation(comp, args)
}

func (fr *frame) computation(comp *ir.Computation, args []*literal.Literal) (*literal.Literal, error) {
	if fr.depth >= fr.ev.maxCallDepth {
		return nil, errors.Errorf("computation %s: maximum call depth %d exceeded", comp.Name(), fr.ev.maxCallDepth)
	}
	params := comp.Parameters()
	if len(args) != len(params) {
		return nil, errors.Errorf("computation %s: got %d arguments but want %d", comp.Name(), len(args), len(params))
	}
	if comp.Root() == nil {
		return nil, errors.Errorf("computation %s has no root", comp.Name())
	}
	inner := &frame{ev: fr.ev, depth: fr.depth + 1}
	values := make(map[*ir.Instruction]*literal.Literal)
	for _, inst := range comp.PostOrder() {
		if inst.Opcode() == ir.OpParameter {
			num := inst.Attributes().ParameterNumber
			if !args[num].Shape().Compatible(inst.Shape()) {
				return nil, errors.Errorf("computation %s: argument %d of shape %s does not match parameter of shape %s", comp.Name(), num, args[num].Shape().String(), inst.Shape().String())
			}
			values[inst] = args[num]
			continue
		}
		operands := make([]*literal.Literal, len(inst.Operands()))
		for i, op := range inst.Operands() {
			operands[i] = values[op]
		}
		val, err := inner.evaluate(inst, operands)
		if err != nil {
			return nil, errors.Wrapf(err, "computation %s", comp.Name())
		}
		values[inst] = val
	}
	return values[comp.Root()], nil
}

func checkArity(inst *ir.Instruction, operands []*literal.Literal, want int) error {
	if len(operands) != len(inst.Operands()) {
		return errors.Errorf("%s: got %d operand values for %d operands", inst.Name(), len(operands), len(inst.Operands()))
	}
	if want >= 0 && len(operands) != want {
		return errors.Errorf("%s: got %d operands but want %d", inst.Name(), len(operands), want)
	}
	for i, op := range operands {
		if op == nil {
			return errors.Errorf("%s: operand %d has no value", inst.Name(), i)
		}
	}
	return nil
}

func arity(op ir.Opcode) int {
	switch {
	case op.IsElementwiseUnary():
		return 1
	case op.IsElementwiseBinary():
		return 2
	}
	switch op {
	case ir.OpConstant, ir.OpIota:
		return 0
	case ir.OpConvert, ir.OpBitcast, ir.OpReshape, ir.OpBroadcast, ir.OpSlice,
		ir.OpTranspose, ir.OpGetTupleElement, ir.OpSort:
		return 1
	case ir.OpPad, ir.OpReduce, ir.OpReduceWindow:
		return 2
	case ir.OpSelect:
		return 3
	}
	return -1
}

func (fr *frame) evaluate(inst *ir.Instruction, operands []*literal.Literal) (*literal.Literal, error) {
	op := inst.Opcode()
	if err := checkArity(inst, operands, arity(op)); err != nil {
		return nil, err
	}
	sh := inst.Shape()
	attrs := inst.Attributes()
	switch {
	case op == ir.OpCompare:
		return kernels.Binary(op, attrs.Direction, sh, operands[0], operands[1])
	case op.IsElementwiseUnary():
		return kernels.Unary(op, sh, operands[0])
	case op.IsElementwiseBinary():
		return kernels.Binary(op, 0, sh, operands[0], operands[1])
	}
	switch op {
	case ir.OpConstant:
		if inst.Literal() == nil {
			return nil, errors.Errorf("%s: constant without a literal", inst.Name())
		}
		return inst.Literal(), nil
	case ir.OpIota:
		return iotaValues(sh, attrs)
	case ir.OpConvert:
		return operands[0].Convert(sh)
	case ir.OpBitcast:
		return bitcast(sh, operands[0])
	case ir.OpReshape:
		return operands[0].Relabel(sh)
	case ir.OpBroadcast:
		return broadcast(sh, operands[0], attrs.Dimensions)
	case ir.OpSlice:
		return slice(sh, operands[0], attrs.Slice)
	case ir.OpTranspose:
		return transpose(sh, operands[0], attrs.Dimensions)
	case ir.OpConcatenate:
		return concatenate(sh, operands, attrs.Dimensions)
	case ir.OpPad:
		return pad(sh, operands[0], operands[1], attrs.Padding)
	case ir.OpSelect:
		return kernels.Select(sh, operands[0], operands[1], operands[2])
	case ir.OpTuple:
		return literal.Tuple(operands...), nil
	case ir.OpGetTupleElement:
		els := operands[0].Elements()
		if idx := attrs.TupleIndex; idx >= 0 && idx < len(els) {
			return els[idx], nil
		}
		return nil, errors.Errorf("%s: tuple index %d out of range", inst.Name(), attrs.TupleIndex)
	case ir.OpReduce:
		return fr.reduce(inst, operands[0], operands[1])
	case ir.OpReduceWindow:
		return fr.reduceWindow(inst, operands[0], operands[1])
	case ir.OpMap:
		return fr.mapComputation(inst, operands)
	case ir.OpSort:
		return fr.sort(inst, operands[0])
	case ir.OpCall, ir.OpFusion:
		comp, err := calledComputation(inst)
		if err != nil {
			return nil, err
		}
		fr.ev.log.Debug("evaluating called computation",
			zap.String("instruction", inst.Name()),
			zap.String("computation", comp.Name()),
			zap.Int("depth", fr.depth))
		return fr.computation(comp, operands)
	}
	return nil, errors.Errorf("%s: opcode %s not supported by the evaluator", inst.Name(), op)
}

func calledComputation(inst *ir.Instruction) (*ir.Computation, error) {
	called := inst.CalledComputations()
	if len(called) != 1 {
		return nil, errors.Errorf("%s: got %d called computations but want 1", inst.Name(), len(called))
	}
	return called[0], nil
}
