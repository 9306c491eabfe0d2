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

package constfold

import (
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
)

// rejectError is returned when an instruction of a called computation is not folded.
type rejectError struct {
	inst   *ir.Instruction
	reason Reason
}

func (e *rejectError) Error() string {
	return e.inst.Name() + " in " + e.inst.Parent().Name() + ": " + string(e.reason)
}

// reasonOf returns the reason to report in the metrics for an error.
func reasonOf(err error) Reason {
	var rej *rejectError
	if errors.As(err, &rej) {
		return rej.reason
	}
	return ReasonEvaluationFailed
}

// inline computes the value of a computation called with constant arguments.
// Every instruction of the computation is subject to the same rules as top-level
// instructions, except that its operands are values computed from the arguments.
// Broadcasts and iotas are evaluated.
func (r *run) inline(comp *ir.Computation, args []*literal.Literal) (*literal.Literal, error) {
	if len(args) != len(comp.Parameters()) {
		return nil, errors.Errorf("computation %s: got %d arguments but want %d", comp.Name(), len(args), len(comp.Parameters()))
	}
	if comp.Root() == nil {
		return nil, errors.Errorf("computation %s has no root", comp.Name())
	}
	values := make(map[*ir.Instruction]*literal.Literal)
	for _, inst := range comp.PostOrder() {
		switch inst.Opcode() {
		case ir.OpParameter:
			values[inst] = args[inst.Attributes().ParameterNumber]
			continue
		case ir.OpConstant:
			values[inst] = inst.Literal()
			continue
		}
		if reason := r.check(inst); reason != "" {
			return nil, &rejectError{inst: inst, reason: reason}
		}
		operands := make([]*literal.Literal, len(inst.Operands()))
		for i, op := range inst.Operands() {
			operands[i] = values[op]
		}
		val, err := r.evaluate(inst, operands)
		if err != nil {
			return nil, err
		}
		values[inst] = val
	}
	return values[comp.Root()], nil
}

// evaluate computes the value of an instruction. Calls and fusions are inlined.
func (r *run) evaluate(inst *ir.Instruction, operands []*literal.Literal) (*literal.Literal, error) {
	switch inst.Opcode() {
	case ir.OpCall, ir.OpFusion:
		called := inst.CalledComputations()
		if len(called) != 1 {
			return nil, errors.Errorf("%s: got %d called computations but want 1", inst.Name(), len(called))
		}
		return r.inline(called[0], operands)
	}
	return r.pass.evaluator.Evaluate(inst, operands)
}
