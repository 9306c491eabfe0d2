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

// Package constfold replaces instructions computed from constants by their value.
//
// An instruction is folded when:
//   - it and every computation it calls, at any depth, is free of side effects
//     (random numbers, tokens, collectives, loops, ...),
//   - all the shapes involved have a layout,
//   - its operands are constants or broadcasts of constants,
//   - its value and its operands are not too large,
//   - it is not an elementwise operation on broadcast scalars only,
//   - the evaluator can compute its value.
//
// Calls and fusions are folded as a whole by evaluating the called computation
// instruction by instruction with the same rules.
// Folded instructions are not removed: they are left for dead code elimination.
package constfold

import (
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/interp/evaluator"
	"github.com/gx-org/hlo/passes/pass"
	"go.uber.org/zap"
)

// Name of the pass.
const Name = "constant-folding"

// Pass folds constant expressions.
type Pass struct {
	maxOutputElements  int
	maxOperandElements int
	evaluator          Evaluator
	log                *zap.Logger
	metrics            *Metrics
}

var _ pass.Pass = (*Pass)(nil)

// New returns a new constant folding pass.
func New(opts ...Option) *Pass {
	p := &Pass{
		maxOutputElements:  DefaultMaxOutputElements,
		maxOperandElements: DefaultMaxOperandElements,
		log:                zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(zap.String("pass", Name))
	if p.evaluator == nil {
		p.evaluator = evaluator.New(evaluator.WithLogger(p.log))
	}
	return p
}

// Name of the pass.
func (p *Pass) Name() string {
	return Name
}

// run holds the state of a single run of the pass.
type run struct {
	pass   *Pass
	walker *walker
}

// Run folds the constant expressions of all the computations of a module
// except fused computations. It returns true if an instruction has been folded.
// Instructions that cannot be folded are left untouched: the only error
// returned is for a nil module.
func (p *Pass) Run(m *ir.Module) (bool, error) {
	if m == nil {
		return false, errors.Errorf("%s: nil module", Name)
	}
	comps, err := m.NonFusionComputations()
	if err != nil {
		// The walker rejects computations calling themselves.
		p.log.Debug("cannot order computations", zap.String("module", m.Name()), zap.Error(err))
		comps = nil
		for _, comp := range m.Computations() {
			if !comp.IsFusion() {
				comps = append(comps, comp)
			}
		}
	}
	r := &run{pass: p, walker: newWalker()}
	changed := false
	for _, comp := range comps {
		for _, inst := range comp.PostOrder() {
			if r.fold(inst) {
				changed = true
			}
		}
	}
	return changed, nil
}

// check returns the reason why an instruction with constant operands is not folded.
func (r *run) check(inst *ir.Instruction) Reason {
	if reason := r.walker.instruction(inst); reason != "" {
		return reason
	}
	if reason := r.pass.worthFolding(inst); reason != "" {
		return reason
	}
	if keepsScalarBroadcasts(inst) {
		return ReasonBroadcastPolicy
	}
	return ""
}

// checkTopLevel returns the reason why an instruction of a computation is not folded.
func (r *run) checkTopLevel(inst *ir.Instruction) Reason {
	switch inst.Opcode() {
	case ir.OpBroadcast, ir.OpIota:
		return ReasonCompactForm
	}
	if !isFoldableInstruction(inst) {
		return ReasonImpure
	}
	for _, op := range inst.Operands() {
		if !op.IsConstant() && !isBroadcastOfConstant(op) {
			return ReasonNonConstantOperand
		}
	}
	return r.check(inst)
}

func (r *run) operandValues(inst *ir.Instruction) ([]*literal.Literal, error) {
	vals := make([]*literal.Literal, len(inst.Operands()))
	for i, op := range inst.Operands() {
		if op.IsConstant() {
			vals[i] = op.Literal()
			continue
		}
		val, err := r.pass.evaluator.Evaluate(op, []*literal.Literal{op.Operand(0).Literal()})
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}
	return vals, nil
}

func (r *run) reject(inst *ir.Instruction, reason Reason, err error) {
	fields := []zap.Field{
		zap.String("instruction", inst.Name()),
		zap.String("computation", inst.Parent().Name()),
		zap.String("reason", string(reason)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.pass.log.Debug("instruction not folded", fields...)
	if r.pass.metrics != nil {
		r.pass.metrics.Rejected.WithLabelValues(string(reason)).Inc()
	}
}

// fold replaces an instruction by its value if possible.
// It returns true if the instruction has been folded.
func (r *run) fold(inst *ir.Instruction) bool {
	switch inst.Opcode() {
	case ir.OpConstant, ir.OpParameter:
		return false
	}
	if reason := r.checkTopLevel(inst); reason != "" {
		r.reject(inst, reason, nil)
		return false
	}
	operands, err := r.operandValues(inst)
	if err != nil {
		r.reject(inst, ReasonEvaluationFailed, err)
		return false
	}
	val, err := r.evaluate(inst, operands)
	if err != nil {
		r.reject(inst, reasonOf(err), err)
		return false
	}
	cst, err := Fold(inst, val)
	if err != nil {
		r.reject(inst, ReasonEvaluationFailed, err)
		return false
	}
	elements := inst.Shape().ElementsIn()
	r.pass.log.Debug("instruction folded",
		zap.String("instruction", inst.Name()),
		zap.String("computation", inst.Parent().Name()),
		zap.String("constant", cst.Name()),
		zap.Int("elements", elements))
	if r.pass.metrics != nil {
		r.pass.metrics.Folded.Inc()
		r.pass.metrics.FoldedElements.Observe(float64(elements))
	}
	return true
}
