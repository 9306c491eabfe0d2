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
	"go.uber.org/multierr"
)

// Verify checks the structural invariants of a module and returns all the
// violations found. Shapes are not checked against the opcodes.
func Verify(m *Module) error {
	var errs error
	if m.entry == nil {
		errs = multierr.Append(errs, errors.Errorf("module %s has no entry computation", m.name))
	}
	if _, err := m.PostOrder(); err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, c := range m.computations {
		errs = multierr.Append(errs, verifyComputation(m, c))
	}
	return errs
}

func verifyComputation(m *Module, c *Computation) error {
	var errs error
	if c.root == nil {
		errs = multierr.Append(errs, errors.Errorf("computation %s has no root", c.name))
	} else if c.root.parent != c {
		errs = multierr.Append(errs, errors.Errorf("root %s of computation %s is owned by another computation", c.root.name, c.name))
	}
	for i, param := range c.params {
		if param == nil {
			errs = multierr.Append(errs, errors.Errorf("computation %s: parameter %d missing", c.name, i))
		}
	}
	errs = multierr.Append(errs, verifyOperandGraph(c))
	for _, inst := range c.instructions {
		for i, op := range inst.operands {
			if op.parent != c {
				errs = multierr.Append(errs, errors.Errorf("%s: operand %d (%s) is owned by another computation", inst.name, i, op.name))
			}
		}
		for _, called := range inst.called {
			if called.module != m {
				errs = multierr.Append(errs, errors.Errorf("%s: called computation %s is not in module %s", inst.name, called.name, m.name))
			}
		}
		switch inst.opcode {
		case OpCall, OpFusion:
			if len(inst.called) != 1 {
				errs = multierr.Append(errs, errors.Errorf("%s: %s must call exactly one computation", inst.name, inst.opcode))
				continue
			}
			if got, want := len(inst.operands), len(inst.called[0].params); got != want {
				errs = multierr.Append(errs, errors.Errorf("%s: %d operands bound to computation %s with %d parameters", inst.name, got, inst.called[0].name, want))
			}
		case OpConstant:
			if inst.literal == nil {
				errs = multierr.Append(errs, errors.Errorf("%s: constant without a literal", inst.name))
			} else if !inst.literal.Shape().Compatible(inst.shape) {
				errs = multierr.Append(errs, errors.Errorf("%s: literal of shape %s in a constant of shape %s", inst.name, inst.literal.Shape().String(), inst.shape.String()))
			}
		}
	}
	return errs
}

// verifyOperandGraph checks that the operands of the instructions of a
// computation do not form a cycle. The arena order is not checked:
// instructions appended later can be used by earlier ones.
func verifyOperandGraph(c *Computation) error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[*Instruction]int)
	var visit func(*Instruction) error
	visit = func(inst *Instruction) error {
		switch state[inst] {
		case visited:
			return nil
		case visiting:
			return errors.Errorf("computation %s: %s is its own transitive operand", c.name, inst.name)
		}
		state[inst] = visiting
		for _, op := range inst.operands {
			if op.parent != c {
				continue
			}
			if err := visit(op); err != nil {
				return err
			}
		}
		state[inst] = visited
		return nil
	}
	for _, inst := range c.instructions {
		if err := visit(inst); err != nil {
			return err
		}
	}
	return nil
}
