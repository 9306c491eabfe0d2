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
	"github.com/gx-org/hlo/base/uname"
)

// Computation is a graph of instructions with a root computing its result.
//
// The computation owns its instructions in an arena: instructions are appended
// and never moved, so that references held while the graph is being rewritten
// stay valid.
type Computation struct {
	name         string
	instructions []*Instruction
	params       []*Instruction
	root         *Instruction
	module       *Module
	fusion       bool
	names        *uname.Unique
}

func newComputation(name string) *Computation {
	return &Computation{
		name:  name,
		names: uname.New(),
	}
}

// Name of the computation.
func (c *Computation) Name() string {
	return c.name
}

// Module owning the computation. It is nil until the computation is added to a module.
func (c *Computation) Module() *Module {
	return c.module
}

// Instructions returns all the instructions of the computation in definition order,
// including instructions that are not used anymore.
func (c *Computation) Instructions() []*Instruction {
	return append([]*Instruction{}, c.instructions...)
}

// NumInstructions returns the number of instructions in the arena.
func (c *Computation) NumInstructions() int {
	return len(c.instructions)
}

// Instruction returns an instruction given its ID.
func (c *Computation) Instruction(id int) *Instruction {
	if id < 0 || id >= len(c.instructions) {
		return nil
	}
	return c.instructions[id]
}

// Parameters returns the parameters of the computation, ordered by parameter number.
func (c *Computation) Parameters() []*Instruction {
	return c.params
}

// Root returns the instruction computing the result of the computation.
func (c *Computation) Root() *Instruction {
	return c.root
}

// IsFusion returns true if the computation is called by a fusion instruction.
func (c *Computation) IsFusion() bool {
	return c.fusion
}

// SetRoot sets the root instruction of the computation.
func (c *Computation) SetRoot(inst *Instruction) error {
	if inst.parent != c {
		return errors.Errorf("cannot set %s as the root of %s: instruction owned by another computation", inst.name, c.name)
	}
	c.root = inst
	return nil
}

// AddInstruction appends an instruction to the computation.
// The instruction becomes a user of its operands.
func (c *Computation) AddInstruction(inst *Instruction) *Instruction {
	return c.addInstructionWithName(inst, inst.opcode.String())
}

func (c *Computation) addInstructionWithName(inst *Instruction, name string) *Instruction {
	inst.id = len(c.instructions)
	inst.parent = c
	inst.name = c.names.Name(name)
	c.instructions = append(c.instructions, inst)
	for _, op := range inst.operands {
		op.addUser(inst)
	}
	if inst.opcode == OpParameter {
		c.addParameter(inst)
	}
	for _, called := range inst.called {
		if inst.opcode == OpFusion {
			called.fusion = true
		}
	}
	return inst
}

func (c *Computation) addParameter(inst *Instruction) {
	num := inst.attrs.ParameterNumber
	for len(c.params) <= num {
		c.params = append(c.params, nil)
	}
	c.params[num] = inst
}

// ReplaceAllUsesWith redirects all the users of old to use instead by.
// If old is the root of the computation, by becomes the root.
// The old instruction is not removed from the computation.
func (c *Computation) ReplaceAllUsesWith(old, by *Instruction) error {
	if old.parent != c || by.parent != c {
		return errors.Errorf("cannot replace %s by %s: instructions not owned by %s", old.name, by.name, c.name)
	}
	if !old.shape.Compatible(by.shape) {
		return errors.Errorf("cannot replace %s of shape %s by %s of shape %s", old.name, old.shape.String(), by.name, by.shape.String())
	}
	if old == by {
		return nil
	}
	for _, user := range old.users {
		for i, op := range user.operands {
			if op == old {
				user.operands[i] = by
			}
		}
		by.addUser(user)
	}
	old.users = nil
	if c.root == old {
		c.root = by
	}
	return nil
}

// PostOrder returns the instructions reachable from the root such that the
// operands of an instruction are always listed before the instruction.
// Instructions that do not contribute to the root are not listed.
func (c *Computation) PostOrder() []*Instruction {
	if c.root == nil {
		return nil
	}
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[*Instruction]int)
	var order []*Instruction
	type frame struct {
		inst *Instruction
		next int
	}
	stack := []frame{{inst: c.root}}
	state[c.root] = visiting
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.inst.operands) {
			op := top.inst.operands[top.next]
			top.next++
			if state[op] == unvisited {
				state[op] = visiting
				stack = append(stack, frame{inst: op})
			}
			continue
		}
		state[top.inst] = visited
		order = append(order, top.inst)
		stack = stack[:len(stack)-1]
	}
	return order
}

// CalledComputations returns the computations called by the instructions of
// this computation, in order of first appearance.
func (c *Computation) CalledComputations() []*Computation {
	seen := make(map[*Computation]bool)
	var called []*Computation
	for _, inst := range c.instructions {
		for _, comp := range inst.called {
			if seen[comp] {
				continue
			}
			seen[comp] = true
			called = append(called, comp)
		}
	}
	return called
}
