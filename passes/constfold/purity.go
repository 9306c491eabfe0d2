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
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/shapes"
)

// walker checks that instructions and the computations they call, at any
// depth, can be folded. Results are memoized per computation for the
// duration of a single run of the pass.
type walker struct {
	memo     map[*ir.Computation]Reason
	visiting map[*ir.Computation]bool
}

func newWalker() *walker {
	return &walker{
		memo:     make(map[*ir.Computation]Reason),
		visiting: make(map[*ir.Computation]bool),
	}
}

func checkShape(sh *shapes.Shape) Reason {
	if sh.ContainsToken() {
		return ReasonImpure
	}
	if !sh.HasLayout() {
		return ReasonNoLayout
	}
	return ""
}

// instruction returns the reason why an instruction cannot be folded,
// or an empty reason if nothing prevents folding.
func (w *walker) instruction(inst *ir.Instruction) Reason {
	if !isFoldableInstruction(inst) {
		return ReasonImpure
	}
	if r := checkShape(inst.Shape()); r != "" {
		return r
	}
	for _, op := range inst.Operands() {
		if r := checkShape(op.Shape()); r != "" {
			return r
		}
	}
	for _, called := range inst.CalledComputations() {
		if r := w.computation(called); r != "" {
			return r
		}
	}
	return ""
}

// computation returns the reason why a computation cannot be folded.
// Every instruction is checked, including the ones not used by the root.
// A computation calling itself, directly or not, is not foldable.
func (w *walker) computation(comp *ir.Computation) Reason {
	if r, ok := w.memo[comp]; ok {
		return r
	}
	if w.visiting[comp] {
		return ReasonImpure
	}
	w.visiting[comp] = true
	var r Reason
	for _, inst := range comp.Instructions() {
		if inst.Opcode() == ir.OpParameter {
			r = checkShape(inst.Shape())
		} else {
			r = w.instruction(inst)
		}
		if r != "" {
			break
		}
	}
	delete(w.visiting, comp)
	w.memo[comp] = r
	return r
}
