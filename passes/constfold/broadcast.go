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

import "github.com/gx-org/hlo/build/ir"

// isScalarBroadcast returns true if an instruction broadcasts a scalar constant.
func isScalarBroadcast(inst *ir.Instruction) bool {
	if inst.Opcode() != ir.OpBroadcast || len(inst.Operands()) != 1 {
		return false
	}
	op := inst.Operand(0)
	return op.IsConstant() && op.Shape().IsArray() && op.Shape().IsScalar()
}

// isBroadcastOfConstant returns true if an instruction broadcasts a constant of any rank.
func isBroadcastOfConstant(inst *ir.Instruction) bool {
	return inst.Opcode() == ir.OpBroadcast && len(inst.Operands()) == 1 && inst.Operand(0).IsConstant()
}

// keepsScalarBroadcasts returns true if inst is an elementwise operation
// of broadcast scalar constants only, in which case the instruction is left
// in its compact form. One materialized operand is enough to fold the instruction.
func keepsScalarBroadcasts(inst *ir.Instruction) bool {
	if !inst.Opcode().IsElementwise() || len(inst.Operands()) == 0 {
		return false
	}
	for _, op := range inst.Operands() {
		if !isScalarBroadcast(op) {
			return false
		}
	}
	return true
}
