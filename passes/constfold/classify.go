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

// everFoldable is indexed by opcode.
var everFoldable = func() []bool {
	table := make([]bool, ir.NumOpcodes())
	for _, op := range []ir.Opcode{
		ir.OpConstant,
		ir.OpIota,
		ir.OpConvert,
		ir.OpBitcast,
		ir.OpReshape,
		ir.OpBroadcast,
		ir.OpSlice,
		ir.OpTranspose,
		ir.OpConcatenate,
		ir.OpPad,
		ir.OpTuple,
		ir.OpGetTupleElement,
		ir.OpReduce,
		ir.OpReduceWindow,
		ir.OpMap,
		ir.OpSort,
		ir.OpSelect,
		ir.OpDot,
		ir.OpCall,
		ir.OpFusion,
		ir.OpCustomCall,
	} {
		table[op] = true
	}
	for op := ir.Opcode(0); int(op) < len(table); op++ {
		if op.IsElementwiseUnary() || op.IsElementwiseBinary() {
			table[op] = true
		}
	}
	return table
}()

// IsEverFoldable returns true if instructions of a given opcode can be folded
// when their operands are constant. Random number generators, instructions
// ordering side effects with tokens, collectives, loops and branches are never folded.
// Parameters are bound by the caller of a computation and are not folded either.
func IsEverFoldable(op ir.Opcode) bool {
	if op < 0 || int(op) >= len(everFoldable) {
		return false
	}
	return everFoldable[op]
}

func isFoldableInstruction(inst *ir.Instruction) bool {
	return IsEverFoldable(inst.Opcode()) && !inst.HasSideEffect()
}
