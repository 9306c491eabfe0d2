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

import "fmt"

// Opcode is the kind of operation performed by an instruction.
type Opcode int

// List of all opcodes.
const (
	OpInvalid Opcode = iota

	// Leaves.
	OpConstant
	OpParameter
	OpIota

	// Data movement.
	OpConvert
	OpBitcast
	OpReshape
	OpBroadcast
	OpSlice
	OpTranspose
	OpConcatenate
	OpPad
	OpTuple
	OpGetTupleElement

	// Reductions and ops calling a computation per element.
	OpReduce
	OpReduceWindow
	OpMap
	OpSort

	// Elementwise unary.
	OpNegate
	OpAbs
	OpSign
	OpExp
	OpLog
	OpSqrt
	OpNot

	// Elementwise binary.
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpMaximum
	OpMinimum
	OpPower
	OpAnd
	OpOr
	OpXor
	OpCompare

	// Elementwise ternary.
	OpSelect

	// Linear algebra and signal processing.
	OpDot
	OpFft

	// Calls.
	OpCall
	OpFusion
	OpCustomCall

	// Control flow.
	OpWhile
	OpConditional

	// Random numbers.
	OpRng

	// Tokens, host transfers and synchronization.
	OpAfterAll
	OpSend
	OpSendDone
	OpRecv
	OpRecvDone
	OpInfeed
	OpOutfeed

	// Collective communications.
	OpAllReduce
	OpAllGather
	OpAllToAll
	OpCollectivePermute
	OpReduceScatter

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	OpInvalid:           "invalid",
	OpConstant:          "constant",
	OpParameter:         "parameter",
	OpIota:              "iota",
	OpConvert:           "convert",
	OpBitcast:           "bitcast",
	OpReshape:           "reshape",
	OpBroadcast:         "broadcast",
	OpSlice:             "slice",
	OpTranspose:         "transpose",
	OpConcatenate:       "concatenate",
	OpPad:               "pad",
	OpTuple:             "tuple",
	OpGetTupleElement:   "get-tuple-element",
	OpReduce:            "reduce",
	OpReduceWindow:      "reduce-window",
	OpMap:               "map",
	OpSort:              "sort",
	OpNegate:            "negate",
	OpAbs:               "abs",
	OpSign:              "sign",
	OpExp:               "exponential",
	OpLog:               "log",
	OpSqrt:              "sqrt",
	OpNot:               "not",
	OpAdd:               "add",
	OpSubtract:          "subtract",
	OpMultiply:          "multiply",
	OpDivide:            "divide",
	OpRemainder:         "remainder",
	OpMaximum:           "maximum",
	OpMinimum:           "minimum",
	OpPower:             "power",
	OpAnd:               "and",
	OpOr:                "or",
	OpXor:               "xor",
	OpCompare:           "compare",
	OpSelect:            "select",
	OpDot:               "dot",
	OpFft:               "fft",
	OpCall:              "call",
	OpFusion:            "fusion",
	OpCustomCall:        "custom-call",
	OpWhile:             "while",
	OpConditional:       "conditional",
	OpRng:               "rng",
	OpAfterAll:          "after-all",
	OpSend:              "send",
	OpSendDone:          "send-done",
	OpRecv:              "recv",
	OpRecvDone:          "recv-done",
	OpInfeed:            "infeed",
	OpOutfeed:           "outfeed",
	OpAllReduce:         "all-reduce",
	OpAllGather:         "all-gather",
	OpAllToAll:          "all-to-all",
	OpCollectivePermute: "collective-permute",
	OpReduceScatter:     "reduce-scatter",
}

// String returns the textual name of the opcode.
func (op Opcode) String() string {
	if op < 0 || op >= numOpcodes {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return opcodeNames[op]
}

// NumOpcodes returns the number of opcodes, including OpInvalid.
// Opcodes can be used as indices of arrays of this size.
func NumOpcodes() int {
	return int(numOpcodes)
}

// IsElementwiseUnary returns true for opcodes applying a function to each element of one operand.
func (op Opcode) IsElementwiseUnary() bool {
	return op >= OpNegate && op <= OpNot
}

// IsElementwiseBinary returns true for opcodes combining two operands element by element.
func (op Opcode) IsElementwiseBinary() bool {
	return op >= OpAdd && op <= OpCompare
}

// IsElementwise returns true for opcodes where each output element only
// depends on the operand elements at the same index.
func (op Opcode) IsElementwise() bool {
	return op.IsElementwiseUnary() || op.IsElementwiseBinary() || op == OpSelect || op == OpConvert || op == OpMap
}

// ComparisonDirection of a compare instruction.
type ComparisonDirection int

// Comparison directions.
const (
	CmpEQ ComparisonDirection = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

func (d ComparisonDirection) String() string {
	switch d {
	case CmpEQ:
		return "EQ"
	case CmpNE:
		return "NE"
	case CmpLT:
		return "LT"
	case CmpLE:
		return "LE"
	case CmpGT:
		return "GT"
	case CmpGE:
		return "GE"
	}
	return fmt.Sprintf("ComparisonDirection(%d)", int(d))
}
