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
	"fmt"
	"strings"
)

func joinInts(vals []int, sep string) string {
	ss := make([]string, len(vals))
	for i, v := range vals {
		ss[i] = fmt.Sprint(v)
	}
	return strings.Join(ss, sep)
}

func (inst *Instruction) attributesString() string {
	var attrs []string
	a := &inst.attrs
	switch inst.opcode {
	case OpBroadcast, OpReduce, OpTranspose, OpConcatenate, OpSort:
		attrs = append(attrs, "dimensions={"+joinInts(a.Dimensions, ",")+"}")
	case OpIota:
		if len(a.Dimensions) > 0 {
			attrs = append(attrs, fmt.Sprintf("iota_dimension=%d", a.Dimensions[0]))
		}
	case OpSlice:
		if a.Slice != nil {
			dims := make([]string, len(a.Slice.Starts))
			for i := range dims {
				dims[i] = fmt.Sprintf("[%d:%d:%d]", a.Slice.Starts[i], a.Slice.Limits[i], a.Slice.Strides[i])
			}
			attrs = append(attrs, "slice={"+strings.Join(dims, ", ")+"}")
		}
	case OpPad:
		dims := make([]string, len(a.Padding))
		for i, p := range a.Padding {
			dims[i] = fmt.Sprintf("%d_%d", p.Low, p.High)
			if p.Interior != 0 {
				dims[i] += fmt.Sprintf("_%d", p.Interior)
			}
		}
		attrs = append(attrs, "padding="+strings.Join(dims, "x"))
	case OpReduceWindow:
		sizes := make([]int, len(a.Window))
		strides := make([]int, len(a.Window))
		for i, w := range a.Window {
			sizes[i], strides[i] = w.Size, w.Stride
		}
		attrs = append(attrs, fmt.Sprintf("window={size=%s stride=%s}", joinInts(sizes, "x"), joinInts(strides, "x")))
	case OpCompare:
		attrs = append(attrs, "direction="+a.Direction.String())
	case OpGetTupleElement:
		attrs = append(attrs, fmt.Sprintf("index=%d", a.TupleIndex))
	case OpCustomCall:
		attrs = append(attrs, fmt.Sprintf("custom_call_target=%q", a.CustomCallTarget))
		if a.HasSideEffect {
			attrs = append(attrs, "custom_call_has_side_effect=true")
		}
	case OpFusion:
		if a.FusionKind != "" {
			attrs = append(attrs, "kind="+a.FusionKind)
		}
	case OpRng:
		if a.Distribution != "" {
			attrs = append(attrs, "distribution="+a.Distribution)
		}
	}
	if len(inst.called) > 0 {
		names := make([]string, len(inst.called))
		for i, c := range inst.called {
			names[i] = c.name
		}
		key := "to_apply"
		switch inst.opcode {
		case OpFusion:
			key = "calls"
		case OpWhile:
			key = "condition,body"
		case OpConditional:
			key = "branch_computations"
		}
		attrs = append(attrs, key+"="+strings.Join(names, ","))
	}
	if len(attrs) == 0 {
		return ""
	}
	return ", " + strings.Join(attrs, ", ")
}

// String representation of the instruction, for example:
//
//	add.1 = f32[4]{0} add(x, y)
func (inst *Instruction) String() string {
	var args string
	switch inst.opcode {
	case OpConstant:
		args = inst.literal.ValuesString()
	case OpParameter:
		args = fmt.Sprint(inst.attrs.ParameterNumber)
	default:
		names := make([]string, len(inst.operands))
		for i, op := range inst.operands {
			names[i] = op.name
		}
		args = strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s = %s %s(%s)%s", inst.name, inst.shape.String(), inst.opcode.String(), args, inst.attributesString())
}

// String representation of the computation with all its instructions in definition order.
func (c *Computation) String() string {
	var b strings.Builder
	b.WriteString(c.name + " {\n")
	for _, inst := range c.instructions {
		b.WriteString("  ")
		if inst == c.root {
			b.WriteString("ROOT ")
		}
		b.WriteString(inst.String())
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// String representation of the module.
func (m *Module) String() string {
	var b strings.Builder
	b.WriteString("HloModule " + m.name + "\n")
	for _, c := range m.computations {
		b.WriteString("\n")
		if c == m.entry {
			b.WriteString("ENTRY ")
		}
		b.WriteString(c.String())
		b.WriteString("\n")
	}
	return b.String()
}
