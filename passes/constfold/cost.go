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

// worthFolding rejects instructions writing more than maxOutputElements elements
// (45,000,000 by default) or reading more than maxOperandElements elements
// from their operands, broadcasts counted at their output size.
// The element size in bytes is ignored.
func (p *Pass) worthFolding(inst *ir.Instruction) Reason {
	if inst.Shape().ElementsIn() > p.maxOutputElements {
		return ReasonTooLarge
	}
	read := 0
	for _, op := range inst.Operands() {
		read += op.Shape().ElementsIn()
	}
	if read > p.maxOperandElements {
		return ReasonTooLarge
	}
	return ""
}
