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

// Fold replaces an instruction by a constant holding a literal.
// The constant is added to the computation of the instruction with the same
// shape and all the users of the instruction, including the root of the computation,
// are redirected to it. The instruction itself is not removed.
func Fold(inst *ir.Instruction, lit *literal.Literal) (*ir.Instruction, error) {
	comp := inst.Parent()
	if comp == nil {
		return nil, errors.Errorf("cannot fold %s: instruction not in a computation", inst.Name())
	}
	cst, err := ir.NewConstantOfShape(inst.Shape(), lit)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot fold %s", inst.Name())
	}
	comp.AddInstruction(cst)
	if err := comp.ReplaceAllUsesWith(inst, cst); err != nil {
		return nil, errors.Wrapf(err, "cannot fold %s", inst.Name())
	}
	return cst, nil
}
