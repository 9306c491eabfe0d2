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
	"github.com/gx-org/hlo/build/literal"
	"go.uber.org/zap"
)

const (
	// DefaultMaxOutputElements is the default maximum number of elements
	// of a folded value. A bf16[160,5,5,512] reduce-window folds, a
	// f32[2048,2048,128] pad does not.
	DefaultMaxOutputElements = 45_000_000

	// DefaultMaxOperandElements is the default maximum number of elements
	// read from the operands of a folded instruction.
	DefaultMaxOperandElements = 45_000_000
)

type (
	// Evaluator computes the value of an instruction from the values of its operands.
	Evaluator interface {
		Evaluate(inst *ir.Instruction, operands []*literal.Literal) (*literal.Literal, error)
	}

	// Option configures the pass.
	Option func(*Pass)
)

// WithMaxOutputElements sets the maximum number of elements of a folded value.
func WithMaxOutputElements(n int) Option {
	return func(p *Pass) {
		p.maxOutputElements = n
	}
}

// WithMaxOperandElements sets the maximum number of elements read from the
// operands of a folded instruction. Broadcast operands count at their broadcast size.
func WithMaxOperandElements(n int) Option {
	return func(p *Pass) {
		p.maxOperandElements = n
	}
}

// WithEvaluator sets the evaluator computing folded values.
func WithEvaluator(ev Evaluator) Option {
	return func(p *Pass) {
		p.evaluator = ev
	}
}

// WithLogger sets the logger of the pass.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pass) {
		p.log = log
	}
}

// WithMetrics sets the metrics updated by the pass.
func WithMetrics(m *Metrics) Option {
	return func(p *Pass) {
		p.metrics = m
	}
}
