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

// Package pass defines graph transformations on modules and how to run them.
package pass

import (
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/build/ir"
)

// DefaultMaxIterations is the default number of iterations before Fix gives up.
const DefaultMaxIterations = 25

// Pass transforms a module in place.
type Pass interface {
	// Name of the pass.
	Name() string

	// Run the pass on a module and returns true if the module has changed.
	Run(*ir.Module) (bool, error)
}

// Pipeline runs a sequence of passes.
type Pipeline struct {
	name   string
	passes []Pass
}

var _ Pass = (*Pipeline)(nil)

// NewPipeline returns a pipeline running passes in order.
func NewPipeline(name string, passes ...Pass) *Pipeline {
	return &Pipeline{name: name, passes: passes}
}

// Name of the pipeline.
func (p *Pipeline) Name() string {
	return p.name
}

// Run all the passes once. It returns true if any pass changed the module.
func (p *Pipeline) Run(m *ir.Module) (bool, error) {
	changed := false
	for _, ps := range p.passes {
		c, err := ps.Run(m)
		if err != nil {
			return changed, errors.Wrapf(err, "pipeline %s: pass %s", p.name, ps.Name())
		}
		changed = changed || c
	}
	return changed, nil
}

// Fix runs a pass until it does not change the module anymore.
// It returns the number of iterations that changed the module and
// an error if the module is still changing after maxIterations runs.
func Fix(ps Pass, m *ir.Module, maxIterations int) (int, error) {
	for i := 0; i < maxIterations; i++ {
		changed, err := ps.Run(m)
		if err != nil {
			return i, err
		}
		if !changed {
			return i, nil
		}
	}
	return maxIterations, errors.Errorf("pass %s did not reach a fixed point after %d iterations", ps.Name(), maxIterations)
}
