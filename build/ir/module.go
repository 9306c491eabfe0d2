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

// Package ir defines the graph representation of tensor programs:
// instructions grouped into computations, grouped into a module.
package ir

import (
	"github.com/pkg/errors"
	"github.com/gx-org/hlo/base/uname"
)

// Module is a program: a set of computations and an entry computation.
type Module struct {
	name         string
	computations []*Computation
	entry        *Computation
	names        *uname.Unique
}

// NewModule returns a new empty module.
func NewModule(name string) *Module {
	return &Module{name: name, names: uname.New()}
}

// Name of the module.
func (m *Module) Name() string {
	return m.name
}

// Entry returns the entry computation of the module.
func (m *Module) Entry() *Computation {
	return m.entry
}

// Computations returns all the computations of the module in the order in which they have been added.
func (m *Module) Computations() []*Computation {
	return append([]*Computation{}, m.computations...)
}

// Computation returns a computation given its name, or nil if no such computation exists.
func (m *Module) Computation(name string) *Computation {
	for _, c := range m.computations {
		if c.name == name {
			return c
		}
	}
	return nil
}

// AddEmbeddedComputation adds a computation called by other computations of the module.
// The name of the computation is made unique within the module.
func (m *Module) AddEmbeddedComputation(c *Computation) *Computation {
	c.module = m
	c.name = m.names.Name(c.name)
	m.computations = append(m.computations, c)
	return c
}

// AddEntryComputation adds a computation and marks it as the entry of the module.
func (m *Module) AddEntryComputation(c *Computation) *Computation {
	m.AddEmbeddedComputation(c)
	m.entry = c
	return c
}

// PostOrder returns the computations of the module such that callees are
// always listed before their callers. It returns an error if the call graph
// has a cycle.
func (m *Module) PostOrder() ([]*Computation, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[*Computation]int)
	var order []*Computation
	var visit func(*Computation) error
	visit = func(c *Computation) error {
		switch state[c] {
		case visited:
			return nil
		case visiting:
			return errors.Errorf("cycle in the call graph of module %s: computation %s calls itself", m.name, c.name)
		}
		state[c] = visiting
		for _, called := range c.CalledComputations() {
			if err := visit(called); err != nil {
				return err
			}
		}
		state[c] = visited
		order = append(order, c)
		return nil
	}
	for _, c := range m.computations {
		if err := visit(c); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// NonFusionComputations returns, in post-order, the computations not called by a fusion instruction.
func (m *Module) NonFusionComputations() ([]*Computation, error) {
	all, err := m.PostOrder()
	if err != nil {
		return nil, err
	}
	var comps []*Computation
	for _, c := range all {
		if c.fusion {
			continue
		}
		comps = append(comps, c)
	}
	return comps, nil
}
