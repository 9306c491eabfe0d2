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

// Package uname provides unique names for the instructions and
// computations of a module.
package uname

import (
	"fmt"
	"strings"
)

// Unique generates unique names.
type Unique struct {
	taken map[string]bool
	next  map[string]int
}

// New name generator.
func New() *Unique {
	return &Unique{
		taken: make(map[string]bool),
		next:  make(map[string]int),
	}
}

// Register marks a name as used.
func (n *Unique) Register(name string) {
	n.taken[name] = true
}

// Name returns a unique name given a desired base name.
// If the base name is available, it is returned directly. Else, a numerical
// suffix separated by a dot is appended (add, add.1, add.2, ...).
func (n *Unique) Name(root string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "v"
	}
	if !n.taken[root] {
		n.taken[root] = true
		return root
	}
	for {
		n.next[root]++
		name := fmt.Sprintf("%s.%d", root, n.next[root])
		if !n.taken[name] {
			n.taken[name] = true
			return name
		}
	}
}
