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
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/ir"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

func TestWalkerMemoizesComputations(t *testing.T) {
	m := ir.NewModule("test")
	sh := shapes.Make(dtype.Float32, 10)
	fb := ir.NewBuilder("Fn")
	fb.Rng(sh, "rng_uniform", fb.Constant(literal.Scalar[float32](0)), fb.Constant(literal.Scalar[float32](1)))
	fn := m.AddEmbeddedComputation(fb.Build())
	b := ir.NewBuilder("entry")
	first := b.Call(sh, fn)
	second := b.Call(sh, fn)
	b.Tuple(first, second)
	m.AddEntryComputation(b.Build())

	w := newWalker()
	if got := w.instruction(first); got != ReasonImpure {
		t.Errorf("first call: got reason %q but want %q", got, ReasonImpure)
	}
	if got := w.memo[fn]; got != ReasonImpure {
		t.Errorf("got memoized reason %q but want %q", got, ReasonImpure)
	}
	if len(w.visiting) != 0 {
		t.Errorf("computations still marked as visiting: %d", len(w.visiting))
	}
	// A distinct cached reason shows the second caller does not walk Fn again.
	w.memo[fn] = ReasonNoLayout
	if got := w.instruction(second); got != ReasonNoLayout {
		t.Errorf("second call: got reason %q but want the cached %q", got, ReasonNoLayout)
	}
}
