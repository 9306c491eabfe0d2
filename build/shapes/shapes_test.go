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

package shapes_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/shapes"
)

func TestString(t *testing.T) {
	tests := []struct {
		shape *shapes.Shape
		want  string
	}{
		{
			shape: shapes.Make(dtype.Float32),
			want:  "f32[]",
		},
		{
			shape: shapes.Make(dtype.Int64, 2, 3),
			want:  "s64[2,3]{1,0}",
		},
		{
			shape: shapes.MakeNoLayout(dtype.Bfloat16, 4),
			want:  "bf16[4]",
		},
		{
			shape: shapes.MakeTuple(shapes.Make(dtype.Bool), shapes.MakeToken()),
			want:  "(pred[], token[])",
		},
	}
	for i, test := range tests {
		got := test.shape.String()
		if got != test.want {
			t.Errorf("test %d: got %q but want %q", i, got, test.want)
		}
	}
}

func TestElementsIn(t *testing.T) {
	tests := []struct {
		shape *shapes.Shape
		want  int
	}{
		{
			shape: shapes.Make(dtype.Float32),
			want:  1,
		},
		{
			shape: shapes.Make(dtype.Float32, 2048, 2048, 128),
			want:  536870912,
		},
		{
			shape: shapes.Make(dtype.Float32, 3, 0),
			want:  0,
		},
		{
			shape: shapes.MakeTuple(shapes.Make(dtype.Int32, 4), shapes.Make(dtype.Int32, 2, 2), shapes.MakeToken()),
			want:  8,
		},
	}
	for i, test := range tests {
		got := test.shape.ElementsIn()
		if got != test.want {
			t.Errorf("test %d: %s has %d elements but want %d", i, test.shape, got, test.want)
		}
	}
}

func TestLayout(t *testing.T) {
	sh := shapes.Make(dtype.Float32, 2, 3, 4)
	if !sh.HasLayout() || !sh.HasDefaultLayout() {
		t.Errorf("%s: expected a default layout", sh)
	}
	if got, want := sh.Layout.MinorToMajor, []int{2, 1, 0}; !cmp.Equal(got, want) {
		t.Errorf("incorrect default layout: got %v but want %v", got, want)
	}
	cleared := sh.Clone()
	cleared.ClearLayout()
	if cleared.HasLayout() {
		t.Errorf("%s: layout not cleared", cleared)
	}
	if sh.Equal(cleared) {
		t.Errorf("%s and %s should not be equal", sh, cleared)
	}
	if !sh.Compatible(cleared) {
		t.Errorf("%s and %s should be compatible", sh, cleared)
	}
	tuple := shapes.MakeTuple(sh, cleared)
	if tuple.HasLayout() {
		t.Errorf("%s: tuple with a layout-unassigned element reports a layout", tuple)
	}
	transposed := shapes.Make(dtype.Float32, 2, 3)
	transposed.Layout = &shapes.Layout{MinorToMajor: []int{0, 1}}
	if transposed.HasDefaultLayout() {
		t.Errorf("%s: layout reported as the default layout", transposed)
	}
}

func TestContainsToken(t *testing.T) {
	if shapes.Make(dtype.Float32, 2).ContainsToken() {
		t.Errorf("array shape contains a token")
	}
	nested := shapes.MakeTuple(shapes.Make(dtype.Float32), shapes.MakeTuple(shapes.MakeToken()))
	if !nested.ContainsToken() {
		t.Errorf("%s: token not found", nested)
	}
}

func TestStrides(t *testing.T) {
	got := shapes.Strides([]int{2, 3, 4})
	want := []int{12, 4, 1}
	if !cmp.Equal(got, want) {
		t.Errorf("got strides %v but want %v", got, want)
	}
}
