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

package literal_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/literal"
	"github.com/gx-org/hlo/build/shapes"
)

func TestNew(t *testing.T) {
	if _, err := literal.New(shapes.Make(dtype.Float32, 2), []float32{1, 2, 3}); err == nil {
		t.Errorf("expected an error for a mismatch between values and dimensions")
	}
	if _, err := literal.New(shapes.Make(dtype.Int64, 2), []float32{1, 2}); err == nil {
		t.Errorf("expected an error for a mismatch between element types")
	}
	lit, err := literal.New(shapes.Make(dtype.Int32, 2, 3), []int32{0, 1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	got, err := literal.Get[int32](lit, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("got %d at index [1,2] but want 5", got)
	}
	if _, err := literal.Get[int32](lit, 2, 0); err == nil {
		t.Errorf("expected an out of bounds error")
	}
	if _, err := literal.Get[float32](lit, 0, 0); err == nil {
		t.Errorf("expected an element type error")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		x, y *literal.Literal
		want bool
	}{
		{
			x:    literal.Vector[float32](1, 2, 3),
			y:    literal.Vector[float32](1, 2, 3),
			want: true,
		},
		{
			x:    literal.Vector[float32](1, 2, 3),
			y:    literal.Vector[float32](1, 2, 4),
			want: false,
		},
		{
			x:    literal.Vector[float32](1, 2, 3),
			y:    literal.Vector[int32](1, 2, 3),
			want: false,
		},
		{
			x:    literal.Array([]int64{1, 2, 3, 4}, 2, 2),
			y:    literal.Vector[int64](1, 2, 3, 4),
			want: false,
		},
		{
			x:    literal.Tuple(literal.Scalar(true), literal.Scalar[int32](4)),
			y:    literal.Tuple(literal.Scalar(true), literal.Scalar[int32](4)),
			want: true,
		},
	}
	for i, test := range tests {
		got := test.x.Equal(test.y)
		if got != test.want {
			t.Errorf("test %d: %s == %s returned %v but want %v", i, test.x, test.y, got, test.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		lit  *literal.Literal
		want string
	}{
		{
			lit:  literal.Scalar[float32](42),
			want: "f32[] 42",
		},
		{
			lit:  literal.Vector[int32](1, 2, 3),
			want: "s32[3]{0} {1, 2, 3}",
		},
		{
			lit:  literal.Array([]int64{1, 2, 3, 4}, 2, 2),
			want: "s64[2,2]{1,0} { {1, 2}, {3, 4} }",
		},
	}
	for i, test := range tests {
		got := test.lit.String()
		if got != test.want {
			t.Errorf("test %d: got %q but want %q", i, got, test.want)
		}
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		lit    *literal.Literal
		target dtype.DataType
		want   *literal.Literal
	}{
		{
			lit:    literal.Scalar[float32](42),
			target: dtype.Int64,
			want:   literal.Scalar[int64](42),
		},
		{
			lit:    literal.Vector[float32](42, 19),
			target: dtype.Int64,
			want:   literal.Vector[int64](42, 19),
		},
		{
			lit:    literal.Scalar[int64](42),
			target: dtype.Float32,
			want:   literal.Scalar[float32](42),
		},
		{
			lit:    literal.Vector(true, false),
			target: dtype.Int32,
			want:   literal.Vector[int32](1, 0),
		},
		{
			lit:    literal.Vector[int32](0, 3),
			target: dtype.Bool,
			want:   literal.Vector(false, true),
		},
	}
	for i, test := range tests {
		got, err := test.lit.Convert(test.lit.Shape().WithDType(test.target))
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("test %d: got %s but want %s", i, got, test.want)
		}
	}
}

func TestGather(t *testing.T) {
	src := literal.Vector[int32](10, 20, 30)
	got, err := src.Gather(shapes.Make(dtype.Int32, 5), []int{2, -1, 0, 0, 1}, literal.Scalar[int32](-7))
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{30, -7, 10, 10, 20}
	if diff := cmp.Diff(want, literal.Data[int32](got)); diff != "" {
		t.Errorf("unexpected gather result (-want +got):\n%s", diff)
	}
	if _, err := src.Gather(shapes.Make(dtype.Int32, 1), []int{-1}, nil); err == nil {
		t.Errorf("expected an error when gathering a fill value without fill")
	}
}

func TestConcatenate(t *testing.T) {
	x := literal.Array([]int32{1, 2, 3, 4}, 2, 2)
	y := literal.Array([]int32{5, 6}, 2, 1)
	got, err := literal.Concatenate(shapes.Make(dtype.Int32, 2, 3), []*literal.Literal{x, y}, 2, []int{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	want := literal.Array([]int32{1, 2, 5, 3, 4, 6}, 2, 3)
	if !got.Equal(want) {
		t.Errorf("got %s but want %s", got, want)
	}
}

func TestRelabel(t *testing.T) {
	x := literal.Vector[float32](1, 2, 3, 4, 5, 6)
	got, err := x.Relabel(shapes.Make(dtype.Float32, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if val, _ := literal.Get[float32](got, 2, 1); val != 6 {
		t.Errorf("got %v at index [2,1] but want 6", val)
	}
	if _, err := x.Relabel(shapes.Make(dtype.Float32, 4)); err == nil {
		t.Errorf("expected an error when relabelling with a different number of elements")
	}
}
