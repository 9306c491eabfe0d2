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

package literal

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/hlo/build/shapes"
)

type number interface {
	dtype.Float | dtype.IntegerType
}

// Convert returns a new literal with the values converted to another element type.
// The target shape must have the same dimensions as the literal.
func (l *Literal) Convert(sh *shapes.Shape) (*Literal, error) {
	if !l.shape.IsArray() || !sh.IsArray() || sh.ElementsIn() != l.Size() {
		return nil, errors.Errorf("cannot convert %s to %s", l.shape.String(), sh.String())
	}
	var data any
	var err error
	switch src := l.data.(type) {
	case []bool:
		ints := make([]int32, len(src))
		for i, b := range src {
			if b {
				ints[i] = 1
			}
		}
		data, err = convertFrom(ints, sh.DType())
	case []dtype.Bfloat16T:
		floats := make([]float32, len(src))
		for i, v := range src {
			floats[i] = v.Float32()
		}
		data, err = convertFrom(floats, sh.DType())
	case []float32:
		data, err = convertFrom(src, sh.DType())
	case []float64:
		data, err = convertFrom(src, sh.DType())
	case []int32:
		data, err = convertFrom(src, sh.DType())
	case []int64:
		data, err = convertFrom(src, sh.DType())
	case []uint32:
		data, err = convertFrom(src, sh.DType())
	case []uint64:
		data, err = convertFrom(src, sh.DType())
	default:
		return nil, errors.Errorf("cannot convert values of type %T", l.data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot convert %s to %s", l.shape.String(), sh.String())
	}
	return FromRaw(sh, data)
}

func convertFrom[S number](src []S, target dtype.DataType) (any, error) {
	switch target {
	case dtype.Bool:
		out := make([]bool, len(src))
		for i, v := range src {
			out[i] = v != 0
		}
		return out, nil
	case dtype.Bfloat16:
		out := make([]dtype.Bfloat16T, len(src))
		for i, v := range src {
			out[i] = dtype.BFloat16FromFloat64(float64(v))
		}
		return out, nil
	case dtype.Float32:
		return convertSlice[S, float32](src), nil
	case dtype.Float64:
		return convertSlice[S, float64](src), nil
	case dtype.Int32:
		return convertSlice[S, int32](src), nil
	case dtype.Int64:
		return convertSlice[S, int64](src), nil
	case dtype.Uint32:
		return convertSlice[S, uint32](src), nil
	case dtype.Uint64:
		return convertSlice[S, uint64](src), nil
	}
	return nil, errors.Errorf("element type %s not supported", target.String())
}

func convertSlice[S, D number](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}
