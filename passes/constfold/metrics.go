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
	"github.com/prometheus/client_golang/prometheus"
)

// Reason why an instruction has not been folded.
type Reason string

const (
	// ReasonImpure is for instructions with side effects, either directly
	// or in a computation they call.
	ReasonImpure Reason = "impure"
	// ReasonNoLayout is for instructions with a shape without layout.
	ReasonNoLayout Reason = "no_layout"
	// ReasonNonConstantOperand is for instructions with an operand which is
	// neither a constant nor a broadcast of a constant.
	ReasonNonConstantOperand Reason = "non_constant_operand"
	// ReasonTooLarge is for instructions with too many elements to read or write.
	ReasonTooLarge Reason = "too_large"
	// ReasonBroadcastPolicy is for elementwise instructions of broadcast scalars.
	ReasonBroadcastPolicy Reason = "broadcast_policy"
	// ReasonEvaluationFailed is for instructions the evaluator could not compute.
	ReasonEvaluationFailed Reason = "evaluation_failed"
	// ReasonCompactForm is for broadcast and iota kept in their compact form.
	ReasonCompactForm Reason = "compact_form"
)

// Metrics of the constant folding pass.
type Metrics struct {
	Folded         prometheus.Counter
	FoldedElements prometheus.Histogram
	Rejected       *prometheus.CounterVec
}

// NewMetrics returns new metrics for the pass.
func NewMetrics() *Metrics {
	const (
		namespace = "hlo"
		subsystem = "constant_folding"
	)

	return &Metrics{
		Folded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "folded_total",
			Help:      "Number of instructions replaced by a constant",
		}),

		FoldedElements: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "folded_elements",
			Help:      "Histogram of the number of elements of folded values",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),

		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rejected_total",
			Help:      "Number of instructions considered for folding but left untouched",
		}, []string{"reason"}),
	}
}

// Collectors returns the metrics to register.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Folded,
		m.FoldedElements,
		m.Rejected,
	}
}
