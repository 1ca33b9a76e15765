// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonExitCode = "exit_code"
	reasonSpawn    = "spawn"
	reasonCanceled = "canceled"
)

var (
	execAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmagent_exec_attempts_total",
			Help: "Total number of external command attempts",
		},
		[]string{"command"},
	)

	execFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmagent_exec_failures_total",
			Help: "Total number of failed external command attempts",
		},
		[]string{"command", "reason"},
	)

	execDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bmagent_exec_duration_seconds",
			Help:    "External command attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)
