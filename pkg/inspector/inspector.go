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

package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/NVIDIA/baremetal-agent/pkg/errors"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
	"github.com/NVIDIA/baremetal-agent/pkg/failures"
)

// Collector names.
const (
	CollectorDefault       = "default"
	CollectorLogs          = "logs"
	CollectorExtraHardware = "extra-hardware"
)

// Collector adds its findings to data and records problems in f.
type Collector func(ctx context.Context, data map[string]any, f *failures.Failures)

// Option configures an Inspector.
type Option func(*Inspector)

// WithCollector registers or replaces a collector.
func WithCollector(name string, c Collector) Option {
	return func(i *Inspector) {
		i.collectors[name] = c
	}
}

// Inspector runs collectors against the local machine.
type Inspector struct {
	runner     executor.Runner
	params     map[string]string
	collectors map[string]Collector
}

// New creates an Inspector with the built-in collectors. params are the
// resolved boot parameters.
func New(runner executor.Runner, params map[string]string, opts ...Option) *Inspector {
	i := &Inspector{
		runner:     runner,
		params:     params,
		collectors: make(map[string]Collector),
	}
	i.collectors[CollectorDefault] = i.collectDefault
	i.collectors[CollectorLogs] = i.collectLogs
	i.collectors[CollectorExtraHardware] = func(ctx context.Context, data map[string]any, f *failures.Failures) {
		CollectExtraHardware(ctx, i.runner, i.params, data, f)
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Names returns the registered collector names, sorted.
func (i *Inspector) Names() []string {
	names := make([]string, 0, len(i.collectors))
	for name := range i.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inspect runs the named collectors in order. An empty list runs the default
// collector. Unknown names fail before anything runs. Collector failures
// are combined into a single error returned alongside the collected data.
func (i *Inspector) Inspect(ctx context.Context, names []string) (map[string]any, error) {
	if len(names) == 0 {
		names = []string{CollectorDefault}
	}

	var unknown []string
	for _, name := range names {
		if _, ok := i.collectors[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, errors.NewWithContext(errors.ErrCodeUnknownArgument,
			fmt.Sprintf("unknown inspection collectors: %s", strings.Join(unknown, ", ")),
			map[string]any{"available": i.Names()})
	}

	data := make(map[string]any)
	f := failures.New()
	for _, name := range names {
		slog.Debug("running inspection collector", "collector", name)
		before := f.Len()
		i.collectors[name](ctx, data, f)
		if f.Len() > before {
			slog.Warn("inspection collector reported failures",
				"collector", name,
				"failures", f.Messages()[before:],
			)
		}
	}

	if err := f.Err(); err != nil {
		return data, err
	}
	return data, nil
}
