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

package agentparams

import (
	"context"
	"log/slog"
	"maps"

	"github.com/NVIDIA/baremetal-agent/pkg/cmdline"
	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

const (
	// BootMethodKey names the parameter selecting where configuration lives.
	BootMethodKey = "boot_method"

	// BootMethodVMedia means configuration is delivered on virtual media.
	BootMethodVMedia = "vmedia"
)

// Source supplies parameters from outside the kernel command line.
type Source interface {
	Get(ctx context.Context) (map[string]string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCmdlinePath sets the kernel parameter file.
// Default is /proc/cmdline.
func WithCmdlinePath(path string) Option {
	return func(r *Resolver) {
		r.cmdlinePath = path
	}
}

// WithKernelReader sets the function reading kernel parameters.
func WithKernelReader(fn func(path string) map[string]string) Option {
	return func(r *Resolver) {
		r.readKernel = fn
	}
}

// WithVirtualMedia sets the source consulted when boot_method=vmedia.
func WithVirtualMedia(src Source) Option {
	return func(r *Resolver) {
		r.vmedia = src
	}
}

// Resolver returns the agent parameters, discovering them on first use.
type Resolver struct {
	cache       *Cache
	cmdlinePath string
	readKernel  func(path string) map[string]string
	vmedia      Source
}

// NewResolver creates a Resolver backed by cache.
func NewResolver(cache *Cache, opts ...Option) *Resolver {
	r := &Resolver{
		cache:       cache,
		cmdlinePath: cmdline.KernelCmdlinePath,
		readKernel:  cmdline.NewKernelParser().ReadParams,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	return r
}

// Get returns the cached parameters when present. Otherwise it reads the
// kernel command line, merges virtual media parameters over it when
// boot_method=vmedia, and caches a non-empty result.
func (r *Resolver) Get(ctx context.Context) (map[string]string, error) {
	if params := r.cache.Get(); params != nil {
		return params, nil
	}

	params := r.readKernel(r.cmdlinePath)
	if params == nil {
		params = map[string]string{}
	}

	if params[BootMethodKey] == BootMethodVMedia {
		if r.vmedia == nil {
			return nil, errors.New(errors.ErrCodeVirtualMediaBoot,
				"virtual media boot requested but no virtual media source configured")
		}
		extra, err := r.vmedia.Get(ctx)
		if err != nil {
			return nil, err
		}
		maps.Copy(params, extra)
		slog.Info("merged virtual media parameters", "count", len(extra))
	}

	if len(params) == 0 {
		slog.Debug("no agent parameters found, not caching")
		return params, nil
	}

	r.cache.Set(params)
	return maps.Clone(params), nil
}

// Param returns a single resolved parameter and whether it was set.
func (r *Resolver) Param(ctx context.Context, key string) (string, bool, error) {
	params, err := r.Get(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := params[key]
	return v, ok, nil
}
