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

// Package agentparams resolves the agent's boot parameters.
//
// Parameters normally come from the kernel command line. When the command
// line carries boot_method=vmedia, the real configuration lives on a virtual
// media device instead, and its values are merged over the command line ones.
//
// The resolved mapping is kept in a Cache so discovery runs once per process:
//
//	cache := agentparams.NewCache()
//	r := agentparams.NewResolver(cache,
//	    agentparams.WithVirtualMedia(vmedia.NewResolver(executor.New())),
//	)
//	params, err := r.Get(ctx)
//
// The Cache is guarded by a mutex, but the resolver assumes a single writer:
// resolve once, early, before concurrent work starts.
package agentparams
