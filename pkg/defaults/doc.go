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

// Package defaults provides centralized timing and retry constants for the agent.
//
// Centralizing these values keeps the executor, the discovery chain and the
// CLI consistent and makes tuning easier.
//
// # Categories
//
//   - Executor: attempts and the randomized delay between retries
//   - Discovery: timeouts applied around parameter discovery
//   - CLI: per-command timeouts
//
// # Usage
//
//	import "github.com/NVIDIA/baremetal-agent/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.DiscoveryTimeout)
//	defer cancel()
package defaults
