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

// Package inspector gathers hardware data through named collectors.
//
// Collectors run in the configured order and all of them are attempted. A
// collector that fails records the failure and leaves its part of the data
// unset; Inspect reports every recorded failure in one error:
//
//	i := inspector.New(executor.New(), params)
//	data, err := i.Inspect(ctx, []string{"default", "extra-hardware"})
//
// Built-in collectors:
//   - default: boot interface MAC and root device hints
//   - logs: gzipped tarball of the current boot's journal, base64 encoded
//   - extra-hardware: JSON output of hardware-detect, with optional benchmarks
package inspector
