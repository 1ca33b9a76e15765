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

// Package executor runs external commands with bounded retries.
//
// Every step of provisioning in a minimal boot environment (mounting a
// device, invoking a disk tool) is an external process that may fail
// transiently. Executor runs such a command up to a fixed number of
// attempts, feeding the same standard input to every attempt, and stops as
// soon as an attempt exits with an accepted code.
//
// # Usage
//
//	e := executor.New()
//	stdout, _, err := e.Execute(ctx, "mount", []string{"-o", "ro", dev, dir},
//	    executor.Attempts(3),
//	    executor.DelayOnRetry(true),
//	)
//	var perr *executor.ProcessExecutionError
//	if errors.As(err, &perr) {
//	    slog.Error("mount failed", "code", perr.ExitCode, "stderr", perr.Stderr)
//	}
//
// Keyword-style options coming from untyped sources are accepted through
// FromMap; unknown names fail with an UNKNOWN_ARGUMENT error before any
// process is spawned:
//
//	_, _, err := e.Execute(ctx, "sync", nil, executor.FromMap(map[string]any{
//	    "attempts":        2,
//	    "check_exit_code": []int{0, 1},
//	}))
//
// # Failure Classification
//
//   - Exit code not accepted on the final attempt: *ProcessExecutionError
//     (code PROCESS_EXECUTION)
//   - Unsupported option: UNKNOWN_ARGUMENT, never retried
//   - Invalid option value (attempts < 1, wrong type): INVALID_REQUEST
//   - Context canceled or deadline exceeded: TIMEOUT
//   - Spawn failures (executable not found, permission denied) are returned
//     as-is without retrying
//
// # Metrics
//
// Attempts, failures and durations are exported through the default
// Prometheus registry under the bmagent_exec_ prefix.
package executor
