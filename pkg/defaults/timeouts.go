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

package defaults

import "time"

// Executor retry settings.
const (
	// ExecAttempts is the number of times a command runs when the caller
	// does not ask for retries.
	ExecAttempts = 1

	// ExecRetryDelayMin is the lower bound of the randomized sleep between
	// attempts when delay-on-retry is enabled.
	ExecRetryDelayMin = 200 * time.Millisecond

	// ExecRetryDelayJitter is the maximum jitter factor applied on top of
	// ExecRetryDelayMin. A factor of 9 yields delays in [200ms, 2s].
	ExecRetryDelayJitter = 9.0
)

// Discovery timeouts.
const (
	// DiscoveryTimeout bounds a full parameter resolution, including
	// mounting and unmounting virtual media.
	DiscoveryTimeout = 2 * time.Minute

	// MountAttempts is the number of mount attempts made for virtual media.
	MountAttempts = 1

	// UnmountAttempts is the number of unmount attempts made during cleanup.
	UnmountAttempts = 3
)

// CLI timeouts.
const (
	// CLIExecTimeout is the default timeout for the exec command.
	CLIExecTimeout = 10 * time.Minute

	// CLIInspectTimeout is the default timeout for the inspect command.
	CLIInspectTimeout = 5 * time.Minute
)
