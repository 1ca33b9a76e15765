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
	"fmt"
	"strings"

	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

// ProcessExecutionError reports a command whose exit code was not accepted
// on its final attempt.
// ExecID matches the exec_id attribute logged for every attempt.
type ProcessExecutionError struct {
	ExecID   string
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Attempts int
}

// Error implements the error interface.
func (e *ProcessExecutionError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d after %d attempt(s)",
		strings.TrimSpace(e.Command+" "+strings.Join(e.Args, " ")), e.ExitCode, e.Attempts)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap exposes the PROCESS_EXECUTION code to errors.HasCode.
func (e *ProcessExecutionError) Unwrap() error {
	return errors.NewWithContext(errors.ErrCodeProcessExecution, "process execution failed", map[string]any{
		"command":   e.Command,
		"exit_code": e.ExitCode,
		"exec_id":   e.ExecID,
	})
}
