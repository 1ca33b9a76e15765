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
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/wait"
	utilexec "k8s.io/utils/exec"

	"github.com/NVIDIA/baremetal-agent/pkg/defaults"
	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

// Runner runs external commands. Executor is the production implementation;
// consumers depend on Runner so tests can substitute a fake.
type Runner interface {
	Execute(ctx context.Context, name string, args []string, opts ...ExecOption) (stdout, stderr string, err error)
}

var _ Runner = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

// WithInterface sets the process spawning backend.
// Default is k8s.io/utils/exec.New().
func WithInterface(iface utilexec.Interface) Option {
	return func(e *Executor) {
		e.exec = iface
	}
}

// WithDelayFunc sets the function computing the sleep between attempts.
// Default is a jittered delay between 200ms and 2s.
func WithDelayFunc(fn func() time.Duration) Option {
	return func(e *Executor) {
		e.delay = fn
	}
}

// WithSleepFunc sets the function used to sleep between attempts.
// Default waits on a timer and returns early when ctx is done.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = fn
	}
}

// Executor runs commands with retries. It holds no per-call state and may be
// shared.
type Executor struct {
	exec  utilexec.Interface
	delay func() time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Executor with the provided options.
func New(opts ...Option) *Executor {
	e := &Executor{
		exec:  utilexec.New(),
		delay: defaultDelay,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs name with args up to the configured number of attempts and
// returns the standard output and standard error of the accepted attempt.
func (e *Executor) Execute(ctx context.Context, name string, args []string, opts ...ExecOption) (string, string, error) {
	o := newExecOptions(opts...)
	if err := o.validate(); err != nil {
		return "", "", err
	}

	execID := uuid.NewString()
	var lastErr *ProcessExecutionError

	for attempt := 1; attempt <= o.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", "", canceled(execID, name, attempt, err)
		}

		slog.Debug("running command",
			"exec_id", execID,
			"command", name,
			"args", args,
			"attempt", attempt,
			"attempts", o.Attempts,
		)

		stdout, stderr, code, err := e.run(ctx, name, args, o.ProcessInput)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				execFailuresTotal.WithLabelValues(name, reasonCanceled).Inc()
				return "", "", canceled(execID, name, attempt, ctxErr)
			}
			execFailuresTotal.WithLabelValues(name, reasonSpawn).Inc()
			return "", "", fmt.Errorf("failed to run %q: %w", name, err)
		}

		if o.accepts(code) {
			slog.Debug("command succeeded",
				"exec_id", execID,
				"command", name,
				"exit_code", code,
				"attempt", attempt,
			)
			return stdout, stderr, nil
		}

		execFailuresTotal.WithLabelValues(name, reasonExitCode).Inc()
		lastErr = &ProcessExecutionError{
			ExecID:   execID,
			Command:  name,
			Args:     args,
			ExitCode: code,
			Stdout:   stdout,
			Stderr:   stderr,
			Attempts: attempt,
		}

		if attempt == o.Attempts {
			break
		}

		slog.Warn("command failed, retrying",
			"exec_id", execID,
			"command", name,
			"exit_code", code,
			"attempt", attempt,
			"attempts", o.Attempts,
		)

		if o.DelayOnRetry {
			if err := e.sleep(ctx, e.delay()); err != nil {
				return "", "", canceled(execID, name, attempt, err)
			}
		}
	}

	return "", "", lastErr
}

// run executes a single attempt. A non-nil error means the process could
// not be run to completion; exit statuses are reported through code.
func (e *Executor) run(ctx context.Context, name string, args []string, input []byte) (string, string, int, error) {
	cmd := e.exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)
	if input != nil {
		// fresh reader per attempt so every run sees the full input
		cmd.SetStdin(bytes.NewReader(input))
	}

	execAttemptsTotal.WithLabelValues(name).Inc()
	start := time.Now()
	err := cmd.Run()
	execDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err == nil {
		return stdout.String(), stderr.String(), 0, nil
	}

	var exitErr utilexec.ExitError
	if stderrors.As(err, &exitErr) && ctx.Err() == nil {
		return stdout.String(), stderr.String(), exitErr.ExitStatus(), nil
	}

	return stdout.String(), stderr.String(), 0, err
}

func canceled(execID, name string, attempt int, cause error) error {
	return errors.WrapWithContext(errors.ErrCodeTimeout,
		fmt.Sprintf("execution of %q interrupted", name), cause,
		map[string]any{"command": name, "attempt": attempt, "exec_id": execID})
}

func defaultDelay() time.Duration {
	return wait.Jitter(defaults.ExecRetryDelayMin, defaults.ExecRetryDelayJitter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
