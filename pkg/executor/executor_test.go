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
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

// result is the scripted outcome of one fake process run.
type result struct {
	stdout string
	stderr string
	err    error
}

// recorder captures what each fake process saw.
type recorder struct {
	argv   [][]string
	stdins []string
}

func exitCode(code int) error {
	return testingexec.FakeExitError{Status: code}
}

// newFakeExec returns a FakeExec that runs the given results in order.
func newFakeExec(rec *recorder, results ...result) *testingexec.FakeExec {
	fe := &testingexec.FakeExec{}
	for _, r := range results {
		fe.CommandScript = append(fe.CommandScript, func(cmd string, args ...string) utilexec.Cmd {
			fc := &testingexec.FakeCmd{}
			fc.RunScript = []testingexec.FakeAction{
				func() ([]byte, []byte, error) {
					rec.argv = append(rec.argv, append([]string{cmd}, args...))
					if fc.Stdin != nil {
						b, _ := io.ReadAll(fc.Stdin)
						rec.stdins = append(rec.stdins, string(b))
					} else {
						rec.stdins = append(rec.stdins, "")
					}
					return []byte(r.stdout), []byte(r.stderr), r.err
				},
			}
			return testingexec.InitFakeCmd(fc, cmd, args...)
		})
	}
	return fe
}

func newTestExecutor(fe *testingexec.FakeExec, slept *[]time.Duration) *Executor {
	return New(
		WithInterface(fe),
		WithDelayFunc(func() time.Duration { return time.Second }),
		WithSleepFunc(func(_ context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return nil
		}),
	)
}

func TestExecute_Success(t *testing.T) {
	rec := &recorder{}
	fe := newFakeExec(rec, result{stdout: "out", stderr: "err"})
	e := newTestExecutor(fe, nil)

	stdout, stderr, err := e.Execute(context.TODO(), "mount", []string{"/dev/sdc", "/mnt"})
	require.NoError(t, err)
	assert.Equal(t, "out", stdout)
	assert.Equal(t, "err", stderr)
	assert.Equal(t, 1, fe.CommandCalls)
	assert.Equal(t, [][]string{{"mount", "/dev/sdc", "/mnt"}}, rec.argv)
}

func TestExecute_AcceptedExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		opts []ExecOption
	}{
		{"zero by default", 0, nil},
		{"explicit list", 3, []ExecOption{AcceptExitCodes(0, 3)}},
		{"check disabled", 1, []ExecOption{CheckExitCode(false)}},
		{"keyword list", 2, []ExecOption{FromMap(map[string]any{OptCheckExitCode: []int{2}})}},
		{"keyword false", 127, []ExecOption{FromMap(map[string]any{OptCheckExitCode: false})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.code != 0 {
				err = exitCode(tt.code)
			}
			rec := &recorder{}
			fe := newFakeExec(rec, result{err: err})
			e := newTestExecutor(fe, nil)

			opts := append([]ExecOption{Attempts(3)}, tt.opts...)
			_, _, execErr := e.Execute(context.TODO(), "tool", nil, opts...)
			require.NoError(t, execErr)
			assert.Equal(t, 1, fe.CommandCalls, "accepted code must not be retried")
		})
	}
}

func TestExecute_CheckExitCodeTrue(t *testing.T) {
	fe := newFakeExec(&recorder{}, result{err: exitCode(1)})
	e := newTestExecutor(fe, nil)

	_, _, err := e.Execute(context.TODO(), "/usr/bin/env", []string{"false"}, CheckExitCode(true))
	require.Error(t, err)

	var perr *ProcessExecutionError
	require.True(t, stderrors.As(err, &perr))
	assert.Equal(t, 1, perr.ExitCode)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProcessExecution))
}

func TestExecute_RetriesWithInputEveryAttempt(t *testing.T) {
	rec := &recorder{}
	results := make([]result, 10)
	for i := range results {
		results[i] = result{stderr: "boom " + strconv.Itoa(i), err: exitCode(1)}
	}
	fe := newFakeExec(rec, results...)
	var slept []time.Duration
	e := newTestExecutor(fe, &slept)

	_, _, err := e.Execute(context.TODO(), "script", []string{"arg"},
		Attempts(10),
		ProcessInput([]byte("foo")),
		DelayOnRetry(false),
	)
	require.Error(t, err)

	var perr *ProcessExecutionError
	require.True(t, stderrors.As(err, &perr))
	assert.Equal(t, 10, perr.Attempts)
	assert.Equal(t, "boom 9", perr.Stderr, "error must describe the last attempt")
	assert.Equal(t, 10, fe.CommandCalls)
	require.Len(t, rec.stdins, 10)
	for i, in := range rec.stdins {
		assert.Equal(t, "foo", in, "attempt %d did not receive stdin", i+1)
	}
	assert.Empty(t, slept, "no delay expected when delay-on-retry is off")
}

func TestExecute_StopsOnFirstAcceptedAttempt(t *testing.T) {
	rec := &recorder{}
	fe := newFakeExec(rec,
		result{err: exitCode(1)},
		result{stdout: "ok"},
	)
	var slept []time.Duration
	e := newTestExecutor(fe, &slept)

	stdout, _, err := e.Execute(context.TODO(), "script", nil,
		Attempts(5),
		ProcessInput([]byte("foo")),
		DelayOnRetry(true),
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", stdout)
	assert.Equal(t, 2, fe.CommandCalls)
	assert.Equal(t, []string{"foo", "foo"}, rec.stdins)
	assert.Equal(t, []time.Duration{time.Second}, slept)
}

func TestExecute_UnknownArgument(t *testing.T) {
	fe := &testingexec.FakeExec{}
	e := newTestExecutor(fe, nil)

	_, _, err := e.Execute(context.TODO(), "/usr/bin/env", []string{"true"},
		FromMap(map[string]any{"this_is_not_a_valid_kwarg": true}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownArgument))
	assert.Contains(t, err.Error(), "this_is_not_a_valid_kwarg")
	assert.Equal(t, 0, fe.CommandCalls, "no process may be spawned")
}

func TestExecute_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []ExecOption
	}{
		{"zero attempts", []ExecOption{Attempts(0)}},
		{"negative attempts", []ExecOption{Attempts(-2)}},
		{"attempts not numeric", []ExecOption{FromMap(map[string]any{OptAttempts: "many"})}},
		{"bad exit code list", []ExecOption{FromMap(map[string]any{OptCheckExitCode: "0,x"})}},
		{"bad input type", []ExecOption{FromMap(map[string]any{OptProcessInput: 42})}},
		{"bad delay type", []ExecOption{FromMap(map[string]any{OptDelayOnRetry: 1.5})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := &testingexec.FakeExec{}
			e := newTestExecutor(fe, nil)

			_, _, err := e.Execute(context.TODO(), "tool", nil, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
			assert.Equal(t, 0, fe.CommandCalls)
		})
	}
}

func TestExecute_SpawnErrorNotRetried(t *testing.T) {
	fe := newFakeExec(&recorder{}, result{err: utilexec.ErrExecutableNotFound})
	e := newTestExecutor(fe, nil)

	_, _, err := e.Execute(context.TODO(), "missing-tool", nil, Attempts(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, utilexec.ErrExecutableNotFound)
	assert.Equal(t, 1, fe.CommandCalls)
}

func TestExecute_ContextCanceledDuringDelay(t *testing.T) {
	fe := newFakeExec(&recorder{}, result{err: exitCode(1)}, result{})
	ctx, cancel := context.WithCancel(context.TODO())
	e := New(
		WithInterface(fe),
		WithDelayFunc(func() time.Duration { return time.Hour }),
		WithSleepFunc(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)

	_, _, err := e.Execute(ctx, "tool", nil, Attempts(2), DelayOnRetry(true))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fe.CommandCalls)

	var se *errors.StructuredError
	require.True(t, stderrors.As(err, &se))
	id, ok := se.Context["exec_id"].(string)
	require.True(t, ok, "canceled error must carry exec_id")
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
}

func TestExecute_ErrorCarriesExecID(t *testing.T) {
	fe := newFakeExec(&recorder{}, result{err: exitCode(1)}, result{err: exitCode(1)})
	e := newTestExecutor(fe, nil)

	_, _, err1 := e.Execute(context.TODO(), "tool", nil)
	_, _, err2 := e.Execute(context.TODO(), "tool", nil)

	var p1, p2 *ProcessExecutionError
	require.True(t, stderrors.As(err1, &p1))
	require.True(t, stderrors.As(err2, &p2))
	_, err := uuid.Parse(p1.ExecID)
	require.NoError(t, err)
	assert.NotEqual(t, p1.ExecID, p2.ExecID, "each execution gets its own id")

	var se *errors.StructuredError
	require.True(t, stderrors.As(err1, &se))
	assert.Equal(t, p1.ExecID, se.Context["exec_id"])
}

func TestExecute_KeywordOptions(t *testing.T) {
	rec := &recorder{}
	fe := newFakeExec(rec, result{err: exitCode(4)}, result{err: exitCode(4)})
	e := newTestExecutor(fe, nil)

	_, _, err := e.Execute(context.TODO(), "tool", nil, FromMap(map[string]any{
		OptAttempts:      "2",
		OptProcessInput:  "data",
		OptDelayOnRetry:  "false",
		OptCheckExitCode: "0,3",
	}))
	require.Error(t, err)
	assert.Equal(t, 2, fe.CommandCalls)
	assert.Equal(t, []string{"data", "data"}, rec.stdins)
}

func TestExecute_Metrics(t *testing.T) {
	const name = "metrics-counter"
	before := testutil.ToFloat64(execAttemptsTotal.WithLabelValues(name))
	failBefore := testutil.ToFloat64(execFailuresTotal.WithLabelValues(name, reasonExitCode))

	fe := newFakeExec(&recorder{}, result{err: exitCode(1)}, result{})
	e := newTestExecutor(fe, nil)

	_, _, err := e.Execute(context.TODO(), name, nil, Attempts(2))
	require.NoError(t, err)

	assert.Equal(t, before+2, testutil.ToFloat64(execAttemptsTotal.WithLabelValues(name)))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(execFailuresTotal.WithLabelValues(name, reasonExitCode)))
}

func TestProcessExecutionError_Error(t *testing.T) {
	err := &ProcessExecutionError{
		Command:  "umount",
		Args:     []string{"/tmp/x"},
		ExitCode: 32,
		Stderr:   "target is busy\n",
		Attempts: 3,
	}
	assert.Equal(t, `command "umount /tmp/x" exited with code 32 after 3 attempt(s): target is busy`, err.Error())
	assert.Equal(t, errors.ErrCodeProcessExecution, errors.CodeOf(err))
}

func TestDefaultDelayBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := defaultDelay()
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.TODO(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.TODO())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

// writeScript creates an executable shell script or skips when the
// environment cannot run one.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping process integration test in short mode")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecute_Integration_RetryOnFailure(t *testing.T) {
	script := writeScript(t, `
# If stdin fails to get passed during one of the runs, make a note.
if ! grep -q foo
then
    echo 'failure' > "$1"
fi
if grep failure "$1"
then
    exit 1
fi
runs="$(cat $1)"
if [ -z "$runs" ]
then
    runs=0
fi
runs=$(($runs + 1))
echo $runs > "$1"
exit 1
`)
	counter := filepath.Join(t.TempDir(), "runs")
	require.NoError(t, os.WriteFile(counter, nil, 0o644))

	_, _, err := New().Execute(context.TODO(), script, []string{counter},
		Attempts(10),
		ProcessInput([]byte("foo")),
		DelayOnRetry(false),
	)
	if stderrors.Is(err, os.ErrPermission) {
		t.Skip("permission error detected, /tmp may be mounted noexec")
	}

	var perr *ProcessExecutionError
	require.True(t, stderrors.As(err, &perr), "got %v", err)

	b, err := os.ReadFile(counter)
	require.NoError(t, err)
	runs := strings.TrimSpace(string(b))
	assert.NotEqual(t, "failure", runs, "stdin did not always get passed correctly")
	assert.Equal(t, "10", runs)
}

func TestExecute_Integration_NoRetryOnSuccess(t *testing.T) {
	script := writeScript(t, `
grep -q foo "$1" && exit 1
echo foo > "$1"
grep foo
`)
	marker := filepath.Join(t.TempDir(), "marker")
	require.NoError(t, os.WriteFile(marker, nil, 0o644))

	stdout, _, err := New().Execute(context.TODO(), script, []string{marker},
		ProcessInput([]byte("foo")),
		Attempts(2),
	)
	if stderrors.Is(err, os.ErrPermission) {
		t.Skip("permission error detected, /tmp may be mounted noexec")
	}
	require.NoError(t, err)
	assert.Equal(t, "foo", strings.TrimSpace(stdout))
}
