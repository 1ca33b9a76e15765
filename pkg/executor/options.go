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
	"sort"
	"strconv"
	"strings"

	"github.com/NVIDIA/baremetal-agent/pkg/defaults"
	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

// Keyword names accepted by FromMap.
const (
	OptProcessInput  = "process_input"
	OptAttempts      = "attempts"
	OptDelayOnRetry  = "delay_on_retry"
	OptCheckExitCode = "check_exit_code"
)

// ExecOptions holds the per-call settings of Execute.
type ExecOptions struct {
	// ProcessInput is written to the standard input of every attempt.
	ProcessInput []byte
	// Attempts is the maximum number of runs. Must be at least 1.
	Attempts int
	// DelayOnRetry sleeps a randomized interval between attempts.
	DelayOnRetry bool
	// CheckExitCode enables exit code checking. When false every exit
	// code is accepted.
	CheckExitCode bool
	// AcceptedExitCodes lists the exit codes treated as success.
	AcceptedExitCodes []int

	err error
}

// ExecOption configures a single Execute call.
type ExecOption func(*ExecOptions)

// ProcessInput sets the bytes fed to the process standard input.
func ProcessInput(input []byte) ExecOption {
	return func(o *ExecOptions) {
		o.ProcessInput = input
	}
}

// Attempts sets the maximum number of attempts.
// Default is 1.
func Attempts(n int) ExecOption {
	return func(o *ExecOptions) {
		o.Attempts = n
	}
}

// DelayOnRetry enables a randomized sleep between attempts.
// Default is false.
func DelayOnRetry(delay bool) ExecOption {
	return func(o *ExecOptions) {
		o.DelayOnRetry = delay
	}
}

// CheckExitCode toggles exit code checking. Disabling it accepts every exit
// code. Default is true with only 0 accepted.
func CheckExitCode(check bool) ExecOption {
	return func(o *ExecOptions) {
		o.CheckExitCode = check
	}
}

// AcceptExitCodes replaces the list of accepted exit codes and enables
// exit code checking.
func AcceptExitCodes(codes ...int) ExecOption {
	return func(o *ExecOptions) {
		o.CheckExitCode = true
		o.AcceptedExitCodes = append([]int(nil), codes...)
	}
}

// FromMap applies keyword-style options. Unknown names produce an
// UNKNOWN_ARGUMENT error that Execute returns before spawning anything.
func FromMap(m map[string]any) ExecOption {
	return func(o *ExecOptions) {
		if o.err != nil {
			return
		}

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var unknown []string
		for _, k := range keys {
			switch k {
			case OptProcessInput, OptAttempts, OptDelayOnRetry, OptCheckExitCode:
			default:
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			o.err = errors.NewWithContext(errors.ErrCodeUnknownArgument,
				fmt.Sprintf("got unknown keyword args: %s", strings.Join(unknown, ", ")),
				map[string]any{"args": unknown})
			return
		}

		for _, k := range keys {
			if err := o.applyKeyword(k, m[k]); err != nil {
				o.err = err
				return
			}
		}
	}
}

func (o *ExecOptions) applyKeyword(key string, value any) error {
	invalid := func(cause error) error {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid value for %s", key), cause,
			map[string]any{"value": value})
	}

	switch key {
	case OptProcessInput:
		switch v := value.(type) {
		case []byte:
			o.ProcessInput = v
		case string:
			o.ProcessInput = []byte(v)
		default:
			return invalid(fmt.Errorf("unsupported type %T", value))
		}
	case OptAttempts:
		n, err := toInt(value)
		if err != nil {
			return invalid(err)
		}
		o.Attempts = n
	case OptDelayOnRetry:
		b, err := toBool(value)
		if err != nil {
			return invalid(err)
		}
		o.DelayOnRetry = b
	case OptCheckExitCode:
		if err := o.applyCheckExitCode(value); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// applyCheckExitCode accepts a bool, a single code, a list of codes, or
// their string forms ("false", "0,3").
func (o *ExecOptions) applyCheckExitCode(value any) error {
	switch v := value.(type) {
	case bool:
		o.CheckExitCode = v
		return nil
	case int:
		AcceptExitCodes(v)(o)
		return nil
	case []int:
		AcceptExitCodes(v...)(o)
		return nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			o.CheckExitCode = b
			return nil
		}
		var codes []int
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("exit code %q is not numeric", part)
			}
			codes = append(codes, n)
		}
		AcceptExitCodes(codes...)(o)
		return nil
	default:
		return fmt.Errorf("unsupported type %T", value)
	}
}

func (o *ExecOptions) accepts(code int) bool {
	if !o.CheckExitCode {
		return true
	}
	for _, c := range o.AcceptedExitCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (o *ExecOptions) validate() error {
	if o.err != nil {
		return o.err
	}
	if o.Attempts < 1 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"attempts must be at least 1", map[string]any{"attempts": o.Attempts})
	}
	return nil
}

func newExecOptions(opts ...ExecOption) *ExecOptions {
	o := &ExecOptions{
		Attempts:          defaults.ExecAttempts,
		CheckExitCode:     true,
		AcceptedExitCodes: []int{0},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not numeric", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("unsupported type %T", value)
	}
}
