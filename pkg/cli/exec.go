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

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/baremetal-agent/pkg/defaults"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
)

// execResult is the output of a successful exec command.
type execResult struct {
	Command []string `json:"command" yaml:"command"`
	Stdout  string   `json:"stdout" yaml:"stdout"`
	Stderr  string   `json:"stderr" yaml:"stderr"`
}

func execCmd() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run a command, retrying until its exit code is accepted",
		ArgsUsage: "-- COMMAND [ARGS...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "attempts",
				Usage: "number of times to run the command",
				Value: defaults.ExecAttempts,
			},
			&cli.BoolFlag{
				Name:  "delay-on-retry",
				Usage: "sleep a randomized delay between attempts",
			},
			&cli.StringSliceFlag{
				Name:  "accept-exit-code",
				Usage: "accepted exit code, can be repeated (default: 0)",
			},
			&cli.BoolFlag{
				Name:  "no-check-exit-code",
				Usage: "accept any exit code",
			},
			&cli.StringFlag{
				Name:  "stdin-file",
				Usage: "file whose content is written to the command's stdin on every attempt",
			},
			&cli.StringSliceFlag{
				Name:  "opt",
				Usage: "keyword option key=value, can be repeated (process_input, attempts, delay_on_retry, check_exit_code)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "overall timeout across all attempts",
				Value: defaults.CLIExecTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			argv := cmd.Args().Slice()
			if len(argv) == 0 {
				return fmt.Errorf("no command given")
			}

			opts, err := execOptions(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			stdout, stderr, err := executor.New().Execute(ctx, argv[0], argv[1:], opts...)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, execResult{Command: argv, Stdout: stdout, Stderr: stderr})
		},
	}
}

// execOptions maps exec flags to executor options. Keyword options given with
// --opt are applied last and override the dedicated flags.
func execOptions(cmd *cli.Command) ([]executor.ExecOption, error) {
	opts := []executor.ExecOption{
		executor.Attempts(int(cmd.Int("attempts"))),
		executor.DelayOnRetry(cmd.Bool("delay-on-retry")),
	}

	if codes := cmd.StringSlice("accept-exit-code"); len(codes) > 0 {
		accepted := make([]int, 0, len(codes))
		for _, c := range codes {
			n, err := strconv.Atoi(strings.TrimSpace(c))
			if err != nil {
				return nil, fmt.Errorf("invalid --accept-exit-code %q: %w", c, err)
			}
			accepted = append(accepted, n)
		}
		opts = append(opts, executor.AcceptExitCodes(accepted...))
	}
	if cmd.Bool("no-check-exit-code") {
		opts = append(opts, executor.CheckExitCode(false))
	}

	if path := cmd.String("stdin-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin file: %w", err)
		}
		opts = append(opts, executor.ProcessInput(b))
	}

	if kv := cmd.StringSlice("opt"); len(kv) > 0 {
		m := make(map[string]any, len(kv))
		for _, item := range kv {
			k, v, ok := strings.Cut(item, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("invalid --opt %q, expected key=value", item)
			}
			m[k] = v
		}
		opts = append(opts, executor.FromMap(m))
	}
	return opts, nil
}
