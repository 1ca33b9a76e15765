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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/baremetal-agent/pkg/config"
	"github.com/NVIDIA/baremetal-agent/pkg/defaults"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
	"github.com/NVIDIA/baremetal-agent/pkg/inspector"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Run inspection collectors and print the collected data",
		Description: `Collectors default to the ipa-inspection-collectors boot parameter.
Every collector runs even when an earlier one fails; the data collected so far
is printed and all failures are reported together.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "collector",
				Usage: "collector to run, can be repeated (default, logs, extra-hardware)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "overall inspection timeout",
				Value: defaults.CLIInspectTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			params, err := resolveParams(ctx, cmd)
			if err != nil {
				return err
			}

			names := cmd.StringSlice("collector")
			if len(names) == 0 {
				cfg, err := config.FromParams(params)
				if err != nil {
					return err
				}
				names = cfg.InspectionCollectors
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			data, inspectErr := inspector.New(executor.New(), params).Inspect(ctx, names)
			if data == nil {
				return inspectErr
			}
			if err := writeResult(ctx, cmd, data); err != nil {
				return err
			}
			if inspectErr != nil {
				slog.Error("inspection finished with failures", "collectors", names)
			}
			return inspectErr
		},
	}
}
