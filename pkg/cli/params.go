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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/baremetal-agent/pkg/config"
	"github.com/NVIDIA/baremetal-agent/pkg/hints"
)

func paramsCmd() *cli.Command {
	return &cli.Command{
		Name:  "params",
		Usage: "Print the resolved boot parameters",
		Description: `Read the kernel command line and, when it carries boot_method=vmedia,
mount the virtual media device and merge its parameters.txt over it.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			params, err := resolveParams(ctx, cmd)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, params)
		},
	}
}

func hintsCmd() *cli.Command {
	return &cli.Command{
		Name:  "hints",
		Usage: "Print the root device hints",
		Description: `Parse the root_device boot parameter. Unsupported hint names fail the
whole command with a DEVICE_NOT_FOUND error.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			params, err := resolveParams(ctx, cmd)
			if err != nil {
				return err
			}
			h, err := hints.FromParams(params)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, h)
		},
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the agent configuration derived from boot parameters",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			params, err := resolveParams(ctx, cmd)
			if err != nil {
				return err
			}
			cfg, err := config.FromParams(params)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, cfg)
		},
	}
}
