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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/baremetal-agent/pkg/cmdline"
	"github.com/NVIDIA/baremetal-agent/pkg/logging"
	"github.com/NVIDIA/baremetal-agent/pkg/serializer"
)

const (
	name           = "bmagent"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// globalFlags returns fresh flag instances so every command tree parses
// independently.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("BMAGENT_LOG_LEVEL", logging.EnvLogLevel),
		},
		&cli.StringFlag{
			Name:    "cmdline",
			Usage:   "kernel parameter file",
			Value:   cmdline.KernelCmdlinePath,
			Sources: cli.EnvVars("BMAGENT_CMDLINE"),
		},
		&cli.BoolFlag{
			Name:  "notify-systemd",
			Usage: "send READY=1 to systemd once parameters are discovered",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file path (default: stdout)",
			Sources: cli.EnvVars("BMAGENT_OUTPUT"),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Usage:   fmt.Sprintf("output format (%v)", serializer.SupportedFormats()),
			Value:   string(serializer.FormatYAML),
			Sources: cli.EnvVars("BMAGENT_FORMAT"),
		},
	}
}

// newRootCmd builds the bmagent command tree.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "bare metal agent boot parameter discovery and resilient execution",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			paramsCmd(),
			hintsCmd(),
			configCmd(),
			execCmd(),
			inspectCmd(),
		},
	}
}

// Execute runs the bmagent CLI. This is called by main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
