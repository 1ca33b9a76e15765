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

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/baremetal-agent/pkg/agentparams"
	"github.com/NVIDIA/baremetal-agent/pkg/config"
	"github.com/NVIDIA/baremetal-agent/pkg/defaults"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
	"github.com/NVIDIA/baremetal-agent/pkg/logging"
	"github.com/NVIDIA/baremetal-agent/pkg/serializer"
	"github.com/NVIDIA/baremetal-agent/pkg/vmedia"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// Matching is case-insensitive.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return "", fmt.Errorf("invalid output format: %w", err)
	}
	return outFormat, nil
}

// writeResult serializes v to the --output destination in the --format format.
func writeResult(ctx context.Context, cmd *cli.Command, v any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer func() {
		if cerr := w.Close(); cerr != nil {
			slog.Warn("failed to close output", "error", cerr)
		}
	}()
	return w.Serialize(ctx, v)
}

// resolveParams discovers the boot parameters, applies the ipa-debug log
// level override and notifies systemd when asked to.
func resolveParams(ctx context.Context, cmd *cli.Command) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.DiscoveryTimeout)
	defer cancel()

	r := agentparams.NewResolver(agentparams.NewCache(),
		agentparams.WithCmdlinePath(cmd.String("cmdline")),
		agentparams.WithVirtualMedia(vmedia.NewResolver(executor.New())),
	)
	params, err := r.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agent parameters: %w", err)
	}

	applyDebugOverride(cmd, params)

	if cmd.Bool("notify-systemd") {
		notifyReady()
	}
	return params, nil
}

// applyDebugOverride switches the log level according to ipa-debug unless
// --log-level was given explicitly.
func applyDebugOverride(cmd *cli.Command, params map[string]string) {
	if _, ok := params[config.ParamDebug]; !ok || cmd.IsSet("log-level") {
		return
	}
	cfg, err := config.FromParams(map[string]string{config.ParamDebug: params[config.ParamDebug]})
	if err != nil {
		slog.Warn("ignoring invalid debug parameter", "error", err)
		return
	}
	level := "info"
	if cfg.DebugEnabled() {
		level = "debug"
	}
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("log level set from boot parameters", "level", level)
}

func notifyReady() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	switch {
	case err != nil:
		slog.Warn("failed to notify systemd", "error", err)
	case !sent:
		slog.Debug("systemd notification socket not available")
	default:
		slog.Info("notified systemd", "state", daemon.SdNotifyReady)
	}
}
