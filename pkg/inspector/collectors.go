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

package inspector

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NVIDIA/baremetal-agent/pkg/config"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
	"github.com/NVIDIA/baremetal-agent/pkg/failures"
	"github.com/NVIDIA/baremetal-agent/pkg/hints"
)

const (
	// ParamBenchmarks lists hardware-detect benchmarks, comma separated.
	ParamBenchmarks = "ipa-inspection-benchmarks"

	// ParamBootInterface is the PXE boot interface set by the boot loader.
	ParamBootInterface = "BOOTIF"

	hardwareDetectCmd = "hardware-detect"
	journalLines      = "10000"
)

// CollectExtraHardware runs hardware-detect and stores its decoded JSON
// output under data["data"]. Benchmarks named in ipa-inspection-benchmarks
// are passed along. On failure data is left untouched and the problem is
// recorded in f; a nil f only logs it.
func CollectExtraHardware(ctx context.Context, runner executor.Runner, params map[string]string,
	data map[string]any, f *failures.Failures) {

	var args []string
	if benchmarks := config.SplitList(params[ParamBenchmarks]); len(benchmarks) > 0 {
		args = append([]string{"--benchmark"}, benchmarks...)
	}

	stdout, _, err := runner.Execute(ctx, hardwareDetectCmd, args)
	if err != nil {
		record(f, "failed to run hardware-detect utility: %v", err)
		return
	}

	var decoded any
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		record(f, "hardware-detect returned non-JSON output: %v", err)
		return
	}
	data["data"] = decoded
}

// collectDefault records the PXE boot interface and the root device hints.
func (i *Inspector) collectDefault(_ context.Context, data map[string]any, f *failures.Failures) {
	if bootif, ok := i.params[ParamBootInterface]; ok && bootif != "" {
		data["boot_interface"] = NormalizeMAC(bootif)
	} else {
		slog.Debug("no boot interface parameter, PXE interface unknown")
	}

	h, err := hints.FromParams(i.params)
	if err != nil {
		record(f, "invalid root device hints: %v", err)
		return
	}
	if !h.IsEmpty() {
		data["root_device_hints"] = h.Map()
	}
}

// collectLogs stores the current boot's journal as a base64 encoded gzipped
// tarball under data["logs"]. A missing journal is not a failure.
func (i *Inspector) collectLogs(ctx context.Context, data map[string]any, _ *failures.Failures) {
	stdout, _, err := i.runner.Execute(ctx, "journalctl",
		[]string{"--full", "--no-pager", "-b", "-n", journalLines})
	if err != nil {
		slog.Warn("journal is not available, not collecting logs", "error", err)
		return
	}

	archive, err := tarball(map[string][]byte{"journal": []byte(stdout)})
	if err != nil {
		slog.Warn("failed to pack logs", "error", err)
		return
	}
	data["logs"] = base64.StdEncoding.EncodeToString(archive)
}

// NormalizeMAC lower-cases a MAC address and converts the pxelinux form
// 01-aa-bb-cc-dd-ee-ff to colon notation.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(strings.TrimSpace(mac))
	parts := strings.Split(mac, "-")
	if len(parts) == 1 {
		return mac
	}
	// pxelinux prefixes the ARP hardware type, 01 for Ethernet
	if len(parts) == 7 && parts[0] == "01" {
		parts = parts[1:]
	}
	return strings.Join(parts, ":")
}

func tarball(files map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	now := time.Now()
	for name, content := range files {
		hdr := &tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(content)),
			ModTime: now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("write header for %s: %w", name, err)
		}
		if _, err := tw.Write(content); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func record(f *failures.Failures, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if f == nil {
		slog.Warn("inspection failure", "error", msg)
		return
	}
	f.Add(msg)
}
