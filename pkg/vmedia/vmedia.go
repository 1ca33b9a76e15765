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

package vmedia

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/baremetal-agent/pkg/cmdline"
	"github.com/NVIDIA/baremetal-agent/pkg/defaults"
	"github.com/NVIDIA/baremetal-agent/pkg/errors"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
)

const (
	// Label is the filesystem label of the virtual media device.
	Label = "ir-vfd-dev"

	// ModelMarker identifies virtual media in a block device model string.
	ModelMarker = "virtual media"

	// ParamsFile is the parameter file at the root of the virtual media.
	ParamsFile = "parameters.txt"

	defaultLabelDir  = "/dev/disk/by-label"
	defaultModelGlob = "/sys/class/block/*/device/model"
	defaultDevDir    = "/dev"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLabelDir sets the directory holding filesystem label links.
// Default is /dev/disk/by-label.
func WithLabelDir(dir string) Option {
	return func(r *Resolver) {
		r.labelDir = dir
	}
}

// WithModelGlob sets the glob matching per-device model files. The device
// name is taken from the path two levels above each match.
// Default is /sys/class/block/*/device/model.
func WithModelGlob(pattern string) Option {
	return func(r *Resolver) {
		r.modelGlob = pattern
	}
}

// WithDevDir sets the directory holding device nodes.
// Default is /dev.
func WithDevDir(dir string) Option {
	return func(r *Resolver) {
		r.devDir = dir
	}
}

// WithParamsReader sets the function reading the mounted parameter file.
// Default is cmdline.ReadParamsFromFile.
func WithParamsReader(fn func(path string) map[string]string) Option {
	return func(r *Resolver) {
		r.readParams = fn
	}
}

// WithTempDirFunc sets the function creating the mount point.
func WithTempDirFunc(fn func() (string, error)) Option {
	return func(r *Resolver) {
		r.mkdirTemp = fn
	}
}

// WithRemoveFunc sets the function removing the mount point.
func WithRemoveFunc(fn func(path string) error) Option {
	return func(r *Resolver) {
		r.removeAll = fn
	}
}

// Resolver locates, mounts and reads virtual media parameters.
type Resolver struct {
	runner     executor.Runner
	labelDir   string
	modelGlob  string
	devDir     string
	readParams func(path string) map[string]string
	mkdirTemp  func() (string, error)
	removeAll  func(path string) error
}

// NewResolver creates a Resolver that mounts through runner.
func NewResolver(runner executor.Runner, opts ...Option) *Resolver {
	r := &Resolver{
		runner:     runner,
		labelDir:   defaultLabelDir,
		modelGlob:  defaultModelGlob,
		devDir:     defaultDevDir,
		readParams: cmdline.ReadParamsFromFile,
		mkdirTemp:  func() (string, error) { return os.MkdirTemp("", "vmedia-") },
		removeAll:  os.RemoveAll,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get mounts the virtual media device and returns the parameters it holds.
func (r *Resolver) Get(ctx context.Context) (map[string]string, error) {
	source, err := r.Locate()
	if err != nil {
		return nil, err
	}

	dir, err := r.mkdirTemp()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVirtualMediaBoot, "failed to create mount point", err)
	}
	defer r.remove(dir)

	if _, _, err := r.runner.Execute(ctx, "mount", []string{"-o", "ro", source, dir},
		executor.Attempts(defaults.MountAttempts)); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeVirtualMediaBoot,
			"unable to mount virtual media device", err,
			map[string]any{"device": source, "mountpoint": dir})
	}
	slog.Info("mounted virtual media", "device", source, "mountpoint", dir)
	defer r.unmount(context.WithoutCancel(ctx), dir)

	params := r.readParams(filepath.Join(dir, ParamsFile))
	slog.Debug("read virtual media parameters", "count", len(params))
	return params, nil
}

// Locate returns the path of the virtual media device: a label link when one
// exists, otherwise the node of the first block device whose model matches.
func (r *Resolver) Locate() (string, error) {
	for _, label := range []string{strings.ToLower(Label), strings.ToUpper(Label)} {
		path := filepath.Join(r.labelDir, label)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	dev := r.FindDevice()
	if dev == "" {
		return "", errors.NewWithContext(errors.ErrCodeVirtualMediaBoot,
			"unable to find virtual media device",
			map[string]any{"label": Label, "marker": ModelMarker})
	}
	return filepath.Join(r.devDir, dev), nil
}

// FindDevice scans block device model files and returns the name of the
// first device whose model contains ModelMarker, or "" when none matches.
func (r *Resolver) FindDevice() string {
	paths, err := filepath.Glob(r.modelGlob)
	if err != nil {
		slog.Warn("invalid block device model pattern", "pattern", r.modelGlob, "error", err)
		return ""
	}

	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("skipping unreadable block device model", "path", path, "error", err)
			continue
		}
		if strings.Contains(strings.ToLower(string(b)), ModelMarker) {
			// <glob>/<device>/device/model
			return filepath.Base(filepath.Dir(filepath.Dir(path)))
		}
	}
	return ""
}

func (r *Resolver) unmount(ctx context.Context, dir string) {
	if _, _, err := r.runner.Execute(ctx, "umount", []string{dir},
		executor.Attempts(defaults.UnmountAttempts),
		executor.DelayOnRetry(true)); err != nil {
		slog.Warn("unable to unmount virtual media", "mountpoint", dir, "error", err)
	}
}

func (r *Resolver) remove(dir string) {
	if err := r.removeAll(dir); err != nil {
		slog.Warn("unable to remove virtual media mount point",
			"mountpoint", dir,
			"error", fmt.Errorf("remove %s: %w", dir, err),
		)
	}
}
