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

package cmdline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// KernelCmdlinePath is the kernel boot parameter source.
	KernelCmdlinePath = "/proc/cmdline"

	// BootImageKey is set by the boot loader, not by the operator, and is
	// dropped from kernel parameters by NewKernelParser.
	BootImageKey = "BOOT_IMAGE"

	kvDelimiter = "="
	whitespace  = " \t\n\r\v\f"
)

// Option configures a Parser.
type Option func(*Parser)

// WithMaxSize sets how many bytes of the file are parsed. Content past the
// limit is ignored, along with the token it cuts through. Non-positive sizes
// keep the default of 64KB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// WithFilterKeys drops the given keys from the parsed result.
func WithFilterKeys(keys ...string) Option {
	return func(p *Parser) {
		for _, k := range keys {
			p.filterKeys[k] = struct{}{}
		}
	}
}

// Parser parses parameter files into key/value maps.
type Parser struct {
	maxSize    int
	filterKeys map[string]struct{}
}

// NewParser creates a new parameter parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxSize:    64 << 10,
		filterKeys: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewKernelParser returns a Parser for /proc/cmdline that drops BOOT_IMAGE.
func NewKernelParser(opts ...Option) *Parser {
	return NewParser(append([]Option{WithFilterKeys(BootImageKey)}, opts...)...)
}

// Parse splits content on whitespace and returns the key=value tokens.
func (p *Parser) Parse(content string) map[string]string {
	result := make(map[string]string)
	for _, token := range strings.Fields(content) {
		key, value, ok := strings.Cut(token, kvDelimiter)
		if !ok {
			slog.Debug("skipping parameter without value", "token", token)
			continue
		}
		if key == "" {
			slog.Debug("skipping parameter with empty key", "token", token)
			continue
		}
		if _, filtered := p.filterKeys[key]; filtered {
			continue
		}
		result[key] = value
	}
	return result
}

// GetMap reads the file at path and parses its content.
// An error is returned only if the file cannot be opened or read. Content is
// parsed as raw bytes; only the first maxSize bytes are considered.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, int64(p.maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	if len(b) > p.maxSize {
		next := b[p.maxSize]
		b = b[:p.maxSize]
		// drop the token cut by the limit
		if !isSpace(next) {
			if i := strings.LastIndexAny(string(b), whitespace); i >= 0 {
				b = b[:i]
			} else {
				b = nil
			}
		}
		slog.Warn("parameter file truncated",
			"path", path,
			"maxSize", p.maxSize,
		)
	}

	return p.Parse(string(b)), nil
}

func isSpace(c byte) bool {
	return strings.IndexByte(whitespace, c) >= 0
}

// ReadParams reads path like GetMap but degrades to an empty map on error.
func (p *Parser) ReadParams(path string) map[string]string {
	params, err := p.GetMap(path)
	if err != nil {
		slog.Warn("unable to read parameters, continuing without them",
			"path", path,
			"error", err,
		)
		return map[string]string{}
	}
	return params
}

// ReadParamsFromFile reads a parameter file with default settings and never
// fails; an unreadable file yields an empty map.
func ReadParamsFromFile(path string) map[string]string {
	return NewParser().ReadParams(path)
}

// ParseBool parses a boolean parameter value. Only the spellings
// 1/t/true/on/y/yes and 0/f/false/off/n/no are accepted, in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "on", "y", "yes":
		return true, nil
	case "0", "f", "false", "off", "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean value %q", s)
}
