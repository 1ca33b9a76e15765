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

package hints

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/baremetal-agent/pkg/cmdline"
	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

// ParamKey is the boot parameter carrying the hints.
const ParamKey = "root_device"

const (
	KeyModel              = "model"
	KeyVendor             = "vendor"
	KeySerial             = "serial"
	KeyWWN                = "wwn"
	KeyHCTL               = "hctl"
	KeySize               = "size"
	KeyRotational         = "rotational"
	KeyName               = "name"
	KeyWWNWithExtension   = "wwn_with_extension"
	KeyWWNVendorExtension = "wwn_vendor_extension"
)

// SupportedKeys lists every recognized hint key.
var SupportedKeys = []string{
	KeyModel,
	KeyVendor,
	KeySerial,
	KeyWWN,
	KeyHCTL,
	KeySize,
	KeyRotational,
	KeyName,
	KeyWWNWithExtension,
	KeyWWNVendorExtension,
}

// maxSuggestDistance bounds the edit distance of a "did you mean" suggestion.
const maxSuggestDistance = 3

// Hints are the matching criteria for the installation target disk.
// Unset fields do not constrain the match.
type Hints struct {
	Model              string `json:"model,omitempty" yaml:"model,omitempty"`
	Vendor             string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Serial             string `json:"serial,omitempty" yaml:"serial,omitempty"`
	WWN                string `json:"wwn,omitempty" yaml:"wwn,omitempty"`
	HCTL               string `json:"hctl,omitempty" yaml:"hctl,omitempty"`
	Size               *int   `json:"size,omitempty" yaml:"size,omitempty"`
	Rotational         *bool  `json:"rotational,omitempty" yaml:"rotational,omitempty"`
	Name               string `json:"name,omitempty" yaml:"name,omitempty"`
	WWNWithExtension   string `json:"wwn_with_extension,omitempty" yaml:"wwn_with_extension,omitempty"`
	WWNVendorExtension string `json:"wwn_vendor_extension,omitempty" yaml:"wwn_vendor_extension,omitempty"`
}

// IsEmpty reports whether no hint is set.
func (h *Hints) IsEmpty() bool {
	return len(h.Map()) == 0
}

// Map returns the set hints keyed by hint name. Size is an int and
// rotational a bool; everything else is a string.
func (h *Hints) Map() map[string]any {
	m := make(map[string]any)
	text := map[string]string{
		KeyModel:              h.Model,
		KeyVendor:             h.Vendor,
		KeySerial:             h.Serial,
		KeyWWN:                h.WWN,
		KeyHCTL:               h.HCTL,
		KeyName:               h.Name,
		KeyWWNWithExtension:   h.WWNWithExtension,
		KeyWWNVendorExtension: h.WWNVendorExtension,
	}
	for k, v := range text {
		if v != "" {
			m[k] = v
		}
	}
	if h.Size != nil {
		m[KeySize] = *h.Size
	}
	if h.Rotational != nil {
		m[KeyRotational] = *h.Rotational
	}
	return m
}

// ParamSource supplies resolved boot parameters.
type ParamSource interface {
	Get(ctx context.Context) (map[string]string, error)
}

// FromSource resolves the boot parameters and parses their root_device hints.
func FromSource(ctx context.Context, src ParamSource) (*Hints, error) {
	params, err := src.Get(ctx)
	if err != nil {
		return nil, err
	}
	return FromParams(params)
}

// FromParams parses the root_device entry of params. A missing or empty
// entry yields empty hints.
func FromParams(params map[string]string) (*Hints, error) {
	return Parse(params[ParamKey])
}

// Parse parses a raw hint list. Every key is checked before any value is
// converted, so an unsupported key always yields DEVICE_NOT_FOUND.
func Parse(raw string) (*Hints, error) {
	h := &Hints{}
	if strings.TrimSpace(raw) == "" {
		return h, nil
	}

	pairs := make([][2]string, 0)
	var unsupported []string
	for _, token := range strings.Split(raw, ",") {
		if token == "" {
			continue
		}
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("malformed root device hint %q, expected key=value", token),
				map[string]any{"hint": token})
		}
		key = strings.TrimSpace(key)
		if !slices.Contains(SupportedKeys, key) {
			unsupported = append(unsupported, key)
			continue
		}
		pairs = append(pairs, [2]string{key, value})
	}

	if len(unsupported) > 0 {
		return nil, unsupportedError(unsupported)
	}

	lower := cases.Lower(language.Und)
	for _, p := range pairs {
		if err := h.set(lower, p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hints) set(lower cases.Caser, key, value string) error {
	switch key {
	case KeySize:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid root device hint size %q", value), err,
				map[string]any{"hint": key})
		}
		h.Size = &n
		return nil
	case KeyRotational:
		b, err := cmdline.ParseBool(value)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid root device hint rotational %q", value), err,
				map[string]any{"hint": key})
		}
		h.Rotational = &b
		return nil
	}

	v := lower.String(unquote(value))

	switch key {
	case KeyModel:
		h.Model = v
	case KeyVendor:
		h.Vendor = v
	case KeySerial:
		h.Serial = v
	case KeyWWN:
		h.WWN = v
	case KeyHCTL:
		h.HCTL = v
	case KeyName:
		h.Name = v
	case KeyWWNWithExtension:
		h.WWNWithExtension = v
	case KeyWWNVendorExtension:
		h.WWNVendorExtension = v
	}
	return nil
}

func unsupportedError(keys []string) error {
	sort.Strings(keys)
	msg := fmt.Sprintf(
		"no device can be found because the following hints are not supported: %q; supported hints are: %q",
		strings.Join(keys, ", "), strings.Join(SupportedKeys, ", "))

	ctx := map[string]any{"unsupported": keys}
	if s := suggest(keys); len(s) > 0 {
		ctx["suggestions"] = s
		hints := make([]string, 0, len(s))
		for _, k := range keys {
			if v, ok := s[k]; ok {
				hints = append(hints, fmt.Sprintf("%s instead of %s", v, k))
			}
		}
		msg += "; did you mean " + strings.Join(hints, ", ")
	}
	return errors.NewWithContext(errors.ErrCodeDeviceNotFound, msg, ctx)
}

// suggest maps each unsupported key to the closest supported one.
func suggest(keys []string) map[string]string {
	out := make(map[string]string)
	for _, k := range keys {
		best, bestDist := "", maxSuggestDistance+1
		for _, s := range SupportedKeys {
			if d := levenshtein.ComputeDistance(k, s); d < bestDist {
				best, bestDist = s, d
			}
		}
		if best != "" {
			out[k] = best
		}
	}
	return out
}

// unquote decodes %XX escapes. A '%' not followed by two hex digits is kept
// as-is.
func unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
