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

package failures

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/baremetal-agent/pkg/errors"
)

// Banner is the first line of every combined failure message.
const Banner = "The following errors were encountered:"

// Option configures a Failures value.
type Option func(*Failures)

// WithCode sets the error code used by Err.
// Default is errors.ErrCodeInternal.
func WithCode(code errors.ErrorCode) Option {
	return func(f *Failures) {
		f.code = code
	}
}

// Failures accumulates failure messages. It is not safe for concurrent use.
type Failures struct {
	msgs []string
	code errors.ErrorCode
}

// New creates an empty Failures.
func New(opts ...Option) *Failures {
	f := &Failures{
		code: errors.ErrCodeInternal,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Add records a failure. With args the message is rendered immediately as a
// format string; without args it is stored verbatim.
func (f *Failures) Add(msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	f.msgs = append(f.msgs, msg)
}

// AddError records the text of err. A nil error is ignored.
func (f *Failures) AddError(err error) {
	if err == nil {
		return
	}
	f.msgs = append(f.msgs, err.Error())
}

// HasFailures reports whether at least one failure was recorded.
func (f *Failures) HasFailures() bool {
	return f != nil && len(f.msgs) > 0
}

// Len returns the number of recorded failures.
func (f *Failures) Len() int {
	if f == nil {
		return 0
	}
	return len(f.msgs)
}

// Messages returns a copy of the recorded messages in insertion order.
func (f *Failures) Messages() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.msgs...)
}

// Get returns the combined failure message, or an empty string when nothing
// was recorded.
func (f *Failures) Get() string {
	if !f.HasFailures() {
		return ""
	}

	var b strings.Builder
	b.WriteString(Banner)
	for _, msg := range f.msgs {
		b.WriteString("\n* ")
		b.WriteString(msg)
	}
	return b.String()
}

// Err returns nil when nothing was recorded, otherwise a StructuredError with
// the configured code whose message is the combined failure text.
func (f *Failures) Err() error {
	if !f.HasFailures() {
		return nil
	}
	return errors.NewWithContext(f.code, f.Get(), map[string]any{
		"count": len(f.msgs),
	})
}
