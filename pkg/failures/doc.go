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

// Package failures collects non-fatal errors across a multi-step operation
// and reports them together.
//
// A Failures value is created at the start of an operation, passed by
// pointer to every step, and finalized exactly once:
//
//	f := failures.New(failures.WithCode(errors.ErrCodeInternal))
//	if err := stepOne(); err != nil {
//	    f.AddError(err)
//	}
//	if err := stepTwo(); err != nil {
//	    f.Add("step two failed for %s: %v", name, err)
//	}
//	return f.Err()
//
// The combined message starts with a fixed banner followed by one
// "* <failure>" line per entry in the order they were added.
package failures
