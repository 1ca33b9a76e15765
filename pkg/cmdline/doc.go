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

// Package cmdline parses kernel-command-line style parameter files.
//
// A parameter file holds whitespace-separated key=value tokens, either on a
// single line (/proc/cmdline) or one per line (parameters.txt on virtual
// media). Tokens without "=" are flags and are ignored; the first "=" splits
// key from value so values may themselves contain "="; the last occurrence
// of a key wins.
//
// # Usage
//
//	params := cmdline.ReadParamsFromFile(cmdline.KernelCmdlinePath)
//	apiURL := params["ipa-api-url"]
//
// ReadParamsFromFile never fails: an absent or unreadable file yields an
// empty map, since running outside the target boot environment is an
// expected condition. Use Parser.GetMap when the error matters.
package cmdline
