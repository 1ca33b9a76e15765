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

// Package config derives the agent configuration from resolved boot
// parameters.
//
// Every setting is read from an ipa-* boot parameter and falls back to a
// default when the parameter is absent. Malformed values are collected and
// reported together:
//
//	cfg, err := config.FromParams(params)
//	if err != nil {
//	    // err lists every bad parameter, one per line
//	}
package config
