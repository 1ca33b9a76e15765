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

// Package cli implements the command-line interface for the bmagent tool.
//
// # Overview
//
// bmagent exposes the agent's boot-time discovery and execution primitives
// from the shell. Parameters are read from the kernel command line and, when
// boot_method=vmedia, from the parameters.txt file on the virtual media
// device.
//
// # Commands
//
// params - Print the resolved boot parameters:
//
//	bmagent params [--cmdline FILE] [--format yaml|json|table]
//
// hints - Print the root device hints parsed from root_device:
//
//	bmagent hints --format json
//
// config - Print the agent configuration derived from the parameters:
//
//	bmagent config --output agent.yaml
//
// exec - Run a command with retries:
//
//	bmagent exec --attempts 3 --delay-on-retry --accept-exit-code 0 --accept-exit-code 2 -- mdadm --examine /dev/sda
//
// Keyword options (process_input, attempts, delay_on_retry, check_exit_code)
// can also be passed as --opt key=value.
//
// inspect - Run inspection collectors and print the collected data:
//
//	bmagent inspect --collector default --collector extra-hardware
//
// # Global Flags
//
//	--log-level       Log level: debug, info, warn, error (default: info)
//	--cmdline         Kernel parameter file (default: /proc/cmdline)
//	--notify-systemd  Send READY=1 to systemd after parameter discovery
//	--output, -o      Output file path (default: stdout)
//	--format, -t      Output format: yaml, json, table (default: yaml)
//
// # Environment Variables
//
//	LOG_LEVEL          Set logging verbosity (debug, info, warn, error)
//	BMAGENT_CMDLINE    Override the kernel parameter file
//	BMAGENT_FORMAT     Output format
//	BMAGENT_OUTPUT     Output file path
//
// The ipa-debug boot parameter raises the log level to debug unless
// --log-level is given explicitly.
//
// # Exit Codes
//
//	0  Success
//	1  Any error
package cli
