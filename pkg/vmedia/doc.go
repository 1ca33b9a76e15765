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

// Package vmedia discovers agent parameters delivered on virtual media.
//
// When a host is booted from virtual media the kernel command line only
// carries boot_method=vmedia; the real configuration lives in a
// parameters.txt file on a small removable device attached out-of-band.
//
// # Discovery
//
//  1. Look for the device by filesystem label under /dev/disk/by-label,
//     trying "ir-vfd-dev" and then "IR-VFD-DEV".
//  2. Otherwise scan /sys/class/block/*/device/model for a model string
//     containing "virtual media" (case-insensitive). Unreadable entries are
//     skipped.
//  3. Mount the device read-only on a fresh temporary directory, read
//     parameters.txt, unmount and remove the directory.
//
// Cleanup always runs. Unmount and removal failures are logged and never
// mask a successful read. A mount failure is returned as a
// VIRTUAL_MEDIA_BOOT error after the temporary directory is removed.
//
// # Usage
//
//	r := vmedia.NewResolver(executor.New())
//	params, err := r.Get(ctx)
package vmedia
