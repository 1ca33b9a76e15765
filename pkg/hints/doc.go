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

// Package hints parses root device hints.
//
// Hints arrive in the root_device boot parameter as a comma separated list of
// key=value pairs, for example:
//
//	root_device=vendor=SpongeBob,model=Square%20Pants,size=100
//
// Textual values are percent-decoded and lower-cased, size is an integer and
// rotational is a boolean. An unsupported key rejects the whole list with a
// DEVICE_NOT_FOUND error.
package hints
