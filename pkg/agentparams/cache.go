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

package agentparams

import (
	"maps"
	"sync"
)

// Cache holds the resolved parameter mapping for the life of the process.
type Cache struct {
	mu     sync.RWMutex
	params map[string]string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns a copy of the cached parameters, or nil when nothing is cached.
func (c *Cache) Get() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.params) == 0 {
		return nil
	}
	return maps.Clone(c.params)
}

// Set replaces the cached parameters with a copy of params.
func (c *Cache) Set(params map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = maps.Clone(params)
}

// Reset drops the cached parameters.
func (c *Cache) Reset() {
	c.Set(nil)
}
