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

package config

import (
	"strconv"
	"strings"

	"github.com/NVIDIA/baremetal-agent/pkg/cmdline"
	"github.com/NVIDIA/baremetal-agent/pkg/errors"
	"github.com/NVIDIA/baremetal-agent/pkg/failures"
)

// Boot parameter names.
const (
	ParamAPIURL                      = "ipa-api-url"
	ParamListenHost                  = "ipa-listen-host"
	ParamListenPort                  = "ipa-listen-port"
	ParamAdvertiseHost               = "ipa-advertise-host"
	ParamAdvertisePort               = "ipa-advertise-port"
	ParamIPLookupAttempts            = "ipa-ip-lookup-attempts"
	ParamIPLookupTimeout             = "ipa-ip-lookup-timeout"
	ParamNetworkInterface            = "ipa-network-interface"
	ParamLookupTimeout               = "ipa-lookup-timeout"
	ParamLookupInterval              = "ipa-lookup-interval"
	ParamDriverName                  = "ipa-driver-name"
	ParamLLDPTimeout                 = "lldp-timeout"
	ParamStandalone                  = "ipa-standalone"
	ParamInspectionCallbackURL       = "ipa-inspection-callback-url"
	ParamInspectionCollectors        = "ipa-inspection-collectors"
	ParamInspectionDHCPWaitTimeout   = "ipa-inspection-dhcp-wait-timeout"
	ParamInspectionDHCPAllInterfaces = "ipa-inspection-dhcp-all-interfaces"
	ParamDebug                       = "ipa-debug"
)

// Defaults applied when a parameter is absent.
const (
	DefaultAPIURL                    = "http://127.0.0.1:6385"
	DefaultListenHost                = "0.0.0.0"
	DefaultListenPort                = 9999
	DefaultAdvertisePort             = 9999
	DefaultIPLookupAttempts          = 3
	DefaultIPLookupSleepSeconds      = 10
	DefaultLookupTimeoutSeconds      = 300
	DefaultLookupIntervalSeconds     = 1
	DefaultDriverName                = "agent_ipmitool"
	DefaultLLDPTimeoutSeconds        = 30.0
	DefaultInspectionCollectors      = "default"
	DefaultInspectionDHCPWaitSeconds = 60
)

// Config is the agent configuration.
type Config struct {
	APIURL                      string   `json:"apiURL" yaml:"apiURL"`
	ListenHost                  string   `json:"listenHost" yaml:"listenHost"`
	ListenPort                  int      `json:"listenPort" yaml:"listenPort"`
	AdvertiseHost               string   `json:"advertiseHost,omitempty" yaml:"advertiseHost,omitempty"`
	AdvertisePort               int      `json:"advertisePort" yaml:"advertisePort"`
	IPLookupAttempts            int      `json:"ipLookupAttempts" yaml:"ipLookupAttempts"`
	IPLookupSleepSeconds        int      `json:"ipLookupSleepSeconds" yaml:"ipLookupSleepSeconds"`
	NetworkInterface            string   `json:"networkInterface,omitempty" yaml:"networkInterface,omitempty"`
	LookupTimeoutSeconds        int      `json:"lookupTimeoutSeconds" yaml:"lookupTimeoutSeconds"`
	LookupIntervalSeconds       int      `json:"lookupIntervalSeconds" yaml:"lookupIntervalSeconds"`
	DriverName                  string   `json:"driverName" yaml:"driverName"`
	LLDPTimeoutSeconds          float64  `json:"lldpTimeoutSeconds" yaml:"lldpTimeoutSeconds"`
	Standalone                  bool     `json:"standalone" yaml:"standalone"`
	InspectionCallbackURL       string   `json:"inspectionCallbackURL,omitempty" yaml:"inspectionCallbackURL,omitempty"`
	InspectionCollectors        []string `json:"inspectionCollectors" yaml:"inspectionCollectors"`
	InspectionDHCPWaitSeconds   int      `json:"inspectionDHCPWaitSeconds" yaml:"inspectionDHCPWaitSeconds"`
	InspectionDHCPAllInterfaces bool     `json:"inspectionDHCPAllInterfaces" yaml:"inspectionDHCPAllInterfaces"`
	Debug                       *bool    `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// Default returns the configuration used when no parameter is set.
func Default() *Config {
	return &Config{
		APIURL:                    DefaultAPIURL,
		ListenHost:                DefaultListenHost,
		ListenPort:                DefaultListenPort,
		AdvertisePort:             DefaultAdvertisePort,
		IPLookupAttempts:          DefaultIPLookupAttempts,
		IPLookupSleepSeconds:      DefaultIPLookupSleepSeconds,
		LookupTimeoutSeconds:      DefaultLookupTimeoutSeconds,
		LookupIntervalSeconds:     DefaultLookupIntervalSeconds,
		DriverName:                DefaultDriverName,
		LLDPTimeoutSeconds:        DefaultLLDPTimeoutSeconds,
		InspectionCollectors:      SplitList(DefaultInspectionCollectors),
		InspectionDHCPWaitSeconds: DefaultInspectionDHCPWaitSeconds,
	}
}

// FromParams builds a Config from boot parameters. All malformed values are
// reported in a single INVALID_REQUEST error.
func FromParams(params map[string]string) (*Config, error) {
	c := Default()
	f := failures.New(failures.WithCode(errors.ErrCodeInvalidRequest))
	r := reader{params: params, failures: f}

	r.str(ParamAPIURL, &c.APIURL)
	r.str(ParamListenHost, &c.ListenHost)
	r.port(ParamListenPort, &c.ListenPort)
	r.str(ParamAdvertiseHost, &c.AdvertiseHost)
	r.port(ParamAdvertisePort, &c.AdvertisePort)
	r.nonNegative(ParamIPLookupAttempts, &c.IPLookupAttempts)
	r.nonNegative(ParamIPLookupTimeout, &c.IPLookupSleepSeconds)
	r.str(ParamNetworkInterface, &c.NetworkInterface)
	r.nonNegative(ParamLookupTimeout, &c.LookupTimeoutSeconds)
	r.nonNegative(ParamLookupInterval, &c.LookupIntervalSeconds)
	r.str(ParamDriverName, &c.DriverName)
	r.float(ParamLLDPTimeout, &c.LLDPTimeoutSeconds)
	r.boolean(ParamStandalone, &c.Standalone)
	r.str(ParamInspectionCallbackURL, &c.InspectionCallbackURL)
	if v, ok := params[ParamInspectionCollectors]; ok {
		c.InspectionCollectors = SplitList(v)
	}
	r.nonNegative(ParamInspectionDHCPWaitTimeout, &c.InspectionDHCPWaitSeconds)
	r.boolean(ParamInspectionDHCPAllInterfaces, &c.InspectionDHCPAllInterfaces)
	if _, ok := params[ParamDebug]; ok {
		var debug bool
		if r.boolean(ParamDebug, &debug) {
			c.Debug = &debug
		}
	}

	if err := f.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// DebugEnabled reports whether ipa-debug requests debug logging.
func (c *Config) DebugEnabled() bool {
	return c.Debug != nil && *c.Debug
}

// SplitList splits a comma separated value, trimming blanks and dropping
// empty items.
func SplitList(v string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type reader struct {
	params   map[string]string
	failures *failures.Failures
}

func (r reader) str(key string, dst *string) {
	if v, ok := r.params[key]; ok {
		*dst = v
	}
}

func (r reader) integer(key string, dst *int) bool {
	v, ok := r.params[key]
	if !ok {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.failures.Add("%s: %q is not an integer", key, v)
		return false
	}
	*dst = n
	return true
}

func (r reader) nonNegative(key string, dst *int) {
	prev := *dst
	if r.integer(key, dst) && *dst < 0 {
		r.failures.Add("%s: %d must not be negative", key, *dst)
		*dst = prev
	}
}

func (r reader) port(key string, dst *int) {
	prev := *dst
	if r.integer(key, dst) && (*dst < 1 || *dst > 65535) {
		r.failures.Add("%s: %d is not a valid port", key, *dst)
		*dst = prev
	}
}

func (r reader) float(key string, dst *float64) {
	v, ok := r.params[key]
	if !ok {
		return
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		r.failures.Add("%s: %q is not a number", key, v)
		return
	}
	*dst = n
}

func (r reader) boolean(key string, dst *bool) bool {
	v, ok := r.params[key]
	if !ok {
		return false
	}
	b, err := cmdline.ParseBool(v)
	if err != nil {
		r.failures.Add("%s: %q is not a boolean", key, v)
		return false
	}
	*dst = b
	return true
}
