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

package inspector

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/baremetal-agent/pkg/errors"
	"github.com/NVIDIA/baremetal-agent/pkg/executor"
	"github.com/NVIDIA/baremetal-agent/pkg/failures"
)

type response struct {
	stdout string
	err    error
}

type fakeRunner struct {
	argv      [][]string
	responses map[string]response
}

func (f *fakeRunner) Execute(_ context.Context, name string, args []string, _ ...executor.ExecOption) (string, string, error) {
	f.argv = append(f.argv, append([]string{name}, args...))
	r := f.responses[name]
	return r.stdout, "", r.err
}

func newRunner(responses map[string]response) *fakeRunner {
	return &fakeRunner{responses: responses}
}

func TestCollectExtraHardware_NoBenchmarks(t *testing.T) {
	runner := newRunner(map[string]response{"hardware-detect": {stdout: "[1, 2, 3]"}})
	data := map[string]any{}

	CollectExtraHardware(context.TODO(), runner, nil, data, nil)

	assert.Equal(t, map[string]any{"data": []any{float64(1), float64(2), float64(3)}}, data)
	assert.Equal(t, [][]string{{"hardware-detect"}}, runner.argv)
}

func TestCollectExtraHardware_Benchmarks(t *testing.T) {
	runner := newRunner(map[string]response{"hardware-detect": {stdout: "[1, 2, 3]"}})
	data := map[string]any{}

	CollectExtraHardware(context.TODO(), runner,
		map[string]string{ParamBenchmarks: "cpu,mem"}, data, nil)

	assert.Contains(t, data, "data")
	assert.Equal(t, [][]string{{"hardware-detect", "--benchmark", "cpu", "mem"}}, runner.argv)
}

func TestCollectExtraHardware_ExecuteFailed(t *testing.T) {
	runner := newRunner(map[string]response{"hardware-detect": {
		err: &executor.ProcessExecutionError{Command: "hardware-detect", ExitCode: 1, Attempts: 1},
	}})
	data := map[string]any{}
	f := failures.New()

	CollectExtraHardware(context.TODO(), runner, nil, data, f)

	assert.NotContains(t, data, "data")
	assert.True(t, f.HasFailures())
	assert.Len(t, runner.argv, 1)
}

func TestCollectExtraHardware_ParsingFailed(t *testing.T) {
	runner := newRunner(map[string]response{"hardware-detect": {stdout: "foobar"}})
	data := map[string]any{}
	f := failures.New()

	CollectExtraHardware(context.TODO(), runner, nil, data, f)

	assert.NotContains(t, data, "data")
	assert.True(t, f.HasFailures())
	assert.Contains(t, f.Get(), "non-JSON")
}

func TestCollectDefault(t *testing.T) {
	params := map[string]string{
		"BOOTIF":      "01-11-22-33-AA-bb-CC",
		"root_device": "vendor=ACME,size=100",
	}
	i := New(newRunner(nil), params)

	data, err := i.Inspect(context.TODO(), nil)
	require.NoError(t, err)
	assert.Equal(t, "11:22:33:aa:bb:cc", data["boot_interface"])
	assert.Equal(t, map[string]any{"vendor": "acme", "size": 100}, data["root_device_hints"])
}

func TestCollectDefault_BadHints(t *testing.T) {
	i := New(newRunner(nil), map[string]string{"root_device": "foo=bar"})

	data, err := i.Inspect(context.TODO(), []string{CollectorDefault})
	require.Error(t, err)
	assert.NotNil(t, data)
	assert.NotContains(t, data, "root_device_hints")
	assert.Contains(t, err.Error(), failures.Banner)
	assert.Contains(t, err.Error(), "foo")
}

func TestCollectLogs(t *testing.T) {
	contents := "journal contents мяу"
	runner := newRunner(map[string]response{"journalctl": {stdout: contents}})
	i := New(runner, nil)

	data, err := i.Inspect(context.TODO(), []string{CollectorLogs})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"journalctl", "--full", "--no-pager", "-b", "-n", "10000"}}, runner.argv)

	raw, err := base64.StdEncoding.DecodeString(data["logs"].(string))
	require.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "journal", hdr.Name)
	assert.Equal(t, int64(len(contents)), hdr.Size)
	b, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, contents, string(b))

	_, err = tr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCollectLogs_NoJournal(t *testing.T) {
	runner := newRunner(map[string]response{"journalctl": {err: stderrors.New("executable file not found")}})
	i := New(runner, nil)

	data, err := i.Inspect(context.TODO(), []string{CollectorLogs})
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestInspect_UnknownCollector(t *testing.T) {
	runner := newRunner(nil)
	i := New(runner, nil)

	data, err := i.Inspect(context.TODO(), []string{"default", "foobar"})
	require.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, errors.ErrCodeUnknownArgument, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "foobar")
	assert.Empty(t, runner.argv, "no collector runs when one is unknown")
}

func TestInspect_RunsAllCollectors(t *testing.T) {
	var order []string
	i := New(newRunner(nil), nil,
		WithCollector("foo", func(_ context.Context, data map[string]any, f *failures.Failures) {
			order = append(order, "foo")
			f.Add("boom")
		}),
		WithCollector("bar", func(_ context.Context, data map[string]any, _ *failures.Failures) {
			order = append(order, "bar")
			data["bar"] = true
		}),
	)

	data, err := i.Inspect(context.TODO(), []string{"foo", "bar"})
	require.Error(t, err)
	assert.Equal(t, []string{"foo", "bar"}, order)
	assert.Equal(t, map[string]any{"bar": true}, data)
	assert.Contains(t, err.Error(), "boom")
}

func TestNames(t *testing.T) {
	i := New(newRunner(nil), nil, WithCollector("zzz", nil))
	assert.Equal(t, []string{"default", "extra-hardware", "logs", "zzz"}, i.Names())
}

func TestNormalizeMAC(t *testing.T) {
	tests := map[string]string{
		"11:22:33:aa:BB:cc":     "11:22:33:aa:bb:cc",
		"01-11-22-33-aa-BB-cc":  "11:22:33:aa:bb:cc",
		"11-22-33-aa-bb-cc":     "11:22:33:aa:bb:cc",
		" 01-cd-ef-01-02-03-04": "cd:ef:01:02:03:04",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeMAC(in), in)
	}
}
