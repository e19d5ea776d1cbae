package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "born-vision "+version+"\n", out.String())
}

func TestRun_Summary(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		output string
		params string
	}{
		{"inception", []string{"-block", "inception", "-in", "8", "-out", "16", "-size", "6"}, "Output:     [1 16 6 6]", "Parameters: 600"},
		{"se", []string{"-block", "se", "-in", "32", "-batch", "2", "-size", "4"}, "Output:     [2 32 4 4]", "Parameters: 128"},
		{"cbam", []string{"-block", "cbam", "-in", "16", "-size", "5"}, "Output:     [1 16 5 5]", "Parameters: 162"},
		{"cbam ratio", []string{"-block", "cbam", "-in", "16", "-ratio", "4", "-size", "5"}, "Output:     [1 16 5 5]", "Parameters: 226"},
		{"cbam ignores se reduction", []string{"-block", "cbam", "-in", "16", "-reduction", "16", "-size", "5"}, "Output:     [1 16 5 5]", "Parameters: 162"},
		{"conv3x3", []string{"-block", "conv3x3", "-in", "3", "-out", "4", "-size", "5"}, "Output:     [1 4 5 5]", "Parameters: 108"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run(append([]string{"summary"}, tt.args...), &out))
			assert.Contains(t, out.String(), tt.output)
			assert.Contains(t, out.String(), tt.params)
			assert.Contains(t, out.String(), "Backend:    CPU")
		})
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"train"}, &out))
	assert.ErrorContains(t, run([]string{"summary", "-block", "inception", "-out", "10"}, &out), "not divisible")
	assert.ErrorContains(t, run([]string{"summary", "-block", "resnet"}, &out), "unknown block")
	assert.ErrorContains(t, run([]string{"summary", "-backend", "tpu"}, &out), "unknown backend")
	assert.ErrorContains(t, run([]string{"summary", "-size", "0"}, &out), "must be positive")
}
