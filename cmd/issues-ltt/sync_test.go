// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteActionOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(path, []byte("previous=step\n"), 0o644))
	t.Setenv("GITHUB_OUTPUT", path)

	require.NoError(t, writeActionOutput("outcome", "appended"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous=step\noutcome=appended\n", string(data))
}

func TestWriteActionOutput_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_OUTPUT", path)

	require.NoError(t, writeActionOutput("outcome", "unchanged"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "outcome=unchanged\n", string(data))
}

func TestWriteActionOutput_OutsideActions(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")
	assert.NoError(t, writeActionOutput("outcome", "updated"))
}

func TestWriteActionOutput_BadPath(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", filepath.Join(t.TempDir(), "missing", "out"))
	assert.Error(t, writeActionOutput("outcome", "updated"))
}
