package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/wrangler"
)

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	f := &runFlags{}
	cmd := newRunCommand(f)
	require.NoError(t, cmd.ParseFlags([]string{
		"--merge-mode", "append",
		"--date-columns", "signup, last_seen",
		"--na-policy", "fill",
		"--na-fill-value", "0",
		"--delimiter", "tab",
	}))

	cfg := config.Defaults()
	cfg.JoinType = "inner"
	require.NoError(t, applyFlags(cmd, f, cfg))

	assert.Equal(t, "append", cfg.MergeMode)
	assert.Equal(t, "inner", cfg.JoinType)
	assert.Equal(t, []string{"signup", "last_seen"}, cfg.DateColumns)
	assert.Equal(t, "fill", cfg.NullPolicy)
	assert.True(t, cfg.HasFillValue)
	assert.Equal(t, "0", cfg.FillValue)
	assert.Equal(t, "tab", cfg.Delimiter)
	assert.True(t, cfg.RemoveDuplicates)
	assert.Nil(t, cfg.Postgres)
}

func TestRunCommandWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(input, []byte("Name,Score\nAda,1\nAda,1\nGrace,2\n"), 0o644))

	out := filepath.Join(dir, "out", "cleaned.csv")
	report := filepath.Join(dir, "out", "report.txt")
	logPath := filepath.Join(dir, "out", "log.txt")

	cmd := newRunCommand(&runFlags{})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{input, "--output", out, "--report", report, "--log", logPath, "--log-level", "error"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "name,score\nAda,1\nGrace,2\n", string(data))

	assert.FileExists(t, report)
	logText, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logText), "Clean people")
	assert.Contains(t, stdout.String(), "DATA WRANGLER QUALITY REPORT")
}

func TestRunCommandNoReadableFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "log.txt")

	var stderr bytes.Buffer
	cmd := newRunCommand(&runFlags{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{filepath.Join(dir, "missing.csv"), "--log", logPath, "--log-level", "error"})
	err := cmd.Execute()
	require.ErrorIs(t, err, wrangler.ErrNoReadableFiles)

	assert.Contains(t, stderr.String(), "missing.csv")
	_, statErr := os.Stat(logPath)
	assert.True(t, os.IsNotExist(statErr), "no processing log is written")
}

func TestRunCommandRejectsBadOption(t *testing.T) {
	input := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(input, []byte("a\n1\n"), 0o644))

	cmd := newRunCommand(&runFlags{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{input, "--merge-mode", "zigzag"})
	assert.Error(t, cmd.Execute())
}
