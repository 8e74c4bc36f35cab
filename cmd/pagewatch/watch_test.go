package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/watch"
)

func newWatchCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "watch"}
	addWatchFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadJob_FromFlags(t *testing.T) {
	dir := t.TempDir()
	cmd := newWatchCommand(t,
		"--url", "https://example.com/login",
		"--interval", "5s",
		"--iterations", "3",
		"--output-dir", dir,
		"--headed",
		"--verbosity", "debug",
	)

	job, err := loadJob(cmd, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/login", job.URL)
	assert.Equal(t, 5*time.Second, job.Interval)
	assert.Equal(t, 3, job.Iterations)
	assert.Equal(t, dir, job.OutputDir)
	assert.False(t, job.Headless)
	assert.Equal(t, "debug", job.Logging.Verbosity)
	assert.Equal(t, "load", job.WaitUntil)
}

func TestLoadJob_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: https://example.com/cart
interval: 1m
iterations: 10
reload: true
`), 0600))

	cmd := newWatchCommand(t, "--iterations", "2")
	job, err := loadJob(cmd, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/cart", job.URL)
	assert.Equal(t, time.Minute, job.Interval)
	assert.Equal(t, 2, job.Iterations)
	assert.True(t, job.Reload)
	assert.True(t, job.Headless)
}

func TestLoadJob_RequiresURL(t *testing.T) {
	_, err := loadJob(newWatchCommand(t), nil)
	assert.ErrorContains(t, err, "invalid watch job")
}

func TestJobThresholds(t *testing.T) {
	job := watch.DefaultJobConfig()
	job.Thresholds = changedetect.ThresholdUpdate{
		Major: &changedetect.MajorUpdate{ElementDelta: changedetect.Float(75)},
	}

	got := jobThresholds(job)
	assert.Equal(t, 75.0, got.Major.ElementDelta)
	assert.Equal(t, changedetect.DefaultThresholds().Minor, got.Minor)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "Version: dev")
	assert.Contains(t, out.String(), "Runtime: go")
}
