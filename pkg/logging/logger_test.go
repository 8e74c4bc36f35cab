package logging

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temporary log directory and resets
// its process-wide state.
func setupTestDir(t *testing.T) {
	t.Helper()

	origLogDir, origInitErr := logDir, initErr
	origRunID := runID

	logDir = t.TempDir()
	initErr = nil
	initOnce = sync.Once{}
	runID = ""
	runIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir, initErr = origLogDir, origInitErr
		initOnce = sync.Once{}
		runID = origRunID
		runIDOnce = sync.Once{}
	})
}

func TestNewLogger_WritesFile(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("detector")
	require.NoError(t, err)
	defer logger.Close()

	assert.NotEmpty(t, logger.RunID())
	assert.True(t, strings.HasSuffix(logger.LogPath(), logger.RunID()+"-pagewatch.log"))

	logger.Infof("classified %s", "major")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(content), "[detector] [INFO] classified major")
}

func TestNewLogger_SharedFile(t *testing.T) {
	setupTestDir(t)

	a, err := NewLogger("a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewLogger("b")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, a.LogPath(), b.LogPath())
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("watch", &buf, LevelWarn)

	logger.Debugf("debug")
	logger.Infof("info")
	logger.Warnf("warn")
	logger.Errorf("error")

	out := buf.String()
	assert.NotContains(t, out, "[DEBUG]")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[watch] [WARN] warn")
	assert.Contains(t, out, "[watch] [ERROR] error")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("browser", &buf, LevelDebug).With("main")

	logger.Debugf("captured")
	assert.Contains(t, buf.String(), "[browser/main] [DEBUG] captured")
}

func TestLogger_NilAndDiscard(t *testing.T) {
	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.Infof("ignored") })
	assert.NotPanics(t, func() { Discard().Errorf("ignored") })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"verbose": LevelDebug,
		"normal":  LevelInfo,
		"":        LevelInfo,
		"quiet":   LevelWarn,
		"ERROR":   LevelError,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("c", &buf, LevelDebug)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Infof("entry %d", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "\n"))
}
