package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesBothLogFiles(t *testing.T) {
	dir := t.TempDir()
	log, err := New(INFO, dir)
	require.NoError(t, err)
	defer log.Close()

	log.Info("operational entry")
	log.Narrative("narrative entry %d", 1)
	log.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "xsslab_operational_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	operational, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(operational), "operational entry")

	matches, err = filepath.Glob(filepath.Join(dir, "xsslab_explained_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	narrative, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(narrative), "narrative entry 1")
}

func TestMinLevelFiltersOperationalStream(t *testing.T) {
	dir := t.TempDir()
	log, err := New(WARN, dir)
	require.NoError(t, err)

	log.Debug("too quiet to appear")
	log.Warn("loud enough")
	log.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "xsslab_operational_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.NotContains(t, string(content), "too quiet to appear")
	assert.Contains(t, string(content), "loud enough")
}

func TestWritesAfterCloseAreDiscarded(t *testing.T) {
	dir := t.TempDir()
	log, err := New(INFO, dir)
	require.NoError(t, err)

	log.Info("before close")
	log.Narrative("story before close")
	log.Close()

	// Late writes (e.g. from the walkthrough goroutine while the interrupt
	// path is exiting) must be dropped, not sent to closed file handles.
	assert.NotPanics(t, func() {
		log.Info("after close")
		log.Narrative("story after close")
	})

	matches, err := filepath.Glob(filepath.Join(dir, "xsslab_operational_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	operational, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(operational), "before close")
	assert.NotContains(t, string(operational), "after close")

	matches, err = filepath.Glob(filepath.Join(dir, "xsslab_explained_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	narrative, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(narrative), "story before close")
	assert.NotContains(t, string(narrative), "story after close")
}

func TestClose_Idempotent(t *testing.T) {
	log, err := New(INFO, t.TempDir())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		log.Close()
		log.Close()
	})
}
