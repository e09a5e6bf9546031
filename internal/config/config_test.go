package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesBaseSpecSuggestedValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultGCThreshold, cfg.GCThreshold)
	assert.Equal(t, DefaultFramePoolPrefix, cfg.FramePoolPrefix)
	assert.Equal(t, DefaultStackDepthLimit, cfg.StackDepthLimit)
	assert.NotEqual(t, cfg.InstanceID.String(), Default().InstanceID.String())
}

func TestLoad_PartialDocumentKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultGCThreshold, cfg.GCThreshold)
	assert.Equal(t, DefaultFramePoolPrefix, cfg.FramePoolPrefix)
}

func TestLoad_FullDocumentOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "gc_threshold: 50\nstack_depth_limit: 20\nframe_pool_prefix: 4\ndebug: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.GCThreshold)
	assert.Equal(t, 20, cfg.StackDepthLimit)
	assert.Equal(t, 4, cfg.FramePoolPrefix)
	assert.True(t, cfg.Debug)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDebugTrace_HumanizesCounts(t *testing.T) {
	cfg := Default()
	s := DebugTrace(cfg.InstanceID, 12480, 730, 1000)
	assert.Contains(t, s, "12,480 objects")
	assert.Contains(t, s, "730 of")
	assert.Contains(t, s, "1,000 allocations")
}
