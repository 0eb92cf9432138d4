package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReloaderBuildsInitialEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, SaveSettings(path, Settings{Active: ProviderConfig{
		Provider: "ollama",
		Endpoint: "http://localhost:11434",
		Model:    "llama3.1",
	}}))

	r, err := NewReloader(context.Background(), path, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, r.Engine())
}

func TestNewReloader_BadSettingsFails(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "settings.json")
	// Defaults target gemini, which needs a key from somewhere.
	_, err := NewReloader(context.Background(), path, testLogger())
	assert.Error(t, err)
}

func TestReloaderWatchPicksUpSettingsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, SaveSettings(path, Settings{Active: ProviderConfig{
		Provider: "ollama",
		Endpoint: "http://localhost:11434",
		Model:    "llama3.1",
	}}))

	r, err := NewReloader(context.Background(), path, testLogger())
	require.NoError(t, err)
	first := r.Engine()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Watch(ctx)
		close(done)
	}()

	// Give the watcher a moment to attach before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, SaveSettings(path, Settings{Active: ProviderConfig{
		Provider: "ollama",
		Endpoint: "http://localhost:11434",
		Model:    "mistral",
	}}))

	require.Eventually(t, func() bool {
		return r.Engine() != first
	}, 3*time.Second, 50*time.Millisecond, "engine should be rebuilt after the settings file changes")

	cancel()
	<-done
}

func TestReloaderKeepsEngineOnBrokenRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, SaveSettings(path, Settings{Active: ProviderConfig{
		Provider: "ollama",
		Endpoint: "http://localhost:11434",
		Model:    "llama3.1",
	}}))

	r, err := NewReloader(context.Background(), path, testLogger())
	require.NoError(t, err)
	first := r.Engine()

	// A direct reload against a broken file keeps the previous engine.
	require.NoError(t, writeBroken(path))
	r.reload(context.Background())
	assert.Same(t, first, r.Engine())
}

func writeBroken(path string) error {
	return os.WriteFile(path, []byte(`{broken json`), 0o644)
}
