package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	settings, err := LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, 20*time.Second, settings.HTTPTimeout)
	assert.Equal(t, time.Hour, settings.SessionTTL)
	assert.Equal(t, 45*time.Second, settings.AutoSpacing)
	assert.Equal(t, 10*time.Second, settings.ForcedSpacing)
	assert.Equal(t, 5*time.Minute, settings.PollInterval)
	assert.Empty(t, settings.LogFile)
	assert.Empty(t, settings.Regions)
}

func TestLoadSettings_File(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, appDirName)
	assert.NoError(t, os.MkdirAll(dir, 0o700))
	payload := []byte("poll_interval: 1m\nlog_file: /tmp/schugaa.log\nregions:\n    ru: eu\n")
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), payload, 0o600))

	settings, err := LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, settings.PollInterval)
	assert.Equal(t, "/tmp/schugaa.log", settings.LogFile)
	assert.Equal(t, map[string]string{"ru": "eu"}, settings.Regions)
	// Unset keys keep their defaults.
	assert.Equal(t, 45*time.Second, settings.AutoSpacing)
}

func TestLoadSettings_Env(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCHUGAA_POLL_INTERVAL", "30s")

	settings, err := LoadSettings()
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Second, settings.PollInterval)
}
