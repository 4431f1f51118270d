package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "file://./mirror", c.MirrorURL)
	assert.Equal(t, ".", c.DownloadDir)
	assert.Equal(t, 10, c.Workers)
	assert.Equal(t, 5, c.MaxPasses)
	assert.Equal(t, "https://store.steampowered.com", c.StoreSearchURL)
	assert.Equal(t, "steamfetch-vault.db", c.VaultPath)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, 5, cfg.MaxPasses)
}
