package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args []string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = args
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-m", "mem://", "-d", "/games", "-w", "4", "-p", "2", "-v", "my.db"},
			want: Config{
				MirrorURL: "mem://", DownloadDir: "/games", Workers: 4, MaxPasses: 2,
				StoreSearchURL: "https://store.steampowered.com", VaultPath: "my.db",
			},
		},
		{
			name: "no flags keeps defaults",
			args: []string{"cmd"},
			want: Config{
				MirrorURL: "file://./mirror", DownloadDir: ".", Workers: 10, MaxPasses: 5,
				StoreSearchURL: "https://store.steampowered.com", VaultPath: "steamfetch-vault.db",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args)

			var cfg Config
			cfg.LoadDefaults()
			parseFlags(&cfg)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestParseJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"mirror_url": "s3://depots",
		"workers": 3
	}`), 0o644))

	withArgs(t, []string{"cmd", "-c", path})

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "s3://depots", cfg.MirrorURL)
	assert.Equal(t, 3, cfg.Workers)
	// Unset JSON fields keep their defaults.
	assert.Equal(t, 5, cfg.MaxPasses)
	assert.Equal(t, ".", cfg.DownloadDir)
}

func TestLoadConfig_FlagsOverrideJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"workers": 3}`), 0o644))

	withArgs(t, []string{"cmd", "-c", path, "-w", "7"})

	cfg := LoadConfig()
	assert.Equal(t, 7, cfg.Workers)
}
