package config

import (
	"encoding/json"
	"os"

	"github.com/pssteam/steamfetch/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// mean "not set" and leave the corresponding Config field untouched.
type JsonConfig struct {
	MirrorURL      string `json:"mirror_url"`
	DownloadDir    string `json:"download_dir"`
	Workers        int    `json:"workers"`
	MaxPasses      int    `json:"max_passes"`
	StoreSearchURL string `json:"store_search_url"`
	VaultPath      string `json:"vault_path"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flags. With no such flag nothing is loaded. Read or
// unmarshal errors panic; LoadConfig runs before any state exists worth
// preserving.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.MirrorURL != "" {
		cfg.MirrorURL = jc.MirrorURL
	}
	if jc.DownloadDir != "" {
		cfg.DownloadDir = jc.DownloadDir
	}
	if jc.Workers != 0 {
		cfg.Workers = jc.Workers
	}
	if jc.MaxPasses != 0 {
		cfg.MaxPasses = jc.MaxPasses
	}
	if jc.StoreSearchURL != "" {
		cfg.StoreSearchURL = jc.StoreSearchURL
	}
	if jc.VaultPath != "" {
		cfg.VaultPath = jc.VaultPath
	}
}
