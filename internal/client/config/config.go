package config

// Config holds runtime settings for the steamfetch CLI.
//
// Fields:
//   - MirrorURL: bucket URL of the depot mirror serving keys, manifests and
//     chunks (file://, s3://, mem://).
//   - DownloadDir: directory game trees are reconciled under.
//   - Workers: how many files are downloaded simultaneously.
//   - MaxPasses: bound on download passes per reconciliation run.
//   - StoreSearchURL: base URL of the storefront search API.
//   - VaultPath: location of the credential vault file.
type Config struct {
	MirrorURL      string
	DownloadDir    string
	Workers        int
	MaxPasses      int
	StoreSearchURL string
	VaultPath      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.MirrorURL = "file://./mirror"
	c.DownloadDir = "."
	c.Workers = 10
	c.MaxPasses = 5
	c.StoreSearchURL = "https://store.steampowered.com"
	c.VaultPath = "steamfetch-vault.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
