// Package config loads runtime configuration for the steamfetch CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-m string   bucket URL of the depot mirror
//	-d string   download directory
//	-w int      parallel download workers
//	-p int      maximum download passes per reconciliation run
//	-v string   credential vault path
//
// # JSON schema
//
//	{
//	  "mirror_url": "file:///srv/depot-mirror",
//	  "download_dir": "/games",
//	  "workers": 10,
//	  "max_passes": 5,
//	  "store_search_url": "https://store.steampowered.com",
//	  "vault_path": "steamfetch-vault.db"
//	}
//
// Note: This package does not read environment variables; use the JSON file
// or flags to configure values.
package config
