package config

import (
	"flag"
	"os"

	"github.com/pssteam/steamfetch/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   bucket URL of the depot mirror
//	-d string   download directory
//	-w int      number of parallel download workers
//	-p int      maximum download passes per reconciliation run
//	-v string   credential vault path
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-d", "-w", "-p", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.MirrorURL, "m", cfg.MirrorURL, "bucket URL of the depot mirror")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "download directory")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "parallel download workers")
	fs.IntVar(&cfg.MaxPasses, "p", cfg.MaxPasses, "maximum download passes per run")
	fs.StringVar(&cfg.VaultPath, "v", cfg.VaultPath, "credential vault path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
