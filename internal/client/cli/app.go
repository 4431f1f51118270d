// Package cli implements the interactive menu application: queue management,
// download and verify runs, descriptor generation and account handling.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pssteam/steamfetch/internal/client/config"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/session"
	"github.com/pssteam/steamfetch/internal/steam"
	"github.com/pssteam/steamfetch/internal/storefront"
)

// App is the interactive downloader application: it owns the remote client,
// the session registry and the user-facing menu loop.
type App struct {
	config   *config.Config
	log      logging.Logger
	client   steam.Client
	registry *session.Registry
	store    *storefront.Client

	reader *bufio.Reader
	out    io.Writer

	// queuePath remembers where the active queue was loaded from.
	queuePath string
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	client, err := steam.OpenBlobClient(ctx, cfg.MirrorURL)
	if err != nil {
		return nil, err
	}

	return &App{
		config:   cfg,
		log:      log,
		client:   client,
		registry: session.NewRegistry(client, log),
		store:    storefront.NewClient(cfg.StoreSearchURL),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run drives the menu loop until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.client.Close()

	fmt.Fprintln(a.out, "steamfetch: depot download and repair tool")
	fmt.Fprintln(a.out, "Only load queue files from sources you trust.")

	for {
		a.printMenu(ctx)

		line, err := GetSimpleText(a.reader, "Selection (number)", a.out)
		if err != nil {
			return nil // EOF ends the session
		}

		cmd, ok := parseCommand(line)
		if !ok {
			fmt.Fprintln(a.out, "Invalid selection.")
			continue
		}
		if cmd == CmdExit {
			fmt.Fprintln(a.out, "Exiting.")
			return nil
		}

		if err := dispatch[cmd](a, ctx); err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}

func (a *App) printMenu(ctx context.Context) {
	game := "N/A"
	depotIDs := "None"
	if q, err := a.registry.Queue(); err == nil {
		game = a.registry.AppName(ctx, q.AppID)
		ids := make([]uint32, 0, len(q.Depots))
		for _, d := range q.Depots {
			ids = append(ids, d.DepotID)
		}
		depotIDs = fmt.Sprint(ids)
	}

	status := "not logged in"
	if a.client.LoggedIn() {
		status = "anonymous"
		if u := a.client.Username(); u != "" {
			status = u
		}
	}

	fmt.Fprintf(a.out, `
Logged in:         %s
Game in Queue:     %s
Depot(s) in Queue: %s

`, status, game, depotIDs)

	for _, cmd := range menuOrder {
		fmt.Fprintf(a.out, "%2d. %s\n", int(cmd), commandTitles[cmd])
	}
}
