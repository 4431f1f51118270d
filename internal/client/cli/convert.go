package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pssteam/steamfetch/internal/luaimport"
	"github.com/pssteam/steamfetch/internal/sfd"
)

// convertLua imports a lua depot script plus its sibling manifest files into
// a queue file, then loads the result as the active queue.
func (a *App) convertLua(ctx context.Context) error {
	path, err := a.selectFile(".lua")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(a.out, "Conversion cancelled.")
		return nil
	}

	appID, err := GetUint(a.reader, "AppID for this queue", a.out)
	if err != nil {
		return err
	}

	records, err := luaimport.Import(ctx, path, a.log)
	if err != nil {
		return fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}

	q := &sfd.Queue{AppID: uint32(appID), Depots: records}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(filepath.Dir(path), base+"_converted.sfd")
	if err := a.saveQueueFile(outPath, q); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	a.log.Info(ctx, "lua script converted", "source", path, "queue", outPath, "depots", len(records))
	fmt.Fprintf(a.out, "Wrote %s with %d depot(s).\n", outPath, len(records))

	return a.loadQueueFromPath(ctx, outPath)
}
