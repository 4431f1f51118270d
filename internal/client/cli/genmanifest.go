package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pssteam/steamfetch/internal/acf"
	"github.com/pssteam/steamfetch/internal/filex"
)

// generateManifest builds an appmanifest.acf for any app from its product
// metadata, independent of the download queue.
func (a *App) generateManifest(ctx context.Context) error {
	if err := a.ensureLoggedIn(ctx); err != nil {
		return err
	}

	appID, err := GetUint(a.reader, "AppID", a.out)
	if err != nil {
		return err
	}
	dir, err := GetSimpleText(a.reader, "Output directory (empty for current)", a.out)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = "."
	}

	info, err := a.client.ProductInfo(ctx, uint32(appID))
	if err != nil {
		return fmt.Errorf("product info for app %d: %w", appID, err)
	}

	depots := make([]acf.Depot, 0, len(info.Depots))
	for id, d := range info.Depots {
		depots = append(depots, acf.Depot{
			ID:         id,
			ManifestID: d.ManifestID,
			Size:       d.Size,
			DLCAppID:   d.DLCAppID,
		})
	}

	doc := acf.Build(uint32(appID), acf.App{
		Name:       info.Name,
		InstallDir: info.InstallDir,
		BuildID:    info.BuildID,
	}, depots, info.SharedDepots)

	path := filepath.Join(dir, acf.FileName(uint32(appID)))
	if err := filex.WriteFileAtomic(path, []byte(doc), 0o660); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}

	a.log.Info(ctx, "descriptor generated", "app", appID, "path", path)
	fmt.Fprintf(a.out, "Wrote %s.\n", path)
	return nil
}
