package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pssteam/steamfetch/internal/acf"
	"github.com/pssteam/steamfetch/internal/aggregate"
	"github.com/pssteam/steamfetch/internal/download"
	"github.com/pssteam/steamfetch/internal/filex"
	"github.com/pssteam/steamfetch/internal/reconcile"
)

// downloadGame runs the queued depots through aggregation and reconciliation.
// With verifyOnly the first pass only scans and asks before repairing.
func (a *App) downloadGame(ctx context.Context, verifyOnly bool) error {
	q, err := a.registry.Queue()
	if err != nil {
		return err
	}
	if err := a.ensureLoggedIn(ctx); err != nil {
		return err
	}

	release, err := a.registry.BeginRun()
	if err != nil {
		return err
	}
	defer release()

	name := a.registry.AppName(ctx, q.AppID)
	baseDir := filepath.Join(a.config.DownloadDir, filex.SanitizeName(name))
	if err := filex.EnsureDir(baseDir); err != nil {
		return err
	}

	set, events := aggregate.Aggregate(ctx, a.registry, q.AppID, q.Depots, a.log)
	if len(set) == 0 {
		return fmt.Errorf("no files resolved from %d queued depot(s)", len(q.Depots))
	}
	fmt.Fprintf(a.out, "Target: %s (%d files, %s)\n", name, len(set), formatBytes(set.TotalSize()))

	total := set.TotalSize()
	progress := func(written, _ int64) {
		fmt.Fprintf(a.out, "\rDownloaded %s of %s", formatBytes(written), formatBytes(total))
	}

	scheduler := download.NewScheduler(a.client, q.AppID, a.config.Workers, a.log, progress)
	confirm := func(files int, missingBytes int64) bool {
		fmt.Fprintf(a.out, "%d file(s) are missing or damaged (%s to download).\n",
			files, formatBytes(missingBytes))
		ok, err := GetYesNo(a.reader, "Repair them now?", a.out)
		return err == nil && ok
	}

	rec := reconcile.NewReconciler(scheduler, confirm, a.config.MaxPasses, a.log)
	res, err := rec.Run(ctx, set, baseDir, verifyOnly)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out)

	switch res.State {
	case reconcile.StateDone:
		fmt.Fprintf(a.out, "All files verified after %d pass(es), %s downloaded.\n",
			res.VerifyPasses, formatBytes(res.BytesDownloaded))
	case reconcile.StateCancelled:
		fmt.Fprintf(a.out, "Run cancelled: %s.\n", res.Reason)
		return nil
	}

	if err := aggregate.WriteAuditLog(baseDir, events); err != nil {
		a.log.Warn(ctx, "could not write overwrite audit log", "error", err)
	} else if len(events) > 0 {
		fmt.Fprintf(a.out, "%d overwritten file version(s) recorded in %s.\n",
			len(events), aggregate.AuditLogName)
	}

	a.writeDescriptor(ctx, q.AppID, baseDir)
	return nil
}

// writeDescriptor emits the appmanifest.acf next to the downloaded tree.
// Missing product metadata only skips the descriptor, never fails the run.
func (a *App) writeDescriptor(ctx context.Context, appID uint32, baseDir string) {
	info, err := a.client.ProductInfo(ctx, appID)
	if err != nil {
		a.log.Warn(ctx, "no product info, skipping descriptor", "app", appID, "error", err)
		return
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

	doc := acf.Build(appID, acf.App{
		Name:       info.Name,
		InstallDir: info.InstallDir,
		BuildID:    info.BuildID,
	}, depots, info.SharedDepots)

	path := filepath.Join(baseDir, acf.FileName(appID))
	if err := filex.WriteFileAtomic(path, []byte(doc), 0o660); err != nil {
		a.log.Warn(ctx, "could not write descriptor", "path", path, "error", err)
		return
	}
	fmt.Fprintf(a.out, "Wrote %s.\n", acf.FileName(appID))
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
