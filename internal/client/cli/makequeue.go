package cli

import (
	"context"
	"fmt"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/sfd"
)

// makeQueue builds a queue file from scratch by fetching depot keys and
// manifest payloads from the remote service. Requires a session.
func (a *App) makeQueue(ctx context.Context) error {
	if !a.client.LoggedIn() {
		return common.ErrNotLoggedIn
	}

	appID, err := GetUint(a.reader, "AppID", a.out)
	if err != nil {
		return err
	}

	var records []sfd.DepotRecord
	seen := make(map[uint32]bool)
	for {
		depotID, err := GetUint(a.reader, "DepotID (0 to finish)", a.out)
		if err != nil {
			return err
		}
		if depotID == 0 {
			break
		}
		if seen[uint32(depotID)] {
			fmt.Fprintf(a.out, "Depot %d is already in the queue.\n", depotID)
			continue
		}
		manifestID, err := GetUint(a.reader, fmt.Sprintf("ManifestID for depot %d", depotID), a.out)
		if err != nil {
			return err
		}

		key, err := a.client.DepotKey(ctx, uint32(appID), uint32(depotID))
		if err != nil {
			fmt.Fprintf(a.out, "Skipping depot %d: %v\n", depotID, err)
			continue
		}
		payload, err := a.client.FetchManifest(ctx, uint32(appID), uint32(depotID), manifestID)
		if err != nil {
			fmt.Fprintf(a.out, "Skipping depot %d: %v\n", depotID, err)
			continue
		}

		seen[uint32(depotID)] = true
		records = append(records, sfd.DepotRecord{
			DepotID:    uint32(depotID),
			ManifestID: manifestID,
			Key:        key,
			Payload:    payload,
		})
		fmt.Fprintf(a.out, "Added depot %d (manifest %d).\n", depotID, manifestID)
	}

	if len(records) == 0 {
		fmt.Fprintln(a.out, "Nothing to write.")
		return nil
	}

	outPath := fmt.Sprintf("%d.sfd", appID)
	if err := a.saveQueueFile(outPath, &sfd.Queue{AppID: uint32(appID), Depots: records}); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	a.log.Info(ctx, "queue file created", "path", outPath, "app", appID, "depots", len(records))
	fmt.Fprintf(a.out, "Wrote %s with %d depot(s).\n", outPath, len(records))
	return nil
}
