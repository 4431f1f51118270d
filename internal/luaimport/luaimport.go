// Package luaimport converts lua unlock scripts plus sibling raw manifest
// files into depot records ready for queue persistence.
//
// Two directive shapes are recognized:
//
//	addappid(<depot_id>, <n>, "<hex_key>")
//	setManifestid(<depot_id>, "<manifest_id>" ...)
//
// A depot is importable once it has both a key and a manifest id and a local
// file named {depot_id}_{manifest_id}.manifest exists next to the script.
// Depots missing any piece are dropped with a warning; partial success is
// allowed.
package luaimport

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/sfd"
)

var (
	reAddAppID     = regexp.MustCompile(`addappid\(\s*(\d+)\s*,\s*\d+\s*,\s*"([a-fA-F0-9]+)"\s*\)`)
	reSetManifest  = regexp.MustCompile(`setManifestid\(\s*(\d+)\s*,\s*"(\d+)"`)
	manifestSuffix = ".manifest"
)

type parsedDepot struct {
	key        string
	manifestID string
}

// Import scans the lua script at path and returns the depot records it could
// fully resolve, ordered by first appearance of each depot's key directive.
// It fails only when nothing at all could be imported.
func Import(ctx context.Context, path string, log logging.Logger) ([]sfd.DepotRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	depots := make(map[uint32]*parsedDepot)
	var order []uint32

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if m := reAddAppID.FindStringSubmatch(line); m != nil {
			id := parseID(m[1])
			if _, ok := depots[id]; !ok {
				order = append(order, id)
			}
			depots[id] = &parsedDepot{key: m[2]}
			continue
		}
		if m := reSetManifest.FindStringSubmatch(line); m != nil {
			id := parseID(m[1])
			// A manifest id without a preceding key directive is unusable.
			if d, ok := depots[id]; ok {
				d.manifestID = m[2]
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	dir := filepath.Dir(path)
	var records []sfd.DepotRecord
	for _, id := range order {
		d := depots[id]
		if d.manifestID == "" {
			log.Warn(ctx, "depot has no manifest id, dropping", "depot", id)
			continue
		}
		key, err := hex.DecodeString(d.key)
		if err != nil {
			log.Warn(ctx, "depot key is not valid hex, dropping", "depot", id, "error", err)
			continue
		}
		manifestID, err := strconv.ParseUint(d.manifestID, 10, 64)
		if err != nil {
			log.Warn(ctx, "manifest id out of range, dropping", "depot", id, "error", err)
			continue
		}

		manifestPath := filepath.Join(dir, fmt.Sprintf("%d_%s%s", id, d.manifestID, manifestSuffix))
		payload, err := os.ReadFile(manifestPath)
		if err != nil {
			log.Warn(ctx, "manifest file not found, dropping depot",
				"depot", id, "path", manifestPath)
			continue
		}

		records = append(records, sfd.DepotRecord{
			DepotID:    id,
			ManifestID: manifestID,
			Key:        key,
			Payload:    payload,
		})
		log.Info(ctx, "processed depot", "depot", id, "manifest", manifestID)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no importable depots in %s: %w", filepath.Base(path), common.ErrNotFound)
	}
	return records, nil
}

func parseID(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}
