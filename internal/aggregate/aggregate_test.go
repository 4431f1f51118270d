package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/manifest"
	"github.com/pssteam/steamfetch/internal/sfd"
)

// mapSource serves manifests from a map keyed by depot id.
type mapSource map[uint32]*manifest.Manifest

func (s mapSource) Manifest(ctx context.Context, appID, depotID uint32, manifestID uint64) (*manifest.Manifest, error) {
	m, ok := s[depotID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return m, nil
}

func entry(path string, size int64) manifest.FileEntry {
	e := manifest.FileEntry{Path: path, Size: size}
	if size > 0 {
		e.Chunks = []manifest.Chunk{{Offset: 0, Size: size}}
	}
	return e
}

func depots(ids ...uint32) []sfd.DepotRecord {
	var out []sfd.DepotRecord
	for _, id := range ids {
		out = append(out, sfd.DepotRecord{DepotID: id, ManifestID: uint64(id) * 10})
	}
	return out
}

func TestAggregate_LastWriterWins(t *testing.T) {
	src := mapSource{
		401: {Files: []manifest.FileEntry{entry("shared.txt", 10), entry("base.txt", 5)}},
		402: {Files: []manifest.FileEntry{entry("shared.txt", 20), entry("dlc.txt", 7)}},
	}

	set, events := Aggregate(context.Background(), src, 620, depots(401, 402), logging.Discard())

	require.Len(t, set, 3)
	assert.Equal(t, uint32(402), set["shared.txt"].DepotID)
	assert.Equal(t, int64(20), set["shared.txt"].Entry.Size)
	assert.Equal(t, uint32(401), set["base.txt"].DepotID)

	require.Len(t, events, 1)
	assert.Equal(t, OverwriteEvent{Path: "shared.txt", SupersededDepot: 401, WinningDepot: 402}, events[0])
}

func TestAggregate_EventOrderFollowsEncounter(t *testing.T) {
	src := mapSource{
		1: {Files: []manifest.FileEntry{entry("b", 1), entry("a", 1)}},
		2: {Files: []manifest.FileEntry{entry("b", 2), entry("a", 2)}},
	}

	_, events := Aggregate(context.Background(), src, 620, depots(1, 2), logging.Discard())

	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Path)
	assert.Equal(t, "a", events[1].Path)
}

func TestAggregate_SkipsUnresolvableDepot(t *testing.T) {
	src := mapSource{
		401: {Files: []manifest.FileEntry{entry("base.txt", 5)}},
	}

	set, events := Aggregate(context.Background(), src, 620, depots(401, 999), logging.Discard())

	require.Len(t, set, 1)
	assert.Empty(t, events)
}

func TestAggregate_EmptyDepotList(t *testing.T) {
	set, events := Aggregate(context.Background(), mapSource{}, 620, nil, logging.Discard())
	assert.Empty(t, set)
	assert.Empty(t, events)
}

func TestTargetFileSet_SortedPathsAndTotalSize(t *testing.T) {
	dir := entry("dirs/sub", 0)
	dir.IsDirectory = true
	src := mapSource{
		1: {Files: []manifest.FileEntry{entry("z.txt", 10), entry("a.txt", 5), dir}},
	}

	set, _ := Aggregate(context.Background(), src, 620, depots(1), logging.Discard())

	assert.Equal(t, []string{"a.txt", "dirs/sub", "z.txt"}, set.SortedPaths())
	assert.Equal(t, int64(15), set.TotalSize())
}

func TestWriteAuditLog(t *testing.T) {
	dir := t.TempDir()

	// No events, no file.
	require.NoError(t, WriteAuditLog(dir, nil))
	_, err := os.Stat(filepath.Join(dir, AuditLogName))
	require.True(t, os.IsNotExist(err))

	events := []OverwriteEvent{
		{Path: "shared.txt", SupersededDepot: 401, WinningDepot: 402},
		{Path: "other.txt", SupersededDepot: 402, WinningDepot: 403},
	}
	require.NoError(t, WriteAuditLog(dir, events))

	data, err := os.ReadFile(filepath.Join(dir, AuditLogName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "File 'shared.txt' from Depot 401 was overwritten by Depot 402.", lines[2])
	assert.Equal(t, "File 'other.txt' from Depot 402 was overwritten by Depot 403.", lines[3])
}
