// Package aggregate merges the file lists of every queued depot into a single
// target file set. Depots later in the queue silently take precedence over
// earlier ones for identical paths; every such collision is recorded as an
// overwrite event, in encounter order, for the audit log.
package aggregate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pssteam/steamfetch/internal/filex"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/manifest"
	"github.com/pssteam/steamfetch/internal/sfd"
)

// TargetFile binds a file entry to the depot that won it.
type TargetFile struct {
	Entry   *manifest.FileEntry
	DepotID uint32
}

// TargetFileSet maps each relative path to exactly one target file.
type TargetFileSet map[string]TargetFile

// OverwriteEvent records one path collision: which depot's version was
// superseded and which depot won.
type OverwriteEvent struct {
	Path            string
	SupersededDepot uint32
	WinningDepot    uint32
}

// ManifestSource resolves decoded manifests; satisfied by session.Registry.
type ManifestSource interface {
	Manifest(ctx context.Context, appID, depotID uint32, manifestID uint64) (*manifest.Manifest, error)
}

// Aggregate walks the depots in queue order and builds the target file set
// with last-writer-wins override resolution. A depot whose manifest cannot be
// resolved is skipped with a warning; an empty depot list yields an empty set.
func Aggregate(ctx context.Context, src ManifestSource, appID uint32, depots []sfd.DepotRecord, log logging.Logger) (TargetFileSet, []OverwriteEvent) {
	set := make(TargetFileSet)
	var events []OverwriteEvent

	for _, depot := range depots {
		m, err := src.Manifest(ctx, appID, depot.DepotID, depot.ManifestID)
		if err != nil {
			log.Warn(ctx, "could not process depot, skipping", "depot", depot.DepotID, "error", err)
			continue
		}
		for i := range m.Files {
			entry := &m.Files[i]
			if prev, ok := set[entry.Path]; ok {
				events = append(events, OverwriteEvent{
					Path:            entry.Path,
					SupersededDepot: prev.DepotID,
					WinningDepot:    depot.DepotID,
				})
			}
			set[entry.Path] = TargetFile{Entry: entry, DepotID: depot.DepotID}
		}
	}
	return set, events
}

// SortedPaths returns the set's paths in lexical order, for deterministic
// verification and reporting.
func (s TargetFileSet) SortedPaths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// TotalSize sums the sizes of all non-directory entries.
func (s TargetFileSet) TotalSize() int64 {
	var total int64
	for _, tf := range s {
		if !tf.Entry.IsDirectory {
			total += tf.Entry.Size
		}
	}
	return total
}

// AuditLogName is the overwrite log file written next to the downloaded tree.
const AuditLogName = "overwritten_files.txt"

// WriteAuditLog writes one line per overwrite event into dir/AuditLogName via
// a temp-file rename, so a crash never leaves a half-written log. With no
// events nothing is written.
func WriteAuditLog(dir string, events []OverwriteEvent) error {
	if len(events) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("# File versions from depots listed later in the queue were kept.\n\n")
	for _, e := range events {
		fmt.Fprintf(&b, "File '%s' from Depot %d was overwritten by Depot %d.\n",
			e.Path, e.SupersededDepot, e.WinningDepot)
	}

	path := filepath.Join(dir, AuditLogName)
	if err := filex.WriteFileAtomic(path, []byte(b.String()), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	return nil
}
