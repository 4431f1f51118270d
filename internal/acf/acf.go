// Package acf formats installed-game descriptor documents (appmanifest.acf).
// Building is pure: callers decide where the document is written.
package acf

import (
	"fmt"
	"sort"
	"strings"
)

// App carries the application metadata placed in the descriptor header.
type App struct {
	Name       string
	InstallDir string
	BuildID    string
}

// Depot is one installed depot entry. DLCAppID of zero means not a DLC depot.
type Depot struct {
	ID         uint32
	ManifestID uint64
	Size       int64
	DLCAppID   uint32
}

// FileName returns the conventional descriptor file name for an app.
func FileName(appID uint32) string {
	return fmt.Sprintf("appmanifest_%d.acf", appID)
}

// Build renders the descriptor document. Depot entries and shared-depot
// cross-references are emitted sorted ascending by numeric id, so output is
// reproducible. SizeOnDisk is the sum of all depot sizes.
func Build(appID uint32, app App, depots []Depot, shared map[uint32]uint32) string {
	var sizeOnDisk int64
	for _, d := range depots {
		sizeOnDisk += d.Size
	}

	var b strings.Builder
	b.WriteString("\"AppState\"\n{\n")

	head := []struct {
		key   string
		value any
	}{
		{"appid", appID},
		{"Universe", 1},
		{"LauncherPath", ""},
		{"name", app.Name},
		{"StateFlags", 4},
		{"installdir", app.InstallDir},
		{"LastUpdated", 0},
		{"SizeOnDisk", sizeOnDisk},
		{"StagingSize", 0},
		{"buildid", app.BuildID},
		{"LastOwner", "None"},
		{"UpdateResult", 0},
		{"BytesToDownload", 0},
		{"BytesDownloaded", 0},
		{"BytesToStage", 0},
		{"BytesStaged", 0},
		{"TargetBuildID", 0},
		{"AutoUpdateBehavior", 0},
		{"AllowOtherDownloadsWhileRunning", 0},
		{"ScheduledAutoUpdate", 0},
	}
	for _, kv := range head {
		fmt.Fprintf(&b, "\t\"%s\"\t\t\"%v\"\n", kv.key, kv.value)
	}

	b.WriteString("\t\"InstalledDepots\"\n\t{\n")
	sorted := append([]Depot(nil), depots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, d := range sorted {
		fmt.Fprintf(&b, "\t\t\"%d\"\n\t\t{\n", d.ID)
		fmt.Fprintf(&b, "\t\t\t\"manifest\"\t\t\"%d\"\n", d.ManifestID)
		fmt.Fprintf(&b, "\t\t\t\"size\"\t\t\"%d\"\n", d.Size)
		if d.DLCAppID != 0 {
			fmt.Fprintf(&b, "\t\t\t\"dlcappid\"\t\t\"%d\"\n", d.DLCAppID)
		}
		b.WriteString("\t\t}\n")
	}
	b.WriteString("\t}\n")

	b.WriteString("\t\"SharedDepots\"\n\t{\n")
	sharedIDs := make([]uint32, 0, len(shared))
	for id := range shared {
		sharedIDs = append(sharedIDs, id)
	}
	sort.Slice(sharedIDs, func(i, j int) bool { return sharedIDs[i] < sharedIDs[j] })
	for _, id := range sharedIDs {
		fmt.Fprintf(&b, "\t\t\"%d\"\t\t\"%d\"\n", id, shared[id])
	}
	b.WriteString("\t}\n")

	b.WriteString("}\n")
	return b.String()
}
