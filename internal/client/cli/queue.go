package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pssteam/steamfetch/internal/filex"
	"github.com/pssteam/steamfetch/internal/sfd"
)

// loadQueue lets the user pick an .sfd file and installs it as the active
// queue. A malformed descriptor clears the queue instead of leaving it
// partially populated.
func (a *App) loadQueue(ctx context.Context) error {
	path, err := a.selectFile(".sfd")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(a.out, "Queue loading cancelled.")
		return nil
	}
	return a.loadQueueFromPath(ctx, path)
}

func (a *App) loadQueueFromPath(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open queue file: %w", err)
	}
	defer f.Close()

	q, err := sfd.Parse(f)
	if err != nil {
		a.registry.Reset()
		return fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}

	if err := a.registry.Replace(q); err != nil {
		return fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	a.queuePath = path

	a.log.Info(ctx, "queue loaded", "path", path, "app", q.AppID, "depots", len(q.Depots))
	fmt.Fprintf(a.out, "Loaded %d depot(s) for app %d.\n", len(q.Depots), q.AppID)
	return nil
}

func (a *App) clearQueue(ctx context.Context) error {
	a.registry.Reset()
	a.queuePath = ""
	fmt.Fprintln(a.out, "Download queue has been cleared.")
	return nil
}

// saveQueueFile serializes q to path atomically.
func (a *App) saveQueueFile(path string, q *sfd.Queue) error {
	var buf bytes.Buffer
	if err := sfd.Write(&buf, q); err != nil {
		return err
	}
	return filex.WriteFileAtomic(path, buf.Bytes(), 0o660)
}

// selectFile searches the working tree for files with the given extension and
// asks the user to pick one. Returns "" when the user cancels or nothing was
// found.
func (a *App) selectFile(ext string) (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}

	found, err := findFiles(root, ext)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		fmt.Fprintf(a.out, "No %s files found under %s.\n", ext, root)
		return "", nil
	}

	fmt.Fprintf(a.out, "Found %s files:\n", ext)
	for i, f := range found {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = f
		}
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, rel)
	}

	choice, err := GetUint(a.reader, fmt.Sprintf("Select a %s file (number), or 0 to cancel", ext), a.out)
	if err != nil {
		return "", err
	}
	if choice == 0 || choice > uint64(len(found)) {
		return "", nil
	}
	return found[choice-1], nil
}

// findFiles returns all files under root with the given extension, sorted.
func findFiles(root, ext string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep walking
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
