// Package manifest defines the depot manifest model: the ordered, chunked file
// listing for one depot at one version, and the codec for the raw payload form
// in which manifests are transferred and persisted.
package manifest

import (
	"crypto/sha1"
	"fmt"
	"path"
	"strings"

	"github.com/pssteam/steamfetch/internal/common"
)

// DigestSize is the length of a chunk content digest in bytes.
const DigestSize = sha1.Size

// Chunk is a contiguous byte range of a file with its content digest. Chunk
// order defines the byte layout of the reconstructed file: chunk i occupies
// [Offset, Offset+Size).
type Chunk struct {
	Offset int64
	Size   int64
	Digest [DigestSize]byte
}

// FileEntry describes one file (or directory) of a depot. Path is relative to
// the install root, slash-separated and already decrypted.
type FileEntry struct {
	Path        string
	Size        int64
	IsDirectory bool
	Chunks      []Chunk
}

// Manifest is the decoded file listing of one depot version.
type Manifest struct {
	DepotID    uint32
	ManifestID uint64
	Files      []FileEntry
}

// TotalSize returns the summed size of all non-directory entries.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files {
		if !f.IsDirectory {
			total += f.Size
		}
	}
	return total
}

// ChunkDigest computes the content digest of chunk data.
func ChunkDigest(data []byte) [DigestSize]byte {
	return sha1.Sum(data)
}

// validateEntry checks that an entry's chunks are contiguous, non-overlapping
// and sum to the declared file size, and that the path stays inside the
// install root.
func validateEntry(e *FileEntry) error {
	if err := checkPath(e.Path); err != nil {
		return err
	}
	if e.IsDirectory {
		if len(e.Chunks) != 0 {
			return fmt.Errorf("%w: directory %q carries chunks", common.ErrBadManifest, e.Path)
		}
		return nil
	}
	var offset int64
	for i, c := range e.Chunks {
		if c.Offset != offset {
			return fmt.Errorf("%w: %q chunk %d at offset %d, want %d",
				common.ErrBadManifest, e.Path, i, c.Offset, offset)
		}
		if c.Size <= 0 {
			return fmt.Errorf("%w: %q chunk %d has size %d", common.ErrBadManifest, e.Path, i, c.Size)
		}
		offset += c.Size
	}
	if offset != e.Size {
		return fmt.Errorf("%w: %q chunks sum to %d, file size %d",
			common.ErrBadManifest, e.Path, offset, e.Size)
	}
	return nil
}

// checkPath rejects paths that could escape the install root.
func checkPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", common.ErrUnsafePath)
	}
	clean := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q", common.ErrUnsafePath, p)
	}
	if len(p) >= 2 && p[1] == ':' {
		return fmt.Errorf("%w: %q", common.ErrUnsafePath, p)
	}
	return nil
}
