// Package verify implements chunk-level integrity checking of local files
// against their manifest entries, yielding a safe offset from which a download
// can resume.
package verify

import (
	"io"
	"os"

	"github.com/pssteam/steamfetch/internal/manifest"
)

// File scans path against entry's chunks in order and returns the number of
// leading bytes proven valid:
//
//   - absent file: 0, nothing is created or touched;
//   - every chunk digest matches: entry.Size, file untouched;
//   - otherwise the file is truncated to the last verified chunk boundary
//     (discarding only bytes that failed the digest check or were short) and
//     that offset is returned.
//
// Any IO failure makes the file unverifiable and forces a full re-download
// from offset 0. File never returns an error: it always yields a resume point.
func File(entry *manifest.FileEntry, path string) int64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}

	var verified int64
	buf := make([]byte, maxChunkSize(entry))
	for _, chunk := range entry.Chunks {
		data := buf[:chunk.Size]
		if _, err := io.ReadFull(f, data); err != nil {
			break
		}
		if manifest.ChunkDigest(data) != chunk.Digest {
			break
		}
		verified += chunk.Size
	}
	f.Close()

	if verified == entry.Size {
		return verified
	}
	if err := truncate(path, verified); err != nil {
		return 0
	}
	return verified
}

func truncate(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Truncate(size)
}

func maxChunkSize(entry *manifest.FileEntry) int64 {
	var max int64
	for _, c := range entry.Chunks {
		if c.Size > max {
			max = c.Size
		}
	}
	return max
}
