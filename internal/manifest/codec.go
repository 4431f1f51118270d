package manifest

import (
	"bytes"
	"compress/flate"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pssteam/steamfetch/internal/common"
)

// Raw payload layout: a flate-compressed JSON document. File names are sealed
// with AES-GCM under the depot key (nonce prepended to the ciphertext), so a
// payload is only decodable once the depot key is known.

type wireManifest struct {
	DepotID    uint32     `json:"depot_id"`
	ManifestID uint64     `json:"manifest_id"`
	Files      []wireFile `json:"files"`
}

type wireFile struct {
	Path   []byte      `json:"path"`
	Size   int64       `json:"size"`
	Dir    bool        `json:"dir,omitempty"`
	Chunks []wireChunk `json:"chunks,omitempty"`
}

type wireChunk struct {
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
	Digest []byte `json:"digest"`
}

// Encode serializes m into its raw payload form, sealing file names with the
// depot key. Used by mirror tooling and test fixtures; Decode is its inverse.
func Encode(m *Manifest, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	wm := wireManifest{DepotID: m.DepotID, ManifestID: m.ManifestID}
	for _, f := range m.Files {
		if err := validateEntry(&f); err != nil {
			return nil, err
		}
		nonce := make([]byte, gcm.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return nil, err
		}
		sealed := gcm.Seal(nonce, nonce, []byte(f.Path), nil)

		wf := wireFile{Path: sealed, Size: f.Size, Dir: f.IsDirectory}
		for _, c := range f.Chunks {
			d := make([]byte, DigestSize)
			copy(d, c.Digest[:])
			wf.Chunks = append(wf.Chunks, wireChunk{Offset: c.Offset, Size: c.Size, Digest: d})
		}
		wm.Files = append(wm.Files, wf)
	}

	doc, err := json.Marshal(wm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(doc); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a raw manifest payload and decrypts its file names with the
// depot key. Chunk layout of every entry is validated before the manifest is
// returned.
func Decode(payload, key []byte) (*Manifest, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	fr := flate.NewReader(bytes.NewReader(payload))
	doc, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadManifest, err)
	}

	var wm wireManifest
	if err := json.Unmarshal(doc, &wm); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadManifest, err)
	}

	m := &Manifest{DepotID: wm.DepotID, ManifestID: wm.ManifestID}
	for _, wf := range wm.Files {
		if len(wf.Path) < gcm.NonceSize() {
			return nil, fmt.Errorf("%w: sealed path too short", common.ErrBadManifest)
		}
		nonce, ciphertext := wf.Path[:gcm.NonceSize()], wf.Path[gcm.NonceSize():]
		name, err := gcm.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: path decryption failed", common.ErrBadManifest)
		}

		entry := FileEntry{
			Path:        normalizePath(string(name)),
			Size:        wf.Size,
			IsDirectory: wf.Dir,
		}
		for i, wc := range wf.Chunks {
			if len(wc.Digest) != DigestSize {
				return nil, fmt.Errorf("%w: %q chunk %d digest length %d",
					common.ErrBadManifest, entry.Path, i, len(wc.Digest))
			}
			c := Chunk{Offset: wc.Offset, Size: wc.Size}
			copy(c.Digest[:], wc.Digest)
			entry.Chunks = append(entry.Chunks, c)
		}
		if err := validateEntry(&entry); err != nil {
			return nil, err
		}
		m.Files = append(m.Files, entry)
	}
	return m, nil
}

func normalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("depot key: %w", err)
	}
	return cipher.NewGCM(block)
}
