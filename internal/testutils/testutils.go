// Package testutils provides shared fixtures for depot tests: deterministic
// content generation, manifest construction from plain file maps, and seeding
// of in-memory depot mirrors.
package testutils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"

	"gocloud.dev/blob"

	"github.com/pssteam/steamfetch/internal/manifest"
	"github.com/pssteam/steamfetch/internal/steam"
)

// GenerateContent returns size bytes of deterministic content so corruption
// introduced by a test is guaranteed to change chunk digests.
func GenerateContent(size int64) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// NewDepotKey returns a random 32-byte depot key.
func NewDepotKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate depot key: %v", err)
	}
	return key
}

// Depot is a complete test depot: its manifest, key, raw payload and chunk
// bodies keyed by hex digest.
type Depot struct {
	DepotID    uint32
	ManifestID uint64
	Key        []byte
	Manifest   *manifest.Manifest
	Payload    []byte
	Chunks     map[string][]byte
}

// BuildDepot assembles a depot from a map of path → content, splitting every
// file into chunks of chunkSize bytes.
func BuildDepot(t *testing.T, depotID uint32, manifestID uint64, files map[string][]byte, chunkSize int64) *Depot {
	t.Helper()

	d := &Depot{
		DepotID:    depotID,
		ManifestID: manifestID,
		Key:        NewDepotKey(t),
		Chunks:     make(map[string][]byte),
	}

	m := &manifest.Manifest{DepotID: depotID, ManifestID: manifestID}
	for path, content := range files {
		entry := manifest.FileEntry{Path: path, Size: int64(len(content))}
		for off := int64(0); off < int64(len(content)); off += chunkSize {
			end := off + chunkSize
			if end > int64(len(content)) {
				end = int64(len(content))
			}
			body := content[off:end]
			chunk := manifest.Chunk{
				Offset: off,
				Size:   end - off,
				Digest: manifest.ChunkDigest(body),
			}
			entry.Chunks = append(entry.Chunks, chunk)
			d.Chunks[hex.EncodeToString(chunk.Digest[:])] = body
		}
		m.Files = append(m.Files, entry)
	}
	d.Manifest = m

	payload, err := manifest.Encode(m, d.Key)
	if err != nil {
		t.Fatalf("encode manifest: %v", err)
	}
	d.Payload = payload
	return d
}

// SeedMirror writes product metadata and depots into a bucket using the
// depot-mirror layout served by steam.BlobClient.
func SeedMirror(t *testing.T, ctx context.Context, bucket *blob.Bucket, appID uint32, info *steam.ProductInfo, depots ...*Depot) {
	t.Helper()

	if info != nil {
		doc, err := json.Marshal(info)
		if err != nil {
			t.Fatalf("marshal product info: %v", err)
		}
		writeObject(t, ctx, bucket, fmt.Sprintf("apps/%d/product.json", appID), doc)
	}

	for _, d := range depots {
		writeObject(t, ctx, bucket, fmt.Sprintf("depots/%d/key", d.DepotID), d.Key)
		writeObject(t, ctx, bucket,
			fmt.Sprintf("depots/%d/manifests/%d", d.DepotID, d.ManifestID), d.Payload)
		for digest, body := range d.Chunks {
			writeObject(t, ctx, bucket, fmt.Sprintf("depots/%d/chunks/%s", d.DepotID, digest), body)
		}
	}
}

func writeObject(t *testing.T, ctx context.Context, bucket *blob.Bucket, key string, data []byte) {
	t.Helper()
	if err := bucket.WriteAll(ctx, key, data, nil); err != nil {
		t.Fatalf("write %s: %v", key, err)
	}
}
