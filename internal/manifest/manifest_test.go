package manifest

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pssteam/steamfetch/internal/common"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

// makeEntry builds a file entry whose chunk digests match the given content
// split into chunks of chunkSize bytes.
func makeEntry(path string, content []byte, chunkSize int64) FileEntry {
	e := FileEntry{Path: path, Size: int64(len(content))}
	for off := int64(0); off < int64(len(content)); off += chunkSize {
		end := off + chunkSize
		if end > int64(len(content)) {
			end = int64(len(content))
		}
		e.Chunks = append(e.Chunks, Chunk{
			Offset: off,
			Size:   end - off,
			Digest: ChunkDigest(content[off:end]),
		})
	}
	return e
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	key := testKey(t)

	m := &Manifest{
		DepotID:    228989,
		ManifestID: 1234567890,
		Files: []FileEntry{
			makeEntry("bin/game.exe", bytes.Repeat([]byte("x"), 300), 128),
			makeEntry("data/textures.pak", bytes.Repeat([]byte("y"), 64), 64),
			{Path: "data", IsDirectory: true},
		},
	}

	payload, err := Encode(m, key)
	require.NoError(t, err)

	got, err := Decode(payload, key)
	require.NoError(t, err)

	assert.Equal(t, m.DepotID, got.DepotID)
	assert.Equal(t, m.ManifestID, got.ManifestID)
	require.Len(t, got.Files, 3)
	assert.Equal(t, m.Files, got.Files)
	assert.Equal(t, int64(364), got.TotalSize())
}

func TestDecode_WrongKeyFails(t *testing.T) {
	m := &Manifest{Files: []FileEntry{makeEntry("a.txt", []byte("hello"), 5)}}

	payload, err := Encode(m, testKey(t))
	require.NoError(t, err)

	_, err = Decode(payload, testKey(t))
	require.ErrorIs(t, err, common.ErrBadManifest)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not a manifest"), testKey(t))
	require.ErrorIs(t, err, common.ErrBadManifest)
}

func TestEncode_RejectsBadLayout(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name  string
		entry FileEntry
	}{
		{name: "gap between chunks", entry: FileEntry{
			Path: "a", Size: 10,
			Chunks: []Chunk{{Offset: 0, Size: 4}, {Offset: 6, Size: 4}},
		}},
		{name: "sum below size", entry: FileEntry{
			Path: "a", Size: 10,
			Chunks: []Chunk{{Offset: 0, Size: 4}},
		}},
		{name: "zero-size chunk", entry: FileEntry{
			Path: "a", Size: 0,
			Chunks: []Chunk{{Offset: 0, Size: 0}},
		}},
		{name: "directory with chunks", entry: FileEntry{
			Path: "a", IsDirectory: true,
			Chunks: []Chunk{{Offset: 0, Size: 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(&Manifest{Files: []FileEntry{tt.entry}}, key)
			require.ErrorIs(t, err, common.ErrBadManifest)
		})
	}
}

func TestEncode_RejectsUnsafePaths(t *testing.T) {
	key := testKey(t)

	for _, p := range []string{"", "../escape", "/abs/path", `..\win`, `C:\game`} {
		t.Run(p, func(t *testing.T) {
			m := &Manifest{Files: []FileEntry{{Path: p, IsDirectory: true}}}
			_, err := Encode(m, key)
			require.ErrorIs(t, err, common.ErrUnsafePath)
		})
	}
}

func TestChunkDigest_MatchesContent(t *testing.T) {
	a := ChunkDigest([]byte("same"))
	b := ChunkDigest([]byte("same"))
	c := ChunkDigest([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
