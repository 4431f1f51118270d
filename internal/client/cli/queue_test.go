package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/session"
	"github.com/pssteam/steamfetch/internal/sfd"
	"github.com/pssteam/steamfetch/internal/testutils"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &App{
		log:      logging.Discard(),
		registry: session.NewRegistry(nil, logging.Discard()),
		reader:   newReader(""),
		out:      &out,
	}, &out
}

func writeQueueFile(t *testing.T, dir string, q *sfd.Queue) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, sfd.Write(&buf, q))
	path := filepath.Join(dir, "game.sfd")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o660))
	return path
}

func TestLoadQueueFromPath(t *testing.T) {
	depot := testutils.BuildDepot(t, 501, 9001, map[string][]byte{
		"data/a.bin": testutils.GenerateContent(64),
	}, 32)
	q := &sfd.Queue{AppID: 42, Depots: []sfd.DepotRecord{{
		DepotID:    depot.DepotID,
		ManifestID: depot.ManifestID,
		Key:        depot.Key,
		Payload:    depot.Payload,
	}}}
	path := writeQueueFile(t, t.TempDir(), q)

	app, out := newTestApp(t)
	require.NoError(t, app.loadQueueFromPath(context.Background(), path))

	loaded, err := app.registry.Queue()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), loaded.AppID)
	assert.Equal(t, path, app.queuePath)
	assert.Contains(t, out.String(), "Loaded 1 depot(s) for app 42.")
}

func TestLoadQueueFromPath_MalformedResetsQueue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.sfd")
	require.NoError(t, os.WriteFile(path, []byte("42\nnot a record\n"), 0o660))

	app, _ := newTestApp(t)
	err := app.loadQueueFromPath(context.Background(), path)
	require.Error(t, err)

	_, err = app.registry.Queue()
	assert.ErrorIs(t, err, common.ErrQueueEmpty)
}

func TestClearQueue(t *testing.T) {
	depot := testutils.BuildDepot(t, 502, 9002, map[string][]byte{
		"x": testutils.GenerateContent(8),
	}, 8)
	app, out := newTestApp(t)
	require.NoError(t, app.registry.Replace(&sfd.Queue{AppID: 7, Depots: []sfd.DepotRecord{{
		DepotID:    depot.DepotID,
		ManifestID: depot.ManifestID,
		Key:        depot.Key,
		Payload:    depot.Payload,
	}}}))

	require.NoError(t, app.clearQueue(context.Background()))

	_, err := app.registry.Queue()
	assert.ErrorIs(t, err, common.ErrQueueEmpty)
	assert.Contains(t, out.String(), "cleared")
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o770))
	for _, f := range []string{"b.sfd", filepath.Join("sub", "a.SFD"), "note.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o660))
	}

	found, err := findFiles(dir, ".sfd")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, filepath.Join(dir, "b.sfd"), found[0])
	assert.Equal(t, filepath.Join(dir, "sub", "a.SFD"), found[1])
}
