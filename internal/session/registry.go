// Package session holds the state of one downloader session: the active depot
// queue and the depot-key, manifest and app-name caches derived from it. The
// caches are deliberately not process globals; loading a new queue replaces
// the registry content wholesale so nothing leaks between sessions.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/logging"
	"github.com/pssteam/steamfetch/internal/manifest"
	"github.com/pssteam/steamfetch/internal/sfd"
	"github.com/pssteam/steamfetch/internal/steam"
)

type manifestRef struct {
	appID      uint32
	depotID    uint32
	manifestID uint64
}

// Registry is the session-scoped state holder. A queue load seeds the key and
// manifest caches from the queue's own records; anything not found there falls
// back to the remote client. All methods are safe for concurrent use.
type Registry struct {
	client steam.Client
	log    logging.Logger

	mu        sync.Mutex
	running   bool
	queue     *sfd.Queue
	keys      map[uint32][]byte
	manifests map[manifestRef]*manifest.Manifest
	appNames  map[uint32]string
}

func NewRegistry(client steam.Client, log logging.Logger) *Registry {
	r := &Registry{client: client, log: log}
	r.clearLocked()
	return r
}

// Replace installs q as the active queue. All queue payloads are decoded
// before anything is swapped in: a malformed payload aborts the load and
// leaves the registry cleared rather than partially populated. Replace fails
// with ErrSessionBusy while a reconciliation run holds the session.
func (r *Registry) Replace(q *sfd.Queue) error {
	keys := make(map[uint32][]byte, len(q.Depots))
	manifests := make(map[manifestRef]*manifest.Manifest, len(q.Depots))

	for _, d := range q.Depots {
		m, err := manifest.Decode(d.Payload, d.Key)
		if err != nil {
			r.Reset()
			return fmt.Errorf("depot %d: %w", d.DepotID, err)
		}
		keys[d.DepotID] = d.Key
		manifests[manifestRef{q.AppID, d.DepotID, d.ManifestID}] = m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return common.ErrSessionBusy
	}
	r.queue = q
	r.keys = keys
	r.manifests = manifests
	return nil
}

// Reset clears the active queue and every derived cache. The app-name cache
// survives: it depends only on the remote catalog, not on the loaded queue.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	names := r.appNames
	r.clearLocked()
	r.appNames = names
}

func (r *Registry) clearLocked() {
	r.queue = nil
	r.keys = make(map[uint32][]byte)
	r.manifests = make(map[manifestRef]*manifest.Manifest)
	r.appNames = make(map[uint32]string)
}

// Queue returns the active queue, or ErrQueueEmpty when none is loaded.
func (r *Registry) Queue() (*sfd.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queue == nil || len(r.queue.Depots) == 0 {
		return nil, common.ErrQueueEmpty
	}
	return r.queue, nil
}

// BeginRun marks a reconciliation run as active, blocking queue replacement
// until the returned release function is called. A second concurrent run is
// refused.
func (r *Registry) BeginRun() (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, common.ErrSessionBusy
	}
	r.running = true
	return func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}, nil
}

// DepotKey resolves a depot key from the cache, falling back to the remote
// client and caching the result.
func (r *Registry) DepotKey(ctx context.Context, appID, depotID uint32) ([]byte, error) {
	r.mu.Lock()
	if key, ok := r.keys[depotID]; ok {
		r.mu.Unlock()
		return key, nil
	}
	r.mu.Unlock()

	key, err := r.client.DepotKey(ctx, appID, depotID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.keys[depotID] = key
	r.mu.Unlock()
	return key, nil
}

// Manifest resolves a decoded manifest from the cache, falling back to a
// remote fetch plus decode with the depot key.
func (r *Registry) Manifest(ctx context.Context, appID, depotID uint32, manifestID uint64) (*manifest.Manifest, error) {
	ref := manifestRef{appID, depotID, manifestID}

	r.mu.Lock()
	if m, ok := r.manifests[ref]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	key, err := r.DepotKey(ctx, appID, depotID)
	if err != nil {
		return nil, err
	}
	payload, err := r.client.FetchManifest(ctx, appID, depotID, manifestID)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Decode(payload, key)
	if err != nil {
		return nil, fmt.Errorf("depot %d manifest %d: %w", depotID, manifestID, err)
	}

	r.mu.Lock()
	r.manifests[ref] = m
	r.mu.Unlock()
	return m, nil
}

// AppName resolves an application's display name, caching per app id. On a
// lookup failure the numeric id is returned as a usable fallback.
func (r *Registry) AppName(ctx context.Context, appID uint32) string {
	r.mu.Lock()
	if name, ok := r.appNames[appID]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	info, err := r.client.ProductInfo(ctx, appID)
	if err != nil {
		r.log.Warn(ctx, "could not fetch app name", "app", appID, "error", err)
		return fmt.Sprintf("%d", appID)
	}

	r.mu.Lock()
	r.appNames[appID] = info.Name
	r.mu.Unlock()
	return info.Name
}
