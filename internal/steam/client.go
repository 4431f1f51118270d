// Package steam defines the contract consumed from the remote content service:
// session login, product metadata lookup, depot key retrieval, manifest and
// chunk payload fetch. The wire protocol itself lives behind the Client
// interface; this package ships a depot-mirror implementation backed by a
// gocloud blob bucket.
package steam

import (
	"context"

	"github.com/pssteam/steamfetch/internal/manifest"
)

// Credentials identify an account. A nil *Credentials means anonymous login.
type Credentials struct {
	Username string
	Password string
}

// InstalledDepot is one installable depot reference from product metadata.
type InstalledDepot struct {
	ManifestID uint64 `json:"manifest"`
	Size       int64  `json:"size"`
	DLCAppID   uint32 `json:"dlcappid,omitempty"`
}

// ProductInfo is the metadata of one application: display name, install
// directory, public branch build id, installable depots and shared depots
// (depot id → owning app id).
type ProductInfo struct {
	Name         string                    `json:"name"`
	InstallDir   string                    `json:"installdir"`
	BuildID      string                    `json:"buildid"`
	Depots       map[uint32]InstalledDepot `json:"depots"`
	SharedDepots map[uint32]uint32         `json:"shared_depots,omitempty"`
}

// Client is the remote collaborator capability. Implementations must be safe
// for concurrent FetchChunk calls; the download scheduler issues them from
// multiple workers.
type Client interface {
	// Login establishes a session. creds == nil requests anonymous login.
	Login(ctx context.Context, creds *Credentials) error

	// LoggedIn reports whether a session is established.
	LoggedIn() bool

	// Username returns the logged-in account name, or "" for anonymous.
	Username() string

	// Logout drops the session but keeps the transport usable for a later
	// Login.
	Logout()

	// ProductInfo looks up application metadata.
	ProductInfo(ctx context.Context, appID uint32) (*ProductInfo, error)

	// DepotKey fetches the symmetric key of a depot.
	DepotKey(ctx context.Context, appID, depotID uint32) ([]byte, error)

	// FetchManifest retrieves the raw manifest payload for one depot version.
	// The payload is decodable with manifest.Decode once the depot key is known.
	FetchManifest(ctx context.Context, appID, depotID uint32, manifestID uint64) ([]byte, error)

	// FetchChunk retrieves the raw bytes of one chunk.
	FetchChunk(ctx context.Context, appID, depotID uint32, chunk manifest.Chunk) ([]byte, error)

	// Close releases the session and any underlying transport.
	Close() error
}
