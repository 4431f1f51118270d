package steam

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/pssteam/steamfetch/internal/common"
	"github.com/pssteam/steamfetch/internal/manifest"
)

// BlobClient serves the Client contract from a depot mirror laid out in a
// blob bucket (file://, s3://, mem://):
//
//	apps/<appid>/product.json            product metadata document
//	depots/<depotid>/key                 raw depot key bytes
//	depots/<depotid>/manifests/<mid>     raw manifest payload
//	depots/<depotid>/chunks/<sha1hex>    raw chunk bytes
//
// Login is a no-op beyond marking the session established: a mirror has no
// account state, but callers still drive the same login-first flow they would
// use against the live service.
type BlobClient struct {
	bucket *blob.Bucket

	mu       sync.Mutex
	loggedIn bool
	username string
}

// OpenBlobClient opens a mirror at the given bucket URL.
func OpenBlobClient(ctx context.Context, bucketURL string) (*BlobClient, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open mirror %s: %w", bucketURL, err)
	}
	return NewBlobClient(bucket), nil
}

// NewBlobClient wraps an already opened bucket. The client takes ownership:
// Close closes the bucket.
func NewBlobClient(bucket *blob.Bucket) *BlobClient {
	return &BlobClient{bucket: bucket}
}

func (c *BlobClient) Login(ctx context.Context, creds *Credentials) error {
	// Probe the bucket so a bad mirror URL fails at login time, not mid-run.
	if _, err := c.bucket.IsAccessible(ctx); err != nil {
		return fmt.Errorf("mirror not accessible: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = true
	if creds != nil {
		c.username = creds.Username
	}
	return nil
}

func (c *BlobClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

func (c *BlobClient) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *BlobClient) ProductInfo(ctx context.Context, appID uint32) (*ProductInfo, error) {
	data, err := c.read(ctx, fmt.Sprintf("apps/%d/product.json", appID))
	if err != nil {
		return nil, fmt.Errorf("product info for app %d: %w", appID, err)
	}
	var info ProductInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("product info for app %d: %w", appID, err)
	}
	return &info, nil
}

func (c *BlobClient) DepotKey(ctx context.Context, appID, depotID uint32) ([]byte, error) {
	key, err := c.read(ctx, fmt.Sprintf("depots/%d/key", depotID))
	if err != nil {
		return nil, fmt.Errorf("key for depot %d: %w", depotID, err)
	}
	return key, nil
}

func (c *BlobClient) FetchManifest(ctx context.Context, appID, depotID uint32, manifestID uint64) ([]byte, error) {
	payload, err := c.read(ctx, fmt.Sprintf("depots/%d/manifests/%d", depotID, manifestID))
	if err != nil {
		return nil, fmt.Errorf("manifest %d for depot %d: %w", manifestID, depotID, err)
	}
	return payload, nil
}

func (c *BlobClient) FetchChunk(ctx context.Context, appID, depotID uint32, chunk manifest.Chunk) ([]byte, error) {
	key := fmt.Sprintf("depots/%d/chunks/%s", depotID, hex.EncodeToString(chunk.Digest[:]))
	data, err := c.read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("chunk %s of depot %d: %w", hex.EncodeToString(chunk.Digest[:8]), depotID, err)
	}
	return data, nil
}

func (c *BlobClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = false
	c.username = ""
}

func (c *BlobClient) Close() error {
	c.Logout()
	return c.bucket.Close()
}

func (c *BlobClient) read(ctx context.Context, key string) ([]byte, error) {
	data, err := c.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%s: %w", key, common.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}
