// Package common defines shared sentinel errors used across the steamfetch
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Remote session errors.
	ErrNotLoggedIn = errors.New("not logged in")

	// Queue descriptor errors (input-fatal: the active queue is cleared).
	ErrMalformedDescriptor = errors.New("malformed queue descriptor")
	ErrDuplicateDepot      = errors.New("duplicate depot id")

	// Session registry errors.
	ErrQueueEmpty  = errors.New("download queue is empty")
	ErrSessionBusy = errors.New("a reconciliation run is in progress")

	// Credential vault errors.
	ErrBadPassphrase = errors.New("incorrect vault passphrase")
	ErrNoCredentials = errors.New("no stored credentials")

	// Manifest payload errors.
	ErrBadManifest = errors.New("invalid manifest payload")
	ErrUnsafePath  = errors.New("unsafe path in manifest")
)
