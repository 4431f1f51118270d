// Package credstore persists login credentials in a local vault file so the
// user can skip retyping them. The vault is a bbolt database holding a single
// AES-GCM sealed record; the sealing key is derived from a vault passphrase
// with argon2id.
package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/argon2"

	"github.com/pssteam/steamfetch/internal/common"
)

var (
	bucketName = []byte("credentials")
	keySalt    = []byte("salt")
	keyNonce   = []byte("nonce")
	keySealed  = []byte("sealed")
)

const saltSize = 16

// Store is an open credential vault.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the vault file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type record struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Save seals username and password under the passphrase and replaces any
// previously stored record. A fresh salt and nonce are used on every save.
func (s *Store) Save(passphrase []byte, username, password string) error {
	plaintext, err := json.Marshal(record{Username: username, Password: password})
	if err != nil {
		return err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return err
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if err := b.Put(keySalt, salt); err != nil {
			return err
		}
		if err := b.Put(keyNonce, nonce); err != nil {
			return err
		}
		return b.Put(keySealed, sealed)
	})
}

// Load opens the stored record with the passphrase. ErrNoCredentials means
// nothing has been saved yet; ErrBadPassphrase means the record exists but
// could not be unsealed.
func (s *Store) Load(passphrase []byte) (username, password string, err error) {
	var salt, nonce, sealed []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return common.ErrNoCredentials
		}
		salt = append([]byte(nil), b.Get(keySalt)...)
		nonce = append([]byte(nil), b.Get(keyNonce)...)
		sealed = append([]byte(nil), b.Get(keySealed)...)
		if len(salt) == 0 || len(nonce) == 0 || len(sealed) == 0 {
			return common.ErrNoCredentials
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return "", "", err
	}
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", "", common.ErrBadPassphrase
	}

	var rec record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return "", "", err
	}
	return rec.Username, rec.Password, nil
}

// Delete removes any stored record.
func (s *Store) Delete() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return nil
		}
		return tx.DeleteBucket(bucketName)
	})
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
