// Package token persists session resumption tokens across process
// restarts. The auth server hands out a token on registration; presenting
// it on the next connect lets the server resume the prior session, which
// is what makes the fast reconnect path worth taking. Tokens are keyed by
// server address and expire on the same clock the server abandons
// disconnected sessions, so a stored token is never older than a session
// the server could still resume.
package token

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/log"
)

// TokenSize matches the wire size of a resumption token.
const TokenSize = 16

var bucketTokens = []byte("resumption_tokens")

// StoreCfg configures the token store.
type StoreCfg struct {
	Path  string `mapstructure:"path"`
	TTLMS uint32 `mapstructure:"ttlMS"`
}

// GetName returns the configuration name for StoreCfg.
func (c *StoreCfg) GetName() string {
	return "token_store"
}

// Validate validates the StoreCfg parameters.
func (c *StoreCfg) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("Path cannot be empty")
	}
	if c.TTLMS == 0 {
		return fmt.Errorf("TTLMS must be positive")
	}
	return nil
}

// Store is a bolt-backed token store. Safe for concurrent use.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
}

// NewStore opens (or creates) the store file at cfg.Path.
func NewStore(cfg *StoreCfg) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("StoreCfg cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTokens)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create token bucket: %w", err)
	}

	return &Store{db: db, ttl: time.Duration(cfg.TTLMS) * time.Millisecond}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the token for a server address, replacing any prior token.
// The token's expiry clock starts now.
func (s *Store) Put(serverAddr string, tok [TokenSize]byte) error {
	expiry := time.Now().Add(s.ttl).UnixMilli()
	w := codec.NewWriter(8 + TokenSize)
	w.Uint64(uint64(expiry)).Raw(tok[:])

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTokens).Put([]byte(serverAddr), w.Bytes())
	})
}

// Get returns the stored token for a server address. ok is false when no
// token exists or the stored one has expired; expired entries are removed
// on the way out.
func (s *Store) Get(serverAddr string) (tok [TokenSize]byte, ok bool) {
	var expired bool
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketTokens).Get([]byte(serverAddr))
		if val == nil {
			return nil
		}
		r := codec.NewReader(val)
		expiry := int64(r.Uint64())
		raw := r.Raw(TokenSize)
		if r.Err() != nil {
			expired = true
			return nil
		}
		if time.Now().UnixMilli() >= expiry {
			expired = true
			return nil
		}
		copy(tok[:], raw)
		ok = true
		return nil
	})
	if err != nil {
		log.Warn().Str("serverAddr", serverAddr).Err(err).Msg("token store read failed")
		return [TokenSize]byte{}, false
	}
	if expired {
		s.Delete(serverAddr)
	}
	return tok, ok
}

// Delete removes the token for a server address, if any.
func (s *Store) Delete(serverAddr string) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTokens).Delete([]byte(serverAddr))
	})
	if err != nil {
		log.Warn().Str("serverAddr", serverAddr).Err(err).Msg("token store delete failed")
	}
}

// Sweep removes every expired entry. Called opportunistically; Get
// already drops expired entries lazily, this just keeps the file from
// accumulating tokens for servers the client never revisits.
func (s *Store) Sweep() error {
	now := time.Now().UnixMilli()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTokens)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			r := codec.NewReader(v)
			expiry := int64(r.Uint64())
			if r.Err() != nil || now >= expiry {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
