package fixtures

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/simplest-networking/pkg/mocktransport"
	bolt "go.etcd.io/bbolt"
)

const replyBucket = "replies"

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

// storedReply is the on-disk form of a reply.
type storedReply struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create fixtures directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(replyBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Lookup returns the reply stored under key.
func (b *boltStore) Lookup(key string) (mocktransport.Reply, bool, error) {
	if b == nil || b.db == nil {
		return mocktransport.Reply{}, false, nil
	}

	var (
		reply mocktransport.Reply
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(replyBucket))
		if bucket == nil {
			return fmt.Errorf("reply bucket missing")
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		var sr storedReply
		if err := json.Unmarshal(value, &sr); err != nil {
			return fmt.Errorf("decode fixture %q: %w", key, err)
		}
		reply = mocktransport.Reply{StatusCode: sr.StatusCode, Header: sr.Header, Body: sr.Body}
		found = true
		return nil
	})
	return reply, found, err
}

// Put stores reply under key, replacing any previous entry.
func (b *boltStore) Put(key string, reply mocktransport.Reply) error {
	if b == nil || b.db == nil {
		return nil
	}

	value, err := json.Marshal(storedReply{StatusCode: reply.StatusCode, Header: reply.Header, Body: reply.Body})
	if err != nil {
		return fmt.Errorf("encode fixture %q: %w", key, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(replyBucket))
		if bucket == nil {
			return fmt.Errorf("reply bucket missing")
		}
		return bucket.Put([]byte(key), value)
	})
}

// Len returns the number of stored replies.
func (b *boltStore) Len() (int, error) {
	if b == nil || b.db == nil {
		return 0, nil
	}
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(replyBucket))
		if bucket == nil {
			return fmt.Errorf("reply bucket missing")
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}
