package cache

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var bucketNode = []byte("node")

// BoltCache persists node state across agent restarts
type BoltCache struct {
	db *bolt.DB
}

// NewBoltCache opens (or creates) the state database at path
func NewBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketNode); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketNode, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

// Close closes the database
func (b *BoltCache) Close() error {
	return b.db.Close()
}

func (b *BoltCache) GetString(key string) string {
	var value string
	_ = b.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketNode).Get([]byte(key)); data != nil {
			value = string(data)
		}
		return nil
	})
	return value
}

func (b *BoltCache) Set(key, value string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNode).Put([]byte(key), []byte(value))
	})
}

// Keys lists every stored key
func (b *BoltCache) Keys() ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNode).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
