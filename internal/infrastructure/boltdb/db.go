package boltdb

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Bucket names shared by the bolt repositories.
var (
	BucketUsers          = []byte("users")
	BucketUsernames      = []byte("usernames")
	BucketOrgs           = []byte("organizations")
	BucketOrgNames       = []byte("organization_names")
	BucketOrgOwners      = []byte("organization_owners")
	BucketRoles          = []byte("roles")
	BucketTasks          = []byte("tasks")
	BucketSubmissions    = []byte("submissions")
	BucketSubmissionKeys = []byte("submission_keys")
)

var allBuckets = [][]byte{
	BucketUsers,
	BucketUsernames,
	BucketOrgs,
	BucketOrgNames,
	BucketOrgOwners,
	BucketRoles,
	BucketTasks,
	BucketSubmissions,
	BucketSubmissionKeys,
}

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string, logger *zap.Logger) (*bolt.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened bolt store", zap.String("path", path))
	return db, nil
}

// Ping reports whether the database is still open.
func Ping(db *bolt.DB) error {
	if db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(BucketUsers) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}
