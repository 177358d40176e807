// Package store implements the permanent storage service: shared script
// variables and the run log, kept in a bolt database.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rexlang/rex/pkg/logutil"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const (
	bucketSharedVar = "shared-var"
	bucketRunLog    = "run-log"
)

// Tables to create when opening a database, if absent.
var initDB = map[string]func(*bolt.Tx) error{}

type dbStore struct {
	db *bolt.DB
}

// NewStore creates a Store from the given file. The file is created if it
// does not exist, and locked against other processes while open.
func NewStore(dbPath string) (storedefs.Store, error) {
	db, err := bolt.Open(dbPath, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Printf("opened database %s", dbPath)
	return &dbStore{db}, nil
}

func (s *dbStore) Close() error {
	return s.db.Close()
}
