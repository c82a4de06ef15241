// Package bolt stores the backend text in a bbolt bucket.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Backend  = (*Backend)(nil)
	_ domain.Appender = (*Backend)(nil)
)

var (
	bucketName = []byte("backend")
	contentKey = []byte("backend.txt")
)

// Backend implements domain.Backend and domain.Appender on a single key.
// The bucket sequence is bumped on every write and serves as the version token.
type Backend struct {
	db *bbolt.DB
}

// New opens (or creates) the database file and its bucket.
func New(path string, mode os.FileMode) (*Backend, error) {
	db, err := bbolt.Open(path, mode, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Backend{db: db}, nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Load(_ context.Context) (snap domain.Snapshot, err error) {
	err = b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		// Get's slice is only valid inside the transaction.
		snap.Content = string(bkt.Get(contentKey))
		snap.Version = formatVersion(bkt.Sequence())
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("loading backend content: %w", err)
	}
	return snap, nil
}

func (b *Backend) Save(_ context.Context, content, ifVersion string) (snap domain.Snapshot, err error) {
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)

		if ifVersion != "" && ifVersion != formatVersion(bkt.Sequence()) {
			return domain.ErrVersionConflict
		}

		if err := bkt.Put(contentKey, []byte(content)); err != nil {
			return err
		}
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}

		snap = domain.Snapshot{Content: content, Version: formatVersion(seq)}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return domain.Snapshot{}, err
		}
		return domain.Snapshot{}, fmt.Errorf("saving backend content: %w", err)
	}
	return snap, nil
}

// Append reads and rewrites the content inside one write transaction.
func (b *Backend) Append(_ context.Context, line string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)

		current := bkt.Get(contentKey)
		next := make([]byte, 0, len(current)+len(line))
		next = append(next, current...)
		next = append(next, line...)

		if err := bkt.Put(contentKey, next); err != nil {
			return err
		}
		_, err := bkt.NextSequence()
		return err
	})
	if err != nil {
		return fmt.Errorf("appending backend content: %w", err)
	}
	return nil
}

func formatVersion(seq uint64) string {
	return strconv.FormatUint(seq, 10)
}
