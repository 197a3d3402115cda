package dedup

import (
	"context"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/multierr"
)

var bucketName = []byte("processed_requests")

// Bolt is a bbolt-backed dedup store. Tokens survive process restarts, which
// narrows the duplicate window to crashes between publish and record.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path and ensures the
// token bucket exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open dedup database %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "create dedup bucket"), db.Close())
	}
	return &Bolt{db: db}, nil
}

// Add inserts id if absent inside a single write transaction.
func (b *Bolt) Add(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	inserted := false
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt.Get([]byte(id)) != nil {
			return nil
		}
		inserted = true
		return bkt.Put([]byte(id), []byte{1})
	})
	if err != nil {
		return false, errors.Wrapf(err, "record token %q", id)
	}
	return inserted, nil
}

// Remove deletes a recorded token.
func (b *Bolt) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(id))
	})
	return errors.Wrapf(err, "remove token %q", id)
}

// Len returns the number of recorded tokens.
func (b *Bolt) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "count tokens")
	}
	return n, nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error { return b.db.Close() }
