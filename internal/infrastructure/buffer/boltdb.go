package buffer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nexusliving/bms/domain"
)

var profileBucket = []byte("profile_upserts")

// Queue is a bbolt-backed write-behind queue of profile upserts keyed by
// normalized email.
type Queue struct {
	db *bolt.DB
}

// Open creates the file, its parent directory and the bucket when missing.
func Open(path string) (*Queue, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create buffer dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open buffer: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(profileBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Queue{db: db}, nil
}

// Put queues user, replacing any pending upsert for the same email. The
// returned entry carries the version Settle and Fail must quote.
func (q *Queue) Put(user domain.User, at time.Time) (Pending, error) {
	if q == nil || q.db == nil {
		return Pending{}, bolt.ErrDatabaseNotOpen
	}
	user.Email = domain.NormalizeEmail(user.Email)
	if user.Email == "" {
		return Pending{}, domain.ErrInvalidPayload
	}

	entry := Pending{Profile: user, QueuedAt: at}
	err := q.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(profileBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry.Version = seq
		return put(bucket, entry)
	})
	return entry, err
}

// Batch returns up to limit pending entries in email order without removing
// them.
func (q *Queue) Batch(limit int) ([]Pending, error) {
	if q == nil || q.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []Pending
	err := q.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(profileBucket).Cursor()
		for k, v := c.First(); k != nil && len(entries) < limit; k, v = c.Next() {
			var entry Pending
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode pending %q: %w", k, err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// Settle removes the entry for email if it is still at version. It reports
// false when a newer upsert superseded the version in the meantime.
func (q *Queue) Settle(email string, version uint64) (bool, error) {
	var settled bool
	err := q.update(email, version, func(bucket *bolt.Bucket, _ *Pending) error {
		settled = true
		return bucket.Delete([]byte(email))
	})
	return settled, err
}

// Fail records a failed replay of version and returns the updated entry.
// The boolean is false when the version was superseded or already settled.
func (q *Queue) Fail(email string, version uint64, cause error) (Pending, bool, error) {
	var (
		out   Pending
		found bool
	)
	err := q.update(email, version, func(bucket *bolt.Bucket, entry *Pending) error {
		found = true
		entry.Attempts++
		if cause != nil {
			entry.LastError = cause.Error()
		}
		out = *entry
		return put(bucket, *entry)
	})
	return out, found, err
}

// Expire drops entries queued before cutoff and reports how many went.
func (q *Queue) Expire(cutoff time.Time) (int, error) {
	if q == nil || q.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var dropped int
	err := q.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(profileBucket)
		var stale [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			var entry Pending
			if err := json.Unmarshal(v, &entry); err != nil || entry.QueuedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		dropped = len(stale)
		return nil
	})
	return dropped, err
}

func (q *Queue) Len() (int, error) {
	if q == nil || q.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var n int
	err := q.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(profileBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (q *Queue) Close() error {
	if q == nil || q.db == nil {
		return nil
	}
	return q.db.Close()
}

var errSuperseded = errors.New("superseded")

func (q *Queue) update(email string, version uint64, fn func(*bolt.Bucket, *Pending) error) error {
	if q == nil || q.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	err := q.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(profileBucket)
		raw := bucket.Get([]byte(email))
		if raw == nil {
			return errSuperseded
		}
		var entry Pending
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		if entry.Version != version {
			return errSuperseded
		}
		return fn(bucket, &entry)
	})
	if errors.Is(err, errSuperseded) {
		return nil
	}
	return err
}

func put(bucket *bolt.Bucket, entry Pending) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(entry.Email()), payload)
}
