package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketRuns = []byte("runs")

// ErrRunNotFound is returned by Lookup when no record exists for the run ID.
var ErrRunNotFound = errors.New("registry: run not found")

// RunRecord describes one registered training run and its artifact location.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	ArtifactPath string    `json:"artifact_path"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Registry is a bbolt-backed run store. Safe for concurrent use; bbolt
// serializes writers internally.
type Registry struct {
	db   *bolt.DB
	path string
}

// Open opens (creating if absent) the registry file at path.
func Open(path string) (*Registry, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("registry: open %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: create bucket: %w", err)
	}

	return &Registry{db: db, path: path}, nil
}

// Close releases the underlying database file.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}

// Lookup returns the record registered under runID, or ErrRunNotFound.
func (r *Registry) Lookup(runID string) (*RunRecord, error) {
	var rec *RunRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRuns).Get([]byte(runID))
		if v == nil {
			return fmt.Errorf("%w: %q", ErrRunNotFound, runID)
		}
		rec = &RunRecord{}
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Register stores rec under its run ID, replacing any existing record.
func (r *Registry) Register(rec *RunRecord) error {
	if rec.RunID == "" {
		return fmt.Errorf("registry: run_id is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("registry: marshal record: %w", err)
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).Put([]byte(rec.RunID), data)
	})
	if err != nil {
		return fmt.Errorf("registry: store run %q: %w", rec.RunID, err)
	}
	return nil
}

// List returns all registered records in key order.
func (r *Registry) List() ([]*RunRecord, error) {
	var out []*RunRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			rec := &RunRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("registry: corrupt record %q: %w", k, err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of registered runs.
func (r *Registry) Count() (int, error) {
	var n int
	err := r.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketRuns).Stats().KeyN
		return nil
	})
	return n, err
}

// Info reports whether the backing file exists and its size in bytes, for the
// read-only status endpoints.
func (r *Registry) Info() (exists bool, size int64) {
	fi, err := os.Stat(r.path)
	if err != nil {
		return false, 0
	}
	return true, fi.Size()
}
