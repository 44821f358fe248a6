package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var (
	// ErrSnapshotNotFound means no snapshot has been written yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrPersistence wraps every load/save failure other than a missing snapshot.
	ErrPersistence = errors.New("persistence failure")
)

// Snapshotter reads and writes the full state as one document.
type Snapshotter interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Open builds a Store from whatever snap holds. A missing snapshot starts
// empty; a corrupt or unreadable one is logged and also starts empty. Open
// never fails.
func Open(ctx context.Context, snap Snapshotter, log logrus.FieldLogger, opts ...Option) *Store {
	s := New(append([]Option{WithLogger(log)}, opts...)...)

	loaded, err := snap.Load(ctx)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		log.Info("no snapshot found, starting with empty state")
	case err != nil:
		log.WithError(err).Error("failed to load snapshot, starting with empty state")
	default:
		s.Restore(loaded)
		log.WithField("users", s.Len()).Info("state restored from snapshot")
	}
	return s
}

/* ─── File backend ────────────────────────────────────────────────────── */

// FileSnapshotter stores the snapshot as a JSON file.
type FileSnapshotter struct {
	Path string
}

func NewFileSnapshotter(path string) *FileSnapshotter {
	return &FileSnapshotter{Path: path}
}

func (f *FileSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read %s: %v", ErrPersistence, f.Path, err)
	}
	return decodeSnapshot(b)
}

// Save writes to a temp file in the same directory and renames it over the
// target so a crash mid-write never leaves a truncated snapshot.
func (f *FileSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrPersistence, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("%w: rename snapshot: %v", ErrPersistence, err)
	}
	return nil
}

func decodeSnapshot(b []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", ErrPersistence, err)
	}
	if snap.UserProfiles == nil {
		snap.UserProfiles = map[string]Profile{}
	}
	if snap.UserXPLog == nil {
		snap.UserXPLog = map[string]map[string]int{}
	}
	return snap, nil
}
