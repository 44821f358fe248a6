package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"lg/wellness-xp-api/internal/telemetry"
)

// Persister writes snapshots in the background so request handlers never wait
// on storage. Notifications that arrive while a save is pending coalesce into
// one save of the latest state.
type Persister struct {
	store   *Store
	snap    Snapshotter
	log     logrus.FieldLogger
	pending chan struct{}
	timeout time.Duration
}

func NewPersister(s *Store, snap Snapshotter, log logrus.FieldLogger) *Persister {
	return &Persister{
		store:   s,
		snap:    snap,
		log:     log.WithField("component", "persister"),
		pending: make(chan struct{}, 1),
		timeout: 10 * time.Second,
	}
}

// Notify schedules a save. It never blocks.
func (p *Persister) Notify() {
	select {
	case p.pending <- struct{}{}:
	default:
	}
}

// Run saves on each notification until ctx is done, then flushes once more
// with a fresh context so the final state reaches storage on shutdown.
func (p *Persister) Run(ctx context.Context) {
	for {
		select {
		case <-p.pending:
			p.save(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
			p.Flush(flushCtx)
			cancel()
			return
		}
	}
}

// Flush saves the current state synchronously. Failures are logged, not returned.
func (p *Persister) Flush(ctx context.Context) {
	p.save(ctx)
}

func (p *Persister) save(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.snap.Save(ctx, p.store.Snapshot())
	telemetry.RecordSnapshotSave(err)
	if err != nil {
		p.log.WithError(err).Error("snapshot save failed, state kept in memory only")
		return
	}
	p.log.Debug("snapshot saved")
}
