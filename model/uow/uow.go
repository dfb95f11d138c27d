// Package uow runs gorm transactions whose follow-up work is deferred until commit.
package uow

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SyncFunc handles the record ids scheduled for sync in a committed transaction.
type SyncFunc func(ctx context.Context, ids []uint)

// Tx is the handle passed to a unit of work.
type Tx struct {
	DB *gorm.DB

	after   []func(context.Context)
	syncIDs []uint
	seen    map[uint]struct{}
}

// AfterCommit queues fn to run once the transaction commits. Dropped on rollback.
func (tx *Tx) AfterCommit(fn func(ctx context.Context)) {
	tx.after = append(tx.after, fn)
}

// ScheduleSync marks ids for the post-commit sync. Repeated ids are collapsed.
func (tx *Tx) ScheduleSync(ids ...uint) {
	if tx.seen == nil {
		tx.seen = make(map[uint]struct{})
	}
	for _, id := range ids {
		if _, ok := tx.seen[id]; ok {
			continue
		}
		tx.seen[id] = struct{}{}
		tx.syncIDs = append(tx.syncIDs, id)
	}
}

// Runner binds a database and the sync hook drained after commit.
type Runner struct {
	db     *gorm.DB
	onSync SyncFunc
}

func New(db *gorm.DB, onSync SyncFunc) *Runner {
	return &Runner{db: db, onSync: onSync}
}

// Run executes fn in a transaction. Post-commit work runs synchronously after a
// successful commit, detached from ctx cancellation; it never affects the returned error.
func (r *Runner) Run(ctx context.Context, fn func(tx *Tx) error) error {
	tx := &Tx{}
	err := r.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		tx.DB = gtx
		return fn(tx)
	})
	if err != nil {
		return err
	}
	r.drain(context.WithoutCancel(ctx), tx)
	return nil
}

func (r *Runner) drain(ctx context.Context, tx *Tx) {
	if len(tx.syncIDs) > 0 {
		if r.onSync != nil {
			r.onSync(ctx, tx.syncIDs)
		} else {
			logrus.WithField("ids", tx.syncIDs).Warn("uow: sync scheduled without a sync hook")
		}
	}
	for _, fn := range tx.after {
		fn(ctx)
	}
}

// Run is a one-off unit of work without a sync hook.
func Run(ctx context.Context, db *gorm.DB, fn func(tx *Tx) error) error {
	return New(db, nil).Run(ctx, fn)
}
