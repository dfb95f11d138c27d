package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	entity "endpoint.GO/model/entity"
	"endpoint.GO/model/dbtest"
	"endpoint.GO/model/uow"
)

func TestRun_CommitDrainsOnce(t *testing.T) {
	db, _ := dbtest.Open(t)
	var synced [][]uint
	var after int
	r := uow.New(db, func(_ context.Context, ids []uint) { synced = append(synced, ids) })

	err := r.Run(context.Background(), func(tx *uow.Tx) error {
		tx.ScheduleSync(3, 1)
		tx.ScheduleSync(1, 2, 3)
		tx.AfterCommit(func(context.Context) { after++ })
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]uint{{3, 1, 2}}, synced); diff != "" {
		t.Errorf("sync calls (-want +got):\n%s", diff)
	}
	if after != 1 {
		t.Errorf("after-commit ran %d times", after)
	}
}

func TestRun_RollbackDropsHooks(t *testing.T) {
	db, _ := dbtest.Open(t)
	called := false
	r := uow.New(db, func(context.Context, []uint) { called = true })
	boom := errors.New("boom")

	err := r.Run(context.Background(), func(tx *uow.Tx) error {
		if err := tx.DB.Create(&entity.App{TechName: "a", Name: "A", RootPath: "/a", AuthType: "user"}).Error; err != nil {
			return err
		}
		tx.ScheduleSync(1)
		tx.AfterCommit(func(context.Context) { called = true })
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Error("hooks ran after rollback")
	}
	var n int64
	db.Model(&entity.App{}).Count(&n)
	if n != 0 {
		t.Errorf("rows = %d after rollback", n)
	}
}

func TestRun_DetachedContext(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())
	var hookErr error
	r := uow.New(db, nil)
	err := r.Run(ctx, func(tx *uow.Tx) error {
		tx.AfterCommit(func(ctx context.Context) { hookErr = ctx.Err() })
		cancel()
		return nil
	})
	// a cancelled context can fail the commit itself; only a committed run drains
	if err == nil && hookErr != nil {
		t.Errorf("after-commit saw cancelled context: %v", hookErr)
	}
}
