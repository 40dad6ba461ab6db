package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBulkInserter_Workers(t *testing.T) {
	b := &BulkInserter{ChunkSize: 10_000, MaxWorkers: 40}
	cases := map[int]int{
		1:         1,
		25:        1,
		10_000:    1,
		10_001:    2,
		100_000:   10,
		1_000_000: 40,
	}
	for n, want := range cases {
		if got := b.Workers(n); got != want {
			t.Errorf("Workers(%d) = %d; want %d", n, got, want)
		}
	}

	def := &BulkInserter{}
	if got := def.Workers(5_000_000); got != DefaultInsertMaxWorkers {
		t.Fatalf("default cap = %d; want %d", got, DefaultInsertMaxWorkers)
	}
}

func TestBulkInserter_AllCommitted(t *testing.T) {
	st := newFakeStore()
	b := &BulkInserter{Store: st, ChunkSize: 10, MaxWorkers: 3}

	before := testutil.ToFloat64(codesPersisted)
	res := b.Persist(context.Background(), 1, rowsFrom(1, 35))

	if res.Batches != 4 || res.Persisted != 35 || len(res.Failed) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if st.committedCount() != 35 || st.begins != 4 || st.closes != 4 {
		t.Fatalf("committed=%d begins=%d closes=%d", st.committedCount(), st.begins, st.closes)
	}
	if got := testutil.ToFloat64(codesPersisted) - before; got != 35 {
		t.Fatalf("codes persisted metric delta = %v", got)
	}
	if got := testutil.ToFloat64(insertWorkers); got != 3 {
		t.Fatalf("insert workers gauge = %v; want 3", got)
	}
}

func TestBulkInserter_FailingSubBatchIsIsolated(t *testing.T) {
	st := newFakeStore()
	boom := errors.New("unique violation")
	st.failRows = failSeq(15, boom)
	b := &BulkInserter{Store: st, ChunkSize: 10, MaxWorkers: 4}

	beforeFail := testutil.ToFloat64(subBatchFailures)
	res := b.Persist(context.Background(), 1, rowsFrom(1, 35))

	if res.Persisted != 25 || len(res.Failed) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	f := res.Failed[0]
	if f.Batch != 1 || f.Offset != 10 || f.Size != 10 || !errors.Is(f, boom) {
		t.Fatalf("unexpected failure: %+v", f)
	}
	if res.NotPersisted() != 10 {
		t.Fatalf("NotPersisted = %d", res.NotPersisted())
	}
	if st.committedCount() != 25 || st.rollbacks != 1 {
		t.Fatalf("committed=%d rollbacks=%d", st.committedCount(), st.rollbacks)
	}
	for seq := int64(11); seq <= 20; seq++ {
		if _, ok := st.committed[seq]; ok {
			t.Fatalf("seq %d from the failed batch was committed", seq)
		}
	}
	if got := testutil.ToFloat64(subBatchFailures) - beforeFail; got != 1 {
		t.Fatalf("failure metric delta = %v", got)
	}
}

func TestBulkInserter_BeginError(t *testing.T) {
	st := newFakeStore()
	st.beginErr = errors.New("pool exhausted")
	b := &BulkInserter{Store: st, ChunkSize: 5}

	res := b.Persist(context.Background(), 1, rowsFrom(1, 12))
	if res.Persisted != 0 || len(res.Failed) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Failed[2].Size != 2 || res.Failed[2].Offset != 10 {
		t.Fatalf("last failure should cover the 2-row tail: %+v", res.Failed[2])
	}
}

func TestBulkInserter_TimeoutFailsUnfinishedBatches(t *testing.T) {
	st := newFakeStore()
	st.blockInsert = true
	b := &BulkInserter{Store: st, ChunkSize: 10, MaxWorkers: 1, Timeout: 30 * time.Millisecond}

	done := make(chan PersistResult, 1)
	go func() { done <- b.Persist(context.Background(), 1, rowsFrom(1, 30)) }()

	var res PersistResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Persist did not return after its timeout")
	}
	if res.Persisted != 0 || len(res.Failed) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	for _, f := range res.Failed {
		if !errors.Is(f.Err, context.DeadlineExceeded) {
			t.Fatalf("batch %d: expected deadline exceeded, got %v", f.Batch, f.Err)
		}
	}
	if st.begins > 3 {
		t.Fatalf("more sessions than sub-batches: %d", st.begins)
	}
}

func TestBulkInserter_CallerCancel(t *testing.T) {
	st := newFakeStore()
	b := &BulkInserter{Store: st, ChunkSize: 10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := b.Persist(ctx, 1, rowsFrom(1, 20))
	if res.Persisted != 0 || len(res.Failed) != 2 || !errors.Is(res.Failed[0].Err, context.Canceled) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if st.begins != 0 {
		t.Fatalf("no session should be opened after cancel, got %d", st.begins)
	}
}

func TestBulkInserter_Empty(t *testing.T) {
	b := &BulkInserter{Store: newFakeStore()}
	if res := b.Persist(context.Background(), 1, nil); res.Batches != 0 || res.Persisted != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
