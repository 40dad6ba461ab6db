package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tbourn/go-code-generator/internal/domain"
)

func codesFor(reqID uint64, from, n int64) []domain.GeneratedCode {
	out := make([]domain.GeneratedCode, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, domain.GeneratedCode{
			Seq:                 i,
			Code:                fmt.Sprintf("%07d", i),
			GenerationRequestID: reqID,
		})
	}
	return out
}

func TestHighWaterMark_EmptyAndPopulated(t *testing.T) {
	db := newRepoDB(t, 1)
	ctx := context.Background()

	hwm, ok, err := HighWaterMark(ctx, db)
	if err != nil || ok || hwm != 0 {
		t.Fatalf("empty table: hwm=%d ok=%v err=%v", hwm, ok, err)
	}

	req := seedRequest(t, db, 3)
	if err := db.Create(codesFor(req.ID, 40, 3)).Error; err != nil {
		t.Fatalf("seed codes: %v", err)
	}
	hwm, ok, err = HighWaterMark(ctx, db)
	if err != nil || !ok || hwm != 42 {
		t.Fatalf("hwm=%d ok=%v err=%v; want 42 true nil", hwm, ok, err)
	}
}

func TestHighWaterMark_NoTable(t *testing.T) {
	db := newRepoDB(t, 1)
	if err := db.Migrator().DropTable(&domain.GeneratedCode{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, _, err := HighWaterMark(context.Background(), db); err == nil {
		t.Fatalf("expected error without generated_codes table")
	}
}

func TestBulkTx_CommitPersistsAcrossStatements(t *testing.T) {
	db := newRepoDB(t, 2)
	ctx := context.Background()
	req := seedRequest(t, db, 2500)

	// rows=1000 forces three INSERT statements inside one transaction
	tx, err := BeginBulk(ctx, db, 1000)
	if err != nil {
		t.Fatalf("BeginBulk: %v", err)
	}
	defer tx.Close()

	if err := tx.Insert(codesFor(req.ID, 1, 2500)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	n, err := CountCodes(ctx, db, req.ID)
	if err != nil || n != 2500 {
		t.Fatalf("CountCodes = %d, %v; want 2500", n, err)
	}

	if err := tx.Insert(codesFor(req.ID, 9000, 1)); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Insert after commit: %v; want ErrSessionClosed", err)
	}
	if err := tx.Commit(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("double commit: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback after commit should be a no-op, got %v", err)
	}
}

func TestBulkTx_RollbackOnConflictLeavesNothing(t *testing.T) {
	db := newRepoDB(t, 2)
	ctx := context.Background()
	req := seedRequest(t, db, 10)

	if err := db.Create(codesFor(req.ID, 5, 1)).Error; err != nil {
		t.Fatalf("seed conflicting code: %v", err)
	}

	tx, err := BeginBulk(ctx, db, 0)
	if err != nil {
		t.Fatalf("BeginBulk: %v", err)
	}
	err = tx.Insert(codesFor(req.ID, 1, 10))
	if err == nil || !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	tx.Close() // second finish is harmless

	n, _ := CountCodes(ctx, db, req.ID)
	if n != 1 {
		t.Fatalf("only the seeded code should remain, got %d rows", n)
	}
}

func TestBulkTx_CloseWithoutCommitRollsBack(t *testing.T) {
	db := newRepoDB(t, 1)
	ctx := context.Background()
	req := seedRequest(t, db, 5)

	tx, err := BeginBulk(ctx, db, 0)
	if err != nil {
		t.Fatalf("BeginBulk: %v", err)
	}
	if err := tx.Insert(codesFor(req.ID, 1, 5)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	tx.Close()

	// with a single pooled connection this would hang if Close leaked it
	n, err := CountCodes(ctx, db, req.ID)
	if err != nil || n != 0 {
		t.Fatalf("CountCodes = %d, %v; want 0", n, err)
	}
}

func TestBulkTx_EmptyInsert(t *testing.T) {
	db := newRepoDB(t, 1)
	tx, err := BeginBulk(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("BeginBulk: %v", err)
	}
	defer tx.Close()
	if err := tx.Insert(nil); err != nil {
		t.Fatalf("Insert(nil): %v", err)
	}
}

func TestListCodesPage_OrderedBySeq(t *testing.T) {
	db := newRepoDB(t, 1)
	ctx := context.Background()
	a := seedRequest(t, db, 5)
	b := seedRequest(t, db, 2)

	// insert out of order to prove ORDER BY seq
	if err := db.Create(codesFor(a.ID, 3, 3)).Error; err != nil {
		t.Fatalf("seed a hi: %v", err)
	}
	if err := db.Create(codesFor(a.ID, 1, 2)).Error; err != nil {
		t.Fatalf("seed a lo: %v", err)
	}
	if err := db.Create(codesFor(b.ID, 10, 2)).Error; err != nil {
		t.Fatalf("seed b: %v", err)
	}

	page, err := ListCodesPage(ctx, db, a.ID, 1, 3)
	if err != nil {
		t.Fatalf("ListCodesPage: %v", err)
	}
	if len(page) != 3 || page[0].Seq != 2 || page[1].Seq != 3 || page[2].Seq != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if n, _ := CountCodes(ctx, db, b.ID); n != 2 {
		t.Fatalf("CountCodes(b) = %d", n)
	}
}
