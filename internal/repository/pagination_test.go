package repository

import (
	"testing"

	"github.com/furom/internal/models"
)

func TestExpLogListPaginatesNewestFirst(t *testing.T) {
	db := setupRepositoryTestDB(t)
	user := createRepoTestUser(t, db, "pager")
	repo := NewExpLogRepository(db)

	for i := 1; i <= 5; i++ {
		if err := repo.Create(&models.ExpLog{UserID: user.ID, Delta: i, Applied: i, Reason: "post_create", BalanceAfter: i}); err != nil {
			t.Fatalf("create log failed: %v", err)
		}
	}

	rows, total, err := repo.List(ExpLogListFilter{UserID: user.ID, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 || len(rows) != 2 {
		t.Fatalf("want total=5 rows=2 got total=%d rows=%d", total, len(rows))
	}
	if rows[0].Delta != 3 || rows[1].Delta != 2 {
		t.Fatalf("unexpected page order: %d, %d", rows[0].Delta, rows[1].Delta)
	}

	rows, _, err = repo.List(ExpLogListFilter{UserID: user.ID, Page: 0, PageSize: 0})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("pageSize=0 should return every row, got %d", len(rows))
	}
}

func TestApplyPaginationCapsPageSize(t *testing.T) {
	db := setupRepositoryTestDB(t)
	user := createRepoTestUser(t, db, "capper")
	repo := NewExpLogRepository(db)
	for i := 0; i < maxListPageSize+5; i++ {
		if err := repo.Create(&models.ExpLog{UserID: user.ID, Delta: 1, Applied: 1, Reason: "vote_received", BalanceAfter: i}); err != nil {
			t.Fatalf("create log failed: %v", err)
		}
	}
	rows, total, err := repo.List(ExpLogListFilter{UserID: user.ID, Page: 1, PageSize: 10000})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != int64(maxListPageSize+5) || len(rows) != maxListPageSize {
		t.Fatalf("want %d rows capped at %d, got total=%d rows=%d", maxListPageSize+5, maxListPageSize, total, len(rows))
	}
}
