package service

import (
	"context"
	"testing"
	"time"

	"github.com/furom/internal/cache"
	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"
)

func TestLeaderboardOrderingAndCache(t *testing.T) {
	db := setupServiceTestDB(t)
	mr := setupServiceRedis(t)
	svc := NewLeaderboardService(repository.NewUserRepository(db), MustLevelTable(config.DefaultLevels()), 3, 30*time.Second)

	createServiceTestUser(t, db, "low", 10)
	top := createServiceTestUser(t, db, "top", 6000)
	createServiceTestUser(t, db, "mid", 600)
	createServiceTestUser(t, db, "tie", 600)
	banned := createServiceTestUser(t, db, "banned", 99999)
	if err := db.Model(&models.User{}).Where("id = ?", banned.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	ctx := context.Background()
	snapshot, err := svc.Top(ctx, 0)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(snapshot.Entries) != 3 {
		t.Fatalf("expected 3 entries got %d", len(snapshot.Entries))
	}
	first := snapshot.Entries[0]
	if first.UserID != top.ID || first.Rank != 1 || first.LevelName != "Elite" {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if snapshot.Entries[1].Username != "mid" || snapshot.Entries[2].Username != "tie" {
		t.Fatalf("ties must be ordered by id, got %+v", snapshot.Entries)
	}
	if !mr.Exists(cache.BuildKey("leaderboard:exp")) {
		t.Fatalf("expected snapshot cached")
	}

	if err := db.Model(&models.User{}).Where("id = ?", top.ID).Update("exp", 0).Error; err != nil {
		t.Fatalf("update exp failed: %v", err)
	}
	cached, err := svc.Top(ctx, 1)
	if err != nil {
		t.Fatalf("cached top failed: %v", err)
	}
	if len(cached.Entries) != 1 || cached.Entries[0].UserID != top.ID {
		t.Fatalf("expected cached snapshot within ttl, got %+v", cached.Entries)
	}

	mr.FastForward(31 * time.Second)
	fresh, err := svc.Top(ctx, 1)
	if err != nil {
		t.Fatalf("fresh top failed: %v", err)
	}
	if fresh.Entries[0].Username != "mid" {
		t.Fatalf("expected rebuilt snapshot after ttl, got %+v", fresh.Entries)
	}
}

func TestLeaderboardWithoutCache(t *testing.T) {
	db := setupServiceTestDB(t)
	_ = cache.Reset()
	svc := NewLeaderboardService(repository.NewUserRepository(db), MustLevelTable(config.DefaultLevels()), 0, 0)
	createServiceTestUser(t, db, "solo", 42)

	snapshot, err := svc.Top(context.Background(), 500)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Level != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot.Entries)
	}
	if svc.Size() != defaultLeaderboardSize {
		t.Fatalf("expected default size got %d", svc.Size())
	}
}
