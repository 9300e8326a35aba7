package cache

import (
	"context"
	"testing"
	"time"

	"github.com/furom/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { _ = Reset() })
	return mr
}

func TestKYCDraftRoundTripAndTTL(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	if err := SetKYCDraft(ctx, &KYCDraft{UserID: 9, PhotoPath: "kyc/9/photo.jpg"}, time.Minute); err != nil {
		t.Fatalf("set draft failed: %v", err)
	}
	if !mr.Exists("test:kyc:draft:9") {
		t.Fatalf("expected prefixed draft key")
	}
	draft, hit, err := GetKYCDraft(ctx, 9)
	if err != nil || !hit {
		t.Fatalf("get draft failed: hit=%v err=%v", hit, err)
	}
	if draft.PhotoPath != "kyc/9/photo.jpg" {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := GetKYCDraft(ctx, 9); hit {
		t.Fatalf("draft should expire after ttl")
	}
}

func TestLeaderboardSnapshot(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	snapshot := &LeaderboardSnapshot{
		Entries:     []LeaderboardEntry{{Rank: 1, UserID: 1, Username: "alice", Exp: 120, Level: 2, LevelName: "Member"}},
		GeneratedAt: time.Now().Unix(),
	}
	if err := SetLeaderboard(ctx, snapshot, time.Minute); err != nil {
		t.Fatalf("set leaderboard failed: %v", err)
	}
	got, hit, err := GetLeaderboard(ctx)
	if err != nil || !hit {
		t.Fatalf("get leaderboard failed: hit=%v err=%v", hit, err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Username != "alice" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if err := InvalidateLeaderboard(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if _, hit, _ := GetLeaderboard(ctx); hit {
		t.Fatalf("leaderboard should be gone after invalidate")
	}
}

func TestAuthStateSeparatesPrincipals(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	if err := SetUserAuthState(ctx, BuildUserAuthState(&models.User{ID: 3, Username: "u", TokenVersion: 2})); err != nil {
		t.Fatalf("set user state failed: %v", err)
	}
	if err := SetAdminAuthState(ctx, BuildAdminAuthState(&models.Admin{ID: 3, Username: "a", IsSuper: true})); err != nil {
		t.Fatalf("set admin state failed: %v", err)
	}
	userState, hit, err := GetUserAuthState(ctx, 3)
	if err != nil || !hit || userState.Username != "u" || userState.TokenVersion != 2 {
		t.Fatalf("unexpected user state: %+v hit=%v err=%v", userState, hit, err)
	}
	adminState, hit, err := GetAdminAuthState(ctx, 3)
	if err != nil || !hit || !adminState.IsSuper {
		t.Fatalf("unexpected admin state: %+v hit=%v err=%v", adminState, hit, err)
	}
	if err := DelUserAuthState(ctx, 3); err != nil {
		t.Fatalf("del user state failed: %v", err)
	}
	if _, hit, _ := GetUserAuthState(ctx, 3); hit {
		t.Fatalf("user state should be deleted")
	}
	if _, hit, _ := GetAdminAuthState(ctx, 3); !hit {
		t.Fatalf("admin state should remain")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	_ = Reset()
	ctx := context.Background()
	if err := SetKYCDraft(ctx, &KYCDraft{UserID: 1}, time.Minute); err != nil {
		t.Fatalf("disabled set should not fail: %v", err)
	}
	if _, hit, err := GetKYCDraft(ctx, 1); hit || err != nil {
		t.Fatalf("disabled get should miss: hit=%v err=%v", hit, err)
	}
}
