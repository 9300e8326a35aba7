package cache

import (
	"context"
	"fmt"
	"time"
)

const leaderboardKey = "leaderboard:exp"

// KYCDraft 实名认证第一步草稿
type KYCDraft struct {
	UserID    uint   `json:"user_id"`
	PhotoPath string `json:"photo_path"`
	SavedAt   int64  `json:"saved_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Exp         int    `json:"exp"`
	Level       int    `json:"level"`
	LevelName   string `json:"level_name"`
}

// LeaderboardSnapshot 排行榜快照
type LeaderboardSnapshot struct {
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt int64              `json:"generated_at"`
}

func kycDraftKey(userID uint) string {
	return fmt.Sprintf("kyc:draft:%d", userID)
}

// SetKYCDraft 保存草稿
func SetKYCDraft(ctx context.Context, draft *KYCDraft, ttl time.Duration) error {
	if draft == nil || draft.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, kycDraftKey(draft.UserID), draft, ttl)
}

// GetKYCDraft 读取草稿
func GetKYCDraft(ctx context.Context, userID uint) (*KYCDraft, bool, error) {
	var draft KYCDraft
	hit, err := GetJSON(ctx, kycDraftKey(userID), &draft)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &draft, true, nil
}

// DelKYCDraft 删除草稿
func DelKYCDraft(ctx context.Context, userID uint) error {
	return Del(ctx, kycDraftKey(userID))
}

// GetLeaderboard 读取排行榜快照
func GetLeaderboard(ctx context.Context) (*LeaderboardSnapshot, bool, error) {
	var snapshot LeaderboardSnapshot
	hit, err := GetJSON(ctx, leaderboardKey, &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// SetLeaderboard 写入排行榜快照
func SetLeaderboard(ctx context.Context, snapshot *LeaderboardSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	return SetJSON(ctx, leaderboardKey, snapshot, ttl)
}

// InvalidateLeaderboard 删除排行榜快照
func InvalidateLeaderboard(ctx context.Context) error {
	return Del(ctx, leaderboardKey)
}
