package service

import (
	"context"
	"time"

	"github.com/furom/internal/cache"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/repository"
)

const (
	defaultLeaderboardSize = 50
	maxLeaderboardSize     = 200
	defaultLeaderboardTTL  = 60 * time.Second
)

// LeaderboardService 经验排行榜
type LeaderboardService struct {
	userRepo repository.UserRepository
	levels   *LevelTable
	size     int
	ttl      time.Duration
}

// NewLeaderboardService 创建排行榜服务
func NewLeaderboardService(userRepo repository.UserRepository, levels *LevelTable, size int, ttl time.Duration) *LeaderboardService {
	if size <= 0 {
		size = defaultLeaderboardSize
	}
	if size > maxLeaderboardSize {
		size = maxLeaderboardSize
	}
	if ttl <= 0 {
		ttl = defaultLeaderboardTTL
	}
	return &LeaderboardService{userRepo: userRepo, levels: levels, size: size, ttl: ttl}
}

// Size 快照容量
func (s *LeaderboardService) Size() int {
	return s.size
}

// Top 返回前 limit 名，优先读取缓存快照
func (s *LeaderboardService) Top(ctx context.Context, limit int) (*cache.LeaderboardSnapshot, error) {
	if limit <= 0 || limit > s.size {
		limit = s.size
	}

	snapshot, ok, err := cache.GetLeaderboard(ctx)
	if err != nil {
		logger.Warnw("leaderboard_cache_read_failed", "error", err)
	}
	if !ok || snapshot == nil {
		snapshot, err = s.Refresh(ctx)
		if err != nil {
			return nil, err
		}
	}
	return trimSnapshot(snapshot, limit), nil
}

// Refresh 从数据库重建快照并写入缓存
func (s *LeaderboardService) Refresh(ctx context.Context) (*cache.LeaderboardSnapshot, error) {
	users, err := s.userRepo.ListTopByExp(s.size)
	if err != nil {
		return nil, storageError("list top users", err)
	}

	snapshot := &cache.LeaderboardSnapshot{
		Entries:     make([]cache.LeaderboardEntry, 0, len(users)),
		GeneratedAt: time.Now().Unix(),
	}
	for i, user := range users {
		level := s.levels.LevelFor(user.Exp)
		snapshot.Entries = append(snapshot.Entries, cache.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Avatar:      user.Avatar,
			Exp:         user.Exp,
			Level:       level.Number,
			LevelName:   level.Name,
		})
	}

	if err := cache.SetLeaderboard(ctx, snapshot, s.ttl); err != nil {
		logger.Warnw("leaderboard_cache_write_failed", "error", err)
	}
	return snapshot, nil
}

func trimSnapshot(snapshot *cache.LeaderboardSnapshot, limit int) *cache.LeaderboardSnapshot {
	if len(snapshot.Entries) <= limit {
		return snapshot
	}
	return &cache.LeaderboardSnapshot{
		Entries:     snapshot.Entries[:limit],
		GeneratedAt: snapshot.GeneratedAt,
	}
}
