package worker

import (
	"context"
	"errors"
	"time"

	"github.com/furom/internal/config"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultLeaderboardRefreshInterval = 5 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name            string
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	refreshInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:            "worker",
		server:          server,
		mux:             mux,
		consumer:        consumer,
		refreshInterval: resolveRefreshInterval(consumer),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.QueueClient.Enabled() {
		go s.runLeaderboardRefreshLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runLeaderboardRefreshLoop 定期投递排行榜刷新任务，多实例间靠任务去重
func (s *Service) runLeaderboardRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.QueueClient == nil {
		return
	}
	runOnce := func() {
		payload := queue.LeaderboardRefreshPayload{}
		if s.consumer.LeaderboardService != nil {
			payload.Limit = s.consumer.LeaderboardService.Size()
		}
		if err := s.consumer.QueueClient.EnqueueLeaderboardRefresh(payload, s.refreshInterval/2); err != nil {
			logger.Warnw("worker_leaderboard_refresh_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func resolveRefreshInterval(consumer *Consumer) time.Duration {
	if consumer == nil || consumer.Container == nil || consumer.Config == nil {
		return defaultLeaderboardRefreshInterval
	}
	seconds := consumer.Config.Reputation.LeaderboardTTLSeconds
	if seconds <= 0 {
		return defaultLeaderboardRefreshInterval
	}
	return time.Duration(seconds) * time.Second
}
