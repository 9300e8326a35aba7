package worker

import (
	"context"
	"encoding/json"

	"github.com/furom/internal/logger"
	"github.com/furom/internal/provider"
	"github.com/furom/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskAdminNoticeDispatch, c.handleAdminNoticeDispatch)
	mux.HandleFunc(queue.TaskLeaderboardRefresh, c.handleLeaderboardRefresh)
}

func (c *Consumer) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	if err := c.NotificationService.Deliver(ctx, payload); err != nil {
		logger.Warnw("worker_notification_dispatch_failed",
			"user_id", payload.UserID,
			"kind", payload.Kind,
			"related_id", payload.RelatedID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleAdminNoticeDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_admin_notice_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AdminNoticeDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_admin_notice_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_admin_notice_dispatch_skip_service_nil")
		return nil
	}
	if err := c.NotificationService.DeliverAdminNotice(ctx, payload); err != nil {
		logger.Warnw("worker_admin_notice_dispatch_failed", "title", payload.Title, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleLeaderboardRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_leaderboard_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LeaderboardRefreshPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_leaderboard_refresh_unmarshal_failed", "error", err)
			return err
		}
	}
	if c.LeaderboardService == nil {
		logger.Warnw("worker_leaderboard_refresh_skip_service_nil")
		return nil
	}
	snapshot, err := c.LeaderboardService.Refresh(ctx)
	if err != nil {
		logger.Warnw("worker_leaderboard_refresh_failed", "limit", payload.Limit, "error", err)
		return err
	}
	logger.Debugw("worker_leaderboard_refreshed", "entries", len(snapshot.Entries))
	return nil
}
