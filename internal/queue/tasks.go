package queue

import (
	"encoding/json"

	"github.com/furom/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 用户站内通知投递任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskAdminNoticeDispatch 管理员公告投递任务
	TaskAdminNoticeDispatch = constants.TaskAdminNoticeDispatch
	// TaskLeaderboardRefresh 排行榜缓存刷新任务
	TaskLeaderboardRefresh = constants.TaskLeaderboardRefresh
)

// NotificationDispatchPayload 用户通知任务载荷
type NotificationDispatchPayload struct {
	UserID      uint   `json:"user_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Kind        string `json:"kind"`
	RelatedID   uint   `json:"related_id"`
	RelatedKind string `json:"related_kind"`
}

// AdminNoticeDispatchPayload 管理员公告任务载荷
type AdminNoticeDispatchPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// LeaderboardRefreshPayload 排行榜刷新任务载荷
type LeaderboardRefreshPayload struct {
	Limit int `json:"limit"`
}

// NewNotificationDispatchTask 创建用户通知任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewAdminNoticeDispatchTask 创建管理员公告任务
func NewAdminNoticeDispatchTask(payload AdminNoticeDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAdminNoticeDispatch, body), nil
}

// NewLeaderboardRefreshTask 创建排行榜刷新任务
func NewLeaderboardRefreshTask(payload LeaderboardRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaderboardRefresh, body), nil
}
