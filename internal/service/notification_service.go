package service

import (
	"context"
	"strings"
	"time"

	"github.com/furom/internal/logger"
	"github.com/furom/internal/models"
	"github.com/furom/internal/queue"
	"github.com/furom/internal/repository"

	"github.com/hibiken/asynq"
)

const (
	notificationTitleMaxRunes = 200
	notificationMaxMarkBatch  = 200
)

// Notifier 通知投递接口，调用方按尽力而为处理返回错误
type Notifier interface {
	Notify(userID uint, title, message, kind string, relatedID uint, relatedKind string) error
	NotifyAdmins(title, message string) error
}

// NotificationService 站内通知服务
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NewNotificationService 创建站内通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{repo: repo, queueClient: queueClient}
}

// Notify 投递用户通知：队列启用时异步入队，否则直接落库
func (s *NotificationService) Notify(userID uint, title, message, kind string, relatedID uint, relatedKind string) error {
	if s == nil || userID == 0 {
		return nil
	}
	payload := queue.NotificationDispatchPayload{
		UserID:      userID,
		Title:       truncateRunes(strings.TrimSpace(title), notificationTitleMaxRunes),
		Message:     strings.TrimSpace(message),
		Kind:        strings.TrimSpace(kind),
		RelatedID:   relatedID,
		RelatedKind: strings.TrimSpace(relatedKind),
	}
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueueNotificationDispatch(payload, asynq.MaxRetry(5))
	}
	return s.Deliver(context.Background(), payload)
}

// NotifyAdmins 投递管理员公告
func (s *NotificationService) NotifyAdmins(title, message string) error {
	if s == nil {
		return nil
	}
	payload := queue.AdminNoticeDispatchPayload{
		Title:   truncateRunes(strings.TrimSpace(title), notificationTitleMaxRunes),
		Message: strings.TrimSpace(message),
	}
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueueAdminNoticeDispatch(payload, asynq.MaxRetry(5))
	}
	return s.DeliverAdminNotice(context.Background(), payload)
}

// Deliver 写入用户通知（队列消费者与直写共用）
func (s *NotificationService) Deliver(ctx context.Context, payload queue.NotificationDispatchPayload) error {
	if payload.UserID == 0 || payload.Title == "" {
		logger.FromContext(ctx).Warnw("notification_payload_invalid", "user_id", payload.UserID, "kind", payload.Kind)
		return nil
	}
	notification := &models.Notification{
		UserID:      payload.UserID,
		Kind:        payload.Kind,
		Title:       payload.Title,
		Message:     payload.Message,
		RelatedKind: payload.RelatedKind,
		RelatedID:   payload.RelatedID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(notification); err != nil {
		return storageError("create notification", err)
	}
	return nil
}

// DeliverAdminNotice 写入管理员公告
func (s *NotificationService) DeliverAdminNotice(ctx context.Context, payload queue.AdminNoticeDispatchPayload) error {
	if payload.Title == "" {
		logger.FromContext(ctx).Warnw("admin_notice_payload_invalid")
		return nil
	}
	notice := &models.AdminNotice{
		Title:     payload.Title,
		Message:   payload.Message,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateAdminNotice(notice); err != nil {
		return storageError("create admin notice", err)
	}
	return nil
}

// ListForUser 用户通知列表
func (s *NotificationService) ListForUser(userID uint, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	items, total, err := s.repo.List(repository.NotificationListFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, storageError("list notifications", err)
	}
	return items, total, nil
}

// CountUnread 未读数量
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	count, err := s.repo.CountUnread(userID)
	if err != nil {
		return 0, storageError("count unread notifications", err)
	}
	return count, nil
}

// MarkRead 标记已读，ids 为空时标记全部
func (s *NotificationService) MarkRead(userID uint, ids []uint) (int64, error) {
	if len(ids) > notificationMaxMarkBatch {
		ids = ids[:notificationMaxMarkBatch]
	}
	affected, err := s.repo.MarkRead(userID, ids)
	if err != nil {
		return 0, storageError("mark notifications read", err)
	}
	return affected, nil
}

// ListAdminNotices 管理员公告列表
func (s *NotificationService) ListAdminNotices(page, pageSize int) ([]models.AdminNotice, int64, error) {
	items, total, err := s.repo.ListAdminNotices(page, pageSize)
	if err != nil {
		return nil, 0, storageError("list admin notices", err)
	}
	return items, total, nil
}

// notifyBestEffort 通知失败只记录日志，不影响主流程
func notifyBestEffort(notifier Notifier, userID uint, title, message, kind string, relatedID uint, relatedKind string) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(userID, title, message, kind, relatedID, relatedKind); err != nil {
		logger.Warnw("notification_send_failed",
			"user_id", userID,
			"kind", kind,
			"related_id", relatedID,
			"error", err,
		)
	}
}

func notifyAdminsBestEffort(notifier Notifier, title, message string) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyAdmins(title, message); err != nil {
		logger.Warnw("admin_notice_send_failed", "title", title, "error", err)
	}
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
