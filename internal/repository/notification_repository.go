package repository

import (
	"time"

	"github.com/furom/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 站内通知数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notification) error
	List(filter NotificationListFilter) ([]models.Notification, int64, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(userID uint, ids []uint) (int64, error)
	CreateAdminNotice(notice *models.AdminNotice) error
	ListAdminNotices(page, pageSize int) ([]models.AdminNotice, int64, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create 写入通知
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// List 用户通知列表
func (r *GormNotificationRepository) List(filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.Notification
	if err := newestFirst(query).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountUnread 统计未读数
func (r *GormNotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead 标记已读；ids 为空时标记全部
func (r *GormNotificationRepository) MarkRead(userID uint, ids []uint) (int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ? AND read_at IS NULL", userID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

// CreateAdminNotice 写入管理员公告
func (r *GormNotificationRepository) CreateAdminNotice(notice *models.AdminNotice) error {
	return r.db.Create(notice).Error
}

// ListAdminNotices 管理员公告列表
func (r *GormNotificationRepository) ListAdminNotices(page, pageSize int) ([]models.AdminNotice, int64, error) {
	query := r.db.Model(&models.AdminNotice{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	var items []models.AdminNotice
	if err := newestFirst(query).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
