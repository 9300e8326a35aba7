package repository

import (
	"github.com/furom/internal/models"

	"gorm.io/gorm"
)

// ModerationLogRepository 审核日志数据访问接口
type ModerationLogRepository interface {
	Create(log *models.ModerationLog) error
	List(filter ModerationLogListFilter) ([]models.ModerationLog, int64, error)
	WithTx(tx *gorm.DB) *GormModerationLogRepository
}

// GormModerationLogRepository GORM 实现
type GormModerationLogRepository struct {
	db *gorm.DB
}

// NewModerationLogRepository 创建审核日志仓库
func NewModerationLogRepository(db *gorm.DB) *GormModerationLogRepository {
	return &GormModerationLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormModerationLogRepository) WithTx(tx *gorm.DB) *GormModerationLogRepository {
	if tx == nil {
		return r
	}
	return &GormModerationLogRepository{db: tx}
}

// Create 写入审核日志
func (r *GormModerationLogRepository) Create(log *models.ModerationLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 审核日志列表
func (r *GormModerationLogRepository) List(filter ModerationLogListFilter) ([]models.ModerationLog, int64, error) {
	query := r.db.Model(&models.ModerationLog{})
	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.SubjectKind != "" {
		query = query.Where("subject_kind = ?", filter.SubjectKind)
	}
	if filter.SubjectID != 0 {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.ModerationLog
	if err := newestFirst(query).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
