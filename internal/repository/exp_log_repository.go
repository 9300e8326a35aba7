package repository

import (
	"github.com/furom/internal/models"

	"gorm.io/gorm"
)

// ExpLogRepository 经验流水数据访问接口
type ExpLogRepository interface {
	Create(log *models.ExpLog) error
	List(filter ExpLogListFilter) ([]models.ExpLog, int64, error)
	WithTx(tx *gorm.DB) *GormExpLogRepository
}

// GormExpLogRepository GORM 实现
type GormExpLogRepository struct {
	db *gorm.DB
}

// NewExpLogRepository 创建经验流水仓库
func NewExpLogRepository(db *gorm.DB) *GormExpLogRepository {
	return &GormExpLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormExpLogRepository) WithTx(tx *gorm.DB) *GormExpLogRepository {
	if tx == nil {
		return r
	}
	return &GormExpLogRepository{db: tx}
}

// Create 写入流水
func (r *GormExpLogRepository) Create(log *models.ExpLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 流水列表，最新在前
func (r *GormExpLogRepository) List(filter ExpLogListFilter) ([]models.ExpLog, int64, error) {
	query := r.db.Model(&models.ExpLog{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.ExpLog
	if err := newestFirst(query).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
