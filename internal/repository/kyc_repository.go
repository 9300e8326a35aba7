package repository

import (
	"errors"

	"github.com/furom/internal/models"

	"gorm.io/gorm"
)

// KYCRepository 实名认证提交数据访问接口
type KYCRepository interface {
	GetByID(id uint) (*models.KYCSubmission, error)
	GetOpenByUser(userID uint) (*models.KYCSubmission, error)
	GetLatestByUser(userID uint) (*models.KYCSubmission, error)
	Create(submission *models.KYCSubmission) error
	TransitionStatus(id uint, from, to models.KYCStatus, updates map[string]interface{}) (bool, error)
	List(filter KYCListFilter) ([]models.KYCSubmission, int64, error)
	WithTx(tx *gorm.DB) *GormKYCRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormKYCRepository GORM 实现
type GormKYCRepository struct {
	db *gorm.DB
}

// NewKYCRepository 创建实名认证仓库
func NewKYCRepository(db *gorm.DB) *GormKYCRepository {
	return &GormKYCRepository{db: db}
}

// WithTx 绑定事务
func (r *GormKYCRepository) WithTx(tx *gorm.DB) *GormKYCRepository {
	if tx == nil {
		return r
	}
	return &GormKYCRepository{db: tx}
}

// Transaction 执行事务
func (r *GormKYCRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取提交记录
func (r *GormKYCRepository) GetByID(id uint) (*models.KYCSubmission, error) {
	var submission models.KYCSubmission
	if err := r.db.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// GetOpenByUser 获取用户处于 pending/approved 的提交
func (r *GormKYCRepository) GetOpenByUser(userID uint) (*models.KYCSubmission, error) {
	var submission models.KYCSubmission
	err := r.db.Where("user_id = ? AND status IN ?", userID, []models.KYCStatus{
		models.KYCStatusPending,
		models.KYCStatusApproved,
	}).Order("id DESC").First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// GetLatestByUser 获取用户最近一次提交
func (r *GormKYCRepository) GetLatestByUser(userID uint) (*models.KYCSubmission, error) {
	var submission models.KYCSubmission
	if err := r.db.Where("user_id = ?", userID).Order("id DESC").First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// Create 创建提交记录
func (r *GormKYCRepository) Create(submission *models.KYCSubmission) error {
	return r.db.Create(submission).Error
}

// TransitionStatus 条件更新状态：仅当当前状态为 from 时生效，返回是否命中
func (r *GormKYCRepository) TransitionStatus(id uint, from, to models.KYCStatus, updates map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		values[key] = value
	}
	values["status"] = to
	result := r.db.Model(&models.KYCSubmission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 提交记录列表
func (r *GormKYCRepository) List(filter KYCListFilter) ([]models.KYCSubmission, int64, error) {
	query := r.db.Model(&models.KYCSubmission{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithUser {
		query = query.Preload("User")
	}

	var submissions []models.KYCSubmission
	if err := query.Order("id ASC").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}
