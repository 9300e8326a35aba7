package repository

import (
	"errors"
	"strings"

	"github.com/furom/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	CountByName(name string) (int64, error)
	CountBySlug(slug string) (int64, error)
	Create(category *models.Category) error
	GetByIDForUpdate(id uint) (*models.Category, error)
	TransitionStatus(id uint, from, to models.CategoryStatus, updates map[string]interface{}) (bool, error)
	IncrementPostCount(id uint, delta int) error
	List(filter CategoryListFilter) ([]models.Category, int64, error)
	ListActive() ([]models.Category, error)
	WithTx(tx *gorm.DB) *GormCategoryRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCategoryRepository) WithTx(tx *gorm.DB) *GormCategoryRepository {
	if tx == nil {
		return r
	}
	return &GormCategoryRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCategoryRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取分类
func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug 根据 slug 获取分类
func (r *GormCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// CountByName 统计同名分类（不区分大小写，不论状态）
func (r *GormCategoryRepository) CountByName(name string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count, err
}

// CountBySlug 统计相同 slug 的分类
func (r *GormCategoryRepository) CountBySlug(slug string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("slug = ?", slug).Count(&count).Error
	return count, err
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// TransitionStatus 条件更新状态：仅当当前状态为 from 时生效，返回是否命中
func (r *GormCategoryRepository) TransitionStatus(id uint, from, to models.CategoryStatus, updates map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		values[key] = value
	}
	values["status"] = to
	result := r.db.Model(&models.Category{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementPostCount 原子调整帖子数
func (r *GormCategoryRepository) IncrementPostCount(id uint, delta int) error {
	return r.db.Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("post_count", gorm.Expr(clampedAddExpr("post_count"), delta, delta)).Error
}

// List 分类列表
func (r *GormCategoryRepository) List(filter CategoryListFilter) ([]models.Category, int64, error) {
	query := r.db.Model(&models.Category{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	query = applyKeyword(query, filter.Search, "name", "slug")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var categories []models.Category
	if err := newestFirst(query).Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// ListActive 获取全部已启用分类
func (r *GormCategoryRepository) ListActive() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("status = ?", models.CategoryStatusActive).
		Order("post_count DESC").
		Order("id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByIDForUpdate 加锁获取分类
func (r *GormCategoryRepository) GetByIDForUpdate(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}
