package repository

import (
	"errors"
	"strings"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"

	"gorm.io/gorm"
)

// PostRepository 帖子数据访问接口
type PostRepository interface {
	List(filter PostListFilter) ([]models.Post, int64, error)
	GetByID(id uint) (*models.Post, error)
	GetActiveByID(id uint) (*models.Post, error)
	Create(post *models.Post) error
	UpdateStatus(id uint, status string) (bool, error)
	IncrementViewCount(id uint) error
	IncrementCommentCount(id uint, delta int) error
	WithTx(tx *gorm.DB) *GormPostRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建帖子仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPostRepository) WithTx(tx *gorm.DB) *GormPostRepository {
	if tx == nil {
		return r
	}
	return &GormPostRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPostRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 帖子列表
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, int64, error) {
	query := r.db.Model(&models.Post{})

	if !filter.IncludeRemoved {
		query = query.Where("status = ?", constants.ContentStatusActive)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	query = applyKeyword(query, filter.Search, "title", "content")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	switch strings.TrimSpace(filter.OrderBy) {
	case constants.PostSortTop:
		query = query.Order("score DESC").Order("id DESC")
	case constants.PostSortTrending:
		query = query.Order(trendingOrderExpr(r.db))
	default:
		query = query.Order("created_at DESC").Order("id DESC")
	}
	if filter.WithAuthor {
		query = query.Preload("Author")
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetByID 根据 ID 获取帖子（含已移除）
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").Preload("Category").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetActiveByID 获取未被移除的帖子
func (r *GormPostRepository) GetActiveByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Where("id = ? AND status = ?", id, constants.ContentStatusActive).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create 创建帖子
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// UpdateStatus 更新帖子状态，返回帖子是否存在
func (r *GormPostRepository) UpdateStatus(id uint, status string) (bool, error) {
	result := r.db.Model(&models.Post{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementViewCount 浏览数 +1
func (r *GormPostRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// IncrementCommentCount 调整评论数
func (r *GormPostRepository) IncrementCommentCount(id uint, delta int) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr(clampedAddExpr("comment_count"), delta, delta)).Error
}
