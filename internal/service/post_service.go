package service

import (
	"strings"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/sanitize"

	"gorm.io/gorm"
)

// PostService 帖子业务服务
type PostService struct {
	repo         repository.PostRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	logRepo      repository.ModerationLogRepository
	awards       *AwardPolicy
}

// NewPostService 创建帖子服务
func NewPostService(
	repo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	logRepo repository.ModerationLogRepository,
	awards *AwardPolicy,
) *PostService {
	return &PostService{
		repo:         repo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		logRepo:      logRepo,
		awards:       awards,
	}
}

// CreatePostInput 发帖输入
type CreatePostInput struct {
	CategoryID uint   `json:"category_id" validate:"required"`
	Title      string `json:"title" validate:"required,min=3,max=200"`
	Content    string `json:"content" validate:"required,max=20000"`
}

// PostQuery 帖子列表查询
type PostQuery struct {
	CategoryID uint
	UserID     uint
	Sort       string
	Search     string
	Page       int
	PageSize   int
}

var allowedPostSorts = map[string]struct{}{
	constants.PostSortLatest:   {},
	constants.PostSortTop:      {},
	constants.PostSortTrending: {},
}

// Create 在已生效分类下发帖，并在同一事务内奖励经验值
func (s *PostService) Create(userID uint, input CreatePostInput) (*models.Post, error) {
	input.Title = sanitize.PlainText(input.Title)
	input.Content = sanitize.RichText(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, storageError("get category", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if category.Status != models.CategoryStatusActive {
		return nil, ErrCategoryNotActive
	}
	if category.KYCVerifiedOnly && user.KYCStatus != models.KYCStatusApproved {
		return nil, ErrKYCRequired
	}

	post := &models.Post{
		UserID:     userID,
		CategoryID: category.ID,
		Title:      input.Title,
		Content:    input.Content,
		Status:     constants.ContentStatusActive,
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(post); err != nil {
			return storageError("create post", err)
		}
		if err := s.categoryRepo.WithTx(tx).IncrementPostCount(category.ID, 1); err != nil {
			return storageError("increment post count", err)
		}
		_, err := s.awards.AwardTx(tx, userID, constants.ExpActionPostCreated)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("post_created", "post_id", post.ID, "user_id", userID, "category_id", category.ID)
	return post, nil
}

// List 公开帖子列表
func (s *PostService) List(query PostQuery) ([]models.Post, int64, error) {
	sort := strings.ToLower(strings.TrimSpace(query.Sort))
	if _, ok := allowedPostSorts[sort]; !ok {
		sort = constants.PostSortLatest
	}
	posts, total, err := s.repo.List(repository.PostListFilter{
		Page:       query.Page,
		PageSize:   query.PageSize,
		CategoryID: query.CategoryID,
		UserID:     query.UserID,
		Search:     strings.TrimSpace(query.Search),
		OrderBy:    sort,
		WithAuthor: true,
	})
	if err != nil {
		return nil, 0, storageError("list posts", err)
	}
	return posts, total, nil
}

// Get 帖子详情，countView 为真时浏览数 +1
func (s *PostService) Get(id uint, countView bool) (*models.Post, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storageError("get post", err)
	}
	if post == nil || post.Status != constants.ContentStatusActive {
		return nil, ErrPostNotFound
	}
	if countView {
		if err := s.repo.IncrementViewCount(id); err != nil {
			logger.Warnw("post_view_count_failed", "post_id", id, "error", err)
		} else {
			post.ViewCount++
		}
	}
	return post, nil
}

// ListAdmin 后台帖子列表（含已移除）
func (s *PostService) ListAdmin(status, search string, page, pageSize int) ([]models.Post, int64, error) {
	if status != "" && status != constants.ContentStatusActive && status != constants.ContentStatusRemoved {
		return nil, 0, ErrInvalidContentStatus
	}
	posts, total, err := s.repo.List(repository.PostListFilter{
		Page:           page,
		PageSize:       pageSize,
		Status:         status,
		Search:         strings.TrimSpace(search),
		WithAuthor:     true,
		IncludeRemoved: true,
	})
	if err != nil {
		return nil, 0, storageError("list admin posts", err)
	}
	return posts, total, nil
}

// Moderate 管理员设置帖子状态（active / removed）
func (s *PostService) Moderate(id, adminID uint, status, reason string) (*models.Post, error) {
	action, err := moderationActionFor(status)
	if err != nil {
		return nil, err
	}
	var result *models.Post
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		post, err := repo.GetByID(id)
		if err != nil {
			return storageError("get post", err)
		}
		if post == nil {
			return ErrPostNotFound
		}
		if post.Status == status {
			result = post
			return nil
		}
		if _, err := repo.UpdateStatus(id, status); err != nil {
			return storageError("update post status", err)
		}
		delta := 1
		if status == constants.ContentStatusRemoved {
			delta = -1
		}
		if err := s.categoryRepo.WithTx(tx).IncrementPostCount(post.CategoryID, delta); err != nil {
			return storageError("adjust post count", err)
		}
		if err := writeModerationLog(s.logRepo.WithTx(tx), &models.ModerationLog{
			AdminID:     adminID,
			SubjectKind: constants.VoteTargetPost,
			SubjectID:   id,
			Action:      action,
			FromStatus:  post.Status,
			ToStatus:    status,
			Reason:      strings.TrimSpace(reason),
		}); err != nil {
			return err
		}
		post.Status = status
		result = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("post_moderated", "post_id", id, "admin_id", adminID, "status", status)
	return result, nil
}

func moderationActionFor(status string) (string, error) {
	switch status {
	case constants.ContentStatusRemoved:
		return constants.ModerationActionRemove, nil
	case constants.ContentStatusActive:
		return constants.ModerationActionRestore, nil
	}
	return "", ErrInvalidContentStatus
}
