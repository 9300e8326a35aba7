package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/metrics"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/sanitize"

	"gorm.io/gorm"
)

// CategoryService 用户分类提交与审核服务
type CategoryService struct {
	repo     repository.CategoryRepository
	userRepo repository.UserRepository
	logRepo  repository.ModerationLogRepository
	settings SettingsProvider
	identity IdentityResolver
	awards   *AwardPolicy
	notifier Notifier
}

// NewCategoryService 创建分类服务
func NewCategoryService(
	repo repository.CategoryRepository,
	userRepo repository.UserRepository,
	logRepo repository.ModerationLogRepository,
	settings SettingsProvider,
	identity IdentityResolver,
	awards *AwardPolicy,
	notifier Notifier,
) *CategoryService {
	return &CategoryService{
		repo:     repo,
		userRepo: userRepo,
		logRepo:  logRepo,
		settings: settings,
		identity: identity,
		awards:   awards,
		notifier: notifier,
	}
}

// SubmitCategoryInput 提交分类输入
type SubmitCategoryInput struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Slug            string `json:"slug" validate:"required,min=2,max=60,slug"`
	Description     string `json:"description" validate:"max=500"`
	KYCVerifiedOnly bool   `json:"kyc_verified_only"`
}

// Submit 提交分类；经验值达到自动通过阈值时直接生效
func (s *CategoryService) Submit(userID uint, input SubmitCategoryInput) (*models.Category, error) {
	input.Name = sanitize.PlainText(input.Name)
	input.Description = sanitize.PlainText(input.Description)
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	if input.Slug == "" {
		input.Slug = slugFromName(input.Name)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetModerationSettings()
	if err != nil {
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
	if user.Exp < settings.CategoryMinExp {
		return nil, ErrInsufficientExperience
	}
	if settings.KYCRequiredForCategories && user.KYCStatus != models.KYCStatusApproved {
		return nil, ErrKYCRequired
	}
	if err := s.ensureUnique(input.Name, input.Slug); err != nil {
		return nil, err
	}

	autoApprove := settings.CategoryAutoApprovalThreshold != nil && user.Exp >= *settings.CategoryAutoApprovalThreshold
	var approverID uint
	if autoApprove {
		approverID, err = s.identity.SystemApproverID()
		if err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:            input.Name,
		Slug:            input.Slug,
		Description:     input.Description,
		CreatorID:       userID,
		Status:          models.CategoryStatusPending,
		KYCVerifiedOnly: input.KYCVerifiedOnly,
	}
	if autoApprove {
		now := time.Now()
		category.Status = models.CategoryStatusActive
		category.ApprovedBy = &approverID
		category.ApprovedAt = &now
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(category); err != nil {
			if isUniqueViolation(err) {
				return errCategoryUniqueRace
			}
			return storageError("create category", err)
		}
		if !autoApprove {
			return nil
		}
		if _, err := s.awards.AwardTx(tx, userID, constants.ExpActionCategoryAutoApproved); err != nil {
			return err
		}
		return writeModerationLog(s.logRepo.WithTx(tx), &models.ModerationLog{
			AdminID:     approverID,
			SubjectKind: submissionSubjectCategory,
			SubjectID:   category.ID,
			Action:      constants.ModerationActionAutoApprove,
			FromStatus:  string(models.CategoryStatusPending),
			ToStatus:    string(models.CategoryStatusActive),
		})
	})
	if errors.Is(err, errCategoryUniqueRace) {
		// 并发提交越过前置检查时，在事务外重新判定冲突字段
		err = s.ensureUnique(input.Name, input.Slug)
		if err == nil {
			err = ErrConflict
		}
	}
	if err != nil {
		return nil, err
	}

	if autoApprove {
		metrics.ObserveSubmissionTransition(submissionSubjectCategory, constants.ModerationActionAutoApprove)
		logger.Infow("category_auto_approved", "category_id", category.ID, "user_id", userID, "exp", user.Exp)
		notifyBestEffort(s.notifier, userID,
			"Category approved",
			fmt.Sprintf("Your category %q is now live.", category.Name),
			constants.NotificationKindCategoryApproved, category.ID, constants.NotificationRelatedCategory)
	} else {
		logger.Infow("category_submitted", "category_id", category.ID, "user_id", userID)
		notifyAdminsBestEffort(s.notifier,
			"New category awaiting review",
			fmt.Sprintf("Category %q (#%d) was submitted by user #%d.", category.Name, category.ID, userID))
	}
	return category, nil
}

// errCategoryUniqueRace 插入时命中唯一索引，仅在 Submit 内部使用
var errCategoryUniqueRace = errors.New("category unique index violated")

func (s *CategoryService) ensureUnique(name, slug string) error {
	count, err := s.repo.CountByName(name)
	if err != nil {
		return storageError("count category name", err)
	}
	if count > 0 {
		return ErrCategoryNameExists
	}
	count, err = s.repo.CountBySlug(slug)
	if err != nil {
		return storageError("count category slug", err)
	}
	if count > 0 {
		return ErrCategorySlugExists
	}
	return nil
}

// Approve 审核通过（仅限 pending）
func (s *CategoryService) Approve(id, adminID uint) (*models.Category, error) {
	now := time.Now()
	category, err := s.transition(id, adminID, models.CategoryStatusActive, constants.ModerationActionApprove, "", map[string]interface{}{
		"approved_by": adminID,
		"approved_at": now,
		"reviewed_by": adminID,
	})
	if err != nil {
		return nil, err
	}
	notifyBestEffort(s.notifier, category.CreatorID,
		"Category approved",
		fmt.Sprintf("Your category %q is now live.", category.Name),
		constants.NotificationKindCategoryApproved, category.ID, constants.NotificationRelatedCategory)
	return category, nil
}

// Reject 审核驳回（仅限 pending）
func (s *CategoryService) Reject(id, adminID uint, reason string) (*models.Category, error) {
	reason, err := normalizeRejectionReason(reason)
	if err != nil {
		return nil, err
	}
	category, err := s.transition(id, adminID, models.CategoryStatusRejected, constants.ModerationActionReject, reason, map[string]interface{}{
		"reviewed_by":      adminID,
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	notifyBestEffort(s.notifier, category.CreatorID,
		"Category rejected",
		fmt.Sprintf("Your category %q was rejected: %s", category.Name, reason),
		constants.NotificationKindCategoryRejected, category.ID, constants.NotificationRelatedCategory)
	return category, nil
}

func (s *CategoryService) transition(id, adminID uint, to models.CategoryStatus, action, reason string, updates map[string]interface{}) (*models.Category, error) {
	var result *models.Category
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		category, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return storageError("lock category", err)
		}
		if category == nil {
			return ErrCategoryNotFound
		}
		from := category.Status
		if !categoryTransitions.allows(from, to) {
			return fmt.Errorf("%w: category %d %s -> %s", ErrInvalidTransition, id, from, to)
		}
		ok, err := repo.TransitionStatus(id, from, to, updates)
		if err != nil {
			return storageError("transition category", err)
		}
		if !ok {
			return fmt.Errorf("%w: category %d changed concurrently", ErrInvalidTransition, id)
		}
		if err := writeModerationLog(s.logRepo.WithTx(tx), &models.ModerationLog{
			AdminID:     adminID,
			SubjectKind: submissionSubjectCategory,
			SubjectID:   id,
			Action:      action,
			FromStatus:  string(from),
			ToStatus:    string(to),
			Reason:      reason,
		}); err != nil {
			return err
		}
		result, err = repo.GetByID(id)
		if err != nil {
			return storageError("reload category", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveSubmissionTransition(submissionSubjectCategory, action)
	logger.Infow("category_reviewed", "category_id", id, "admin_id", adminID, "action", action)
	return result, nil
}

// Get 获取分类
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storageError("get category", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// GetActiveBySlug 按 slug 获取已生效分类
func (s *CategoryService) GetActiveBySlug(slug string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, storageError("get category by slug", err)
	}
	if category == nil || category.Status != models.CategoryStatusActive {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// ListActive 已生效分类
func (s *CategoryService) ListActive() ([]models.Category, error) {
	categories, err := s.repo.ListActive()
	if err != nil {
		return nil, storageError("list active categories", err)
	}
	return categories, nil
}

// List 后台分类列表（按状态筛选）
func (s *CategoryService) List(filter repository.CategoryListFilter) ([]models.Category, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, newFieldError("status", "oneof", "must be one of [pending active rejected]")
	}
	categories, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, storageError("list categories", err)
	}
	return categories, total, nil
}

func writeModerationLog(repo repository.ModerationLogRepository, entry *models.ModerationLog) error {
	entry.CreatedAt = time.Now()
	if err := repo.Create(entry); err != nil {
		return storageError("write moderation log", err)
	}
	return nil
}
