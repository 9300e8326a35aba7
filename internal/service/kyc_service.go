package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/furom/internal/cache"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/metrics"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

const defaultKYCDraftTTL = 30 * time.Minute

// KYCService 实名认证提交与审核服务
type KYCService struct {
	repo     repository.KYCRepository
	userRepo repository.UserRepository
	logRepo  repository.ModerationLogRepository
	settings SettingsProvider
	identity IdentityResolver
	notifier Notifier
	draftTTL time.Duration
}

// NewKYCService 创建实名认证服务
func NewKYCService(
	repo repository.KYCRepository,
	userRepo repository.UserRepository,
	logRepo repository.ModerationLogRepository,
	settings SettingsProvider,
	identity IdentityResolver,
	notifier Notifier,
	draftTTL time.Duration,
) *KYCService {
	if draftTTL <= 0 {
		draftTTL = defaultKYCDraftTTL
	}
	return &KYCService{
		repo:     repo,
		userRepo: userRepo,
		logRepo:  logRepo,
		settings: settings,
		identity: identity,
		notifier: notifier,
		draftTTL: draftTTL,
	}
}

// SubmitKYCInput 提交实名认证输入
type SubmitKYCInput struct {
	PhotoPath    string `json:"photo_path" validate:"required,max=500"`
	DocumentPath string `json:"document_path" validate:"required,max=500"`
}

// KYCOverview 用户实名状态概览
type KYCOverview struct {
	Status     models.KYCStatus      `json:"status"`
	Submission *models.KYCSubmission `json:"submission,omitempty"`
}

// Submit 提交实名认证；同一用户最多一条 pending/approved 记录
func (s *KYCService) Submit(userID uint, input SubmitKYCInput) (*models.KYCSubmission, error) {
	input.PhotoPath = strings.TrimSpace(input.PhotoPath)
	input.DocumentPath = strings.TrimSpace(input.DocumentPath)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetModerationSettings()
	if err != nil {
		return nil, err
	}
	var approverID uint
	if settings.KYCAutoApprovalThreshold != nil {
		approverID, err = s.identity.SystemApproverID()
		if err != nil {
			return nil, err
		}
	}

	var submission *models.KYCSubmission
	autoApproved := false
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		kycRepo := s.repo.WithTx(tx)

		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			return storageError("lock user", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		open, err := kycRepo.GetOpenByUser(userID)
		if err != nil {
			return storageError("get open kyc submission", err)
		}
		if open != nil {
			return ErrDuplicateSubmission
		}

		autoApproved = settings.KYCAutoApprovalThreshold != nil && user.Exp >= *settings.KYCAutoApprovalThreshold
		submission = &models.KYCSubmission{
			UserID:       userID,
			PhotoPath:    input.PhotoPath,
			DocumentPath: input.DocumentPath,
			Status:       models.KYCStatusPending,
		}
		if autoApproved {
			now := time.Now()
			submission.Status = models.KYCStatusApproved
			submission.ReviewedBy = &approverID
			submission.ReviewedAt = &now
		}
		if err := kycRepo.Create(submission); err != nil {
			return storageError("create kyc submission", err)
		}
		if err := userRepo.UpdateKYCStatus(userID, submission.Status); err != nil {
			return storageError("update user kyc status", err)
		}
		if !autoApproved {
			return nil
		}
		return writeModerationLog(s.logRepo.WithTx(tx), &models.ModerationLog{
			AdminID:     approverID,
			SubjectKind: submissionSubjectKYC,
			SubjectID:   submission.ID,
			Action:      constants.ModerationActionAutoApprove,
			FromStatus:  string(models.KYCStatusPending),
			ToStatus:    string(models.KYCStatusApproved),
		})
	})
	if err != nil {
		return nil, err
	}

	if autoApproved {
		metrics.ObserveSubmissionTransition(submissionSubjectKYC, constants.ModerationActionAutoApprove)
		logger.Infow("kyc_auto_approved", "submission_id", submission.ID, "user_id", userID)
		notifyBestEffort(s.notifier, userID, "Identity verified", "Your identity verification was approved.",
			constants.NotificationKindKYCApproved, submission.ID, constants.NotificationRelatedKYC)
	} else {
		logger.Infow("kyc_submitted", "submission_id", submission.ID, "user_id", userID)
		notifyAdminsBestEffort(s.notifier, "New KYC submission",
			fmt.Sprintf("User #%d submitted identity documents (submission #%d).", userID, submission.ID))
	}
	return submission, nil
}

// SaveKYCDraft 第一步：暂存人像照片引用
func (s *KYCService) SaveKYCDraft(ctx context.Context, userID uint, photoPath string) (*cache.KYCDraft, error) {
	photoPath = strings.TrimSpace(photoPath)
	if photoPath == "" {
		return nil, newFieldError("photo_path", "required", "is required")
	}
	if !cache.Enabled() {
		return nil, ErrCacheUnavailable
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	draft := &cache.KYCDraft{UserID: userID, PhotoPath: photoPath, SavedAt: time.Now().Unix()}
	if err := cache.SetKYCDraft(ctx, draft, s.draftTTL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return draft, nil
}

// CompleteKYC 第二步：读取草稿并提交
func (s *KYCService) CompleteKYC(ctx context.Context, userID uint, documentPath string) (*models.KYCSubmission, error) {
	if !cache.Enabled() {
		return nil, ErrCacheUnavailable
	}
	draft, hit, err := cache.GetKYCDraft(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	if !hit {
		return nil, ErrKYCDraftNotFound
	}
	submission, err := s.Submit(userID, SubmitKYCInput{PhotoPath: draft.PhotoPath, DocumentPath: documentPath})
	if err != nil {
		return nil, err
	}
	if err := cache.DelKYCDraft(ctx, userID); err != nil {
		logger.FromContext(ctx).Warnw("kyc_draft_delete_failed", "user_id", userID, "error", err)
	}
	return submission, nil
}

// Approve 审核通过
func (s *KYCService) Approve(id, adminID uint) (*models.KYCSubmission, error) {
	submission, err := s.transition(id, adminID, models.KYCStatusApproved, constants.ModerationActionApprove, "")
	if err != nil {
		return nil, err
	}
	notifyBestEffort(s.notifier, submission.UserID, "Identity verified", "Your identity verification was approved.",
		constants.NotificationKindKYCApproved, submission.ID, constants.NotificationRelatedKYC)
	return submission, nil
}

// Reject 审核驳回
func (s *KYCService) Reject(id, adminID uint, reason string) (*models.KYCSubmission, error) {
	reason, err := normalizeRejectionReason(reason)
	if err != nil {
		return nil, err
	}
	submission, err := s.transition(id, adminID, models.KYCStatusRejected, constants.ModerationActionReject, reason)
	if err != nil {
		return nil, err
	}
	notifyBestEffort(s.notifier, submission.UserID, "Identity verification rejected",
		fmt.Sprintf("Your identity verification was rejected: %s", reason),
		constants.NotificationKindKYCRejected, submission.ID, constants.NotificationRelatedKYC)
	return submission, nil
}

func (s *KYCService) transition(id, adminID uint, to models.KYCStatus, action, reason string) (*models.KYCSubmission, error) {
	var result *models.KYCSubmission
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		kycRepo := s.repo.WithTx(tx)
		submission, err := kycRepo.GetByID(id)
		if err != nil {
			return storageError("get kyc submission", err)
		}
		if submission == nil {
			return ErrSubmissionNotFound
		}
		from := submission.Status
		if !kycTransitions.allows(from, to) {
			return fmt.Errorf("%w: kyc submission %d %s -> %s", ErrInvalidTransition, id, from, to)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"reviewed_by": adminID,
			"reviewed_at": now,
		}
		if reason != "" {
			updates["rejection_reason"] = reason
		}
		ok, err := kycRepo.TransitionStatus(id, from, to, updates)
		if err != nil {
			return storageError("transition kyc submission", err)
		}
		if !ok {
			return fmt.Errorf("%w: kyc submission %d changed concurrently", ErrInvalidTransition, id)
		}
		if err := s.userRepo.WithTx(tx).UpdateKYCStatus(submission.UserID, to); err != nil {
			return storageError("update user kyc status", err)
		}
		if err := writeModerationLog(s.logRepo.WithTx(tx), &models.ModerationLog{
			AdminID:     adminID,
			SubjectKind: submissionSubjectKYC,
			SubjectID:   id,
			Action:      action,
			FromStatus:  string(from),
			ToStatus:    string(to),
			Reason:      reason,
		}); err != nil {
			return err
		}
		result, err = kycRepo.GetByID(id)
		if err != nil {
			return storageError("reload kyc submission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveSubmissionTransition(submissionSubjectKYC, action)
	logger.Infow("kyc_reviewed", "submission_id", id, "admin_id", adminID, "action", action)
	return result, nil
}

// Overview 用户实名状态
func (s *KYCService) Overview(userID uint) (*KYCOverview, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	latest, err := s.repo.GetLatestByUser(userID)
	if err != nil {
		return nil, storageError("get latest kyc submission", err)
	}
	return &KYCOverview{Status: user.KYCStatus, Submission: latest}, nil
}

// Get 获取提交记录
func (s *KYCService) Get(id uint) (*models.KYCSubmission, error) {
	submission, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storageError("get kyc submission", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// List 后台提交列表
func (s *KYCService) List(filter repository.KYCListFilter) ([]models.KYCSubmission, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, newFieldError("status", "oneof", "must be one of [pending approved rejected]")
	}
	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, storageError("list kyc submissions", err)
	}
	return items, total, nil
}
