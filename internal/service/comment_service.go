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

// CommentService 评论业务服务
type CommentService struct {
	repo     repository.CommentRepository
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	logRepo  repository.ModerationLogRepository
	awards   *AwardPolicy
}

// NewCommentService 创建评论服务
func NewCommentService(
	repo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	logRepo repository.ModerationLogRepository,
	awards *AwardPolicy,
) *CommentService {
	return &CommentService{repo: repo, postRepo: postRepo, userRepo: userRepo, logRepo: logRepo, awards: awards}
}

// CreateCommentInput 评论输入
type CreateCommentInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// Create 在帖子下发表评论
func (s *CommentService) Create(userID, postID uint, input CreateCommentInput) (*models.Comment, error) {
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
	post, err := s.postRepo.GetActiveByID(postID)
	if err != nil {
		return nil, storageError("get post", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: input.Content,
		Status:  constants.ContentStatusActive,
	}
	err = s.postRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(comment); err != nil {
			return storageError("create comment", err)
		}
		if err := s.postRepo.WithTx(tx).IncrementCommentCount(postID, 1); err != nil {
			return storageError("increment comment count", err)
		}
		_, err := s.awards.AwardTx(tx, userID, constants.ExpActionCommentCreated)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("comment_created", "comment_id", comment.ID, "post_id", postID, "user_id", userID)
	return comment, nil
}

// ListByPost 帖子评论列表
func (s *CommentService) ListByPost(postID uint, page, pageSize int) ([]models.Comment, int64, error) {
	post, err := s.postRepo.GetActiveByID(postID)
	if err != nil {
		return nil, 0, storageError("get post", err)
	}
	if post == nil {
		return nil, 0, ErrPostNotFound
	}
	comments, total, err := s.repo.List(repository.CommentListFilter{
		PostID:   postID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, storageError("list comments", err)
	}
	return comments, total, nil
}

// Moderate 管理员设置评论状态
func (s *CommentService) Moderate(id, adminID uint, status, reason string) (*models.Comment, error) {
	action, err := moderationActionFor(status)
	if err != nil {
		return nil, err
	}
	var result *models.Comment
	err = s.postRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		comment, err := repo.GetByID(id)
		if err != nil {
			return storageError("get comment", err)
		}
		if comment == nil {
			return ErrCommentNotFound
		}
		if comment.Status == status {
			result = comment
			return nil
		}
		if _, err := repo.UpdateStatus(id, status); err != nil {
			return storageError("update comment status", err)
		}
		delta := 1
		if status == constants.ContentStatusRemoved {
			delta = -1
		}
		if err := s.postRepo.WithTx(tx).IncrementCommentCount(comment.PostID, delta); err != nil {
			return storageError("adjust comment count", err)
		}
		if err := writeModerationLog(s.logRepo.WithTx(tx), &models.ModerationLog{
			AdminID:     adminID,
			SubjectKind: constants.VoteTargetComment,
			SubjectID:   id,
			Action:      action,
			FromStatus:  comment.Status,
			ToStatus:    status,
			Reason:      strings.TrimSpace(reason),
		}); err != nil {
			return err
		}
		comment.Status = status
		result = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("comment_moderated", "comment_id", id, "admin_id", adminID, "status", status)
	return result, nil
}
