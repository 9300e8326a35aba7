package repository

import (
	"time"

	"github.com/furom/internal/models"
)

// UserListFilter 用户列表过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	KYCStatus   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PostListFilter 帖子列表过滤条件
type PostListFilter struct {
	Page           int
	PageSize       int
	CategoryID     uint
	UserID         uint
	Search         string
	Status         string
	OrderBy        string
	WithAuthor     bool
	IncludeRemoved bool
}

// CommentListFilter 评论列表过滤条件
type CommentListFilter struct {
	Page           int
	PageSize       int
	PostID         uint
	UserID         uint
	IncludeRemoved bool
}

// CategoryListFilter 分类列表过滤条件
type CategoryListFilter struct {
	Page      int
	PageSize  int
	Status    models.CategoryStatus
	CreatorID uint
	Search    string
}

// KYCListFilter 实名提交列表过滤条件
type KYCListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   models.KYCStatus
	WithUser bool
}

// ExpLogListFilter 经验流水过滤条件
type ExpLogListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Reason   string
}

// NotificationListFilter 站内通知过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	UnreadOnly bool
}

// ModerationLogListFilter 审核日志过滤条件
type ModerationLogListFilter struct {
	Page        int
	PageSize    int
	AdminID     uint
	SubjectKind string
	SubjectID   uint
}

// UserLoginLogListFilter 登录日志过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Login       string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
