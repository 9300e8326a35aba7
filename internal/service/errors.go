package service

import (
	"errors"
	"fmt"
	"strings"
)

// kindError 带父级分类的业务错误，errors.Is 可按父级匹配
type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.parent
}

func newKindError(msg string, parent error) error {
	return &kindError{msg: msg, parent: parent}
}

// 错误分类
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStorageFailure    = errors.New("storage failure")
	ErrForbidden         = errors.New("forbidden")
)

// 资源不存在
var (
	ErrUserNotFound       = newKindError("user not found", ErrNotFound)
	ErrSubmissionNotFound = newKindError("submission not found", ErrNotFound)
	ErrCategoryNotFound   = newKindError("category not found", ErrNotFound)
	ErrPostNotFound       = newKindError("post not found", ErrNotFound)
	ErrCommentNotFound    = newKindError("comment not found", ErrNotFound)
	ErrTargetNotFound     = newKindError("vote target not found", ErrNotFound)
	ErrKYCDraftNotFound   = newKindError("kyc draft not found or expired", ErrNotFound)
)

// 唯一性冲突
var (
	ErrCategoryNameExists  = newKindError("category name already exists", ErrConflict)
	ErrCategorySlugExists  = newKindError("category slug already exists", ErrConflict)
	ErrDuplicateSubmission = newKindError("an open submission already exists", ErrConflict)
	ErrUsernameExists      = newKindError("username already exists", ErrConflict)
	ErrEmailExists         = newKindError("email already exists", ErrConflict)
)

// 权限与前置条件
var (
	ErrInsufficientExperience = newKindError("insufficient experience", ErrForbidden)
	ErrKYCRequired            = newKindError("approved kyc required", ErrForbidden)
	ErrSelfVote               = newKindError("cannot vote on own content", ErrForbidden)
	ErrCategoryNotActive      = newKindError("category is not active", ErrForbidden)
	ErrUserDisabled           = newKindError("user disabled", ErrForbidden)
	ErrEmailNotVerified       = newKindError("email not verified", ErrForbidden)
)

// 参数与其他业务错误
var (
	ErrInvalidAction        = newKindError("unknown experience action", ErrValidation)
	ErrInvalidVoteDirection = newKindError("invalid vote direction", ErrValidation)
	ErrInvalidTargetKind    = newKindError("invalid vote target kind", ErrValidation)
	ErrInvalidContentStatus = newKindError("invalid content status", ErrValidation)
	ErrInvalidEmail         = newKindError("invalid email", ErrValidation)
	ErrWeakPassword         = newKindError("password does not satisfy policy", ErrValidation)
	ErrProfileEmpty         = newKindError("profile update is empty", ErrValidation)
	ErrSettingKeyInvalid    = newKindError("unsupported setting key", ErrValidation)
	ErrInvalidLevelTable    = errors.New("invalid level table")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrInvalidVerifyToken   = errors.New("invalid or used verify token")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
	ErrCacheUnavailable     = errors.New("cache unavailable")
)

// storageError 包装存储层错误，保留原始错误链
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError 字段级校验失败集合
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, field.Message))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is 让 errors.Is(err, ErrValidation) 命中
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newFieldError(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}
