package shared

import (
	"errors"

	"github.com/furom/internal/http/response"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口响应码与文案键的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 依次匹配规则；字段校验与密码策略错误优先处理，未命中时按兜底返回并记录原始错误
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	if RespondValidation(c, err) || RespondPasswordPolicy(c, err) {
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatMappedErrors 拼接多组映射规则，靠前的优先
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// ForumErrorRules 前后台共用的业务错误映射，具体错误在前，分类错误兜底
var ForumErrorRules = []MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrSubmissionNotFound, Code: response.CodeNotFound, Key: "error.submission_not_found"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrPostNotFound, Code: response.CodeNotFound, Key: "error.post_not_found"},
	{Target: service.ErrCommentNotFound, Code: response.CodeNotFound, Key: "error.comment_not_found"},
	{Target: service.ErrTargetNotFound, Code: response.CodeNotFound, Key: "error.vote_target_not_found"},
	{Target: service.ErrKYCDraftNotFound, Code: response.CodeNotFound, Key: "error.kyc_draft_not_found"},
	{Target: service.ErrCategoryNameExists, Code: response.CodeConflict, Key: "error.category_name_exists"},
	{Target: service.ErrCategorySlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrDuplicateSubmission, Code: response.CodeConflict, Key: "error.duplicate_submission"},
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.username_exists"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInsufficientExperience, Code: response.CodeForbidden, Key: "error.insufficient_experience"},
	{Target: service.ErrKYCRequired, Code: response.CodeForbidden, Key: "error.kyc_required"},
	{Target: service.ErrSelfVote, Code: response.CodeForbidden, Key: "error.self_vote"},
	{Target: service.ErrCategoryNotActive, Code: response.CodeForbidden, Key: "error.category_not_active"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrEmailNotVerified, Code: response.CodeForbidden, Key: "error.email_not_verified"},
	{Target: service.ErrInvalidAction, Code: response.CodeBadRequest, Key: "error.invalid_action"},
	{Target: service.ErrInvalidVoteDirection, Code: response.CodeBadRequest, Key: "error.invalid_vote_direction"},
	{Target: service.ErrInvalidTargetKind, Code: response.CodeBadRequest, Key: "error.invalid_target_kind"},
	{Target: service.ErrInvalidContentStatus, Code: response.CodeBadRequest, Key: "error.invalid_content_status"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrProfileEmpty, Code: response.CodeBadRequest, Key: "error.profile_empty"},
	{Target: service.ErrSettingKeyInvalid, Code: response.CodeBadRequest, Key: "error.setting_key_invalid"},
	{Target: service.ErrInvalidTransition, Code: response.CodeConflict, Key: "error.invalid_transition"},
	{Target: service.ErrCacheUnavailable, Code: response.CodeInternal, Key: "error.cache_unavailable"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.bad_request"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Key: "error.validation_failed"},
}

// CaptchaErrorRules 验证码校验错误映射
var CaptchaErrorRules = []MappedError{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_config_invalid"},
}
