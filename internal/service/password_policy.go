package service

import (
	"strings"
	"unicode"

	"github.com/furom/internal/config"
)

// passwordPolicyError 携带文案键与参数，接口层据此返回本地化提示
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

// bcrypt 只使用前 72 字节
const passwordMaxBytes = 72

// 用户名/邮箱前缀短于该长度时不做包含检查
const passwordIdentityMinLen = 3

// validatePassword 按策略校验密码；identities 为账号标识（用户名、邮箱），密码不得包含它们
func validatePassword(policy config.PasswordPolicyConfig, password string, identities ...string) error {
	if len(password) > passwordMaxBytes {
		return passwordPolicyError{key: "error.password_max_length", args: []interface{}{passwordMaxBytes}}
	}
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	if containsIdentity(password, identities) {
		return passwordPolicyError{key: "error.password_contains_identity"}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case policy.RequireUpper && !hasUpper:
		return passwordPolicyError{key: "error.password_require_upper"}
	case policy.RequireLower && !hasLower:
		return passwordPolicyError{key: "error.password_require_lower"}
	case policy.RequireNumber && !hasNumber:
		return passwordPolicyError{key: "error.password_require_number"}
	case policy.RequireSpecial && !hasSpecial:
		return passwordPolicyError{key: "error.password_require_special"}
	}
	return nil
}

func containsIdentity(password string, identities []string) bool {
	lowered := strings.ToLower(password)
	for _, identity := range identities {
		identity = strings.ToLower(strings.TrimSpace(identity))
		if at := strings.Index(identity, "@"); at >= 0 {
			identity = identity[:at]
		}
		if len([]rune(identity)) < passwordIdentityMinLen {
			continue
		}
		if strings.Contains(lowered, identity) {
			return true
		}
	}
	return false
}
