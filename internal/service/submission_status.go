package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/furom/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	submissionSubjectCategory = "category"
	submissionSubjectKYC      = "kyc_submission"
	rejectionReasonMaxRunes   = 500
)

// statusTransitions 审核状态迁移表
type statusTransitions[S ~string] map[S][]S

func (t statusTransitions[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

var categoryTransitions = statusTransitions[models.CategoryStatus]{
	models.CategoryStatusPending: {models.CategoryStatusActive, models.CategoryStatusRejected},
}

var kycTransitions = statusTransitions[models.KYCStatus]{
	models.KYCStatusPending: {models.KYCStatusApproved, models.KYCStatusRejected},
}

func normalizeRejectionReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", newFieldError("reason", "required", "is required")
	}
	return truncateRunes(reason, rejectionReasonMaxRunes), nil
}

// slugFromName 由名称生成 slug：去除变音符号，非字母数字折叠为连字符
func slugFromName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 60 {
		slug = strings.TrimSuffix(slug[:60], "-")
	}
	return slug
}

// isUniqueViolation 判断是否为唯一索引冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
