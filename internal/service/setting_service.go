package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"
)

// ModerationSettings 审核相关的运行时设置
type ModerationSettings struct {
	KYCRequiredForCategories      bool `json:"kyc_required_for_categories"`
	KYCAutoApprovalThreshold      *int `json:"kyc_auto_approval_threshold"`
	CategoryAutoApprovalThreshold *int `json:"category_auto_approval_threshold"`
	CategoryMinExp                int  `json:"category_min_exp"`
}

// SettingsProvider 审核设置读取接口
type SettingsProvider interface {
	GetModerationSettings() (ModerationSettings, error)
}

// StaticSettings 固定值设置源，供测试与种子数据使用
type StaticSettings ModerationSettings

// GetModerationSettings 返回固定设置
func (s StaticSettings) GetModerationSettings() (ModerationSettings, error) {
	return ModerationSettings(s), nil
}

// 可通过后台修改的设置键
var editableSettingKeys = map[string]struct{}{
	constants.SettingKeySiteConfig:       {},
	constants.SettingKeyModerationConfig: {},
	constants.SettingKeyCaptchaConfig:    {},
}

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig 获取站点配置（合并默认值）
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for k, v := range defaults {
		data[k] = v
	}

	setting, err := s.repo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, storageError("get site config", err)
	}
	if setting == nil {
		return data, nil
	}

	for k, v := range setting.ValueJSON {
		data[k] = v
	}
	return data, nil
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, storageError("get setting", err)
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	key = strings.TrimSpace(key)
	if _, ok := editableSettingKeys[key]; !ok {
		return nil, ErrSettingKeyInvalid
	}
	normalized := normalizeSettingValueByKey(key, value)

	setting, err := s.repo.Upsert(key, normalized)
	if err != nil {
		return nil, storageError("upsert setting", err)
	}
	return setting.ValueJSON, nil
}

// GetModerationSettings 读取审核设置，缺省字段回落到默认值
func (s *SettingService) GetModerationSettings() (ModerationSettings, error) {
	if s == nil {
		return ModerationSettings{}, nil
	}
	value, err := s.GetByKey(constants.SettingKeyModerationConfig)
	if err != nil {
		return ModerationSettings{}, err
	}
	return moderationSettingsFromJSON(value), nil
}

func moderationSettingsFromJSON(value models.JSON) ModerationSettings {
	var settings ModerationSettings
	if value == nil {
		return settings
	}
	settings.KYCRequiredForCategories = parseSettingBool(value[constants.SettingFieldKYCRequiredForCategories])
	settings.KYCAutoApprovalThreshold = parseSettingOptionalInt(value[constants.SettingFieldKYCAutoApprovalThreshold])
	settings.CategoryAutoApprovalThreshold = parseSettingOptionalInt(value[constants.SettingFieldCategoryAutoApprovalThreshold])
	if minExp, err := parseSettingInt(value[constants.SettingFieldCategoryMinExp]); err == nil && minExp > 0 {
		settings.CategoryMinExp = minExp
	}
	return settings
}

// parseSettingOptionalInt 空值或非法值视为未配置
func parseSettingOptionalInt(raw interface{}) *int {
	if raw == nil {
		return nil
	}
	parsed, err := parseSettingInt(raw)
	if err != nil || parsed < 0 {
		return nil
	}
	return &parsed
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported value type")
	}
}
