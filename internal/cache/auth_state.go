package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/furom/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

const (
	principalUser  = "user"
	principalAdmin = "admin"
)

// AuthState 鉴权快照，用户与管理员共用
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type AuthState struct {
	PrincipalID        uint   `json:"principal_id"`
	Username           string `json:"username"`
	Status             string `json:"status,omitempty"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super,omitempty"`
	UpdatedAt          int64  `json:"updated_at"`
}

func authStateKey(kind string, id uint) string {
	return fmt.Sprintf("auth:%s:%d", kind, id)
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *AuthState {
	if user == nil {
		return nil
	}
	return &AuthState{
		PrincipalID:        user.ID,
		Username:           user.Username,
		Status:             user.Status,
		TokenVersion:       user.TokenVersion,
		TokenInvalidBefore: unixOrZero(user.TokenInvalidBefore),
		UpdatedAt:          time.Now().Unix(),
	}
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AuthState {
	if admin == nil {
		return nil
	}
	return &AuthState{
		PrincipalID:        admin.ID,
		Username:           admin.Username,
		TokenVersion:       admin.TokenVersion,
		TokenInvalidBefore: unixOrZero(admin.TokenInvalidBefore),
		IsSuper:            admin.IsSuper,
		UpdatedAt:          time.Now().Unix(),
	}
}

func getAuthState(ctx context.Context, kind string, id uint) (*AuthState, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var state AuthState
	hit, err := GetJSON(ctx, authStateKey(kind, id), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

func setAuthState(ctx context.Context, kind string, state *AuthState) error {
	if state == nil || state.PrincipalID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(kind, state.PrincipalID), state, authStateCacheTTL)
}

// GetUserAuthState 获取用户鉴权快照
func GetUserAuthState(ctx context.Context, userID uint) (*AuthState, bool, error) {
	return getAuthState(ctx, principalUser, userID)
}

// SetUserAuthState 写入用户鉴权快照
func SetUserAuthState(ctx context.Context, state *AuthState) error {
	return setAuthState(ctx, principalUser, state)
}

// DelUserAuthState 删除用户鉴权快照
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(principalUser, userID))
}

// GetAdminAuthState 获取管理员鉴权快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AuthState, bool, error) {
	return getAuthState(ctx, principalAdmin, adminID)
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AuthState) error {
	return setAuthState(ctx, principalAdmin, state)
}

// DelAdminAuthState 删除管理员鉴权快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(principalAdmin, adminID))
}
