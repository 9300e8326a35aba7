package service

import (
	"strings"
	"sync"

	"github.com/furom/internal/logger"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultSystemApproverUsername = "system"

// IdentityResolver 解析系统审批身份
type IdentityResolver interface {
	SystemApproverID() (uint, error)
}

// SystemIdentityResolver 按用户名解析（缺失时创建）系统审批管理员
type SystemIdentityResolver struct {
	adminRepo repository.AdminRepository
	username  string

	mu sync.Mutex
	id uint
}

// NewSystemIdentityResolver 创建系统身份解析器
func NewSystemIdentityResolver(adminRepo repository.AdminRepository, username string) *SystemIdentityResolver {
	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultSystemApproverUsername
	}
	return &SystemIdentityResolver{adminRepo: adminRepo, username: username}
}

// SystemApproverID 返回系统审批身份 ID
func (r *SystemIdentityResolver) SystemApproverID() (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id != 0 {
		return r.id, nil
	}

	admin, err := r.adminRepo.GetByUsername(r.username)
	if err != nil {
		return 0, storageError("get system approver", err)
	}
	if admin == nil {
		// 随机密码，系统身份不可登录
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if err != nil {
			return 0, err
		}
		admin = &models.Admin{
			Username:     r.username,
			PasswordHash: string(hash),
			IsSystem:     true,
		}
		if err := r.adminRepo.Create(admin); err != nil {
			return 0, storageError("create system approver", err)
		}
		logger.Infow("system_approver_created", "username", r.username, "admin_id", admin.ID)
	} else if !admin.IsSystem {
		logger.Warnw("system_approver_not_flagged", "username", r.username, "admin_id", admin.ID)
	}
	r.id = admin.ID
	return r.id, nil
}

// StaticIdentity 固定系统身份
type StaticIdentity uint

// SystemApproverID 返回固定 ID
func (s StaticIdentity) SystemApproverID() (uint, error) {
	return uint(s), nil
}
