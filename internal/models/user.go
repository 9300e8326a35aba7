package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                         // 主键
	Username           string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"username"`        // 用户名
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`                            // 邮箱
	PasswordHash       string         `gorm:"not null" json:"-"`                                            // 密码哈希（不返回给前端）
	DisplayName        string         `gorm:"default:''" json:"display_name"`                               // 昵称
	Bio                string         `gorm:"type:text" json:"bio"`                                         // 个人简介（已清洗）
	Avatar             string         `gorm:"type:varchar(500)" json:"avatar"`                              // 头像引用
	Locale             string         `gorm:"default:'en-US'" json:"locale"`                                // 语言偏好
	Exp                int            `gorm:"not null;default:0;index" json:"exp"`                          // 经验值（非负）
	EmailVerified      bool           `gorm:"not null;default:false" json:"email_verified"`                 // 邮箱是否已验证
	VerifyToken        *string        `gorm:"type:varchar(64);uniqueIndex" json:"-"`                        // 一次性邮箱验证令牌
	EmailVerifiedAt    *time.Time     `json:"email_verified_at"`                                            // 邮箱验证时间
	KYCStatus          KYCStatus      `gorm:"type:varchar(20);not null;default:'not_submitted'" json:"kyc_status"` // 实名认证状态
	Status             string         `gorm:"default:'active'" json:"status"`                               // 账号状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                                  // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                               // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                                // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
