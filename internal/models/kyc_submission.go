package models

import "time"

// KYCStatus 实名认证状态
type KYCStatus string

const (
	KYCStatusNotSubmitted KYCStatus = "not_submitted"
	KYCStatusPending      KYCStatus = "pending"
	KYCStatusApproved     KYCStatus = "approved"
	KYCStatusRejected     KYCStatus = "rejected"
)

// Valid 是否为合法的提交记录状态（not_submitted 仅用于用户汇总）
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCStatusPending, KYCStatusApproved, KYCStatusRejected:
		return true
	}
	return false
}

// KYCSubmission 实名认证提交记录
type KYCSubmission struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                        // 主键
	UserID          uint       `gorm:"index;not null" json:"user_id"`                               // 提交用户
	PhotoPath       string     `gorm:"type:varchar(500);not null" json:"photo_path"`                // 人像照片引用
	DocumentPath    string     `gorm:"type:varchar(500);not null" json:"document_path"`             // 证件照片引用
	Status          KYCStatus  `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"` // 审核状态
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`                                       // 审核管理员
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`                                       // 审核时间
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`                 // 驳回原因
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                  // 更新时间

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 提交用户
}

// TableName 指定表名
func (KYCSubmission) TableName() string {
	return "kyc_submissions"
}
