package models

import "time"

// CategoryStatus 用户分类审核状态
type CategoryStatus string

const (
	CategoryStatusPending  CategoryStatus = "pending"
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusRejected CategoryStatus = "rejected"
)

// Valid 是否为合法状态
func (s CategoryStatus) Valid() bool {
	switch s {
	case CategoryStatusPending, CategoryStatusActive, CategoryStatusRejected:
		return true
	}
	return false
}

// Category 用户提交的分类
type Category struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                       // 主键
	Name            string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`          // 名称（全局唯一）
	Slug            string         `gorm:"type:varchar(60);uniqueIndex;not null" json:"slug"`          // 唯一标识
	Description     string         `gorm:"type:text" json:"description"`                              // 描述（已清洗）
	CreatorID       uint           `gorm:"index;not null" json:"creator_id"`                           // 提交人
	Status          CategoryStatus `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"` // 审核状态
	ApprovedBy      *uint          `json:"approved_by,omitempty"`                                      // 审批管理员
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`                                      // 审批时间
	ReviewedBy      *uint          `json:"reviewed_by,omitempty"`                                      // 驳回管理员
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`                // 驳回原因
	KYCVerifiedOnly bool           `gorm:"not null;default:false" json:"kyc_verified_only"`            // 仅实名用户可发帖
	PostCount       int            `gorm:"not null;default:0" json:"post_count"`                       // 帖子数
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "user_categories"
}
