package models

import "time"

// Notification 站内通知
type Notification struct {
	ID          uint       `gorm:"primarykey" json:"id"`                          // 主键
	UserID      uint       `gorm:"index;not null" json:"user_id"`                 // 接收用户
	Kind        string     `gorm:"type:varchar(40);index;not null" json:"kind"`   // 通知类型
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`       // 标题
	Message     string     `gorm:"type:text" json:"message"`                      // 内容
	RelatedKind string     `gorm:"type:varchar(40)" json:"related_kind"`          // 关联对象类型
	RelatedID   uint       `json:"related_id"`                                    // 关联对象ID
	ReadAt      *time.Time `gorm:"index" json:"read_at"`                          // 阅读时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// AdminNotice 管理员公告（待审核提醒等）
type AdminNotice struct {
	ID          uint      `gorm:"primarykey" json:"id"`                 // 主键
	Title       string    `gorm:"type:varchar(200);not null" json:"title"` // 标题
	Message     string    `gorm:"type:text" json:"message"`             // 内容
	RelatedKind string    `gorm:"type:varchar(40)" json:"related_kind"` // 关联对象类型
	RelatedID   uint      `json:"related_id"`                           // 关联对象ID
	CreatedAt   time.Time `gorm:"index" json:"created_at"`              // 创建时间
}

// TableName 指定表名
func (AdminNotice) TableName() string {
	return "admin_notices"
}
