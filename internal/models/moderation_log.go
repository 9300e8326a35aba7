package models

import "time"

// ModerationLog 审核操作日志
// 说明：每次审批/驳回与状态变更一起写入，便于后台按对象追溯。
type ModerationLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AdminID     uint      `gorm:"index;not null" json:"admin_id"`
	SubjectKind string    `gorm:"type:varchar(40);index;not null" json:"subject_kind"`
	SubjectID   uint      `gorm:"index;not null" json:"subject_id"`
	Action      string    `gorm:"type:varchar(40);not null" json:"action"`
	FromStatus  string    `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus    string    `gorm:"type:varchar(20);not null" json:"to_status"`
	Reason      string    `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ModerationLog) TableName() string {
	return "moderation_logs"
}
