package models

import "time"

// ExpLog 经验值流水
type ExpLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`                          // 主键
	UserID       uint      `gorm:"index;not null" json:"user_id"`                 // 用户
	Delta        int       `gorm:"not null" json:"delta"`                         // 请求变动值
	Applied      int       `gorm:"not null" json:"applied"`                       // 实际变动值（归零截断后）
	Reason       string    `gorm:"type:varchar(64);index;not null" json:"reason"` // 原因（动作类型或备注）
	BalanceAfter int       `gorm:"not null" json:"balance_after"`                 // 变动后经验值
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                       // 记录时间
}

// TableName 指定表名
func (ExpLog) TableName() string {
	return "exp_logs"
}
