package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment 评论表
type Comment struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                  // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`                         // 作者
	PostID    uint           `gorm:"index;not null" json:"post_id"`                         // 所属帖子
	Content   string         `gorm:"type:text;not null" json:"content"`                     // 内容（已清洗）
	Status    string         `gorm:"type:varchar(20);index;default:'active'" json:"status"` // 状态（active/removed）
	Score     int            `gorm:"not null;default:0" json:"score"`                       // 得分 = 赞 - 踩
	Upvotes   int            `gorm:"not null;default:0" json:"upvotes"`                     // 赞数
	Downvotes int            `gorm:"not null;default:0" json:"downvotes"`                   // 踩数
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"` // 作者
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}
