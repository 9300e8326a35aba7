package models

import (
	"time"

	"gorm.io/gorm"
)

// Post 帖子表
type Post struct {
	ID           uint           `gorm:"primarykey" json:"id"`                              // 主键
	UserID       uint           `gorm:"index;not null" json:"user_id"`                     // 作者
	CategoryID   uint           `gorm:"index;not null" json:"category_id"`                 // 所属分类
	Title        string         `gorm:"type:varchar(200);not null" json:"title"`           // 标题
	Content      string         `gorm:"type:text;not null" json:"content"`                 // 正文（已清洗）
	Status       string         `gorm:"type:varchar(20);index;default:'active'" json:"status"` // 状态（active/removed）
	Score        int            `gorm:"not null;default:0;index" json:"score"`             // 得分 = 赞 - 踩
	Upvotes      int            `gorm:"not null;default:0" json:"upvotes"`                 // 赞数
	Downvotes    int            `gorm:"not null;default:0" json:"downvotes"`               // 踩数
	ViewCount    int            `gorm:"not null;default:0" json:"view_count"`              // 浏览数
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`           // 评论数
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间

	Author   *User     `gorm:"foreignKey:UserID" json:"author,omitempty"`       // 作者
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}
