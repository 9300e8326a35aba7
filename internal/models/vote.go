package models

import "time"

// Vote 投票记录，每个用户对同一目标至多一条
type Vote struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                      // 主键
	VoterID    uint      `gorm:"not null;uniqueIndex:idx_vote_voter_target,priority:1" json:"voter_id"`      // 投票人
	TargetKind string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_vote_voter_target,priority:2;index:idx_vote_target,priority:1" json:"target_kind"` // 目标类型（post/comment）
	TargetID   uint      `gorm:"not null;uniqueIndex:idx_vote_voter_target,priority:3;index:idx_vote_target,priority:2" json:"target_id"` // 目标ID
	Direction  string    `gorm:"type:varchar(10);not null" json:"direction"`                                 // 方向（up/down）
	ExpApplied int       `gorm:"not null;default:0" json:"-"`                                               // 该票当前实际计入作者的经验值（含归零截断）
	CreatedAt  time.Time `json:"created_at"`                                                                 // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                                                 // 更新时间
}

// TableName 指定表名
func (Vote) TableName() string {
	return "votes"
}
