package service

import (
	"strings"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"

	"gorm.io/gorm"
)

// AwardPolicy 经验值奖励策略（动作 -> 变动值）
type AwardPolicy struct {
	ledger *ReputationLedger
	awards map[string]int
}

// NewAwardPolicy 创建奖励策略，未配置的动作使用默认值；未知动作键被忽略并告警
func NewAwardPolicy(ledger *ReputationLedger, overrides map[string]int) *AwardPolicy {
	awards := DefaultAwardTable()
	for key, delta := range overrides {
		action := strings.ToLower(strings.TrimSpace(key))
		if _, known := awards[action]; !known {
			logger.Warnw("award_override_unknown_action", "action", key, "delta", delta)
			continue
		}
		awards[action] = delta
	}
	return &AwardPolicy{ledger: ledger, awards: awards}
}

// DefaultAwardTable 默认奖励表
func DefaultAwardTable() map[string]int {
	return map[string]int{
		constants.ExpActionPostCreated:          10,
		constants.ExpActionCommentCreated:       5,
		constants.ExpActionUpvoteReceived:       2,
		constants.ExpActionDownvoteReceived:     -1,
		constants.ExpActionEmailVerified:        50,
		constants.ExpActionCategoryAutoApproved: 25,
	}
}

// Delta 查询动作对应的经验值
func (p *AwardPolicy) Delta(action string) (int, bool) {
	delta, ok := p.awards[action]
	return delta, ok
}

// Award 按动作奖励经验值
func (p *AwardPolicy) Award(userID uint, action string) (int, error) {
	delta, ok := p.Delta(action)
	if !ok {
		return 0, ErrInvalidAction
	}
	return p.ledger.AdjustExperience(userID, delta, action)
}

// AwardTx 在调用方事务内奖励经验值
func (p *AwardPolicy) AwardTx(tx *gorm.DB, userID uint, action string) (int, error) {
	delta, ok := p.Delta(action)
	if !ok {
		return 0, ErrInvalidAction
	}
	return p.ledger.AdjustExperienceTx(tx, userID, delta, action)
}

// voteAward 投票方向对应的经验值，空方向为 0
func (p *AwardPolicy) voteAward(direction string) int {
	switch direction {
	case constants.VoteDirectionUp:
		delta, _ := p.Delta(constants.ExpActionUpvoteReceived)
		return delta
	case constants.VoteDirectionDown:
		delta, _ := p.Delta(constants.ExpActionDownvoteReceived)
		return delta
	default:
		return 0
	}
}
