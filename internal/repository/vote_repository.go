package repository

import (
	"errors"
	"fmt"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteTarget 可投票内容的最小视图
type VoteTarget struct {
	ID        uint
	UserID    uint
	Status    string
	Score     int
	Upvotes   int
	Downvotes int
}

// VoteRepository 投票数据访问接口
type VoteRepository interface {
	Get(voterID uint, targetKind string, targetID uint) (*models.Vote, error)
	Create(vote *models.Vote) error
	UpdateDirection(id uint, direction string, expApplied int) error
	Delete(id uint) error
	CountByDirection(targetKind string, targetID uint) (up int64, down int64, err error)
	ListByVoter(voterID uint, targetKind string, targetIDs []uint) ([]models.Vote, error)
	GetTargetForUpdate(targetKind string, targetID uint) (*VoteTarget, error)
	UpdateTargetTotals(targetKind string, targetID uint, upvotes, downvotes int) error
	WithTx(tx *gorm.DB) *GormVoteRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormVoteRepository GORM 实现
type GormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository 创建投票仓库
func NewVoteRepository(db *gorm.DB) *GormVoteRepository {
	return &GormVoteRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoteRepository) WithTx(tx *gorm.DB) *GormVoteRepository {
	if tx == nil {
		return r
	}
	return &GormVoteRepository{db: tx}
}

// Transaction 执行事务
func (r *GormVoteRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Get 获取某用户对目标的投票
func (r *GormVoteRepository) Get(voterID uint, targetKind string, targetID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.Where("voter_id = ? AND target_kind = ? AND target_id = ?", voterID, targetKind, targetID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// Create 创建投票
func (r *GormVoteRepository) Create(vote *models.Vote) error {
	return r.db.Create(vote).Error
}

// UpdateDirection 修改投票方向，同时记录该票计入作者的经验值
func (r *GormVoteRepository) UpdateDirection(id uint, direction string, expApplied int) error {
	return r.db.Model(&models.Vote{}).Where("id = ?", id).Updates(map[string]interface{}{
		"direction":   direction,
		"exp_applied": expApplied,
	}).Error
}

// Delete 删除投票
func (r *GormVoteRepository) Delete(id uint) error {
	return r.db.Delete(&models.Vote{}, id).Error
}

// CountByDirection 统计目标的赞/踩数量
func (r *GormVoteRepository) CountByDirection(targetKind string, targetID uint) (int64, int64, error) {
	type row struct {
		Direction string
		Total     int64
	}
	var rows []row
	err := r.db.Model(&models.Vote{}).
		Select("direction, COUNT(*) AS total").
		Where("target_kind = ? AND target_id = ?", targetKind, targetID).
		Group("direction").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var up, down int64
	for _, item := range rows {
		switch item.Direction {
		case constants.VoteDirectionUp:
			up = item.Total
		case constants.VoteDirectionDown:
			down = item.Total
		}
	}
	return up, down, nil
}

// ListByVoter 批量获取用户在一组目标上的投票（用于列表页高亮）
func (r *GormVoteRepository) ListByVoter(voterID uint, targetKind string, targetIDs []uint) ([]models.Vote, error) {
	if voterID == 0 || len(targetIDs) == 0 {
		return []models.Vote{}, nil
	}
	var votes []models.Vote
	if err := r.db.Where("voter_id = ? AND target_kind = ? AND target_id IN ?", voterID, targetKind, targetIDs).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func voteTargetModel(targetKind string) (interface{}, error) {
	switch targetKind {
	case constants.VoteTargetPost:
		return &models.Post{}, nil
	case constants.VoteTargetComment:
		return &models.Comment{}, nil
	default:
		return nil, fmt.Errorf("unsupported vote target kind: %s", targetKind)
	}
}

// GetTargetForUpdate 加锁读取投票目标
func (r *GormVoteRepository) GetTargetForUpdate(targetKind string, targetID uint) (*VoteTarget, error) {
	model, err := voteTargetModel(targetKind)
	if err != nil {
		return nil, err
	}
	var target VoteTarget
	result := r.db.Model(model).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "user_id", "status", "score", "upvotes", "downvotes").
		Where("id = ?", targetID).
		Limit(1).
		Scan(&target)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || target.ID == 0 {
		return nil, nil
	}
	return &target, nil
}

// UpdateTargetTotals 写入重新统计后的赞/踩与得分
func (r *GormVoteRepository) UpdateTargetTotals(targetKind string, targetID uint, upvotes, downvotes int) error {
	model, err := voteTargetModel(targetKind)
	if err != nil {
		return err
	}
	return r.db.Model(model).
		Where("id = ?", targetID).
		UpdateColumns(map[string]interface{}{
			"upvotes":   upvotes,
			"downvotes": downvotes,
			"score":     upvotes - downvotes,
		}).Error
}
