package service

import (
	"errors"
	"time"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/metrics"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

const (
	voteOutcomeCreated   = "created"
	voteOutcomeFlipped   = "flipped"
	voteOutcomeRetracted = "retracted"
	voteOutcomeNoop      = "noop"
)

// VoteResult 投票后的目标计数与当前用户方向（空表示未投票）
type VoteResult struct {
	Direction string `json:"direction"`
	Score     int    `json:"score"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// VoteService 投票聚合服务
type VoteService struct {
	repo   repository.VoteRepository
	ledger *ReputationLedger
	awards *AwardPolicy
}

// NewVoteService 创建投票服务
func NewVoteService(repo repository.VoteRepository, ledger *ReputationLedger, awards *AwardPolicy) *VoteService {
	return &VoteService{repo: repo, ledger: ledger, awards: awards}
}

func validateVoteTarget(targetKind string) error {
	switch targetKind {
	case constants.VoteTargetPost, constants.VoteTargetComment:
		return nil
	}
	return ErrInvalidTargetKind
}

// CastVote 投票：无记录则新增，同方向重复投票视为撤销，反方向则改票
func (s *VoteService) CastVote(voterID uint, targetKind string, targetID uint, direction string) (*VoteResult, error) {
	if err := validateVoteTarget(targetKind); err != nil {
		return nil, err
	}
	if direction != constants.VoteDirectionUp && direction != constants.VoteDirectionDown {
		return nil, ErrInvalidVoteDirection
	}
	return s.apply(voterID, targetKind, targetID, func(current string) string {
		if current == direction {
			return ""
		}
		return direction
	})
}

// RetractVote 撤销投票，未投票时直接返回当前计数
func (s *VoteService) RetractVote(voterID uint, targetKind string, targetID uint) (*VoteResult, error) {
	if err := validateVoteTarget(targetKind); err != nil {
		return nil, err
	}
	return s.apply(voterID, targetKind, targetID, func(string) string { return "" })
}

// GetVote 当前用户对目标的投票方向
func (s *VoteService) GetVote(voterID uint, targetKind string, targetID uint) (string, error) {
	if err := validateVoteTarget(targetKind); err != nil {
		return "", err
	}
	vote, err := s.repo.Get(voterID, targetKind, targetID)
	if err != nil {
		return "", storageError("get vote", err)
	}
	if vote == nil {
		return "", nil
	}
	return vote.Direction, nil
}

// ViewerVotes 批量读取当前用户的投票方向
func (s *VoteService) ViewerVotes(voterID uint, targetKind string, targetIDs []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(targetIDs))
	if voterID == 0 || len(targetIDs) == 0 {
		return result, nil
	}
	if err := validateVoteTarget(targetKind); err != nil {
		return nil, err
	}
	votes, err := s.repo.ListByVoter(voterID, targetKind, targetIDs)
	if err != nil {
		return nil, storageError("list viewer votes", err)
	}
	for _, vote := range votes {
		result[vote.TargetID] = vote.Direction
	}
	return result, nil
}

func (s *VoteService) apply(voterID uint, targetKind string, targetID uint, next func(current string) string) (*VoteResult, error) {
	var (
		result  *VoteResult
		outcome string
	)
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		target, err := repo.GetTargetForUpdate(targetKind, targetID)
		if err != nil {
			return storageError("lock vote target", err)
		}
		if target == nil || target.Status != constants.ContentStatusActive {
			return ErrTargetNotFound
		}
		if target.UserID == voterID {
			return ErrSelfVote
		}

		existing, err := repo.Get(voterID, targetKind, targetID)
		if err != nil {
			return storageError("get vote", err)
		}
		previous, previousApplied := "", 0
		if existing != nil {
			previous, previousApplied = existing.Direction, existing.ExpApplied
		}
		desired := next(previous)

		switch {
		case previous == desired:
			outcome = voteOutcomeNoop
		case existing == nil:
			outcome = voteOutcomeCreated
		case desired == "":
			outcome = voteOutcomeRetracted
		default:
			outcome = voteOutcomeFlipped
		}

		// 只冲回该票此前实际计入的经验值
		applied := 0
		if outcome != voteOutcomeNoop {
			applied, err = s.adjustOwnerExp(tx, target.UserID, s.awards.voteAward(desired)-previousApplied, outcome, desired)
			if err != nil {
				return err
			}
		}

		switch outcome {
		case voteOutcomeCreated:
			now := time.Now()
			err = repo.Create(&models.Vote{
				VoterID:    voterID,
				TargetKind: targetKind,
				TargetID:   targetID,
				Direction:  desired,
				ExpApplied: applied,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		case voteOutcomeRetracted:
			err = repo.Delete(existing.ID)
		case voteOutcomeFlipped:
			err = repo.UpdateDirection(existing.ID, desired, previousApplied+applied)
		}
		if err != nil {
			return storageError("write vote", err)
		}

		up, down, err := repo.CountByDirection(targetKind, targetID)
		if err != nil {
			return storageError("count votes", err)
		}
		if outcome != voteOutcomeNoop {
			if err := repo.UpdateTargetTotals(targetKind, targetID, int(up), int(down)); err != nil {
				return storageError("update vote totals", err)
			}
		}
		result = &VoteResult{
			Direction: desired,
			Score:     int(up - down),
			Upvotes:   int(up),
			Downvotes: int(down),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != voteOutcomeNoop {
		metrics.ObserveVote(targetKind, outcome)
	}
	return result, nil
}

// adjustOwnerExp 调整内容作者经验值，返回实际变动值；作者已不存在时跳过
func (s *VoteService) adjustOwnerExp(tx *gorm.DB, ownerID uint, delta int, outcome, direction string) (int, error) {
	if delta == 0 {
		return 0, nil
	}
	entry, err := s.ledger.AdjustExperienceEntryTx(tx, ownerID, delta, voteExpReason(outcome, direction))
	if errors.Is(err, ErrUserNotFound) {
		logger.Warnw("vote_owner_missing", "owner_id", ownerID, "outcome", outcome)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Applied, nil
}

func voteExpReason(outcome, direction string) string {
	switch outcome {
	case voteOutcomeRetracted:
		return constants.ExpReasonVoteRetracted
	case voteOutcomeFlipped:
		return constants.ExpReasonVoteChanged
	}
	if direction == constants.VoteDirectionDown {
		return constants.ExpActionDownvoteReceived
	}
	return constants.ExpActionUpvoteReceived
}
