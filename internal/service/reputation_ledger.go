package service

import (
	"strings"
	"time"

	"github.com/furom/internal/logger"
	"github.com/furom/internal/metrics"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

const expReasonMaxLength = 64

// ReputationLedger 经验值账本
type ReputationLedger struct {
	userRepo   repository.UserRepository
	expLogRepo repository.ExpLogRepository
	levels     *LevelTable
}

// NewReputationLedger 创建经验值账本
func NewReputationLedger(userRepo repository.UserRepository, expLogRepo repository.ExpLogRepository, levels *LevelTable) *ReputationLedger {
	return &ReputationLedger{
		userRepo:   userRepo,
		expLogRepo: expLogRepo,
		levels:     levels,
	}
}

// Levels 返回等级表
func (l *ReputationLedger) Levels() *LevelTable {
	return l.levels
}

// GetExperience 获取用户经验值
func (l *ReputationLedger) GetExperience(userID uint) (int, error) {
	exp, found, err := l.userRepo.GetExp(userID)
	if err != nil {
		return 0, storageError("get exp", err)
	}
	if !found {
		return 0, ErrUserNotFound
	}
	return exp, nil
}

// AdjustExperience 调整经验值并写入流水，返回调整后的总值
func (l *ReputationLedger) AdjustExperience(userID uint, delta int, reason string) (int, error) {
	var total int
	err := l.userRepo.Transaction(func(tx *gorm.DB) error {
		var txErr error
		total, txErr = l.AdjustExperienceTx(tx, userID, delta, reason)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// AdjustExperienceTx 在调用方事务内调整经验值
func (l *ReputationLedger) AdjustExperienceTx(tx *gorm.DB, userID uint, delta int, reason string) (int, error) {
	entry, err := l.AdjustExperienceEntryTx(tx, userID, delta, reason)
	if err != nil {
		return 0, err
	}
	return entry.BalanceAfter, nil
}

// AdjustExperienceEntryTx 在调用方事务内调整经验值并返回流水；Applied 为归零截断后的实际变动
func (l *ReputationLedger) AdjustExperienceEntryTx(tx *gorm.DB, userID uint, delta int, reason string) (*models.ExpLog, error) {
	reason = normalizeExpReason(reason)
	userRepo := l.userRepo.WithTx(tx)

	user, err := userRepo.GetByIDForUpdate(userID)
	if err != nil {
		return nil, storageError("lock user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	before := user.Exp

	updated, err := userRepo.AddExp(userID, delta)
	if err != nil {
		return nil, storageError("add exp", err)
	}
	if !updated {
		return nil, ErrUserNotFound
	}
	after, found, err := userRepo.GetExp(userID)
	if err != nil {
		return nil, storageError("read exp", err)
	}
	if !found {
		return nil, ErrUserNotFound
	}

	entry := &models.ExpLog{
		UserID:       userID,
		Delta:        delta,
		Applied:      after - before,
		Reason:       reason,
		BalanceAfter: after,
		CreatedAt:    time.Now(),
	}
	if err := l.expLogRepo.WithTx(tx).Create(entry); err != nil {
		return nil, storageError("write exp log", err)
	}
	metrics.ObserveExpAdjustment(reason, entry.Applied)
	logger.Debugw("exp_adjusted",
		"user_id", userID,
		"delta", delta,
		"applied", entry.Applied,
		"balance", after,
		"reason", reason,
	)
	return entry, nil
}

// LevelOf 返回用户当前等级进度
func (l *ReputationLedger) LevelOf(userID uint) (LevelProgress, error) {
	exp, err := l.GetExperience(userID)
	if err != nil {
		return LevelProgress{}, err
	}
	return l.levels.Progress(exp), nil
}

// History 经验流水分页
func (l *ReputationLedger) History(userID uint, page, pageSize int) ([]models.ExpLog, int64, error) {
	logs, total, err := l.expLogRepo.List(repository.ExpLogListFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, storageError("list exp logs", err)
	}
	return logs, total, nil
}

func normalizeExpReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "unspecified"
	}
	runes := []rune(reason)
	if len(runes) > expReasonMaxLength {
		return string(runes[:expReasonMaxLength])
	}
	return reason
}
