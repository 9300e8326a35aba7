package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/furom/internal/cache"
	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/provider"
	"github.com/furom/internal/queue"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newTestConsumer(t *testing.T, db *gorm.DB) *Consumer {
	t.Helper()
	_ = cache.Reset()
	levels, err := service.NewLevelTable(config.DefaultLevels())
	if err != nil {
		t.Fatalf("level table failed: %v", err)
	}
	userRepo := repository.NewUserRepository(db)
	return NewConsumer(&provider.Container{
		Config:              &config.Config{},
		UserRepo:            userRepo,
		NotificationService: service.NewNotificationService(repository.NewNotificationRepository(db), nil),
		LeaderboardService:  service.NewLeaderboardService(userRepo, levels, 10, time.Minute),
	})
}

func TestHandleNotificationDispatchPersists(t *testing.T) {
	db := setupWorkerTestDB(t)
	consumer := newTestConsumer(t, db)

	task, err := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{
		UserID:      3,
		Title:       "Category approved",
		Kind:        constants.NotificationKindCategoryApproved,
		RelatedID:   9,
		RelatedKind: constants.NotificationRelatedCategory,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("handle dispatch failed: %v", err)
	}
	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", 3).Count(&count)
	if count != 1 {
		t.Fatalf("expected one notification got %d", count)
	}

	empty, _ := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{Title: "orphan"})
	if err := consumer.handleNotificationDispatch(context.Background(), empty); err != nil {
		t.Fatalf("payload without user must be skipped, got %v", err)
	}
	broken := asynq.NewTask(queue.TaskNotificationDispatch, []byte("{"))
	if err := consumer.handleNotificationDispatch(context.Background(), broken); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleAdminNoticeDispatchPersists(t *testing.T) {
	db := setupWorkerTestDB(t)
	consumer := newTestConsumer(t, db)

	task, err := queue.NewAdminNoticeDispatchTask(queue.AdminNoticeDispatchPayload{Title: "KYC awaiting review"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleAdminNoticeDispatch(context.Background(), task); err != nil {
		t.Fatalf("handle admin notice failed: %v", err)
	}
	notices, total, err := consumer.NotificationService.ListAdminNotices(1, 10)
	if err != nil {
		t.Fatalf("list notices failed: %v", err)
	}
	if total != 1 || notices[0].Title != "KYC awaiting review" {
		t.Fatalf("unexpected notices %+v", notices)
	}
}

func TestHandleLeaderboardRefreshWithoutCache(t *testing.T) {
	db := setupWorkerTestDB(t)
	consumer := newTestConsumer(t, db)
	user := &models.User{
		Username:     "ranked",
		Email:        "ranked@example.com",
		PasswordHash: "hash",
		Exp:          700,
		KYCStatus:    models.KYCStatusNotSubmitted,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	task, err := queue.NewLeaderboardRefreshTask(queue.LeaderboardRefreshPayload{Limit: 10})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleLeaderboardRefresh(context.Background(), task); err != nil {
		t.Fatalf("handle refresh failed: %v", err)
	}
}

func TestNilConsumerSkipsTasks(t *testing.T) {
	var consumer *Consumer
	if err := consumer.handleNotificationDispatch(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer must skip, got %v", err)
	}
	if err := consumer.handleLeaderboardRefresh(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer must skip, got %v", err)
	}
}

func TestResolveRefreshInterval(t *testing.T) {
	if got := resolveRefreshInterval(nil); got != defaultLeaderboardRefreshInterval {
		t.Fatalf("expected default interval got %v", got)
	}
	consumer := NewConsumer(&provider.Container{Config: &config.Config{
		Reputation: config.ReputationConfig{LeaderboardTTLSeconds: 30},
	}})
	if got := resolveRefreshInterval(consumer); got != 30*time.Second {
		t.Fatalf("expected 30s got %v", got)
	}
}
