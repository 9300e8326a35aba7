package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

type recordedNotification struct {
	UserID uint
	Kind   string
}

type recordingNotifier struct {
	mu          sync.Mutex
	userNotices []recordedNotification
	adminTitles []string
}

func (n *recordingNotifier) Notify(userID uint, title, message, kind string, relatedID uint, relatedKind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userNotices = append(n.userNotices, recordedNotification{UserID: userID, Kind: kind})
	return nil
}

func (n *recordingNotifier) NotifyAdmins(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adminTitles = append(n.adminTitles, title)
	return nil
}

func intPtr(v int) *int {
	return &v
}

func newCategoryServiceForTest(db *gorm.DB, settings ModerationSettings, approverID uint, notifier Notifier) *CategoryService {
	ledger := newTestLedger(db)
	return NewCategoryService(
		repository.NewCategoryRepository(db),
		repository.NewUserRepository(db),
		repository.NewModerationLogRepository(db),
		StaticSettings(settings),
		StaticIdentity(approverID),
		NewAwardPolicy(ledger, nil),
		notifier,
	)
}

func countModerationLogs(t *testing.T, db *gorm.DB, kind string, subjectID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.ModerationLog{}).Where("subject_kind = ? AND subject_id = ?", kind, subjectID).Count(&count).Error; err != nil {
		t.Fatalf("count moderation logs failed: %v", err)
	}
	return count
}

func TestCategorySubmitPendingNotifiesAdmins(t *testing.T) {
	db := setupServiceTestDB(t)
	notifier := &recordingNotifier{}
	svc := newCategoryServiceForTest(db, ModerationSettings{}, 0, notifier)
	user := createServiceTestUser(t, db, "maker", 10)

	category, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Go Programming", Description: "<b>all</b> things go"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if category.Status != models.CategoryStatusPending {
		t.Fatalf("expected pending got %s", category.Status)
	}
	if category.Slug != "go-programming" {
		t.Fatalf("expected derived slug got %q", category.Slug)
	}
	if category.Description != "all things go" {
		t.Fatalf("expected sanitized description got %q", category.Description)
	}
	if category.ApprovedBy != nil {
		t.Fatalf("pending category should have no approver")
	}
	if len(notifier.adminTitles) != 1 {
		t.Fatalf("expected one admin notice got %d", len(notifier.adminTitles))
	}
	if got := reloadUserExp(t, db, user.ID); got != 10 {
		t.Fatalf("pending submission must not award exp, got %d", got)
	}
}

func TestCategorySubmitAutoApproveAwardsAndLogs(t *testing.T) {
	db := setupServiceTestDB(t)
	admin := createServiceTestAdmin(t, db, "system")
	notifier := &recordingNotifier{}
	svc := newCategoryServiceForTest(db, ModerationSettings{CategoryAutoApprovalThreshold: intPtr(100)}, admin.ID, notifier)
	user := createServiceTestUser(t, db, "veteran", 150)

	category, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Rustaceans", Slug: "rust"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if category.Status != models.CategoryStatusActive {
		t.Fatalf("expected active got %s", category.Status)
	}
	if category.ApprovedBy == nil || *category.ApprovedBy != admin.ID || category.ApprovedAt == nil {
		t.Fatalf("expected system approver recorded, got %+v", category)
	}
	if got := reloadUserExp(t, db, user.ID); got != 175 {
		t.Fatalf("expected 150+25 exp got %d", got)
	}
	if got := countModerationLogs(t, db, submissionSubjectCategory, category.ID); got != 1 {
		t.Fatalf("expected one moderation log got %d", got)
	}
	if len(notifier.userNotices) != 1 || notifier.userNotices[0].Kind != constants.NotificationKindCategoryApproved {
		t.Fatalf("expected approval notice got %+v", notifier.userNotices)
	}
}

func TestCategorySubmitBelowThresholdStaysPending(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newCategoryServiceForTest(db, ModerationSettings{CategoryAutoApprovalThreshold: intPtr(100)}, 1, nil)
	user := createServiceTestUser(t, db, "newbie", 99)

	category, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Gardening"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if category.Status != models.CategoryStatusPending {
		t.Fatalf("expected pending got %s", category.Status)
	}
}

func TestCategorySubmitConflictsAndGates(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newCategoryServiceForTest(db, ModerationSettings{CategoryMinExp: 5}, 0, nil)
	user := createServiceTestUser(t, db, "owner", 10)
	poor := createServiceTestUser(t, db, "poor", 1)

	if _, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Photography", Slug: "photo"}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	_, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Photography", Slug: "photo-2"})
	if !errors.Is(err, ErrCategoryNameExists) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected name conflict got %v", err)
	}
	_, err = svc.Submit(user.ID, SubmitCategoryInput{Name: "Photos", Slug: "photo"})
	if !errors.Is(err, ErrCategorySlugExists) {
		t.Fatalf("expected slug conflict got %v", err)
	}
	_, err = svc.Submit(poor.ID, SubmitCategoryInput{Name: "Cooking"})
	if !errors.Is(err, ErrInsufficientExperience) {
		t.Fatalf("expected insufficient experience got %v", err)
	}
	_, err = svc.Submit(user.ID, SubmitCategoryInput{Name: "x"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
	if validationErr.Fields[0].Field != "name" {
		t.Fatalf("expected name field error got %+v", validationErr.Fields)
	}
	_, err = svc.Submit(9999, SubmitCategoryInput{Name: "Orphan"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found got %v", err)
	}
}

// staleSlugCategoryRepo 首次 CountBySlug 返回 0，模拟并发提交越过前置检查
type staleSlugCategoryRepo struct {
	*repository.GormCategoryRepository
	mu    sync.Mutex
	stale bool
}

func (r *staleSlugCategoryRepo) CountBySlug(slug string) (int64, error) {
	r.mu.Lock()
	stale := r.stale
	r.stale = false
	r.mu.Unlock()
	if stale {
		return 0, nil
	}
	return r.GormCategoryRepository.CountBySlug(slug)
}

func TestCategorySubmitSlugRaceReportsSlugConflict(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createServiceTestUser(t, db, "racer", 10)
	repo := &staleSlugCategoryRepo{GormCategoryRepository: repository.NewCategoryRepository(db)}
	svc := NewCategoryService(
		repo,
		repository.NewUserRepository(db),
		repository.NewModerationLogRepository(db),
		StaticSettings(ModerationSettings{}),
		StaticIdentity(0),
		NewAwardPolicy(newTestLedger(db), nil),
		nil,
	)

	if _, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Photography", Slug: "photo"}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	repo.stale = true
	_, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Photos", Slug: "photo"})
	if !errors.Is(err, ErrCategorySlugExists) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected slug conflict after unique violation got %v", err)
	}
	if errors.Is(err, ErrCategoryNameExists) {
		t.Fatalf("slug collision must not be reported as name conflict")
	}
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		t.Fatalf("count categories failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected racing insert rolled back, got %d categories", count)
	}
}

func TestCategorySubmitRequiresKYCWhenConfigured(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newCategoryServiceForTest(db, ModerationSettings{KYCRequiredForCategories: true}, 0, nil)
	user := createServiceTestUser(t, db, "anon", 10)

	if _, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Secrets"}); !errors.Is(err, ErrKYCRequired) {
		t.Fatalf("expected kyc required got %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("kyc_status", models.KYCStatusApproved).Error; err != nil {
		t.Fatalf("update kyc status failed: %v", err)
	}
	if _, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Secrets"}); err != nil {
		t.Fatalf("submit after kyc approval failed: %v", err)
	}
}

func TestCategoryApproveRejectTransitions(t *testing.T) {
	db := setupServiceTestDB(t)
	admin := createServiceTestAdmin(t, db, "moderator")
	notifier := &recordingNotifier{}
	svc := newCategoryServiceForTest(db, ModerationSettings{}, 0, notifier)
	user := createServiceTestUser(t, db, "creator", 10)

	first, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Board Games"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	approved, err := svc.Approve(first.ID, admin.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != models.CategoryStatusActive || approved.ApprovedBy == nil || *approved.ApprovedBy != admin.ID {
		t.Fatalf("unexpected approved category %+v", approved)
	}
	if _, err := svc.Reject(first.ID, admin.ID, "late"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition got %v", err)
	}
	if _, err := svc.Approve(first.ID, admin.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on re-approve got %v", err)
	}

	second, err := svc.Submit(user.ID, SubmitCategoryInput{Name: "Chess Club"})
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if _, err := svc.Reject(second.ID, admin.ID, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected reason validation got %v", err)
	}
	rejected, err := svc.Reject(second.ID, admin.ID, "duplicate of board games")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != models.CategoryStatusRejected || rejected.RejectionReason == nil || *rejected.RejectionReason != "duplicate of board games" {
		t.Fatalf("unexpected rejected category %+v", rejected)
	}
	if _, err := svc.Approve(second.ID, admin.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("rejected category must not be approvable, got %v", err)
	}
	if _, err := svc.Approve(12345, admin.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	if got := countModerationLogs(t, db, submissionSubjectCategory, first.ID); got != 1 {
		t.Fatalf("expected one log for first category got %d", got)
	}
	if got := countModerationLogs(t, db, submissionSubjectCategory, second.ID); got != 1 {
		t.Fatalf("expected one log for second category got %d", got)
	}
	if len(notifier.userNotices) != 2 {
		t.Fatalf("expected two user notices got %d", len(notifier.userNotices))
	}

	active, err := svc.ListActive()
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != first.ID {
		t.Fatalf("expected only approved category active, got %+v", active)
	}
}
