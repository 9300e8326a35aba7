package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

type contentServices struct {
	posts    *PostService
	comments *CommentService
}

func newContentServicesForTest(db *gorm.DB) contentServices {
	ledger := newTestLedger(db)
	awards := NewAwardPolicy(ledger, nil)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewModerationLogRepository(db)
	return contentServices{
		posts:    NewPostService(postRepo, repository.NewCategoryRepository(db), userRepo, logRepo, awards),
		comments: NewCommentService(repository.NewCommentRepository(db), postRepo, userRepo, logRepo, awards),
	}
}

func createServiceTestCategory(t *testing.T, db *gorm.DB, slug string, status models.CategoryStatus, kycOnly bool) *models.Category {
	t.Helper()
	category := &models.Category{Name: slug, Slug: slug, CreatorID: 1, Status: status, KYCVerifiedOnly: kycOnly}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func TestPostCreateAwardsAndCounts(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newContentServicesForTest(db)
	user := createServiceTestUser(t, db, "writer", 0)
	category := createServiceTestCategory(t, db, "news", models.CategoryStatusActive, false)

	post, err := svc.posts.Create(user.ID, CreatePostInput{
		CategoryID: category.ID,
		Title:      "  First <i>post</i> ",
		Content:    `<p>hello</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if post.Title != "First post" {
		t.Fatalf("expected plain title got %q", post.Title)
	}
	if strings.Contains(post.Content, "script") {
		t.Fatalf("content must be sanitized, got %q", post.Content)
	}
	if got := reloadUserExp(t, db, user.ID); got != 10 {
		t.Fatalf("expected post award 10 got %d", got)
	}
	var stored models.Category
	if err := db.First(&stored, category.ID).Error; err != nil {
		t.Fatalf("reload category failed: %v", err)
	}
	if stored.PostCount != 1 {
		t.Fatalf("expected post count 1 got %d", stored.PostCount)
	}

	detail, err := svc.posts.Get(post.ID, true)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if detail.ViewCount != 1 {
		t.Fatalf("expected view count 1 got %d", detail.ViewCount)
	}
}

func TestPostCreateCategoryGates(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newContentServicesForTest(db)
	user := createServiceTestUser(t, db, "gated", 0)
	pending := createServiceTestCategory(t, db, "waiting", models.CategoryStatusPending, false)
	verified := createServiceTestCategory(t, db, "verified", models.CategoryStatusActive, true)

	input := CreatePostInput{CategoryID: pending.ID, Title: "Hello there", Content: "body"}
	if _, err := svc.posts.Create(user.ID, input); !errors.Is(err, ErrCategoryNotActive) {
		t.Fatalf("expected category not active got %v", err)
	}
	input.CategoryID = verified.ID
	if _, err := svc.posts.Create(user.ID, input); !errors.Is(err, ErrKYCRequired) {
		t.Fatalf("expected kyc required got %v", err)
	}
	input.CategoryID = 999
	if _, err := svc.posts.Create(user.ID, input); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected category not found got %v", err)
	}
	if got := reloadUserExp(t, db, user.ID); got != 0 {
		t.Fatalf("failed posts must not award exp, got %d", got)
	}
}

func TestPostModerationHidesPost(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newContentServicesForTest(db)
	admin := createServiceTestAdmin(t, db, "mod")
	user := createServiceTestUser(t, db, "spammer", 0)
	category := createServiceTestCategory(t, db, "misc", models.CategoryStatusActive, false)
	post, err := svc.posts.Create(user.ID, CreatePostInput{CategoryID: category.ID, Title: "Buy now", Content: "spam"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	if _, err := svc.posts.Moderate(post.ID, admin.ID, "hidden", ""); !errors.Is(err, ErrInvalidContentStatus) {
		t.Fatalf("expected invalid status got %v", err)
	}
	moderated, err := svc.posts.Moderate(post.ID, admin.ID, constants.ContentStatusRemoved, "spam")
	if err != nil {
		t.Fatalf("moderate failed: %v", err)
	}
	if moderated.Status != constants.ContentStatusRemoved {
		t.Fatalf("expected removed got %s", moderated.Status)
	}
	if _, err := svc.posts.Get(post.ID, false); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("removed post must be hidden, got %v", err)
	}
	posts, total, err := svc.posts.List(PostQuery{CategoryID: category.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 || len(posts) != 0 {
		t.Fatalf("removed post must not be listed, got %d", total)
	}
	if got := countModerationLogs(t, db, constants.VoteTargetPost, post.ID); got != 1 {
		t.Fatalf("expected one moderation log got %d", got)
	}
}

func TestCommentCreateAwardsAndCounts(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newContentServicesForTest(db)
	author := createServiceTestUser(t, db, "op", 0)
	replier := createServiceTestUser(t, db, "replier", 0)
	category := createServiceTestCategory(t, db, "talk", models.CategoryStatusActive, false)
	post, err := svc.posts.Create(author.ID, CreatePostInput{CategoryID: category.ID, Title: "Discuss", Content: "thoughts?"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	comment, err := svc.comments.Create(replier.ID, post.ID, CreateCommentInput{Content: "agreed"})
	if err != nil {
		t.Fatalf("create comment failed: %v", err)
	}
	if got := reloadUserExp(t, db, replier.ID); got != 5 {
		t.Fatalf("expected comment award 5 got %d", got)
	}
	if stored := reloadPostTotals(t, db, post.ID); stored.CommentCount != 1 {
		t.Fatalf("expected comment count 1 got %d", stored.CommentCount)
	}
	if _, err := svc.comments.Create(replier.ID, 999, CreateCommentInput{Content: "lost"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected post not found got %v", err)
	}
	if _, err := svc.comments.Create(replier.ID, post.ID, CreateCommentInput{Content: "<script></script>"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty sanitized comment must fail validation, got %v", err)
	}

	if _, err := svc.comments.Moderate(comment.ID, 1, constants.ContentStatusRemoved, "rude"); err != nil {
		t.Fatalf("moderate comment failed: %v", err)
	}
	comments, total, err := svc.comments.ListByPost(post.ID, 1, 20)
	if err != nil {
		t.Fatalf("list comments failed: %v", err)
	}
	if total != 0 || len(comments) != 0 {
		t.Fatalf("removed comment must not be listed, got %d", total)
	}
	if stored := reloadPostTotals(t, db, post.ID); stored.CommentCount != 0 {
		t.Fatalf("expected comment count 0 got %d", stored.CommentCount)
	}
}
