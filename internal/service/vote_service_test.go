package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

func newVoteServiceForTest(db *gorm.DB) *VoteService {
	ledger := newTestLedger(db)
	return NewVoteService(repository.NewVoteRepository(db), ledger, NewAwardPolicy(ledger, nil))
}

func createServiceTestPost(t *testing.T, db *gorm.DB, ownerID uint) *models.Post {
	t.Helper()
	category := &models.Category{Name: "General", Slug: "general", CreatorID: ownerID, Status: models.CategoryStatusActive}
	if err := db.Where(models.Category{Slug: "general"}).FirstOrCreate(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	post := &models.Post{UserID: ownerID, CategoryID: category.ID, Title: "hello", Content: "world", Status: constants.ContentStatusActive}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	return post
}

func reloadPostTotals(t *testing.T, db *gorm.DB, postID uint) models.Post {
	t.Helper()
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post failed: %v", err)
	}
	return post
}

func TestVoteToggleAndFlipNetExp(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "author", 10)
	voter := createServiceTestUser(t, db, "reader", 0)
	post := createServiceTestPost(t, db, owner.ID)

	result, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionUp)
	if err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if result.Score != 1 || result.Direction != constants.VoteDirectionUp {
		t.Fatalf("unexpected upvote result %+v", result)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 12 {
		t.Fatalf("expected 12 after upvote got %d", got)
	}

	result, err = svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionDown)
	if err != nil {
		t.Fatalf("flip failed: %v", err)
	}
	if result.Score != -1 || result.Upvotes != 0 || result.Downvotes != 1 {
		t.Fatalf("unexpected flip result %+v", result)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 9 {
		t.Fatalf("expected net change -3 to 9 got %d", got)
	}

	result, err = svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionDown)
	if err != nil {
		t.Fatalf("repeat vote failed: %v", err)
	}
	if result.Score != 0 || result.Direction != "" {
		t.Fatalf("repeat vote must retract, got %+v", result)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 10 {
		t.Fatalf("retract must restore exp to 10 got %d", got)
	}
	stored := reloadPostTotals(t, db, post.ID)
	if stored.Score != 0 || stored.Upvotes != 0 || stored.Downvotes != 0 {
		t.Fatalf("unexpected stored totals %+v", stored)
	}
	if direction, _ := svc.GetVote(voter.ID, constants.VoteTargetPost, post.ID); direction != "" {
		t.Fatalf("expected no vote got %q", direction)
	}

	var reasons []string
	if err := db.Model(&models.ExpLog{}).Where("user_id = ?", owner.ID).Order("id ASC").Pluck("reason", &reasons).Error; err != nil {
		t.Fatalf("load exp logs failed: %v", err)
	}
	want := []string{constants.ExpActionUpvoteReceived, constants.ExpReasonVoteChanged, constants.ExpReasonVoteRetracted}
	if len(reasons) != len(want) {
		t.Fatalf("expected reasons %v got %v", want, reasons)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Fatalf("expected reasons %v got %v", want, reasons)
		}
	}
}

func TestVoteScoreMatchesVoteRows(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "poster", 0)
	post := createServiceTestPost(t, db, owner.ID)

	directions := []string{
		constants.VoteDirectionUp, constants.VoteDirectionUp, constants.VoteDirectionDown,
		constants.VoteDirectionUp, constants.VoteDirectionDown,
	}
	for i, direction := range directions {
		voter := createServiceTestUser(t, db, "voter"+string(rune('a'+i)), 0)
		if _, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, direction); err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
	}

	stored := reloadPostTotals(t, db, post.ID)
	if stored.Upvotes != 3 || stored.Downvotes != 2 || stored.Score != 1 {
		t.Fatalf("unexpected totals %+v", stored)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 4 {
		t.Fatalf("expected 3*2-2 = 4 exp got %d", got)
	}
}

func TestVoteRejectsSelfAndMissingTargets(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "self", 0)
	voter := createServiceTestUser(t, db, "other", 0)
	post := createServiceTestPost(t, db, owner.ID)

	if _, err := svc.CastVote(owner.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionUp); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("expected self vote error got %v", err)
	}
	if _, err := svc.CastVote(voter.ID, constants.VoteTargetPost, 9999, constants.VoteDirectionUp); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected target not found got %v", err)
	}
	if _, err := svc.CastVote(voter.ID, "user", post.ID, constants.VoteDirectionUp); !errors.Is(err, ErrInvalidTargetKind) {
		t.Fatalf("expected invalid target kind got %v", err)
	}
	if _, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, "sideways"); !errors.Is(err, ErrInvalidVoteDirection) {
		t.Fatalf("expected invalid direction got %v", err)
	}

	if err := db.Model(&models.Post{}).Where("id = ?", post.ID).Update("status", constants.ContentStatusRemoved).Error; err != nil {
		t.Fatalf("remove post failed: %v", err)
	}
	if _, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionUp); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("removed post must not accept votes, got %v", err)
	}
}

func TestVoteOnCommentAndViewerVotes(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "commenter", 5)
	voter := createServiceTestUser(t, db, "fan", 0)
	post := createServiceTestPost(t, db, voter.ID)
	comment := &models.Comment{UserID: owner.ID, PostID: post.ID, Content: "nice", Status: constants.ContentStatusActive}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("create comment failed: %v", err)
	}

	if _, err := svc.CastVote(voter.ID, constants.VoteTargetComment, comment.ID, constants.VoteDirectionDown); err != nil {
		t.Fatalf("downvote comment failed: %v", err)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 4 {
		t.Fatalf("expected 4 exp got %d", got)
	}
	votes, err := svc.ViewerVotes(voter.ID, constants.VoteTargetComment, []uint{comment.ID, comment.ID + 1})
	if err != nil {
		t.Fatalf("viewer votes failed: %v", err)
	}
	if votes[comment.ID] != constants.VoteDirectionDown || len(votes) != 1 {
		t.Fatalf("unexpected viewer votes %+v", votes)
	}

	result, err := svc.RetractVote(voter.ID, constants.VoteTargetComment, comment.ID)
	if err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("expected score 0 got %d", result.Score)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 5 {
		t.Fatalf("expected exp restored to 5 got %d", got)
	}
}

func TestVoteRetractAfterClampDoesNotRefund(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "broke", 0)
	post := createServiceTestPost(t, db, owner.ID)

	voters := make([]*models.User, 5)
	for i := range voters {
		voters[i] = createServiceTestUser(t, db, fmt.Sprintf("critic%d", i), 0)
		if _, err := svc.CastVote(voters[i].ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionDown); err != nil {
			t.Fatalf("downvote %d failed: %v", i, err)
		}
	}
	if got := reloadUserExp(t, db, owner.ID); got != 0 {
		t.Fatalf("exp must stay clamped at 0 got %d", got)
	}

	for i, voter := range voters {
		result, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionDown)
		if err != nil {
			t.Fatalf("retract %d failed: %v", i, err)
		}
		if result.Direction != "" {
			t.Fatalf("repeat click must retract, got %+v", result)
		}
	}
	if stored := reloadPostTotals(t, db, post.ID); stored.Score != 0 || stored.Downvotes != 0 {
		t.Fatalf("unexpected totals %+v", stored)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 0 {
		t.Fatalf("retracting clamped downvotes must not refund exp, got %d", got)
	}
}

func TestVoteFlipAfterClampAppliesOnlyNewAward(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "zero", 0)
	voter := createServiceTestUser(t, db, "flipper", 0)
	post := createServiceTestPost(t, db, owner.ID)

	if _, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionDown); err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	vote, err := repository.NewVoteRepository(db).Get(voter.ID, constants.VoteTargetPost, post.ID)
	if err != nil || vote == nil {
		t.Fatalf("load vote failed: %v", err)
	}
	if vote.ExpApplied != 0 {
		t.Fatalf("clamped downvote must record 0 applied, got %d", vote.ExpApplied)
	}

	if _, err := svc.CastVote(voter.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionUp); err != nil {
		t.Fatalf("flip failed: %v", err)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 2 {
		t.Fatalf("flip must credit only the upvote award, got %d", got)
	}

	if _, err := svc.RetractVote(voter.ID, constants.VoteTargetPost, post.ID); err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if got := reloadUserExp(t, db, owner.ID); got != 0 {
		t.Fatalf("retract must return owner to 0, got %d", got)
	}
}

func TestVoteEndToEndPostAndVotes(t *testing.T) {
	db := setupServiceTestDB(t)
	content := newContentServicesForTest(db)
	votes := newVoteServiceForTest(db)
	author := createServiceTestUser(t, db, "author", 0)
	fan := createServiceTestUser(t, db, "fan", 0)
	critic := createServiceTestUser(t, db, "critic", 0)
	category := createServiceTestCategory(t, db, "general", models.CategoryStatusActive, false)

	post, err := content.posts.Create(author.ID, CreatePostInput{CategoryID: category.ID, Title: "Hello forum", Content: "first words"})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if got := reloadUserExp(t, db, author.ID); got != 10 {
		t.Fatalf("expected 10 after post got %d", got)
	}

	result, err := votes.CastVote(fan.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionUp)
	if err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("expected score 1 got %d", result.Score)
	}
	if got := reloadUserExp(t, db, author.ID); got != 12 {
		t.Fatalf("expected 12 after upvote got %d", got)
	}

	result, err = votes.CastVote(critic.ID, constants.VoteTargetPost, post.ID, constants.VoteDirectionDown)
	if err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if result.Score != 0 || result.Upvotes != 1 || result.Downvotes != 1 {
		t.Fatalf("unexpected result after downvote %+v", result)
	}
	if got := reloadUserExp(t, db, author.ID); got != 11 {
		t.Fatalf("expected 11 after downvote got %d", got)
	}
}

func TestVoteConcurrentVotersNoLostUpdates(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newVoteServiceForTest(db)
	owner := createServiceTestUser(t, db, "popular", 0)
	post := createServiceTestPost(t, db, owner.ID)

	const workers = 20
	voters := make([]*models.User, workers)
	for i := range voters {
		voters[i] = createServiceTestUser(t, db, fmt.Sprintf("crowd%d", i), 0)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for _, voter := range voters {
		wg.Add(1)
		go func(voterID uint) {
			defer wg.Done()
			if _, err := svc.CastVote(voterID, constants.VoteTargetPost, post.ID, constants.VoteDirectionUp); err != nil {
				errs <- err
			}
		}(voter.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent vote failed: %v", err)
	}

	stored := reloadPostTotals(t, db, post.ID)
	if stored.Score != workers || stored.Upvotes != workers {
		t.Fatalf("expected %d upvotes got %+v", workers, stored)
	}
	if got := reloadUserExp(t, db, owner.ID); got != workers*2 {
		t.Fatalf("expected %d exp got %d", workers*2, got)
	}
	var rows int64
	db.Model(&models.Vote{}).Where("target_id = ?", post.ID).Count(&rows)
	if rows != workers {
		t.Fatalf("expected %d vote rows got %d", workers, rows)
	}
}
