package main

import (
	"context"
	"errors"
	"flag"

	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/models"
	"github.com/furom/internal/provider"
	"github.com/furom/internal/service"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Username string
	Email    string
	Exp      int
}

type seedPost struct {
	Author   string
	Category string
	Title    string
	Content  string
	Comments map[string]string
	Upvoters []string
	Downvote []string
}

var demoUsers = []seedUser{
	{Username: "founder", Email: "founder@furom.local", Exp: 1200},
	{Username: "alice", Email: "alice@furom.local", Exp: 150},
	{Username: "bob", Email: "bob@furom.local", Exp: 40},
	{Username: "carol", Email: "carol@furom.local", Exp: 0},
}

var demoCategories = []service.SubmitCategoryInput{
	{Name: "Announcements", Slug: "announcements", Description: "News about the forum itself"},
	{Name: "Tech", Slug: "tech", Description: "Programming, hardware and everything in between"},
	{Name: "Verified Market", Slug: "verified-market", Description: "Trading between identity-verified members", KYCVerifiedOnly: true},
}

var demoPosts = []seedPost{
	{
		Author:   "founder",
		Category: "announcements",
		Title:    "Welcome to Furom",
		Content:  "Earn experience by posting, commenting and receiving upvotes. Levels unlock category creation.",
		Comments: map[string]string{"alice": "Glad to be here!", "bob": "How many points for a comment?"},
		Upvoters: []string{"alice", "bob", "carol"},
	},
	{
		Author:   "alice",
		Category: "tech",
		Title:    "Favourite Go libraries for web backends",
		Content:  "gin, gorm and zap cover most of what I need. What do you use?",
		Comments: map[string]string{"founder": "Add asynq for background jobs."},
		Upvoters: []string{"founder"},
		Downvote: []string{"carol"},
	},
}

func main() {
	password := flag.String("password", "Furom2024!", "演示账号统一密码")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	// 种子数据直接落库，不经过队列
	cfg.Queue.Enabled = false
	c := provider.NewContainer(cfg)
	defer func() { _ = c.Close() }()

	if _, err := c.SettingService.Update(constants.SettingKeyModerationConfig, map[string]interface{}{
		constants.SettingFieldKYCRequiredForCategories:      false,
		constants.SettingFieldCategoryAutoApprovalThreshold: 1000,
		constants.SettingFieldKYCAutoApprovalThreshold:      5000,
		constants.SettingFieldCategoryMinExp:                100,
	}); err != nil {
		stdLog.Fatalf("Failed to write moderation settings: %v", err)
	}

	userIDs, err := seedUsers(c, *password)
	if err != nil {
		stdLog.Fatalf("Failed to seed users: %v", err)
	}

	categoryIDs := map[string]uint{}
	for _, input := range demoCategories {
		category, err := c.CategoryService.Submit(userIDs["founder"], input)
		switch {
		case errors.Is(err, service.ErrConflict):
			existing, getErr := c.CategoryService.GetActiveBySlug(input.Slug)
			if getErr != nil || existing == nil {
				stdLog.Printf("Category %s exists but is not active, skipped", input.Slug)
				continue
			}
			categoryIDs[input.Slug] = existing.ID
			stdLog.Printf("Category already exists: %s", input.Slug)
		case err != nil:
			stdLog.Printf("Failed to create category %s: %v", input.Slug, err)
		default:
			categoryIDs[input.Slug] = category.ID
			stdLog.Printf("Created category: %s (%s)", input.Slug, category.Status)
		}
	}

	for _, item := range demoPosts {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			continue
		}
		var existing int64
		models.DB.Model(&models.Post{}).Where("title = ? AND category_id = ?", item.Title, categoryID).Count(&existing)
		if existing > 0 {
			stdLog.Printf("Post already exists: %s", item.Title)
			continue
		}
		post, err := c.PostService.Create(userIDs[item.Author], service.CreatePostInput{
			CategoryID: categoryID,
			Title:      item.Title,
			Content:    item.Content,
		})
		if err != nil {
			stdLog.Printf("Failed to create post %q: %v", item.Title, err)
			continue
		}
		for author, content := range item.Comments {
			if _, err := c.CommentService.Create(userIDs[author], post.ID, service.CreateCommentInput{Content: content}); err != nil {
				stdLog.Printf("Failed to comment on %q: %v", item.Title, err)
			}
		}
		castVotes(c, post.ID, item.Upvoters, constants.VoteDirectionUp, userIDs)
		castVotes(c, post.ID, item.Downvote, constants.VoteDirectionDown, userIDs)
		stdLog.Printf("Created post: %s", item.Title)
	}

	if _, err := c.LeaderboardService.Refresh(context.Background()); err != nil {
		stdLog.Printf("Leaderboard warmup skipped: %v", err)
	}
	stdLog.Printf("Seed finished, demo password: %s", *password)
}

func seedUsers(c *provider.Container, password string) (map[string]uint, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(demoUsers))
	for _, item := range demoUsers {
		existing, err := c.UserRepo.GetByUsername(item.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids[item.Username] = existing.ID
			continue
		}
		user := &models.User{
			Username:      item.Username,
			Email:         item.Email,
			PasswordHash:  string(hash),
			DisplayName:   item.Username,
			EmailVerified: true,
			KYCStatus:     models.KYCStatusNotSubmitted,
			Status:        constants.UserStatusActive,
		}
		if err := c.UserRepo.Create(user); err != nil {
			return nil, err
		}
		if item.Exp > 0 {
			if _, err := c.Ledger.AdjustExperience(user.ID, item.Exp, constants.ExpReasonAdminAdjust); err != nil {
				return nil, err
			}
		}
		ids[item.Username] = user.ID
	}
	return ids, nil
}

func castVotes(c *provider.Container, postID uint, voters []string, direction string, userIDs map[string]uint) {
	for _, voter := range voters {
		if _, err := c.VoteService.CastVote(userIDs[voter], constants.VoteTargetPost, postID, direction); err != nil {
			logger.Warnw("seed_vote_failed", "post_id", postID, "voter", voter, "error", err)
		}
	}
}
