//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Vote{},
		&models.Comment{},
		&models.Post{},
		&models.Category{},
		&models.ExpLog{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.ExpLog{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresUserAddExpClampsAtZero(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Username: "pg_ledger", Email: "pg_ledger@example.com", PasswordHash: "hash", Exp: 5}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	found, err := repo.AddExp(user.ID, -20)
	if err != nil || !found {
		t.Fatalf("add exp failed: found=%v err=%v", found, err)
	}
	exp, ok, err := repo.GetExp(user.ID)
	if err != nil || !ok {
		t.Fatalf("get exp failed: ok=%v err=%v", ok, err)
	}
	if exp != 0 {
		t.Fatalf("exp want 0 got %d", exp)
	}
	found, err = repo.AddExp(user.ID+1000, 10)
	if err != nil {
		t.Fatalf("add exp for missing user failed: %v", err)
	}
	if found {
		t.Fatalf("missing user should report not found")
	}
}

func TestPostgresTrendingAndSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC()

	author := &models.User{Username: "pg_author", Email: "pg_author@example.com", PasswordHash: "hash"}
	if err := db.Create(author).Error; err != nil {
		t.Fatalf("create author failed: %v", err)
	}
	category := &models.Category{Name: "Postgres", Slug: "postgres", CreatorID: author.ID, Status: models.CategoryStatusActive}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	posts := []models.Post{
		{UserID: author.ID, CategoryID: category.ID, Title: "Old but loud", Content: "x", Status: constants.ContentStatusActive, Score: 50, CreatedAt: now.Add(-96 * time.Hour)},
		{UserID: author.ID, CategoryID: category.ID, Title: "Fresh Release", Content: "y", Status: constants.ContentStatusActive, Score: 10, CreatedAt: now.Add(-1 * time.Hour)},
	}
	if err := db.Create(&posts).Error; err != nil {
		t.Fatalf("create posts failed: %v", err)
	}

	repo := NewPostRepository(db)
	rows, total, err := repo.List(PostListFilter{Page: 1, PageSize: 10, OrderBy: constants.PostSortTrending})
	if err != nil {
		t.Fatalf("trending list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("trending list want 2 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Title != "Fresh Release" {
		t.Fatalf("fresh post should trend first, got %s", rows[0].Title)
	}

	rows, total, err = repo.List(PostListFilter{Page: 1, PageSize: 10, Search: "release"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("case-insensitive search want 1 got total=%d", total)
	}
}
