package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/provider"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type voteEnvelope struct {
	StatusCode int                `json:"status_code"`
	Data       service.VoteResult `json:"data"`
}

func setupVoteHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_vote_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	ledger := service.NewReputationLedger(
		repository.NewUserRepository(db),
		repository.NewExpLogRepository(db),
		service.MustLevelTable(config.DefaultLevels()),
	)
	awards := service.NewAwardPolicy(ledger, nil)
	h := New(&provider.Container{
		VoteService: service.NewVoteService(repository.NewVoteRepository(db), ledger, awards),
	})

	r := gin.New()
	// 测试中以请求头模拟已登录用户
	r.Use(func(c *gin.Context) {
		var uid uint
		if _, err := fmt.Sscanf(c.GetHeader("X-Test-User"), "%d", &uid); err == nil && uid > 0 {
			c.Set("user_id", uid)
		}
		c.Next()
	})
	r.GET("/votes/:kind/:id", h.GetMyVote)
	r.POST("/votes/:kind/:id", h.CastVote)
	r.DELETE("/votes/:kind/:id", h.RetractVote)
	return r, db
}

func createVoteHandlerUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		KYCStatus:    models.KYCStatusNotSubmitted,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func doVoteRequest(t *testing.T, r *gin.Engine, method, path string, userID uint, body string) voteEnvelope {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: http status want 200 got %d", method, path, w.Code)
	}
	var resp voteEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestCastVoteEndpointReturnsScore(t *testing.T) {
	r, db := setupVoteHandlerTest(t)
	author := createVoteHandlerUser(t, db, "author")
	reader := createVoteHandlerUser(t, db, "reader")
	category := &models.Category{Name: "General", Slug: "general", CreatorID: author.ID, Status: models.CategoryStatusActive}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	post := &models.Post{UserID: author.ID, CategoryID: category.ID, Title: "hello", Content: "world", Status: constants.ContentStatusActive}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	path := fmt.Sprintf("/votes/post/%d", post.ID)

	resp := doVoteRequest(t, r, http.MethodPost, path, reader.ID, `{"direction":"up"}`)
	if resp.StatusCode != 0 || resp.Data.Score != 1 || resp.Data.Direction != constants.VoteDirectionUp {
		t.Fatalf("unexpected upvote response %+v", resp)
	}

	resp = doVoteRequest(t, r, http.MethodPost, path, reader.ID, `{"direction":"down"}`)
	if resp.StatusCode != 0 || resp.Data.Score != -1 || resp.Data.Downvotes != 1 {
		t.Fatalf("unexpected flip response %+v", resp)
	}

	resp = doVoteRequest(t, r, http.MethodDelete, path, reader.ID, "")
	if resp.StatusCode != 0 || resp.Data.Score != 0 || resp.Data.Direction != "" {
		t.Fatalf("unexpected retract response %+v", resp)
	}

	var stored models.User
	if err := db.First(&stored, author.ID).Error; err != nil {
		t.Fatalf("reload author failed: %v", err)
	}
	if stored.Exp != 0 {
		t.Fatalf("author exp must net to 0 after retract, got %d", stored.Exp)
	}
}

func TestCastVoteEndpointErrors(t *testing.T) {
	r, db := setupVoteHandlerTest(t)
	author := createVoteHandlerUser(t, db, "owner")
	reader := createVoteHandlerUser(t, db, "guest")
	category := &models.Category{Name: "General", Slug: "general", CreatorID: author.ID, Status: models.CategoryStatusActive}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	post := &models.Post{UserID: author.ID, CategoryID: category.ID, Title: "hello", Content: "world", Status: constants.ContentStatusActive}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	path := fmt.Sprintf("/votes/post/%d", post.ID)

	cases := []struct {
		name   string
		method string
		path   string
		userID uint
		body   string
		want   int
	}{
		{"anonymous", http.MethodPost, path, 0, `{"direction":"up"}`, 401},
		{"self vote", http.MethodPost, path, author.ID, `{"direction":"up"}`, 403},
		{"bad direction", http.MethodPost, path, reader.ID, `{"direction":"sideways"}`, 400},
		{"missing direction", http.MethodPost, path, reader.ID, `{}`, 400},
		{"bad kind", http.MethodPost, fmt.Sprintf("/votes/user/%d", post.ID), reader.ID, `{"direction":"up"}`, 400},
		{"bad id", http.MethodPost, "/votes/post/abc", reader.ID, `{"direction":"up"}`, 400},
		{"missing post", http.MethodPost, "/votes/post/9999", reader.ID, `{"direction":"up"}`, 404},
	}
	for _, tc := range cases {
		resp := doVoteRequest(t, r, tc.method, tc.path, tc.userID, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: status_code want %d got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}
