package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/furom/internal/config"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testUserSecret = "router-user-secret"

type envelope struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func setupRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func issueUserToken(t *testing.T, db *gorm.DB, user *models.User) string {
	t.Helper()
	cfg := &config.Config{UserJWT: config.JWTConfig{SecretKey: testUserSecret, ExpireHours: 1}}
	svc := service.NewUserAuthService(cfg, repository.NewUserRepository(db), nil, nil)
	token, _, err := svc.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return token
}

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{"https://furom.test", []string{"*"}, false, "*"},
		{"https://furom.test", []string{"*"}, true, "https://furom.test"},
		{"https://a.furom.test", []string{"https://a.furom.test", "https://b.furom.test"}, false, "https://a.furom.test"},
		{"https://x.furom.test", []string{"https://a.furom.test"}, false, ""},
	}
	for _, tc := range cases {
		if got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials); got != tc.want {
			t.Fatalf("origin %s allowed %v: want %q got %q", tc.origin, tc.allowed, tc.want, got)
		}
	}
}

func TestRequestIDMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "req-123" || w.Body.String() != "req-123" {
		t.Fatalf("request id not propagated: header=%q body=%q", w.Header().Get(requestIDHeader), w.Body.String())
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w2.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupRouterTestDB(t)
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Status: "active"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token := issueUserToken(t, db, user)

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(testUserSecret, repository.NewUserRepository(db)))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "data": c.GetUint(userIDContextKey)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("missing header want 401 got %d", resp.StatusCode)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	resp := decodeEnvelope(t, w)
	if resp.StatusCode != 0 || string(resp.Data) != fmt.Sprintf("%d", user.ID) {
		t.Fatalf("valid token rejected: %s", w.Body.String())
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("token_version", 1).Error; err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("revoked token want 401 got %d", resp.StatusCode)
	}
}

func TestOptionalUserJWTMiddlewareFallsBackToGuest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupRouterTestDB(t)

	r := gin.New()
	r.Use(OptionalUserJWTMiddleware(testUserSecret, repository.NewUserRepository(db)))
	r.GET("/posts", func(c *gin.Context) {
		_, exists := c.Get(userIDContextKey)
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "data": exists})
	})

	for _, header := range []string{"", "Bearer not-a-token"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		resp := decodeEnvelope(t, w)
		if resp.StatusCode != 0 || string(resp.Data) != "false" {
			t.Fatalf("header %q: expected guest access, got %s", header, w.Body.String())
		}
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminRBACMiddlewareWithoutAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AdminRBACMiddleware(nil))
	r.POST("/api/v1/admin/kyc/:id/approve", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/kyc/1/approve", nil))
	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestBuildAdminPermissionCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	noop := func(c *gin.Context) {}

	r := gin.New()
	r.POST("/api/v1/admin/login", noop)
	r.GET("/api/v1/admin/kyc", noop)
	r.POST("/api/v1/admin/kyc/:id/approve", noop)
	r.GET("/api/v1/admin/user-login-logs", noop)
	r.GET("/api/v1/public/posts", noop)

	items := buildAdminPermissionCatalog(r)
	if len(items) != 3 {
		t.Fatalf("expected 3 catalog items got %+v", items)
	}
	for _, item := range items {
		if item.Object == "/admin/login" {
			t.Fatalf("login route must not be listed")
		}
	}
	if items[0].Module != "kyc" || items[0].Permission != "GET:/admin/kyc" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[2].Module != "users" {
		t.Fatalf("login logs should group under users, got %+v", items[2])
	}
}
