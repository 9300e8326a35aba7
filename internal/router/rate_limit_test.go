package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"login":" Alice@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("login")(c)
	if key != "alice@example.com|1.2.3.4" {
		t.Fatalf("key want alice@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Alice@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/votes/post/1", nil)
	c.Request.RemoteAddr = "5.6.7.8:1000"
	if key := KeyByUserOrIP(c); key != "5.6.7.8" {
		t.Fatalf("guest key want ip got %s", key)
	}
	c.Set(userIDContextKey, uint(42))
	if key := KeyByUserOrIP(c); key != "user:42" {
		t.Fatalf("user key want user:42 got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass without redis, got %s", i, w.Body.String())
		}
	}
}

func TestRateLimitMiddlewareBlocksVotes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rule := RateLimitRule{Prefix: "test:rate:vote", WindowSeconds: 60, MaxRequests: 2, MessageKey: "error.vote_too_many"}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDContextKey, uint(7))
		c.Next()
	})
	r.Use(RateLimitMiddleware(client, rule, KeyByUserOrIP))
	r.POST("/votes/post/1", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/votes/post/1", nil))
		if resp := decodeEnvelope(t, w); resp.StatusCode != 0 {
			t.Fatalf("request %d should pass got %s", i, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/votes/post/1", nil))
	if resp := decodeEnvelope(t, w); resp.StatusCode != 429 {
		t.Fatalf("third request want 429 got %s", w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
	if !mr.Exists("test:rate:vote:user:7") {
		t.Fatalf("expected per-user rate limit key")
	}
}

func TestRateLimitMiddlewareRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	cases := []struct {
		name     string
		failOpen bool
		want     int
	}{
		{"vote fails open", true, 0},
		{"login fails closed", false, 500},
	}
	for _, tc := range cases {
		rule := RateLimitRule{Prefix: "test:rate", WindowSeconds: 60, MaxRequests: 5, FailOpen: tc.failOpen}
		r := gin.New()
		r.Use(RateLimitMiddleware(client, rule, KeyByIP))
		r.POST("/act", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status_code": 0})
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/act", nil))
		if resp := decodeEnvelope(t, w); resp.StatusCode != tc.want {
			t.Fatalf("%s: want %d got %s", tc.name, tc.want, w.Body.String())
		}
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		input interface{}
		want  int64
		ok    bool
	}{
		{int64(10), 10, true},
		{int(11), 11, true},
		{uint8(12), 12, true},
		{float64(13.9), 13, true},
		{"bad", 0, false},
	}
	for _, tc := range cases {
		got, ok := toInt64(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("input %v: want (%d,%v) got (%d,%v)", tc.input, tc.want, tc.ok, got, ok)
		}
	}
}
