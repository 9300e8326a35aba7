package service

import (
	"errors"
	"testing"
	"time"

	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"

	"gorm.io/gorm"
)

func newUserAuthServiceForTest(db *gorm.DB) *UserAuthService {
	cfg := &config.Config{
		UserJWT: config.JWTConfig{SecretKey: "test-user-secret", ExpireHours: 1, RememberMeExpireHours: 72},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true},
		},
	}
	ledger := newTestLedger(db)
	return NewUserAuthService(cfg, repository.NewUserRepository(db), ledger.Levels(), NewAwardPolicy(ledger, nil))
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserAuthServiceForTest(db)

	user, token, err := svc.Register(RegisterInput{Username: "new_user", Email: " New@Example.com ", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "new@example.com" || user.EmailVerified || token == "" {
		t.Fatalf("unexpected registered user %+v token=%q", user, token)
	}

	if _, _, _, err := svc.Login("new_user", "Passw0rdX", false); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected email not verified got %v", err)
	}

	verified, err := svc.VerifyEmail(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verified.EmailVerified || verified.VerifyToken != nil || verified.EmailVerifiedAt == nil {
		t.Fatalf("unexpected verified user %+v", verified)
	}
	if verified.Exp != 50 {
		t.Fatalf("expected verification award 50 got %d", verified.Exp)
	}
	if _, err := svc.VerifyEmail(token); !errors.Is(err, ErrInvalidVerifyToken) {
		t.Fatalf("token must be single-use, got %v", err)
	}
	if got := reloadUserExp(t, db, user.ID); got != 50 {
		t.Fatalf("second redemption must not award again, got %d", got)
	}

	if _, _, _, err := svc.Login("new_user", "wrong", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials got %v", err)
	}
	logged, jwtToken, expiresAt, err := svc.Login("NEW@example.com", "Passw0rdX", true)
	if err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
	if logged.ID != user.ID || logged.LastLoginAt == nil {
		t.Fatalf("unexpected logged user %+v", logged)
	}
	if time.Until(expiresAt) < 70*time.Hour {
		t.Fatalf("remember me must extend expiry, got %v", expiresAt)
	}
	claims, err := svc.ParseUserJWT(jwtToken)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "new_user" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserAuthServiceForTest(db)
	createServiceTestUser(t, db, "taken", 0)

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"duplicate username", RegisterInput{Username: "TAKEN", Email: "a@example.com", Password: "Passw0rdX"}, ErrUsernameExists},
		{"duplicate email", RegisterInput{Username: "fresh", Email: "taken@example.com", Password: "Passw0rdX"}, ErrEmailExists},
		{"short username", RegisterInput{Username: "ab", Email: "b@example.com", Password: "Passw0rdX"}, ErrValidation},
		{"bad username chars", RegisterInput{Username: "bad-name", Email: "c@example.com", Password: "Passw0rdX"}, ErrValidation},
		{"bad email", RegisterInput{Username: "mailless", Email: "nope", Password: "Passw0rdX"}, ErrValidation},
		{"weak password", RegisterInput{Username: "weakling", Email: "d@example.com", Password: "short"}, ErrWeakPassword},
		{"password echoes username", RegisterInput{Username: "charlie", Email: "e@example.com", Password: "xCharlie99"}, ErrWeakPassword},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserAuthServiceForTest(db)
	user, token, err := svc.Register(RegisterInput{Username: "banned", Email: "banned@example.com", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.VerifyEmail(token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.UpdateUserStatus([]uint{user.ID}, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if _, _, _, err := svc.Login("banned", "Passw0rdX", false); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected user disabled got %v", err)
	}
	if err := svc.UpdateUserStatus([]uint{user.ID}, "frozen"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected status validation got %v", err)
	}
}

func TestUpdateProfileSanitizesAndPublicProfile(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserAuthServiceForTest(db)
	user := createServiceTestUser(t, db, "profiler", 120)

	if _, err := svc.UpdateProfile(user.ID, UpdateProfileInput{}); !errors.Is(err, ErrProfileEmpty) {
		t.Fatalf("expected empty profile error got %v", err)
	}
	name := " <b>Pro</b> Filer "
	bio := `<p>Hi</p><script>steal()</script><a href="https://example.com">site</a>`
	locale := "zh-cn"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{DisplayName: &name, Bio: &bio, Locale: &locale})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != "Pro Filer" {
		t.Fatalf("unexpected display name %q", updated.DisplayName)
	}
	if updated.Locale != constants.LocaleZhCN {
		t.Fatalf("unexpected locale %q", updated.Locale)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.Bio != updated.Bio || stored.Bio == bio {
		t.Fatalf("bio must be sanitized and persisted, got %q", stored.Bio)
	}

	profile, err := svc.GetPublicProfile("PROFILER")
	if err != nil {
		t.Fatalf("public profile failed: %v", err)
	}
	if profile.Progress.Level.Name != "Member" || profile.Progress.ExpToNext != 380 {
		t.Fatalf("unexpected progress %+v", profile.Progress)
	}
	if _, err := svc.GetPublicProfile("ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found got %v", err)
	}
}

func TestChangePasswordRotatesTokenVersion(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newUserAuthServiceForTest(db)
	user, token, err := svc.Register(RegisterInput{Username: "rotator", Email: "rotator@example.com", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.VerifyEmail(token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.ChangePassword(user.ID, "wrong", "Newpass123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Passw0rdX", "Newpass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	reloaded, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.TokenVersion != 1 || reloaded.TokenInvalidBefore == nil {
		t.Fatalf("expected token version bump got %+v", reloaded)
	}
	if _, _, _, err := svc.Login("rotator", "Newpass123", false); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
