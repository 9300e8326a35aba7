package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/furom/internal/cache"
	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/models"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/sanitize"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	profileDisplayNameMaxRunes = 64
	profileBioMaxRunes         = 2000
	profileAvatarMaxRunes      = 500
)

// UserAuthService 用户认证与资料服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	levels   *LevelTable
	awards   *AwardPolicy
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, levels *LevelTable, awards *AwardPolicy) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		levels:   levels,
		awards:   awards,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput 资料更新输入，nil 表示不修改
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	Avatar      *string
	Locale      *string
}

// PublicProfile 公开资料
type PublicProfile struct {
	ID          uint             `json:"id"`
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	Bio         string           `json:"bio"`
	Avatar      string           `json:"avatar"`
	KYCStatus   models.KYCStatus `json:"kyc_status"`
	Progress    LevelProgress    `json:"progress"`
	CreatedAt   time.Time        `json:"created_at"`
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg.UserJWT)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(resolvedHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Register 注册新用户（未验证状态），返回一次性验证令牌
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateInput(input); err != nil {
		return nil, "", err
	}
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password, input.Username, input.Email); err != nil {
		return nil, "", err
	}

	count, err := s.userRepo.CountByUsername(input.Username)
	if err != nil {
		return nil, "", storageError("count username", err)
	}
	if count > 0 {
		return nil, "", ErrUsernameExists
	}
	count, err = s.userRepo.CountByEmail(normalized)
	if err != nil {
		return nil, "", storageError("count email", err)
	}
	if count > 0 {
		return nil, "", ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	verifyToken := strings.ReplaceAll(uuid.NewString(), "-", "")
	now := time.Now()
	user := &models.User{
		Username:     input.Username,
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		DisplayName:  input.Username,
		Locale:       constants.LocaleEnUS,
		VerifyToken:  &verifyToken,
		KYCStatus:    models.KYCStatusNotSubmitted,
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrUsernameExists
		}
		return nil, "", storageError("create user", err)
	}

	logger.Infow("user_registered", "user_id", user.ID, "username", user.Username)
	return user, verifyToken, nil
}

// VerifyEmail 兑换验证令牌并发放验证奖励，二者在同一事务内完成
func (s *UserAuthService) VerifyEmail(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidVerifyToken
	}

	var verified *models.User
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.WithTx(tx).ConsumeVerifyToken(token)
		if err != nil {
			return storageError("consume verify token", err)
		}
		if user == nil {
			return ErrInvalidVerifyToken
		}
		if s.awards != nil {
			if _, err := s.awards.AwardTx(tx, user.ID, constants.ExpActionEmailVerified); err != nil {
				return err
			}
		}
		verified = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("user_email_verified", "user_id", verified.ID)
	return s.userRepo.GetByID(verified.ID)
}

// Login 用户名或邮箱登录
func (s *UserAuthService) Login(login, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByLogin(login)
	if err != nil {
		return nil, "", time.Time{}, storageError("get user by login", err)
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if !user.EmailVerified {
		return nil, "", time.Time{}, ErrEmailNotVerified
	}

	expireHours := resolveUserJWTExpireHours(s.cfg.UserJWT)
	if rememberMe {
		expireHours = resolveRememberMeExpireHours(s.cfg.UserJWT)
	}
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return nil, "", time.Time{}, storageError("update last login", err)
	}
	if err := cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_failed", "user_id", user.ID, "error", err)
	}
	return user, token, expiresAt, nil
}

// ChangePassword 登录态修改密码，旧 Token 全部失效
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return storageError("get user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword, user.Username, user.Email); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	user.PasswordHash = string(hashedPassword)
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return storageError("update user", err)
	}
	if err := cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// UpdateProfile 更新个人资料，简介经过富文本清洗
func (s *UserAuthService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	updates := map[string]interface{}{}
	if input.DisplayName != nil {
		name := truncateRunes(sanitize.PlainText(*input.DisplayName), profileDisplayNameMaxRunes)
		if name != "" {
			updates["display_name"] = name
			user.DisplayName = name
		}
	}
	if input.Bio != nil {
		bio := sanitize.RichText(*input.Bio)
		if len([]rune(bio)) > profileBioMaxRunes {
			return nil, newFieldError("bio", "max", "must be at most 2000 characters")
		}
		updates["bio"] = bio
		user.Bio = bio
	}
	if input.Avatar != nil {
		avatar := strings.TrimSpace(*input.Avatar)
		if len([]rune(avatar)) > profileAvatarMaxRunes {
			return nil, newFieldError("avatar", "max", "must be at most 500 characters")
		}
		updates["avatar"] = avatar
		user.Avatar = avatar
	}
	if input.Locale != nil {
		if locale := resolveSupportedLocale(*input.Locale); locale != "" {
			updates["locale"] = locale
			user.Locale = locale
		}
	}
	if len(updates) == 0 {
		return nil, ErrProfileEmpty
	}

	now := time.Now()
	updates["updated_at"] = now
	if err := s.userRepo.UpdateFields(user.ID, updates); err != nil {
		return nil, storageError("update profile", err)
	}
	user.UpdatedAt = now
	return user, nil
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, storageError("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetPublicProfile 按用户名获取公开资料（含等级进度）
func (s *UserAuthService) GetPublicProfile(username string) (*PublicProfile, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, storageError("get user by username", err)
	}
	if user == nil || user.Status != constants.UserStatusActive {
		return nil, ErrUserNotFound
	}
	return &PublicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		Avatar:      user.Avatar,
		KYCStatus:   user.KYCStatus,
		Progress:    s.levels.Progress(user.Exp),
		CreatedAt:   user.CreatedAt,
	}, nil
}

// ListUsers 管理端用户列表
func (s *UserAuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, storageError("list users", err)
	}
	return users, total, nil
}

// UpdateUserStatus 管理端批量启用/禁用用户，禁用时同步失效登录态
func (s *UserAuthService) UpdateUserStatus(userIDs []uint, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return newFieldError("status", "oneof", "must be one of [active disabled]")
	}
	if len(userIDs) == 0 {
		return nil
	}
	if err := s.userRepo.BatchUpdateStatus(userIDs, status); err != nil {
		return storageError("batch update user status", err)
	}
	for _, id := range userIDs {
		if err := cache.DelUserAuthState(context.Background(), id); err != nil {
			logger.Warnw("user_auth_state_cache_delete_failed", "user_id", id, "error", err)
		}
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveSupportedLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(supported, locale) {
			return supported
		}
	}
	return ""
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRememberMeExpireHours(cfg config.JWTConfig) int {
	if cfg.RememberMeExpireHours <= 0 {
		return resolveUserJWTExpireHours(cfg)
	}
	return cfg.RememberMeExpireHours
}
