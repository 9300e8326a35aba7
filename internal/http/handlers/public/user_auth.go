package public

import (
	"errors"
	"strings"

	"github.com/furom/internal/constants"
	handlershared "github.com/furom/internal/http/handlers/shared"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/i18n"
	"github.com/furom/internal/models"
	"github.com/furom/internal/service"

	"github.com/gin-gonic/gin"
)

var userAuthErrorRules = handlershared.ConcatMappedErrors(
	handlershared.CaptchaErrorRules,
	[]handlershared.MappedError{
		{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
		{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.invalid_password"},
		{Target: service.ErrInvalidVerifyToken, Code: response.CodeBadRequest, Key: "error.verify_token_invalid"},
	},
	handlershared.ForumErrorRules,
)

func respondUserAuthError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondMappedError(c, err, userAuthErrorRules, response.CodeInternal, fallbackKey)
}

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Username       string                              `json:"username" binding:"required"`
	Email          string                              `json:"email" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserRegister 用户注册；验证令牌通过日志与调试模式响应下发
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneRegister, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondUserAuthError(c, err, "error.internal")
		return
	}

	user, verifyToken, err := h.UserAuthService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUserAuthError(c, err, "error.internal")
		return
	}

	handlershared.RequestLog(c).Infow("user_registered",
		"user_id", user.ID,
		"username", user.Username,
		"verify_token", verifyToken,
	)
	data := gin.H{"user": userSummary(user)}
	if gin.Mode() == gin.DebugMode {
		data["verify_token"] = verifyToken
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.register_success"), data)
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmail 兑换一次性邮箱验证令牌
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.VerifyEmail(strings.TrimSpace(req.Token))
	if err != nil {
		respondUserAuthError(c, err, "error.internal")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.email_verified"), gin.H{"user": userSummary(user)})
}

// UserLoginRequest 登录请求，login 可为用户名或邮箱
type UserLoginRequest struct {
	Login          string                              `json:"login" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	RememberMe     bool                                `json:"remember_me"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload()); err != nil {
		h.recordUserLogin(c, req.Login, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonCaptchaInvalid)
		respondUserAuthError(c, err, "error.internal")
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Login, req.Password, req.RememberMe)
	if err != nil {
		h.recordUserLogin(c, req.Login, 0, constants.LoginLogStatusFailed, loginFailReason(err))
		respondUserAuthError(c, err, "error.internal")
		return
	}

	h.recordUserLogin(c, req.Login, user.ID, constants.LoginLogStatusSuccess, "")
	response.Success(c, gin.H{
		"user":       userSummary(user),
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func loginFailReason(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return constants.LoginLogFailReasonInvalidCredentials
	case errors.Is(err, service.ErrEmailNotVerified):
		return constants.LoginLogFailReasonEmailNotVerified
	case errors.Is(err, service.ErrUserDisabled):
		return constants.LoginLogFailReasonUserDisabled
	default:
		return constants.LoginLogFailReasonInternalError
	}
}

func (h *Handler) recordUserLogin(c *gin.Context, login string, userID uint, status, failReason string) {
	if h == nil || h.UserLoginLogService == nil {
		return
	}
	if err := h.UserLoginLogService.Record(service.RecordUserLoginInput{
		UserID:     userID,
		Login:      login,
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		RequestID:  requestID(c),
	}); err != nil {
		handlershared.RequestLog(c).Warnw("user_login_log_record_failed", "error", err)
	}
}

func userSummary(user *models.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"username":       user.Username,
		"email":          user.Email,
		"display_name":   user.DisplayName,
		"email_verified": user.EmailVerified,
		"kyc_status":     user.KYCStatus,
		"exp":            user.Exp,
	}
}

// GetCurrentUser 获取当前用户资料与等级进度
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		respondUserAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"id":                user.ID,
		"username":          user.Username,
		"email":             user.Email,
		"display_name":      user.DisplayName,
		"bio":               user.Bio,
		"avatar":            user.Avatar,
		"locale":            user.Locale,
		"email_verified_at": user.EmailVerifiedAt,
		"kyc_status":        user.KYCStatus,
		"progress":          h.Ledger.Levels().Progress(user.Exp),
		"created_at":        user.CreatedAt,
	})
}

// UserProfileUpdateRequest 更新资料请求
type UserProfileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Avatar      *string `json:"avatar"`
	Locale      *string `json:"locale"`
}

// UpdateUserProfile 更新用户资料
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UserProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(uid, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		Locale:      req.Locale,
	})
	if err != nil {
		respondUserAuthError(c, err, "error.save_failed")
		return
	}
	response.Success(c, userSummary(user))
}

// ChangeUserPasswordRequest 用户改密请求
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword 用户登录态修改密码，旧令牌随之失效
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangeUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		respondUserAuthError(c, err, "error.save_failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// GetPublicProfile 查看用户公开主页
func (h *Handler) GetPublicProfile(c *gin.Context) {
	profile, err := h.UserAuthService.GetPublicProfile(c.Param("username"))
	if err != nil {
		respondUserAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, profile)
}
