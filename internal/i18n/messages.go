package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":             "Invalid request",
		"error.unauthorized":            "Please sign in",
		"error.forbidden":               "Access denied",
		"error.not_found":               "Resource not found",
		"error.internal":                "Internal server error",
		"error.too_many_requests":       "Too many requests, try again later",
		"error.rate_limit_unavailable":  "Rate limiter unavailable",
		"error.rate_limited":            "Too many requests, retry in %d seconds",
		"error.login_too_many":          "Too many login attempts, retry in %d seconds",
		"error.vote_too_many":           "Voting too fast, retry in %d seconds",
		"error.auth_header_missing":     "Missing authorization header",
		"error.auth_header_invalid":     "Malformed authorization header",
		"error.token_invalid":           "Token is invalid or expired",
		"error.token_revoked":           "Token has been revoked",
		"error.jwt_secret_missing":      "JWT secret is not configured",
		"error.invalid_credentials":     "Incorrect username or password",
		"error.invalid_password":        "Current password is incorrect",
		"error.user_disabled":           "Account is disabled",
		"error.email_not_verified":      "Email address is not verified",
		"error.permission_denied":       "You do not have permission for this action",
		"error.validation_failed":       "Validation failed",
		"error.password_min_length":     "Password must be at least %d characters",
		"error.password_max_length":     "Password must be at most %d bytes",
		"error.password_contains_identity": "Password must not contain your username or email",
		"error.password_require_upper":  "Password must contain an uppercase letter",
		"error.password_require_lower":  "Password must contain a lowercase letter",
		"error.password_require_number": "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.username_exists":         "Username is already taken",
		"error.email_exists":            "Email is already registered",
		"error.email_invalid":           "Email address is invalid",
		"error.verify_token_invalid":    "Verification link is invalid or already used",
		"error.profile_empty":           "Nothing to update",
		"error.user_not_found":          "User not found",
		"error.captcha_required":        "Captcha is required",
		"error.captcha_invalid":         "Captcha is incorrect",
		"error.captcha_config_invalid":  "Captcha is misconfigured",
		"error.category_not_found":      "Category not found",
		"error.category_name_exists":    "Category name already exists",
		"error.slug_exists":             "Category slug already exists",
		"error.category_not_active":     "Category is not open for posting",
		"error.insufficient_experience": "Not enough experience for this action",
		"error.kyc_required":            "Identity verification is required",
		"error.submission_not_found":    "Submission not found",
		"error.duplicate_submission":    "You already have a submission under review",
		"error.invalid_transition":      "Submission has already been decided",
		"error.kyc_draft_not_found":     "Verification draft not found or expired",
		"error.cache_unavailable":       "Cache service unavailable",
		"error.post_not_found":          "Post not found",
		"error.comment_not_found":       "Comment not found",
		"error.vote_target_not_found":   "Vote target not found",
		"error.self_vote":               "You cannot vote on your own content",
		"error.invalid_vote_direction":  "Vote direction must be up or down",
		"error.invalid_target_kind":     "Vote target must be a post or comment",
		"error.invalid_content_status":  "Unsupported content status",
		"error.setting_key_invalid":     "Unsupported setting key",
		"error.invalid_action":          "Unknown experience action",
		"error.save_failed":             "Failed to save",
		"message.register_success":      "Registration succeeded, please verify your email",
		"message.email_verified":        "Email verified",
		"message.logout_success":        "Signed out",
	},
	LocaleZH: {
		"error.bad_request":             "请求参数错误",
		"error.unauthorized":            "请先登录",
		"error.forbidden":               "无权访问",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器内部错误",
		"error.too_many_requests":       "请求过于频繁，请稍后再试",
		"error.rate_limit_unavailable":  "限流服务不可用",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后重试",
		"error.login_too_many":          "登录尝试过多，请 %d 秒后重试",
		"error.vote_too_many":           "投票过快，请 %d 秒后重试",
		"error.auth_header_missing":     "缺少认证信息",
		"error.auth_header_invalid":     "认证信息格式错误",
		"error.token_invalid":           "令牌无效或已过期",
		"error.token_revoked":           "令牌已失效",
		"error.jwt_secret_missing":      "未配置 JWT 密钥",
		"error.invalid_credentials":     "用户名或密码错误",
		"error.invalid_password":        "原密码错误",
		"error.user_disabled":           "账号已被禁用",
		"error.email_not_verified":      "邮箱尚未验证",
		"error.permission_denied":       "没有执行该操作的权限",
		"error.validation_failed":       "参数校验失败",
		"error.password_min_length":     "密码长度不能少于 %d 位",
		"error.password_max_length":     "密码长度不能超过 %d 字节",
		"error.password_contains_identity": "密码不能包含用户名或邮箱",
		"error.password_require_upper":  "密码必须包含大写字母",
		"error.password_require_lower":  "密码必须包含小写字母",
		"error.password_require_number": "密码必须包含数字",
		"error.password_require_special": "密码必须包含特殊字符",
		"error.username_exists":         "用户名已被占用",
		"error.email_exists":            "邮箱已被注册",
		"error.email_invalid":           "邮箱格式错误",
		"error.verify_token_invalid":    "验证链接无效或已使用",
		"error.profile_empty":           "没有需要更新的内容",
		"error.user_not_found":          "用户不存在",
		"error.captcha_required":        "请输入验证码",
		"error.captcha_invalid":         "验证码错误",
		"error.captcha_config_invalid":  "验证码配置错误",
		"error.category_not_found":      "分类不存在",
		"error.category_name_exists":    "分类名称已存在",
		"error.slug_exists":             "分类标识已存在",
		"error.category_not_active":     "分类未开放发帖",
		"error.insufficient_experience": "经验值不足",
		"error.kyc_required":            "需要完成实名认证",
		"error.submission_not_found":    "申请不存在",
		"error.duplicate_submission":    "已有审核中的申请",
		"error.invalid_transition":      "申请已处理",
		"error.kyc_draft_not_found":     "认证草稿不存在或已过期",
		"error.cache_unavailable":       "缓存服务不可用",
		"error.post_not_found":          "帖子不存在",
		"error.comment_not_found":       "评论不存在",
		"error.vote_target_not_found":   "投票对象不存在",
		"error.self_vote":               "不能给自己的内容投票",
		"error.invalid_vote_direction":  "投票方向错误",
		"error.invalid_target_kind":     "投票对象类型错误",
		"error.invalid_content_status":  "内容状态不支持",
		"error.setting_key_invalid":     "不支持的配置项",
		"error.invalid_action":          "未知的经验行为",
		"error.save_failed":             "保存失败",
		"message.register_success":      "注册成功，请验证邮箱",
		"message.email_verified":        "邮箱验证成功",
		"message.logout_success":        "已退出登录",
	},
	LocaleTW: {
		"error.bad_request":             "請求參數錯誤",
		"error.unauthorized":            "請先登入",
		"error.forbidden":               "無權存取",
		"error.not_found":               "資源不存在",
		"error.internal":                "伺服器內部錯誤",
		"error.too_many_requests":       "請求過於頻繁，請稍後再試",
		"error.invalid_credentials":     "使用者名稱或密碼錯誤",
		"error.user_disabled":           "帳號已被停用",
		"error.email_not_verified":      "電子郵件尚未驗證",
		"error.validation_failed":       "參數驗證失敗",
		"error.password_min_length":     "密碼長度不能少於 %d 位",
		"error.username_exists":         "使用者名稱已被使用",
		"error.email_exists":            "電子郵件已被註冊",
		"error.captcha_invalid":         "驗證碼錯誤",
		"error.category_not_found":      "分類不存在",
		"error.insufficient_experience": "經驗值不足",
		"error.kyc_required":            "需要完成實名認證",
		"error.duplicate_submission":    "已有審核中的申請",
		"error.post_not_found":          "文章不存在",
		"error.self_vote":               "不能為自己的內容投票",
		"message.register_success":      "註冊成功，請驗證電子郵件",
		"message.email_verified":        "電子郵件驗證成功",
	},
}
