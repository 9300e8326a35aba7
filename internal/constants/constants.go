package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 经验值动作常量（同时作为经验流水的 reason）
const (
	ExpActionPostCreated          = "post_created"
	ExpActionCommentCreated       = "comment_created"
	ExpActionUpvoteReceived       = "upvote_received"
	ExpActionDownvoteReceived     = "downvote_received"
	ExpActionEmailVerified        = "email_verified"
	ExpActionCategoryAutoApproved = "category_auto_approved"
	ExpReasonAdminAdjust          = "admin_adjust"
	ExpReasonVoteRetracted        = "vote_retracted"
	ExpReasonVoteChanged          = "vote_changed"
)

// 投票目标常量
const (
	VoteTargetPost    = "post"
	VoteTargetComment = "comment"
)

// 投票方向常量
const (
	VoteDirectionUp   = "up"
	VoteDirectionDown = "down"
)

// 内容状态常量
const (
	ContentStatusActive  = "active"
	ContentStatusRemoved = "removed"
)

// 帖子排序常量
const (
	PostSortLatest   = "latest"
	PostSortTop      = "top"
	PostSortTrending = "trending"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 站内通知类型常量
const (
	NotificationKindCategoryApproved = "category_approved"
	NotificationKindCategoryRejected = "category_rejected"
	NotificationKindKYCApproved      = "kyc_approved"
	NotificationKindKYCRejected      = "kyc_rejected"
	NotificationKindEmailVerify      = "email_verify"
)

// 通知关联对象类型常量
const (
	NotificationRelatedCategory = "category"
	NotificationRelatedKYC      = "kyc_submission"
	NotificationRelatedUser     = "user"
)

// 队列常量
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskNotificationDispatch = "notification:dispatch"
	TaskAdminNoticeDispatch  = "notification:admin_notice"
	TaskLeaderboardRefresh   = "leaderboard:refresh"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault   = "furom"
	CacheKeyPublicConfig = "public:config"
)

// 设置键常量
const (
	SettingKeySiteConfig                      = "site_config"
	SettingKeyModerationConfig                = "moderation_config"
	SettingKeyCaptchaConfig                   = "captcha_config"
	SettingFieldKYCRequiredForCategories      = "kyc_required_for_categories"
	SettingFieldKYCAutoApprovalThreshold      = "kyc_auto_approval_threshold"
	SettingFieldCategoryAutoApprovalThreshold = "category_auto_approval_threshold"
	SettingFieldCategoryMinExp                = "category_min_exp"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonEmailNotVerified   = "email_not_verified"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 审核日志动作常量
const (
	ModerationActionApprove     = "approve"
	ModerationActionReject      = "reject"
	ModerationActionAutoApprove = "auto_approve"
	ModerationActionRemove      = "remove"
	ModerationActionRestore     = "restore"
)
