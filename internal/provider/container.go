package provider

import (
	"time"

	"github.com/furom/internal/authz"
	"github.com/furom/internal/cache"
	"github.com/furom/internal/config"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/models"
	"github.com/furom/internal/queue"
	"github.com/furom/internal/repository"
	"github.com/furom/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	ExpLogRepo        repository.ExpLogRepository
	CategoryRepo      repository.CategoryRepository
	KYCRepo           repository.KYCRepository
	PostRepo          repository.PostRepository
	CommentRepo       repository.CommentRepository
	VoteRepo          repository.VoteRepository
	NotificationRepo  repository.NotificationRepository
	ModerationLogRepo repository.ModerationLogRepository
	SettingRepo       repository.SettingRepository
	UserLoginLogRepo  repository.UserLoginLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	CaptchaService      *service.CaptchaService
	SettingService      *service.SettingService
	Ledger              *service.ReputationLedger
	AwardPolicy         *service.AwardPolicy
	IdentityResolver    *service.SystemIdentityResolver
	NotificationService *service.NotificationService
	CategoryService     *service.CategoryService
	KYCService          *service.KYCService
	PostService         *service.PostService
	CommentService      *service.CommentService
	VoteService         *service.VoteService
	LeaderboardService  *service.LeaderboardService
	UserLoginLogService *service.UserLoginLogService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ExpLogRepo = repository.NewExpLogRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.KYCRepo = repository.NewKYCRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.CommentRepo = repository.NewCommentRepository(db)
	c.VoteRepo = repository.NewVoteRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.ModerationLogRepo = repository.NewModerationLogRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	levels, err := service.NewLevelTable(c.Config.Reputation.Levels)
	if err != nil {
		logger.Errorw("provider_init_level_table_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.Ledger = service.NewReputationLedger(c.UserRepo, c.ExpLogRepo, levels)
	c.AwardPolicy = service.NewAwardPolicy(c.Ledger, c.Config.Reputation.Awards)
	c.IdentityResolver = service.NewSystemIdentityResolver(c.AdminRepo, c.Config.Reputation.SystemApprover)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, levels, c.AwardPolicy)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.UserRepo, c.ModerationLogRepo, c.SettingService, c.IdentityResolver, c.AwardPolicy, c.NotificationService)
	c.KYCService = service.NewKYCService(c.KYCRepo, c.UserRepo, c.ModerationLogRepo, c.SettingService, c.IdentityResolver, c.NotificationService, time.Duration(c.Config.KYC.DraftTTLMinutes)*time.Minute)
	c.PostService = service.NewPostService(c.PostRepo, c.CategoryRepo, c.UserRepo, c.ModerationLogRepo, c.AwardPolicy)
	c.CommentService = service.NewCommentService(c.CommentRepo, c.PostRepo, c.UserRepo, c.ModerationLogRepo, c.AwardPolicy)
	c.VoteService = service.NewVoteService(c.VoteRepo, c.Ledger, c.AwardPolicy)
	c.LeaderboardService = service.NewLeaderboardService(c.UserRepo, levels, c.Config.Reputation.LeaderboardSize, time.Duration(c.Config.Reputation.LeaderboardTTLSeconds)*time.Second)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)
}

// Close 释放队列与缓存连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			firstErr = err
		}
	}
	if err := cache.Reset(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
