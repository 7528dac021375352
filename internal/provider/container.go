package provider

import (
	"github.com/linkmall/internal/authz"
	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/queue"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo           repository.AdminRepository
	UserRepo            repository.UserRepository
	EmailVerifyCodeRepo repository.EmailVerifyCodeRepository
	OrderRepo           repository.OrderRepository
	ProductRepo         repository.ProductRepository
	CartRepo            repository.CartRepository
	CategoryRepo        repository.CategoryRepository
	PartnerRepo         repository.PartnerRepository
	CommissionRepo      repository.CommissionRepository
	SellerRepo          repository.SellerRepository
	ApprovalLogRepo     repository.ApprovalLogRepository
	SettingRepo         repository.SettingRepository
	UserLoginLogRepo    repository.UserLoginLogRepository
	AuthzAuditLogRepo   repository.AuthzAuditLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	UploadService       *service.UploadService
	ProductService      *service.ProductService
	CategoryService     *service.CategoryService
	SettingService      *service.SettingService
	CartService         *service.CartService
	OrderService        *service.OrderService
	PartnerService      *service.PartnerService
	CommissionService   *service.CommissionService
	SellerService       *service.SellerService
	ApprovalLogService  *service.ApprovalLogService
	UserLoginLogService *service.UserLoginLogService
	AuthzAuditService   *service.AuthzAuditService
}

// NewContainer 按 缓存 -> 队列 -> 仓储 -> 服务 的顺序完成装配
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: buildQueueClient(cfg),
	}
	c.wireRepositories(models.DB)
	c.wireServices()
	return c
}

// buildQueueClient 队列是可选依赖，连不上时降级为 nil 走同步路径
func buildQueueClient(cfg *config.Config) *queue.Client {
	if !cfg.Queue.Enabled {
		return nil
	}
	client, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		return nil
	}
	return client
}

func (c *Container) wireRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.EmailVerifyCodeRepo = repository.NewEmailVerifyCodeRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.PartnerRepo = repository.NewPartnerRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.SellerRepo = repository.NewSellerRepository(db)
	c.ApprovalLogRepo = repository.NewApprovalLogRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

// wireServices 授权和设置服务先起，其余服务依赖落库的运行时设置
func (c *Container) wireServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.applyStoredSettings()

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.EmailVerifyCodeRepo, c.EmailService)
	c.UploadService = service.NewUploadService(c.Config)
	c.ProductService = service.NewProductService(c.ProductRepo, c.SellerRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.PartnerRepo, c.OrderRepo, c.ProductRepo, c.SellerRepo, c.SettingService)
	c.PartnerService = service.NewPartnerService(c.PartnerRepo, c.CommissionRepo, c.UserRepo, c.ApprovalLogRepo, c.SettingService)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartRepo, c.PartnerService, c.CommissionService, c.QueueClient, c.SettingService)
	c.SellerService = service.NewSellerService(c.SellerRepo, c.UserRepo, c.ApprovalLogRepo)
	c.ApprovalLogService = service.NewApprovalLogService(c.ApprovalLogRepo)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}

// applyStoredSettings 数据库里的 SMTP 和验证码设置优先于配置文件
func (c *Container) applyStoredSettings() {
	if smtpSetting, err := c.SettingService.GetSMTPSetting(c.Config.Email); err != nil {
		logger.Warnw("provider_load_smtp_setting_failed", "error", err)
	} else {
		c.Config.Email = service.SMTPSettingToConfig(smtpSetting)
	}

	if captchaSetting, err := c.SettingService.GetCaptchaSetting(c.Config.Captcha); err != nil {
		logger.Warnw("provider_load_captcha_setting_failed", "error", err)
	} else {
		c.Config.Captcha = service.CaptchaSettingToConfig(captchaSetting)
	}
}
