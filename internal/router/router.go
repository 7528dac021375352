package router

import (
	"sort"
	"strings"

	"github.com/linkmall/internal/authz"
	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	adminhandlers "github.com/linkmall/internal/http/handlers/admin"
	publichandlers "github.com/linkmall/internal/http/handlers/public"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/provider"

	"github.com/gin-gonic/gin"
)

// loginRateRule 登录限流规则，前台与后台共用同一组阈值
func loginRateRule(cfg *config.Config, scope string) RateLimitRule {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	return RateLimitRule{
		Prefix:        prefix + ":rate:" + scope,
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
}

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(AttributionMiddleware())

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 上传图片静态服务
	r.Static("/uploads", "./uploads")

	// 推荐短链，落 Cookie 后跳转站内页面
	r.GET("/r/:code", publicHandler.ReferralRedirect)

	apiV1 := r.Group("/api/v1")
	registerPublicRoutes(apiV1, cfg, publicHandler)
	registerUserRoutes(apiV1, cfg, c, publicHandler)
	registerAdminRoutes(r, apiV1, cfg, c, adminHandler)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func registerPublicRoutes(apiV1 *gin.RouterGroup, cfg *config.Config, h *publichandlers.Handler) {
	public := apiV1.Group("/public")
	{
		public.GET("/config", h.GetConfig)
		public.GET("/products", h.GetProducts)
		public.GET("/products/:slug", h.GetProductBySlug)
		public.GET("/categories", h.GetCategories)
		public.GET("/captcha/image", h.GetImageCaptcha)
		public.POST("/partner/clicks", h.TrackPartnerClick)
	}

	auth := apiV1.Group("/auth")
	{
		auth.POST("/send-verify-code", h.SendUserVerifyCode)
		auth.POST("/register", h.UserRegister)
		auth.POST("/login",
			RateLimitMiddleware(cache.Client(), loginRateRule(cfg, "login"), KeyByIPAndJSONField("email")),
			h.UserLogin)
		auth.POST("/forgot-password", h.UserForgotPassword)
	}
}

func registerUserRoutes(apiV1 *gin.RouterGroup, cfg *config.Config, c *provider.Container, h *publichandlers.Handler) {
	user := apiV1.Group("")
	user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	{
		user.GET("/me", h.GetCurrentUser)
		user.GET("/me/login-logs", h.GetMyLoginLogs)
		user.PUT("/me/profile", h.UpdateUserProfile)
		user.PUT("/me/password", h.ChangeUserPassword)
		user.POST("/me/email/send-verify-code", h.SendChangeEmailCode)
		user.POST("/me/email/change", h.ChangeEmail)

		user.GET("/cart", h.GetCart)
		user.POST("/cart/items", h.UpsertCartItem)
		user.DELETE("/cart/items/:product_id", h.DeleteCartItem)
		user.DELETE("/cart", h.ClearCart)

		user.POST("/orders", h.CreateOrder)
		user.POST("/orders/preview", h.PreviewOrder)
		user.GET("/orders", h.ListOrders)
		user.GET("/orders/:id", h.GetOrder)
		user.GET("/orders/by-order-no/:order_no", h.GetOrderByOrderNo)
		user.POST("/orders/:id/cancel", h.CancelOrder)
		user.POST("/orders/:id/refund", h.RefundOrder)

		user.POST("/partner/signup", h.SignupPartner)
		user.GET("/partner/dashboard", h.GetPartnerDashboard)
		user.GET("/partner/commissions", h.ListPartnerCommissions)
	}
}

func registerAdminRoutes(engine *gin.Engine, apiV1 *gin.RouterGroup, cfg *config.Config, c *provider.Container, h *adminhandlers.Handler) {
	admin := apiV1.Group("/admin")

	admin.POST("/login",
		RateLimitMiddleware(cache.Client(), loginRateRule(cfg, "admin_login"), KeyByIP),
		h.AdminLogin)

	authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
	{
		// 商品与分类
		authorized.GET("/products", h.GetAdminProducts)
		authorized.GET("/products/:id", h.GetAdminProduct)
		authorized.POST("/products", h.CreateProduct)
		authorized.PUT("/products/:id", h.UpdateProduct)
		authorized.DELETE("/products/:id", h.DeleteProduct)
		authorized.GET("/categories", h.GetAdminCategories)
		authorized.POST("/categories", h.CreateCategory)
		authorized.PUT("/categories/:id", h.UpdateCategory)
		authorized.DELETE("/categories/:id", h.DeleteCategory)

		// 设置
		authorized.GET("/settings", h.GetSettings)
		authorized.PUT("/settings", h.UpdateSettings)
		authorized.GET("/settings/smtp", h.GetSMTPSettings)
		authorized.PUT("/settings/smtp", h.UpdateSMTPSettings)
		authorized.POST("/settings/smtp/test", h.TestSMTPSettings)
		authorized.GET("/settings/captcha", h.GetCaptchaSettings)
		authorized.PUT("/settings/captcha", h.UpdateCaptchaSettings)
		authorized.GET("/settings/commission", h.AdminGetCommissionSettings)
		authorized.PUT("/settings/commission", h.AdminUpdateCommissionSettings)
		authorized.PUT("/password", h.UpdateAdminPassword)

		// 权限
		authorized.GET("/authz/me", h.GetAuthzMe)
		authorized.GET("/authz/roles", h.ListAuthzRoles)
		authorized.GET("/authz/admins", h.ListAuthzAdmins)
		authorized.GET("/authz/audit-logs", h.ListAuthzAuditLogs)
		authorized.POST("/authz/admins", h.CreateAuthzAdmin)
		authorized.PUT("/authz/admins/:id", h.UpdateAuthzAdmin)
		authorized.DELETE("/authz/admins/:id", h.DeleteAuthzAdmin)
		authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
			response.Success(ctx, buildAdminPermissionCatalog(engine))
		})
		authorized.POST("/authz/roles", h.CreateAuthzRole)
		authorized.DELETE("/authz/roles/:role", h.DeleteAuthzRole)
		authorized.GET("/authz/roles/:role/policies", h.GetAuthzRolePolicies)
		authorized.POST("/authz/policies", h.GrantAuthzPolicy)
		authorized.DELETE("/authz/policies", h.RevokeAuthzPolicy)
		authorized.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
		authorized.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)

		// 上传
		authorized.POST("/upload", h.UploadFile)

		// 订单
		authorized.GET("/orders", h.AdminListOrders)
		authorized.GET("/orders/:id", h.AdminGetOrder)
		authorized.PATCH("/orders/:id", h.AdminUpdateOrderStatus)
		authorized.POST("/orders/:id/mark-paid", h.AdminMarkOrderPaid)

		// 合伙人
		authorized.GET("/partners", h.AdminListPartners)
		authorized.GET("/partners/:id", h.AdminGetPartner)
		authorized.POST("/partners/:id/review", h.AdminReviewPartner)
		authorized.POST("/partners/tier-recalc", h.AdminRecalcPartnerTier)

		// 佣金与结算
		authorized.GET("/commissions", h.AdminListCommissions)
		authorized.GET("/commissions/:id", h.AdminGetCommission)
		authorized.POST("/commissions/:id/dispute", h.AdminDisputeCommission)
		authorized.POST("/commissions/:id/resolve-dispute", h.AdminResolveDispute)
		authorized.POST("/payout-batches", h.AdminCreatePayoutBatch)
		authorized.GET("/payout-batches", h.AdminListPayoutBatches)
		authorized.GET("/payout-batches/:id", h.AdminGetPayoutBatch)

		// 商家
		authorized.GET("/sellers", h.AdminListSellers)
		authorized.GET("/sellers/:id", h.AdminGetSeller)
		authorized.POST("/sellers", h.AdminCreateSeller)
		authorized.PUT("/sellers/:id", h.AdminUpdateSeller)
		authorized.POST("/sellers/:id/review", h.AdminReviewSeller)

		// 审批日志
		authorized.GET("/approval-logs", h.AdminListApprovalLogs)

		// 用户
		authorized.GET("/users", h.GetAdminUsers)
		authorized.GET("/user-login-logs", h.GetUserLoginLogs)
		authorized.PUT("/users/batch-status", h.BatchUpdateUserStatus)
		authorized.GET("/users/:id", h.GetAdminUser)
		authorized.PUT("/users/:id", h.UpdateAdminUser)
	}
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成权限目录，登录接口除外
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, route := range routes {
		method := strings.ToUpper(strings.TrimSpace(route.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(route.Path, "/api/v1/admin/") || route.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
