package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linkmall/internal/authz"
	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/i18n"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey           = "request_id"
	requestIDHeader        = "X-Request-ID"
	adminIsSuperContextKey = "admin_is_super"
)

func abortUnauthorized(c *gin.Context, msgKey string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), msgKey))
	c.Abort()
}

func abortForbidden(c *gin.Context, msgKey string) {
	response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), msgKey))
	c.Abort()
}

// bearerToken 从 Authorization 头提取 Bearer Token，失败时已写响应
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortUnauthorized(c, "error.auth_header_missing")
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		abortUnauthorized(c, "error.auth_header_invalid")
		return "", false
	}
	return parts[1], true
}

// parseHSClaims 限定 HS256 解析令牌，签名无效或过期时返回错误
func parseHSClaims(tokenString, secretKey string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

var defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

var defaultCORSHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Accept-Encoding",
	"Authorization",
	"Cache-Control",
	"X-Requested-With",
	"X-CSRF-Token",
}

func fallbackList(values, defaults []string) []string {
	if len(values) > 0 {
		return values
	}
	return defaults
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := fallbackList(cfg.AllowedOrigins, []string{"*"})
	methodsHeader := strings.Join(fallbackList(cfg.AllowedMethods, defaultCORSMethods), ", ")
	headersHeader := strings.Join(fallbackList(cfg.AllowedHeaders, defaultCORSHeaders), ", ")

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowed := resolveAllowedOrigin(c.GetHeader("Origin"), origins, cfg.AllowCredentials); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", headersHeader)
		header.Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// resolveAllowedOrigin 通配符加凭证时回显来源，否则按允许列表精确匹配
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	wildcard := false
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			wildcard = true
			continue
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	if !wildcard {
		return ""
	}
	if allowCredentials && origin != "" {
		return origin
	}
	return "*"
}

// RequestIDMiddleware 请求 ID 中间件，透传调用方携带的 ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, ok := c.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func setAdminContext(c *gin.Context, claims *service.JWTClaims, isSuper bool) {
	c.Set("admin_id", claims.AdminID)
	c.Set("username", claims.Username)
	c.Set(adminIsSuperContextKey, isSuper)
}

// JWTAuthMiddleware 管理员 JWT 鉴权，优先查鉴权缓存，未命中再回源数据库
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims := &service.JWTClaims{}
		if parseHSClaims(tokenString, secretKey, claims) != nil || claims.AdminID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		if cached, hit, cacheErr := cache.GetAdminAuthState(c.Request.Context(), claims.AdminID); cacheErr == nil && hit && cached != nil {
			if claims.TokenVersion != cached.TokenVersion || !issuedAfterUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
				abortUnauthorized(c, "error.token_revoked")
				return
			}
			setAdminContext(c, claims, cached.IsSuper)
			c.Next()
			return
		}

		admin, err := adminRepo.GetByID(claims.AdminID)
		if err != nil || admin == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if claims.TokenVersion != admin.TokenVersion || !issuedAfter(claims.IssuedAt, admin.TokenInvalidBefore) {
			abortUnauthorized(c, "error.token_revoked")
			return
		}
		_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

		setAdminContext(c, claims, admin.IsSuper)
		c.Next()
	}
}

func contextAdminID(c *gin.Context) uint {
	switch value := c.Value("admin_id").(type) {
	case uint:
		return value
	case int:
		if value > 0 {
			return uint(value)
		}
	case float64:
		if value > 0 {
			return uint(value)
		}
	}
	return 0
}

// AdminRBACMiddleware 管理端 RBAC 鉴权，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		if isSuper, ok := c.Value(adminIsSuperContextKey).(bool); ok && isSuper {
			c.Next()
			return
		}

		adminID := contextAdminID(c)
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		// 用路由模板做资源标识，keyMatch2 才能匹配 :id 段
		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		fields := []interface{}{
			"admin_id", adminID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed", append(fields, "error", err)...)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied", append(fields, "resource", authz.NormalizeObject(resource))...)
			abortForbidden(c, "error.forbidden")
			return
		}

		c.Next()
	}
}

func setUserContext(c *gin.Context, claims *service.UserJWTClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
}

// UserJWTAuthMiddleware 用户 JWT 鉴权，校验账号状态与会话作废标记
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims := &service.UserJWTClaims{}
		if parseHSClaims(tokenString, secretKey, claims) != nil || claims.UserID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		if cached, hit, cacheErr := cache.GetUserAuthState(c.Request.Context(), claims.UserID); cacheErr == nil && hit && cached != nil {
			if !isActiveUserStatus(cached.Status) {
				abortUnauthorized(c, "error.user_disabled")
				return
			}
			if claims.TokenVersion != cached.TokenVersion || !issuedAfterUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
				abortUnauthorized(c, "error.token_revoked")
				return
			}
			setUserContext(c, claims)
			c.Next()
			return
		}

		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if !isActiveUserStatus(user.Status) {
			abortUnauthorized(c, "error.user_disabled")
			return
		}
		if claims.TokenVersion != user.TokenVersion || !issuedAfter(claims.IssuedAt, user.TokenInvalidBefore) {
			abortUnauthorized(c, "error.token_revoked")
			return
		}
		_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(user))

		setUserContext(c, claims)
		c.Next()
	}
}

func issuedAfter(issuedAt *jwt.NumericDate, invalidBefore *time.Time) bool {
	if invalidBefore == nil {
		return true
	}
	return issuedAfterUnix(issuedAt, invalidBefore.Unix())
}

func issuedAfterUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}

// AttributionMiddleware 维护访客与推荐归因 Cookie。
// visitor_key 缺失时补发；URL 上携带 ref/partner 参数时按最后触达覆盖 partner_ref。
func AttributionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := c.Cookie(constants.VisitorCookieName); err != nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(constants.VisitorCookieName, uuid.NewString(), constants.VisitorCookieMaxAge, "/", "", false, true)
		}

		code := strings.TrimSpace(c.Query(constants.ReferralQueryRef))
		if code == "" {
			code = strings.TrimSpace(c.Query(constants.ReferralQueryPartner))
		}
		if code != "" {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(constants.ReferralCookieName, code, constants.ReferralCookieMaxAge, "/", "", false, true)
		}

		c.Next()
	}
}
