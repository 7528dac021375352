package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// bindJSON 绑定请求体，失败时已回写 bad_request
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return false
	}
	return true
}

// adminErrorRule 业务错误到响应码与文案键的映射行
type adminErrorRule struct {
	target error
	code   int
	key    string
}

func respondMappedAdminError(c *gin.Context, err error, rules []adminErrorRule, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackKey, err)
}

// GetAdminProducts 商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	sellerID, _ := strconv.ParseUint(c.Query("seller_id"), 10, 64)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)

	products, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		SellerID:   uint(sellerID),
		CategoryID: uint(categoryID),
		Search:     strings.TrimSpace(c.Query("search")),
		WithSeller: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetAdminProduct 商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondMappedAdminError(c, err, []adminErrorRule{
			{service.ErrProductNotFound, response.CodeNotFound, "error.product_not_found"},
		}, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// GetAdminCategories 分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username       string                `json:"username" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// LoginResponse 管理员登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// verifyLoginCaptcha 登录场景人机验证，失败时已回写响应
func (h *Handler) verifyLoginCaptcha(c *gin.Context, payload CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, payload.toServicePayload(), c.ClientIP())
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		respondError(c, response.CodeInternal, "error.captcha_config_invalid", err)
	default:
		respondError(c, response.CodeInternal, "error.captcha_verify_failed", err)
	}
	return false
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.verifyLoginCaptcha(c, req.CaptchaPayload) {
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "error.admin_login_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}
	response.Success(c, LoginResponse{
		Token:     token,
		User:      map[string]interface{}{"id": admin.ID, "username": admin.Username},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// UpdatePasswordRequest 改密请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 当前管理员修改自己的密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		if respondAdminPasswordPolicyError(c, err) {
			return
		}
		respondMappedAdminError(c, err, []adminErrorRule{
			{service.ErrInvalidPassword, response.CodeBadRequest, "error.password_old_invalid"},
			{service.ErrNotFound, response.CodeNotFound, "error.user_not_found"},
		}, "error.save_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  商品管理  ====================

// SaveProductRequest 创建/更新商品请求
type SaveProductRequest struct {
	SellerID       uint     `json:"seller_id" binding:"required"`
	CategoryID     uint     `json:"category_id" binding:"required"`
	Slug           string   `json:"slug" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	PriceAmount    string   `json:"price_amount" binding:"required"`
	Currency       string   `json:"currency"`
	Images         []string `json:"images"`
	Tags           []string `json:"tags"`
	Stock          *int     `json:"stock"`
	CommissionRate *float64 `json:"commission_rate"`
	FlatCommission *string  `json:"flat_commission"`
	Status         string   `json:"status"`
	SortOrder      int      `json:"sort_order"`
}

func (r SaveProductRequest) toServiceInput() (service.SaveProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.PriceAmount))
	if err != nil {
		return service.SaveProductInput{}, service.ErrProductPriceInvalid
	}
	input := service.SaveProductInput{
		SellerID:       r.SellerID,
		CategoryID:     r.CategoryID,
		Slug:           r.Slug,
		Title:          r.Title,
		Description:    r.Description,
		PriceAmount:    price,
		Currency:       r.Currency,
		Images:         r.Images,
		Tags:           r.Tags,
		Stock:          r.Stock,
		CommissionRate: r.CommissionRate,
		Status:         r.Status,
		SortOrder:      r.SortOrder,
	}
	if r.FlatCommission != nil {
		flat, err := decimal.NewFromString(strings.TrimSpace(*r.FlatCommission))
		if err != nil {
			return service.SaveProductInput{}, service.ErrProductCommissionInvalid
		}
		input.FlatCommission = &flat
	}
	return input, nil
}

var productSaveErrorRules = []adminErrorRule{
	{service.ErrProductNotFound, response.CodeNotFound, "error.product_not_found"},
	{service.ErrSellerNotFound, response.CodeBadRequest, "error.seller_not_found"},
	{service.ErrCategoryNotFound, response.CodeBadRequest, "error.category_not_found"},
	{service.ErrProductSlugExists, response.CodeBadRequest, "error.slug_exists"},
	{service.ErrProductPriceInvalid, response.CodeBadRequest, "error.product_price_invalid"},
	{service.ErrProductCommissionInvalid, response.CodeBadRequest, "error.product_commission_invalid"},
}

func respondProductSaveError(c *gin.Context, err error) {
	respondMappedAdminError(c, err, productSaveErrorRules, "error.save_failed")
}

// saveProduct 创建与更新共用：解析金额字段后交给 service
func (h *Handler) saveProduct(c *gin.Context, apply func(service.SaveProductInput) (interface{}, error)) {
	var req SaveProductRequest
	if !bindJSON(c, &req) {
		return
	}

	input, err := req.toServiceInput()
	if err != nil {
		respondProductSaveError(c, err)
		return
	}

	product, err := apply(input)
	if err != nil {
		respondProductSaveError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	h.saveProduct(c, func(input service.SaveProductInput) (interface{}, error) {
		return h.ProductService.Create(input)
	})
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	h.saveProduct(c, func(input service.SaveProductInput) (interface{}, error) {
		return h.ProductService.Update(id, input)
	})
}

// DeleteProduct 删除商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	if err := h.ProductService.Delete(id); err != nil {
		respondMappedAdminError(c, err, []adminErrorRule{
			{service.ErrProductNotFound, response.CodeNotFound, "error.product_not_found"},
		}, "error.product_delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  分类管理  ====================

// CreateCategoryRequest 创建/更新分类请求
type CreateCategoryRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

func (r CreateCategoryRequest) toServiceInput() service.CreateCategoryInput {
	return service.CreateCategoryInput{
		Slug:      r.Slug,
		Name:      r.Name,
		SortOrder: r.SortOrder,
	}
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.CategoryService.Create(req.toServiceInput())
	if err != nil {
		respondMappedAdminError(c, err, []adminErrorRule{
			{service.ErrSlugExists, response.CodeBadRequest, "error.slug_exists"},
		}, "error.category_create_failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.CategoryService.Update(c.Param("id"), req.toServiceInput())
	if err != nil {
		respondMappedAdminError(c, err, []adminErrorRule{
			{service.ErrNotFound, response.CodeNotFound, "error.category_not_found"},
			{service.ErrSlugExists, response.CodeBadRequest, "error.slug_used"},
		}, "error.category_update_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（软删除）
func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.CategoryService.Delete(c.Param("id")); err != nil {
		respondMappedAdminError(c, err, []adminErrorRule{
			{service.ErrCategoryInUse, response.CodeBadRequest, "error.category_in_use"},
			{service.ErrNotFound, response.CodeNotFound, "error.category_not_found"},
		}, "error.category_delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  设置管理  ====================

// GetSettings 获取设置
func (h *Handler) GetSettings(c *gin.Context) {
	key := c.DefaultQuery("key", constants.SettingKeySiteConfig)

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	if value == nil {
		response.Success(c, gin.H{})
		return
	}
	response.Success(c, value)
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings 更新设置，站点配置变更时顺带失效公开配置缓存
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	if req.Key == constants.SettingKeySiteConfig {
		_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	}
	response.Success(c, value)
}

// ====================  文件上传  ====================

// UploadFile 图片上传
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.file_missing", nil)
		return
	}

	url, err := h.UploadService.SaveFile(file, c.DefaultPostForm("scene", "common"))
	if err != nil {
		respondError(c, response.CodeInternal, "error.upload_failed", err)
		return
	}
	response.Success(c, gin.H{
		"url":      url,
		"filename": file.Filename,
		"size":     file.Size,
	})
}
