package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// buildPublicConfig 汇总站点设置、验证码开关和伙伴计划开关
func (h *Handler) buildPublicConfig() (map[string]interface{}, error) {
	data, err := h.SettingService.GetConfig(map[string]interface{}{
		"languages":                        []string{constants.LocaleKoKR, constants.LocaleEnUS},
		constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
	})
	if err != nil {
		return nil, err
	}

	if h.CaptchaService != nil {
		publicCaptcha, err := h.CaptchaService.GetPublicSetting()
		if err != nil {
			return nil, err
		}
		data["captcha"] = publicCaptcha
	}

	commissionSetting, err := h.SettingService.GetCommissionSetting()
	if err != nil {
		return nil, err
	}
	data["partner_program"] = map[string]interface{}{
		"enabled":                 commissionSetting.Enabled,
		"attribution_window_days": commissionSetting.AttributionWindowDays,
	}
	return data, nil
}

// GetConfig 获取全局配置，短 TTL 缓存兜住首页高频访问
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data, err := h.buildPublicConfig()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(uint(categoryID), search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProductBySlug 根据 slug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, product)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}
