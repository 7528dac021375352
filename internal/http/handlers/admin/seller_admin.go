package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListSellers 管理端商家列表
func (h *Handler) AdminListSellers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	sellers, total, err := h.SellerService.ListSellers(repository.SellerListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.seller_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, sellers, response.BuildPagination(page, pageSize, total))
}

// AdminGetSeller 管理端商家详情
func (h *Handler) AdminGetSeller(c *gin.Context) {
	sellerID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	seller, err := h.SellerService.GetSeller(sellerID)
	if err != nil {
		if errors.Is(err, service.ErrSellerNotFound) {
			respondError(c, response.CodeNotFound, "error.seller_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.seller_fetch_failed", err)
		return
	}

	response.Success(c, seller)
}

// AdminCreateSellerRequest 管理端创建商家请求
type AdminCreateSellerRequest struct {
	UserID         uint    `json:"user_id" binding:"required"`
	SupplierID     *uint   `json:"supplier_id"`
	Name           string  `json:"name" binding:"required"`
	ContactEmail   string  `json:"contact_email"`
	CommissionRate float64 `json:"commission_rate"`
}

// AdminCreateSeller 管理端创建商家
func (h *Handler) AdminCreateSeller(c *gin.Context) {
	var req AdminCreateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	seller, err := h.SellerService.CreateSeller(service.CreateSellerInput{
		UserID:         req.UserID,
		SupplierID:     req.SupplierID,
		Name:           req.Name,
		ContactEmail:   req.ContactEmail,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrSellerExists):
			respondError(c, response.CodeBadRequest, "error.seller_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, seller)
}

// AdminUpdateSellerRequest 管理端更新商家请求
type AdminUpdateSellerRequest struct {
	Name           *string  `json:"name"`
	ContactEmail   *string  `json:"contact_email"`
	CommissionRate *float64 `json:"commission_rate"`
	SupplierID     *uint    `json:"supplier_id"`
}

// AdminUpdateSeller 管理端更新商家
func (h *Handler) AdminUpdateSeller(c *gin.Context) {
	sellerID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminUpdateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	seller, err := h.SellerService.UpdateSeller(sellerID, service.UpdateSellerInput{
		Name:           req.Name,
		ContactEmail:   req.ContactEmail,
		CommissionRate: req.CommissionRate,
		SupplierID:     req.SupplierID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSellerNotFound):
			respondError(c, response.CodeNotFound, "error.seller_not_found", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, seller)
}

// AdminReviewSellerRequest 管理端商家审批请求
type AdminReviewSellerRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// AdminReviewSeller 管理端商家审批
// action 取值 approve/reject/suspend/reactivate
func (h *Handler) AdminReviewSeller(c *gin.Context) {
	sellerID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminReviewSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	seller, err := h.SellerService.ReviewSeller(
		sellerID,
		req.Action,
		currentAdminID(c),
		currentUsername(c),
		req.Reason,
		currentRequestID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSellerNotFound):
			respondError(c, response.CodeNotFound, "error.seller_not_found", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.review_action_invalid", nil)
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeBadRequest, "error.seller_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, seller)
}
