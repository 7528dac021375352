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

func parseQueryUint(c *gin.Context, name string) uint {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// AdminListCommissions 管理端佣金列表
func (h *Handler) AdminListCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	commissions, total, err := h.CommissionService.ListCommissions(repository.CommissionListFilter{
		Page:        page,
		PageSize:    pageSize,
		PartnerID:   parseQueryUint(c, "partner_id"),
		OrderID:     parseQueryUint(c, "order_id"),
		SellerID:    parseQueryUint(c, "seller_id"),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		Status:      strings.TrimSpace(c.Query("status")),
		Keyword:     strings.TrimSpace(c.Query("search")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, commissions, response.BuildPagination(page, pageSize, total))
}

// AdminGetCommission 管理端佣金详情
func (h *Handler) AdminGetCommission(c *gin.Context) {
	commissionID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	commission, err := h.CommissionService.GetCommission(commissionID)
	if err != nil {
		if errors.Is(err, service.ErrCommissionNotFound) {
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}

	response.Success(c, commission)
}

// AdminDisputeCommissionRequest 管理端佣金争议请求
type AdminDisputeCommissionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminDisputeCommission 管理端将佣金标记为争议
func (h *Handler) AdminDisputeCommission(c *gin.Context) {
	commissionID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminDisputeCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	commission, err := h.CommissionService.DisputeCommission(commissionID, req.Reason)
	if err != nil {
		respondCommissionStateError(c, err)
		return
	}

	response.Success(c, commission)
}

// AdminResolveDisputeRequest 管理端争议裁决请求
type AdminResolveDisputeRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// AdminResolveDispute 管理端裁决争议佣金
// action 取值 resolve_confirm/resolve_cancel
func (h *Handler) AdminResolveDispute(c *gin.Context) {
	commissionID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	commission, err := h.CommissionService.ResolveDispute(commissionID, req.Action, req.Reason)
	if err != nil {
		respondCommissionStateError(c, err)
		return
	}

	response.Success(c, commission)
}

func respondCommissionStateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommissionNotFound):
		respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	case errors.Is(err, service.ErrCommissionStateConflict):
		respondError(c, response.CodeBadRequest, "error.commission_state_conflict", nil)
	default:
		respondError(c, response.CodeInternal, "error.save_failed", err)
	}
}

// AdminCreatePayoutBatchRequest 管理端创建结算批次请求
type AdminCreatePayoutBatchRequest struct {
	PartnerID     uint   `json:"partner_id" binding:"required"`
	CommissionIDs []uint `json:"commission_ids" binding:"required"`
}

// AdminCreatePayoutBatch 管理端创建结算批次
func (h *Handler) AdminCreatePayoutBatch(c *gin.Context) {
	var req AdminCreatePayoutBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	batch, err := h.CommissionService.CreatePayoutBatch(req.PartnerID, req.CommissionIDs, currentAdminID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutBatchInvalid):
			respondError(c, response.CodeBadRequest, "error.payout_batch_invalid", nil)
		case errors.Is(err, service.ErrCommissionStateConflict):
			respondError(c, response.CodeBadRequest, "error.commission_state_conflict", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, batch)
}

// AdminListPayoutBatches 管理端结算批次列表
func (h *Handler) AdminListPayoutBatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	batches, total, err := h.CommissionService.ListPayoutBatches(repository.PayoutBatchListFilter{
		Page:      page,
		PageSize:  pageSize,
		PartnerID: parseQueryUint(c, "partner_id"),
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.payout_batch_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, batches, response.BuildPagination(page, pageSize, total))
}

// AdminGetPayoutBatch 管理端结算批次详情
func (h *Handler) AdminGetPayoutBatch(c *gin.Context) {
	batchID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	batch, err := h.CommissionService.GetPayoutBatch(batchID)
	if err != nil {
		if errors.Is(err, service.ErrPayoutBatchNotFound) {
			respondError(c, response.CodeNotFound, "error.payout_batch_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.payout_batch_fetch_failed", err)
		return
	}

	response.Success(c, batch)
}

// AdminGetCommissionSettings 获取佣金配置
func (h *Handler) AdminGetCommissionSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCommissionSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}

	response.Success(c, setting)
}

// AdminUpdateCommissionSettings 更新佣金配置
func (h *Handler) AdminUpdateCommissionSettings(c *gin.Context) {
	var req service.CommissionSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateCommissionSetting(req)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	response.Success(c, setting)
}
