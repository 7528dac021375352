package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/queue"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListPartners 管理端合伙人列表
func (h *Handler) AdminListPartners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	partners, total, err := h.PartnerService.ListPartnersForAdmin(repository.PartnerListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		Tier:     strings.TrimSpace(c.Query("tier")),
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.partner_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, partners, response.BuildPagination(page, pageSize, total))
}

// AdminGetPartner 管理端合伙人详情
func (h *Handler) AdminGetPartner(c *gin.Context) {
	partnerID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	partner, err := h.PartnerService.GetPartnerForAdmin(partnerID)
	if err != nil {
		if errors.Is(err, service.ErrPartnerNotFound) {
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.partner_fetch_failed", err)
		return
	}

	response.Success(c, partner)
}

// AdminReviewPartnerRequest 管理端合伙人审批请求
type AdminReviewPartnerRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// AdminReviewPartner 管理端合伙人审批
// action 取值 approve/reject/suspend/reactivate
func (h *Handler) AdminReviewPartner(c *gin.Context) {
	partnerID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminReviewPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	partner, err := h.PartnerService.ReviewPartner(
		partnerID,
		req.Action,
		currentAdminID(c),
		currentUsername(c),
		req.Reason,
		currentRequestID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.review_action_invalid", nil)
		case errors.Is(err, service.ErrPartnerStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.partner_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, partner)
}

// AdminRecalcPartnerTier 管理端触发合伙人等级重算
// partner_id 为空时重算全量，优先走队列，队列不可用时同步执行。
func (h *Handler) AdminRecalcPartnerTier(c *gin.Context) {
	var partnerID uint
	if raw := strings.TrimSpace(c.Query("partner_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		partnerID = uint(parsed)
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueuePartnerTierRecalc(queue.PartnerTierRecalcPayload{PartnerID: partnerID}); err == nil {
			response.Success(c, gin.H{"queued": true})
			return
		}
		requestLog(c).Warnw("partner_tier_recalc_enqueue_failed", "partner_id", partnerID)
	}

	if partnerID > 0 {
		tier, err := h.PartnerService.RecalcPartnerTier(partnerID)
		if err != nil {
			if errors.Is(err, service.ErrPartnerNotFound) {
				respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
				return
			}
			respondError(c, response.CodeInternal, "error.save_failed", err)
			return
		}
		response.Success(c, gin.H{"queued": false, "tier": tier})
		return
	}

	updated, err := h.PartnerService.RecalcPartnerTiers()
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{"queued": false, "updated": updated})
}
