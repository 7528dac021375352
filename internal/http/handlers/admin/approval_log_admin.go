package admin

import (
	"strconv"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListApprovalLogs 管理端审批日志列表
func (h *Handler) AdminListApprovalLogs(c *gin.Context) {
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

	logs, total, err := h.ApprovalLogService.ListAdmin(repository.ApprovalLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: parseQueryUint(c, "operator_admin_id"),
		TargetType:      strings.TrimSpace(c.Query("target_type")),
		TargetID:        parseQueryUint(c, "target_id"),
		Action:          strings.TrimSpace(c.Query("action")),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.approval_log_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
