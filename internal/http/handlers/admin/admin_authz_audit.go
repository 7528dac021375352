package admin

import (
	"strconv"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/repository"

	"github.com/gin-gonic/gin"
)

// queryAdminID 解析可选的管理员 ID 查询参数，空串返回 0
func queryAdminID(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(id), true
}

// ListAuthzAuditLogs 获取权限审计日志列表
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	operatorAdminID, ok := queryAdminID(c, "operator_admin_id")
	if !ok {
		return
	}
	targetAdminID, ok := queryAdminID(c, "target_admin_id")
	if !ok {
		return
	}

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

	items, total, err := h.AuthzAuditService.ListForAdmin(repository.AuthzAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		TargetAdminID:   targetAdminID,
		Action:          strings.TrimSpace(c.Query("action")),
		Role:            strings.TrimSpace(c.Query("role")),
		Object:          strings.TrimSpace(c.Query("object")),
		Method:          strings.TrimSpace(c.Query("method")),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}
