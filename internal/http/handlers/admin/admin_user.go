package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/linkmall/internal/cache"
	"github.com/linkmall/internal/constants"
	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UpdateAdminUserRequest 管理员更新用户请求，nil 字段保持原值
type UpdateAdminUserRequest struct {
	Nickname *string `json:"nickname"`
	Locale   *string `json:"locale"`
	Status   *string `json:"status"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// BatchUpdateUserStatusRequest 批量更新用户状态请求
type BatchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// queryTimeRange 读取一对时间查询参数，解析失败时已回写响应
func queryTimeRange(c *gin.Context, fromKey, toKey string) (from, to *time.Time, ok bool) {
	from, err := parseTimeNullable(strings.TrimSpace(c.Query(fromKey)))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return nil, nil, false
	}
	to, err = parseTimeNullable(strings.TrimSpace(c.Query(toKey)))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return nil, nil, false
	}
	return from, to, true
}

// normalizeUserStatus 仅接受 active/disabled，其余返回空串
func normalizeUserStatus(raw string) string {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == constants.UserStatusActive || status == constants.UserStatusDisabled {
		return status
	}
	return ""
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, createdTo, ok := queryTimeRange(c, "created_from", "created_to")
	if !ok {
		return
	}
	lastLoginFrom, lastLoginTo, ok := queryTimeRange(c, "last_login_from", "last_login_to")
	if !ok {
		return
	}

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:          page,
		PageSize:      pageSize,
		Keyword:       strings.TrimSpace(c.Query("keyword")),
		Status:        strings.TrimSpace(c.Query("status")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
		LastLoginFrom: lastLoginFrom,
		LastLoginTo:   lastLoginTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// loadUserByPathID 按路径 ID 加载用户，失败时已回写响应
func (h *Handler) loadUserByPathID(c *gin.Context) (*models.User, bool) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return nil, false
	}

	found, err := h.UserRepo.GetByID(uint(rawID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return nil, false
	}
	if found == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return nil, false
	}
	return found, true
}

// GetAdminUser 获取用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	user, ok := h.loadUserByPathID(c)
	if !ok {
		return
	}
	response.Success(c, user)
}

// UpdateAdminUser 更新用户信息，改密或禁用时顺带吊销既有 Token
func (h *Handler) UpdateAdminUser(c *gin.Context) {
	var req UpdateAdminUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.loadUserByPathID(c)
	if !ok {
		return
	}

	updated := false
	revokeToken := false

	if req.Email != nil {
		normalized, err := service.NormalizeEmail(*req.Email)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
			return
		}
		existing, err := h.UserRepo.GetByEmail(normalized)
		if err != nil {
			respondError(c, response.CodeInternal, "error.user_update_failed", err)
			return
		}
		if existing != nil && existing.ID != user.ID {
			respondError(c, response.CodeBadRequest, "error.email_exists", nil)
			return
		}
		if normalized != user.Email {
			user.Email = normalized
			updated = true
		}
	}
	if req.Nickname != nil {
		if trimmed := strings.TrimSpace(*req.Nickname); trimmed != "" {
			user.DisplayName = trimmed
			updated = true
		}
	}
	if req.Password != nil {
		if trimmed := strings.TrimSpace(*req.Password); trimmed != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(trimmed), bcrypt.DefaultCost)
			if err != nil {
				respondError(c, response.CodeInternal, "error.user_update_failed", err)
				return
			}
			user.PasswordHash = string(hashed)
			updated = true
			revokeToken = true
		}
	}
	if req.Locale != nil {
		if trimmed := strings.TrimSpace(*req.Locale); trimmed != "" {
			user.Locale = trimmed
			updated = true
		}
	}
	if req.Status != nil {
		if status := normalizeUserStatus(*req.Status); status != "" {
			if user.Status != status {
				user.Status = status
				updated = true
			}
			if status == constants.UserStatusDisabled {
				revokeToken = true
			}
		}
	}

	if !updated {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	now := time.Now()
	user.UpdatedAt = now
	if revokeToken {
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := h.UserRepo.Update(user); err != nil {
		respondError(c, response.CodeInternal, "error.user_update_failed", err)
		return
	}
	_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(user))

	response.Success(c, user)
}

// BatchUpdateUserStatus 批量启用/禁用用户
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req BatchUpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.UserIDs) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	status := normalizeUserStatus(req.Status)
	if status == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.UserIDs, status); err != nil {
		respondError(c, response.CodeInternal, "error.user_update_failed", err)
		return
	}
	for _, userID := range req.UserIDs {
		_ = cache.DelUserAuthState(c.Request.Context(), userID)
	}
	response.Success(c, gin.H{"updated": len(req.UserIDs)})
}
