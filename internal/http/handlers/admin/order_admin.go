package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOrderListItem 管理端订单列表返回
type AdminOrderListItem struct {
	models.Order
	UserEmail       string `json:"user_email,omitempty"`
	UserDisplayName string `json:"user_display_name,omitempty"`
}

// AdminOrderDetail 管理端订单详情返回
type AdminOrderDetail struct {
	models.Order
	UserEmail       string                     `json:"user_email,omitempty"`
	UserDisplayName string                     `json:"user_display_name,omitempty"`
	Commissions     []models.PartnerCommission `json:"commissions,omitempty"`
}

func queryUint(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// respondOrderMutationError 把订单服务错误翻译成管理端响应
func respondOrderMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrOrderStateConflict):
		respondError(c, response.CodeBadRequest, "error.order_state_conflict", nil)
	default:
		respondError(c, response.CodeInternal, "error.order_update_failed", err)
	}
}

// lookupOrderUsers 批量取订单归属用户，用于列表补充邮箱和昵称
func (h *Handler) lookupOrderUsers(c *gin.Context, orders []models.Order) (map[uint]models.User, bool) {
	seen := map[uint]struct{}{}
	ids := make([]uint, 0, len(orders))
	for _, order := range orders {
		if order.UserID == 0 {
			continue
		}
		if _, dup := seen[order.UserID]; dup {
			continue
		}
		seen[order.UserID] = struct{}{}
		ids = append(ids, order.UserID)
	}

	byID := map[uint]models.User{}
	if len(ids) == 0 {
		return byID, true
	}
	users, err := h.UserRepo.ListByIDs(ids)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return nil, false
	}
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, true
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, createdTo, ok := queryTimeRange(c, "created_from", "created_to")
	if !ok {
		return
	}

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        queryUint(c, "user_id"),
		PartnerID:     queryUint(c, "partner_id"),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	}
	orders, total, err := h.OrderService.ListOrdersForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	userByID, ok := h.lookupOrderUsers(c, orders)
	if !ok {
		return
	}

	items := make([]AdminOrderListItem, 0, len(orders))
	for _, order := range orders {
		item := AdminOrderListItem{Order: order}
		if user, found := userByID[order.UserID]; found {
			item.UserEmail = user.Email
			item.UserDisplayName = user.DisplayName
		}
		items = append(items, item)
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// AdminGetOrder 管理端订单详情，附带该订单产生的分润记录
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrderForAdmin(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	detail := AdminOrderDetail{Order: *order}
	if order.UserID != 0 {
		user, err := h.UserRepo.GetByID(order.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
			return
		}
		if user != nil {
			detail.UserEmail = user.Email
			detail.UserDisplayName = user.DisplayName
		}
	}

	if detail.Commissions, err = h.CommissionRepo.ListByOrder(order.ID, nil); err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	response.Success(c, detail)
}

// AdminUpdateOrderStatusRequest 管理端更新订单状态请求
type AdminUpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateOrderStatus 管理端更新订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminUpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		respondOrderMutationError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminMarkOrderPaidRequest 管理端标记订单已支付请求
type AdminMarkOrderPaidRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// AdminMarkOrderPaid 管理端标记订单已支付
func (h *Handler) AdminMarkOrderPaid(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req AdminMarkOrderPaidRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.OrderService.MarkOrderPaid(orderID, req.PaymentMethod)
	if err != nil {
		respondOrderMutationError(c, err)
		return
	}
	response.Success(c, order)
}
