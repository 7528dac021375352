package public

import (
	"errors"
	"strconv"

	"github.com/linkmall/internal/http/response"
	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CartProduct 购物车商品摘要
type CartProduct struct {
	ID          uint               `json:"id"`
	Slug        string             `json:"slug"`
	Title       string             `json:"title"`
	PriceAmount models.Money       `json:"price_amount"`
	Currency    string             `json:"currency"`
	Images      models.StringArray `json:"images"`
	Tags        models.StringArray `json:"tags"`
	Stock       int                `json:"stock"`
	Status      string             `json:"status"`
}

// CartItemResponse 购物车项响应
type CartItemResponse struct {
	ProductID uint         `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
	LineTotal models.Money `json:"line_total"`
	Currency  string       `json:"currency"`
	Product   CartProduct  `json:"product"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListByUser(uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderItemInvalid):
			respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		}
		return
	}

	respItems := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		product := CartProduct{
			ID:          item.Product.ID,
			Slug:        item.Product.Slug,
			Title:       item.Product.Title,
			PriceAmount: item.Product.PriceAmount,
			Currency:    item.Product.Currency,
			Images:      item.Product.Images,
			Tags:        item.Product.Tags,
			Stock:       item.Product.Stock,
			Status:      item.Product.Status,
		}
		respItems = append(respItems, CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
			Currency:  item.Currency,
			Product:   product,
		})
	}

	response.Success(c, gin.H{"items": respItems})
}

// UpsertCartItem 添加/更新购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity <= 0 {
		if err := h.CartService.RemoveItem(uid, req.ProductID); err != nil {
			respondError(c, response.CodeInternal, "error.cart_update_failed", err)
			return
		}
		response.Success(c, gin.H{"updated": true})
		return
	}
	if err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		UserID:    uid,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderItemInvalid):
			respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		case errors.Is(err, service.ErrProductInactive):
			respondError(c, response.CodeBadRequest, "error.product_inactive", nil)
		case errors.Is(err, service.ErrProductStockInsufficient):
			respondError(c, response.CodeBadRequest, "error.stock_insufficient", nil)
		default:
			respondError(c, response.CodeInternal, "error.cart_update_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	rawID := c.Param("product_id")
	productID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.order_item_invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(uid, uint(productID)); err != nil {
		respondError(c, response.CodeInternal, "error.cart_update_failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.ClearByUser(uid); err != nil {
		respondError(c, response.CodeInternal, "error.cart_update_failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
