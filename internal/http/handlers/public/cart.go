package public

import (
	"strconv"

	"github.com/halomart/halomart/internal/http/response"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/service"

	"github.com/gin-gonic/gin"
)

// AddToCartRequest 加入购物车请求
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 购物车行操作请求
type UpdateCartItemRequest struct {
	Action string `json:"action" binding:"required"`
}

// CartProduct 购物车商品摘要
type CartProduct struct {
	ID          uint               `json:"id"`
	Slug        string             `json:"slug"`
	Name        string             `json:"name"`
	PriceAmount models.Money       `json:"price_amount"`
	Currency    string             `json:"currency"`
	Images      models.StringArray `json:"images"`
	Stock       int                `json:"stock"`
	IsActive    bool               `json:"is_active"`
}

// CartItemResponse 购物车项响应
type CartItemResponse struct {
	ProductID uint        `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Product   CartProduct `json:"product"`
}

func cartItemsResponse(items []service.BasketItem) gin.H {
	if items == nil {
		items = []service.BasketItem{}
	}
	return gin.H{"items": items}
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	entries, err := h.BasketService.Get(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err)
		return
	}

	respItems := make([]CartItemResponse, 0, len(entries))
	for _, entry := range entries {
		if entry.Product == nil {
			continue
		}
		respItems = append(respItems, CartItemResponse{
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
			Product: CartProduct{
				ID:          entry.Product.ID,
				Slug:        entry.Product.Slug,
				Name:        entry.Product.Name,
				PriceAmount: entry.Product.PriceAmount,
				Currency:    entry.Product.Currency,
				Images:      entry.Product.Images,
				Stock:       entry.Product.Stock,
				IsActive:    entry.Product.IsActive,
			},
		})
	}
	response.Success(c, gin.H{"items": respItems})
}

// AddToCart 加入购物车，已有行累加数量
func (h *Handler) AddToCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, err := h.BasketService.Add(c.Request.Context(), uid, req.ProductID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartItemsResponse(items))
}

// UpdateCartItem 对购物车行执行 increment / decrement / remove
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, err := h.BasketService.UpdateItem(c.Request.Context(), uid, uint(productID), req.Action)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartItemsResponse(items))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.BasketService.Clear(c.Request.Context(), uid); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
