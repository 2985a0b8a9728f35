package handler

import (
	"errors"
	"net/http"

	"pawlina-api/internal/domain/order/model"
	"pawlina-api/internal/domain/order/service"
	"pawlina-api/internal/pkg/middleware"
	"pawlina-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type PlaceOrderInput struct {
	Items          []service.RawLine `json:"items" binding:"required"`
	TotalCents     int64             `json:"total_cents"`
	DeliveryMethod string            `json:"delivery_method"`
}

// Place 直接下单（到店自取/货到付款路径）
// @Summary 直接下单
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body PlaceOrderInput true "Cart"
// @Success 200 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	order, deduped, err := h.service.PlaceDirect(c.Request.Context(), userID, input.Items, input.TotalCents, input.DeliveryMethod)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"order_id": order.ID,
		"deduped":  deduped,
	})
}

// List 当前用户订单列表
// @Summary 我的订单
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	orders, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "failed to list orders")
		return
	}
	response.Success(c, orders)
}

// writeOrderError 订单域错误 → HTTP 响应的统一映射
func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrOutOfServiceArea):
		response.Error(c, http.StatusForbidden, response.ErrOutOfServiceArea,
			"We only serve customers within 15 miles of Grange-over-Sands.")
	case errors.Is(err, model.ErrMissingAddress):
		response.Error(c, http.StatusBadRequest, response.ErrMissingAddress,
			"Please add a delivery address with a postcode to your account first.")
	case errors.Is(err, model.ErrItemNotFound):
		response.Error(c, http.StatusBadRequest, response.ErrItemNotFound, err.Error())
	case errors.Is(err, model.ErrOrderNotFound):
		response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "order not found")
	case errors.Is(err, model.ErrDateAlreadySet):
		response.Error(c, http.StatusBadRequest, response.ErrDateAlreadySet,
			"delivery date is already set and cannot be changed")
	case errors.Is(err, model.ErrMissingDate):
		response.Error(c, http.StatusBadRequest, response.ErrMissingDate,
			"a delivery date is required before advancing the order status")
	case errors.Is(err, model.ErrInvalidPayload):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidPayload, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "internal error")
	}
}
