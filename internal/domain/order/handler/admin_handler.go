package handler

import (
	"net/http"
	"strconv"

	"pawlina-api/internal/domain/order/model"
	"pawlina-api/internal/domain/order/service"
	"pawlina-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminOrderHandler struct {
	service service.AdminOrderService
}

func NewAdminOrderHandler(s service.AdminOrderService) *AdminOrderHandler {
	return &AdminOrderHandler{service: s}
}

// List 后台订单列表（近5天活跃 + 最近200条归档）
// @Summary 后台订单列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	active, archived, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "failed to list orders")
		return
	}
	response.Success(c, gin.H{
		"active":   active,
		"archived": archived,
	})
}

type UpdateOrderInput struct {
	Status       *string `json:"status"`
	DeliveryDate *string `json:"delivery_date"`
	AdminNote    *string `json:"admin_note"`
}

// Update 更新订单履约字段
// 三个字段均可省略，省略即不修改
// @Summary 更新订单履约字段
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param input body UpdateOrderInput true "Patch"
// @Success 200 {object} response.Response
// @Router /admin/orders/{id} [put]
func (h *AdminOrderHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid order id")
		return
	}

	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.Update(c.Request.Context(), uint(id), model.FulfillmentPatch{
		Status: input.Status,
		Date:   input.DeliveryDate,
		Note:   input.AdminNote,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	response.Success(c, order)
}
