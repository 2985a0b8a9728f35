package handler

import (
	"net/http"

	"pawlina-api/internal/domain/order/service"
	"pawlina-api/internal/pkg/middleware"
	"pawlina-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

type CheckoutInput struct {
	Items          []service.RawLine `json:"items" binding:"required"`
	DeliveryMethod string            `json:"delivery_method"`
}

// CreateSession 创建支付会话
// @Summary 创建支付会话
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CheckoutInput true "Cart"
// @Success 200 {object} response.Response
// @Router /checkout [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	url, err := h.service.CreateSession(c.Request.Context(), userID, input.Items, input.DeliveryMethod)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	response.Success(c, gin.H{"url": url})
}

// Webhook 支付网关回调
// 信封一旦读到就回 200：网关按至少一次投递重试，非传输层问题重试也无济于事
// @Summary 支付网关回调
// @Tags Checkout
// @Router /stripe/webhook [post]
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	// 验签失败也确认收到：签名错误重试不会变对，错误已在服务层记录
	sig := c.GetHeader("Stripe-Signature")
	_ = h.service.HandleGatewayEvent(c.Request.Context(), payload, sig)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
