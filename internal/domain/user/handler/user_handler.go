package handler

import (
	"errors"
	"net/http"

	"pawlina-api/internal/domain/user/service"
	"pawlina-api/internal/pkg/middleware"
	"pawlina-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Postcode string `json:"postcode" binding:"required"`
}

// Register 注册（校验配送范围）
// @Summary 注册新用户，邮编必须在配送范围内
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "Account Info"
// @Router /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Missing fields")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), input.Name, input.Email, input.Password, input.Postcode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFields), errors.Is(err, service.ErrPostcodeRequired):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		case errors.Is(err, service.ErrOutOfServiceArea):
			response.Error(c, http.StatusForbidden, response.ErrOutOfServiceArea,
				"We only serve customers within 15 miles of Grange-over-Sands.")
		case errors.Is(err, service.ErrEmailExists):
			response.Error(c, http.StatusConflict, response.ErrUserExists, "Email already exists")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Server error")
		}
		return
	}

	response.Success(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"postcode": user.Postcode,
		"token":    token,
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
// @Summary 登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Credentials"
// @Router /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Missing fields")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLogin) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Invalid credentials")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Server error")
		return
	}

	response.Success(c, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"token": token,
	})
}

// Me 当前账户信息
// @Summary 当前账户信息
// @Tags Account
// @Produce json
// @Router /api/account/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrUserNotFound, "User not found")
		return
	}
	response.Success(c, user)
}

// UpdateMe 保存地址
// @Summary 更新当前账户的地址字段
// @Tags Account
// @Accept json
// @Produce json
// @Router /api/account/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid body")
		return
	}

	user, err := h.service.UpdateAddress(c.Request.Context(), middleware.CurrentUserID(c), fields)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFields) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No valid fields")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to update account")
		return
	}
	response.Success(c, user)
}
