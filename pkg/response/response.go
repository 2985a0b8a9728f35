package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 所有接口共用的响应信封
// code 为业务码（见 code.go），0 表示成功；出错时 data 恒为 null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 以 HTTP 200 返回业务数据
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 返回错误：HTTP 状态码与业务码由调用方按错误类型选择
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
	})
}
