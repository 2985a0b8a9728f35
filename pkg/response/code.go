package response

// 业务状态码
const (
	CodeSuccess = 0

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 商品模块错误 200xx
	ErrCatalogItemNotFound = 20001

	// 订单/结算模块错误 300xx
	ErrInvalidPayload   = 30001
	ErrMissingAddress   = 30002
	ErrOutOfServiceArea = 30003
	ErrItemNotFound     = 30004
	ErrInvalidSignature = 30005
	ErrDateAlreadySet   = 30006
	ErrMissingDate      = 30007
	ErrOrderNotFound    = 30008

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
