package model

import "errors"

// 订单域错误
var (
	// ErrInvalidPayload 购物车形状/边界校验失败
	ErrInvalidPayload = errors.New("invalid cart payload")
	// ErrMissingAddress 账户没有保存邮编，无法结算
	ErrMissingAddress = errors.New("address with postcode required before checkout")
	// ErrOutOfServiceArea 地址超出配送半径（或无法确认范围）
	ErrOutOfServiceArea = errors.New("address outside the service area")
	// ErrItemNotFound 购物车引用了不存在的商品
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidSignature 网关回调签名验证失败
	ErrInvalidSignature = errors.New("invalid gateway event signature")
	// ErrDateAlreadySet 配送日期一经写入不可更改
	ErrDateAlreadySet = errors.New("delivery date already set")
	// ErrMissingDate 修改处理状态前必须先确定配送/自提日期
	ErrMissingDate = errors.New("delivery date required before status change")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
)
