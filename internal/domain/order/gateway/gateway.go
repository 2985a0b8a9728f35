package gateway

import "context"

// LineItem 发给支付网关的行项目，单价只来自商品目录
type LineItem struct {
	Name            string
	UnitAmountCents int64
	Qty             int64
}

// EventCheckoutCompleted 唯一会触发订单落库的事件类型，其余事件确认后忽略
const EventCheckoutCompleted = "checkout.session.completed"

// Event 验签通过后的网关事件
type Event struct {
	ID          string
	Type        string
	AmountTotal int64             // 网关上报的实付金额（分），落库以它为准
	Metadata    map[string]string // 会话创建时写入的不可变快照
}

// PaymentGateway 外部支付网关能力
type PaymentGateway interface {
	// CreateSession 创建支付会话，返回跳转URL；此时不落任何订单
	CreateSession(ctx context.Context, lines []LineItem, metadata map[string]string) (string, error)

	// VerifyEvent 校验回调事件签名并解析；验签失败返回 error，事件不可信
	VerifyEvent(payload []byte, signature string) (Event, error)
}
