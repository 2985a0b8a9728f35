package notify

import "context"

// Message 一封待发送的通知邮件
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier 通知发送能力
// 发送失败只记录，绝不影响订单创建（通知不在事务边界内）
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
