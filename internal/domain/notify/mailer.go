package notify

import (
	"context"

	"pawlina-api/internal/pkg/config"
	"pawlina-api/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer SMTP 邮件通知实现
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", msg.HTML)

	// gomail 不支持 context，依赖 SMTP 连接自身的超时
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(mail) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Notifier = (*Mailer)(nil)

// LogNotifier 未配置 SMTP 时的降级实现，只写日志
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, msg Message) error {
	logger.Log.Info("notification (smtp not configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var _ Notifier = LogNotifier{}
