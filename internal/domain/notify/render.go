package notify

import (
	"fmt"
	"html"
	"strings"

	ordermodel "pawlina-api/internal/domain/order/model"
)

// OrderMessage 渲染发给店主的新订单邮件
// paid 区分网关确认订单与手工下单
func OrderMessage(adminEmail string, order *ordermodel.Order, paid bool) (Message, error) {
	lines, err := order.Lines()
	if err != nil {
		return Message{}, fmt.Errorf("render order notification: %w", err)
	}
	addr, err := order.Address()
	if err != nil {
		return Message{}, fmt.Errorf("render order notification: %w", err)
	}

	subject := fmt.Sprintf("Order received #%d", order.ID)
	title := fmt.Sprintf("Order #%d", order.ID)
	if paid {
		subject = fmt.Sprintf("New Order #%d", order.ID)
		title = fmt.Sprintf("New Paid Order #%d", order.ID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(title))
	fmt.Fprintf(&b, "<p><b>User:</b> %s (%s)</p>",
		html.EscapeString(addr.Name), html.EscapeString(addr.Email))
	fmt.Fprintf(&b, "<p><b>Delivery:</b> %s</p>", html.EscapeString(order.DeliveryMethod))
	fmt.Fprintf(&b, "<p><b>Address:</b><br>%s<br>%s, %s<br>%s</p>",
		html.EscapeString(addr.AddressLine1),
		html.EscapeString(addr.City),
		html.EscapeString(addr.Postcode),
		html.EscapeString(addr.Country))
	b.WriteString("<h2>Items</h2><ul>")
	for _, l := range lines {
		fmt.Fprintf(&b, "<li>%d × %s — £%.2f</li>",
			l.Qty, html.EscapeString(l.Name), float64(l.PriceCents)/100)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p><b>Total:</b> £%.2f</p>", float64(order.TotalCents)/100)

	return Message{
		To:      adminEmail,
		Subject: subject,
		HTML:    b.String(),
	}, nil
}
