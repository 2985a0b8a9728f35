package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pawlina-api/internal/pkg/config"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway Stripe Checkout 实现
type StripeGateway struct {
	config config.StripeConfig
}

func NewStripeGateway(cfg config.StripeConfig) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe config missing")
	}

	stripe.Key = cfg.SecretKey
	// 外部调用必须有界超时，超时则本次结算干净失败，不落订单
	stripe.SetHTTPClient(&http.Client{Timeout: 15 * time.Second})

	return &StripeGateway{config: cfg}, nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, lines []LineItem, metadata map[string]string) (string, error) {
	currency := g.config.Currency
	if currency == "" {
		currency = "gbp"
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, l := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(l.UnitAmountCents),
			},
			Quantity: stripe.Int64(l.Qty),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(g.config.SuccessURL),
		CancelURL:          stripe.String(g.config.CancelURL),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe checkout session: %w", err)
	}
	return s.URL, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("verify stripe event: %w", err)
	}

	out := Event{
		ID:   ev.ID,
		Type: string(ev.Type),
	}

	if out.Type == EventCheckoutCompleted {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return Event{}, fmt.Errorf("decode checkout session from event: %w", err)
		}
		out.AmountTotal = s.AmountTotal
		out.Metadata = s.Metadata
	}

	return out, nil
}

var _ PaymentGateway = (*StripeGateway)(nil)
