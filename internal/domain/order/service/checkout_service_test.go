package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	catalogmodel "pawlina-api/internal/domain/catalog/model"
	"pawlina-api/internal/domain/order/gateway"
	"pawlina-api/internal/domain/order/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func testItem(id uint, name string, price int64) *catalogmodel.Item {
	item := &catalogmodel.Item{Name: name, PriceCents: price}
	item.ID = id
	return item
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	cart := []RawLine{{ID: 3, Qty: 2, Name: "whatever", PriceCents: 1}}

	newService := func() (*MockOrderRepository, *MockAccountLookup, *MockCatalogLookup, *MockRadiusChecker, *MockPaymentGateway, CheckoutService) {
		repo := new(MockOrderRepository)
		accounts := new(MockAccountLookup)
		catalog := new(MockCatalogLookup)
		radius := new(MockRadiusChecker)
		gw := new(MockPaymentGateway)
		svc := NewCheckoutService(repo, accounts, catalog, radius, gw, nil, nil, "")
		return repo, accounts, catalog, radius, gw, svc
	}

	t.Run("Session uses catalogue prices, never client prices", func(t *testing.T) {
		_, accounts, catalog, radius, gw, svc := newService()

		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		radius.On("WithinServiceRadius", ctx, "LA11 7EZ").Return(true)
		catalog.On("GetItemByID", ctx, uint(3)).Return(testItem(3, "Cat Tower", 4999), nil)

		gw.On("CreateSession", ctx, mock.MatchedBy(func(lines []gateway.LineItem) bool {
			return len(lines) == 1 && lines[0].UnitAmountCents == 4999 && lines[0].Qty == 2
		}), mock.MatchedBy(func(md map[string]string) bool {
			var snapshot []model.Line
			if err := json.Unmarshal([]byte(md["items_json"]), &snapshot); err != nil {
				return false
			}
			return md["user_id"] == "5" &&
				md["delivery_method"] == model.DeliveryCollect &&
				len(snapshot) == 1 && snapshot[0].PriceCents == 4999
		})).Return("https://pay.example/s/abc", nil)

		url, err := svc.CreateSession(ctx, 5, cart, model.DeliveryCollect)

		assert.NoError(t, err)
		assert.Equal(t, "https://pay.example/s/abc", url)
		gw.AssertExpectations(t)
	})

	t.Run("Missing postcode blocks checkout", func(t *testing.T) {
		_, accounts, _, _, gw, svc := newService()

		user := testUser(5)
		user.Postcode = ""
		accounts.On("GetByID", ctx, uint(5)).Return(user, nil)

		_, err := svc.CreateSession(ctx, 5, cart, model.DeliveryCollect)

		assert.ErrorIs(t, err, model.ErrMissingAddress)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Out of service area blocks checkout", func(t *testing.T) {
		_, accounts, _, radius, gw, svc := newService()

		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		radius.On("WithinServiceRadius", ctx, "LA11 7EZ").Return(false)

		_, err := svc.CreateSession(ctx, 5, cart, model.DeliveryCollect)

		assert.ErrorIs(t, err, model.ErrOutOfServiceArea)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown catalogue item blocks checkout", func(t *testing.T) {
		_, accounts, catalog, radius, gw, svc := newService()

		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		radius.On("WithinServiceRadius", ctx, "LA11 7EZ").Return(true)
		catalog.On("GetItemByID", ctx, uint(3)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.CreateSession(ctx, 5, cart, model.DeliveryCollect)

		assert.ErrorIs(t, err, model.ErrItemNotFound)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Delivery minimum is judged on catalogue totals", func(t *testing.T) {
		_, accounts, catalog, radius, gw, svc := newService()

		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		radius.On("WithinServiceRadius", ctx, "LA11 7EZ").Return(true)
		// 客户端报价 1p，目录价 2.49 英镑 ×2 仍低于最低消费
		catalog.On("GetItemByID", ctx, uint(3)).Return(testItem(3, "Treats", 249), nil)

		_, err := svc.CreateSession(ctx, 5, []RawLine{{ID: 3, Qty: 1, PriceCents: 99999}}, model.DeliveryDeliver)

		assert.ErrorIs(t, err, model.ErrInvalidPayload)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Gateway failure is surfaced", func(t *testing.T) {
		_, accounts, catalog, radius, gw, svc := newService()

		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		radius.On("WithinServiceRadius", ctx, "LA11 7EZ").Return(true)
		catalog.On("GetItemByID", ctx, uint(3)).Return(testItem(3, "Cat Tower", 4999), nil)
		gw.On("CreateSession", ctx, mock.Anything, mock.Anything).Return("", errors.New("stripe down"))

		_, err := svc.CreateSession(ctx, 5, cart, model.DeliveryCollect)

		assert.Error(t, err)
	})
}

func TestHandleGatewayEvent(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"raw":"event"}`)

	snapshot, _ := json.Marshal([]model.Line{{ItemID: 3, Name: "Cat Tower", PriceCents: 4999, Qty: 2}})
	completedEvent := gateway.Event{
		Type:        gateway.EventCheckoutCompleted,
		AmountTotal: 9998,
		Metadata: map[string]string{
			"user_id":         "5",
			"delivery_method": model.DeliveryDeliver,
			"items_json":      string(snapshot),
		},
	}

	newService := func() (*MockOrderRepository, *MockAccountLookup, *MockPaymentGateway, *MockNotifyQueue, CheckoutService) {
		repo := new(MockOrderRepository)
		accounts := new(MockAccountLookup)
		gw := new(MockPaymentGateway)
		queue := new(MockNotifyQueue)
		// 事件ID留空跳过重放保护，单测不依赖 Redis
		svc := NewCheckoutService(repo, accounts, nil, nil, gw, nil, queue, "owner@example.com")
		return repo, accounts, gw, queue, svc
	}

	t.Run("Completed event stores a paid order with the gateway amount", func(t *testing.T) {
		repo, accounts, gw, queue, svc := newService()

		gw.On("VerifyEvent", payload, "sig").Return(completedEvent, nil)
		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		repo.On("CreateOrReuse", ctx, mock.MatchedBy(func(o *model.Order) bool {
			return o.PaymentStatus == model.PaymentPaid &&
				o.TotalCents == 9998 &&
				o.UserID == 5 &&
				o.DeliveryMethod == model.DeliveryDeliver
		}), dedupWindow).Return(func() *model.Order {
			o := &model.Order{UserID: 5, PaymentStatus: model.PaymentPaid}
			o.ID = 77
			return o
		}(), false, nil)
		queue.On("Enqueue", mock.AnythingOfType("worker.NotifyTask")).Return()

		err := svc.HandleGatewayEvent(ctx, payload, "sig")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
		queue.AssertExpectations(t)
	})

	t.Run("Invalid signature drops the event and stores nothing", func(t *testing.T) {
		repo, _, gw, _, svc := newService()

		gw.On("VerifyEvent", payload, "bad").Return(gateway.Event{}, errors.New("signature mismatch"))

		err := svc.HandleGatewayEvent(ctx, payload, "bad")

		assert.ErrorIs(t, err, model.ErrInvalidSignature)
		repo.AssertNotCalled(t, "CreateOrReuse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unrelated event types are ignored", func(t *testing.T) {
		repo, _, gw, _, svc := newService()

		gw.On("VerifyEvent", payload, "sig").Return(gateway.Event{Type: "payment_intent.created"}, nil)

		err := svc.HandleGatewayEvent(ctx, payload, "sig")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "CreateOrReuse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing user is logged, not returned as an error", func(t *testing.T) {
		repo, accounts, gw, _, svc := newService()

		gw.On("VerifyEvent", payload, "sig").Return(completedEvent, nil)
		accounts.On("GetByID", ctx, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		err := svc.HandleGatewayEvent(ctx, payload, "sig")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "CreateOrReuse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed metadata is logged, not returned as an error", func(t *testing.T) {
		repo, _, gw, _, svc := newService()

		ev := completedEvent
		ev.Metadata = map[string]string{"user_id": "not-a-number"}
		gw.On("VerifyEvent", payload, "sig").Return(ev, nil)

		err := svc.HandleGatewayEvent(ctx, payload, "sig")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "CreateOrReuse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage failure is logged, not returned as an error", func(t *testing.T) {
		repo, accounts, gw, queue, svc := newService()

		gw.On("VerifyEvent", payload, "sig").Return(completedEvent, nil)
		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		repo.On("CreateOrReuse", ctx, mock.Anything, dedupWindow).Return(nil, false, errors.New("db down"))

		err := svc.HandleGatewayEvent(ctx, payload, "sig")

		assert.NoError(t, err)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("Replayed order is deduplicated without a second notification", func(t *testing.T) {
		repo, accounts, gw, queue, svc := newService()

		existing := &model.Order{UserID: 5, PaymentStatus: model.PaymentPaid}
		existing.ID = 77

		gw.On("VerifyEvent", payload, "sig").Return(completedEvent, nil)
		accounts.On("GetByID", ctx, uint(5)).Return(testUser(5), nil)
		repo.On("CreateOrReuse", ctx, mock.Anything, dedupWindow).Return(existing, true, nil)

		err := svc.HandleGatewayEvent(ctx, payload, "sig")

		assert.NoError(t, err)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything)
	})
}
