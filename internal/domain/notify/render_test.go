package notify

import (
	"testing"

	ordermodel "pawlina-api/internal/domain/order/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOrder(t *testing.T) *ordermodel.Order {
	t.Helper()

	order := &ordermodel.Order{
		DeliveryMethod: ordermodel.DeliveryDeliver,
		TotalCents:     2598,
	}
	order.ID = 42
	require.NoError(t, order.SetLines([]ordermodel.Line{
		{ItemID: 1, Name: "Dog Chews <large>", PriceCents: 499, Qty: 2},
		{ItemID: 2, Name: "Harness", PriceCents: 1600, Qty: 1},
	}))
	require.NoError(t, order.SetAddress(ordermodel.AddressSnapshot{
		Name:     "Edith & Co",
		Email:    "edith@example.com",
		City:     "Grange-over-Sands",
		Postcode: "LA11 7EZ",
	}))
	return order
}

func TestOrderMessage(t *testing.T) {
	t.Run("Manual order email", func(t *testing.T) {
		msg, err := OrderMessage("owner@example.com", buildOrder(t), false)

		assert.NoError(t, err)
		assert.Equal(t, "owner@example.com", msg.To)
		assert.Equal(t, "Order received #42", msg.Subject)
		assert.Contains(t, msg.HTML, "£25.98")
		assert.Contains(t, msg.HTML, "LA11 7EZ")
	})

	t.Run("Paid order email uses the paid subject", func(t *testing.T) {
		msg, err := OrderMessage("owner@example.com", buildOrder(t), true)

		assert.NoError(t, err)
		assert.Equal(t, "New Order #42", msg.Subject)
		assert.Contains(t, msg.HTML, "New Paid Order #42")
	})

	t.Run("User supplied text is HTML escaped", func(t *testing.T) {
		msg, err := OrderMessage("owner@example.com", buildOrder(t), false)

		assert.NoError(t, err)
		assert.NotContains(t, msg.HTML, "<large>")
		assert.Contains(t, msg.HTML, "Dog Chews &lt;large&gt;")
		assert.Contains(t, msg.HTML, "Edith &amp; Co")
	})

	t.Run("Corrupt snapshot is an error", func(t *testing.T) {
		order := &ordermodel.Order{LinesJSON: []byte(`{not json`)}

		_, err := OrderMessage("owner@example.com", order, false)

		assert.Error(t, err)
	})
}
