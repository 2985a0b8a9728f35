package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pawlina-api/internal/domain/order/model"

	"github.com/stretchr/testify/assert"
)

func TestValidateCart(t *testing.T) {
	t.Run("Valid cart passes through", func(t *testing.T) {
		lines, total, err := ValidateCart([]RawLine{
			{ID: 1, Qty: 2, Name: "Dog Chews", PriceCents: 499},
			{ID: 7, Qty: 1, Name: "Cat Tower", PriceCents: 4999},
		}, 5997)

		assert.NoError(t, err)
		assert.Len(t, lines, 2)
		assert.Equal(t, int64(5997), total)
		assert.Equal(t, uint(1), lines[0].ItemID)
		assert.Equal(t, 2, lines[0].Qty)
	})

	t.Run("Empty cart is rejected", func(t *testing.T) {
		_, _, err := ValidateCart(nil, 0)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)
	})

	t.Run("Fifty lines is the inclusive maximum", func(t *testing.T) {
		items := make([]RawLine, 50)
		for i := range items {
			items[i] = RawLine{ID: int64(i + 1), Qty: 1, Name: "x", PriceCents: 100}
		}

		_, _, err := ValidateCart(items, 5000)
		assert.NoError(t, err)

		items = append(items, RawLine{ID: 51, Qty: 1, Name: "x", PriceCents: 100})
		_, _, err = ValidateCart(items, 5100)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)
	})

	t.Run("Non-positive item id is rejected", func(t *testing.T) {
		_, _, err := ValidateCart([]RawLine{{ID: 0, Qty: 1, PriceCents: 100}}, 100)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)

		_, _, err = ValidateCart([]RawLine{{ID: -4, Qty: 1, PriceCents: 100}}, 100)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)
	})

	t.Run("Quantity bounds are enforced", func(t *testing.T) {
		_, _, err := ValidateCart([]RawLine{{ID: 1, Qty: 0, PriceCents: 100}}, 100)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)

		_, _, err = ValidateCart([]RawLine{{ID: 1, Qty: 100, PriceCents: 100}}, 100)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)

		_, _, err = ValidateCart([]RawLine{{ID: 1, Qty: 99, PriceCents: 100}}, 9900)
		assert.NoError(t, err)
	})

	t.Run("Out-of-range line price is zeroed, not rejected", func(t *testing.T) {
		lines, _, err := ValidateCart([]RawLine{
			{ID: 1, Qty: 1, PriceCents: -500},
			{ID: 2, Qty: 1, PriceCents: 100_000_001},
			{ID: 3, Qty: 1, PriceCents: 100_000_000},
		}, 1000)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), lines[0].PriceCents)
		assert.Equal(t, int64(0), lines[1].PriceCents)
		assert.Equal(t, int64(100_000_000), lines[2].PriceCents)
	})

	t.Run("Out-of-range total rejects the whole cart", func(t *testing.T) {
		_, _, err := ValidateCart([]RawLine{{ID: 1, Qty: 1, PriceCents: 100}}, -1)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)

		_, _, err = ValidateCart([]RawLine{{ID: 1, Qty: 1, PriceCents: 100}}, 100_000_001)
		assert.ErrorIs(t, err, model.ErrInvalidPayload)
	})

	t.Run("Long names are truncated", func(t *testing.T) {
		lines, _, err := ValidateCart([]RawLine{
			{ID: 1, Qty: 1, Name: strings.Repeat("a", 300), PriceCents: 100},
		}, 100)

		assert.NoError(t, err)
		assert.Len(t, lines[0].Name, 160)
	})

	t.Run("Truncation never splits a multibyte character", func(t *testing.T) {
		lines, _, err := ValidateCart([]RawLine{
			{ID: 1, Qty: 1, Name: strings.Repeat("猫", 300), PriceCents: 100},
		}, 100)

		assert.NoError(t, err)
		assert.True(t, utf8.ValidString(lines[0].Name))
		assert.Equal(t, 160, utf8.RuneCountInString(lines[0].Name))
	})
}

func TestDedupKey(t *testing.T) {
	lines := []model.Line{{ItemID: 1, Name: "Dog Chews", PriceCents: 499, Qty: 2}}

	t.Run("Same input yields same key", func(t *testing.T) {
		a, err := DedupKey(998, model.DeliveryCollect, lines)
		assert.NoError(t, err)
		b, err := DedupKey(998, model.DeliveryCollect, lines)
		assert.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("Different method or total yields different key", func(t *testing.T) {
		a, _ := DedupKey(998, model.DeliveryCollect, lines)
		b, _ := DedupKey(998, model.DeliveryDeliver, lines)
		c, _ := DedupKey(999, model.DeliveryCollect, lines)

		assert.NotEqual(t, a, b)
		assert.NotEqual(t, a, c)
	})
}
