package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOrderNumber(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "000001"},
		{42, "000042"},
		{999999, "999999"},
		{1000000, "1000000"},
		{12345678, "12345678"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatOrderNumber(tc.seq))
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{OrderStatusNew, OrderStatusPreparing, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled} {
		assert.True(t, ValidOrderStatus(status))
	}
	assert.False(t, ValidOrderStatus("SHIPPED"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("new"))
}

func TestValidPaymentStatus(t *testing.T) {
	for _, status := range []string{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefundInitiated, PaymentStatusRefunded} {
		assert.True(t, ValidPaymentStatus(status))
	}
	assert.False(t, ValidPaymentStatus("DECLINED"))
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{OrderStatus: OrderStatusNew}).CanBeCancelled())

	for _, status := range []string{OrderStatusPreparing, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled} {
		assert.False(t, (&Order{OrderStatus: status}).CanBeCancelled())
	}
}

func TestPriceForVariant(t *testing.T) {
	price := 250.0
	half := 150.0
	full := 280.0

	single := &MenuItem{PricingType: PricingTypeSingle, Price: &price}
	halfFull := &MenuItem{PricingType: PricingTypeHalfFull, PriceHalf: &half, PriceFull: &full}

	t.Run("SingleItem", func(t *testing.T) {
		got, ok := single.PriceForVariant(OrderItemVariantSingle)
		assert.True(t, ok)
		assert.Equal(t, price, got)

		_, ok = single.PriceForVariant(OrderItemVariantHalf)
		assert.False(t, ok)
		_, ok = single.PriceForVariant(OrderItemVariantFull)
		assert.False(t, ok)
	})

	t.Run("HalfFullItem", func(t *testing.T) {
		got, ok := halfFull.PriceForVariant(OrderItemVariantHalf)
		assert.True(t, ok)
		assert.Equal(t, half, got)

		got, ok = halfFull.PriceForVariant(OrderItemVariantFull)
		assert.True(t, ok)
		assert.Equal(t, full, got)

		_, ok = halfFull.PriceForVariant(OrderItemVariantSingle)
		assert.False(t, ok)
	})

	t.Run("MissingPrice", func(t *testing.T) {
		_, ok := (&MenuItem{PricingType: PricingTypeSingle}).PriceForVariant(OrderItemVariantSingle)
		assert.False(t, ok)
	})
}
