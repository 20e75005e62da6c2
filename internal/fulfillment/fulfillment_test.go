package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBothVocabularies(t *testing.T) {
	cases := map[string]Status{
		"pending":      Pending,
		"Shipped":      Shipped,
		"Processing":   Pending,
		"Order Placed": Confirmed,
		"Dispatched":   Shipped,
		"In-Transit":   Shipped,
		"delivered":    Delivered,
		" Cancelled ":  Cancelled,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("returned")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestLabelRoundTrip(t *testing.T) {
	for _, s := range []Status{Pending, Confirmed, Shipped, Delivered, Cancelled} {
		back, err := Parse(s.Label())
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
	assert.Equal(t, "Order Placed", Confirmed.Label())
}

func TestFulfillerAdvancesOneStep(t *testing.T) {
	chain := []Status{Pending, Confirmed, Shipped, Delivered}
	for i := 0; i < len(chain)-1; i++ {
		assert.NoError(t, Check(chain[i], chain[i+1], ActorFulfiller))
	}

	assert.ErrorIs(t, Check(Pending, Delivered, ActorFulfiller), ErrIllegalTransition)
	assert.ErrorIs(t, Check(Pending, Shipped, ActorFulfiller), ErrIllegalTransition)
	assert.ErrorIs(t, Check(Shipped, Confirmed, ActorFulfiller), ErrIllegalTransition)
	assert.ErrorIs(t, Check(Shipped, Shipped, ActorFulfiller), ErrIllegalTransition)
}

func TestTerminalStates(t *testing.T) {
	for _, from := range []Status{Delivered, Cancelled} {
		assert.True(t, from.Terminal())
		for _, to := range []Status{Pending, Confirmed, Shipped, Delivered, Cancelled} {
			assert.ErrorIs(t, Check(from, to, ActorFulfiller), ErrIllegalTransition)
		}
	}
}

func TestCancellation(t *testing.T) {
	assert.NoError(t, Check(Pending, Cancelled, ActorCustomer))
	assert.ErrorIs(t, Check(Confirmed, Cancelled, ActorCustomer), ErrIllegalTransition)

	for _, from := range []Status{Pending, Confirmed, Shipped} {
		assert.NoError(t, Check(from, Cancelled, ActorFulfiller))
	}
}

func TestCustomerCannotAdvance(t *testing.T) {
	assert.ErrorIs(t, Check(Pending, Confirmed, ActorCustomer), ErrIllegalTransition)
}
