package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func cartFixture() *Cart {
	return &Cart{
		ID: "cart-1",
		Items: []CartLineItem{
			{ProductID: "p1", UnitPrice: decimal.RequireFromString("10.50"), Quantity: 2},
			{ProductID: "p2", UnitPrice: decimal.RequireFromString("0.99"), Quantity: 3},
		},
	}
}

func TestCart_FindItemIndex(t *testing.T) {
	c := cartFixture()

	assert.Equal(t, 0, c.FindItemIndex("p1"))
	assert.Equal(t, 1, c.FindItemIndex("p2"))
	assert.Equal(t, -1, c.FindItemIndex("p3"))
}

func TestCart_Count(t *testing.T) {
	assert.Equal(t, 5, cartFixture().Count())
	assert.Equal(t, 0, (&Cart{}).Count())
}

func TestCart_Total(t *testing.T) {
	// 2 × 10.50 + 3 × 0.99 = 23.97 at locked prices.
	assert.True(t, cartFixture().Total().Equal(decimal.RequireFromString("23.97")))
	assert.True(t, (&Cart{}).Total().IsZero())
}

func TestOrderLineItem_LineTotal(t *testing.T) {
	item := OrderLineItem{UnitPrice: decimal.RequireFromString("30.00"), Quantity: 3}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("90.00")))
}
