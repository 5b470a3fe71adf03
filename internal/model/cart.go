package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a line in the shopping cart.
type CartItem struct {
	CartItemID  int       `json:"cartItem_id"`
	ProductID   int       `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	Product     *Product  `json:"product,omitempty"`
}

// UnitPrice prefers the live product price over the price captured on the line.
func (i CartItem) UnitPrice() float64 {
	if i.Product != nil {
		return i.Product.Price
	}
	return i.Price
}

// Cart is the backend's view of the user's cart.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
	Meta       *Meta      `json:"meta,omitempty"`
}

// FindByProduct returns the line holding productID, if any.
func (c *Cart) FindByProduct(productID int) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// FindItem returns the line with the given cart item id, if any.
func (c *Cart) FindItem(cartItemID int) (CartItem, bool) {
	for _, item := range c.Items {
		if item.CartItemID == cartItemID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Select returns the lines matching ids in the order given. An empty ids
// slice selects every line.
func (c *Cart) Select(ids []int) ([]CartItem, error) {
	if len(ids) == 0 {
		return append([]CartItem(nil), c.Items...), nil
	}
	selected := make([]CartItem, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		item, ok := c.FindItem(id)
		if !ok {
			return nil, ErrCartItemNotFound
		}
		selected = append(selected, item)
	}
	return selected, nil
}

// AddCartItem is the payload for adding a product to the cart.
type AddCartItem struct {
	ProductID int `json:"productId" validate:"gt=0"`
	Quantity  int `json:"quantity"`
}

// SetCartItemQuantity sets a line's quantity.
type SetCartItemQuantity struct {
	CartItemID int `json:"cartItemId"`
	Quantity   int `json:"quantity"`
}

// ChangeCartItemAmount increments or decrements a line.
type ChangeCartItemAmount struct {
	CartItemID int `json:"cartItemId"`
	Amount     int `json:"amount"`
}

// TotalsPolicy holds the storefront pricing rules applied on top of line items.
type TotalsPolicy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultTotalsPolicy returns the storefront's standard pricing rules.
func DefaultTotalsPolicy() TotalsPolicy {
	return TotalsPolicy{
		FreeShippingThreshold: decimal.NewFromInt(500),
		ShippingFee:           decimal.NewFromInt(15),
		TaxRate:               decimal.RequireFromString("0.10"),
	}
}

// Totals is the price breakdown of a set of cart lines.
type Totals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ChargeAmount is the whole-unit amount sent to the payment provider.
func (t Totals) ChargeAmount() int64 {
	return t.Total.Round(0).IntPart()
}

// ComputeTotals recomputes the price breakdown from line items. Shipping is
// waived once the subtotal exceeds the policy threshold.
func ComputeTotals(items []CartItem, policy TotalsPolicy) Totals {
	if len(items) == 0 {
		return Totals{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Tax:      decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice()).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		count += item.Quantity
	}

	shipping := policy.ShippingFee
	if subtotal.GreaterThan(policy.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(policy.TaxRate).Round(2)

	return Totals{
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
	}
}

// CartView is a cart together with its computed totals.
type CartView struct {
	Cart
	Totals Totals `json:"totals"`
}
