package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCanceled:
		return true
	}
	return false
}

// PaymentStatus is the settlement state recorded by the backend.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        int      `json:"id"`
	OrderID   int      `json:"orderId"`
	ProductID int      `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Product   *Product `json:"product,omitempty"`
}

// Payment is the backend's record of how an order was paid.
type Payment struct {
	ID      int           `json:"id"`
	OrderID int           `json:"orderId"`
	Method  string        `json:"method"`
	Amount  float64       `json:"amount"`
	Status  PaymentStatus `json:"status"`
	PaidAt  *time.Time    `json:"paidAt,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID        int         `json:"id"`
	UserID    int         `json:"userId"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Items     []OrderItem `json:"items"`
	User      *User       `json:"user,omitempty"`
	Payment   *Payment    `json:"payment,omitempty"`
	IsDeleted bool        `json:"isDeleted"`
}

// OrderPage is a page of orders.
type OrderPage struct {
	Data []Order `json:"data"`
	Meta Meta    `json:"meta"`
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	Items       []OrderItemRequest `json:"items"`
	Total       float64            `json:"total"`
	PaymentType string             `json:"paymentType"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// StatusUpdate changes the status of an order.
type StatusUpdate struct {
	Status OrderStatus `json:"status"`
}
