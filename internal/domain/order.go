package domain

import "time"

// Order is an immutable snapshot of a cart at the version it was ordered.
type Order struct {
	ID            string      `json:"id"`
	Version       int64       `json:"version"`
	OrderNumber   string      `json:"orderNumber,omitempty"`
	CustomerID    string      `json:"customerId,omitempty"`
	CustomerEmail string      `json:"customerEmail,omitempty"`
	State         string      `json:"orderState"`
	LineItems     []LineItem  `json:"lineItems"`
	TotalPrice    Money       `json:"totalPrice"`
	TaxedPrice    *TaxedPrice `json:"taxedPrice,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// IsGuest reports whether the order was placed with an email but no customer id.
func (o Order) IsGuest() bool {
	return o.CustomerID == ""
}
