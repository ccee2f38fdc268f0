package domain

// Money is a cent-precision amount.
type Money struct {
	CentAmount     int64  `json:"centAmount"`
	CurrencyCode   string `json:"currencyCode"`
	FractionDigits int    `json:"fractionDigits"`
}

// TaxedPrice carries the net and gross totals once taxes are calculated.
type TaxedPrice struct {
	TotalNet   Money `json:"totalNet"`
	TotalGross Money `json:"totalGross"`
}

// Address is overwritten wholesale by set-address actions.
type Address struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Cart is the versioned pre-purchase aggregate held by the commerce platform.
type Cart struct {
	ID                    string      `json:"id"`
	Version               int64       `json:"version"`
	CustomerID            string      `json:"customerId,omitempty"`
	CustomerEmail         string      `json:"customerEmail,omitempty"`
	State                 string      `json:"cartState"`
	LineItems             []LineItem  `json:"lineItems"`
	TotalPrice            Money       `json:"totalPrice"`
	TaxedPrice            *TaxedPrice `json:"taxedPrice,omitempty"`
	TotalLineItemQuantity int         `json:"totalLineItemQuantity"`
	ShippingAddress       *Address    `json:"shippingAddress,omitempty"`
	BillingAddress        *Address    `json:"billingAddress,omitempty"`
	ShippingMethodID      string      `json:"shippingMethodId,omitempty"`
}

// LineItem belongs to exactly one cart or order.
type LineItem struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"productId"`
	ProductKey string          `json:"productKey,omitempty"`
	Name       LocalizedString `json:"name"`
	Variant    Variant         `json:"variant"`
	Price      Money           `json:"price"`
	Quantity   int             `json:"quantity"`
	TotalPrice Money           `json:"totalPrice"`
}

// LineItemDraft describes a line item to add when creating a cart.
type LineItemDraft struct {
	ProductID string
	VariantID int
	Quantity  int
}
