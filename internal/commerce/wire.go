package commerce

import (
	"bytes"
	"encoding/json"
	"time"

	"commercetools-gateway/internal/domain"
)

type ctPaged[T any] struct {
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Count   int `json:"count"`
	Total   int `json:"total"`
	Results []T `json:"results"`
}

type ctPriceValue struct {
	Type           string `json:"type,omitempty"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
}

type ctPrice struct {
	ID    string       `json:"id,omitempty"`
	Value ctPriceValue `json:"value"`
}

type ctTaxedPrice struct {
	TotalNet   ctPriceValue `json:"totalNet"`
	TotalGross ctPriceValue `json:"totalGross"`
}

type ctImage struct {
	URL        string        `json:"url"`
	Label      string        `json:"label,omitempty"`
	Dimensions *ctDimensions `json:"dimensions,omitempty"`
}

type ctDimensions struct {
	W int `json:"w"`
	H int `json:"h"`
}

type ctAttribute struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type ctVariant struct {
	ID         int           `json:"id"`
	SKU        string        `json:"sku,omitempty"`
	Prices     []ctPrice     `json:"prices"`
	Images     []ctImage     `json:"images"`
	Attributes []ctAttribute `json:"attributes"`
}

type ctProductProjection struct {
	ID              string            `json:"id"`
	Key             string            `json:"key,omitempty"`
	Version         int64             `json:"version"`
	Name            map[string]string `json:"name"`
	Slug            map[string]string `json:"slug,omitempty"`
	MetaDescription map[string]string `json:"metaDescription,omitempty"`
	MasterVariant   ctVariant         `json:"masterVariant"`
	Variants        []ctVariant       `json:"variants"`
}

type ctSuggestion struct {
	Text string `json:"text"`
}

type ctRef struct {
	TypeID string `json:"typeId,omitempty"`
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
}

type ctAddress struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

type ctLineItem struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"productId"`
	ProductKey string            `json:"productKey,omitempty"`
	Name       map[string]string `json:"name"`
	Variant    ctVariant         `json:"variant"`
	Price      ctPrice           `json:"price"`
	Quantity   int               `json:"quantity"`
	TotalPrice ctPriceValue      `json:"totalPrice"`
}

type ctShippingInfo struct {
	ShippingMethodName string `json:"shippingMethodName,omitempty"`
	ShippingMethod     *ctRef `json:"shippingMethod,omitempty"`
}

type ctCart struct {
	Type                  string          `json:"type,omitempty"`
	ID                    string          `json:"id"`
	Version               int64           `json:"version"`
	CustomerID            string          `json:"customerId,omitempty"`
	CustomerEmail         string          `json:"customerEmail,omitempty"`
	CartState             string          `json:"cartState"`
	LineItems             []ctLineItem    `json:"lineItems"`
	TotalPrice            ctPriceValue    `json:"totalPrice"`
	TaxedPrice            *ctTaxedPrice   `json:"taxedPrice,omitempty"`
	TotalLineItemQuantity int             `json:"totalLineItemQuantity,omitempty"`
	ShippingAddress       *ctAddress      `json:"shippingAddress,omitempty"`
	BillingAddress        *ctAddress      `json:"billingAddress,omitempty"`
	ShippingInfo          *ctShippingInfo `json:"shippingInfo,omitempty"`
}

type ctOrder struct {
	Type          string        `json:"type,omitempty"`
	ID            string        `json:"id"`
	Version       int64         `json:"version"`
	OrderNumber   string        `json:"orderNumber,omitempty"`
	CustomerID    string        `json:"customerId,omitempty"`
	CustomerEmail string        `json:"customerEmail,omitempty"`
	OrderState    string        `json:"orderState"`
	LineItems     []ctLineItem  `json:"lineItems"`
	TotalPrice    ctPriceValue  `json:"totalPrice"`
	TaxedPrice    *ctTaxedPrice `json:"taxedPrice,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type ctCustomer struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ctCustomerSignInResult struct {
	Customer ctCustomer `json:"customer"`
}

type ctLineItemDraft struct {
	ProductID string `json:"productId"`
	VariantID int    `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

type ctCartDraft struct {
	Currency  string            `json:"currency"`
	LineItems []ctLineItemDraft `json:"lineItems,omitempty"`
}

type ctUpdate struct {
	Version int64            `json:"version"`
	Actions []json.Marshaler `json:"actions"`
}

type ctOrderFromCartDraft struct {
	Cart        ctRef  `json:"cart"`
	Version     int64  `json:"version"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

type ctCustomFieldsDraft struct {
	Type   ctRef          `json:"type"`
	Fields map[string]any `json:"fields"`
}

type ctCustomerDraft struct {
	Email     string               `json:"email"`
	Password  string               `json:"password"`
	FirstName string               `json:"firstName,omitempty"`
	Custom    *ctCustomFieldsDraft `json:"custom,omitempty"`
}

func toMoney(v ctPriceValue) domain.Money {
	return domain.Money{
		CentAmount:     v.CentAmount,
		CurrencyCode:   v.CurrencyCode,
		FractionDigits: v.FractionDigits,
	}
}

func toTaxedPrice(t *ctTaxedPrice) *domain.TaxedPrice {
	if t == nil {
		return nil
	}
	return &domain.TaxedPrice{TotalNet: toMoney(t.TotalNet), TotalGross: toMoney(t.TotalGross)}
}

func toAddress(a *ctAddress) *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		StreetName: a.StreetName,
		Country:    a.Country,
		City:       a.City,
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
		Email:      a.Email,
	}
}

func fromDomainAddress(a domain.Address) ctAddress {
	return ctAddress{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		StreetName: a.StreetName,
		Country:    a.Country,
		City:       a.City,
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
		Email:      a.Email,
	}
}

func toVariant(v ctVariant) domain.Variant {
	out := domain.Variant{
		ID:         v.ID,
		SKU:        v.SKU,
		Prices:     make([]domain.Price, 0, len(v.Prices)),
		Images:     make([]domain.Image, 0, len(v.Images)),
		Attributes: make([]domain.Attribute, 0, len(v.Attributes)),
	}
	for _, p := range v.Prices {
		out.Prices = append(out.Prices, domain.Price{ID: p.ID, Value: toMoney(p.Value)})
	}
	for _, img := range v.Images {
		image := domain.Image{URL: img.URL, Label: img.Label}
		if img.Dimensions != nil {
			image.Width = img.Dimensions.W
			image.Height = img.Dimensions.H
		}
		out.Images = append(out.Images, image)
	}
	for _, a := range v.Attributes {
		out.Attributes = append(out.Attributes, domain.Attribute{Name: a.Name, Value: attributeText(a.Value)})
	}
	return out
}

// attributeText unquotes string values and keeps any other JSON value verbatim.
func attributeText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func toProduct(p ctProductProjection) domain.Product {
	out := domain.Product{
		ID:              p.ID,
		Key:             p.Key,
		Version:         p.Version,
		Name:            domain.LocalizedString(p.Name),
		Slug:            domain.LocalizedString(p.Slug),
		MetaDescription: domain.LocalizedString(p.MetaDescription),
		MasterVariant:   toVariant(p.MasterVariant),
		Variants:        make([]domain.Variant, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, toVariant(v))
	}
	return out
}

func toLineItems(lines []ctLineItem) ([]domain.LineItem, int) {
	out := make([]domain.LineItem, 0, len(lines))
	qty := 0
	for _, l := range lines {
		out = append(out, domain.LineItem{
			ID:         l.ID,
			ProductID:  l.ProductID,
			ProductKey: l.ProductKey,
			Name:       domain.LocalizedString(l.Name),
			Variant:    toVariant(l.Variant),
			Price:      toMoney(l.Price.Value),
			Quantity:   l.Quantity,
			TotalPrice: toMoney(l.TotalPrice),
		})
		qty += l.Quantity
	}
	return out, qty
}

func toCart(c ctCart) *domain.Cart {
	lines, qty := toLineItems(c.LineItems)
	cart := &domain.Cart{
		ID:                    c.ID,
		Version:               c.Version,
		CustomerID:            c.CustomerID,
		CustomerEmail:         c.CustomerEmail,
		State:                 c.CartState,
		LineItems:             lines,
		TotalPrice:            toMoney(c.TotalPrice),
		TaxedPrice:            toTaxedPrice(c.TaxedPrice),
		TotalLineItemQuantity: c.TotalLineItemQuantity,
		ShippingAddress:       toAddress(c.ShippingAddress),
		BillingAddress:        toAddress(c.BillingAddress),
	}
	// The platform omits totalLineItemQuantity for empty carts.
	if cart.TotalLineItemQuantity == 0 {
		cart.TotalLineItemQuantity = qty
	}
	if c.ShippingInfo != nil && c.ShippingInfo.ShippingMethod != nil {
		cart.ShippingMethodID = c.ShippingInfo.ShippingMethod.ID
	}
	return cart
}

func toOrder(o ctOrder) *domain.Order {
	lines, _ := toLineItems(o.LineItems)
	return &domain.Order{
		ID:            o.ID,
		Version:       o.Version,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerEmail: o.CustomerEmail,
		State:         o.OrderState,
		LineItems:     lines,
		TotalPrice:    toMoney(o.TotalPrice),
		TaxedPrice:    toTaxedPrice(o.TaxedPrice),
		CreatedAt:     o.CreatedAt,
	}
}

func toCustomer(c ctCustomer) *domain.Customer {
	return &domain.Customer{
		ID:        c.ID,
		Version:   c.Version,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CreatedAt: c.CreatedAt,
	}
}
