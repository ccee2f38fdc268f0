package commerce

import (
	"encoding/json"

	"commercetools-gateway/internal/domain"
)

// CartAction is a single cart update action. The set of implementations is closed:
// only the types in this file satisfy it.
type CartAction interface {
	json.Marshaler
	ActionName() string
	cartAction()
}

// OrderAction is a single order update action.
type OrderAction interface {
	json.Marshaler
	ActionName() string
	orderAction()
}

type AddLineItem struct {
	ProductID string
	VariantID int
	Quantity  int
}

type RemoveLineItem struct {
	LineItemID string
}

type ChangeLineItemQuantity struct {
	LineItemID string
	Quantity   int
}

type SetShippingAddress struct {
	Address domain.Address
}

type SetBillingAddress struct {
	Address domain.Address
}

type SetShippingMethod struct {
	ShippingMethodID string
}

type SetCustomerEmail struct {
	Email string
}

// SetCustomerID binds an order to a customer.
type SetCustomerID struct {
	CustomerID string
}

func (AddLineItem) ActionName() string            { return "addLineItem" }
func (RemoveLineItem) ActionName() string         { return "removeLineItem" }
func (ChangeLineItemQuantity) ActionName() string { return "changeLineItemQuantity" }
func (SetShippingAddress) ActionName() string     { return "setShippingAddress" }
func (SetBillingAddress) ActionName() string      { return "setBillingAddress" }
func (SetShippingMethod) ActionName() string      { return "setShippingMethod" }
func (SetCustomerEmail) ActionName() string       { return "setCustomerEmail" }
func (SetCustomerID) ActionName() string          { return "setCustomerId" }

func (AddLineItem) cartAction()            {}
func (RemoveLineItem) cartAction()         {}
func (ChangeLineItemQuantity) cartAction() {}
func (SetShippingAddress) cartAction()     {}
func (SetBillingAddress) cartAction()      {}
func (SetShippingMethod) cartAction()      {}
func (SetCustomerEmail) cartAction()       {}
func (SetCustomerID) orderAction()         {}

func (a AddLineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action    string `json:"action"`
		ProductID string `json:"productId"`
		VariantID int    `json:"variantId,omitempty"`
		Quantity  int    `json:"quantity,omitempty"`
	}{a.ActionName(), a.ProductID, a.VariantID, a.Quantity})
}

func (a RemoveLineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action     string `json:"action"`
		LineItemID string `json:"lineItemId"`
	}{a.ActionName(), a.LineItemID})
}

func (a ChangeLineItemQuantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action     string `json:"action"`
		LineItemID string `json:"lineItemId"`
		Quantity   int    `json:"quantity"`
	}{a.ActionName(), a.LineItemID, a.Quantity})
}

func (a SetShippingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action  string    `json:"action"`
		Address ctAddress `json:"address"`
	}{a.ActionName(), fromDomainAddress(a.Address)})
}

func (a SetBillingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action  string    `json:"action"`
		Address ctAddress `json:"address"`
	}{a.ActionName(), fromDomainAddress(a.Address)})
}

func (a SetShippingMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action         string `json:"action"`
		ShippingMethod ctRef  `json:"shippingMethod"`
	}{a.ActionName(), ctRef{TypeID: "shipping-method", ID: a.ShippingMethodID}})
}

func (a SetCustomerEmail) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action string `json:"action"`
		Email  string `json:"email"`
	}{a.ActionName(), a.Email})
}

func (a SetCustomerID) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action     string `json:"action"`
		CustomerID string `json:"customerId"`
	}{a.ActionName(), a.CustomerID})
}
