package httpserver

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/service/guestorder"
	"commercetools-gateway/internal/service/social"
)

// int32Of narrows platform integers to GraphQL Int.
func int32Of(field string, v int64) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%s %d exceeds GraphQL Int range", field, v)
	}
	return int32(v), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type localizedResolver struct{ s domain.LocalizedString }

func (r localizedResolver) En() *string { return optional(r.s.Get("en")) }

func (r localizedResolver) Value(args struct{ Locale string }) *string {
	return optional(r.s.Get(args.Locale))
}

type moneyResolver struct{ m domain.Money }

func (r moneyResolver) CentAmount() (int32, error) { return int32Of("centAmount", r.m.CentAmount) }
func (r moneyResolver) CurrencyCode() string       { return r.m.CurrencyCode }
func (r moneyResolver) FractionDigits() int32      { return int32(r.m.FractionDigits) }

type taxedPriceResolver struct{ t domain.TaxedPrice }

func (r taxedPriceResolver) TotalNet() moneyResolver   { return moneyResolver{r.t.TotalNet} }
func (r taxedPriceResolver) TotalGross() moneyResolver { return moneyResolver{r.t.TotalGross} }

func taxedPrice(t *domain.TaxedPrice) *taxedPriceResolver {
	if t == nil {
		return nil
	}
	return &taxedPriceResolver{*t}
}

type priceResolver struct{ p domain.Price }

func (r priceResolver) ID() *string          { return optional(r.p.ID) }
func (r priceResolver) Value() moneyResolver { return moneyResolver{r.p.Value} }

type imageResolver struct{ i domain.Image }

func (r imageResolver) URL() string    { return r.i.URL }
func (r imageResolver) Label() *string { return optional(r.i.Label) }

func (r imageResolver) Width() *int32 {
	if r.i.Width == 0 {
		return nil
	}
	w := int32(r.i.Width)
	return &w
}

func (r imageResolver) Height() *int32 {
	if r.i.Height == 0 {
		return nil
	}
	h := int32(r.i.Height)
	return &h
}

type attributeResolver struct{ a domain.Attribute }

func (r attributeResolver) Name() string  { return r.a.Name }
func (r attributeResolver) Value() string { return r.a.Value }

type variantResolver struct{ v domain.Variant }

func (r variantResolver) ID() int32          { return int32(r.v.ID) }
func (r variantResolver) ListingID() *string { return optional(r.v.ListingID) }
func (r variantResolver) SKU() *string       { return optional(r.v.SKU) }

func (r variantResolver) Prices() []priceResolver {
	out := make([]priceResolver, 0, len(r.v.Prices))
	for _, p := range r.v.Prices {
		out = append(out, priceResolver{p})
	}
	return out
}

func (r variantResolver) Images() []imageResolver {
	out := make([]imageResolver, 0, len(r.v.Images))
	for _, i := range r.v.Images {
		out = append(out, imageResolver{i})
	}
	return out
}

func (r variantResolver) Attributes() []attributeResolver {
	out := make([]attributeResolver, 0, len(r.v.Attributes))
	for _, a := range r.v.Attributes {
		out = append(out, attributeResolver{a})
	}
	return out
}

type productResolver struct{ p domain.Product }

func (r productResolver) ID() string                         { return r.p.ID }
func (r productResolver) Key() *string                       { return optional(r.p.Key) }
func (r productResolver) Version() (int32, error)            { return int32Of("version", r.p.Version) }
func (r productResolver) Name() localizedResolver            { return localizedResolver{r.p.Name} }
func (r productResolver) Slug() localizedResolver            { return localizedResolver{r.p.Slug} }
func (r productResolver) MetaDescription() localizedResolver { return localizedResolver{r.p.MetaDescription} }
func (r productResolver) MasterVariant() variantResolver     { return variantResolver{r.p.MasterVariant} }

func (r productResolver) Variants() []variantResolver {
	out := make([]variantResolver, 0, len(r.p.Variants))
	for _, v := range r.p.Variants {
		out = append(out, variantResolver{v})
	}
	return out
}

func products(in []domain.Product) []productResolver {
	out := make([]productResolver, 0, len(in))
	for _, p := range in {
		out = append(out, productResolver{p})
	}
	return out
}

type suggestionResolver struct{ text string }

func (r suggestionResolver) Text() string { return r.text }

type addressResolver struct{ a domain.Address }

func (r addressResolver) FirstName() *string  { return optional(r.a.FirstName) }
func (r addressResolver) LastName() *string   { return optional(r.a.LastName) }
func (r addressResolver) StreetName() *string { return optional(r.a.StreetName) }
func (r addressResolver) Country() string     { return r.a.Country }
func (r addressResolver) City() *string       { return optional(r.a.City) }
func (r addressResolver) PostalCode() *string { return optional(r.a.PostalCode) }
func (r addressResolver) Phone() *string      { return optional(r.a.Phone) }
func (r addressResolver) Email() *string      { return optional(r.a.Email) }

func address(a *domain.Address) *addressResolver {
	if a == nil {
		return nil
	}
	return &addressResolver{*a}
}

// addressInput mirrors the AddressInput GraphQL input.
type addressInput struct {
	FirstName  *string
	LastName   *string
	StreetName *string
	Country    string
	City       *string
	PostalCode *string
	Phone      *string
	Email      *string
}

func (in addressInput) toDomain() domain.Address {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return domain.Address{
		FirstName:  deref(in.FirstName),
		LastName:   deref(in.LastName),
		StreetName: deref(in.StreetName),
		Country:    in.Country,
		City:       deref(in.City),
		PostalCode: deref(in.PostalCode),
		Phone:      deref(in.Phone),
		Email:      deref(in.Email),
	}
}

type lineItemResolver struct{ l domain.LineItem }

func (r lineItemResolver) ID() string                 { return r.l.ID }
func (r lineItemResolver) ProductID() string          { return r.l.ProductID }
func (r lineItemResolver) ProductKey() *string        { return optional(r.l.ProductKey) }
func (r lineItemResolver) Name() localizedResolver    { return localizedResolver{r.l.Name} }
func (r lineItemResolver) Variant() variantResolver   { return variantResolver{r.l.Variant} }
func (r lineItemResolver) Price() moneyResolver       { return moneyResolver{r.l.Price} }
func (r lineItemResolver) Quantity() int32            { return int32(r.l.Quantity) }
func (r lineItemResolver) TotalPrice() moneyResolver  { return moneyResolver{r.l.TotalPrice} }

func lineItems(in []domain.LineItem) []lineItemResolver {
	out := make([]lineItemResolver, 0, len(in))
	for _, l := range in {
		out = append(out, lineItemResolver{l})
	}
	return out
}

type cartResolver struct{ c *domain.Cart }

func (r cartResolver) ID() string                      { return r.c.ID }
func (r cartResolver) Version() (int32, error)         { return int32Of("version", r.c.Version) }
func (r cartResolver) VersionID() string               { return strconv.FormatInt(r.c.Version, 10) }
func (r cartResolver) CartState() string               { return r.c.State }
func (r cartResolver) CustomerID() *string             { return optional(r.c.CustomerID) }
func (r cartResolver) CustomerEmail() *string          { return optional(r.c.CustomerEmail) }
func (r cartResolver) LineItems() []lineItemResolver   { return lineItems(r.c.LineItems) }
func (r cartResolver) TotalPrice() moneyResolver       { return moneyResolver{r.c.TotalPrice} }
func (r cartResolver) TaxedPrice() *taxedPriceResolver { return taxedPrice(r.c.TaxedPrice) }
func (r cartResolver) TotalLineItemQuantity() int32    { return int32(r.c.TotalLineItemQuantity) }
func (r cartResolver) ShippingAddress() *addressResolver {
	return address(r.c.ShippingAddress)
}
func (r cartResolver) BillingAddress() *addressResolver { return address(r.c.BillingAddress) }
func (r cartResolver) ShippingMethodID() *string        { return optional(r.c.ShippingMethodID) }

type orderResolver struct{ o *domain.Order }

func (r orderResolver) ID() string                      { return r.o.ID }
func (r orderResolver) Version() (int32, error)         { return int32Of("version", r.o.Version) }
func (r orderResolver) VersionID() string               { return strconv.FormatInt(r.o.Version, 10) }
func (r orderResolver) OrderNumber() *string            { return optional(r.o.OrderNumber) }
func (r orderResolver) OrderState() string              { return r.o.State }
func (r orderResolver) CustomerID() *string             { return optional(r.o.CustomerID) }
func (r orderResolver) CustomerEmail() *string          { return optional(r.o.CustomerEmail) }
func (r orderResolver) LineItems() []lineItemResolver   { return lineItems(r.o.LineItems) }
func (r orderResolver) TotalPrice() moneyResolver       { return moneyResolver{r.o.TotalPrice} }
func (r orderResolver) TaxedPrice() *taxedPriceResolver { return taxedPrice(r.o.TaxedPrice) }
func (r orderResolver) CreatedAt() string               { return r.o.CreatedAt.UTC().Format(time.RFC3339) }

type socialResolver struct{ r *social.Result }

func (s socialResolver) SignupWithSocial() *bool { return s.r.SignupWithSocial }
func (s socialResolver) LoginWithSocial() *bool  { return s.r.LoginWithSocial }

type accessTokenResolver struct{ t *domain.AccessToken }

func (r accessTokenResolver) AccessToken() string   { return r.t.AccessToken }
func (r accessTokenResolver) TokenType() string     { return r.t.TokenType }
func (r accessTokenResolver) RefreshToken() *string { return optional(r.t.RefreshToken) }
func (r accessTokenResolver) ExpiresIn() int32      { return int32(r.t.ExpiresIn) }
func (r accessTokenResolver) Scope() *string        { return optional(r.t.Scope) }

type existenceResolver struct{ exists bool }

func (r existenceResolver) UserExist() bool { return r.exists }

type guestReportResolver struct{ r *guestorder.Report }

func (g guestReportResolver) CustomerID() string { return g.r.CustomerID }
func (g guestReportResolver) Email() string      { return g.r.Email }
func (g guestReportResolver) Failed() int32      { return int32(g.r.Failed()) }

func (g guestReportResolver) Results() []guestResultResolver {
	out := make([]guestResultResolver, 0, len(g.r.Results))
	for _, res := range g.r.Results {
		out = append(out, guestResultResolver{res})
	}
	return out
}

type guestResultResolver struct{ res guestorder.Result }

func (g guestResultResolver) OrderID() string { return g.res.OrderID }
func (g guestResultResolver) Ok() bool        { return g.res.Err == nil }

func (g guestResultResolver) Order() *orderResolver {
	if g.res.Order == nil {
		return nil
	}
	return &orderResolver{g.res.Order}
}

func (g guestResultResolver) Error() *resultErrorResolver {
	if g.res.Err == nil {
		return nil
	}
	pub := publicError(g.res.Err)
	code, _ := pub.extensions["code"].(string)
	return &resultErrorResolver{code: code, message: pub.message}
}

type resultErrorResolver struct{ code, message string }

func (r resultErrorResolver) Code() string    { return r.code }
func (r resultErrorResolver) Message() string { return r.message }
