// Package commercetest provides an in-memory commerce platform that enforces the same
// optimistic-concurrency rules as the real one. It is intended for tests.
package commercetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"commercetools-gateway/internal/commerce"
	"commercetools-gateway/internal/domain"
)

// Platform is a versioned in-memory implementation of commerce.Client.
type Platform struct {
	mu          sync.Mutex
	seq         int
	products    map[string]domain.Product
	suggestions []string
	carts       map[string]*domain.Cart
	orders      map[string]*domain.Order
	orderIDs    []string
	customers   map[string]*domain.Customer
	passwords   map[string]string
	sessions    map[string]domain.Session
	failures    map[string]error
	calls       []string
}

var _ commerce.Client = (*Platform)(nil)

func New() *Platform {
	return &Platform{
		products:  make(map[string]domain.Product),
		carts:     make(map[string]*domain.Cart),
		orders:    make(map[string]*domain.Order),
		customers: make(map[string]*domain.Customer),
		passwords: make(map[string]string),
		sessions:  make(map[string]domain.Session),
		failures:  make(map[string]error),
	}
}

// AddProduct registers a catalog product.
func (p *Platform) AddProduct(prod domain.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products[prod.ID] = prod
}

// SetSuggestions sets the keywords returned by Suggest.
func (p *Platform) SetSuggestions(s ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suggestions = append([]string(nil), s...)
}

// AddOrder stores an order as-is. Zero versions are bumped to 1.
func (p *Platform) AddOrder(o domain.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if o.Version == 0 {
		o.Version = 1
	}
	clone := cloneOrder(o)
	p.orders[o.ID] = &clone
	p.orderIDs = append(p.orderIDs, o.ID)
}

// AddSession makes token resolve to s in CurrentSession.
func (p *Platform) AddSession(token string, s domain.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[token] = s
}

// FailOn makes the named operation return err. Key is "op" or "op:resourceID".
func (p *Platform) FailOn(key string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[key] = err
}

// Cart returns a snapshot of a stored cart.
func (p *Platform) Cart(id string) (domain.Cart, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.carts[id]
	if !ok {
		return domain.Cart{}, false
	}
	return cloneCart(*c), true
}

// Order returns a snapshot of a stored order.
func (p *Platform) Order(id string) (domain.Order, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return cloneOrder(*o), true
}

// Customer returns a stored customer by email and the password it was created with.
func (p *Platform) Customer(email string) (domain.Customer, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.customers[email]
	if !ok {
		return domain.Customer{}, "", false
	}
	return *c, p.passwords[email], true
}

// Calls returns the operations issued so far, in order.
func (p *Platform) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *Platform) ListProducts(_ context.Context) ([]domain.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("listProducts", ""); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(p.products))
	for _, prod := range p.products {
		out = append(out, prod)
	}
	return out, nil
}

func (p *Platform) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("getProduct", id); err != nil {
		return nil, err
	}
	prod, ok := p.products[id]
	if !ok {
		return nil, domain.E("getProduct", domain.ErrNotFound, nil)
	}
	return &prod, nil
}

func (p *Platform) SearchProducts(_ context.Context, text string, limit int, _ bool) ([]domain.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("searchProducts", ""); err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, prod := range p.products {
		if containsFold(prod.Name.Get("en"), text) {
			out = append(out, prod)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (p *Platform) Suggest(_ context.Context, prefix string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("suggest", ""); err != nil {
		return nil, err
	}
	var out []string
	for _, s := range p.suggestions {
		if containsFold(s, prefix) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *Platform) CreateCart(_ context.Context, currency string, initial domain.LineItemDraft) (*domain.Cart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("createCart", ""); err != nil {
		return nil, err
	}
	cart := &domain.Cart{
		ID:         p.nextID("cart"),
		Version:    1,
		State:      "Active",
		LineItems:  []domain.LineItem{},
		TotalPrice: domain.Money{CurrencyCode: currency, FractionDigits: 2},
	}
	if initial.ProductID != "" {
		if err := p.addLine(cart, initial.ProductID, initial.VariantID, initial.Quantity); err != nil {
			return nil, err
		}
	}
	p.carts[cart.ID] = cart
	out := cloneCart(*cart)
	return &out, nil
}

func (p *Platform) GetCart(_ context.Context, id string) (*domain.Cart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("getCart", id); err != nil {
		return nil, err
	}
	cart, ok := p.carts[id]
	if !ok {
		return nil, domain.E("getCart", domain.ErrNotFound, nil)
	}
	out := cloneCart(*cart)
	return &out, nil
}

func (p *Platform) UpdateCart(_ context.Context, id string, expectedVersion int64, action commerce.CartAction) (*domain.Cart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	op := "updateCart." + action.ActionName()
	if err := p.record(op, id); err != nil {
		return nil, err
	}
	cart, ok := p.carts[id]
	if !ok {
		return nil, domain.E(op, domain.ErrNotFound, nil)
	}
	if cart.Version != expectedVersion {
		return nil, &domain.ConflictError{Op: op, ResourceID: id, ExpectedVersion: expectedVersion, CurrentVersion: cart.Version}
	}
	// Mutate a copy so a rejected action leaves the stored cart untouched.
	next := cloneCart(*cart)
	switch a := action.(type) {
	case commerce.AddLineItem:
		if err := p.addLine(&next, a.ProductID, a.VariantID, a.Quantity); err != nil {
			return nil, err
		}
	case commerce.RemoveLineItem:
		idx := lineIndex(next.LineItems, a.LineItemID)
		if idx < 0 {
			return nil, domain.Invalid(op, "line item %s not found", a.LineItemID)
		}
		next.LineItems = append(next.LineItems[:idx], next.LineItems[idx+1:]...)
	case commerce.ChangeLineItemQuantity:
		idx := lineIndex(next.LineItems, a.LineItemID)
		if idx < 0 {
			return nil, domain.Invalid(op, "line item %s not found", a.LineItemID)
		}
		if a.Quantity == 0 {
			next.LineItems = append(next.LineItems[:idx], next.LineItems[idx+1:]...)
		} else {
			next.LineItems[idx].Quantity = a.Quantity
		}
	case commerce.SetShippingAddress:
		addr := a.Address
		next.ShippingAddress = &addr
	case commerce.SetBillingAddress:
		addr := a.Address
		next.BillingAddress = &addr
	case commerce.SetShippingMethod:
		next.ShippingMethodID = a.ShippingMethodID
	case commerce.SetCustomerEmail:
		next.CustomerEmail = a.Email
	default:
		return nil, domain.Invalid(op, "unsupported action %s", action.ActionName())
	}
	recalculate(&next)
	next.Version++
	*cart = next
	out := cloneCart(next)
	return &out, nil
}

func (p *Platform) CreateOrder(_ context.Context, cartID string, expectedVersion int64, orderNumber string) (*domain.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	const op = "createOrder"
	if err := p.record(op, cartID); err != nil {
		return nil, err
	}
	cart, ok := p.carts[cartID]
	if !ok {
		return nil, domain.E(op, domain.ErrNotFound, nil)
	}
	if cart.Version != expectedVersion {
		return nil, &domain.ConflictError{Op: op, ResourceID: cartID, ExpectedVersion: expectedVersion, CurrentVersion: cart.Version}
	}
	if cart.State == "Ordered" {
		return nil, domain.Invalid(op, "cart %s already ordered", cartID)
	}
	snapshot := cloneCart(*cart)
	order := &domain.Order{
		ID:            p.nextID("order"),
		Version:       1,
		OrderNumber:   orderNumber,
		CustomerID:    cart.CustomerID,
		CustomerEmail: cart.CustomerEmail,
		State:         "Open",
		LineItems:     snapshot.LineItems,
		TotalPrice:    snapshot.TotalPrice,
		CreatedAt:     time.Now().UTC(),
	}
	p.orders[order.ID] = order
	p.orderIDs = append(p.orderIDs, order.ID)
	cart.State = "Ordered"
	cart.Version++
	out := cloneOrder(*order)
	return &out, nil
}

func (p *Platform) ListOrders(_ context.Context, email string) ([]domain.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("listOrders", ""); err != nil {
		return nil, err
	}
	var out []domain.Order
	for _, id := range p.orderIDs {
		if o := p.orders[id]; o.CustomerEmail == email {
			out = append(out, cloneOrder(*o))
		}
	}
	return out, nil
}

func (p *Platform) UpdateOrder(_ context.Context, id string, expectedVersion int64, action commerce.OrderAction) (*domain.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	op := "updateOrder." + action.ActionName()
	if err := p.record(op, id); err != nil {
		return nil, err
	}
	order, ok := p.orders[id]
	if !ok {
		return nil, domain.E(op, domain.ErrNotFound, nil)
	}
	if order.Version != expectedVersion {
		return nil, &domain.ConflictError{Op: op, ResourceID: id, ExpectedVersion: expectedVersion, CurrentVersion: order.Version}
	}
	switch a := action.(type) {
	case commerce.SetCustomerID:
		order.CustomerID = a.CustomerID
	default:
		return nil, domain.Invalid(op, "unsupported action %s", action.ActionName())
	}
	order.Version++
	out := cloneOrder(*order)
	return &out, nil
}

func (p *Platform) SignupCustomer(_ context.Context, draft domain.CustomerDraft) (*domain.Customer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	const op = "signupCustomer"
	if err := p.record(op, ""); err != nil {
		return nil, err
	}
	if _, exists := p.customers[draft.Email]; exists {
		return nil, domain.E(op, domain.ErrAlreadyExists, nil)
	}
	c := &domain.Customer{
		ID:        p.nextID("customer"),
		Version:   1,
		Email:     draft.Email,
		FirstName: draft.FirstName,
		Phone:     draft.Phone,
		CreatedAt: time.Now().UTC(),
	}
	p.customers[draft.Email] = c
	p.passwords[draft.Email] = draft.Password
	out := *c
	return &out, nil
}

func (p *Platform) PasswordGrantToken(_ context.Context, username, password string) (*domain.AccessToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	const op = "passwordGrantToken"
	if err := p.record(op, ""); err != nil {
		return nil, err
	}
	c, ok := p.customers[username]
	if !ok || p.passwords[username] != password {
		return nil, domain.E(op, domain.ErrUnauthenticated, nil)
	}
	token := p.nextID("token")
	p.sessions[token] = domain.Session{CustomerID: c.ID, Email: c.Email, Version: c.Version}
	return &domain.AccessToken{
		AccessToken:  token,
		TokenType:    "Bearer",
		RefreshToken: "refresh-" + token,
		ExpiresIn:    172800,
		Scope:        "manage_my_profile",
	}, nil
}

func (p *Platform) CurrentSession(_ context.Context, token string) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	const op = "currentSession"
	if err := p.record(op, ""); err != nil {
		return nil, err
	}
	s, ok := p.sessions[token]
	if !ok {
		return nil, domain.E(op, domain.ErrUnauthenticated, nil)
	}
	return &s, nil
}

// record must be called with mu held.
func (p *Platform) record(op, id string) error {
	p.calls = append(p.calls, op)
	if id != "" {
		if err, ok := p.failures[op+":"+id]; ok {
			return err
		}
	}
	return p.failures[op]
}

func (p *Platform) nextID(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s-%d", prefix, p.seq)
}

func (p *Platform) addLine(cart *domain.Cart, productID string, variantID, quantity int) error {
	prod, ok := p.products[productID]
	if !ok {
		return domain.Invalid("addLineItem", "product %s not found", productID)
	}
	if variantID == 0 {
		variantID = 1
	}
	if quantity == 0 {
		quantity = 1
	}
	for i := range cart.LineItems {
		if cart.LineItems[i].ProductID == productID && cart.LineItems[i].Variant.ID == variantID {
			cart.LineItems[i].Quantity += quantity
			recalculate(cart)
			return nil
		}
	}
	price := domain.Money{CurrencyCode: cart.TotalPrice.CurrencyCode, FractionDigits: 2}
	if len(prod.MasterVariant.Prices) > 0 {
		price = prod.MasterVariant.Prices[0].Value
	}
	variant := prod.MasterVariant
	variant.ID = variantID
	cart.LineItems = append(cart.LineItems, domain.LineItem{
		ID:         p.nextID("line"),
		ProductID:  productID,
		ProductKey: prod.Key,
		Name:       prod.Name,
		Variant:    variant,
		Price:      price,
		Quantity:   quantity,
	})
	recalculate(cart)
	return nil
}

func recalculate(cart *domain.Cart) {
	var total int64
	qty := 0
	for i := range cart.LineItems {
		line := &cart.LineItems[i]
		line.TotalPrice = domain.Money{
			CentAmount:     line.Price.CentAmount * int64(line.Quantity),
			CurrencyCode:   line.Price.CurrencyCode,
			FractionDigits: line.Price.FractionDigits,
		}
		total += line.TotalPrice.CentAmount
		qty += line.Quantity
	}
	cart.TotalPrice.CentAmount = total
	cart.TotalLineItemQuantity = qty
}

func lineIndex(lines []domain.LineItem, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func cloneCart(c domain.Cart) domain.Cart {
	c.LineItems = append([]domain.LineItem{}, c.LineItems...)
	if c.ShippingAddress != nil {
		addr := *c.ShippingAddress
		c.ShippingAddress = &addr
	}
	if c.BillingAddress != nil {
		addr := *c.BillingAddress
		c.BillingAddress = &addr
	}
	return c
}

func cloneOrder(o domain.Order) domain.Order {
	o.LineItems = append([]domain.LineItem{}, o.LineItems...)
	return o
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
