package cart

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strconv"
	"strings"

	"commercetools-gateway/internal/commerce"
	"commercetools-gateway/internal/domain"
	"go.uber.org/zap"
)

// Order numbers are drawn uniformly from [orderNumberMin, orderNumberMax).
var (
	orderNumberMin = big.NewInt(10_000_000)
	orderNumberMax = big.NewInt(9_999_999_999)
)

// Service sequences single-action versioned cart updates. Every mutating method issues
// exactly one request carrying one action; conflicts are returned to the caller untouched.
type Service struct {
	platform    cartPlatform
	currency    string
	logger      *zap.Logger
	orderNumber func() (string, error)
}

type cartPlatform interface {
	CreateCart(ctx context.Context, currency string, initial domain.LineItemDraft) (*domain.Cart, error)
	GetCart(ctx context.Context, id string) (*domain.Cart, error)
	UpdateCart(ctx context.Context, id string, expectedVersion int64, action commerce.CartAction) (*domain.Cart, error)
	CreateOrder(ctx context.Context, cartID string, expectedVersion int64, orderNumber string) (*domain.Order, error)
}

func New(platform cartPlatform, currency string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(currency) == "" {
		currency = "EUR"
	}
	return &Service{platform: platform, currency: currency, logger: logger, orderNumber: NewOrderNumber}
}

// ParseVersion converts a client-supplied version string into an expected version.
func ParseVersion(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.Invalid("parseVersion", "version must be a positive integer, got %q", raw)
	}
	return v, nil
}

// Create starts a cart holding one unit of productID.
func (s *Service) Create(ctx context.Context, productID string) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.Invalid("createCart", "product id is required")
	}
	cart, err := s.platform.CreateCart(ctx, s.currency, domain.LineItemDraft{ProductID: productID, Quantity: 1})
	if err != nil {
		return nil, err
	}
	s.logger.Info("cart created", zap.String("cart_id", cart.ID), zap.Int64("version", cart.Version))
	return cart, nil
}

func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, domain.Invalid("getCart", "cart id is required")
	}
	return s.platform.GetCart(ctx, cartID)
}

func (s *Service) AddLineItem(ctx context.Context, cartID string, version int64, productID string, quantity int) (*domain.Cart, error) {
	const op = "addLineItem"
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.Invalid(op, "product id is required")
	}
	if quantity <= 0 {
		return nil, domain.Invalid(op, "quantity must be positive")
	}
	return s.update(ctx, op, cartID, version, commerce.AddLineItem{ProductID: productID, VariantID: 1, Quantity: quantity})
}

func (s *Service) RemoveLineItem(ctx context.Context, cartID string, version int64, lineItemID string) (*domain.Cart, error) {
	const op = "removeLineItem"
	lineItemID = strings.TrimSpace(lineItemID)
	if lineItemID == "" {
		return nil, domain.Invalid(op, "line item id is required")
	}
	return s.update(ctx, op, cartID, version, commerce.RemoveLineItem{LineItemID: lineItemID})
}

func (s *Service) ChangeLineItemQuantity(ctx context.Context, cartID string, version int64, lineItemID string, quantity int) (*domain.Cart, error) {
	const op = "changeLineItemQuantity"
	lineItemID = strings.TrimSpace(lineItemID)
	if lineItemID == "" {
		return nil, domain.Invalid(op, "line item id is required")
	}
	if quantity <= 0 {
		return nil, domain.Invalid(op, "quantity must be positive")
	}
	return s.update(ctx, op, cartID, version, commerce.ChangeLineItemQuantity{LineItemID: lineItemID, Quantity: quantity})
}

func (s *Service) SetShippingAddress(ctx context.Context, cartID string, version int64, addr domain.Address) (*domain.Cart, error) {
	const op = "setShippingAddress"
	if err := validateAddress(op, addr); err != nil {
		return nil, err
	}
	return s.update(ctx, op, cartID, version, commerce.SetShippingAddress{Address: addr})
}

func (s *Service) SetBillingAddress(ctx context.Context, cartID string, version int64, addr domain.Address) (*domain.Cart, error) {
	const op = "setBillingAddress"
	if err := validateAddress(op, addr); err != nil {
		return nil, err
	}
	return s.update(ctx, op, cartID, version, commerce.SetBillingAddress{Address: addr})
}

func (s *Service) SetShippingMethod(ctx context.Context, cartID string, version int64, shippingMethodID string) (*domain.Cart, error) {
	const op = "setShippingMethod"
	shippingMethodID = strings.TrimSpace(shippingMethodID)
	if shippingMethodID == "" {
		return nil, domain.Invalid(op, "shipping method id is required")
	}
	return s.update(ctx, op, cartID, version, commerce.SetShippingMethod{ShippingMethodID: shippingMethodID})
}

// SetGuestEmail records the checkout email of a shopper without an account.
func (s *Service) SetGuestEmail(ctx context.Context, cartID string, version int64, email string) (*domain.Cart, error) {
	const op = "setGuestEmail"
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalid(op, "invalid email %q", email)
	}
	return s.update(ctx, op, cartID, version, commerce.SetCustomerEmail{Email: email})
}

// CreateOrder turns the cart at version into an order with a fresh order number.
func (s *Service) CreateOrder(ctx context.Context, cartID string, version int64) (*domain.Order, error) {
	const op = "createOrder"
	if err := checkTarget(op, cartID, version); err != nil {
		return nil, err
	}
	number, err := s.orderNumber()
	if err != nil {
		return nil, domain.E(op, domain.ErrUpstream, err)
	}
	order, err := s.platform.CreateOrder(ctx, cartID, version, number)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("cart_id", cartID),
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
	)
	return order, nil
}

func (s *Service) update(ctx context.Context, op, cartID string, version int64, action commerce.CartAction) (*domain.Cart, error) {
	if err := checkTarget(op, cartID, version); err != nil {
		return nil, err
	}
	cart, err := s.platform.UpdateCart(ctx, cartID, version, action)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cart updated",
		zap.String("op", op),
		zap.String("cart_id", cartID),
		zap.Int64("version", cart.Version),
	)
	return cart, nil
}

func checkTarget(op, cartID string, version int64) error {
	if strings.TrimSpace(cartID) == "" {
		return domain.Invalid(op, "cart id is required")
	}
	if version <= 0 {
		return domain.Invalid(op, "version must be positive")
	}
	return nil
}

func validateAddress(op string, addr domain.Address) error {
	if strings.TrimSpace(addr.Country) == "" {
		return domain.Invalid(op, "address country is required")
	}
	return nil
}

// NewOrderNumber returns a random decimal order number from crypto/rand.
func NewOrderNumber() (string, error) {
	span := new(big.Int).Sub(orderNumberMax, orderNumberMin)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return n.Add(n, orderNumberMin).String(), nil
}
