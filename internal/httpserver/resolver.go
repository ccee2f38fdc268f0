package httpserver

import (
	"context"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/service/cart"
	"go.uber.org/zap"
)

// resolver is the root of both Query and Mutation.
type resolver struct {
	deps   Deps
	logger *zap.Logger
}

// fail logs err with the field that produced it and returns its public form.
func (r *resolver) fail(ctx context.Context, field string, err error) error {
	pub := publicError(err)
	fields := []zap.Field{zap.String("field", field), zap.Any("code", pub.extensions["code"]), zap.Error(err)}
	if id := requestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	switch pub.extensions["code"] {
	case codeUpstream, codeInternal:
		r.logger.Error("graphql field failed", fields...)
	default:
		r.logger.Info("graphql field rejected", fields...)
	}
	return pub
}

func (r *resolver) Products(ctx context.Context) ([]productResolver, error) {
	list, err := r.deps.ProductSvc.List(ctx)
	if err != nil {
		return nil, r.fail(ctx, "products", err)
	}
	return products(list), nil
}

func (r *resolver) SingleProduct(ctx context.Context, args struct{ ID string }) (productResolver, error) {
	p, err := r.deps.ProductSvc.Get(ctx, args.ID)
	if err != nil {
		return productResolver{}, r.fail(ctx, "singleProduct", err)
	}
	return productResolver{*p}, nil
}

func (r *resolver) SearchProducts(ctx context.Context, args struct{ Query string }) ([]productResolver, error) {
	list, err := r.deps.ProductSvc.Search(ctx, args.Query)
	if err != nil {
		return nil, r.fail(ctx, "searchProducts", err)
	}
	return products(list), nil
}

func (r *resolver) SearchSuggestion(ctx context.Context, args struct{ Keyword string }) ([]suggestionResolver, error) {
	texts, err := r.deps.ProductSvc.Suggest(ctx, args.Keyword)
	if err != nil {
		return nil, r.fail(ctx, "searchSuggestion", err)
	}
	out := make([]suggestionResolver, 0, len(texts))
	for _, t := range texts {
		out = append(out, suggestionResolver{t})
	}
	return out, nil
}

func (r *resolver) GetCartByID(ctx context.Context, args struct{ CartID string }) (cartResolver, error) {
	c, err := r.deps.CartSvc.Get(ctx, args.CartID)
	if err != nil {
		return cartResolver{}, r.fail(ctx, "getCartById", err)
	}
	return cartResolver{c}, nil
}

func (r *resolver) VerifyUserByTokenID(ctx context.Context) (guestReportResolver, error) {
	report, err := r.deps.GuestOrderSvc.Reconcile(ctx, sessionToken(ctx, r.deps.SessionCookieName))
	if err != nil {
		return guestReportResolver{}, r.fail(ctx, "verifyUserByTokenId", err)
	}
	return guestReportResolver{report}, nil
}

func (r *resolver) CreateCart(ctx context.Context, args struct{ ProductID string }) (cartResolver, error) {
	c, err := r.deps.CartSvc.Create(ctx, args.ProductID)
	if err != nil {
		return cartResolver{}, r.fail(ctx, "createCart", err)
	}
	return cartResolver{c}, nil
}

// cartMutation parses the client version and runs one pipeline step.
func (r *resolver) cartMutation(ctx context.Context, field, versionID string, step func(version int64) (*domain.Cart, error)) (cartResolver, error) {
	version, err := cart.ParseVersion(versionID)
	if err != nil {
		return cartResolver{}, r.fail(ctx, field, err)
	}
	c, err := step(version)
	if err != nil {
		return cartResolver{}, r.fail(ctx, field, err)
	}
	return cartResolver{c}, nil
}

func (r *resolver) AddItemsToCart(ctx context.Context, args struct {
	ProductID string
	CartID    string
	VersionID string
	Quantity  *int32
}) (cartResolver, error) {
	qty := 1
	if args.Quantity != nil {
		qty = int(*args.Quantity)
	}
	return r.cartMutation(ctx, "addItemsToCart", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.AddLineItem(ctx, args.CartID, v, args.ProductID, qty)
	})
}

func (r *resolver) RemoveItemFromCart(ctx context.Context, args struct {
	LineItemID string
	CartID     string
	VersionID  string
}) (cartResolver, error) {
	return r.cartMutation(ctx, "removeItemFromCart", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.RemoveLineItem(ctx, args.CartID, v, args.LineItemID)
	})
}

func (r *resolver) ChangeCartItemsQty(ctx context.Context, args struct {
	CartID     string
	VersionID  string
	LineItemID string
	Quantity   int32
}) (cartResolver, error) {
	return r.cartMutation(ctx, "changeCartItemsQty", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.ChangeLineItemQuantity(ctx, args.CartID, v, args.LineItemID, int(args.Quantity))
	})
}

type addressArgs struct {
	Address   addressInput
	CartID    string
	VersionID string
}

func (r *resolver) AddShippingAddress(ctx context.Context, args addressArgs) (cartResolver, error) {
	return r.cartMutation(ctx, "addShippingAddress", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.SetShippingAddress(ctx, args.CartID, v, args.Address.toDomain())
	})
}

func (r *resolver) AddBillingAddress(ctx context.Context, args addressArgs) (cartResolver, error) {
	return r.cartMutation(ctx, "addBillingAddress", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.SetBillingAddress(ctx, args.CartID, v, args.Address.toDomain())
	})
}

func (r *resolver) AddShippingMethod(ctx context.Context, args struct {
	CartID           string
	VersionID        string
	ShippingMethodID string
}) (cartResolver, error) {
	return r.cartMutation(ctx, "addShippingMethod", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.SetShippingMethod(ctx, args.CartID, v, args.ShippingMethodID)
	})
}

func (r *resolver) AddEmailIDAsGuest(ctx context.Context, args struct {
	CartID    string
	VersionID string
	Email     string
}) (cartResolver, error) {
	return r.cartMutation(ctx, "addEmailIdAsGuest", args.VersionID, func(v int64) (*domain.Cart, error) {
		return r.deps.CartSvc.SetGuestEmail(ctx, args.CartID, v, args.Email)
	})
}

func (r *resolver) GenerateOrderByCartID(ctx context.Context, args struct {
	CartID    string
	VersionID string
}) (orderResolver, error) {
	version, err := cart.ParseVersion(args.VersionID)
	if err != nil {
		return orderResolver{}, r.fail(ctx, "generateOrderByCartID", err)
	}
	o, err := r.deps.CartSvc.CreateOrder(ctx, args.CartID, version)
	if err != nil {
		return orderResolver{}, r.fail(ctx, "generateOrderByCartID", err)
	}
	return orderResolver{o}, nil
}

func (r *resolver) VerifySocialUser(ctx context.Context, args struct{ Token string }) (socialResolver, error) {
	res, err := r.deps.SocialSvc.Reconcile(ctx, args.Token)
	if err != nil {
		return socialResolver{}, r.fail(ctx, "verifySocialUser", err)
	}
	return socialResolver{res}, nil
}

func (r *resolver) CreateCustomer(ctx context.Context, args struct{ TokenID string }) (accessTokenResolver, error) {
	tok, err := r.deps.CustomerSvc.Register(ctx, args.TokenID)
	if err != nil {
		return accessTokenResolver{}, r.fail(ctx, "createCustomer", err)
	}
	setSessionCookie(ctx, r.deps.SessionCookieName, tok)
	return accessTokenResolver{tok}, nil
}

func (r *resolver) GenerateToken(ctx context.Context, args struct{ Token string }) (accessTokenResolver, error) {
	tok, err := r.deps.CustomerSvc.IssueToken(ctx, args.Token)
	if err != nil {
		return accessTokenResolver{}, r.fail(ctx, "generateToken", err)
	}
	setSessionCookie(ctx, r.deps.SessionCookieName, tok)
	return accessTokenResolver{tok}, nil
}

func (r *resolver) VerifyExistUser(ctx context.Context, args struct {
	Email       string
	PhoneNumber string
}) (existenceResolver, error) {
	ok, err := r.deps.CustomerSvc.Exists(ctx, args.Email, args.PhoneNumber)
	if err != nil {
		return existenceResolver{}, r.fail(ctx, "verifyExistUser", err)
	}
	return existenceResolver{ok}, nil
}
