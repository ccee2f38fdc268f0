package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	platform         = "commerce"
	maxResponseBytes = 8 << 20
	ordersPageSize   = 100
)

// Client is the commerce platform surface the gateway consumes.
type Client interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, text string, limit int, fuzzy bool) ([]domain.Product, error)
	Suggest(ctx context.Context, prefix string) ([]string, error)
	CreateCart(ctx context.Context, currency string, initial domain.LineItemDraft) (*domain.Cart, error)
	GetCart(ctx context.Context, id string) (*domain.Cart, error)
	UpdateCart(ctx context.Context, id string, expectedVersion int64, action CartAction) (*domain.Cart, error)
	CreateOrder(ctx context.Context, cartID string, expectedVersion int64, orderNumber string) (*domain.Order, error)
	ListOrders(ctx context.Context, email string) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, id string, expectedVersion int64, action OrderAction) (*domain.Order, error)
	SignupCustomer(ctx context.Context, draft domain.CustomerDraft) (*domain.Customer, error)
	PasswordGrantToken(ctx context.Context, username, password string) (*domain.AccessToken, error)
	CurrentSession(ctx context.Context, token string) (*domain.Session, error)
}

// Config holds the commerce platform API client settings.
type Config struct {
	ProjectKey   string
	ClientID     string
	ClientSecret string
	AuthURL      string
	APIURL       string
	Scopes       []string
	Timeout      time.Duration
	Locale       string
}

// HTTPClient talks to the commerce platform HTTP API.
type HTTPClient struct {
	cfg      Config
	api      *http.Client
	base     *http.Client
	tokens   oauth2.TokenSource
	password *oauth2.Config
	logger   *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

// New builds an HTTPClient authenticated with the client credentials flow.
func New(cfg Config, logger *zap.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.ProjectKey) == "" {
		return nil, errors.New("commerce: project key required")
	}
	if strings.TrimSpace(cfg.AuthURL) == "" || strings.TrimSpace(cfg.APIURL) == "" {
		return nil, errors.New("commerce: auth and api urls required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	base := &http.Client{Timeout: cfg.Timeout}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.AuthURL + "/oauth/token",
		Scopes:       cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokens := cc.TokenSource(tokenCtx)
	api := oauth2.NewClient(tokenCtx, tokens)
	api.Timeout = cfg.Timeout

	return &HTTPClient{
		cfg:    cfg,
		api:    api,
		base:   base,
		tokens: tokens,
		password: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.AuthURL + "/oauth/" + url.PathEscape(cfg.ProjectKey) + "/customers/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		logger: logger,
	}, nil
}

// Ping fetches a client-credentials token to confirm the platform is reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := c.tokens.Token()
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return classifyTransport("ping", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var page ctPaged[ctProductProjection]
	if err := c.do(ctx, call{op: "listProducts", method: http.MethodGet, path: "/product-projections"}, &page); err != nil {
		return nil, err
	}
	return toProducts(page.Results), nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p ctProductProjection
	cl := call{op: "getProduct", method: http.MethodGet, path: "/product-projections/" + url.PathEscape(id), resourceID: id}
	if err := c.do(ctx, cl, &p); err != nil {
		return nil, err
	}
	product := toProduct(p)
	return &product, nil
}

func (c *HTTPClient) SearchProducts(ctx context.Context, text string, limit int, fuzzy bool) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("text."+c.cfg.Locale, text)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	q.Set("fuzzy", strconv.FormatBool(fuzzy))
	var page ctPaged[ctProductProjection]
	if err := c.do(ctx, call{op: "searchProducts", method: http.MethodGet, path: "/product-projections/search", query: q}, &page); err != nil {
		return nil, err
	}
	return toProducts(page.Results), nil
}

func (c *HTTPClient) Suggest(ctx context.Context, prefix string) ([]string, error) {
	key := "searchKeywords." + c.cfg.Locale
	q := url.Values{}
	q.Set(key, prefix)
	q.Set("fuzzy", "true")
	var body map[string][]ctSuggestion
	if err := c.do(ctx, call{op: "suggest", method: http.MethodGet, path: "/product-projections/suggest", query: q}, &body); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(body[key]))
	for _, s := range body[key] {
		out = append(out, s.Text)
	}
	return out, nil
}

func (c *HTTPClient) CreateCart(ctx context.Context, currency string, initial domain.LineItemDraft) (*domain.Cart, error) {
	draft := ctCartDraft{Currency: currency}
	if initial.ProductID != "" {
		draft.LineItems = []ctLineItemDraft{{
			ProductID: initial.ProductID,
			VariantID: initial.VariantID,
			Quantity:  initial.Quantity,
		}}
	}
	var out ctCart
	if err := c.do(ctx, call{op: "createCart", method: http.MethodPost, path: "/carts", body: draft}, &out); err != nil {
		return nil, err
	}
	return toCart(out), nil
}

func (c *HTTPClient) GetCart(ctx context.Context, id string) (*domain.Cart, error) {
	var out ctCart
	cl := call{op: "getCart", method: http.MethodGet, path: "/carts/" + url.PathEscape(id), resourceID: id}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return toCart(out), nil
}

func (c *HTTPClient) UpdateCart(ctx context.Context, id string, expectedVersion int64, action CartAction) (*domain.Cart, error) {
	var out ctCart
	cl := call{
		op:         "updateCart." + action.ActionName(),
		method:     http.MethodPost,
		path:       "/carts/" + url.PathEscape(id),
		body:       ctUpdate{Version: expectedVersion, Actions: []json.Marshaler{action}},
		resourceID: id,
		version:    expectedVersion,
	}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return toCart(out), nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, cartID string, expectedVersion int64, orderNumber string) (*domain.Order, error) {
	var out ctOrder
	cl := call{
		op:     "createOrder",
		method: http.MethodPost,
		path:   "/orders",
		body: ctOrderFromCartDraft{
			Cart:        ctRef{TypeID: "cart", ID: cartID},
			Version:     expectedVersion,
			OrderNumber: orderNumber,
		},
		resourceID: cartID,
		version:    expectedVersion,
	}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return toOrder(out), nil
}

// ListOrders pages through every order whose customerEmail equals email.
func (c *HTTPClient) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	var out []domain.Order
	for offset := 0; ; offset += ordersPageSize {
		q := url.Values{}
		q.Set("where", fmt.Sprintf("customerEmail=%q", email))
		q.Set("sort", "createdAt asc")
		q.Set("limit", strconv.Itoa(ordersPageSize))
		q.Set("offset", strconv.Itoa(offset))
		var page ctPaged[ctOrder]
		if err := c.do(ctx, call{op: "listOrders", method: http.MethodGet, path: "/orders", query: q}, &page); err != nil {
			return nil, err
		}
		for _, o := range page.Results {
			out = append(out, *toOrder(o))
		}
		if len(page.Results) < ordersPageSize {
			break
		}
	}
	return out, nil
}

func (c *HTTPClient) UpdateOrder(ctx context.Context, id string, expectedVersion int64, action OrderAction) (*domain.Order, error) {
	var out ctOrder
	cl := call{
		op:         "updateOrder." + action.ActionName(),
		method:     http.MethodPost,
		path:       "/orders/" + url.PathEscape(id),
		body:       ctUpdate{Version: expectedVersion, Actions: []json.Marshaler{action}},
		resourceID: id,
		version:    expectedVersion,
	}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return toOrder(out), nil
}

func (c *HTTPClient) SignupCustomer(ctx context.Context, draft domain.CustomerDraft) (*domain.Customer, error) {
	body := ctCustomerDraft{
		Email:     draft.Email,
		Password:  draft.Password,
		FirstName: draft.FirstName,
		Custom: &ctCustomFieldsDraft{
			Type:   ctRef{TypeID: "type", Key: "customer-mobile-no"},
			Fields: map[string]any{"phoneNo": map[string]string{c.cfg.Locale: draft.Phone}},
		},
	}
	var out ctCustomerSignInResult
	if err := c.do(ctx, call{op: "signupCustomer", method: http.MethodPost, path: "/customers", body: body}, &out); err != nil {
		return nil, err
	}
	customer := toCustomer(out.Customer)
	customer.Phone = draft.Phone
	return customer, nil
}

func (c *HTTPClient) PasswordGrantToken(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	const op = "passwordGrantToken"
	start := time.Now()
	tok, err := c.password.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.base), username, password)
	if err != nil {
		err = classifyPasswordGrant(op, err)
		metrics.ObserveUpstream(platform, op, err, time.Since(start))
		c.logger.Warn("commerce password grant failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	metrics.ObserveUpstream(platform, op, nil, time.Since(start))
	out := &domain.AccessToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    int(tok.ExpiresIn),
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	if out.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		out.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return out, nil
}

// CurrentSession resolves the customer behind a customer access token.
func (c *HTTPClient) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.E("currentSession", domain.ErrUnauthenticated, errors.New("missing token"))
	}
	var me ctCustomer
	if err := c.do(ctx, call{op: "currentSession", method: http.MethodGet, path: "/me", bearer: token}, &me); err != nil {
		return nil, err
	}
	return &domain.Session{CustomerID: me.ID, Email: me.Email, Version: me.Version}, nil
}

// call describes one request against the project-scoped API.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// bearer switches from client credentials to a customer token.
	bearer     string
	resourceID string
	version    int64
}

func (c *HTTPClient) do(ctx context.Context, cl call, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveUpstream(platform, cl.op, err, time.Since(start))
		if err != nil {
			c.logger.Warn("commerce call failed",
				zap.String("op", cl.op),
				zap.String("resource_id", cl.resourceID),
				zap.Int64("version", cl.version),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		c.logger.Debug("commerce call", zap.String("op", cl.op), zap.String("resource_id", cl.resourceID), zap.Duration("elapsed", time.Since(start)))
	}()

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return domain.E(cl.op, domain.ErrValidation, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.cfg.APIURL + "/" + url.PathEscape(c.cfg.ProjectKey) + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, reader)
	if err != nil {
		return domain.E(cl.op, domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.api
	if cl.bearer != "" {
		client = c.base
		req.Header.Set("Authorization", "Bearer "+cl.bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransport(cl.op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.E(cl.op, domain.ErrUpstream, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(cl, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.E(cl.op, domain.ErrUpstream, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func toProducts(in []ctProductProjection) []domain.Product {
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		out = append(out, toProduct(p))
	}
	return out
}
