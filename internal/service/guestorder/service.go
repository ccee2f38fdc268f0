// Package guestorder binds orders placed as a guest to the customer who later signed in
// with the same email.
package guestorder

import (
	"context"
	"strings"

	"commercetools-gateway/internal/commerce"
	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

type orderPlatform interface {
	CurrentSession(ctx context.Context, token string) (*domain.Session, error)
	ListOrders(ctx context.Context, email string) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, id string, expectedVersion int64, action commerce.OrderAction) (*domain.Order, error)
}

// Result is the outcome for one guest order. Exactly one of Order and Err is set.
type Result struct {
	OrderID string
	Order   *domain.Order
	Err     error
}

// Report lists one Result per guest order found for the session customer.
type Report struct {
	CustomerID string
	Email      string
	Results    []Result
}

// Failed returns the number of orders that could not be bound.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

type Service struct {
	platform    orderPlatform
	concurrency int
	logger      *zap.Logger
}

func New(platform orderPlatform, concurrency int, logger *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{platform: platform, concurrency: concurrency, logger: logger}
}

// Reconcile resolves the session behind token and binds each guest order placed with its
// email to the session customer. Per-order failures are reported, never returned.
func (s *Service) Reconcile(ctx context.Context, token string) (*Report, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.E("reconcileGuestOrders", domain.ErrUnauthenticated, nil)
	}
	session, err := s.platform.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	orders, err := s.platform.ListOrders(ctx, session.Email)
	if err != nil {
		return nil, err
	}

	report := &Report{CustomerID: session.CustomerID, Email: session.Email, Results: []Result{}}
	guests := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.IsGuest() {
			guests = append(guests, o)
		}
	}
	if len(guests) == 0 {
		return report, nil
	}

	// Patches already sent are allowed to finish when the caller goes away.
	patchCtx := context.WithoutCancel(ctx)
	report.Results = make([]Result, len(guests))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, o := range guests {
		i, o := i, o
		g.Go(func() error {
			updated, err := s.platform.UpdateOrder(patchCtx, o.ID, o.Version, commerce.SetCustomerID{CustomerID: session.CustomerID})
			metrics.GuestOrderPatch(err)
			if err != nil {
				s.logger.Warn("guest order not bound",
					zap.String("order_id", o.ID),
					zap.Int64("version", o.Version),
					zap.Error(err),
				)
				report.Results[i] = Result{OrderID: o.ID, Err: err}
				return nil
			}
			report.Results[i] = Result{OrderID: o.ID, Order: updated}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("guest orders reconciled",
		zap.String("customer_id", session.CustomerID),
		zap.Int("orders", len(guests)),
		zap.Int("failed", report.Failed()),
	)
	return report, nil
}
