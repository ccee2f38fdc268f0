package cart

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"commercetools-gateway/internal/commerce/commercetest"
	"commercetools-gateway/internal/domain"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlatform() *commercetest.Platform {
	p := commercetest.New()
	p.AddProduct(domain.Product{
		ID:   "p1",
		Key:  "shoe",
		Name: domain.LocalizedString{"en": "Shoe"},
		MasterVariant: domain.Variant{ID: 1, Prices: []domain.Price{{
			Value: domain.Money{CentAmount: 250, CurrencyCode: "EUR", FractionDigits: 2},
		}}},
	})
	p.AddProduct(domain.Product{ID: "p2", Name: domain.LocalizedString{"en": "Sock"}})
	return p
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseVersion(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc := New(newPlatform(), "", nil)

	created, err := svc.Create(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, created.LineItems, 1)
	assert.Equal(t, 1, created.LineItems[0].Quantity)
	assert.Equal(t, "EUR", created.TotalPrice.CurrencyCode)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version, got.Version)
	assert.Equal(t, created.LineItems, got.LineItems)
}

func TestCreateValidation(t *testing.T) {
	svc := New(newPlatform(), "EUR", nil)
	_, err := svc.Create(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStaleVersionConflictsWithoutMutation(t *testing.T) {
	platform := newPlatform()
	svc := New(platform, "EUR", nil)
	ctx := context.Background()

	cart, err := svc.Create(ctx, "p1")
	require.NoError(t, err)
	cart, err = svc.AddLineItem(ctx, cart.ID, cart.Version, "p2", 2)
	require.NoError(t, err)
	before, _ := platform.Cart(cart.ID)

	stale := cart.Version - 1
	calls := []func() error{
		func() error { _, err := svc.AddLineItem(ctx, cart.ID, stale, "p1", 1); return err },
		func() error { _, err := svc.RemoveLineItem(ctx, cart.ID, stale, cart.LineItems[0].ID); return err },
		func() error {
			_, err := svc.ChangeLineItemQuantity(ctx, cart.ID, stale, cart.LineItems[0].ID, 9)
			return err
		},
		func() error {
			_, err := svc.SetShippingAddress(ctx, cart.ID, stale, domain.Address{Country: "DE"})
			return err
		},
		func() error {
			_, err := svc.SetBillingAddress(ctx, cart.ID, stale, domain.Address{Country: "DE"})
			return err
		},
		func() error { _, err := svc.SetShippingMethod(ctx, cart.ID, stale, "sm1"); return err },
		func() error { _, err := svc.SetGuestEmail(ctx, cart.ID, stale, "guest@example.com"); return err },
		func() error { _, err := svc.CreateOrder(ctx, cart.ID, stale); return err },
	}
	for i, call := range calls {
		err := call()
		require.Error(t, err, "call %d", i)
		var conflict *domain.ConflictError
		require.True(t, errors.As(err, &conflict), "call %d: %v", i, err)
		assert.Equal(t, cart.Version, conflict.CurrentVersion)
		assert.Equal(t, stale, conflict.ExpectedVersion)
	}

	after, _ := platform.Cart(cart.ID)
	assert.Equal(t, before, after)
}

func TestMutationsBumpVersionOncePerCall(t *testing.T) {
	svc := New(newPlatform(), "EUR", nil)
	ctx := context.Background()

	cart, err := svc.Create(ctx, "p1")
	require.NoError(t, err)
	v := cart.Version

	cart, err = svc.SetShippingAddress(ctx, cart.ID, v, domain.Address{Country: "DE", City: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, v+1, cart.Version)
	assert.Equal(t, "Berlin", cart.ShippingAddress.City)

	cart, err = svc.SetBillingAddress(ctx, cart.ID, cart.Version, domain.Address{Country: "DE"})
	require.NoError(t, err)
	cart, err = svc.SetShippingMethod(ctx, cart.ID, cart.Version, "sm1")
	require.NoError(t, err)
	cart, err = svc.SetGuestEmail(ctx, cart.ID, cart.Version, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, v+4, cart.Version)
	assert.Equal(t, "sm1", cart.ShippingMethodID)
	assert.Equal(t, "guest@example.com", cart.CustomerEmail)
}

func TestInputValidationNeverCallsPlatform(t *testing.T) {
	platform := newPlatform()
	svc := New(platform, "EUR", nil)
	ctx := context.Background()

	cases := map[string]func() error{
		"zero quantity": func() error { _, err := svc.AddLineItem(ctx, "c1", 1, "p1", 0); return err },
		"negative change": func() error {
			_, err := svc.ChangeLineItemQuantity(ctx, "c1", 1, "l1", -1)
			return err
		},
		"missing country": func() error {
			_, err := svc.SetShippingAddress(ctx, "c1", 1, domain.Address{City: "Berlin"})
			return err
		},
		"bad email":     func() error { _, err := svc.SetGuestEmail(ctx, "c1", 1, "not-an-email"); return err },
		"zero version":  func() error { _, err := svc.SetShippingMethod(ctx, "c1", 0, "sm1"); return err },
		"missing cart":  func() error { _, err := svc.CreateOrder(ctx, "", 1); return err },
		"missing line":  func() error { _, err := svc.RemoveLineItem(ctx, "c1", 1, " "); return err },
		"missing method": func() error { _, err := svc.SetShippingMethod(ctx, "c1", 1, ""); return err },
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), domain.ErrValidation)
		})
	}
	assert.Empty(t, platform.Calls())
}

func TestQuantityArithmeticAndReplayRejection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("line quantity follows applied deltas and replays conflict", prop.ForAll(
		func(steps []int) bool {
			ctx := context.Background()
			svc := New(newPlatform(), "EUR", nil)
			cart, err := svc.Create(ctx, "p1")
			if err != nil {
				return false
			}
			expected := 1

			for _, step := range steps {
				prevVersion := cart.Version
				var next *domain.Cart
				switch {
				case step > 0:
					next, err = svc.AddLineItem(ctx, cart.ID, cart.Version, "p1", step)
					expected += step
				case step < 0 && expected > 0:
					target := expected + step
					if target < 1 {
						target = 1
					}
					next, err = svc.ChangeLineItemQuantity(ctx, cart.ID, cart.Version, cart.LineItems[0].ID, target)
					expected = target
				case expected > 0:
					next, err = svc.RemoveLineItem(ctx, cart.ID, cart.Version, cart.LineItems[0].ID)
					expected = 0
				default:
					next, err = svc.AddLineItem(ctx, cart.ID, cart.Version, "p1", 1)
					expected = 1
				}
				if err != nil || next.Version != prevVersion+1 {
					return false
				}
				cart = next
				if cart.TotalLineItemQuantity != expected {
					return false
				}

				// Replaying the accepted version must be rejected, not applied twice.
				_, err = svc.AddLineItem(ctx, cart.ID, prevVersion, "p1", 1)
				if !errors.Is(err, domain.ErrConflict) {
					return false
				}
				current, err := svc.Get(ctx, cart.ID)
				if err != nil || current.TotalLineItemQuantity != expected || current.Version != cart.Version {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-4, 6)),
	))

	properties.TestingRun(t)
}

func TestCreateOrder(t *testing.T) {
	platform := newPlatform()
	svc := New(platform, "EUR", nil)
	ctx := context.Background()

	cart, err := svc.Create(ctx, "p1")
	require.NoError(t, err)
	cart, err = svc.SetGuestEmail(ctx, cart.ID, cart.Version, "guest@example.com")
	require.NoError(t, err)

	order, err := svc.CreateOrder(ctx, cart.ID, cart.Version)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{7,10}$`), order.OrderNumber)
	assert.Equal(t, "guest@example.com", order.CustomerEmail)
	assert.True(t, order.IsGuest())
	assert.Len(t, order.LineItems, 1)

	_, err = svc.CreateOrder(ctx, cart.ID, cart.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateOrderNumberFailure(t *testing.T) {
	platform := newPlatform()
	svc := New(platform, "EUR", nil)
	svc.orderNumber = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := svc.CreateOrder(context.Background(), "c1", 3)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, platform.Calls())
}

func TestNewOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{7,10}$`)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n, err := NewOrderNumber()
		require.NoError(t, err)
		require.Regexp(t, pattern, n)
		_, dup := seen[n]
		require.False(t, dup, "duplicate order number %s", n)
		seen[n] = struct{}{}
	}
}
