package product

import (
	"context"
	"errors"
	"testing"

	"commercetools-gateway/internal/commerce/commercetest"
	"commercetools-gateway/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *commercetest.Platform {
	p := commercetest.New()
	p.AddProduct(domain.Product{ID: "p1", Name: domain.LocalizedString{"en": "Running Shoe"}})
	p.AddProduct(domain.Product{ID: "p2", Name: domain.LocalizedString{"en": "Rain Jacket"}})
	p.SetSuggestions("running shoe", "rain jacket")
	return p
}

func TestList_AssignsUniqueListingIDs(t *testing.T) {
	svc := New(seeded())

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	seen := map[string]bool{}
	for _, p := range products {
		_, err := uuid.Parse(p.MasterVariant.ListingID)
		require.NoError(t, err)
		seen[p.MasterVariant.ListingID] = true
	}
	assert.Len(t, seen, 2)
}

func TestGet(t *testing.T) {
	svc := New(seeded())

	p, err := svc.Get(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Rain Jacket", p.Name.Get("en"))

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.Get(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSearch(t *testing.T) {
	svc := New(seeded())

	products, err := svc.Search(context.Background(), " shoe ")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.NotEmpty(t, products[0].MasterVariant.ListingID)

	products, err = svc.Search(context.Background(), "nothing-matches")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	_, err = svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSuggest(t *testing.T) {
	platform := seeded()
	svc := New(platform)

	got, err := svc.Suggest(context.Background(), "rain")
	require.NoError(t, err)
	assert.Equal(t, []string{"rain jacket"}, got)

	got, err = svc.Suggest(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)

	platform.FailOn("suggest", domain.E("suggest", domain.ErrUpstream, nil))
	_, err = svc.Suggest(context.Background(), "rain")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
