package product

import (
	"context"
	"strings"

	"commercetools-gateway/internal/domain"
	"github.com/google/uuid"
)

const (
	searchLimit = 20
	searchFuzzy = true
)

type catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, text string, limit int, fuzzy bool) ([]domain.Product, error)
	Suggest(ctx context.Context, prefix string) ([]string, error)
}

type Service struct {
	catalog catalog
}

func New(catalog catalog) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return withListingIDs(products), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("getProduct", "product id is required")
	}
	return s.catalog.GetProduct(ctx, id)
}

// Search runs a fuzzy full-text search capped at searchLimit results.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Invalid("searchProducts", "query is required")
	}
	products, err := s.catalog.SearchProducts(ctx, query, searchLimit, searchFuzzy)
	if err != nil {
		return nil, err
	}
	return withListingIDs(products), nil
}

func (s *Service) Suggest(ctx context.Context, keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []string{}, nil
	}
	suggestions, err := s.catalog.Suggest(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}

// withListingIDs gives each master variant a fresh listing id so clients can key list rows.
func withListingIDs(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	for i := range products {
		products[i].MasterVariant.ListingID = uuid.NewString()
	}
	return products
}
