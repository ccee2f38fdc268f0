package httpserver

import (
	"context"
	"time"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/service/guestorder"
	"commercetools-gateway/internal/service/social"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Suggest(ctx context.Context, keyword string) ([]string, error)
}

type CartService interface {
	Create(ctx context.Context, productID string) (*domain.Cart, error)
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID string, version int64, productID string, quantity int) (*domain.Cart, error)
	RemoveLineItem(ctx context.Context, cartID string, version int64, lineItemID string) (*domain.Cart, error)
	ChangeLineItemQuantity(ctx context.Context, cartID string, version int64, lineItemID string, quantity int) (*domain.Cart, error)
	SetShippingAddress(ctx context.Context, cartID string, version int64, addr domain.Address) (*domain.Cart, error)
	SetBillingAddress(ctx context.Context, cartID string, version int64, addr domain.Address) (*domain.Cart, error)
	SetShippingMethod(ctx context.Context, cartID string, version int64, shippingMethodID string) (*domain.Cart, error)
	SetGuestEmail(ctx context.Context, cartID string, version int64, email string) (*domain.Cart, error)
	CreateOrder(ctx context.Context, cartID string, version int64) (*domain.Order, error)
}

type CustomerService interface {
	Register(ctx context.Context, idToken string) (*domain.AccessToken, error)
	IssueToken(ctx context.Context, idToken string) (*domain.AccessToken, error)
	Exists(ctx context.Context, email, phone string) (bool, error)
}

type SocialService interface {
	Reconcile(ctx context.Context, token string) (*social.Result, error)
}

type GuestOrderService interface {
	Reconcile(ctx context.Context, token string) (*guestorder.Report, error)
}

// Pinger reports whether an upstream dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	ProductSvc    ProductService
	CartSvc       CartService
	CustomerSvc   CustomerService
	SocialSvc     SocialService
	GuestOrderSvc GuestOrderService
	Ready         Pinger

	CORSOrigins       []string
	SessionCookieName string
	MaxParallelism    int
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.SessionCookieName == "" {
		deps.SessionCookieName = "token"
	}
	if deps.MaxParallelism <= 0 {
		deps.MaxParallelism = 10
	}

	schema, err := graphql.ParseSchema(schemaSDL, &resolver{deps: deps, logger: logger},
		graphql.MaxParallelism(deps.MaxParallelism),
	)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		gin.LoggerWithWriter(zap.NewStdLog(logger).Writer()),
		gin.Recovery(),
		cors.New(corsConfig(deps.CORSOrigins)),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gql := graphqlHandler(schema)
	router.POST("/graphql", gql)
	router.POST("/", gql)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
