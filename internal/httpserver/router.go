package httpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/internal/contract"
	"storefront/internal/domain"
	"storefront/internal/session"
)

type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type ReviewService interface {
	List(ctx context.Context, productID int64) ([]domain.Review, error)
	Create(ctx context.Context, productID int64, userID *string, in contract.CreateReviewInput) (*domain.Review, error)
}

type CartService interface {
	List(ctx context.Context, id domain.Identity) ([]domain.CartItem, error)
	Add(ctx context.Context, id domain.Identity, in contract.AddCartItemInput) (*domain.CartItem, error)
	Update(ctx context.Context, id domain.Identity, itemID int64, in contract.UpdateCartItemInput) (*domain.CartItem, error)
	Remove(ctx context.Context, id domain.Identity, itemID int64) error
	Adopt(ctx context.Context, sessionID, userID string) (int, error)
}

type OrderService interface {
	Place(ctx context.Context, id domain.Identity, in contract.CreateOrderInput, idempotencyKey string) (*domain.Order, error)
	Get(ctx context.Context, id domain.Identity, orderID int64) (*domain.Order, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	ProductSvc  ProductService
	ReviewSvc   ReviewService
	CartSvc     CartService
	OrderSvc    OrderService
	Sessions    *session.Manager
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.ReviewSvc == nil || deps.CartSvc == nil || deps.OrderSvc == nil {
		return nil, fmt.Errorf("httpserver: all services are required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("httpserver: session manager is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", contract.IdempotencyKeyHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}
	byName := map[string]gin.HandlerFunc{
		contract.ProductsList.Name:  h.listProducts,
		contract.ProductsGet.Name:   h.getProduct,
		contract.ReviewsList.Name:   h.listReviews,
		contract.ReviewsCreate.Name: h.createReview,
		contract.CartList.Name:      h.listCart,
		contract.CartAdd.Name:       h.addCartItem,
		contract.CartUpdate.Name:    h.updateCartItem,
		contract.CartRemove.Name:    h.removeCartItem,
		contract.OrdersCreate.Name:  h.createOrder,
		contract.OrdersGet.Name:     h.getOrder,
		contract.AuthUserGet.Name:   h.authUser,
	}

	api := router.Group("", deps.Sessions.Middleware(), adoptMiddleware(deps.Sessions, deps.CartSvc, logger))
	for _, route := range contract.Routes {
		handler, ok := byName[route.Name]
		if !ok {
			return nil, fmt.Errorf("httpserver: no handler for route %s", route.Name)
		}
		api.Handle(route.Method, route.Path, handler)
	}

	return router, nil
}

// adoptMiddleware merges a session's guest cart into the user's cart the
// first time that session is seen with a bearer token.
func adoptMiddleware(sessions *session.Manager, carts CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, userID, ok := sessions.PendingAdopt(c)
		if ok {
			if _, err := carts.Adopt(c.Request.Context(), sessionID, userID); err != nil {
				logger.Printf("adopt guest cart: %v", err)
			} else if err := sessions.MarkAdopted(c, userID); err != nil {
				logger.Printf("mark guest cart adopted: %v", err)
			}
		}
		c.Next()
	}
}
