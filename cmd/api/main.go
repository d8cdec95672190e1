package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/httpserver"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	"storefront/internal/session"
	"storefront/internal/store"
	"storefront/internal/validate"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg.DBDriver, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer backend.Close()

	keys, generated, err := session.DecodeKeys(cfg.SessionAuthKey, cfg.SessionEncKey)
	if err != nil {
		logger.Fatalf("session keys: %v", err)
	}
	if generated {
		logger.Printf("SESSION_AUTH_KEY/SESSION_ENC_KEY not set; using random keys, guest carts will not survive a restart")
	}
	if cfg.JWTSecret == "" {
		logger.Printf("JWT_SECRET not set; bearer tokens are ignored and every caller is a guest")
	}

	v := validate.New()
	productService := productsvc.New(backend.Products)
	reviewService := reviewsvc.New(backend.Reviews, backend.Products, v)
	cartService := cartsvc.New(backend.Carts, backend.Products, v, logger)
	orderService := ordersvc.New(backend.Orders, backend.Carts, ordersvc.Shipping{
		Fee:           cfg.ShippingFee,
		FreeThreshold: cfg.FreeShippingThreshold,
	}, v, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, backend, httpserver.Deps{
		ProductSvc: productService,
		ReviewSvc:  reviewService,
		CartSvc:    cartService,
		OrderSvc:   orderService,
		Sessions: session.NewManager(session.Options{
			Keys:      keys,
			Secure:    cfg.SessionSecure,
			JWTSecret: cfg.JWTSecret,
			Logger:    logger,
		}),
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
