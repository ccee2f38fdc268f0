package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"commercetools-gateway/internal/commerce"
	"commercetools-gateway/internal/config"
	"commercetools-gateway/internal/httpserver"
	"commercetools-gateway/internal/identity"
	"commercetools-gateway/internal/logging"
	cartsvc "commercetools-gateway/internal/service/cart"
	customersvc "commercetools-gateway/internal/service/customer"
	guestordersvc "commercetools-gateway/internal/service/guestorder"
	productsvc "commercetools-gateway/internal/service/product"
	socialsvc "commercetools-gateway/internal/service/social"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	platform, err := commerce.New(commerce.Config{
		ProjectKey:   cfg.CommerceProjectKey,
		ClientID:     cfg.CommerceClientID,
		ClientSecret: cfg.CommerceClientSecret,
		AuthURL:      cfg.CommerceAuthURL,
		APIURL:       cfg.CommerceAPIURL,
		Scopes:       cfg.CommerceScopes,
		Timeout:      cfg.CommerceTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("init commerce client", zap.Error(err))
	}

	ids, err := identity.NewFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile, logger)
	if err != nil {
		logger.Fatal("init identity provider", zap.Error(err))
	}

	credentials, err := credentialScheme(cfg)
	if err != nil {
		logger.Fatal("init shadow password scheme", zap.Error(err))
	}
	if credentials.Name() == customersvc.SchemeEmail {
		logger.Warn("shadow passwords equal customer emails; set SHADOW_PASSWORD_SCHEME=derived once existing customers are migrated")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		ProductSvc:        productsvc.New(platform),
		CartSvc:           cartsvc.New(platform, cfg.CommerceCurrency, logger),
		CustomerSvc:       customersvc.New(ids, platform, credentials, logger),
		SocialSvc:         socialsvc.New(ids, logger),
		GuestOrderSvc:     guestordersvc.New(platform, cfg.GuestOrderConcurrency, logger),
		Ready:             platform,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		SessionCookieName: cfg.SessionCookieName,
		MaxParallelism:    cfg.GraphQLMaxParallelism,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func credentialScheme(cfg config.Config) (customersvc.CredentialScheme, error) {
	if cfg.ShadowPasswordScheme == customersvc.SchemeDerived {
		return customersvc.NewDerivedPassword(cfg.ShadowPasswordSecret)
	}
	return customersvc.EmailPassword{}, nil
}
