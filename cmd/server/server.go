package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/config"
	"github.com/irsalhamdi/storefront/core/catalog"
	"github.com/irsalhamdi/storefront/core/shopper"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	const prefix = "STORE"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Check(); err != nil {
		return err
	}

	lvl, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logger.SetLevel(lvl)

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	cat, err := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)
	if err != nil {
		return fmt.Errorf("building the catalog client: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	shoppers := shopper.NewRegistry(shopper.Config{
		Catalog:  cat,
		Debounce: cfg.Listing.SearchDebounce,
		Expiry:   cfg.Session.Lifetime,
		Log:      logger,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sweepDone := make(chan struct{})
	go func() {
		shoppers.Run(ctx, cfg.Session.SweepInterval)
		close(sweepDone)
	}()

	limiter := rate.NewLimiter(cfg.Web.RateBurst, cfg.Web.RateExpiry, rate.Every(cfg.Web.RateInterval))
	defer limiter.Close()

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		Session:    sessionManager,
		Shoppers:   shoppers,
		Catalog:    cat,
		Limiter:    limiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.WithField("catalog", cfg.Catalog.BaseURL).Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		stop()
		select {
		case <-sweepDone:
		case <-ctx.Done():
			return fmt.Errorf("could not dispose shopper state: %w", ctx.Err())
		}
	}
	return nil
}
