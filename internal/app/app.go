package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/voltstore/storefront/internal/domain/auth"
	"github.com/voltstore/storefront/internal/domain/coupon"
	"github.com/voltstore/storefront/internal/domain/order"
	"github.com/voltstore/storefront/internal/domain/user"
	"github.com/voltstore/storefront/internal/handler"
	"github.com/voltstore/storefront/internal/jobs"
	"github.com/voltstore/storefront/internal/storage/mongodb"
	"github.com/voltstore/storefront/pkg/health"
	"github.com/voltstore/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	client, err := mongodb.Connect(ctx, cfg.MongoURL)
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			lg.Error("Disconnect error", zap.Error(err))
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	// Health check service.
	healthSvc := health.NewService()
	healthSvc.AddReadiness("mongodb", 5*time.Second, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	healthSvc.AddLiveness("goroutines", time.Second, health.GoroutineCount(10000))
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := mongodb.NewProductRepository(db)
	couponRepo := mongodb.NewCouponRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	cartRepo := mongodb.NewCartRepository(db)

	// Domain services.
	tokens := auth.NewJWTTokens([]byte(cfg.JWTSecret), cfg.TokenTTL)
	couponEvaluator := coupon.NewEvaluator(couponRepo)
	userService := user.NewService(userRepo, tokens)
	orderService := order.NewService(orderRepo).
		WithAdvancedCounter(advancedCounter(m, lg))

	// HTTP handlers.
	h := handler.New(
		handler.Config{
			ImageBaseURL:      cfg.ImageBaseURL,
			ExposeResetTokens: cfg.Debug.ExposeResetTokens,
		},
		productRepo,
		cartRepo,
		couponEvaluator,
		orderService,
		userService,
		tokens,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Background order advancement.
	if cfg.Sweep.Enabled {
		sweep := jobs.NewOrderSweep(orderService, cfg.Sweep.Schedule, lg)
		if err := sweep.Start(); err != nil {
			return errors.Wrap(err, "start order sweep")
		}
		defer sweep.Stop()
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// advancedCounter builds the orders-advanced metric. Metric registration
// failures are logged, not fatal.
func advancedCounter(m *app.Telemetry, lg *zap.Logger) metric.Int64Counter {
	counter, err := m.MeterProvider().Meter("storefront").Int64Counter(
		"storefront.orders.advanced",
		metric.WithDescription("Orders moved forward by the automatic advancement rule"),
	)
	if err != nil {
		lg.Warn("Register metric failed", zap.Error(err))
		return nil
	}
	return counter
}
