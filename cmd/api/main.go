package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/shopcore/eshop/internal/auth"
	"github.com/shopcore/eshop/internal/categories"
	"github.com/shopcore/eshop/internal/config"
	"github.com/shopcore/eshop/internal/httpx"
	"github.com/shopcore/eshop/internal/messaging"
	"github.com/shopcore/eshop/internal/orders"
	"github.com/shopcore/eshop/internal/products"
	"github.com/shopcore/eshop/internal/telemetry"
	"github.com/shopcore/eshop/internal/users"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, "eshop-api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("eshop-api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = messaging.NewProducer(cfg.KafkaBrokers, "order.created")
		defer func() { _ = producer.Close() }()
	}

	respond := httpx.NewResponder(logger, !cfg.Production())
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	gate := auth.NewGate(cfg.JWTSecret, cfg.APIPrefix, respond)

	categoryRepo := categories.NewRepository(db)
	productRepo := products.NewRepository(db)
	userRepo := users.NewRepository(db)
	orderRepo := orders.NewRepository(db)

	categoryHandler := categories.NewHandler(categoryRepo, respond, logger)
	productHandler := products.NewHandler(productRepo, respond, logger)
	userHandler := users.NewHandler(userRepo, issuer, respond, logger)
	orderService := orders.NewService(orderRepo, productRepo, userRepo)
	orderHandler := orders.NewHandler(orderService, orderRepo, producer, respond, logger)

	mux := http.NewServeMux()
	p := cfg.APIPrefix

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	handle("GET "+p+"/categories", categoryHandler.HandleList)
	handle("GET "+p+"/categories/{id}", categoryHandler.HandleGet)
	handle("POST "+p+"/categories", categoryHandler.HandleCreate)
	handle("PUT "+p+"/categories/{id}", categoryHandler.HandleUpdate)
	handle("DELETE "+p+"/categories/{id}", categoryHandler.HandleDelete)

	handle("GET "+p+"/products", productHandler.HandleList)
	handle("GET "+p+"/products/{id}", productHandler.HandleGet)
	handle("POST "+p+"/products", productHandler.HandleCreate)
	handle("PUT "+p+"/products/{id}", productHandler.HandleUpdate)
	handle("DELETE "+p+"/products/{id}", productHandler.HandleDelete)
	handle("GET "+p+"/products/get/count", productHandler.HandleCount)
	handle("GET "+p+"/products/get/featured/{count}", productHandler.HandleFeatured)

	handle("GET "+p+"/users", userHandler.HandleList)
	handle("GET "+p+"/users/{id}", userHandler.HandleGet)
	handle("POST "+p+"/users/register", userHandler.HandleRegister)
	handle("POST "+p+"/users/login", userHandler.HandleLogin)
	handle("PUT "+p+"/users/{id}", userHandler.HandleUpdate)
	handle("DELETE "+p+"/users/{id}", userHandler.HandleDelete)
	handle("GET "+p+"/users/get/count", userHandler.HandleCount)

	handle("GET "+p+"/orders", orderHandler.HandleList)
	handle("GET "+p+"/orders/{id}", orderHandler.HandleGet)
	handle("POST "+p+"/orders", orderHandler.HandleCreate)
	handle("PUT "+p+"/orders/{id}", orderHandler.HandleUpdateStatus)
	handle("DELETE "+p+"/orders/{id}", orderHandler.HandleDelete)
	handle("GET "+p+"/orders/get/totalSales", orderHandler.HandleTotalSales)
	handle("GET "+p+"/orders/get/count", orderHandler.HandleCount)
	handle("GET "+p+"/orders/get/userorders/{userid}", orderHandler.HandleUserOrders)

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respond.Fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		respond.Message(w, http.StatusOK, "ok")
	})

	handler := corsMiddleware(gate.Middleware(mux))

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(handler, "eshop-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting api server", "port", cfg.Port, "prefix", cfg.APIPrefix, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
