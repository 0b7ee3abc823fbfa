package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/storefront-api/docs"
	"github.com/aaravmahajanofficial/storefront-api/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront-api/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-api/internal/cache"
	"github.com/aaravmahajanofficial/storefront-api/internal/config"
	"github.com/aaravmahajanofficial/storefront-api/internal/events"
	"github.com/aaravmahajanofficial/storefront-api/internal/health"
	"github.com/aaravmahajanofficial/storefront-api/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-api/internal/models"
	"github.com/aaravmahajanofficial/storefront-api/internal/observability"
	repository "github.com/aaravmahajanofficial/storefront-api/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront-api/internal/services"
	"github.com/aaravmahajanofficial/storefront-api/pkg/sendgrid"
	stripeClient "github.com/aaravmahajanofficial/storefront-api/pkg/stripe"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceVersion = "1.0.0"

//	@title						Storefront API
//	@version					1.0
//	@description				Cart, checkout and order management for a single storefront.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := repository.NewDatabase(ctx, &cfg.Database)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Database.MigrateOnStart {
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("❌ Error applying migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	repos := repository.New(db)

	redisClient, err := repository.NewRedisClient(ctx, &cfg.RedisConnect)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	rateLimitRepo := repository.NewRateLimitRepo(redisClient, &cfg.RateConfig)

	payments := stripeClient.NewStripeClient(cfg.Stripe.APIKey, "")
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	publisher := events.NewPublisher(&cfg.Kafka)

	jwtKey := []byte(cfg.Security.JWTKey)
	tokenTTL := time.Duration(cfg.Security.JWTExpiryHours) * time.Hour

	userService := service.NewUserService(repos.User, rateLimitRepo, jwtKey, tokenTTL)
	productService := service.NewProductService(repos.Product, productCache)
	cartService := service.NewCartService(repos.Transactor, repos.Cart, repos.Product)
	notificationService := service.NewNotificationService(repos.User, emailService)
	orderService := service.NewOrderService(
		repos.Transactor, repos.Order, repos.Cart, repos.Product,
		productCache, payments, publisher, notificationService,
	)

	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)

	endpoints := &health.Endpoints{DB: db, RedisClient: redisClient}
	if cfg.Stripe.APIKey != "" {
		endpoints.Stripe = payments
	}

	healthChecker, err := health.NewHealthHandler(cfg.Otel.ServiceName, serviceVersion, endpoints)
	if err != nil {
		slog.Error("❌ Error building health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtKey)
	checkoutLimiter := middleware.NewRateLimiter(cfg.CheckoutLimit.RequestsPerSecond, cfg.CheckoutLimit.Burst)

	auth := func(h http.HandlerFunc) http.HandlerFunc { return authMiddleware.Authenticate(h) }
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.Authenticate(middleware.RequireRole(models.RoleAdmin, h))
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", serviceVersion))

	router := http.NewServeMux()

	router.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	router.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	router.HandleFunc("GET /api/v1/users/profile", auth(userHandler.Profile()))

	router.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	router.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())

	router.HandleFunc("GET /api/v1/cart", auth(cartHandler.GetCart()))
	router.HandleFunc("DELETE /api/v1/cart", auth(cartHandler.ClearCart()))
	router.HandleFunc("POST /api/v1/cart/items", auth(cartHandler.AddItem()))
	router.HandleFunc("PUT /api/v1/cart/items/{productId}", auth(cartHandler.UpdateItemQuantity()))
	router.HandleFunc("DELETE /api/v1/cart/items/{productId}", auth(cartHandler.RemoveItem()))

	router.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(checkoutLimiter.Limit(orderHandler.Checkout())))
	router.HandleFunc("GET /api/v1/orders", auth(orderHandler.ListOrders()))
	router.HandleFunc("GET /api/v1/orders/{id}", auth(orderHandler.GetOrder()))
	router.HandleFunc("POST /api/v1/orders/{id}/cancel", auth(orderHandler.CancelOrder()))
	router.HandleFunc("POST /api/v1/orders/{id}/refund", auth(orderHandler.RequestRefund()))

	router.HandleFunc("POST /api/v1/admin/products", admin(productHandler.CreateProduct()))
	router.HandleFunc("PUT /api/v1/admin/products/{id}", admin(productHandler.UpdateProduct()))
	router.HandleFunc("DELETE /api/v1/admin/products/{id}", admin(productHandler.DeleteProduct()))
	router.HandleFunc("GET /api/v1/admin/orders", admin(orderHandler.ListAllOrders()))
	router.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", admin(orderHandler.UpdateOrderStatus()))
	router.HandleFunc("DELETE /api/v1/admin/orders/{id}", admin(orderHandler.DeleteOrder()))
	router.HandleFunc("PATCH /api/v1/admin/users/{id}/status", admin(userHandler.UpdateUserStatus()))

	router.Handle("GET /health", healthChecker.Handler())
	router.Handle("GET /metrics", metrics.Handler())
	router.Handle("GET /swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = router
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)
	handler = middleware.Logging(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler(handler)

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.HTTPServer.Addr))

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := publisher.Close(); err != nil {
		slog.Error("⚠️ Error closing event publisher", slog.String("error", err.Error()))
	}

	if err := productCache.Close(); err != nil {
		slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
	}

	if err := repos.Close(); err != nil {
		slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Database connection closed")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}
