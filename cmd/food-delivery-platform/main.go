package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/handlers"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/health"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/metrics"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/tracing"
	"github.com/lucasferreira-dev/food-delivery-platform/pkg/sendGrid"
	"github.com/lucasferreira-dev/food-delivery-platform/pkg/stripe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := tracing.Setup(context.Background(), cfg)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	if err := repository.Migrate(repos.DB); err != nil {
		slog.Error("❌ Error running migrations", "error", err.Error())
		os.Exit(1)
	}

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	jwtKey := []byte(cfg.Security.JWTKey)
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey)
	sendGridClient := sendGrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	rateLimitRepo := repository.NewRateLimitRepo(redisClient, cfg)
	tokenRepo := repository.NewTokenRepo(redisClient, cfg)
	cartRepo := repository.NewCartRepository(redisClient)

	userService := service.NewUserService(repos.User, rateLimitRepo, tokenRepo, sendGridClient, cfg.Security)
	userHandler := handlers.NewUserHandler(userService)
	addressService := service.NewAddressService(repos.Address)
	addressHandler := handlers.NewAddressHandler(addressService)
	restaurantService := service.NewRestaurantService(repos.Restaurant)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	cartService := service.NewCartService(cartRepo, repos.Restaurant)
	cartHandler := handlers.NewCartHandler(cartService)
	feeService := service.NewDeliveryFeeService(cfg.DeliveryFee)
	orderService := service.NewOrderService(repos.Order, repos.Address, repos.Restaurant, repos.User,
		cartService, feeService, stripeClient, sendGridClient, cfg.Stripe.Currency)
	orderHandler := handlers.NewOrderHandler(orderService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health handler", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("POST /api/v1/users/forgot-password", userHandler.ForgotPassword())
	routerMux.HandleFunc("POST /api/v1/users/reset-password", userHandler.ResetPassword())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))
	routerMux.HandleFunc("PUT /api/v1/users/profile", authMiddleware.Authenticate(userHandler.UpdateProfile()))
	routerMux.HandleFunc("PUT /api/v1/users/password", authMiddleware.Authenticate(userHandler.ChangePassword()))

	routerMux.HandleFunc("GET /api/v1/restaurants", restaurantHandler.ListRestaurants())
	routerMux.HandleFunc("GET /api/v1/restaurants/{id}", restaurantHandler.GetRestaurant())
	routerMux.HandleFunc("GET /api/v1/restaurants/{id}/menu", restaurantHandler.GetMenu())

	routerMux.HandleFunc("GET /api/v1/addresses", authMiddleware.Authenticate(addressHandler.ListAddresses()))
	routerMux.HandleFunc("POST /api/v1/addresses", authMiddleware.Authenticate(addressHandler.CreateAddress()))
	routerMux.HandleFunc("PUT /api/v1/addresses/{id}", authMiddleware.Authenticate(addressHandler.UpdateAddress()))
	routerMux.HandleFunc("DELETE /api/v1/addresses/{id}", authMiddleware.Authenticate(addressHandler.DeleteAddress()))

	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("POST /api/v1/cart/replace", authMiddleware.Authenticate(cartHandler.ReplaceCart()))
	routerMux.HandleFunc("PUT /api/v1/cart/items/{itemId}", authMiddleware.Authenticate(cartHandler.UpdateItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{itemId}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{itemId}/all", authMiddleware.Authenticate(cartHandler.RemoveItemCompletely()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Authenticate(cartHandler.ClearCart()))

	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/cancel", authMiddleware.Authenticate(orderHandler.CancelOrder()))
	routerMux.HandleFunc("PATCH /api/v1/orders/{id}/status", authMiddleware.Authenticate(orderHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/delivery-person", authMiddleware.Authenticate(orderHandler.AssignDeliveryPerson()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/rate", authMiddleware.Authenticate(orderHandler.RateOrder()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/rate-delivery", authMiddleware.Authenticate(orderHandler.RateDeliveryPerson()))

	routerMux.HandleFunc("GET /api/v1/delivery-fee", authMiddleware.Authenticate(orderHandler.DeliveryFeeQuote()))

	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	if cfg.Tracing.Enabled {
		handler = otelhttp.NewHandler(handler, "http.server")
	}

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracing shutdown encountered an issue", slog.String("error", err.Error()))
	}

	if err := redisClient.Close(); err != nil {
		slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
	}
}
