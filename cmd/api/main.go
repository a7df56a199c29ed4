package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/mitea/boba-platform-api/internal/config"
	"github.com/mitea/boba-platform-api/internal/handler"
	"github.com/mitea/boba-platform-api/internal/middleware"
	"github.com/mitea/boba-platform-api/internal/repository"
	"github.com/mitea/boba-platform-api/internal/service"
	"github.com/mitea/boba-platform-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	toppingRepo := repository.NewToppingRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	guestCartRepo := repository.NewGuestCartRepository(redisClient, cfg.Cart.GuestTTL)
	orderRepo := repository.NewOrderRepository(dbPool)
	requestRepo := repository.NewRequestRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(
		userRepo, redisClient,
		cfg.JWT.Secret, cfg.JWT.Expiration,
		cfg.Auth.OTPTTL, cfg.Auth.ResetTokenTTL,
		cfg.Google.ClientID,
		service.NewLogMailer(log),
	)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, toppingRepo, redisClient)
	cartSvc := service.NewCartService(cartRepo, guestCartRepo, productRepo, toppingRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, amqpCh, cfg.Tracking.BaseURL)
	requestSvc := service.NewRequestService(requestRepo, catalogSvc)
	accountSvc := service.NewAccountService(userRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc, cartSvc, cfg.JWT.CookieName, int(cfg.JWT.Expiration.Seconds()))
	catalogH := handler.NewCatalogHandler(catalogSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	requestH := handler.NewRequestHandler(requestSvc, userRepo)
	accountH := handler.NewAccountHandler(accountSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	orderWorker := worker.NewOrderWorker(amqpCh, orderRepo, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	authed := middleware.AuthMiddleware(cfg.JWT.Secret, cfg.JWT.CookieName)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/verify-email", authH.VerifyEmail)
		auth.POST("/resend-verification", authH.ResendVerification)
		auth.POST("/login", authH.Login)
		auth.POST("/google", authH.LoginWithGoogle)
		auth.POST("/forgot-password", authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
		auth.GET("/me", authed, authH.Me)
		auth.POST("/logout", authed, authH.Logout)
		auth.POST("/merge-cart", authed, authH.MergeCart)

		// Public catalog
		products := v1.Group("/products")
		products.GET("", catalogH.ListProducts)
		products.GET("/:id", catalogH.GetProduct)

		categories := v1.Group("/categories")
		categories.GET("", catalogH.ListCategories)

		toppings := v1.Group("/toppings")
		toppings.GET("", catalogH.ListToppings)

		// Guest cart (unauthenticated)
		guest := v1.Group("/guest-cart")
		guest.GET("/:token", cartH.GetGuestCart)
		guest.POST("/:token/items", cartH.AddGuestItem)
		guest.DELETE("/:token", cartH.DeleteGuestCart)

		// Account cart
		cart := v1.Group("/cart", authed)
		cart.GET("", cartH.GetCart)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items/:id", cartH.UpdateItem)
		cart.DELETE("/items/:id", cartH.DeleteItem)
		cart.DELETE("", cartH.ClearCart)

		// Customer orders
		orders := v1.Group("/orders", authed)
		orders.POST("", orderH.Checkout)
		orders.GET("", orderH.ListMyOrders)
		orders.GET("/:id", orderH.GetMyOrder)
		orders.POST("/:id/cancel", orderH.CancelMyOrder)
		orders.GET("/:id/history", orderH.StatusHistory)
		orders.GET("/:id/qr", orderH.TrackingQR)

		// Manager store surface
		store := v1.Group("/stores/my-store", authed, middleware.ManagerOnly())
		store.GET("/orders", orderH.ListStoreOrders)
		store.GET("/orders/:id", orderH.GetOrder)
		store.PATCH("/orders/:id/status", orderH.UpdateStatus)
		store.PATCH("/orders/:id/payment", orderH.UpdatePaymentStatus)
		store.PATCH("/products/:id/store-status", catalogH.SetProductStoreStatus)
		store.PATCH("/categories/:id/store-status", catalogH.SetCategoryStoreStatus)
		store.PATCH("/toppings/:id/store-status", catalogH.SetToppingStoreStatus)

		// Manager change requests
		requests := v1.Group("/manager/requests", authed, middleware.ManagerOnly())
		requests.POST("", requestH.Submit)
		requests.GET("", requestH.ListMyRequests)
		requests.GET("/:id", requestH.GetMyRequest)
		requests.PUT("/:id", requestH.UpdateMyRequest)
		requests.POST("/:id/cancel", requestH.CancelMyRequest)
		requests.POST("/preview-diff", requestH.PreviewDiff)

		// Admin back office
		admin := v1.Group("/admin", authed, middleware.AdminOnly())
		admin.POST("/products", catalogH.CreateProduct)
		admin.PUT("/products/:id", catalogH.UpdateProduct)
		admin.DELETE("/products/:id", catalogH.SoftDeleteProduct)
		admin.POST("/categories", catalogH.CreateCategory)
		admin.PUT("/categories/:id", catalogH.UpdateCategory)
		admin.DELETE("/categories/:id", catalogH.SoftDeleteCategory)
		admin.POST("/categories/sync", catalogH.SyncCategories)
		admin.POST("/toppings", catalogH.CreateTopping)
		admin.PUT("/toppings/:id", catalogH.UpdateTopping)
		admin.DELETE("/toppings/:id", catalogH.DeleteTopping)
		admin.GET("/requests", requestH.ListAll)
		admin.POST("/requests/:id/approve", requestH.Approve)
		admin.POST("/requests/:id/reject", requestH.Reject)
		admin.GET("/users", accountH.List)
		admin.PATCH("/users/:id/status", accountH.SetStatus)
		admin.POST("/users/:id/verify", accountH.Verify)
		admin.GET("/orders", orderH.ListStoreOrders)
		admin.GET("/orders/:id", orderH.GetOrder)
		admin.PATCH("/orders/:id/status", orderH.UpdateStatus)
		admin.PATCH("/orders/:id/payment", orderH.UpdatePaymentStatus)
	}

	if err := orderWorker.Start(ctx); err != nil {
		log.Error("start order worker", "error", err)
		os.Exit(1)
	}

	// The SPA runs on its own origin and sends credentials, so CORS wraps
	// the whole router.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	orderWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
