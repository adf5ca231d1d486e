package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kl-decors-backend/internal/auth"
	"kl-decors-backend/internal/chat"
	"kl-decors-backend/internal/config"
	"kl-decors-backend/internal/database"
	"kl-decors-backend/internal/handlers"
	"kl-decors-backend/internal/mailer"
	"kl-decors-backend/internal/middleware"
	"kl-decors-backend/internal/payments"
	"kl-decors-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	// --- Wiring ---
	tokens := auth.NewManager(cfg.JWTSecret)
	gateway := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	orders := service.NewOrderService(db, gateway, cfg.RazorpayKeySecret)
	bot := chat.NewResponder(chat.NewGeminiCompleter(cfg.GeminiAPIKey))
	mail := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)

	authHandler := handlers.NewAuthHandler(db, tokens)
	packageHandler := handlers.NewPackageHandler(db, cfg.BaseURL)
	cartHandler := handlers.NewCartHandler(db)
	payoutHandler := handlers.NewPayoutHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	orderHandler := handlers.NewOrderHandler(db, orders)
	paymentHandler := handlers.NewPaymentHandler(orders, cfg.RazorpayKeyID)
	contactHandler := handlers.NewContactHandler(db, mail, cfg.ContactInbox)
	chatHandler := handlers.NewChatHandler(bot)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", authHandler.Login)
	r.Static("/uploads", "./uploads")

	// --- FEATURE FLAG: Registration ---
	// Only opens if we explicitly allow it in .env
	if cfg.AllowRegistration {
		r.POST("/register", authHandler.Register)
		log.Warn("⚠️ Registration route is OPEN. Disable this in production!")
	} else {
		log.Info("🔒 Registration route is safely DISABLED.")
	}

	// --- PUBLIC STOREFRONT ROUTES ---
	r.GET("/api/packages", packageHandler.ListPackages)
	r.POST("/api/chat", chatHandler.Ask)
	r.POST("/api/contact", contactHandler.Submit)

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))
	{
		api.GET("/profile", profileHandler.Get)
		api.PUT("/profile", profileHandler.Update)

		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart", cartHandler.AddToCart)
		api.PUT("/cart/:id", cartHandler.UpdateQty)
		api.DELETE("/cart/:id", cartHandler.RemoveItem)
		api.GET("/cart/quote", cartHandler.Quote)

		api.POST("/payout", payoutHandler.Create)
		api.GET("/payout", payoutHandler.GetLatest)

		api.GET("/orders", orderHandler.List)
		api.POST("/orders/cod", orderHandler.PlaceCOD)
		api.POST("/orders/:id/cancel", orderHandler.Cancel)
		api.POST("/orders/:id/return", orderHandler.Return)

		api.POST("/payments/order", paymentHandler.CreateOrder)
		api.POST("/payments/verify", paymentHandler.Verify)

		// ADMIN ONLY
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/packages", packageHandler.AdminListPackages)
			admin.POST("/packages", packageHandler.AddPackage)
			admin.PUT("/packages/:id", packageHandler.UpdatePackage)
			admin.DELETE("/packages/:id", packageHandler.DeletePackage)
			admin.POST("/upload", packageHandler.UploadImage)

			admin.GET("/orders", orderHandler.AdminList)
			admin.POST("/orders/:id/paid", orderHandler.MarkPaid)
			admin.POST("/orders/:id/status", orderHandler.Advance)
			admin.GET("/reports", orderHandler.Report)

			admin.GET("/messages", contactHandler.AdminList)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("🚀 Server starting on %s", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests before exit.
	// Refund calls in particular should not be cut off mid-flight.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
	log.Info("Server stopped")
}
