package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/config"
	"github.com/LovationAdmin/wedding-api/handlers"
	"github.com/LovationAdmin/wedding-api/middleware"
	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/routes"
	"github.com/LovationAdmin/wedding-api/services"
	"github.com/LovationAdmin/wedding-api/utils"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	utils.ConfigureLogging(cfg.LogLevel)
	if utils.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	models.RegisterValidators()

	st, err := config.OpenStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	cipher, err := utils.NewFieldCipher(cfg.DataEncryptionKey)
	if err != nil {
		log.WithError(err).Fatal("Invalid DATA_ENCRYPTION_KEY")
	}
	if cipher == nil {
		log.Warn("⚠️  DATA_ENCRYPTION_KEY not set: change request messages are stored in clear")
	}

	wsHandler := handlers.NewWSHandler()
	defer wsHandler.Close()

	auditService := services.NewAuditService(st)
	auditService.SetListener(wsHandler)

	rsvpService := services.NewRSVPService(st, config.EnvRSVPSettings{}, auditService, cipher)
	householdService := services.NewHouseholdService(st, auditService, cipher)
	authService := services.NewAuthService(st, auditService, cfg.JWTSecret, cfg.JWTExpiresIn)
	reportService := services.NewReportService(st, auditService)
	emailService := services.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AdminURL, cfg.CoupleNotifyEmails)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to bootstrap admin account")
	}
	if created {
		log.WithField("email", utils.MaskEmail(cfg.AdminEmail)).Info("👤 Bootstrap admin created")
	}

	router := gin.New()
	router.Use(gin.Recovery())

	allowedOrigins := cfg.Origins()
	log.WithField("origins", allowedOrigins).Info("🌍 CORS: Allowing origins")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	router.Use(middleware.RequestLogger())

	stop := make(chan struct{})
	limiters := map[string]*middleware.RateLimiter{
		"global":         middleware.NewRateLimiter("global", 100, time.Minute),
		"household":      middleware.NewRateLimiter("household", 20, time.Minute),
		"submit":         middleware.NewRateLimiter("submit", 5, 15*time.Minute),
		"change_request": middleware.NewRateLimiter("change_request", 3, time.Hour),
		"login":          middleware.NewRateLimiter("login", 10, 15*time.Minute),
	}
	for _, l := range limiters {
		l.StartCleanup(time.Minute, 2*time.Hour, stop)
	}
	router.Use(limiters["global"].Handler())

	authMiddleware := middleware.AuthMiddleware(authService)

	routes.SetupPublicRoutes(&router.RouterGroup, handlers.NewRSVPHandler(rsvpService, emailService), routes.PublicLimits{
		Household:     limiters["household"].Handler(),
		Submit:        limiters["submit"].Handler(),
		ChangeRequest: limiters["change_request"].Handler(),
	})
	routes.SetupAuthRoutes(&router.RouterGroup, handlers.NewAuthHandler(authService), authMiddleware, limiters["login"].Handler())

	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	routes.SetupAdminRoutes(admin,
		handlers.NewHouseholdHandler(householdService),
		handlers.NewReportHandler(reportService),
		handlers.NewAuditHandler(auditService),
		wsHandler,
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	srv := &http.Server{
		Handler:           router,
		Addr:              net.JoinHostPort("0.0.0.0", cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogStartup("Wedding API", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", fmt.Sprintf("%v", sig)).Info("shutting down server")
	close(stop)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
}
