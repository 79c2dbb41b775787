package router

import (
	"time"

	"ajnabi/config"
	"ajnabi/internal/handler"
	"ajnabi/internal/middleware"
	"ajnabi/internal/repository"
	"ajnabi/internal/service"
	"ajnabi/internal/session"
	"ajnabi/internal/ws"
	"ajnabi/pkg/cloudinary"
	"ajnabi/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Services
	otpSvc := service.NewOTPService(cfg, accountRepo, chatRepo, log)
	billingSvc := service.NewBillingService(&payment.StubProvider{}, log)
	matcher := service.NewStubMatchmaker(cfg.Match.StubDelay)

	// Session core
	viewHub := ws.NewViewHub()
	manager := session.NewManager(matcher, chatRepo, accountRepo, billingSvc, viewHub, log)
	manager.SetMatchTimeout(cfg.Match.Timeout)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, otpSvc, accountRepo)
	sessionHandler := handler.NewSessionHandler(manager)
	uploadHandler := handler.NewUploadHandler(cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)
	otpLimiter := middleware.NewInMemoryRateLimiter(5, time.Minute)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/otp/send", middleware.RateLimit(otpLimiter), authHandler.SendOTP)
			authGroup.POST("/otp/verify", authHandler.VerifyOTP)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		sess := api.Group("/session")
		{
			sess.GET("/view", authMw, sessionHandler.GetView)
			sess.POST("/events", authMw, sessionHandler.PostEvent)
			sess.GET("/ws", ws.UpgradeViewWS(&cfg.JWT, viewHub, manager))
		}

		api.POST("/uploads/photo", authMw, uploadHandler.UploadProfilePhoto)
	}

	return r
}
