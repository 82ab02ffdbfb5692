package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pomoyka/pomoyka-client/internal/config"
	"github.com/pomoyka/pomoyka-client/internal/middleware"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/repository"
	"github.com/pomoyka/pomoyka-client/internal/services"
	"github.com/pomoyka/pomoyka-client/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// Server is the in-memory dev backend: repositories plus handlers
type Server struct {
	Users        *repository.UserRepository
	Cars         *repository.CarRepository
	Centers      *repository.CenterRepository
	Bookings     *repository.BookingRepository
	Transactions *repository.TransactionRepository
	Tokens       *repository.RefreshTokenRepository

	jwtService *jwt.Service
	logger     *logrus.Logger

	auth        *AuthHandler
	user        *UserHandler
	car         *CarHandler
	center      *CenterHandler
	booking     *BookingHandler
	transaction *TransactionHandler
}

// NewServer wires the dev backend from configuration
func NewServer(cfg *config.Config, jwtService *jwt.Service, centers []models.Center, logger *logrus.Logger) *Server {
	s := &Server{
		Users:        repository.NewUserRepository(),
		Cars:         repository.NewCarRepository(),
		Centers:      repository.NewCenterRepository(centers),
		Bookings:     repository.NewBookingRepository(),
		Transactions: repository.NewTransactionRepository(),
		Tokens:       repository.NewRefreshTokenRepository(),
		jwtService:   jwtService,
		logger:       logger,
	}

	s.auth = NewAuthHandler(jwtService, s.Users, s.Cars, s.Tokens, cfg.JWT.RefreshTokenExpiry, logger)
	s.user = NewUserHandler(s.Users, s.Tokens, logger)
	s.car = NewCarHandler(s.Cars, logger)
	s.center = NewCenterHandler(s.Centers)
	s.booking = NewBookingHandler(s.Bookings, s.Centers, s.Transactions, s.Users, BookingHandlerConfig{
		Window:     services.BookingWindow{OpenHour: cfg.Booking.OpenHour, CloseHour: cfg.Booking.CloseHour},
		PublicKey:  cfg.Payment.PublicKey,
		PrivateKey: cfg.Payment.PrivateKey,
		Sandbox:    cfg.Server.Environment != "production",
	}, logger)
	s.transaction = NewTransactionHandler(s.Transactions, logger)

	return s
}

// RegisterRoutes mounts every endpoint on the router
func (s *Server) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	authMiddleware := middleware.AuthMiddleware(s.jwtService, s.logger)

	api := router.Group("/api")

	auth := api.Group("/Auth")
	{
		auth.POST("/Register", s.auth.Register)
		auth.POST("/Login", s.auth.Login)
		auth.POST("/RefreshToken", s.auth.RefreshToken)
	}

	// Image URLs are fetched without credentials
	api.GET("/User/Image/:id", s.user.ServeImage)

	user := api.Group("/User", authMiddleware)
	{
		user.GET("/GetMyProfile", s.user.GetMyProfile)
		user.PUT("/UpdateMyProfile", s.user.UpdateMyProfile)
		user.GET("/GetUserImageUrl", s.user.GetUserImageURL)
		user.POST("/UploadImage", s.user.UploadImage)
		user.DELETE("/DeleteImage", s.user.DeleteImage)
	}

	car := api.Group("/Car", authMiddleware)
	{
		car.GET("/GetMyCar", s.car.GetMyCar)
		car.PUT("/UpdateMyCar", s.car.UpdateMyCar)
	}

	centers := api.Group("/Centers", authMiddleware)
	{
		centers.GET("/GetAll", s.center.GetAll)
		centers.GET("/GetById/:id", s.center.GetByID)
	}

	booking := api.Group("/Booking", authMiddleware)
	{
		booking.POST("/Create", s.booking.Create)
		booking.POST("/Complete/:id", s.booking.Complete)
		booking.POST("/Cancel/:id", s.booking.Cancel)
		booking.GET("/GetById/:id", s.booking.GetByID)
		booking.GET("/GetMy", middleware.RequireRole(string(models.RoleClient)), s.booking.GetMy)
	}

	api.GET("/Transaction/GetMy", authMiddleware, middleware.RequireRole(string(models.RoleClient)), s.transaction.GetMy)
	api.POST("/Rating/Create", authMiddleware, s.transaction.CreateRating)
}
