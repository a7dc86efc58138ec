package routes

import (
	"time"

	"atw-marketplace/internal/adapters/http/handlers"
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// listingCacheAge is the browser cache hint for public listing reads
const listingCacheAge = 60 * time.Second

// Dependencies are the adapters constructed in main
type Dependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	Repos        repositories.Set
	Cache        services.Cache
	Publisher    services.ChatPublisher
	Mail         services.EmailDispatcher
	Gateway      services.PaymentGateway
	HealthChecks map[string]handlers.HealthChecker
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps Dependencies) {
	cfg := deps.Config
	repos := deps.Repos

	// Initialize services
	notifier := services.NewNotificationService(deps.Mail, cfg, deps.Logger)
	authService := services.NewAuthService(repos.Users, notifier, cfg)
	userService := services.NewUserService(repos.Users)
	agentService := services.NewAgentService(repos.Applications, repos.Users, notifier)
	listingService := services.NewListingService(repos.Properties, repos.Cars, deps.Cache, cfg)
	chatService := services.NewChatService(repos.Chats, repos.Users, deps.Publisher)
	paymentService := services.NewPaymentService(repos.Payments, deps.Gateway, cfg)
	dashboardService := services.NewDashboardService(repos.Users, repos.Applications, repos.Properties, repos.Cars, repos.Chats)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, deps.HealthChecks)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	agentHandler := handlers.NewAgentHandler(agentService)
	listingHandler := handlers.NewListingHandler(listingService)
	chatHandler := handlers.NewChatHandler(chatService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(cfg, repos.Users)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, userHandler, requireAuth)

	agentRoutes := api.Group("/agent")
	agentRoutes.Use(requireAuth)
	setupAgentRoutes(agentRoutes, agentHandler)

	propertyRoutes := api.Group("/properties")
	setupPropertyRoutes(propertyRoutes, listingHandler, requireAuth)

	carRoutes := api.Group("/cars")
	setupCarRoutes(carRoutes, listingHandler, requireAuth)

	chatRoutes := api.Group("/chat")
	chatRoutes.Use(requireAuth)
	setupChatRoutes(chatRoutes, chatHandler)

	paymentRoutes := api.Group("/payments")
	setupPaymentRoutes(paymentRoutes, paymentHandler, requireAuth)

	dashboardRoutes := api.Group("/dashboard")
	dashboardRoutes.Use(middleware.NoCacheHeaders())
	dashboardRoutes.Use(requireAuth)
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)
}

// setupAuthRoutes configures authentication and admin user routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, users *handlers.UserHandler, requireAuth fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/logout", handler.Logout)
	router.Get("/verify/:token", handler.VerifyEmail)
	router.Post("/forgot-password", middleware.StrictRateLimiter(), handler.ForgotPassword)
	router.Post("/reset-password/:token", middleware.StrictRateLimiter(), handler.ResetPassword)

	// Protected routes
	router.Get("/profile", requireAuth, handler.Profile)

	// Admin user management
	router.Get("/users", requireAuth, middleware.AdminOnly(), users.ListUsers)
	router.Delete("/users/:id", requireAuth, middleware.AdminOnly(), users.DeleteUser)
}

// setupAgentRoutes configures agent onboarding routes
func setupAgentRoutes(router fiber.Router, handler *handlers.AgentHandler) {
	router.Post("/apply", middleware.AgentOnly(), handler.Apply)
	router.Get("/my-application", middleware.AgentOnly(), handler.MyApplication)

	adminRoutes := router.Group("/applications")
	adminRoutes.Use(middleware.AdminOnly())

	adminRoutes.Get("/pending", handler.Pending)
	adminRoutes.Patch("/:id/approve", handler.Approve)
	adminRoutes.Patch("/:id/reject", handler.Reject)
}

// setupPropertyRoutes configures property listing routes; reads are public
func setupPropertyRoutes(router fiber.Router, handler *handlers.ListingHandler, requireAuth fiber.Handler) {
	router.Get("/", middleware.PublicCache(listingCacheAge), handler.ListProperties)
	router.Get("/:id", handler.GetProperty)

	writer := []fiber.Handler{requireAuth, middleware.AgentOrAdmin()}
	router.Post("/", append(writer, handler.CreateProperty)...)
	router.Patch("/:id", append(writer, handler.UpdateProperty)...)
	router.Delete("/:id", append(writer, handler.DeleteProperty)...)
}

// setupCarRoutes configures car listing routes; reads are public
func setupCarRoutes(router fiber.Router, handler *handlers.ListingHandler, requireAuth fiber.Handler) {
	router.Get("/", middleware.PublicCache(listingCacheAge), handler.ListCars)
	router.Get("/:id", middleware.PublicCache(listingCacheAge), handler.GetCar)

	writer := []fiber.Handler{requireAuth, middleware.AgentOrAdmin()}
	router.Post("/", append(writer, handler.CreateCar)...)
	router.Patch("/:id", append(writer, handler.UpdateCar)...)
	router.Delete("/:id", append(writer, handler.DeleteCar)...)
}

// setupChatRoutes configures chat routes (authenticated)
func setupChatRoutes(router fiber.Router, handler *handlers.ChatHandler) {
	router.Post("/room", handler.CreateRoom)
	router.Post("/message", handler.SendMessage)
	router.Get("/room/:roomId/messages", handler.Messages)
	router.Get("/my-chats", handler.MyChats)
	router.Get("/admin/chats", middleware.AdminOnly(), handler.AllChats)
}

// setupPaymentRoutes configures payment routes; verify is public so the gateway callback can land
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler, requireAuth fiber.Handler) {
	router.Post("/initialize", requireAuth, handler.Initialize)
	router.Get("/verify/:reference", handler.Verify)
	router.Get("/transactions", requireAuth, middleware.AdminOnly(), handler.Transactions)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/user", middleware.UserOnly(), handler.GetUserDashboard)
	router.Get("/agent", middleware.AgentOnly(), handler.GetAgentDashboard)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}
