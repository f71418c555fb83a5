package routes

import (
	"log/slog"
	"strings"
	"time"

	"advocatr/backend/config"
	"advocatr/backend/controllers"
	"advocatr/backend/middleware"
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

var errRateLimited = utils.NewAppError(fiber.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please try again later")

// NewApp builds the Fiber application with global middleware and every
// route registered.
func NewApp(svc *services.Services, cfg *config.Config, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "advocatr",
		ErrorHandler: utils.ErrorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    1 << 20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: !strings.Contains(cfg.AllowedOrigins, "*"),
	}))
	app.Use(middleware.Timeout(cfg.RequestTimeout))

	SetupRoutes(app, svc, cfg)
	return app
}

func SetupRoutes(app *fiber.App, svc *services.Services, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(svc.Auth)
	adminMiddleware := middleware.AdminMiddleware()

	api := app.Group("/api")

	// Auth routes
	authController := controllers.NewAuthController(svc.Auth, cfg)
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	api.Post("/forgot-password", rateLimit(cfg), authController.ForgotPassword)
	api.Post("/reset-password", authController.ResetPassword)
	api.Get("/user", authMiddleware, authController.CurrentUser)

	// User routes
	userController := controllers.NewUserController(svc.Auth, svc.Progress)
	api.Get("/user/profile", authMiddleware, userController.GetProfile)
	api.Put("/user/profile", authMiddleware, userController.UpdateProfile)

	// Exercise routes
	exerciseController := controllers.NewExerciseController(svc.Exercises)
	api.Get("/exercises", authMiddleware, exerciseController.ListExercises)
	api.Get("/exercises/:id", authMiddleware, exerciseController.GetExercise)

	// Progress routes; summary before the :exerciseId match
	progressController := controllers.NewProgressController(svc.Progress)
	api.Get("/dashboard", authMiddleware, progressController.GetDashboard)
	api.Get("/progress", authMiddleware, progressController.ListProgress)
	api.Get("/progress/summary", authMiddleware, progressController.GetSummary)
	api.Get("/progress/:exerciseId", authMiddleware, progressController.GetProgress)
	api.Post("/progress/:exerciseId", authMiddleware, progressController.UpsertProgress)

	// Feedback routes
	feedbackController := controllers.NewFeedbackController(svc.Feedback)
	api.Get("/feedback/:progressId", authMiddleware, feedbackController.ListFeedback)
	api.Post("/feedback/:progressId", authMiddleware, feedbackController.SubmitFeedback)

	// Contact
	contactController := controllers.NewContactController(svc.Contact)
	api.Post("/contact", rateLimit(cfg), contactController.SendMessage)

	// Admin routes
	adminController := controllers.NewAdminController(svc.Auth)
	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.Post("/exercises", exerciseController.CreateExercise)
	admin.Put("/exercises/:id", exerciseController.UpdateExercise)
	admin.Delete("/exercises/:id", exerciseController.DeleteExercise)
	admin.Get("/progress", progressController.ListAllProgress)
	admin.Post("/progress/:id/reset", progressController.ResetProgress)
	admin.Post("/users/:id/reset-password", adminController.ResetUserPassword)
}

// rateLimit limits a route per client IP. Each call has its own counters.
func rateLimit(cfg *config.Config) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return errRateLimited
		},
	})
}
