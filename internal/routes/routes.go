package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/colisync/internal/config"
	"github.com/example/colisync/internal/handlers"
	"github.com/example/colisync/internal/middleware"
	"github.com/example/colisync/internal/otp"
	"github.com/example/colisync/internal/services"
)

// ErrorHandler maps every failure to the stable {error, success:false}
// response shape. Internal detail only leaks in development mode.
func ErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Erreur interne du serveur"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else if cfg.DevMode {
			message = err.Error()
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	mailer := services.NewMailerService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	otpService := otp.NewService(db, mailer, cfg.SiteURL, cfg.OTPExpires)

	authHandler := handlers.NewAuthHandler(db, cfg, otpService)
	reservationHandler := handlers.NewReservationHandler(db, cfg)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verifyEmail", authHandler.VerifyEmail)
	auth.Post("/resendOtpCode", authHandler.ResendOTP)
	auth.Post("/logout", authHandler.Logout)

	users := api.Group("/users", middleware.SessionGate(cfg))
	users.Get("/current", authHandler.CurrentUser)
	users.Get("/dashboard", reservationHandler.Dashboard)
	users.Post("/send-package", reservationHandler.Create)
	users.Get("/bookings-list", reservationHandler.List)
	users.Post("/booking-details", reservationHandler.Details)
}
