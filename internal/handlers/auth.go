package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/colisync/internal/config"
	"github.com/example/colisync/internal/middleware"
	"github.com/example/colisync/internal/models"
	"github.com/example/colisync/internal/otp"
	"github.com/example/colisync/internal/utils"
)

var validate = validator.New()

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
	otp *otp.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otpService *otp.Service) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otp: otpService}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates an inactive account and issues its first verification
// challenge. The account only becomes active once a challenge is consumed.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Champs requis manquants ou invalides")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Cette adresse email est déjà utilisée",
			"field":   "email",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de créer le compte")
	}

	user := models.User{
		Email:        req.Email,
		DisplayName:  req.Name,
		PasswordHash: passwordHash,
		Role:         models.RoleMember,
		IsActive:     false,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	challenge, err := h.otp.Issue(&user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Erreur d'envoi")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"redirect_url": h.otp.VerificationLink(challenge.Token, user.Email),
		"user": fiber.Map{
			"id":           user.ID,
			"email":        user.Email,
			"display_name": user.DisplayName,
		},
	})
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

// VerifyEmail consumes a verification challenge. On success the account is
// activated and a session cookie is issued, so the one-click link logs the
// user straight in.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Champs requis manquants ou invalides")
	}

	user, err := h.otp.Attempt(req.Email, req.Token, req.OTP)
	if err != nil {
		if errors.Is(err, otp.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, otp.ErrInvalidOrExpired) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de générer le jeton de session")
	}

	middleware.SetSessionCookie(c, token, h.cfg.TokenExpires)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email vérifié avec succès",
	})
}

// ResendOTP re-dispatches the verification email with the caller's existing
// token and code. No new challenge is created on this path.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Champs requis manquants ou invalides")
	}

	if err := h.otp.Resend(req.Email, req.Token, req.OTP); err != nil {
		if errors.Is(err, otp.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Une erreur est survenue lors du renvoi du code OTP.")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Un nouvel email de vérification a été envoyé.",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user and issues the session cookie.
// Unknown email and wrong password report the same message.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Champs requis manquants ou invalides")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Adresse email ou mot de passe incorrect")
		}
		return err
	}

	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusBadRequest, "Adresse email ou mot de passe incorrect")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de générer le jeton de session")
	}

	middleware.SetSessionCookie(c, token, h.cfg.TokenExpires)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Utilisateur connecté avec succès",
		"data":    sanitizeUser(&user),
	})
}

// Logout clears the session cookie. The token itself stays valid until its
// natural expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Déconnexion réussie",
	})
}

// CurrentUser returns the sanitized profile of the authenticated caller.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non authentifié")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Utilisateur non trouvé")
		}
		return err
	}

	return c.JSON(fiber.Map{"user": sanitizeUser(&user)})
}

// sanitizeUser projects a user without its password hash.
func sanitizeUser(user *models.User) fiber.Map {
	return fiber.Map{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"role":         user.Role,
		"is_active":    user.IsActive,
		"created_at":   user.CreatedAt,
		"updated_at":   user.UpdatedAt,
	}
}
