// Package otp implements the account verification challenge lifecycle:
// issuing OTP+token pairs, consuming them, and re-dispatching the
// verification email.
package otp

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/example/colisync/internal/models"
	"github.com/example/colisync/internal/services"
	"github.com/example/colisync/internal/utils"
)

// ErrInvalidOrExpired is the single error every failed verification attempt
// collapses to. Wrong code, wrong token, expiry and replay are deliberately
// indistinguishable to the caller.
var ErrInvalidOrExpired = errors.New("Code OTP invalide ou expiré")

// ErrUserNotFound is returned when the identifying email matches no account.
var ErrUserNotFound = errors.New("Utilisateur non trouvé")

// Notifier delivers verification emails.
type Notifier interface {
	SendVerification(email services.VerificationEmail) error
}

// Service governs AuthChallenge records from issuance to consumption.
type Service struct {
	db      *gorm.DB
	mailer  Notifier
	siteURL string
	ttl     time.Duration
}

// NewService constructs the verification service.
func NewService(db *gorm.DB, mailer Notifier, siteURL string, ttl time.Duration) *Service {
	return &Service{db: db, mailer: mailer, siteURL: siteURL, ttl: ttl}
}

// Issue creates a fresh challenge for the user and dispatches the
// verification email. Outstanding challenges are left alive; any of them can
// still be consumed. Email delivery failure does not fail Issue.
func (s *Service) Issue(user *models.User) (*models.AuthChallenge, error) {
	code, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	challenge := models.AuthChallenge{
		UserID:    user.ID,
		OTP:       code,
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.db.Create(&challenge).Error; err != nil {
		return nil, err
	}

	s.dispatch(user, &challenge, false)
	return &challenge, nil
}

// Attempt consumes a challenge. It succeeds iff a challenge of the user
// matches the supplied otp and token, is unexpired, and has neither flag
// set. On success both flags flip and the user becomes active. Every
// failure reports ErrInvalidOrExpired.
func (s *Service) Attempt(email, token, code string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Challenges").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	var match *models.AuthChallenge
	for i := range user.Challenges {
		ch := &user.Challenges[i]
		if ch.OTP == code && ch.Token == token && ch.Usable(now) {
			match = ch
			break
		}
	}

	if match == nil {
		return nil, ErrInvalidOrExpired
	}

	if err := s.db.Model(match).Updates(map[string]interface{}{
		"is_verified": true,
		"is_used":     true,
	}).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&user).Update("is_active", true).Error; err != nil {
		return nil, err
	}

	user.IsActive = true
	return &user, nil
}

// Resend re-dispatches the verification email with the caller's existing
// token and otp. No new challenge row is created on this path.
func (s *Service) Resend(email, token, code string) error {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Unlike Issue, a delivery failure here is the whole point of the call
	// and is reported to the caller.
	return s.mailer.SendVerification(services.VerificationEmail{
		To:               user.Email,
		DisplayName:      user.DisplayName,
		OTP:              code,
		VerificationLink: s.VerificationLink(token, user.Email),
		Resend:           true,
	})
}

// VerificationLink builds the link embedded in emails for the given
// challenge token and recipient.
func (s *Service) VerificationLink(token, email string) string {
	return fmt.Sprintf("%s/auth/verifyEmail?token=%s&email=%s", s.siteURL, token, url.QueryEscape(email))
}

func (s *Service) dispatch(user *models.User, challenge *models.AuthChallenge, resend bool) {
	err := s.mailer.SendVerification(services.VerificationEmail{
		To:               user.Email,
		DisplayName:      user.DisplayName,
		OTP:              challenge.OTP,
		VerificationLink: s.VerificationLink(challenge.Token, user.Email),
		Resend:           resend,
	})
	if err != nil {
		log.Printf("[OTP] verification email to %s failed: %v", user.Email, err)
	}
}
