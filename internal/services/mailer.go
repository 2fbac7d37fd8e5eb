package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// MailerService delivers verification emails over SMTP. When no SMTP host is
// configured the service degrades to logging the message, so registration
// keeps working in local setups.
type MailerService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailerService creates a new MailerService.
func NewMailerService(host string, port int, username, password, from string) *MailerService {
	return &MailerService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// VerificationEmail carries everything needed to render a verification
// message: the raw OTP and the link embedding it for one-click verification.
type VerificationEmail struct {
	To               string
	DisplayName      string
	OTP              string
	VerificationLink string
	Resend           bool
}

// SendVerification sends the OTP email. The message offers two submission
// paths for the same challenge: typing the code, or following the link that
// embeds it.
func (s *MailerService) SendVerification(email VerificationEmail) error {
	oneClickLink := fmt.Sprintf("%s&otp=%s&autoVerify=true", email.VerificationLink, email.OTP)

	subject := "Vérification de votre adresse e-mail"
	greeting := "<p>Merci de vous être inscrit sur notre plateforme.</p>"
	if email.Resend {
		subject = "Nouveau code de vérification ColiSync"
		greeting = "<p>Vous avez demandé un nouveau code de vérification pour votre compte ColiSync.</p>"
	}

	body := fmt.Sprintf(`<h1>Bienvenue sur ColiSync, %s</h1>
%s
<p>Vous pouvez vérifier votre compte de deux façons :</p>
<p><strong>Option 1 :</strong> Saisissez ce code OTP :</p>
<p style="font-size: 24px; font-weight: bold;">%s</p>
<p><strong>Option 2 :</strong> Ou cliquez <a href="%s">ici</a> pour une vérification instantanée.</p>
<p>Ce code expirera dans 10 minutes.</p>
<p>Si vous n'avez pas demandé ce code, vous pouvez ignorer cet email.</p>
<p>Cordialement,<br/>L'équipe ColiSync</p>`,
		email.DisplayName, greeting, email.OTP, oneClickLink)

	if s.host == "" {
		log.Printf("[Mailer] SMTP not configured, skipping delivery to %s (otp=%s)", email.To, email.OTP)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Printf("[Mailer] Failed to send verification email to %s: %v", email.To, err)
		return err
	}

	return nil
}
