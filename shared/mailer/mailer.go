package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Config holds the SMTP relay settings for outbound mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers one-time passcodes to customers over SMTP. It is the only
// component that ever sees a raw OTP besides the generating flow; codes are
// placed into message bodies and never logged.
type Mailer struct {
	config Config
	dialer *gomail.Dialer
}

// New creates a Mailer for the given relay.
func New(cfg Config) *Mailer {
	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config: cfg,
		dialer: dialer,
	}
}

// SendVerificationOTP mails the signup verification code.
func (m *Mailer) SendVerificationOTP(to, code string, validFor time.Duration) error {
	htmlBody := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
			<h2>Email Verification</h2>
			<p>Hello,</p>
			<p>Thank you for signing up with <strong>Nandan Foods</strong>.
			To complete your registration, please verify your email address using the code below:</p>
			<div style="margin: 20px 0; text-align: center;">
				<span style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</span>
			</div>
			<p>This code is valid for %d minutes.</p>
			<p>Please do not share this code with anyone.</p>
			<hr>
			<p style="font-size: 12px;">If you did not request this verification, please ignore this email.</p>
		</div>
	`, code, int(validFor.Minutes()))

	return m.send(to, "Verify Your Email Address", "", htmlBody)
}

// SendResetOTP mails the password reset code.
func (m *Mailer) SendResetOTP(to, code string, validFor time.Duration) error {
	body := fmt.Sprintf(
		"Your password reset code is: %s\n\nIt expires in %d minutes.\n\nIf you did not request a password reset, you can safely ignore this email.",
		code, int(validFor.Minutes()),
	)

	return m.send(to, "Reset your password", body, "")
}

func (m *Mailer) send(to, subject, body, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)

	if htmlBody != "" {
		msg.SetBody("text/html", htmlBody)
		if body != "" {
			msg.AddAlternative("text/plain", body)
		}
	} else {
		msg.SetBody("text/plain", body)
	}

	return m.dialer.DialAndSend(msg)
}
