// Package service holds the birthday filter and the external-service
// adapters (mail, avatar storage).
package service

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// MailConfig is passed in explicitly at construction time, the mailer
// keeps no global state.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// LinkBase is the public base URL confirmation links are built on,
	// e.g. https://contacts.example.com
	LinkBase string
}

type Mailer struct {
	cfg MailConfig
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendConfirmation mails the confirmation link for the given token.
// Callers fire this in a goroutine and only log failures, delivery is
// best effort.
func (m *Mailer) SendConfirmation(to, token string) error {
	if to == m.cfg.From {
		return errors.New("invalid recipient address")
	}

	link := fmt.Sprintf("%s/api/auth/confirm_email/%s", strings.TrimRight(m.cfg.LinkBase, "/"), token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirm your email")
	msg.SetBody("text/html", fmt.Sprintf(
		"Click <a href='%s'>here</a> to confirm your email address.<br><br>If you did not sign up, ignore this message.", link))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)

	return d.DialAndSend(msg)
}
