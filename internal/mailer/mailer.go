package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers a plain-text mail. Kept as an interface so handlers can be
// tested without an SMTP server.
type Sender interface {
	Send(from, to, subject, body string) error
}

// SMTPSender sends through a plain SMTP relay (Gmail in production).
type SMTPSender struct {
	dialer *gomail.Dialer
	user   string
}

func NewSMTPSender(host string, port int, user, pass string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		user:   user,
	}
}

func (s *SMTPSender) Send(from, to, subject, body string) error {
	m := gomail.NewMessage()
	// Gmail rejects arbitrary From addresses; send as ourselves and keep
	// the visitor's address as Reply-To
	m.SetHeader("From", s.user)
	m.SetHeader("Reply-To", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
