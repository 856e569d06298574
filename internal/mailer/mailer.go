// Package mailer delivers contact-form messages over SMTP.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/metrics"
)

const contactSubject = "New Contact Message"

// Email is a plain-text message.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// SMTPSender sends through an SMTP relay. gomail negotiates STARTTLS when the
// server offers it.
type SMTPSender struct {
	dialer *gomail.Dialer
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password)}
}

func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", e.From)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Body)
	return s.dialer.DialAndSend(m)
}

// ContactMessage is what a visitor submits through the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// ContactService composes contact messages and hands them to a Sender.
type ContactService struct {
	sender  Sender
	from    string
	to      string
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewContactService(sender Sender, from, to string, log logrus.FieldLogger, m *metrics.Metrics) *ContactService {
	return &ContactService{sender: sender, from: from, to: to, log: log, metrics: m}
}

// Send validates msg and delivers it to the configured inbox.
func (s *ContactService) Send(ctx context.Context, msg ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return apperror.InvalidInput("Name, email, and message are required.")
	}

	err := s.sender.Send(ctx, Email{
		From:    s.from,
		To:      s.to,
		Subject: contactSubject,
		Body:    composeBody(msg),
	})
	if err != nil {
		s.metrics.UpstreamFailed("smtp")
		s.log.WithError(err).WithField("reply_to", msg.Email).Error("contact message not delivered")
		return apperror.Upstream("Internal server error", err)
	}
	return nil
}

func composeBody(msg ContactMessage) string {
	return fmt.Sprintf("New message from Traveller's Verdict:\n\nName: %s\nEmail: %s\nMessage:\n%s\n",
		msg.Name, msg.Email, msg.Message)
}
