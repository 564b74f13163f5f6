// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// NotificationService handles sending notifications to users
type NotificationService interface {
	SendEmail(email, subject, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	emailProvider EmailProvider
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		emailProvider: emailProvider,
	}
}

// SendEmail sends an email to the specified email address
func (s *NotificationServiceImpl) SendEmail(email, subject, message string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}

	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	return s.emailProvider.SendEmail(email, subject, message)
}

// MailerSendEmailProvider delivers mail through the MailerSend API
type MailerSendEmailProvider struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

func NewMailerSendEmailProvider(apiKey, fromName, fromEmail string) EmailProvider {
	return &MailerSendEmailProvider{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (p *MailerSendEmailProvider) SendEmail(email, subject, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := p.client.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: p.fromName, Email: p.fromEmail})
	msg.SetRecipients([]mailersend.Recipient{{Email: email}})
	msg.SetSubject(subject)
	msg.SetText(message)

	_, err := p.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailersend delivery failed: %w", err)
	}

	return nil
}

// DevEmailProvider logs messages instead of delivering them. Used in
// development and as the default when no provider is configured.
type DevEmailProvider struct{}

func NewDevEmailProvider() EmailProvider {
	return &DevEmailProvider{}
}

func (p *DevEmailProvider) SendEmail(email, subject, message string) error {
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}
