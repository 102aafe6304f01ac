// Package mail sends the attendee-facing emails over plain SMTP.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Universal interface for mail service
type MailService interface {
	SendEmail(to, subject, body string) error
}

// EmailService holds the SMTP endpoint and credentials of the platform
// mailbox every notification is sent from.
type EmailService struct {
	host  string
	port  string
	email string
	auth  smtp.Auth
}

// NewEmailService configures the Gmail SMTP endpoint with the platform
// mailbox and its app password.
func NewEmailService(email, appPassword string) *EmailService {
	return &EmailService{
		host:  "smtp.gmail.com",
		port:  "587",
		email: email,
		auth:  smtp.PlainAuth("", email, appPassword, "smtp.gmail.com"),
	}
}

// SendEmail delivers one HTML email to a single recipient.
func (service *EmailService) SendEmail(to, subject, body string) error {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("From: %s\r\n", service.email))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%s", service.host, service.port)
	return smtp.SendMail(addr, service.auth, service.email, []string{to}, []byte(message.String()))
}

// EventSubject builds the subject line used for every event change email.
func EventSubject(eventTitle string) string {
	return "Update on Event: " + eventTitle
}
