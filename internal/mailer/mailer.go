// Package mailer sends transactional mail over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"net/url"
	"strings"

	"example.com/splitmyexpenses/backend/internal/config"
)

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay with optional AUTH.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}

// VerificationEmail composes the address confirmation message. The token is
// appended to the configured base URL as a query parameter.
func VerificationEmail(baseURL, name, token string) (subject, body string) {
	link := baseURL
	if strings.Contains(baseURL, "?") {
		link += "&token=" + url.QueryEscape(token)
	} else {
		link += "?token=" + url.QueryEscape(token)
	}

	subject = "Verify your email address"
	body = fmt.Sprintf(
		"Hi %s,\n\n"+
			"Confirm your email address to finish setting up your account:\n\n"+
			"%s\n\n"+
			"If you did not create this account, ignore this message.\n",
		name, link)

	return subject, body
}
