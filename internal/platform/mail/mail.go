// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package mail provides the outbound email collaborator.

Delivery is strictly fire-and-forget: the password-reset flow must return
the same response whether or not the email exists, so a send failure is
logged by the caller and never surfaced to the end user.
*/
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// # Contracts

// Sender delivers a single plain-text email.
type Sender interface {
	Send(to, subject, body string) error
}

// # SMTP Implementation

// SMTPSender implements [Sender] over plain SMTP with optional auth.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPSender constructs an SMTP-backed [Sender].
func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

// Send delivers one message. It blocks for the duration of the SMTP exchange.
func (sender *SMTPSender) Send(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + sender.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if sender.user != "" {
		auth = smtp.PlainAuth("", sender.user, sender.pass, sender.host)
	}

	addr := sender.host + ":" + sender.port
	if err := smtp.SendMail(addr, auth, sender.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: failed to send to %s: %w", to, err)
	}

	return nil
}

// # Disabled Delivery

// NoopSender implements [Sender] by dropping every message.
// Used when no SMTP host is configured (local development, tests).
type NoopSender struct{}

// Send discards the message.
func (NoopSender) Send(to, subject, body string) error { return nil }
