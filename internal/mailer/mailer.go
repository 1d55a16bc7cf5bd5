package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/parley-chat/parley/internal/config"
)

// Mailer отправка простых текстовых писем
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer отправляет через обычный SMTP с PLAIN-аутентификацией
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer пишет письма в лог, используется в dev-окружении и тестах
type LogMailer struct {
	Sent []SentMail
}

type SentMail struct {
	To      string
	Subject string
	Body    string
}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(to, subject, body string) error {
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	log.Printf("mail to %s: %s", to, subject)
	return nil
}
