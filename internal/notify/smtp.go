package notify

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender dials the configured server for every message.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(c SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   c.From,
		dialer: gomail.NewDialer(c.Host, c.Port, c.Username, c.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to string, tmpl Template, data Data) error {
	if to == s.from {
		return errors.New("invalid email address")
	}

	msg, err := render(tmpl, data)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s mail, %w", tmpl, err)
	}

	return nil
}
