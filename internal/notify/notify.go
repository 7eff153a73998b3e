// Package notify delivers the emails the auth workflow sends: one-time
// codes, the welcome mail and the password change confirmation.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

type Template string

const (
	RegistrationOtp           Template = "registration-otp"
	Welcome                   Template = "welcome"
	PasswordResetOtp          Template = "password-reset-otp"
	PasswordResetConfirmation Template = "password-reset-confirmation"
)

// Data is everything a template may reference.
type Data struct {
	Name        string
	Code        string
	TTL         time.Duration
	FrontendURL string
}

// Minutes is used by the templates to print TTL.
func (d Data) Minutes() int {
	return int(d.TTL / time.Minute)
}

// Sender delivers one rendered template to one address. A returned error
// means the mail was not handed off.
type Sender interface {
	Send(ctx context.Context, to string, tmpl Template, data Data) error
}

type message struct {
	Subject string
	HTML    string
}

func render(tmpl Template, data Data) (*message, error) {
	t, ok := templates[tmpl]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", tmpl)
	}

	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s, %w", tmpl, err)
	}

	return &message{Subject: t.subject, HTML: buf.String()}, nil
}

type mail struct {
	subject string
	body    *template.Template
}
