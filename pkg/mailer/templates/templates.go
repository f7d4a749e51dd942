package templates

import (
	"fmt"
	"time"

	"github.com/matcornic/hermes/v2"
)

// Template names.
const (
	VerifyEmail     = "verify_email"
	ForgotPassword  = "forgot_password"
	PasswordChanged = "password_changed"
)

// Brand holds the product details shown in every email.
type Brand struct {
	Name       string
	Link       string
	Logo       string
	SupportURL string
}

// EmailData defines the per-message fields for a template.
type EmailData struct {
	Name          string
	ActionURL     string
	ExpiresAt     time.Time
	ExpiresAtText string
}

// Option pattern
type Option func(*EmailData)

func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// Rendered is a complete email body in both formats.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Composer renders transactional emails with hermes.
type Composer struct {
	h     hermes.Hermes
	brand Brand
}

func NewComposer(b Brand) *Composer {
	return &Composer{
		brand: b,
		h: hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        b.Name,
				Link:        b.Link,
				Logo:        b.Logo,
				Copyright:   fmt.Sprintf("Copyright © %d %s. All rights reserved.", time.Now().Year(), b.Name),
				TroubleText: "If the '{ACTION}' button does not work, copy and paste the URL below into your web browser.",
			},
		},
	}
}

// Render builds the named template for recipient name.
func (c *Composer) Render(name, recipient string, opts ...Option) (Rendered, error) {
	d := EmailData{Name: recipient}
	for _, opt := range opts {
		opt(&d)
	}

	var (
		subject string
		body    hermes.Body
	)
	switch name {
	case VerifyEmail:
		subject = "Verify your " + c.brand.Name + " account"
		body = hermes.Body{
			Name:   d.Name,
			Intros: []string{fmt.Sprintf("Welcome to %s! Please confirm your email address.", c.brand.Name)},
			Actions: []hermes.Action{{
				Instructions: "Click the button below to verify your account:",
				Button:       hermes.Button{Text: "Verify account", Link: d.ActionURL, Color: "#22BC66"},
			}},
			Outros: c.outros(d, "If you did not create an account, no further action is required."),
		}
	case ForgotPassword:
		subject = "Reset your " + c.brand.Name + " password"
		body = hermes.Body{
			Name:   d.Name,
			Intros: []string{"You have received this email because a password reset was requested for your account."},
			Actions: []hermes.Action{{
				Instructions: "Click the button below to choose a new password:",
				Button:       hermes.Button{Text: "Reset password", Link: d.ActionURL, Color: "#DC4D2F"},
			}},
			Outros: c.outros(d, "If you did not request a password reset, you can ignore this email."),
		}
	case PasswordChanged:
		subject = "Your " + c.brand.Name + " password was changed"
		body = hermes.Body{
			Name:   d.Name,
			Intros: []string{"Your password has been changed and all active sessions were signed out."},
			Outros: c.outros(d, "If this was not you, reset your password immediately."),
		}
	default:
		return Rendered{}, fmt.Errorf("unknown email template %q", name)
	}

	email := hermes.Email{Body: body}
	html, err := c.h.GenerateHTML(email)
	if err != nil {
		return Rendered{}, fmt.Errorf("render html %q: %w", name, err)
	}
	text, err := c.h.GeneratePlainText(email)
	if err != nil {
		return Rendered{}, fmt.Errorf("render text %q: %w", name, err)
	}
	return Rendered{Subject: subject, Text: text, HTML: html}, nil
}

func (c *Composer) outros(d EmailData, closing string) []string {
	out := make([]string, 0, 3)
	if d.ExpiresAtText != "" {
		out = append(out, "This link expires on "+d.ExpiresAtText+".")
	}
	out = append(out, closing)
	if c.brand.SupportURL != "" {
		out = append(out, "Need help? Visit "+c.brand.SupportURL)
	}
	return out
}
