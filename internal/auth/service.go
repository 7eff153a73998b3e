// Package auth implements the account workflows: OTP gated registration,
// login, OTP gated password reset and elevation from seeker to owner.
package auth

import (
	"context"
	"fmt"
	"time"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/notify"
	"pgfinder/pg-api/pkg/security"

	"go.uber.org/zap"
)

type UserStore interface {
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *model.User) error
	SetRole(ctx context.Context, id string, role model.Role) error
	SetPassword(ctx context.Context, id, hash string) error
}

type CodeStore interface {
	Create(ctx context.Context, c *model.OneTimeCode) error
	FindUsable(ctx context.Context, email, code string, purpose model.Purpose, now time.Time) (*model.OneTimeCode, error)
	FindResettable(ctx context.Context, email, code string, now, since time.Time) (*model.OneTimeCode, error)
	Consume(ctx context.Context, id uint, now time.Time) error
	MarkVerified(ctx context.Context, id uint, now time.Time) error
	Redeem(ctx context.Context, id uint, now time.Time) error
	DeleteByEmail(ctx context.Context, email string, purpose model.Purpose) error
}

type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, encoded string) (bool, error)
	CompareDummy(password string)
}

type Tokens interface {
	Issue(userID string) (string, time.Time, error)
	Seal(b security.Bundle) (string, error)
	Open(sealed string) (security.Bundle, error)
}

type Config struct {
	CodeLength  int
	CodeTTL     time.Duration
	ResetGrace  time.Duration
	FrontendURL string
}

type Service struct {
	users  UserStore
	codes  CodeStore
	sender notify.Sender
	hasher Hasher
	tokens Tokens
	cfg    Config

	now     func() time.Time
	newCode func() (string, error)
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

func New(users UserStore, codes CodeStore, sender notify.Sender, hasher Hasher, tokens Tokens, cfg Config, opts ...Option) *Service {
	s := &Service{
		users:  users,
		codes:  codes,
		sender: sender,
		hasher: hasher,
		tokens: tokens,
		cfg:    cfg,
		now:    time.Now,
	}

	s.newCode = func() (string, error) {
		return security.NumericCode(s.cfg.CodeLength)
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// Session is what a successful registration or login hands back.
type Session struct {
	User      model.PublicUser `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) session(u *model.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token, %w", err)
	}

	return &Session{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

// issueCode stores a fresh code for email and mails it. The stored code is
// kept when delivery fails, a later resend replaces it.
func (s *Service) issueCode(ctx context.Context, email, name string, purpose model.Purpose, tmpl notify.Template) error {
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("failed to generate code, %w", err)
	}

	now := s.clock()
	err = s.codes.Create(ctx, &model.OneTimeCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
	})
	if err != nil {
		return fmt.Errorf("failed to store code, %w", err)
	}

	err = s.sender.Send(ctx, email, tmpl, notify.Data{Name: name, Code: code, TTL: s.cfg.CodeTTL})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrDeliveryFailed, err)
	}

	return nil
}

// notifyQuietly sends a mail whose failure must not fail the operation.
func (s *Service) notifyQuietly(ctx context.Context, email, name string, tmpl notify.Template) {
	err := s.sender.Send(ctx, email, tmpl, notify.Data{Name: name, FrontendURL: s.cfg.FrontendURL})
	if err != nil {
		zap.L().Warn("Failed to send notification", zap.String("template", string(tmpl)), zap.Error(err))
	}
}
