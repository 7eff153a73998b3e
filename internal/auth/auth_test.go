package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/notify"
	"pgfinder/pg-api/internal/store"
	"pgfinder/pg-api/internal/testutil"
	"pgfinder/pg-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to   string
	tmpl notify.Template
	data notify.Data
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (f *fakeSender) Send(_ context.Context, to string, tmpl notify.Template, data notify.Data) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		return f.fail
	}

	f.sent = append(f.sent, sentMail{to, tmpl, data})
	return nil
}

func (f *fakeSender) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sent[len(f.sent)-1]
}

type harness struct {
	svc    *Service
	users  *store.Users
	codes  *store.Codes
	sender *fakeSender
	tokens *security.Tokens
	clock  *testutil.Clock
	next   []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn := testutil.NewDB(t)
	h := &harness{
		users:  store.NewUsers(conn),
		codes:  store.NewCodes(conn),
		sender: &fakeSender{},
		clock:  testutil.NewClock(),
	}
	h.tokens = security.NewTokens([]byte("test-secret"), 30*24*time.Hour, h.clock.Now)

	h.svc = New(h.users, h.codes, h.sender, security.NewFast(), h.tokens, Config{
		CodeLength: 6,
		CodeTTL:    10 * time.Minute,
		ResetGrace: 10 * time.Minute,
	},
		WithClock(h.clock.Now),
		WithCodeGenerator(func() (string, error) {
			if len(h.next) == 0 {
				return security.NumericCode(6)
			}
			c := h.next[0]
			h.next = h.next[1:]
			return c, nil
		}),
	)

	return h
}

// register runs the full registration flow and returns the session.
func (h *harness) register(t *testing.T, email, password string) *Session {
	t.Helper()
	ctx := context.Background()

	pending, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Test User", Email: email, Password: password})
	require.NoError(t, err)

	s, err := h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{
		Email:    email,
		Code:     h.sender.last().data.Code,
		TempData: pending.TempData,
	})
	require.NoError(t, err)

	return s
}

func TestRegistrationEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.next = []string{"482193"}

	pending, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", pending.Email)
	assert.NotContains(t, pending.TempData, "Secret123")

	raw, err := base64.RawURLEncoding.DecodeString(pending.TempData)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$argon2id$")
	assert.NotContains(t, string(raw), "alice@example.com")

	mail := h.sender.last()
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Equal(t, notify.RegistrationOtp, mail.tmpl)
	assert.Equal(t, "482193", mail.data.Code)

	// Nothing is stored about the user before verification
	exists, err := h.users.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	session, err := h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{
		Email:    "alice@example.com",
		Code:     "482193",
		TempData: pending.TempData,
	})
	require.NoError(t, err)

	assert.True(t, session.User.Verified)
	assert.Equal(t, model.RoleSeeker, session.User.Role)
	assert.Equal(t, "Alice", session.User.Name)

	userID, err := h.tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)

	assert.Equal(t, notify.Welcome, h.sender.last().tmpl)

	// The password from registration works for login
	login, err := h.svc.Login(ctx, LoginInput{Email: "Alice@Example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
}

func TestRegistrationSecondVerifyConflicts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.next = []string{"111111", "222222"}

	in := RegistrationInput{Name: "Bob", Email: "bob@example.com", Password: "hunter22"}
	first, err := h.svc.RequestRegistrationOtp(ctx, in)
	require.NoError(t, err)
	second, err := h.svc.RequestRegistrationOtp(ctx, in)
	require.NoError(t, err)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: in.Email, Code: "111111", TempData: first.TempData})
	require.NoError(t, err)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: in.Email, Code: "222222", TempData: second.TempData})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = h.svc.RequestRegistrationOtp(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegistrationRoles(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	for email, role := range map[string]model.Role{
		"legacy@example.com": model.RoleSeeker,
		"owner@example.com":  model.RoleOwner,
	} {
		in := RegistrationInput{Name: "Someone", Email: email, Password: "secret1", Role: "user"}
		if role == model.RoleOwner {
			in.Role = "owner"
		}

		pending, err := h.svc.RequestRegistrationOtp(ctx, in)
		require.NoError(t, err)

		s, err := h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: email, Code: h.sender.last().data.Code, TempData: pending.TempData})
		require.NoError(t, err)
		assert.Equal(t, role, s.User.Role)
	}

	_, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: "admin"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegistrationValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.RequestRegistrationOtp(context.Background(), RegistrationInput{Name: "A", Email: "not-an-email", Password: "123"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, h.sender.sent)
}

func TestVerifyRejectsForeignTempData(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.next = []string{"333333", "444444"}

	mallory, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Mallory", Email: "mallory@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Carol", Email: "carol@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: "carol@example.com", Code: "444444", TempData: mallory.TempData})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: "mallory@example.com", Code: "333333", TempData: mallory.TempData + "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestExpiredCodeNeverAccepted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.next = []string{"555555"}

	pending, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Dan", Email: "dan@example.com", Password: "secret1"})
	require.NoError(t, err)

	h.clock.Advance(10 * time.Minute)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: "dan@example.com", Code: "555555", TempData: pending.TempData})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)

	// Same for reset codes
	h.register(t, "erin@example.com", "secret1")
	h.next = []string{"666666"}
	require.NoError(t, h.svc.RequestPasswordReset(ctx, ForgotPasswordInput{Email: "erin@example.com"}))
	h.clock.Advance(11 * time.Minute)

	err = h.svc.VerifyResetOtp(ctx, VerifyResetInput{Email: "erin@example.com", Code: "666666"})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
	err = h.svc.ResetPassword(ctx, ResetPasswordInput{Email: "erin@example.com", Code: "666666", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestConsumedCodeNeverAcceptedAgain(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.register(t, "frank@example.com", "secret1")

	h.next = []string{"777777"}
	require.NoError(t, h.svc.RequestPasswordReset(ctx, ForgotPasswordInput{Email: "frank@example.com"}))

	require.NoError(t, h.svc.VerifyResetOtp(ctx, VerifyResetInput{Email: "frank@example.com", Code: "777777"}))

	err := h.svc.VerifyResetOtp(ctx, VerifyResetInput{Email: "frank@example.com", Code: "777777"})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.register(t, "grace@example.com", "secret1")

	_, wrongPassword := h.svc.Login(ctx, LoginInput{Email: "grace@example.com", Password: "nope-nope"})
	_, unknownEmail := h.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "nope-nope"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperr.Status(wrongPassword), apperr.Status(unknownEmail))
	assert.Equal(t, apperr.Message(wrongPassword), apperr.Message(unknownEmail))
	assert.Equal(t, "Invalid email or password", apperr.Message(unknownEmail))
}

func TestBecomeOwnerTwice(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := h.register(t, "heidi@example.com", "secret1")

	u, err := h.svc.BecomeOwner(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, u.Role)

	_, err = h.svc.BecomeOwner(ctx, s.User.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyOwner)

	me, err := h.svc.Me(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, me.Role)
}

func TestResendInvalidatesOldCodes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.next = []string{"121212", "343434"}

	pending, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Ivan", Email: "ivan@example.com", Password: "secret1"})
	require.NoError(t, err)

	resent, err := h.svc.ResendRegistrationOtp(ctx, ResendInput{Email: "ivan@example.com", TempData: pending.TempData})
	require.NoError(t, err)
	assert.Equal(t, "Ivan", h.sender.last().data.Name)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: "ivan@example.com", Code: "121212", TempData: resent.TempData})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)

	_, err = h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: "ivan@example.com", Code: "343434", TempData: resent.TempData})
	assert.NoError(t, err)
}

func TestResetForUnknownEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	err := h.svc.RequestPasswordReset(ctx, ForgotPasswordInput{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 404, apperr.Status(err))

	n, err := h.codes.Count(ctx, "nobody@example.com", model.PurposePasswordReset)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, h.sender.sent)
}

func TestResetAfterVerifyWithinGrace(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.register(t, "judy@example.com", "secret1")

	h.next = []string{"909090"}
	require.NoError(t, h.svc.RequestPasswordReset(ctx, ForgotPasswordInput{Email: "judy@example.com"}))
	require.NoError(t, h.svc.VerifyResetOtp(ctx, VerifyResetInput{Email: "judy@example.com", Code: "909090"}))

	h.clock.Advance(5 * time.Minute)
	require.NoError(t, h.svc.ResetPassword(ctx, ResetPasswordInput{Email: "judy@example.com", Code: "909090", NewPassword: "brandnew"}))
	assert.Equal(t, notify.PasswordResetConfirmation, h.sender.last().tmpl)

	_, err := h.svc.Login(ctx, LoginInput{Email: "judy@example.com", Password: "brandnew"})
	require.NoError(t, err)
	_, err = h.svc.Login(ctx, LoginInput{Email: "judy@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	// A redeemed code is spent for good
	err = h.svc.ResetPassword(ctx, ResetPasswordInput{Email: "judy@example.com", Code: "909090", NewPassword: "again123"})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestResetAfterGraceFails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.register(t, "ken@example.com", "secret1")

	h.next = []string{"808080"}
	require.NoError(t, h.svc.RequestPasswordReset(ctx, ForgotPasswordInput{Email: "ken@example.com"}))
	require.NoError(t, h.svc.VerifyResetOtp(ctx, VerifyResetInput{Email: "ken@example.com", Code: "808080"}))

	h.clock.Advance(10*time.Minute + time.Second)
	err := h.svc.ResetPassword(ctx, ResetPasswordInput{Email: "ken@example.com", Code: "808080", NewPassword: "brandnew"})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestResetWithoutVerify(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.register(t, "liam@example.com", "secret1")

	h.next = []string{"707070"}
	require.NoError(t, h.svc.RequestPasswordReset(ctx, ForgotPasswordInput{Email: "liam@example.com"}))
	require.NoError(t, h.svc.ResetPassword(ctx, ResetPasswordInput{Email: "liam@example.com", Code: "707070", NewPassword: "brandnew"}))

	// The code was redeemed directly, verifying it afterwards fails
	err := h.svc.VerifyResetOtp(ctx, VerifyResetInput{Email: "liam@example.com", Code: "707070"})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestDeliveryFailureKeepsCode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.sender.fail = errors.New("smtp down")

	_, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Mia", Email: "mia@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrDeliveryFailed)
	assert.Equal(t, "Failed to send email", apperr.Message(err))

	n, err := h.codes.Count(ctx, "mia@example.com", model.PurposeRegistration)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestWelcomeFailureDoesNotFailVerify(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.next = []string{"246810"}

	pending, err := h.svc.RequestRegistrationOtp(ctx, RegistrationInput{Name: "Nia", Email: "nia@example.com", Password: "secret1"})
	require.NoError(t, err)

	h.sender.fail = errors.New("smtp down")
	s, err := h.svc.VerifyRegistrationOtp(ctx, VerifyRegistrationInput{Email: "nia@example.com", Code: "246810", TempData: pending.TempData})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
}
