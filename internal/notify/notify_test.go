package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderOtp(t *testing.T) {
	msg, err := render(RegistrationOtp, Data{Name: "Alice", Code: "482193", TTL: 10 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, "PG Finder - Email Verification OTP", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello Alice!")
	assert.Contains(t, msg.HTML, "482193")
	assert.Contains(t, msg.HTML, "expire in 10 minutes")
}

func TestRenderEscapesName(t *testing.T) {
	msg, err := render(Welcome, Data{Name: "<script>x</script>", FrontendURL: "http://localhost:3000"})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestRenderEveryTemplate(t *testing.T) {
	for _, tmpl := range []Template{RegistrationOtp, Welcome, PasswordResetOtp, PasswordResetConfirmation} {
		msg, err := render(tmpl, Data{Name: "Bob", Code: "000001", TTL: time.Minute})
		require.NoError(t, err, tmpl)
		assert.NotEmpty(t, msg.Subject, tmpl)
	}

	_, err := render("nope", Data{})
	assert.Error(t, err)
}

func TestLogSenderHidesCodeAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), "alice@example.com", PasswordResetOtp, Data{Name: "Alice", Code: "123456"}))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "alice@example.com", entry.ContextMap()["to"])
	assert.NotContains(t, entry.ContextMap(), "code")
}
