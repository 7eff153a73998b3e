package security

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	tokenTypeAuth         = "auth"
	tokenTypeRegistration = "registration"

	// Registration bundles outlive several resends but not a whole day.
	bundleTTL = 24 * time.Hour
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

type authClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// Bundle is the registration data a client holds between requesting and
// verifying a registration code. It is signed and then encrypted, so the
// client can neither read nor alter it. It is never stored.
type Bundle struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	PasswordHash string `json:"pwd"`
}

type bundleClaims struct {
	jwt.RegisteredClaims
	Bundle
	Type string `json:"type"`
}

// Tokens issues and verifies HS256 session tokens and registration bundles.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	bundle cipher.AEAD
}

func NewTokens(secret []byte, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}

	return &Tokens{secret: secret, ttl: ttl, now: now, bundle: bundleCipher(secret)}
}

// bundleCipher derives the bundle encryption key from the signing secret so
// the two keys are never the same bytes.
func bundleCipher(secret []byte) cipher.AEAD {
	key := make([]byte, chacha20poly1305.KeySize)

	kdf := hkdf.New(sha256.New, secret, nil, []byte(tokenTypeRegistration+" bundle"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		panic(err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		panic(err)
	}

	return aead
}

// Issue returns a session token bound to userID together with its expiry.
func (t *Tokens) Issue(userID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Type:   tokenTypeAuth,
	})

	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return s, exp, nil
}

// Verify returns the user id a session token was issued for.
func (t *Tokens) Verify(tokenStr string) (string, error) {
	var claims authClaims
	if err := t.parse(tokenStr, &claims); err != nil {
		return "", err
	}

	if claims.Type != tokenTypeAuth || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}

// Seal signs a registration bundle and encrypts the signed token with
// XChaCha20-Poly1305. The result is base64url(nonce || ciphertext).
func (t *Tokens) Seal(b Bundle) (string, error) {
	now := t.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, bundleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(bundleTTL)),
		},
		Bundle: b,
		Type:   tokenTypeRegistration,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, t.bundle.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := t.bundle.Seal(nonce, nonce, []byte(signed), []byte(tokenTypeRegistration))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts, verifies and decodes a sealed registration bundle.
func (t *Tokens) Open(sealed string) (Bundle, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < t.bundle.NonceSize() {
		return Bundle{}, ErrTokenInvalid
	}

	n := t.bundle.NonceSize()
	signed, err := t.bundle.Open(nil, raw[:n], raw[n:], []byte(tokenTypeRegistration))
	if err != nil {
		return Bundle{}, ErrTokenInvalid
	}

	var claims bundleClaims
	if err := t.parse(string(signed), &claims); err != nil {
		return Bundle{}, err
	}

	if claims.Type != tokenTypeRegistration || claims.Email == "" || claims.PasswordHash == "" {
		return Bundle{}, ErrTokenInvalid
	}

	return claims.Bundle, nil
}

func (t *Tokens) parse(tokenStr string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	return nil
}
