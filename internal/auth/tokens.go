package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials is returned for a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired, or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRefreshConsumed is returned when a refresh token is presented a
	// second time. Refresh happens exactly once per token; on reuse the
	// client must log in again.
	ErrRefreshConsumed = errors.New("refresh token already used")
)

// Claims carried by access tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenPair is an access token plus its single-use refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRecord struct {
	username  string
	expiresAt time.Time
	consumed  bool
}

// TokenManager issues and verifies admin tokens. Refresh tokens are opaque
// single-use values tracked in memory; access tokens are HS256 JWTs.
type TokenManager struct {
	secret        []byte
	adminUser     string
	adminPassword string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time

	mu       sync.Mutex
	refresh  map[string]*refreshRecord
	lastSeen time.Time
}

func NewTokenManager(secret, adminUser, adminPassword string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{
		secret:        []byte(secret),
		adminUser:     adminUser,
		adminPassword: adminPassword,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
		refresh:       make(map[string]*refreshRecord),
	}, nil
}

// Login checks the configured admin credentials and issues a token pair.
func (m *TokenManager) Login(username, password string) (TokenPair, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) == 1
	if !userOK || !passOK {
		return TokenPair{}, ErrInvalidCredentials
	}
	return m.issue(username)
}

// Refresh exchanges a refresh token for a fresh pair, exactly once. A reused
// or unknown token forces re-login; there is no retry loop.
func (m *TokenManager) Refresh(refreshToken string) (TokenPair, error) {
	m.mu.Lock()
	record, ok := m.refresh[refreshToken]
	if !ok {
		m.mu.Unlock()
		return TokenPair{}, ErrInvalidToken
	}
	if record.consumed {
		m.mu.Unlock()
		return TokenPair{}, ErrRefreshConsumed
	}
	if m.now().After(record.expiresAt) {
		delete(m.refresh, refreshToken)
		m.mu.Unlock()
		return TokenPair{}, ErrInvalidToken
	}
	record.consumed = true
	username := record.username
	m.mu.Unlock()

	return m.issue(username)
}

// Verify parses and validates an access token.
func (m *TokenManager) Verify(accessToken string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(accessToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) issue(username string) (TokenPair, error) {
	now := m.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return TokenPair{}, err
	}

	m.mu.Lock()
	m.refresh[refresh] = &refreshRecord{username: username, expiresAt: now.Add(m.refreshTTL)}
	m.pruneLocked(now)
	m.mu.Unlock()

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// pruneLocked drops expired refresh records at most once a minute.
func (m *TokenManager) pruneLocked(now time.Time) {
	if now.Sub(m.lastSeen) < time.Minute {
		return
	}
	m.lastSeen = now
	for token, record := range m.refresh {
		if now.After(record.expiresAt) {
			delete(m.refresh, token)
		}
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
