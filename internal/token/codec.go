// Package token encodes and decodes the signed access and refresh tokens.
// The two kinds carry the same claim shape but are signed with distinct
// secrets; a token presented to the wrong decoder fails signature
// verification, and the kind claim is asserted after decode as well.
package token

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates the two token flavors on the wire.
type Kind string

const (
	KindAccess  Kind = "Access"
	KindRefresh Kind = "Refresh"
)

var (
	// ErrInvalidToken covers bad signatures, malformed payloads and
	// kind-claim mismatches.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when exp is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the wire payload of both token kinds.
type Claims struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	TokenKind Kind   `json:"token_kind"`
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes for both kinds. It is
// passed explicitly to the codec so tests can run with isolated secrets.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// ConfigFromEnv reads JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY (required)
// plus optional JWT_ACCESS_EXPIRES_IN / JWT_REFRESH_EXPIRES_IN in seconds,
// defaulting to 24h and 7d.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		AccessSecret:  os.Getenv("JWT_SECRET_KEY"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET_KEY"),
		AccessTTL:     24 * time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	}
	if cfg.AccessSecret == "" {
		return Config{}, errors.New("JWT_SECRET_KEY must be set")
	}
	if cfg.RefreshSecret == "" {
		return Config{}, errors.New("JWT_REFRESH_SECRET_KEY must be set")
	}
	if v := os.Getenv("JWT_ACCESS_EXPIRES_IN"); v != "" {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid JWT_ACCESS_EXPIRES_IN: %q", v)
		}
		cfg.AccessTTL = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("JWT_REFRESH_EXPIRES_IN"); v != "" {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid JWT_REFRESH_EXPIRES_IN: %q", v)
		}
		cfg.RefreshTTL = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

// Codec signs and verifies token pairs.
type Codec struct {
	cfg Config
}

// NewCodec validates the config once; misconfiguration is a startup error,
// never a per-request one.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token: both signing secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: lifetimes must be positive")
	}
	return &Codec{cfg: cfg}, nil
}

// IssueAccess signs an access token for the given account.
func (c *Codec) IssueAccess(accountID, username string) (string, error) {
	return c.issue(accountID, username, KindAccess, c.cfg.AccessTTL, c.cfg.AccessSecret)
}

// IssueRefresh signs a refresh token for the given account.
func (c *Codec) IssueRefresh(accountID, username string) (string, error) {
	return c.issue(accountID, username, KindRefresh, c.cfg.RefreshTTL, c.cfg.RefreshSecret)
}

func (c *Codec) issue(accountID, username string, kind Kind, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		Username:  username,
		TokenKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// DecodeAccess verifies an access token and returns its claims.
func (c *Codec) DecodeAccess(tokenStr string) (*Claims, error) {
	return c.decode(tokenStr, KindAccess, c.cfg.AccessSecret)
}

// DecodeRefresh verifies a refresh token and returns its claims.
func (c *Codec) DecodeRefresh(tokenStr string) (*Claims, error) {
	return c.decode(tokenStr, KindRefresh, c.cfg.RefreshSecret)
}

func (c *Codec) decode(tokenStr string, kind Kind, secret string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	// The distinct secret already rejects cross-kind tokens; the claim check
	// backstops a deployment that reuses one secret for both kinds.
	if claims.TokenKind != kind {
		return nil, ErrInvalidToken
	}
	if claims.AccountID == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
