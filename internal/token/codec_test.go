package token

import (
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
}

func newTestCodec(t *testing.T, cfg Config) *Codec {
	t.Helper()
	c, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func TestNewCodec_RejectsMisconfiguration(t *testing.T) {
	cases := []Config{
		{RefreshSecret: "r", AccessTTL: time.Hour, RefreshTTL: time.Hour},
		{AccessSecret: "a", AccessTTL: time.Hour, RefreshTTL: time.Hour},
		{AccessSecret: "a", RefreshSecret: "r", RefreshTTL: time.Hour},
		{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Hour},
	}
	for i, cfg := range cases {
		if _, err := NewCodec(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}

func TestAccessRoundTrip(t *testing.T) {
	c := newTestCodec(t, testConfig())

	tok, err := c.IssueAccess("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	claims, err := c.DecodeAccess(tok)
	if err != nil {
		t.Fatalf("DecodeAccess error: %v", err)
	}
	if claims.AccountID != "acc-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenKind != KindAccess {
		t.Fatalf("token_kind = %q, want Access", claims.TokenKind)
	}
	exp := claims.ExpiresAt.Time
	iat := claims.IssuedAt.Time
	if got := exp.Sub(iat); got != time.Hour {
		t.Fatalf("lifetime = %v, want 1h", got)
	}
}

func TestCrossKindDecodeFails(t *testing.T) {
	c := newTestCodec(t, testConfig())

	access, err := c.IssueAccess("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	refresh, err := c.IssueRefresh("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := c.DecodeRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted by refresh decoder: %v", err)
	}
	if _, err := c.DecodeAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted by access decoder: %v", err)
	}
}

// With one secret shared across kinds the signature no longer separates
// them; the token_kind assertion has to.
func TestKindClaimAssertedWithSharedSecret(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	c := newTestCodec(t, cfg)

	access, err := c.IssueAccess("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if _, err := c.DecodeRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for kind mismatch, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Nanosecond
	c := newTestCodec(t, cfg)

	tok, err := c.IssueAccess("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := c.DecodeAccess(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestTamperedToken(t *testing.T) {
	c := newTestCodec(t, testConfig())

	tok, err := c.IssueAccess("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	// flip one byte in the signature segment
	b := []byte(tok)
	b[len(b)-1] ^= 0x01
	if _, err := c.DecodeAccess(string(b)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestGarbageToken(t *testing.T) {
	c := newTestCodec(t, testConfig())
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := c.DecodeAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestWrongSecretFails(t *testing.T) {
	c1 := newTestCodec(t, testConfig())
	cfg2 := testConfig()
	cfg2.AccessSecret = "a-different-secret"
	c2 := newTestCodec(t, cfg2)

	tok, err := c1.IssueAccess("acc-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if _, err := c2.DecodeAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken across secrets, got %v", err)
	}
}
