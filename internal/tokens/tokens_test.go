package tokens

import (
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.ActivationSecret = "activation-secret-32-bytes-xxxxxxxx"
	cfg.JWT.AccessSecret = "access-secret-32-bytes-xxxxxxxxxxxx"
	cfg.JWT.RefreshSecret = "refresh-secret-32-bytes-xxxxxxxxxxx"
	cfg.JWT.ActivationTTL = 5 * time.Minute
	cfg.JWT.AccessTokenTTL = 3000 * time.Hour
	cfg.JWT.RefreshTokenTTL = 1200 * 24 * time.Hour
	return cfg
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestActivationToken_RoundTrip(t *testing.T) {
	iss := NewIssuer(testConfig())
	p := PendingUser{Name: "Alice", Email: "alice@example.com", Password: "pa55word"}
	tok, code, err := iss.IssueActivationToken(p)
	if err != nil {
		t.Fatalf("IssueActivationToken error: %v", err)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 1000 || n > 9999 {
		t.Fatalf("unexpected activation code %q", code)
	}
	claims, err := iss.VerifyActivationToken(tok)
	if err != nil {
		t.Fatalf("VerifyActivationToken error: %v", err)
	}
	if claims.User != p {
		t.Fatalf("payload mismatch: got=%+v want=%+v", claims.User, p)
	}
	if claims.ActivationCode != code {
		t.Fatalf("code mismatch: got=%s want=%s", claims.ActivationCode, code)
	}
}

func TestActivationCode_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := newActivationCode()
		if err != nil {
			t.Fatalf("newActivationCode error: %v", err)
		}
		if len(code) != 4 {
			t.Fatalf("code %q is not four digits", code)
		}
		n, _ := strconv.Atoi(code)
		if n < 1000 || n > 9999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestActivationToken_ExpiresAfterFiveMinutes(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := NewIssuer(testConfig()).WithClock(c.now)
	tok, _, err := iss.IssueActivationToken(PendingUser{Name: "a", Email: "a@b.c", Password: "x"})
	if err != nil {
		t.Fatalf("IssueActivationToken error: %v", err)
	}

	c.t = c.t.Add(4*time.Minute + 59*time.Second)
	if _, err := iss.VerifyActivationToken(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	c.t = c.t.Add(2 * time.Second)
	if _, err := iss.VerifyActivationToken(tok); !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken after expiry, got %v", err)
	}
}

func TestActivationToken_WrongSecretFails(t *testing.T) {
	iss := NewIssuer(testConfig())
	tok, _, err := iss.IssueActivationToken(PendingUser{Email: "a@b.c"})
	if err != nil {
		t.Fatalf("IssueActivationToken error: %v", err)
	}
	other := testConfig()
	other.JWT.ActivationSecret = "different-secret-xxxxxxxxxxxxxxxx"
	if _, err := NewIssuer(other).VerifyActivationToken(tok); !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected verification with wrong secret to fail, got %v", err)
	}
	// an activation token is not a session token
	if _, err := iss.ParseAccessToken(tok); err == nil {
		t.Fatalf("activation token must not parse as an access token")
	}
}

func TestSessionTokens_ClaimsAndWindows(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := NewIssuer(testConfig()).WithClock(c.now)
	u := &models.User{ID: "user-123", Role: models.RoleAdmin}

	pair, err := iss.IssueSessionTokens(u)
	if err != nil {
		t.Fatalf("IssueSessionTokens error: %v", err)
	}
	if !pair.AccessExpiresAt.Equal(c.t.Add(3000 * time.Hour)) {
		t.Fatalf("unexpected access expiry %v", pair.AccessExpiresAt)
	}
	if !pair.RefreshExpiresAt.Equal(c.t.Add(1200 * 24 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry %v", pair.RefreshExpiresAt)
	}

	ac, err := iss.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if ac.Subject != u.ID || ac.Role != models.RoleAdmin || ac.ID == "" {
		t.Fatalf("unexpected access claims: %+v", ac)
	}
	rc, err := iss.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefreshToken error: %v", err)
	}
	if rc.Subject != u.ID || rc.ID == ac.ID {
		t.Fatalf("unexpected refresh claims: %+v", rc)
	}
}

func TestSessionTokens_SecretsAreNotInterchangeable(t *testing.T) {
	iss := NewIssuer(testConfig())
	pair, err := iss.IssueSessionTokens(&models.User{ID: "u1", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("IssueSessionTokens error: %v", err)
	}
	if _, err := iss.ParseAccessToken(pair.RefreshToken); !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
		t.Fatalf("refresh token accepted as access token")
	}
	if _, err := iss.ParseRefreshToken(pair.AccessToken); !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
		t.Fatalf("access token accepted as refresh token")
	}
}

func TestAccessToken_Expiry(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenTTL = time.Minute
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := NewIssuer(cfg).WithClock(c.now)
	pair, err := iss.IssueSessionTokens(&models.User{ID: "u2", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("IssueSessionTokens error: %v", err)
	}
	c.t = c.t.Add(2 * time.Minute)
	if _, err := iss.ParseAccessToken(pair.AccessToken); !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected expired access token to fail, got %v", err)
	}
	if _, err := iss.ParseRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("refresh token should outlive access token: %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	iss := NewIssuer(testConfig())
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		if _, err := iss.ParseAccessToken(raw); !errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
			t.Fatalf("expected malformed token %q to fail, got %v", raw, err)
		}
	}
}

// Rejected when alg=none (unsigned token)
func TestParse_AlgNoneRejected(t *testing.T) {
	payload := `{"sub":"u-none","typ":"access","role":"admin","exp":9999999999}`
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(payload))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := NewIssuer(testConfig()).ParseAccessToken(tok); err == nil {
		t.Fatalf("expected parse to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestParse_TamperedPayload(t *testing.T) {
	iss := NewIssuer(testConfig())
	pair, err := iss.IssueSessionTokens(&models.User{ID: "user-t", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("IssueSessionTokens error: %v", err)
	}
	parts := strings.Split(pair.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	payloadStr := strings.Replace(string(payloadBytes), `"role":"user"`, `"role":"admin"`, 1)
	if payloadStr == string(payloadBytes) {
		t.Fatalf("role claim not found in payload %s", payloadBytes)
	}
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(payloadStr))
	if _, err := iss.ParseAccessToken(strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}

func TestCookies_AttachAndClear(t *testing.T) {
	cfg := testConfig()
	policy := NewCookiePolicy(cfg)
	iss := NewIssuer(cfg)
	pair, err := iss.IssueSessionTokens(&models.User{ID: "u", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("IssueSessionTokens error: %v", err)
	}

	w := httptest.NewRecorder()
	policy.AttachSessionCookies(w, pair)
	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	byName := map[string]int{}
	for _, c := range cookies {
		if !c.HttpOnly {
			t.Fatalf("cookie %s must be httpOnly", c.Name)
		}
		if c.Path != "/" {
			t.Fatalf("cookie %s has path %q", c.Name, c.Path)
		}
		byName[c.Name] = c.MaxAge
	}
	if byName[AccessCookie] != int((3000 * time.Hour).Seconds()) {
		t.Fatalf("unexpected access cookie max-age %d", byName[AccessCookie])
	}
	if byName[RefreshCookie] != int((1200 * 24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected refresh cookie max-age %d", byName[RefreshCookie])
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "SameSite=Lax") {
		t.Fatalf("expected SameSite=Lax in %q", w.Header().Get("Set-Cookie"))
	}

	w = httptest.NewRecorder()
	policy.ClearSessionCookies(w)
	for _, c := range w.Result().Cookies() {
		if c.Value != "" || c.MaxAge >= 0 {
			t.Fatalf("cookie %s not cleared: value=%q max-age=%d", c.Name, c.Value, c.MaxAge)
		}
	}
}
