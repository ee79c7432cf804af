package gate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	scopeClaim      = "scope"
	sessionScope    = "gate.session"
	generationClaim = "gen"
)

var (
	errNoSecret   = errors.New("gate: token secret not configured")
	errEmptyToken = errors.New("gate: empty token")
)

// Claims is what a valid session token carries.
type Claims struct {
	SessionID  string    `json:"sessionId"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Generation string    `json:"-"`
}

// Tokens signs and parses HS256 session tokens. The key is bound to HS256, so tokens
// signed with any other algorithm, including "none", fail verification.
type Tokens struct {
	Secret    []byte
	Issuer    string
	Audience  string
	TTL       time.Duration
	ClockSkew time.Duration
	Now       func() time.Time
}

func (t Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Issue signs a token for sessionID bound to the passphrase generation gen and returns it with its expiry.
func (t Tokens) Issue(sessionID, gen string) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errNoSecret
	}
	issued := t.now()
	expires := issued.Add(t.TTL)
	tok, err := jwt.NewBuilder().
		Subject(sessionID).
		Issuer(t.Issuer).
		Audience([]string{t.Audience}).
		IssuedAt(issued).
		NotBefore(issued.Add(-t.ClockSkew)).
		Expiration(expires).
		Claim(scopeClaim, sessionScope).
		Claim(generationClaim, gen).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("gate: build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("gate: sign token: %w", err)
	}
	return string(signed), expires, nil
}

// Parse verifies the signature, the registered claims and the session scope of raw.
func (t Tokens) Parse(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, errEmptyToken
	}
	if len(t.Secret) == 0 {
		return Claims{}, errNoSecret
	}
	tok, err := jwt.ParseString(raw, jwt.WithKey(jwa.HS256, t.Secret), jwt.WithValidate(false))
	if err != nil {
		return Claims{}, fmt.Errorf("gate: parse token: %w", err)
	}
	opts := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(t.now)),
		jwt.WithAcceptableSkew(t.ClockSkew),
		jwt.WithRequiredClaim(jwt.SubjectKey),
		jwt.WithClaimValue(scopeClaim, sessionScope),
	}
	if t.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.Issuer))
	}
	if t.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.Audience))
	}
	if err := jwt.Validate(tok, opts...); err != nil {
		return Claims{}, fmt.Errorf("gate: validate token: %w", err)
	}
	claims := Claims{SessionID: tok.Subject(), ExpiresAt: tok.Expiration()}
	if v, ok := tok.Get(generationClaim); ok {
		claims.Generation, _ = v.(string)
	}
	return claims, nil
}
