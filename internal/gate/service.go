package gate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/obs"
	"github.com/noah-isme/backend-komisi/internal/ratelimit"
)

// MinPassphraseLength is the shortest passphrase, in characters, that CheckStrength accepts.
const MinPassphraseLength = 8

var (
	ErrInvalidPassphrase = common.NewAppError("INVALID_PASSPHRASE", "passphrase is incorrect", http.StatusUnauthorized, nil)
	ErrNotConfigured     = common.NewAppError("GATE_NOT_CONFIGURED", "no passphrase has been set", http.StatusServiceUnavailable, nil)
	ErrWeakPassphrase    = common.NewAppError("WEAK_PASSPHRASE", "passphrase must be at least 8 characters", http.StatusUnprocessableEntity, nil)
	ErrUnauthorized      = common.NewAppError("UNAUTHORIZED", "missing or invalid session", http.StatusUnauthorized, nil)
)

const codeLocked = "GATE_LOCKED"

var errRevoked = errors.New("gate: session issued under a previous passphrase")

// LockDetails accompanies a GATE_LOCKED error.
type LockDetails struct {
	RetryAfterSeconds int `json:"retryAfterSeconds"`
}

// AttemptDetails accompanies an INVALID_PASSPHRASE error.
type AttemptDetails struct {
	RemainingAttempts int `json:"remainingAttempts"`
}

// HashStore persists the passphrase hash.
type HashStore interface {
	PassphraseHash(ctx context.Context) (string, error)
	SetPassphraseHash(ctx context.Context, hash string) error
}

// Session is returned by a successful unlock.
type Session struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service checks the shared passphrase, throttles failures per client and issues session tokens.
type Service struct {
	Hashes      HashStore
	Failures    ratelimit.Limiter
	MaxAttempts int
	Window      time.Duration
	Tokens      Tokens
	Logger      zerolog.Logger
}

// CheckStrength rejects passphrases shorter than MinPassphraseLength characters (runes, not bytes).
func CheckStrength(passphrase string) error {
	if utf8.RuneCountInString(passphrase) < MinPassphraseLength {
		return ErrWeakPassphrase
	}
	return nil
}

// HashPassphrase produces an argon2id hash for storage.
func HashPassphrase(passphrase string) (string, error) {
	return argon2id.CreateHash(passphrase, argon2id.DefaultParams)
}

// Bootstrap stores passphrase as the initial hash when none exists. It reports whether a hash was written.
func (s *Service) Bootstrap(ctx context.Context, passphrase string) (bool, error) {
	if passphrase == "" {
		return false, nil
	}
	current, err := s.Hashes.PassphraseHash(ctx)
	if err != nil {
		return false, err
	}
	if current != "" {
		return false, nil
	}
	hash, err := HashPassphrase(passphrase)
	if err != nil {
		return false, err
	}
	if err := s.Hashes.SetPassphraseHash(ctx, hash); err != nil {
		return false, err
	}
	return true, nil
}

// Unlock verifies passphrase for clientKey. After MaxAttempts failures inside Window every
// attempt is refused until the oldest failure leaves the window.
func (s *Service) Unlock(ctx context.Context, clientKey, passphrase string) (Session, error) {
	hash, err := s.attempt(ctx, "unlock", clientKey, passphrase)
	if err != nil {
		return Session{}, err
	}
	sessionID := uuid.NewString()
	token, expiresAt, err := s.Tokens.Issue(sessionID, generation(hash))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// ChangePassphrase replaces the passphrase after verifying the current one. Wrong guesses
// count against the same per-client window as Unlock. Sessions issued under the old
// passphrase stop validating once the new hash is stored.
func (s *Service) ChangePassphrase(ctx context.Context, clientKey, current, next string) error {
	if err := CheckStrength(next); err != nil {
		return err
	}
	if _, err := s.attempt(ctx, "change", clientKey, current); err != nil {
		return err
	}
	hash, err := HashPassphrase(next)
	if err != nil {
		return err
	}
	if err := s.Hashes.SetPassphraseHash(ctx, hash); err != nil {
		return err
	}
	s.Logger.Info().Str("client", clientKey).Msg("gate passphrase changed")
	return nil
}

// ParseSession validates a session token and checks it was issued under the current passphrase.
func (s *Service) ParseSession(ctx context.Context, token string) (Claims, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return Claims{}, common.NewAppError(ErrUnauthorized.Code, ErrUnauthorized.Message, http.StatusUnauthorized, err)
	}
	hash, err := s.Hashes.PassphraseHash(ctx)
	if err != nil {
		return Claims{}, err
	}
	if hash == "" || claims.Generation != generation(hash) {
		return Claims{}, common.NewAppError(ErrUnauthorized.Code, ErrUnauthorized.Message, http.StatusUnauthorized, errRevoked)
	}
	return claims, nil
}

// attempt checks passphrase for clientKey against the failure window shared by every
// passphrase-checking operation, and returns the stored hash on success.
func (s *Service) attempt(ctx context.Context, op, clientKey, passphrase string) (string, error) {
	key := "unlock:" + clientKey
	failures, err := s.Failures.Count(ctx, key, s.Window)
	if err != nil {
		return "", err
	}
	if failures >= s.MaxAttempts {
		obs.ObserveGateAttempt("locked")
		return "", s.locked(ctx, key)
	}

	hash, ok, err := s.verify(ctx, passphrase)
	if err != nil {
		return "", err
	}
	if !ok {
		obs.ObserveGateAttempt("failure")
		n, err := s.Failures.Record(ctx, key, s.Window)
		if err != nil {
			return "", err
		}
		remaining := s.MaxAttempts - n
		s.Logger.Warn().Str("op", op).Str("client", clientKey).Int("remaining", remaining).Msg("gate passphrase rejected")
		if remaining <= 0 {
			return "", s.locked(ctx, key)
		}
		return "", ErrInvalidPassphrase.WithDetails(AttemptDetails{RemainingAttempts: remaining})
	}

	if err := s.Failures.Reset(ctx, key); err != nil {
		s.Logger.Warn().Err(err).Msg("gate reset failures")
	}
	obs.ObserveGateAttempt("success")
	return hash, nil
}

func (s *Service) verify(ctx context.Context, passphrase string) (string, bool, error) {
	hash, err := s.Hashes.PassphraseHash(ctx)
	if err != nil {
		return "", false, err
	}
	if hash == "" {
		return "", false, ErrNotConfigured
	}
	if passphrase == "" {
		return hash, false, nil
	}
	ok, err := argon2id.ComparePasswordAndHash(passphrase, hash)
	return hash, ok, err
}

// generation fingerprints a stored hash. The salt makes every change produce a new value.
func generation(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func (s *Service) locked(ctx context.Context, key string) error {
	wait, err := s.Failures.RetryAfter(ctx, key, s.Window)
	if err != nil || wait <= 0 {
		wait = s.Window
	}
	return common.NewAppError(codeLocked, "too many failed attempts, try again later", http.StatusTooManyRequests, nil).
		WithDetails(LockDetails{RetryAfterSeconds: int(math.Ceil(wait.Seconds()))})
}

// IsLocked reports whether err is a lockout and how long the client must wait.
func IsLocked(err error) (time.Duration, bool) {
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != codeLocked {
		return 0, false
	}
	d, _ := appErr.Details.(LockDetails)
	return time.Duration(d.RetryAfterSeconds) * time.Second, true
}
