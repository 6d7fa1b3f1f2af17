// Package otp generates and validates the 6-digit one-time passcodes used
// for email verification and password reset. Only SHA-256 hashes of codes
// are persisted; raw codes exist in memory just long enough to be mailed.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
)

var (
	// ErrNoChallenge means no passcode is outstanding for the user.
	ErrNoChallenge = errors.New("no outstanding challenge")
	// ErrExpired means the outstanding passcode is past its expiry.
	ErrExpired = errors.New("challenge expired")
	// ErrMismatch means the candidate code did not match.
	ErrMismatch = errors.New("code mismatch")
)

const codeSpace = 1000000

// Generate draws a 6-digit code uniformly from [0, 10^6).
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashCode returns the hex-encoded SHA-256 of a code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Engine issues and verifies challenges against the user store. Brute-force
// defense is the rate limiter in front of the API; the attempt counter is
// telemetry.
type Engine struct {
	users repository.UserRepository
	ttl   time.Duration
	now   func() time.Time
}

// NewEngine creates an Engine issuing challenges with the given lifetime.
func NewEngine(users repository.UserRepository, ttl time.Duration) *Engine {
	return &Engine{
		users: users,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue creates a fresh challenge for the user, replacing any outstanding
// one, and returns the raw code for out-of-band delivery.
func (e *Engine) Issue(ctx context.Context, userID string) (string, error) {
	code, err := Generate()
	if err != nil {
		return "", err
	}

	challenge := e.NewChallenge(code)
	if _, err := e.users.Update(ctx, userID, repository.UpdateUserParams{
		OTPChallenge: &challenge,
	}); err != nil {
		return "", err
	}

	return code, nil
}

// NewChallenge builds the challenge record for a raw code without
// persisting it. Used by flows that write the challenge together with
// other fields in a single update.
func (e *Engine) NewChallenge(code string) model.OTPChallenge {
	return model.OTPChallenge{
		Hash:      HashCode(code),
		ExpiresAt: e.now().Add(e.ttl),
		Attempts:  0,
	}
}

// Verify checks a candidate code against the user's outstanding challenge.
// On match the challenge is cleared with a conditional update, so of two
// racing verifications at most one succeeds; markVerified flips the user's
// verified flag within the same update. On mismatch the attempt counter is
// incremented and persisted.
func (e *Engine) Verify(ctx context.Context, user *model.User, candidate string, markVerified bool) error {
	challenge := user.OTPChallenge
	if challenge == nil {
		return ErrNoChallenge
	}

	if !e.now().Before(challenge.ExpiresAt) {
		return ErrExpired
	}

	candidateHash := HashCode(candidate)
	if subtle.ConstantTimeCompare([]byte(candidateHash), []byte(challenge.Hash)) != 1 {
		if err := e.users.IncrementOTPAttempts(ctx, user.ID.Hex()); err != nil {
			return err
		}
		return ErrMismatch
	}

	cleared, err := e.users.ClearOTPChallenge(ctx, user.ID.Hex(), challenge.Hash, markVerified)
	if err != nil {
		return err
	}
	if !cleared {
		// Another request consumed or replaced the challenge first.
		return ErrNoChallenge
	}

	return nil
}
