package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names used by the storefront and the seller panel.
const (
	SessionCookieName = "token"
	SellerCookieName  = "sellerToken"
)

// PurposeResetPassword marks a credential that authorizes exactly one
// password change and nothing else.
const PurposeResetPassword = "reset_password"

const roleSeller = "seller"

// ErrInvalidToken is returned for every verification failure. Callers are
// never told whether a token was malformed, expired, or forged.
var ErrInvalidToken = errors.New("invalid token")

// sessionClaims is the payload of session cookies. Subject carries the user
// id; Role is set only on seller-panel sessions. Purpose is decoded so a
// reset credential can never pass as a session.
type sessionClaims struct {
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// resetClaims is the payload of the short-lived credential bridging
// reset-OTP verification and the password change.
type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the signed credentials used by the auth
// flows: 7-day session tokens, seller-panel tokens, and 5-minute
// password-reset tokens. All use HS256 with a single service secret.
type TokenIssuer struct {
	secret string
	issuer string
}

// NewTokenIssuer creates a TokenIssuer signing with the given secret.
func NewTokenIssuer(secret, issuer string) TokenIssuer {
	return TokenIssuer{
		secret: secret,
		issuer: issuer,
	}
}

// IssueSession mints a session token for the given user id.
func (i TokenIssuer) IssueSession(userID string, ttl time.Duration) (string, error) {
	return i.sign(sessionClaims{
		RegisteredClaims: i.registeredClaims(userID, ttl),
	})
}

// IssueSellerSession mints a seller-panel session token.
func (i TokenIssuer) IssueSellerSession(email string, ttl time.Duration) (string, error) {
	return i.sign(sessionClaims{
		Role:             roleSeller,
		RegisteredClaims: i.registeredClaims(email, ttl),
	})
}

// IssueResetToken mints the narrow-purpose credential handed out after a
// correct reset OTP. It authorizes a password change for the subject user
// until it expires. The jti identifies this credential in the server-side
// single-use ledger.
func (i TokenIssuer) IssueResetToken(userID string, ttl time.Duration) (string, string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", "", err
	}

	claims := resetClaims{
		Purpose:          PurposeResetPassword,
		RegisteredClaims: i.registeredClaims(userID, ttl),
	}
	claims.ID = jti

	token, err := i.sign(claims)
	if err != nil {
		return "", "", err
	}

	return token, jti, nil
}

// VerifySession validates a session token and returns the user id it was
// issued for. Seller tokens carry a role claim and are rejected here; they
// must go through VerifySellerSession.
func (i TokenIssuer) VerifySession(token string) (string, error) {
	claims, err := i.parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Role != "" || claims.Purpose != "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// VerifySellerSession validates a seller-panel token and returns the seller
// email it was issued for.
func (i TokenIssuer) VerifySellerSession(token string) (string, error) {
	claims, err := i.parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Role != roleSeller || claims.Purpose != "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// VerifyResetToken validates a password-reset credential and returns the
// subject user id together with the credential's jti. Session tokens do not
// carry the purpose claim and fail here like any other invalid token.
func (i TokenIssuer) VerifyResetToken(token string) (string, string, error) {
	claims := &resetClaims{}
	if err := i.parseInto(token, claims); err != nil {
		return "", "", ErrInvalidToken
	}
	if claims.Purpose != PurposeResetPassword {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.ID, nil
}

func generateJTI() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (i TokenIssuer) registeredClaims(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		Audience:  jwt.ClaimStrings{i.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i TokenIssuer) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(i.secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

func (i TokenIssuer) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	if err := i.parseInto(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i TokenIssuer) parseInto(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(i.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(i.issuer),
		jwt.WithIssuer(i.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return err
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
