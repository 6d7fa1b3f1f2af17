package provider

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrInvalidGoogleAudience means the ID token was minted for a different
// OAuth client than ours.
var ErrInvalidGoogleAudience = errors.New("invalid google audience")

// ErrUnverifiedGoogleEmail means Google has not confirmed the account email.
var ErrUnverifiedGoogleEmail = errors.New("google email not verified")

// GoogleVerifier validates Google ID tokens for the federated login path.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier bound to our OAuth client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// VerifyEmailAddress validates the ID token and returns the email address
// it asserts.
func (v *GoogleVerifier) VerifyEmailAddress(ctx context.Context, idToken string) (string, error) {
	tokenInfo, err := v.ValidateIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return tokenInfo.Email, nil
}

// ValidateIDToken checks the token against Google's tokeninfo endpoint and
// returns the token info on success. The audience must match our client id
// and the email must be verified by Google.
func (v *GoogleVerifier) ValidateIDToken(ctx context.Context, idToken string) (*oauth2.Tokeninfo, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, err
	}

	tokenInfoCall := oauth2Service.Tokeninfo()
	tokenInfoCall.IdToken(idToken)
	tokenInfo, err := tokenInfoCall.Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != v.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	if !tokenInfo.VerifiedEmail {
		return nil, ErrUnverifiedGoogleEmail
	}

	return tokenInfo, nil
}
