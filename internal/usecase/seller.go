package usecase

import (
	"context"
	"crypto/subtle"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/shared/auth"
)

// SellerUsecase authenticates the seller panel. There is a single seller
// identity configured through the environment, no seller records in the
// database.
type SellerUsecase interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type sellerUsecase struct {
	sellerCfg   config.SellerConfig
	tokenIssuer auth.TokenIssuer
	tokenCfg    config.TokenConfig
}

// NewSellerUsecase creates a new instance of SellerUsecase.
func NewSellerUsecase(
	sellerCfg config.SellerConfig,
	tokenIssuer auth.TokenIssuer,
	tokenCfg config.TokenConfig,
) SellerUsecase {
	return &sellerUsecase{
		sellerCfg:   sellerCfg,
		tokenIssuer: tokenIssuer,
		tokenCfg:    tokenCfg,
	}
}

func (u *sellerUsecase) Login(_ context.Context, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(u.sellerCfg.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(u.sellerCfg.Password)) == 1
	if !emailOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	return u.tokenIssuer.IssueSellerSession(email, u.tokenCfg.SessionTTL)
}
