package usecase

import (
	"context"

	"github.com/nandanfoods/grocer-api/internal/repository"
)

// CartUsecase persists the cart carried on the user record.
type CartUsecase interface {
	UpdateCart(ctx context.Context, userID string, items map[string]int) error
}

type cartUsecase struct {
	userRepo repository.UserRepository
}

// NewCartUsecase creates a new instance of CartUsecase.
func NewCartUsecase(userRepo repository.UserRepository) CartUsecase {
	return &cartUsecase{userRepo: userRepo}
}

func (u *cartUsecase) UpdateCart(ctx context.Context, userID string, items map[string]int) error {
	return u.userRepo.UpdateCart(ctx, userID, items)
}
