package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository. It reproduces the two driver
// behaviors the usecases branch on: mongo.ErrNoDocuments on a miss and a
// duplicate key write error on a unique email collision.
type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, duplicateKeyErr()
		}
	}

	user.ID = bson.NewObjectID()
	if user.CartItems == nil {
		user.CartItems = map[string]int{}
	}
	r.users[user.ID.Hex()] = user
	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) Update(_ context.Context, id string, params repository.UpdateUserParams) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Phone != nil {
		user.Phone = *params.Phone
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Verified != nil {
		user.Verified = *params.Verified
	}
	if params.OTPChallenge != nil {
		challenge := *params.OTPChallenge
		user.OTPChallenge = &challenge
	}
	return user, nil
}

func (r *fakeUserRepo) IncrementOTPAttempts(_ context.Context, id string) error {
	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if user.OTPChallenge != nil {
		user.OTPChallenge.Attempts++
	}
	return nil
}

func (r *fakeUserRepo) ClearOTPChallenge(_ context.Context, id, hash string, markVerified bool) (bool, error) {
	user, ok := r.users[id]
	if !ok {
		return false, nil
	}
	if user.OTPChallenge == nil || user.OTPChallenge.Hash != hash {
		return false, nil
	}

	user.OTPChallenge = nil
	if markVerified {
		user.Verified = true
	}
	return true, nil
}

func (r *fakeUserRepo) UpdateCart(_ context.Context, id string, items map[string]int) error {
	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.CartItems = items
	return nil
}

func userWith(email, passwordHash string) *model.User {
	return &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		Verified:     true,
	}
}

func (r *fakeUserRepo) byEmail(email string) *model.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// fakeResetTokenRepo is an in-memory ResetTokenRepository keyed by jti.
type fakeResetTokenRepo struct {
	tokens map[string]*model.ResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: map[string]*model.ResetToken{}}
}

func (r *fakeResetTokenRepo) Create(_ context.Context, token *model.ResetToken) (*model.ResetToken, error) {
	if _, ok := r.tokens[token.JTI]; ok {
		return nil, duplicateKeyErr()
	}

	token.ID = bson.NewObjectID()
	token.Used = false
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt
	r.tokens[token.JTI] = token
	return token, nil
}

func (r *fakeResetTokenRepo) FindByJTI(_ context.Context, jti string) (*model.ResetToken, error) {
	token, ok := r.tokens[jti]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return token, nil
}

func (r *fakeResetTokenRepo) MarkUsed(_ context.Context, jti string) (bool, error) {
	token, ok := r.tokens[jti]
	if !ok || token.Used {
		return false, nil
	}
	token.Used = true
	return true, nil
}

func (r *fakeResetTokenRepo) InvalidateForUser(_ context.Context, userID string) error {
	for _, token := range r.tokens {
		if token.UserID.Hex() == userID {
			token.Used = true
		}
	}
	return nil
}

// capturingMailer records the last code sent per kind, so tests can replay
// codes that real users would read out of their inbox.
type capturingMailer struct {
	verificationTo   string
	verificationCode string
	resetTo          string
	resetCode        string
	sends            int
	failWith         error
}

func (m *capturingMailer) SendVerificationOTP(to, code string, _ time.Duration) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.verificationTo = to
	m.verificationCode = code
	m.sends++
	return nil
}

func (m *capturingMailer) SendResetOTP(to, code string, _ time.Duration) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.resetTo = to
	m.resetCode = code
	m.sends++
	return nil
}

// fakeFederatedVerifier accepts a single canned ID token.
type fakeFederatedVerifier struct {
	token string
	email string
}

func (v *fakeFederatedVerifier) VerifyEmailAddress(_ context.Context, idToken string) (string, error) {
	if idToken != v.token {
		return "", errors.New("token rejected")
	}
	return v.email, nil
}
