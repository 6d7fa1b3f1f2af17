package otp

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
)

// stubUserRepo implements just enough of the user store for the engine:
// a single user whose challenge the engine reads and writes.
type stubUserRepo struct {
	user *model.User
}

func (r *stubUserRepo) Create(context.Context, *model.User) (*model.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *stubUserRepo) FindByID(context.Context, string) (*model.User, error) {
	return r.user, nil
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*model.User, error) {
	return r.user, nil
}

func (r *stubUserRepo) Update(_ context.Context, _ string, params repository.UpdateUserParams) (*model.User, error) {
	if params.OTPChallenge != nil {
		challenge := *params.OTPChallenge
		r.user.OTPChallenge = &challenge
	}
	return r.user, nil
}

func (r *stubUserRepo) IncrementOTPAttempts(context.Context, string) error {
	if r.user.OTPChallenge != nil {
		r.user.OTPChallenge.Attempts++
	}
	return nil
}

func (r *stubUserRepo) ClearOTPChallenge(_ context.Context, _, hash string, markVerified bool) (bool, error) {
	if r.user.OTPChallenge == nil || r.user.OTPChallenge.Hash != hash {
		return false, nil
	}
	r.user.OTPChallenge = nil
	if markVerified {
		r.user.Verified = true
	}
	return true, nil
}

func (r *stubUserRepo) UpdateCart(context.Context, string, map[string]int) error {
	return nil
}

func newTestEngine() (*Engine, *stubUserRepo) {
	repo := &stubUserRepo{user: &model.User{ID: bson.NewObjectID()}}
	return NewEngine(repo, 10*time.Minute), repo
}

func TestGenerateProducesSixDigits(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestIssueAndVerify(t *testing.T) {
	engine, repo := newTestEngine()
	ctx := context.Background()

	code, err := engine.Issue(ctx, repo.user.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, repo.user.OTPChallenge)
	assert.Equal(t, HashCode(code), repo.user.OTPChallenge.Hash)

	require.NoError(t, engine.Verify(ctx, repo.user, code, true))
	assert.Nil(t, repo.user.OTPChallenge)
	assert.True(t, repo.user.Verified)
}

func TestVerifyWithoutChallenge(t *testing.T) {
	engine, repo := newTestEngine()

	err := engine.Verify(context.Background(), repo.user, "123456", false)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestVerifyMismatchIncrementsAttempts(t *testing.T) {
	engine, repo := newTestEngine()
	ctx := context.Background()

	code, err := engine.Issue(ctx, repo.user.ID.Hex())
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	assert.ErrorIs(t, engine.Verify(ctx, repo.user, wrong, false), ErrMismatch)
	assert.Equal(t, 1, repo.user.OTPChallenge.Attempts)
	assert.ErrorIs(t, engine.Verify(ctx, repo.user, wrong, false), ErrMismatch)
	assert.Equal(t, 2, repo.user.OTPChallenge.Attempts)

	require.NoError(t, engine.Verify(ctx, repo.user, code, false))
}

func TestVerifyExpiredChallenge(t *testing.T) {
	engine, repo := newTestEngine()
	ctx := context.Background()

	code, err := engine.Issue(ctx, repo.user.ID.Hex())
	require.NoError(t, err)

	engine.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	assert.ErrorIs(t, engine.Verify(ctx, repo.user, code, false), ErrExpired)
	assert.NotNil(t, repo.user.OTPChallenge)
}

func TestVerifyLosesRaceWhenChallengeAlreadyConsumed(t *testing.T) {
	engine, repo := newTestEngine()
	ctx := context.Background()

	code, err := engine.Issue(ctx, repo.user.ID.Hex())
	require.NoError(t, err)

	// Snapshot the user as a concurrent request would have loaded it, then
	// let the other request win the conditional clear.
	snapshot := *repo.user
	challenge := *repo.user.OTPChallenge
	snapshot.OTPChallenge = &challenge

	require.NoError(t, engine.Verify(ctx, repo.user, code, false))
	assert.ErrorIs(t, engine.Verify(ctx, &snapshot, code, false), ErrNoChallenge)
}

func TestHashCodeIsStable(t *testing.T) {
	assert.Equal(t, HashCode("123456"), HashCode("123456"))
	assert.NotEqual(t, HashCode("123456"), HashCode("123457"))
	assert.NotContains(t, HashCode("123456"), "123456")
}
