package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/ratelimit"
	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/auth"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

// stubAuthUsecase recognizes one account with one password.
type stubAuthUsecase struct {
	user  *model.User
	token string
}

func (s *stubAuthUsecase) Register(context.Context, usecase.RegisterParams) error {
	return nil
}

func (s *stubAuthUsecase) VerifyEmail(context.Context, string, string) error {
	return nil
}

func (s *stubAuthUsecase) Login(_ context.Context, email, password string) (*model.User, string, error) {
	if email != s.user.Email || password != "longpass1" {
		return nil, "", usecase.ErrInvalidCredentials
	}
	return s.user, s.token, nil
}

func (s *stubAuthUsecase) FederatedLogin(context.Context, string) (*model.User, string, error) {
	return s.user, s.token, nil
}

func (s *stubAuthUsecase) CurrentUser(context.Context, string) (*model.User, error) {
	return s.user, nil
}

// stubResetUsecase records which addresses were asked for a reset.
type stubResetUsecase struct {
	requested []string
	known     string
}

func (s *stubResetUsecase) RequestReset(_ context.Context, email string) error {
	if email == s.known {
		s.requested = append(s.requested, email)
	}
	return nil
}

func (s *stubResetUsecase) VerifyResetOTP(context.Context, string, string) (string, error) {
	return "reset-token", nil
}

func (s *stubResetUsecase) ResetPassword(context.Context, string, string, string) error {
	return nil
}

func newTestUserHandler(t *testing.T, authUC usecase.AuthUsecase, resetUC usecase.PasswordResetUsecase) *UserHandler {
	t.Helper()

	validator, err := validation.New()
	require.NoError(t, err)

	logger := zerolog.Nop()
	return NewUserHandler(
		authUC,
		resetUC,
		auth.NewCookieBaker(false),
		validator,
		config.TokenConfig{SessionTTL: time.Hour},
		&logger,
	)
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestForgotPasswordResponseDoesNotRevealAccounts(t *testing.T) {
	reset := &stubResetUsecase{known: "amit@example.com"}
	h := newTestUserHandler(t, &stubAuthUsecase{}, reset)

	knownRec := postJSON(h.ForgotPassword, `{"email":"amit@example.com"}`)
	unknownRec := postJSON(h.ForgotPassword, `{"email":"nobody@example.com"}`)

	assert.Equal(t, http.StatusOK, knownRec.Code)
	assert.Equal(t, http.StatusOK, unknownRec.Code)
	assert.Equal(t, knownRec.Body.String(), unknownRec.Body.String())

	// Only the real account got the side effect.
	assert.Equal(t, []string{"amit@example.com"}, reset.requested)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID(), Email: "amit@example.com", Name: "Amit", Verified: true}
	h := newTestUserHandler(t, &stubAuthUsecase{user: user, token: "session-token"}, &stubResetUsecase{})

	rec := postJSON(h.Login, `{"email":"amit@example.com","password":"longpass1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Login Successful", body.Message)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "session-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginBadCredentialsIsBusinessFailure(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID(), Email: "amit@example.com", Verified: true}
	h := newTestUserHandler(t, &stubAuthUsecase{user: user, token: "session-token"}, &stubResetUsecase{})

	rec := postJSON(h.Login, `{"email":"amit@example.com","password":"wrongpass9"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid credentials", body.Message)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRegisterValidatesPayload(t *testing.T) {
	h := newTestUserHandler(t, &stubAuthUsecase{}, &stubResetUsecase{})

	rec := postJSON(h.Register, `{"email":"not-an-email","password":"longpass1","name":"Amit"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func newTestMiddleware(t *testing.T, cfg ratelimit.Config) (*Middleware, auth.TokenIssuer) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	issuer := auth.NewTokenIssuer("test-secret", "grocer-api")
	logger := zerolog.Nop()
	return NewMiddleware(issuer, ratelimit.New(client, cfg), &logger), issuer
}

func TestRequireUserGuardsWithoutCookie(t *testing.T) {
	mw, issuer := newTestMiddleware(t, ratelimit.Config{
		AuthMaxAttempts:   10,
		VerifyMaxAttempts: 10,
		Window:            time.Minute,
	})

	var sawUserID string
	guarded := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUserID = userIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := issuer.IssueSession("user-1", time.Hour)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", sawUserID)
}

func TestRequireUserRejectsSellerToken(t *testing.T) {
	mw, issuer := newTestMiddleware(t, ratelimit.Config{
		AuthMaxAttempts:   10,
		VerifyMaxAttempts: 10,
		Window:            time.Minute,
	})

	guarded := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := issuer.IssueSellerSession("seller@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLimitAuthReturns429PastBudget(t *testing.T) {
	mw, _ := newTestMiddleware(t, ratelimit.Config{
		AuthMaxAttempts:   2,
		VerifyMaxAttempts: 2,
		Window:            time.Minute,
	})

	limited := mw.LimitAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
