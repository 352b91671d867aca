package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/users"
	pkgauth "github.com/shopstack/shopstack-backend/pkg/auth"
	"github.com/shopstack/shopstack-backend/pkg/auth/session"
	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeSessions struct {
	refreshByAccessID map[string]string
	revoked           []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{refreshByAccessID: map[string]string{}}
}

func (s *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.refreshByAccessID[accessID] = token
	return token, nil
}

func (s *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	current, ok := s.refreshByAccessID[oldAccessID]
	if !ok || current != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByAccessID, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.refreshByAccessID[newID] = token
	return newID, token, nil
}

func (s *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.refreshByAccessID, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		Issuer:                 "shopstack-test",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 60,
	}
}

func newAuthService(t *testing.T, repo userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo, newFakeSessions())
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Email:    "Owner@Example.com",
		Name:     "Owner",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, "owner@example.com", registered.User.Email)
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), registered.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, claims.UserID)
	require.Equal(t, "owner@example.com", claims.Email)
	require.NotEmpty(t, claims.ID)

	login, err := svc.Login(ctx, LoginRequest{Email: "owner@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t, newFakeUserRepo(), newFakeSessions())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "B", Password: "longenough"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t, newFakeUserRepo(), newFakeSessions())
	ctx := context.Background()

	cases := []RegisterRequest{
		{Email: "not-an-email", Name: "A", Password: "longenough"},
		{Email: "a@b.com", Password: "longenough"},
		{Email: "a@b.com", Name: "A", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(ctx, req)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "request %+v", req)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	hash, err := security.HashPassword("right password", config.PasswordConfig{})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), users.CreateUserDTO{
		Email: "a@b.com", Name: "A", PasswordHash: hash,
	})
	require.NoError(t, err)

	svc := newAuthService(t, repo, newFakeSessions())
	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "missing@b.com", Password: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRotatesSession(t *testing.T) {
	sessions := newFakeSessions()
	svc := newAuthService(t, newFakeUserRepo(), sessions)
	ctx := context.Background()

	login, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	newClaims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	require.NoError(t, err)
	oldClaims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)
	require.NotEqual(t, oldClaims.ID, newClaims.ID, "jti rotates with the session")
	require.Equal(t, oldClaims.UserID, newClaims.UserID)

	// The old refresh token is single use.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	svc := newAuthService(t, newFakeUserRepo(), newFakeSessions())
	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  strings.Repeat("x", 32),
		RefreshToken: "whatever",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newFakeSessions()
	svc := newAuthService(t, newFakeUserRepo(), sessions)
	ctx := context.Background()

	login, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	require.Contains(t, sessions.revoked, claims.ID)

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestMe(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo, newFakeSessions())
	ctx := context.Background()

	login, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Name: "Asha", Password: "longenough"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, login.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Asha", me.Name)

	_, err = svc.Me(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
