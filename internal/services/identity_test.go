package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() services.TokenService {
	return services.TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "elearning-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestRegisterLoginResolve(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	tokens := testTokens()

	reg, err := services.Register(ctx, st, tokens, services.RegisterInput{
		Name: "Dina", Email: "  Dina@Example.com ", Password: "secret1", Role: models.RoleInstructor,
	})
	require.NoError(t, err)
	assert.Equal(t, "dina@example.com", reg.Profile.Email)
	assert.Equal(t, models.RoleInstructor, reg.Profile.Role)
	assert.NotEmpty(t, reg.Tokens.AccessToken)

	_, err = services.Register(ctx, st, tokens, services.RegisterInput{
		Name: "Other", Email: "dina@example.com", Password: "secret2", Role: models.RoleStudent,
	})
	requireStatus(t, err, http.StatusConflict)

	login, err := services.Login(ctx, st, tokens, services.LoginInput{Email: "DINA@example.com", Password: "secret1"})
	require.NoError(t, err)

	who, claims, err := services.ResolveSession(ctx, st, tokens, login.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.Profile.IdentityID, who.ID)
	assert.Equal(t, models.RoleInstructor, who.Role)
	assert.Equal(t, "Dina", who.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	tokens := testTokens()
	_, err := services.Register(ctx, st, tokens, services.RegisterInput{
		Name: "Sam", Email: "sam@example.com", Password: "secret1", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	_, wrongPassword := services.Login(ctx, st, tokens, services.LoginInput{Email: "sam@example.com", Password: "nope"})
	_, wrongEmail := services.Login(ctx, st, tokens, services.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	requireStatus(t, wrongPassword, http.StatusUnauthorized)
	requireStatus(t, wrongEmail, http.StatusUnauthorized)
	assert.Equal(t, wrongPassword.Error(), wrongEmail.Error())
	assert.Equal(t, services.MsgAuthFailed, wrongEmail.Error())
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	tokens := testTokens()
	tests := []struct {
		name string
		in   services.RegisterInput
	}{
		{"missing name", services.RegisterInput{Email: "a@example.com", Password: "secret1", Role: models.RoleStudent}},
		{"bad email", services.RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1", Role: models.RoleStudent}},
		{"short password", services.RegisterInput{Name: "A", Email: "a@example.com", Password: "123", Role: models.RoleStudent}},
		{"unknown role", services.RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.Register(ctx, st, tokens, tt.in)
			requireStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	tokens := testTokens()
	reg, err := services.Register(ctx, st, tokens, services.RegisterInput{
		Name: "Rui", Email: "rui@example.com", Password: "secret1", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = services.Refresh(ctx, st, tokens, reg.Tokens.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)

	refreshed, err := services.Refresh(ctx, st, tokens, reg.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, refreshed.Profile.Role)

	_, err = services.Refresh(ctx, st, tokens, reg.Tokens.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)

	_, claims, err := services.ResolveSession(ctx, st, tokens, refreshed.Tokens.AccessToken)
	require.NoError(t, err)
	require.NoError(t, services.Logout(ctx, st, tokens, claims, refreshed.Tokens.RefreshToken))

	_, _, err = services.ResolveSession(ctx, st, tokens, refreshed.Tokens.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = services.Refresh(ctx, st, tokens, refreshed.Tokens.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestTokenFromOtherIssuerRejected(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	tokens := testTokens()
	reg, err := services.Register(ctx, st, tokens, services.RegisterInput{
		Name: "Ita", Email: "ita@example.com", Password: "secret1", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	other := tokens
	other.Secret = []byte("different")
	_, _, err = services.ResolveSession(ctx, st, other, reg.Tokens.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestPasswordHashes(t *testing.T) {
	tokens := testTokens()
	hash, err := tokens.HashPassword("pw-123456")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")
	assert.True(t, tokens.VerifyPassword("pw-123456", hash))
	assert.False(t, tokens.VerifyPassword("pw-1234567", hash))
	assert.False(t, tokens.VerifyPassword("x", "$argon2id$broken"))
}
