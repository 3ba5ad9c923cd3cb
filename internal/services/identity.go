package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Name     string      `json:"name" validate:"required,max=120"`
	Email    string      `json:"email" validate:"required,email,max=254"`
	Password string      `json:"password" validate:"required,min=6,max=128"`
	Role     models.Role `json:"role" validate:"required,oneof=instructor student"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Tokens  TokenPair
	Profile models.Profile
}

// Register creates the identity and its profile and signs the caller in. The
// role chosen here is permanent.
func Register(ctx context.Context, st store.Store, tokens TokenService, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return AuthResult{}, err
	}
	hash, err := tokens.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, WrapError(err, "hash password")
	}
	now := Now()
	identity := models.Identity{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := st.CreateIdentity(ctx, identity); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return AuthResult{}, ErrConflict("Email already registered")
		}
		return AuthResult{}, WrapError(err, "create identity")
	}
	profile := models.Profile{
		IdentityID: identity.ID,
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		CreatedAt:  now,
	}
	if err := st.CreateProfile(ctx, profile); err != nil {
		return AuthResult{}, WrapError(err, "create profile")
	}
	pair, err := tokens.IssuePair(identity.ID, identity.Email)
	if err != nil {
		return AuthResult{}, WrapError(err, "issue tokens")
	}
	return AuthResult{Tokens: pair, Profile: profile}, nil
}

// Login fails with the same generic error whichever credential is wrong.
func Login(ctx context.Context, st store.Store, tokens TokenService, in LoginInput) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" {
		return AuthResult{}, ErrUnauthorized()
	}
	identity, err := st.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, ErrUnauthorized()
		}
		return AuthResult{}, WrapError(err, "load identity")
	}
	if !tokens.VerifyPassword(in.Password, identity.PasswordHash) {
		return AuthResult{}, ErrUnauthorized()
	}
	profile, err := loadProfile(ctx, st, identity.ID)
	if err != nil {
		return AuthResult{}, err
	}
	pair, err := tokens.IssuePair(identity.ID, identity.Email)
	if err != nil {
		return AuthResult{}, WrapError(err, "issue tokens")
	}
	return AuthResult{Tokens: pair, Profile: profile}, nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func Refresh(ctx context.Context, st store.Store, tokens TokenService, refreshToken string) (AuthResult, error) {
	claims, err := tokens.ParseToken(refreshToken, TokenRefresh)
	if err != nil {
		return AuthResult{}, ErrUnauthorized()
	}
	if err := ensureNotRevoked(ctx, st, claims.ID); err != nil {
		return AuthResult{}, err
	}
	identity, err := st.GetIdentity(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, ErrUnauthorized()
		}
		return AuthResult{}, WrapError(err, "load identity")
	}
	profile, err := loadProfile(ctx, st, identity.ID)
	if err != nil {
		return AuthResult{}, err
	}
	if err := st.RevokeToken(ctx, claims.ID, expiry(claims)); err != nil {
		return AuthResult{}, WrapError(err, "revoke refresh token")
	}
	pair, err := tokens.IssuePair(identity.ID, identity.Email)
	if err != nil {
		return AuthResult{}, WrapError(err, "issue tokens")
	}
	return AuthResult{Tokens: pair, Profile: profile}, nil
}

// Logout revokes the access token and, when given, the refresh token of the
// same sign-in. An invalid refresh token is ignored.
func Logout(ctx context.Context, st store.Store, tokens TokenService, accessClaims *Claims, refreshToken string) error {
	if accessClaims == nil {
		return ErrUnauthorized()
	}
	if err := st.RevokeToken(ctx, accessClaims.ID, expiry(accessClaims)); err != nil {
		return WrapError(err, "revoke access token")
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	refreshClaims, err := tokens.ParseToken(refreshToken, TokenRefresh)
	if err != nil || refreshClaims.Subject != accessClaims.Subject {
		return nil
	}
	if err := st.RevokeToken(ctx, refreshClaims.ID, expiry(refreshClaims)); err != nil {
		return WrapError(err, "revoke refresh token")
	}
	return nil
}

// ResolveSession turns an access token into the caller's identity. The role
// comes from the profile store, never from the token.
func ResolveSession(ctx context.Context, st store.Store, tokens TokenService, accessToken string) (access.Identity, *Claims, error) {
	claims, err := tokens.ParseToken(accessToken, TokenAccess)
	if err != nil {
		return access.Identity{}, nil, ErrUnauthorized()
	}
	if err := ensureNotRevoked(ctx, st, claims.ID); err != nil {
		return access.Identity{}, nil, err
	}
	profile, err := loadProfile(ctx, st, claims.Subject)
	if err != nil {
		return access.Identity{}, nil, err
	}
	who := access.Identity{
		ID:    profile.IdentityID,
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	}
	return who, claims, nil
}

func loadProfile(ctx context.Context, st store.Store, identityID string) (models.Profile, error) {
	profile, err := st.GetProfile(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Profile{}, ErrUnauthorized()
		}
		return models.Profile{}, WrapError(err, "load profile")
	}
	if !profile.Role.Valid() {
		return models.Profile{}, ErrUnauthorized()
	}
	return profile, nil
}

func ensureNotRevoked(ctx context.Context, st store.Store, tokenID string) error {
	if tokenID == "" {
		return ErrUnauthorized()
	}
	revoked, err := st.TokenRevoked(ctx, tokenID)
	if err != nil {
		return WrapError(err, "check token")
	}
	if revoked {
		return ErrUnauthorized()
	}
	return nil
}

func expiry(claims *Claims) time.Time {
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return Now()
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
