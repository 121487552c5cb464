package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hashed)

	again, _ := HashPassword("Secret123")
	assert.NotEqual(t, hashed, again, "salted hashes differ")

	assert.True(t, CheckPassword(hashed, "Secret123"))
	assert.False(t, CheckPassword(hashed, "secret123"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "carer@example.com", RoleAdmin, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "carer@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, jwtIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, jwtAudience)

	diff := claims.ExpiresAt.Time.Sub(time.Now().Add(AccessTokenTTL)).Abs()
	assert.Less(t, diff, 2*time.Second)
}

func TestGenerateTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(1, "user@example.com", "user", "access-secret", "refresh-secret")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	refreshClaims, err := ValidateToken(refresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	diff := refreshClaims.ExpiresAt.Time.Sub(time.Now().Add(RefreshTokenTTL)).Abs()
	assert.Less(t, diff, 2*time.Second)

	_, _, err = GenerateTokens(1, "user@example.com", "user", "", "refresh-secret")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	_, _, err = GenerateTokens(1, "user@example.com", "user", "access-secret", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func signed(t *testing.T, claims *JWTClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestValidateTokenFailures(t *testing.T) {
	good, _ := GenerateAccessToken(100, "test@example.com", "user", testSecret)
	past := time.Now().Add(-time.Hour)

	expired := signed(t, &JWTClaims{
		UserID:    100,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-15 * time.Minute)),
		},
	}, testSecret)

	foreign := signed(t, &JWTClaims{
		UserID:    100,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"empty secret", good, "", ErrEmptyJWTSecret},
		{"wrong secret", good, "wrong-secret", nil},
		{"malformed", "invalid.token.format", testSecret, nil},
		{"expired", expired, testSecret, ErrTokenExpired},
		{"wrong issuer", foreign, testSecret, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			assert.Error(t, err)
			assert.Nil(t, claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRefreshAccessToken(t *testing.T) {
	refresh, _ := GenerateRefreshToken(1, "user@example.com", "user", "refresh-secret")

	access, claims, err := RefreshAccessToken(refresh, "refresh-secret", "access-secret")
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)

	accessClaims, err := ValidateToken(access, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "access", accessClaims.TokenType)

	notRefresh, _ := GenerateAccessToken(1, "user@example.com", "user", "access-secret")
	_, _, err = RefreshAccessToken(notRefresh, "access-secret", "access-secret")
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	past := time.Now().Add(-8 * 24 * time.Hour)
	stale := signed(t, &JWTClaims{
		UserID:    1,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}, "refresh-secret")
	_, _, err = RefreshAccessToken(stale, "refresh-secret", "access-secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCallerIsAdmin(t *testing.T) {
	assert.True(t, Caller{UserID: 1, Role: RoleAdmin}.IsAdmin())
	assert.False(t, Caller{UserID: 1, Role: "user"}.IsAdmin())
	assert.False(t, Caller{}.IsAdmin())
}
