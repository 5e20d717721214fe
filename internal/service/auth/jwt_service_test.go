package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/scholar-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, secret string, at time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, func() time.Time { return at })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short"})
	assert.ErrorIs(t, err, ErrWeakSecret)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, testSecret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), "teacher-portal", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-portal", claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), "", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.GenerateToken(context.Background(), "x", 0)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	issue := func(t *testing.T, secret string, at time.Time) string {
		token, err := newTestService(t, secret, at).GenerateToken(ctx, "svc", time.Hour)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		at      time.Time
		wantErr error
	}{
		{
			name:  "valid token",
			token: func(t *testing.T) string { return issue(t, testSecret, fixedTime) },
			at:    fixedTime.Add(30 * time.Minute),
		},
		{
			name:  "within clock skew",
			token: func(t *testing.T) string { return issue(t, testSecret, fixedTime) },
			at:    fixedTime.Add(time.Hour + time.Minute),
		},
		{
			name:    "expired token",
			token:   func(t *testing.T) string { return issue(t, testSecret, fixedTime) },
			at:      fixedTime.Add(2 * time.Hour),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "invalid signature",
			token:   func(t *testing.T) string { return issue(t, wrongSecret, fixedTime) },
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   func(*testing.T) string { return "this.is.not.a.valid.jwt.token" },
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "missing token",
			token:   func(*testing.T) string { return "" },
			at:      fixedTime,
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong token type",
			token: func(t *testing.T) string {
				claims := jwtCustomClaims{
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "svc",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return token
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "unsigned token",
			token: func(t *testing.T) string {
				claims := jwtCustomClaims{
					TokenType: accessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return token
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token := tt.token(t)
			claims, err := newTestService(t, testSecret, tt.at).ValidateToken(ctx, token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "svc", claims.Subject)
		})
	}
}
