// AngelaMos | 2026
// token_test.go

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/config"
	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/role"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessTokenExpire: 24 * time.Hour,
		Issuer:            "smartlink",
		Audience:          "smartlink-api",
	}
}

func newTestTokenService(t *testing.T, cfg config.JWTConfig) *TokenService {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	svc, err := NewTokenServiceFromKey(key, cfg)
	require.NoError(t, err)

	return svc
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestTokenService(t, testJWTConfig())

	before := time.Now()
	token, expiresAt, err := svc.Issue("user-1", role.Moderator)
	require.NoError(t, err)

	assert.WithinDuration(t, before.Add(24*time.Hour), expiresAt, 5*time.Second)

	identity, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, role.Moderator, identity.Role)
}

func TestValidateExpired(t *testing.T) {
	svc := newTestTokenService(t, testJWTConfig())

	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, _, err := svc.Issue("user-1", role.User)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(context.Background(), token)

	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestValidateMalformed(t *testing.T) {
	svc := newTestTokenService(t, testJWTConfig())
	other := newTestTokenService(t, testJWTConfig())

	foreign, _, err := other.Issue("user-1", role.Owner)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"empty segments": "..",
		"foreign key":    foreign,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), token)
			assert.ErrorIs(t, err, core.ErrTokenInvalid)
		})
	}
}

func TestValidateWrongAudience(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	issuerCfg := testJWTConfig()
	issuerCfg.Audience = "another-api"
	issuer, err := NewTokenServiceFromKey(key, issuerCfg)
	require.NoError(t, err)

	verifier, err := NewTokenServiceFromKey(key, testJWTConfig())
	require.NoError(t, err)

	token, _, err := issuer.Issue("user-1", role.User)
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestUnknownRoleClaimDegradesToUser(t *testing.T) {
	svc := newTestTokenService(t, testJWTConfig())

	token, _, err := svc.Issue("user-1", role.Role("superuser"))
	require.NoError(t, err)

	identity, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, role.User, identity.Role)
}
