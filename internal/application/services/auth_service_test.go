package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/ports"
)

func TestIssueAndValidateToken(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.IssueToken(ports.TokenRequest{Subject: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "2025-06-15T10:30:00Z", resp.ExpiresAt)

	claims, err := env.auth.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Subject)
	assert.Equal(t, "taskmaster-test", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.IssueToken(ports.TokenRequest{Subject: "cli"})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)
	_, err = env.auth.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestValidateToken_Rejects(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	other := NewAuthService(env.auth.jwtConfig, env.clock, NewValidator(), nopLogger())
	other.jwtConfig.Secret = "different"
	resp, err := other.IssueToken(ports.TokenRequest{Subject: "x"})
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	_, err = env.auth.IssueToken(ports.TokenRequest{Subject: "  "})
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}
