package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateYParse(t *testing.T) {
	id := jwt.Identity{UserID: "u-1", WorkspaceID: "ws-1", Name: "Ana", Role: jwt.RoleAdmin}
	token, err := jwt.Generate(secret, "pos-ledger", id, time.Hour)
	require.NoError(t, err)

	got, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(secret, "", jwt.Identity{UserID: "u", WorkspaceID: "ws"}, time.Hour)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate(secret, "", jwt.Identity{UserID: "u", WorkspaceID: "ws"}, -time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, token)
	assert.Error(t, err)
}

func TestParse_SinWorkspace(t *testing.T) {
	token, err := jwt.Generate(secret, "", jwt.Identity{UserID: "u"}, time.Hour)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, token)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "", jwt.Identity{}, time.Hour)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	_, err = jwt.Parse("", "x")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}
