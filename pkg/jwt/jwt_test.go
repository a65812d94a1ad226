package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/pos-inventario/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "user-1", "vendedor", "pos-test", 5)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "vendedor", role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "user-1", "admin", "pos-test", 5)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secreto", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "user-1", "admin", "pos-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", "admin", "pos-test", 5)
	assert.Error(t, err)
}
