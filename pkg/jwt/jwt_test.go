package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Inventario-portal/pkg/jwt"
)

const (
	testSecret = "secreto-de-test"
	testIssuer = "inventario-portal-test"
)

// Caso 1: Ida y vuelta con todos los claims propios del portal.
func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Claims{
		UserID:         "u1",
		TenantID:       "demo",
		Role:           "tenantAdmin",
		ImpersonatedBy: "u0",
	}, testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "demo", claims.TenantID)
	assert.Equal(t, "tenantAdmin", claims.Role)
	assert.Equal(t, "u0", claims.ImpersonatedBy)
	assert.Equal(t, testIssuer, claims.Issuer)
}

// Caso 2: Token expirado → error.
func TestJWT_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Claims{UserID: "u1", Role: "tenantUser"}, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

// Caso 3: Secret incorrecto → error.
func TestJWT_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Claims{UserID: "u1", Role: "tenantUser"}, testIssuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secreto-distinto", tok)
	assert.Error(t, err, "firma con otro secret debe invalidar el token")
}

// Caso 4: Secret vacío no genera ni parsea.
func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", pkgjwt.Claims{UserID: "u1"}, testIssuer, 60)
	assert.Error(t, err)

	_, err = pkgjwt.Parse("", "cualquier.token.aqui")
	assert.Error(t, err)
}
