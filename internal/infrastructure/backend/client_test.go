package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/backend"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testTimeout = 0 // sin timeout en tests; el servidor es local

// newBackend levanta un backend falso y devuelve el cliente apuntándole.
func newBackend(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, testTimeout, nil)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Login
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Con clave de tenant, el tenant viaja en el body Y en el header.
func TestLogin_AdjuntaTenantEnBodyYHeader(t *testing.T) {
	var gotHeader string
	var gotBody map[string]string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(backend.HeaderTenant)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": "u1", "username": "admin", "role": "tenantAdmin", "tenantId": "demo", "isActive": true},
		})
	})

	token, user, err := client.Login(context.Background(), "admin", "admin123", "demo")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	require.NotNil(t, user)
	assert.Equal(t, "demo", gotHeader)
	assert.Equal(t, "demo", gotBody["tenantId"])
}

// Caso 2: Sin clave de tenant (login de superadmin) el scoping se omite por completo.
func TestLogin_SinTenantOmiteScoping(t *testing.T) {
	var gotHeader string
	var gotBody map[string]string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(backend.HeaderTenant)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-root",
			"user":  map[string]any{"id": "u0", "username": "superadmin", "role": "superAdmin", "isActive": true},
		})
	})

	_, _, err := client.Login(context.Background(), "superadmin", "s3cret", "")

	require.NoError(t, err)
	assert.Empty(t, gotHeader, "sin tenant no debe viajar el header")
	_, hasTenant := gotBody["tenantId"]
	assert.False(t, hasTenant, "sin tenant no debe viajar tenantId en el body")
}

// Caso 3: 401 con isActive:false → cuenta desactivada, no credenciales inválidas.
func TestLogin_CuentaDesactivada(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"message":  "tu cuenta ha sido desactivada",
			"isActive": false,
		})
	})

	_, _, err := client.Login(context.Background(), "inactivo", "pass", "demo")

	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

// Caso 4: 401 normal → credenciales inválidas.
func TestLogin_CredencialesInvalidas(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "usuario o contraseña incorrectos"})
	})

	_, _, err := client.Login(context.Background(), "nadie", "mal", "demo")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de transporte vs HTTP
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: Servidor caído → error de conectividad, JAMÁS sesión/credenciales.
func TestClient_ServidorCaidoEsErrorDeTransporte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // cerrado a propósito
	client := backend.New(srv.URL, testTimeout, nil)

	_, _, err := client.Login(context.Background(), "admin", "admin123", "demo")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable,
		"un fallo de red no debe confundirse con credenciales inválidas")
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = client.Me(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

	_, err = client.FetchTenant(context.Background(), "demo")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable,
		"un fallo de red no debe confundirse con tenant inexistente")
	assert.NotErrorIs(t, err, domain.ErrTenantNotFound)
}

// Caso 6: FetchTenant distingue 404 (no existe) del resto de errores.
func TestFetchTenant_404EsNoEncontrado(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "tenant no encontrado"})
	})

	_, err := client.FetchTenant(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

// Caso 7: Me mapea estados HTTP a errores de dominio.
func TestMe_MapeaEstados(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
	}
	for _, tc := range cases {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, map[string]any{"message": "no"})
		})
		_, err := client.Me(context.Background(), "tok")
		assert.ErrorIs(t, err, tc.want, "estado %d", tc.status)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests TenantUsers / Impersonate
// ──────────────────────────────────────────────────────────────────────────────

// Caso 8: Con tenant el roster usa la ruta scoped; sin él, la global.
func TestTenantUsers_RutaScopedOGlobal(t *testing.T) {
	var gotPath string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "u1", "username": "admin"}})
	})

	users, err := client.TenantUsers(context.Background(), "tok", "demo")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "/api/tenants/demo/auth/users", gotPath)

	_, err = client.TenantUsers(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/users", gotPath)
}

// Caso 9: Impersonate devuelve el token nuevo y viaja con el bearer actual.
func TestImpersonate_DevuelveTokenNuevo(t *testing.T) {
	var gotAuth string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"token": "imp-tok"})
	})

	tok, err := client.Impersonate(context.Background(), "tok-root", "u1")

	require.NoError(t, err)
	assert.Equal(t, "imp-tok", tok)
	assert.Equal(t, "Bearer tok-root", gotAuth)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Proxy
// ──────────────────────────────────────────────────────────────────────────────

// Caso 10: El proxy reenvía método, query, bearer y tenant, y devuelve el cuerpo
// y el estado sin interpretar (también los de error).
func TestProxy_ReenviaSinInterpretar(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "demo", r.Header.Get(backend.HeaderTenant))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusConflict, map[string]any{"message": "producto con ventas asociadas"})
	})

	q := url.Values{}
	q.Set("limit", "25")
	res, err := client.Proxy(context.Background(), http.MethodDelete, "/api/products/p1", q, nil, "tok-1", "demo")

	require.NoError(t, err, "un estado de error HTTP no es un error de proxy")
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Contains(t, string(res.Body), "producto con ventas asociadas")
	assert.Contains(t, res.ContentType, "application/json")
}
