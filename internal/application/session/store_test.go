package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/localstore"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeAuth simula el backend de identidad: principals por token y por usuario.
type fakeAuth struct {
	byToken    map[string]*entity.Principal // /auth/me
	users      map[string]loginUser         // login por username
	roster     []entity.Principal
	meErr      error
	meCalls    int
	loginCalls int
	userCalls  int

	// captura del último login para verificar el scoping por tenant
	lastLoginTenant string
}

type loginUser struct {
	password string
	token    string
	user     *entity.Principal
}

func (f *fakeAuth) Login(_ context.Context, username, password, tenantKey string) (string, *entity.Principal, error) {
	f.loginCalls++
	f.lastLoginTenant = tenantKey
	u, ok := f.users[username]
	if !ok || u.password != password {
		return "", nil, domain.ErrInvalidCredentials
	}
	return u.token, u.user, nil
}

func (f *fakeAuth) Me(_ context.Context, token string) (*entity.Principal, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	if p, ok := f.byToken[token]; ok {
		return p, nil
	}
	return nil, domain.ErrSessionExpired
}

func (f *fakeAuth) Impersonate(_ context.Context, _ string, userID string) (string, error) {
	return "imp-token-" + userID, nil
}

func (f *fakeAuth) TenantUsers(_ context.Context, _ string, _ string) ([]entity.Principal, error) {
	f.userCalls++
	return f.roster, nil
}

// fakeTenants expone un tenant fijo como tenant resuelto.
type fakeTenants struct {
	current *entity.Tenant
}

func (f *fakeTenants) Current() *entity.Tenant { return f.current }

func activeTenant(id string) *entity.Tenant {
	return &entity.Tenant{ID: id, Subdomain: id, Status: entity.TenantStatusActive}
}

func memberOf(tenantID, role string) *entity.Principal {
	return &entity.Principal{
		ID:       "u-" + role,
		Username: role,
		Role:     role,
		TenantID: tenantID,
		IsActive: true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Verify
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Sin token → visitante anónimo, sin error y sin principal.
func TestVerify_SinToken_EsAnonimo(t *testing.T) {
	store := session.NewStore(&fakeAuth{}, localstore.NewMemStore(), &fakeTenants{}, nil)

	require.NoError(t, store.Verify(context.Background()))

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.ErrMessage())
}

// Caso 2: Token válido y pertenencia correcta → principal comprometido.
func TestVerify_TokenValido_CompremetePrincipal(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-1"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-1": memberOf("demo", entity.RoleTenantAdmin),
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	require.NoError(t, store.Verify(context.Background()))

	assert.True(t, store.IsAuthenticated())
	assert.True(t, store.IsTenantAdmin())
	assert.False(t, store.IsSuperAdmin())
}

// Caso 3: Un usuario desactivado NUNCA queda autenticado, aunque el token sea válido.
func TestVerify_UsuarioDesactivado_NuncaAutentica(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-inactivo"))
	inactive := memberOf("demo", entity.RoleTenantUser)
	inactive.IsActive = false
	auth := &fakeAuth{byToken: map[string]*entity.Principal{"tok-inactivo": inactive}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	err := store.Verify(context.Background())

	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, vault.Token(), "el token del usuario desactivado debe limpiarse")
}

// Caso 4: El principal pertenece a otro tenant → sesión rechazada y token limpio.
func TestVerify_TenantAjeno_RechazaSesion(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-acme"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-acme": memberOf("acme", entity.RoleTenantAdmin),
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	err := store.Verify(context.Background())

	assert.ErrorIs(t, err, domain.ErrTenantForbidden)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, vault.Token())
}

// Caso 4b: superAdmin atraviesa el cruce de pertenencia en cualquier tenant.
func TestVerify_SuperAdminIgnoraPertenencia(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-root"))
	root := memberOf("", entity.RoleSuperAdmin)
	auth := &fakeAuth{byToken: map[string]*entity.Principal{"tok-root": root}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	require.NoError(t, store.Verify(context.Background()))
	assert.True(t, store.IsSuperAdmin())
}

// Caso 5: Fallo de verificación (token inválido o red) → sesión expirada.
func TestVerify_TokenInvalido_ExpiraSesion(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-roto"))
	store := session.NewStore(&fakeAuth{}, vault, &fakeTenants{}, nil)

	err := store.Verify(context.Background())

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, vault.Token())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests EnsureVerified (disparadores)
// ──────────────────────────────────────────────────────────────────────────────

// Caso 6: EnsureVerified no re-verifica si ni el token ni el tenant cambiaron.
func TestEnsureVerified_SinCambios_NoReVerifica(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-1"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-1": memberOf("demo", entity.RoleTenantUser),
	}}
	tenants := &fakeTenants{current: activeTenant("demo")}
	store := session.NewStore(auth, vault, tenants, nil)

	require.NoError(t, store.EnsureVerified(context.Background()))
	require.NoError(t, store.EnsureVerified(context.Background()))
	require.NoError(t, store.EnsureVerified(context.Background()))

	assert.Equal(t, 1, auth.meCalls, "sin cambios no debe re-consultar /auth/me")
}

// Caso 7: Cambiar el tenant activo re-dispara la verificación.
func TestEnsureVerified_CambioDeTenant_ReVerifica(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-root"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-root": memberOf("", entity.RoleSuperAdmin),
	}}
	tenants := &fakeTenants{current: activeTenant("demo")}
	store := session.NewStore(auth, vault, tenants, nil)

	require.NoError(t, store.EnsureVerified(context.Background()))
	tenants.current = activeTenant("acme")
	require.NoError(t, store.EnsureVerified(context.Background()))

	assert.Equal(t, 2, auth.meCalls, "el cambio de tenant debe re-verificar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Login / Logout
// ──────────────────────────────────────────────────────────────────────────────

// Caso 8: Login correcto guarda el token y compromete el principal.
func TestLogin_Correcto(t *testing.T) {
	vault := localstore.NewMemStore()
	admin := memberOf("demo", entity.RoleTenantAdmin)
	auth := &fakeAuth{users: map[string]loginUser{
		"admin": {password: "admin123", token: "tok-admin", user: admin},
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	require.NoError(t, store.Login(context.Background(), "admin", "admin123", "demo"))

	assert.Equal(t, "tok-admin", vault.Token())
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "demo", auth.lastLoginTenant, "el login normal va scoped al tenant")
	assert.Empty(t, store.ErrMessage())
}

// Caso 9: El usuario reservado superadmin inicia sesión SIN scoping por tenant.
func TestLogin_SuperadminOmiteTenant(t *testing.T) {
	vault := localstore.NewMemStore()
	root := memberOf("", entity.RoleSuperAdmin)
	auth := &fakeAuth{users: map[string]loginUser{
		"superadmin": {password: "s3cret", token: "tok-root", user: root},
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	require.NoError(t, store.Login(context.Background(), "superadmin", "s3cret", "demo"))

	assert.Empty(t, auth.lastLoginTenant,
		"el login de superadmin no debe adjuntar tenant aunque haya uno resuelto")
	assert.True(t, store.IsSuperAdmin())
}

// Caso 10: Credenciales inválidas → error visible, sin token.
func TestLogin_CredencialesInvalidas(t *testing.T) {
	vault := localstore.NewMemStore()
	store := session.NewStore(&fakeAuth{}, vault, &fakeTenants{}, nil)

	err := store.Login(context.Background(), "nadie", "mal", "demo")

	assert.Error(t, err)
	assert.Empty(t, vault.Token())
	assert.Equal(t, domain.ErrInvalidCredentials.Error(), store.ErrMessage())
}

// Caso 11: Logout limpia ambos slots de token y el principal.
func TestLogout_LimpiaTodo(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-1"))
	require.NoError(t, vault.SetOriginalToken("tok-0"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-1": memberOf("demo", entity.RoleTenantUser),
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)
	require.NoError(t, store.Verify(context.Background()))

	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, vault.Token())
	assert.Empty(t, vault.OriginalToken())
	assert.False(t, store.IsImpersonating())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de impersonación
// ──────────────────────────────────────────────────────────────────────────────

func superAdminSession(t *testing.T, auth *fakeAuth, vault *localstore.MemStore, tenants *fakeTenants) *session.Store {
	t.Helper()
	require.NoError(t, vault.SetToken("tok-root"))
	if auth.byToken == nil {
		auth.byToken = map[string]*entity.Principal{}
	}
	auth.byToken["tok-root"] = memberOf("", entity.RoleSuperAdmin)
	store := session.NewStore(auth, vault, tenants, nil)
	require.NoError(t, store.Verify(context.Background()))
	require.True(t, store.IsSuperAdmin())
	return store
}

// Caso 12: Ciclo completo de impersonación — el token original se preserva en el
// slot secundario y al finalizar se restaura y el slot queda vacío.
func TestImpersonacion_CicloCompleto(t *testing.T) {
	vault := localstore.NewMemStore()
	auth := &fakeAuth{}
	store := superAdminSession(t, auth, vault, &fakeTenants{})

	target := memberOf("demo", entity.RoleTenantUser)
	target.ImpersonatedBy = "u-superAdmin"
	auth.byToken["imp-token-u1"] = target

	require.NoError(t, store.BeginImpersonation(context.Background(), "u1"))

	assert.Equal(t, "imp-token-u1", vault.Token())
	assert.Equal(t, "tok-root", vault.OriginalToken(), "el token original debe preservarse")
	assert.True(t, store.IsImpersonating())
	assert.False(t, store.IsSuperAdmin(), "la identidad activa es la impersonada")

	require.NoError(t, store.EndImpersonation(context.Background()))

	assert.Equal(t, "tok-root", vault.Token(), "debe restaurarse el token original")
	assert.Empty(t, vault.OriginalToken(), "el slot secundario debe quedar vacío")
	assert.False(t, store.IsImpersonating())
	assert.True(t, store.IsSuperAdmin())
}

// Caso 13: Solo superAdmin puede impersonar.
func TestImpersonacion_SoloSuperAdmin(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-1"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-1": memberOf("demo", entity.RoleTenantAdmin),
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)
	require.NoError(t, store.Verify(context.Background()))

	err := store.BeginImpersonation(context.Background(), "u1")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "tok-1", vault.Token(), "el token no debe cambiar")
}

// Caso 14: Finalizar sin token original → cierre de sesión forzado.
func TestImpersonacion_FinalizarSinOriginal_FuerzaLogout(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("imp-token-suelto"))
	store := session.NewStore(&fakeAuth{}, vault, &fakeTenants{}, nil)

	err := store.EndImpersonation(context.Background())

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Empty(t, vault.Token())
	assert.False(t, store.IsAuthenticated())
}

// Caso 15: Adoptar un token de impersonación llegado por query verifica la identidad.
func TestImpersonacion_AdoptarToken(t *testing.T) {
	vault := localstore.NewMemStore()
	target := memberOf("demo", entity.RoleTenantUser)
	target.ImpersonatedBy = "u-superAdmin"
	auth := &fakeAuth{byToken: map[string]*entity.Principal{"imp-tok": target}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)

	require.NoError(t, store.AdoptImpersonationToken(context.Background(), "imp-tok"))

	assert.True(t, store.IsAuthenticated())
	assert.True(t, store.IsImpersonating())

	assert.ErrorIs(t, store.AdoptImpersonationToken(context.Background(), ""), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests del roster de usuarios
// ──────────────────────────────────────────────────────────────────────────────

// Caso 16: El roster se cachea un minuto; force=true ignora la caché.
func TestUsers_CacheYForce(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-1"))
	auth := &fakeAuth{
		byToken: map[string]*entity.Principal{"tok-1": memberOf("demo", entity.RoleTenantAdmin)},
		roster:  []entity.Principal{*memberOf("demo", entity.RoleTenantUser)},
	}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)
	require.NoError(t, store.Verify(context.Background()))

	first, err := store.Users(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = store.Users(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, auth.userCalls, "la segunda lectura debe salir de la caché")

	_, err = store.Users(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, auth.userCalls, "force debe ignorar la caché")

	store.InvalidateUsers()
	_, err = store.Users(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, auth.userCalls, "invalidar debe forzar recarga")
}

// Caso 17: El roster está vedado por debajo de administrador.
func TestUsers_RolInsuficiente(t *testing.T) {
	vault := localstore.NewMemStore()
	require.NoError(t, vault.SetToken("tok-1"))
	auth := &fakeAuth{byToken: map[string]*entity.Principal{
		"tok-1": memberOf("demo", entity.RoleTenantManager),
	}}
	store := session.NewStore(auth, vault, &fakeTenants{current: activeTenant("demo")}, nil)
	require.NoError(t, store.Verify(context.Background()))

	_, err := store.Users(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Sin sesión tampoco.
	anon := session.NewStore(&fakeAuth{}, localstore.NewMemStore(), &fakeTenants{}, nil)
	_, err = anon.Users(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
