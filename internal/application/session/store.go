package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// AuthClient contrato mínimo contra el backend de identidad. Lo implementa
// *backend.Client; la interfaz permite sustituirlo en tests.
type AuthClient interface {
	Login(ctx context.Context, username, password, tenantKey string) (token string, p *entity.Principal, err error)
	Me(ctx context.Context, token string) (*entity.Principal, error)
	Impersonate(ctx context.Context, token, userID string) (newToken string, err error)
	TenantUsers(ctx context.Context, token, tenantID string) ([]entity.Principal, error)
}

// TokenVault slots durables de sesión: token primario y originalToken (impersonación).
// Set y Clear deben ser atómicos respecto a la lectura inmediata siguiente.
type TokenVault interface {
	Token() string
	SetToken(tok string) error
	OriginalToken() string
	SetOriginalToken(tok string) error
	ClearTokens() error // limpia ambos slots de forma consistente
}

// resolvedTenant es lo único que la sesión necesita del TenantStore.
type resolvedTenant interface {
	Current() *entity.Tenant
}

// usersCacheTTL tiempo de vida de la caché del roster de usuarios del tenant.
const usersCacheTTL = time.Minute

// Store es el dueño del ciclo de vida del token: verifica el principal contra el
// backend, cruza su pertenencia con el tenant resuelto y expone los predicados de
// rol e impersonación. Verify debe re-ejecutarse cuando cambia el token o el tenant
// activo; EnsureVerified implementa exactamente esos dos disparadores.
type Store struct {
	auth    AuthClient
	vault   TokenVault
	tenants resolvedTenant
	log     *logger.Logger

	mu        sync.Mutex
	principal *entity.Principal
	loading   bool
	errMsg    string // mensaje visible para el usuario; "" si no hay error

	// última pareja (token, tenant) ya verificada, para no re-verificar sin cambios
	verifiedToken  string
	verifiedTenant string
	verifiedOnce   bool

	usersCache    []entity.Principal
	usersCachedAt time.Time
}

// NewStore construye el store de sesión.
func NewStore(auth AuthClient, vault TokenVault, tenants resolvedTenant, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{auth: auth, vault: vault, tenants: tenants, log: log.Component("session")}
}

// EnsureVerified re-ejecuta Verify solo si el token o el tenant activo cambiaron
// desde la última verificación. Es el punto de entrada del middleware.
func (s *Store) EnsureVerified(ctx context.Context) error {
	token := s.vault.Token()
	tenantID := ""
	if t := s.tenants.Current(); t != nil {
		tenantID = t.ID
	}

	s.mu.Lock()
	unchanged := s.verifiedOnce && s.verifiedToken == token && s.verifiedTenant == tenantID
	s.mu.Unlock()
	if unchanged {
		return nil
	}
	return s.Verify(ctx)
}

// Verify valida el token contra el backend y cruza la pertenencia al tenant.
//
// Orden del algoritmo:
//  1. Sin token → principal nil, sin error (visitante anónimo).
//  2. Consultar /auth/me con el token.
//  3. isActive=false → cuenta desactivada: limpiar token, tratar como sesión expirada.
//  4. Tenant resuelto y tenantId distinto (no superAdmin) → sin acceso a este tenant.
//  5. Comprometer principal y limpiar error.
//  6. Fallo de red/transporte → sesión expirada: limpiar token y principal.
func (s *Store) Verify(ctx context.Context) error {
	token := s.vault.Token()
	tenant := s.tenants.Current()
	tenantID := ""
	if tenant != nil {
		tenantID = tenant.ID
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	if token == "" {
		s.commit(nil, "", token, tenantID)
		return nil
	}

	p, err := s.auth.Me(ctx, token)
	if err != nil {
		s.teardown(token, tenantID, domain.ErrSessionExpired.Error())
		s.log.Warn().Err(err).Msg("verificación de token fallida")
		return domain.ErrSessionExpired
	}

	if !p.IsActive {
		s.teardown(token, tenantID, domain.ErrAccountDisabled.Error())
		s.log.Warn().Str("user_id", p.ID).Msg("usuario desactivado, sesión rechazada")
		return domain.ErrAccountDisabled
	}

	if tenant != nil && !p.IsSuperAdmin() && p.TenantID != tenant.ID {
		s.teardown(token, tenantID, domain.ErrTenantForbidden.Error())
		s.log.Warn().
			Str("user_id", p.ID).
			Str("user_tenant", p.TenantID).
			Str("resolved_tenant", tenant.ID).
			Msg("el usuario no pertenece a este tenant")
		return domain.ErrTenantForbidden
	}

	s.commit(p, "", token, tenantID)
	s.log.Info().Str("user_id", p.ID).Str("role", p.Role).Msg("sesión verificada")
	return nil
}

// commit fija el principal y marca la pareja (token, tenant) como verificada.
func (s *Store) commit(p *entity.Principal, errMsg, token, tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = p
	s.errMsg = errMsg
	s.loading = false
	s.verifiedToken = token
	s.verifiedTenant = tenantID
	s.verifiedOnce = true
}

// teardown limpia token, impersonación y principal de forma consistente.
func (s *Store) teardown(token, tenantID, errMsg string) {
	if err := s.vault.ClearTokens(); err != nil {
		s.log.Error().Err(err).Msg("no se pudieron limpiar los slots de token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = nil
	s.errMsg = errMsg
	s.loading = false
	s.verifiedToken = ""
	s.verifiedTenant = tenantID
	s.verifiedOnce = true
	s.usersCache = nil
	s.usersCachedAt = time.Time{}
}

// Login autentica al usuario. Para el usuario reservado superadmin se omite por
// completo el scoping por tenant; para el resto, si hay clave de tenant resoluble
// se adjunta a la petición. isActive=false en la respuesta se trata como fallo.
func (s *Store) Login(ctx context.Context, username, password, tenantKey string) error {
	if username == entity.ReservedSuperAdminUsername {
		tenantKey = ""
	}

	token, user, err := s.auth.Login(ctx, username, password, tenantKey)
	if err != nil {
		msg := domain.ErrInvalidCredentials.Error()
		if errors.Is(err, domain.ErrBackendUnavailable) {
			msg = domain.ErrBackendUnavailable.Error()
		} else if errors.Is(err, domain.ErrAccountDisabled) {
			msg = domain.ErrAccountDisabled.Error()
		}
		s.mu.Lock()
		s.errMsg = msg
		s.loading = false
		s.mu.Unlock()
		s.log.Warn().Str("username", username).Err(err).Msg("login fallido")
		return err
	}

	if user != nil && !user.IsActive {
		s.mu.Lock()
		s.errMsg = domain.ErrAccountDisabled.Error()
		s.loading = false
		s.mu.Unlock()
		return domain.ErrAccountDisabled
	}

	if err := s.vault.SetToken(token); err != nil {
		return err
	}
	tenantID := ""
	if t := s.tenants.Current(); t != nil {
		tenantID = t.ID
	}
	s.commit(user, "", token, tenantID)
	s.log.Info().Str("username", username).Str("role", user.Role).Msg("login correcto")
	return nil
}

// Logout cierra la sesión: limpia ambos slots de token, el principal y la caché
// del roster de usuarios.
func (s *Store) Logout() {
	s.teardown("", "", "")
	s.log.Info().Msg("sesión cerrada")
}

// BeginImpersonation pide al backend un token de impersonación de corta vida y
// guarda el token actual en el slot secundario antes del intercambio. Fuerza una
// verificación completa con la nueva identidad.
func (s *Store) BeginImpersonation(ctx context.Context, userID string) error {
	if !s.IsSuperAdmin() {
		return domain.ErrForbidden
	}
	current := s.vault.Token()
	newToken, err := s.auth.Impersonate(ctx, current, userID)
	if err != nil {
		s.log.Error().Err(err).Str("target_user", userID).Msg("impersonación fallida")
		return err
	}
	if err := s.vault.SetOriginalToken(current); err != nil {
		return err
	}
	if err := s.vault.SetToken(newToken); err != nil {
		return err
	}
	s.log.Info().Str("target_user", userID).Msg("impersonación iniciada")
	return s.Verify(ctx)
}

// AdoptImpersonationToken acepta un token de impersonación llegado por la ruta de
// auth-redirect (?impersonationToken=) y verifica la identidad resultante.
func (s *Store) AdoptImpersonationToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidInput
	}
	if err := s.vault.SetToken(token); err != nil {
		return err
	}
	return s.Verify(ctx)
}

// EndImpersonation restaura el token original si existe; si no, fuerza re-login.
// Cualquiera de los dos caminos hace un refresh completo del estado para que no se
// filtre autorización derivada de la identidad impersonada.
func (s *Store) EndImpersonation(ctx context.Context) error {
	original := s.vault.OriginalToken()
	if original == "" {
		s.Logout()
		return domain.ErrSessionExpired
	}
	if err := s.vault.SetToken(original); err != nil {
		return err
	}
	if err := s.vault.SetOriginalToken(""); err != nil {
		return err
	}
	s.log.Info().Msg("impersonación finalizada, identidad original restaurada")
	return s.Verify(ctx)
}

// Users devuelve el roster de usuarios del tenant actual, con caché de un minuto.
// force=true ignora la caché. Solo administradores del tenant (o superAdmin).
func (s *Store) Users(ctx context.Context, force bool) ([]entity.Principal, error) {
	p := s.Principal()
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if !p.IsTenantAdmin() && p.Role != entity.RoleLegacyAdmin {
		return nil, domain.ErrForbidden
	}

	s.mu.Lock()
	if !force && s.usersCache != nil && time.Since(s.usersCachedAt) < usersCacheTTL {
		cached := s.usersCache
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	tenantID := p.TenantID
	if t := s.tenants.Current(); t != nil && tenantID == "" {
		tenantID = t.ID
	}
	users, err := s.auth.TenantUsers(ctx, s.vault.Token(), tenantID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.usersCache = users
	s.usersCachedAt = time.Now()
	s.mu.Unlock()
	return users, nil
}

// InvalidateUsers descarta la caché del roster (tras registrar o editar usuarios).
func (s *Store) InvalidateUsers() {
	s.mu.Lock()
	s.usersCache = nil
	s.usersCachedAt = time.Time{}
	s.mu.Unlock()
}

// Principal devuelve la identidad autenticada (nil si no hay).
func (s *Store) Principal() *entity.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// Token devuelve el token primario actual.
func (s *Store) Token() string { return s.vault.Token() }

// Loading indica si hay una verificación en vuelo.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ErrMessage último mensaje de error visible para el usuario ("" si no hay).
func (s *Store) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Predicados derivados del rol del principal.
func (s *Store) IsAuthenticated() bool { return s.Principal() != nil }
func (s *Store) IsSuperAdmin() bool    { return s.Principal().IsSuperAdmin() }
func (s *Store) IsTenantAdmin() bool   { return s.Principal().IsTenantAdmin() }
func (s *Store) IsTenantManager() bool { return s.Principal().IsTenantManager() }

// IsImpersonating refleja impersonatedBy en el principal; la presencia del slot
// secundario implica lo mismo mientras /auth/me aún no respondió.
func (s *Store) IsImpersonating() bool {
	if p := s.Principal(); p != nil && p.ImpersonatedBy != "" {
		return true
	}
	return s.vault.OriginalToken() != ""
}
