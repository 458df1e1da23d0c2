package domain

import "errors"

// Errores de dominio del portal (sin dependencias externas).
var (
	ErrTenantNotFound     = errors.New("tenant no encontrado")
	ErrTenantSuspended    = errors.New("tenant suspendido o cancelado")
	ErrTenantForbidden    = errors.New("no tienes acceso a este tenant")
	ErrTenantStale        = errors.New("usando datos en caché, algunos datos podrían no estar actualizados")
	ErrSessionExpired     = errors.New("sesión expirada, por favor inicia sesión nuevamente")
	ErrAccountDisabled    = errors.New("tu cuenta ha sido desactivada, por favor contacta con el administrador")
	ErrInvalidCredentials = errors.New("usuario o contraseña incorrectos")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrBackendUnavailable = errors.New("error de conexión al servidor")
)

// IsStale distingue el fallback de caché (advertencia no fatal) de un error real de resolución.
func IsStale(err error) bool {
	return errors.Is(err, ErrTenantStale)
}
