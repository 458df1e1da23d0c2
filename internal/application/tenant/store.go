package tenant

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// Fetcher obtiene el registro de un tenant desde el backend.
type Fetcher interface {
	FetchTenant(ctx context.Context, key string) (*entity.Tenant, error)
}

// Cache almacenamiento durable del último tenant conocido (slot currentTenant).
// Se usa únicamente como fallback cuando el backend no responde.
type Cache interface {
	ReadTenant() (*entity.Tenant, error)
	WriteTenant(t *entity.Tenant) error
	ClearTenant() error
}

// BrandingApplier hook de presentación invocado cada vez que cambia el tenant resuelto.
// Debe ser idempotente: se vuelve a invocar con cada registro comprometido.
type BrandingApplier interface {
	Apply(t *entity.Tenant)
}

// StoreError error observable del store; Fatal=false es la advertencia de datos en caché.
type StoreError struct {
	Message string
	Fatal   bool
}

func (e *StoreError) Error() string { return e.Message }

// Store mantiene el tenant resuelto: carga, caché durable, fallback y branding.
// Estado observable (Current/Loading/Err) protegido por mutex; a lo sumo un fetch
// por clave en vuelo y la última llamada gana (respuestas tardías se descartan).
type Store struct {
	fetcher  Fetcher
	cache    Cache
	branding BrandingApplier
	log      *logger.Logger

	mu        sync.Mutex
	current   *entity.Tenant
	key       string // clave deseada actualmente
	loadedKey string // última clave cargada con éxito (idempotencia de Load)
	loading   bool
	err       *StoreError
	gen       uint64 // generación de carga; una respuesta de generación vieja no comete estado

	flight singleflight.Group // Load concurrentes de la misma clave comparten un único fetch
}

// NewStore construye el store del tenant.
func NewStore(fetcher Fetcher, cache Cache, branding BrandingApplier, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{fetcher: fetcher, cache: cache, branding: branding, log: log.Component("tenant")}
}

// Load resuelve key a un registro. Idempotente por clave: si la clave ya está
// cargada no vuelve a la red, y Load concurrentes de la misma clave se agrupan
// en un único fetch. key=="" limpia el estado sin llamada de red.
func (s *Store) Load(ctx context.Context, key string) error {
	s.mu.Lock()
	if key == "" {
		s.current = nil
		s.key = ""
		s.loadedKey = ""
		s.loading = false
		s.err = nil
		s.mu.Unlock()
		return nil
	}
	if s.loadedKey == key && !s.loading {
		s.mu.Unlock()
		return s.errOrNil()
	}
	s.mu.Unlock()

	_, err, _ := s.flight.Do(key, func() (any, error) {
		return nil, s.fetch(ctx, key)
	})
	return err
}

// SwitchTenant re-dispara la carga aunque la clave ya esté resuelta. Se usa para el
// cambio explícito de tenant y para recuperar el tenant del principal cuando el
// origen no lo resolvía.
func (s *Store) SwitchTenant(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.fetch(ctx, key)
}

func (s *Store) fetch(ctx context.Context, key string) error {
	s.mu.Lock()
	s.key = key
	s.loading = true
	s.gen++
	myGen := s.gen
	s.mu.Unlock()

	record, err := s.fetcher.FetchTenant(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Guardia de respuesta tardía: si otra carga arrancó después, esta respuesta
	// ya no corresponde a la clave deseada y se descarta sin tocar el estado.
	if s.gen != myGen {
		s.log.Debug().Str("key", key).Msg("respuesta de tenant descartada por carga superada")
		return nil
	}
	s.loading = false

	if err == nil && record != nil {
		s.current = record
		s.loadedKey = key
		s.err = nil
		if s.cache != nil {
			if werr := s.cache.WriteTenant(record); werr != nil {
				s.log.Warn().Err(werr).Msg("no se pudo escribir el tenant en caché")
			}
		}
		s.applyBranding(record)
		s.log.Info().Str("key", key).Str("tenant_id", record.ID).Str("status", record.Status).Msg("tenant resuelto")
		return nil
	}

	// Fetch fallido: intentar fallback de caché antes de declarar no encontrado.
	if cached := s.readCache(key); cached != nil {
		s.current = cached
		s.loadedKey = key
		s.err = &StoreError{Message: domain.ErrTenantStale.Error(), Fatal: false}
		s.applyBranding(cached)
		s.log.Warn().Str("key", key).Err(err).Msg("fetch de tenant falló, usando datos en caché")
		return domain.ErrTenantStale
	}

	s.current = nil
	s.loadedKey = ""
	msg := domain.ErrTenantNotFound.Error()
	if err != nil && errors.Is(err, domain.ErrBackendUnavailable) {
		msg = domain.ErrBackendUnavailable.Error()
	}
	s.err = &StoreError{Message: msg, Fatal: true}
	s.log.Error().Str("key", key).Err(err).Msg("no se pudo resolver el tenant")
	if err == nil {
		err = domain.ErrTenantNotFound
	}
	return err
}

// readCache devuelve el registro cacheado solo si corresponde a la clave pedida.
func (s *Store) readCache(key string) *entity.Tenant {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.ReadTenant()
	if err != nil || cached == nil {
		return nil
	}
	if cached.ID != key && cached.Subdomain != key {
		return nil
	}
	return cached
}

func (s *Store) applyBranding(t *entity.Tenant) {
	if s.branding != nil {
		s.branding.Apply(t)
	}
}

func (s *Store) errOrNil() error {
	if s.err == nil {
		return nil
	}
	if s.err.Fatal {
		return domain.ErrTenantNotFound
	}
	return domain.ErrTenantStale
}

// Current devuelve el tenant resuelto (nil si no hay).
func (s *Store) Current() *entity.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Key devuelve la clave deseada actualmente.
func (s *Store) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Loading indica si hay una carga en vuelo.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err devuelve el último error observable (nil si no hay).
func (s *Store) Err() *StoreError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// HasFeature lectura pura sobre los settings del tenant actual; nunca lanza panic.
func (s *Store) HasFeature(name string) bool {
	return s.Current().HasFeature(name)
}

// Config lectura de customización/settings con valor por defecto explícito.
// Claves reconocidas: primaryColor, secondaryColor, currencySymbol, logoText, dateFormat.
func (s *Store) Config(key, def string) string {
	t := s.Current()
	if t == nil {
		return def
	}
	var val string
	switch key {
	case "primaryColor":
		val = t.Customization.PrimaryColor
	case "secondaryColor":
		val = t.Customization.SecondaryColor
	case "currencySymbol":
		val = t.Customization.CurrencySymbol
	case "logoText":
		val = t.Customization.LogoText
	case "dateFormat":
		val = t.Customization.DateFormat
	}
	if val == "" {
		return def
	}
	return val
}
