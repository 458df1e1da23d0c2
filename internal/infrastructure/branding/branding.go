// Package branding mantiene el contexto de presentación a nivel de proceso: el
// equivalente de las variables CSS, el título del documento y el favicon que la
// SPA aplicaba al resolver el tenant. Apply es idempotente y se re-invoca con
// cada registro comprometido por el TenantStore.
package branding

import (
	"fmt"
	"sync"

	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
)

// Valores por defecto cuando el tenant no personaliza nada.
const (
	DefaultPrimaryColor   = "#3b82f6"
	DefaultSecondaryColor = "#333333"
	DefaultCurrencySymbol = "$"
	DefaultDateFormat     = "DD/MM/YYYY"
	baseTitle             = "Sistema de Inventario"
)

// Snapshot estado de branding serializable para las pantallas.
type Snapshot struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	CurrencySymbol string `json:"currencySymbol"`
	DateFormat     string `json:"dateFormat"`
	LogoText       string `json:"logoText"`
	DocumentTitle  string `json:"documentTitle"`
	Favicon        string `json:"favicon,omitempty"`
}

// Context contexto de presentación compartido.
type Context struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New contexto con los valores por defecto.
func New() *Context {
	return &Context{snap: defaults()}
}

func defaults() Snapshot {
	return Snapshot{
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		CurrencySymbol: DefaultCurrencySymbol,
		DateFormat:     DefaultDateFormat,
		DocumentTitle:  baseTitle,
	}
}

// Apply inyecta la personalización del tenant. nil restaura los defaults.
func (c *Context) Apply(t *entity.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := defaults()
	if t != nil {
		if v := t.Customization.PrimaryColor; v != "" {
			snap.PrimaryColor = v
		}
		if v := t.Customization.SecondaryColor; v != "" {
			snap.SecondaryColor = v
		}
		if v := t.Customization.CurrencySymbol; v != "" {
			snap.CurrencySymbol = v
		}
		if v := t.Customization.DateFormat; v != "" {
			snap.DateFormat = v
		}
		snap.LogoText = t.Customization.LogoText
		if t.Name != "" {
			snap.DocumentTitle = t.Name + " - " + baseTitle
		}
		snap.Favicon = t.Logo
	}
	c.snap = snap
}

// Reset vuelve a los valores por defecto (logout del dominio principal).
func (c *Context) Reset() {
	c.Apply(nil)
}

// Snapshot copia del estado actual.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// CSS variables de tema listas para servir como hoja de estilo.
func (c *Context) CSS() string {
	s := c.Snapshot()
	return fmt.Sprintf(
		":root {\n  --primary-color: %s;\n  --secondary-color: %s;\n}\n",
		s.PrimaryColor, s.SecondaryColor,
	)
}
