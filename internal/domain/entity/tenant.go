package entity

import "time"

// Estados posibles de un tenant. Solo active y trial son accesibles públicamente;
// suspended y cancelled fuerzan la página de suspensión sin importar el usuario.
const (
	TenantStatusTrial     = "trial"
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusCancelled = "cancelled"
)

// Planes contratables.
const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Customization branding por tenant (colores, moneda, formato de fecha).
type Customization struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	CurrencySymbol string `json:"currencySymbol"`
	LogoText       string `json:"logoText"`
	DateFormat     string `json:"dateFormat"`
}

// TenantSettings límites y feature flags del plan contratado.
type TenantSettings struct {
	MaxUsers          int             `json:"maxUsers"`
	MaxProducts       int             `json:"maxProducts"`
	MaxStorage        int64           `json:"maxStorage"`
	Features          map[string]bool `json:"features"`
	LowStockThreshold int             `json:"lowStockThreshold"`
}

// ContactInfo datos de contacto del tenant.
type ContactInfo struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Tenant representa una organización/cliente del sistema, identificada por subdominio.
type Tenant struct {
	ID            string         `json:"id"`
	Subdomain     string         `json:"subdomain"`
	Name          string         `json:"name"`
	Status        string         `json:"status"`
	Plan          string         `json:"plan"`
	Customization Customization  `json:"customization"`
	ContactInfo   ContactInfo    `json:"contactInfo"`
	Settings      TenantSettings `json:"settings"`
	Logo          string         `json:"logo,omitempty"` // referencia opaca a archivo
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// IsReachable indica si el tenant puede ser visitado públicamente.
func (t *Tenant) IsReachable() bool {
	return t != nil && (t.Status == TenantStatusActive || t.Status == TenantStatusTrial)
}

// IsSuspended indica si el tenant debe forzar la página de suspensión.
func (t *Tenant) IsSuspended() bool {
	return t != nil && (t.Status == TenantStatusSuspended || t.Status == TenantStatusCancelled)
}

// HasFeature lectura pura sobre Settings.Features; nunca lanza panic.
func (t *Tenant) HasFeature(name string) bool {
	if t == nil || t.Settings.Features == nil {
		return false
	}
	return t.Settings.Features[name]
}
