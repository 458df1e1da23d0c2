package devbackend

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
)

// seedUser usuario sembrado con su contraseña en claro (solo desarrollo).
type seedUser struct {
	user     entity.Principal
	password string
}

// store datos en memoria del backend de desarrollo.
type store struct {
	mu        sync.RWMutex
	tenants   map[string]*entity.Tenant // por id
	users     map[string]*entity.Principal
	passwords map[string]string // userID -> hash bcrypt
	products  map[string][]entity.Product
	sales     map[string][]entity.Transaction
	purchases map[string][]entity.Transaction
}

var titleCaser = cases.Title(language.Spanish)

// displayName capitaliza el subdominio para usarlo como nombre visible
// (demo → Demo), igual que hacía la SPA en su modo de desarrollo.
func displayName(subdomain string) string {
	return titleCaser.String(strings.ToLower(subdomain))
}

func newSeedTenant(subdomain, status, plan, primary string) *entity.Tenant {
	now := time.Now()
	return &entity.Tenant{
		ID:        subdomain, // en desarrollo el id coincide con el subdominio
		Subdomain: subdomain,
		Name:      displayName(subdomain),
		Status:    status,
		Plan:      plan,
		Customization: entity.Customization{
			PrimaryColor:   primary,
			SecondaryColor: "#333333",
			CurrencySymbol: "$",
			LogoText:       displayName(subdomain),
			DateFormat:     "DD/MM/YYYY",
		},
		ContactInfo: entity.ContactInfo{Email: "soporte@" + subdomain + ".test"},
		Settings: entity.TenantSettings{
			MaxUsers:          25,
			MaxProducts:       500,
			MaxStorage:        1 << 30,
			Features:          map[string]bool{"dashboard": true, "reports": plan != entity.PlanFree},
			LowStockThreshold: 5,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// newStore siembra tenants, usuarios y transacciones de desarrollo.
func newStore() (*store, error) {
	s := &store{
		tenants:   make(map[string]*entity.Tenant),
		users:     make(map[string]*entity.Principal),
		passwords: make(map[string]string),
		products:  make(map[string][]entity.Product),
		sales:     make(map[string][]entity.Transaction),
		purchases: make(map[string][]entity.Transaction),
	}

	for _, t := range []*entity.Tenant{
		newSeedTenant("demo", entity.TenantStatusTrial, entity.PlanFree, "#3b82f6"),
		newSeedTenant("acme", entity.TenantStatusActive, entity.PlanPremium, "#0f766e"),
		newSeedTenant("globex", entity.TenantStatusSuspended, entity.PlanBasic, "#7c3aed"),
	} {
		s.tenants[t.ID] = t
	}

	seeds := []seedUser{
		{user: entity.Principal{Username: "superadmin", Role: entity.RoleSuperAdmin, IsActive: true}, password: "superadmin123"},
		{user: entity.Principal{Username: "admin", Role: entity.RoleTenantAdmin, TenantID: "demo", IsActive: true}, password: "admin123"},
		{user: entity.Principal{Username: "gerente", Role: entity.RoleTenantManager, TenantID: "demo", IsActive: true}, password: "gerente123"},
		{user: entity.Principal{Username: "vendedor", Role: entity.RoleTenantUser, TenantID: "demo", IsActive: true}, password: "vendedor123"},
		{user: entity.Principal{Username: "inactivo", Role: entity.RoleTenantUser, TenantID: "demo", IsActive: false}, password: "inactivo123"},
		{user: entity.Principal{Username: "ana", Role: entity.RoleTenantAdmin, TenantID: "acme", IsActive: true}, password: "ana123"},
	}
	for _, seed := range seeds {
		u := seed.user
		u.ID = uuid.New().String()
		u.Email = u.Username + "@" + firstNonEmpty(u.TenantID, "portal") + ".test"
		u.CreatedAt = time.Now()
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.users[u.ID] = &u
		s.passwords[u.ID] = string(hash)
	}

	now := time.Now()
	s.products["demo"] = []entity.Product{
		{ID: uuid.New().String(), TenantID: "demo", SKU: "CAF-001", Name: "Café 500g", Price: price("18500"), Cost: price("12000"), Stock: 40, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), TenantID: "demo", SKU: "AZU-001", Name: "Azúcar 1kg", Price: price("4200"), Cost: price("2900"), Stock: 3, CreatedAt: now, UpdatedAt: now},
	}
	s.sales["demo"] = []entity.Transaction{
		{ID: uuid.New().String(), TenantID: "demo", Type: entity.TransactionSale, Total: price("37000"), CreatedAt: now},
	}
	s.purchases["demo"] = []entity.Transaction{
		{ID: uuid.New().String(), TenantID: "demo", Type: entity.TransactionPurchase, Total: price("24000"), CreatedAt: now},
	}

	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// findTenant por id o subdominio.
func (s *store) findTenant(key string) *entity.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenants[key]; ok {
		return t
	}
	for _, t := range s.tenants {
		if t.Subdomain == key {
			return t
		}
	}
	return nil
}

// findUserByUsername dentro de un tenant; tenantKey vacío busca global.
func (s *store) findUserByUsername(username, tenantKey string) *entity.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username != username {
			continue
		}
		if tenantKey == "" || u.TenantID == tenantKey {
			return u
		}
	}
	return nil
}

func (s *store) findUser(id string) *entity.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id]
}

func (s *store) tenantUsers(tenantID string) []entity.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Principal
	for _, u := range s.users {
		if tenantID == "" || u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out
}

func (s *store) addUser(u *entity.Principal, passwordHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	s.passwords[u.ID] = passwordHash
}

func (s *store) addTenant(t *entity.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

func (s *store) allTenants() []entity.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, *t)
	}
	return out
}
