// Package devbackend implementa en memoria el contrato REST que el portal
// consume, para poder desarrollar y probar sin el backend real desplegado.
// No es un backend de producto: datos sembrados, sin persistencia.
package devbackend

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/pkg/jwt"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// Vida corta de los tokens de impersonación (minutos).
const impersonationExpMinutes = 15

// Config del backend de desarrollo.
type Config struct {
	JWTSecret  string
	JWTIssuer  string
	ExpMinutes int
}

// Server backend de desarrollo.
type Server struct {
	cfg   Config
	data  *store
	log   *logger.Logger
}

// New siembra los datos y construye el servidor.
func New(cfg Config, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	data, err := newStore()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-no-usar-en-produccion"
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "inventario-devbackend"
	}
	if cfg.ExpMinutes <= 0 {
		cfg.ExpMinutes = 60
	}
	return &Server{cfg: cfg, data: data, log: log.Component("devbackend")}, nil
}

// Register monta las rutas del contrato consumido por el portal.
func (s *Server) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/auth/login", s.login)
	api.Get("/auth/me", s.me)
	api.Get("/auth/users", s.users)
	api.Post("/auth/register", s.registerUser)

	api.Get("/tenants/:key", s.getTenant)
	api.Post("/tenants/register", s.registerTenant)
	api.Get("/tenants/:key/auth/users", s.users)
	api.Post("/tenants/:key/auth/register", s.registerUser)

	api.Post("/admin/impersonate/:userId", s.impersonate)
	api.Get("/admin/tenants", s.listTenants)

	api.Get("/products", s.listProducts)
	api.Get("/sales", s.listSales)
	api.Get("/purchases", s.listPurchases)
	api.Post("/sales", s.createTransaction(entity.TransactionSale))
	api.Post("/purchases", s.createTransaction(entity.TransactionPurchase))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	tenantKey := in.TenantID
	if tenantKey == "" {
		tenantKey = c.Get("X-Tenant-ID")
	}
	// El superadmin reservado nunca se scopea por tenant.
	if in.Username == entity.ReservedSuperAdminUsername {
		tenantKey = ""
	}

	user := s.data.findUserByUsername(in.Username, tenantKey)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "usuario o contraseña incorrectos"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.data.passwords[user.ID]), []byte(in.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "usuario o contraseña incorrectos"})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message":  "cuenta desactivada",
			"isActive": false,
		})
	}

	token, err := jwt.Generate(s.cfg.JWTSecret, jwt.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	}, s.cfg.JWTIssuer, s.cfg.ExpMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("login de desarrollo")
	return c.JSON(fiber.Map{"token": token, "user": user})
}

// bearerClaims extrae y valida el bearer token.
func (s *Server) bearerClaims(c *fiber.Ctx) *jwt.Claims {
	auth := c.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}
	claims, err := jwt.Parse(s.cfg.JWTSecret, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}
	return claims
}

func (s *Server) me(c *fiber.Ctx) error {
	claims := s.bearerClaims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}
	user := s.data.findUser(claims.UserID)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "usuario del token no existe"})
	}
	out := *user
	out.ImpersonatedBy = claims.ImpersonatedBy
	return c.JSON(out)
}

func (s *Server) getTenant(c *fiber.Ctx) error {
	t := s.data.findTenant(c.Params("key"))
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "TENANT_NOT_FOUND", Message: "tenant no encontrado"})
	}
	return c.JSON(t)
}

func (s *Server) impersonate(c *fiber.Ctx) error {
	claims := s.bearerClaims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}
	if claims.Role != entity.RoleSuperAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo superAdmin puede impersonar"})
	}
	target := s.data.findUser(c.Params("userId"))
	if target == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}

	token, err := jwt.Generate(s.cfg.JWTSecret, jwt.Claims{
		UserID:         target.ID,
		TenantID:       target.TenantID,
		Role:           target.Role,
		ImpersonatedBy: claims.UserID,
	}, s.cfg.JWTIssuer, impersonationExpMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	s.log.Info().Str("impersonator", claims.UserID).Str("target", target.ID).Msg("token de impersonación emitido")
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) users(c *fiber.Ctx) error {
	claims := s.bearerClaims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}
	tenantID := c.Params("key")
	if tenantID == "" {
		tenantID = claims.TenantID
	}
	if claims.Role != entity.RoleSuperAdmin && claims.TenantID != tenantID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a los usuarios de este tenant"})
	}
	return c.JSON(s.data.tenantUsers(tenantID))
}

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
}

func (s *Server) registerUser(c *fiber.Ctx) error {
	var in registerUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username y password son requeridos"})
	}
	tenantID := c.Params("key")
	if tenantID == "" {
		tenantID = in.TenantID
	}
	if existing := s.data.findUserByUsername(in.Username, tenantID); existing != nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el usuario ya existe en este tenant"})
	}
	role := in.Role
	if role == "" {
		role = entity.RoleTenantUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	user := &entity.Principal{
		ID:        uuid.New().String(),
		Username:  in.Username,
		Email:     in.Email,
		Role:      role,
		TenantID:  tenantID,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.data.addUser(user, string(hash))
	return c.Status(fiber.StatusCreated).JSON(user)
}

type registerTenantRequest struct {
	Subdomain string `json:"subdomain"`
	Name      string `json:"name"`
}

func (s *Server) registerTenant(c *fiber.Ctx) error {
	var in registerTenantRequest
	if err := c.BodyParser(&in); err != nil || in.Subdomain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "subdomain es requerido"})
	}
	if s.data.findTenant(in.Subdomain) != nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el subdominio ya está en uso"})
	}
	t := newSeedTenant(in.Subdomain, entity.TenantStatusTrial, entity.PlanFree, "#3b82f6")
	t.ID = uuid.New().String()
	if in.Name != "" {
		t.Name = in.Name
		t.Customization.LogoText = in.Name
	}
	s.data.addTenant(t)
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (s *Server) listTenants(c *fiber.Ctx) error {
	claims := s.bearerClaims(c)
	if claims == nil || claims.Role != entity.RoleSuperAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo superAdmin"})
	}
	return c.JSON(s.data.allTenants())
}

// tenantScope tenant efectivo de una petición de datos: header o claims.
func (s *Server) tenantScope(c *fiber.Ctx) (string, error) {
	claims := s.bearerClaims(c)
	if claims == nil {
		return "", fiber.ErrUnauthorized
	}
	key := c.Get("X-Tenant-ID")
	if key == "" {
		key = claims.TenantID
	}
	if t := s.data.findTenant(key); t != nil {
		key = t.ID
	}
	if claims.Role != entity.RoleSuperAdmin && claims.TenantID != key {
		return "", fiber.ErrForbidden
	}
	return key, nil
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	key, err := s.tenantScope(c)
	if err != nil {
		return s.scopeError(c, err)
	}
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := s.data.products[key]
	if out == nil {
		out = []entity.Product{}
	}
	return c.JSON(out)
}

func (s *Server) listSales(c *fiber.Ctx) error {
	return s.listTransactions(c, s.data.sales)
}

func (s *Server) listPurchases(c *fiber.Ctx) error {
	return s.listTransactions(c, s.data.purchases)
}

func (s *Server) listTransactions(c *fiber.Ctx, set map[string][]entity.Transaction) error {
	key, err := s.tenantScope(c)
	if err != nil {
		return s.scopeError(c, err)
	}
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := set[key]
	if out == nil {
		out = []entity.Transaction{}
	}
	return c.JSON(out)
}

func (s *Server) createTransaction(txType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := s.tenantScope(c)
		if err != nil {
			return s.scopeError(c, err)
		}
		var in entity.Transaction
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		in.ID = uuid.New().String()
		in.TenantID = key
		in.Type = txType
		in.CreatedAt = time.Now()

		s.data.mu.Lock()
		defer s.data.mu.Unlock()
		if txType == entity.TransactionSale {
			s.data.sales[key] = append([]entity.Transaction{in}, s.data.sales[key]...)
		} else {
			s.data.purchases[key] = append([]entity.Transaction{in}, s.data.purchases[key]...)
		}
		return c.Status(fiber.StatusCreated).JSON(in)
	}
}

func (s *Server) scopeError(c *fiber.Ctx, err error) error {
	if err == fiber.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a este tenant"})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
}
