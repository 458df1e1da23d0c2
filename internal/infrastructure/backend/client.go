// Package backend implementa el cliente HTTP/JSON del API REST de inventario.
// El portal lo consume como colaborador opaco: aquí solo viven el transporte, los
// headers de tenant/autorización y la separación entre fallo de red y fallo HTTP
// (un problema de conectividad nunca debe confundirse con una autorización negada).
package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// HeaderTenant header con el que viaja el tenant en cada petición.
const HeaderTenant = "X-Tenant-ID"

// Client cliente del backend de inventario.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New construye el cliente con base URL y timeout.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: rc, log: log.Component("backend")}
}

// errorBody forma habitual de los errores del backend.
type errorBody struct {
	Message  string `json:"message"`
	Error    string `json:"error"`
	IsActive *bool  `json:"isActive,omitempty"`
}

func (e *errorBody) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// mapError convierte una respuesta no-2xx en un error de dominio.
func mapError(status int, body *errorBody) error {
	if body != nil && body.IsActive != nil && !*body.IsActive {
		return domain.ErrAccountDisabled
	}
	switch status {
	case 401:
		return domain.ErrUnauthorized
	case 403:
		return domain.ErrForbidden
	case 404:
		return domain.ErrNotFound
	default:
		msg := ""
		if body != nil {
			msg = body.text()
		}
		if msg == "" {
			msg = fmt.Sprintf("backend respondió %d", status)
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	}
}

func transportErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
}

// loginResponse respuesta de POST /api/auth/login.
type loginResponse struct {
	Token string            `json:"token"`
	User  *entity.Principal `json:"user"`
}

// Login autentica contra el backend. tenantKey vacío omite el scoping por tenant
// (login del superadmin reservado); si no, viaja en el body y en X-Tenant-ID.
func (c *Client) Login(ctx context.Context, username, password, tenantKey string) (string, *entity.Principal, error) {
	payload := map[string]string{"username": username, "password": password}
	req := c.http.R().SetContext(ctx).SetBody(payload)
	if tenantKey != "" {
		payload["tenantId"] = tenantKey
		req.SetHeader(HeaderTenant, tenantKey)
	}

	var ok loginResponse
	var bad errorBody
	resp, err := req.SetResult(&ok).SetError(&bad).Post("/api/auth/login")
	if err != nil {
		return "", nil, transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 401 || resp.StatusCode() == 400 {
			if bad.IsActive != nil && !*bad.IsActive {
				return "", nil, domain.ErrAccountDisabled
			}
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, mapError(resp.StatusCode(), &bad)
	}
	if ok.Token == "" || ok.User == nil {
		return "", nil, fmt.Errorf("%w: respuesta de login inválida", domain.ErrBackendUnavailable)
	}
	return ok.Token, ok.User, nil
}

// Me verifica el token contra el endpoint de identidad.
func (c *Client) Me(ctx context.Context, token string) (*entity.Principal, error) {
	var p entity.Principal
	var bad errorBody
	resp, err := c.http.R().SetContext(ctx).
		SetAuthToken(token).
		SetResult(&p).SetError(&bad).
		Get("/api/auth/me")
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.IsError() {
		return nil, mapError(resp.StatusCode(), &bad)
	}
	return &p, nil
}

// FetchTenant obtiene el registro del tenant por subdominio o id.
func (c *Client) FetchTenant(ctx context.Context, key string) (*entity.Tenant, error) {
	var t entity.Tenant
	var bad errorBody
	resp, err := c.http.R().SetContext(ctx).
		SetResult(&t).SetError(&bad).
		Get("/api/tenants/" + url.PathEscape(key))
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.StatusCode() == 404 {
		return nil, domain.ErrTenantNotFound
	}
	if resp.IsError() {
		return nil, mapError(resp.StatusCode(), &bad)
	}
	return &t, nil
}

// Impersonate pide un token de impersonación de corta vida (solo superAdmin).
func (c *Client) Impersonate(ctx context.Context, token, userID string) (string, error) {
	var ok struct {
		Token string `json:"token"`
	}
	var bad errorBody
	resp, err := c.http.R().SetContext(ctx).
		SetAuthToken(token).
		SetResult(&ok).SetError(&bad).
		Post("/api/admin/impersonate/" + url.PathEscape(userID))
	if err != nil {
		return "", transportErr(err)
	}
	if resp.IsError() {
		return "", mapError(resp.StatusCode(), &bad)
	}
	if ok.Token == "" {
		return "", fmt.Errorf("%w: respuesta de impersonación sin token", domain.ErrBackendUnavailable)
	}
	return ok.Token, nil
}

// TenantUsers roster de usuarios; con tenant usa la ruta scoped, sin él la global.
func (c *Client) TenantUsers(ctx context.Context, token, tenantID string) ([]entity.Principal, error) {
	path := "/api/auth/users"
	if tenantID != "" {
		path = "/api/tenants/" + url.PathEscape(tenantID) + "/auth/users"
	}
	var users []entity.Principal
	var bad errorBody
	resp, err := c.http.R().SetContext(ctx).
		SetAuthToken(token).
		SetResult(&users).SetError(&bad).
		Get(path)
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.IsError() {
		return nil, mapError(resp.StatusCode(), &bad)
	}
	return users, nil
}

// RegisterUser registro de usuario dentro de un tenant (o global si tenantID vacío).
func (c *Client) RegisterUser(ctx context.Context, token, tenantID string, payload map[string]any) (*entity.Principal, error) {
	path := "/api/auth/register"
	if tenantID != "" {
		path = "/api/tenants/" + url.PathEscape(tenantID) + "/auth/register"
		payload["tenantId"] = tenantID
	}
	payload["isActive"] = true // los usuarios nuevos nacen activos
	var p entity.Principal
	var bad errorBody
	resp, err := c.http.R().SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		SetResult(&p).SetError(&bad).
		Post(path)
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.IsError() {
		return nil, mapError(resp.StatusCode(), &bad)
	}
	return &p, nil
}

// RegisterTenant alta de un tenant nuevo desde el dominio principal.
func (c *Client) RegisterTenant(ctx context.Context, payload map[string]any) (*entity.Tenant, error) {
	var t entity.Tenant
	var bad errorBody
	resp, err := c.http.R().SetContext(ctx).
		SetBody(payload).
		SetResult(&t).SetError(&bad).
		Post("/api/tenants/register")
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.IsError() {
		return nil, mapError(resp.StatusCode(), &bad)
	}
	return &t, nil
}

// ListProducts catálogo del tenant (para el dashboard y el proxy tipado).
func (c *Client) ListProducts(ctx context.Context, token, tenantKey string) ([]entity.Product, error) {
	var products []entity.Product
	if err := c.getJSON(ctx, "/api/products", token, tenantKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListSales ventas del tenant.
func (c *Client) ListSales(ctx context.Context, token, tenantKey string) ([]entity.Transaction, error) {
	var sales []entity.Transaction
	if err := c.getJSON(ctx, "/api/sales", token, tenantKey, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// ListPurchases compras del tenant.
func (c *Client) ListPurchases(ctx context.Context, token, tenantKey string) ([]entity.Transaction, error) {
	var purchases []entity.Transaction
	if err := c.getJSON(ctx, "/api/purchases", token, tenantKey, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (c *Client) getJSON(ctx context.Context, path, token, tenantKey string, out any) error {
	var bad errorBody
	req := c.http.R().SetContext(ctx).SetResult(out).SetError(&bad)
	if token != "" {
		req.SetAuthToken(token)
	}
	if tenantKey != "" {
		req.SetHeader(HeaderTenant, tenantKey)
	}
	resp, err := req.Get(path)
	if err != nil {
		return transportErr(err)
	}
	if resp.IsError() {
		return mapError(resp.StatusCode(), &bad)
	}
	return nil
}

// ProxyResult respuesta cruda de una llamada reenviada.
type ProxyResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// Proxy reenvía una llamada CRUD de las pantallas tal cual, añadiendo el bearer y
// el header de tenant. El cuerpo y el estado vuelven sin interpretar; solo el
// fallo de transporte se convierte en error.
func (c *Client) Proxy(ctx context.Context, method, path string, query url.Values, body []byte, token, tenantKey string) (*ProxyResult, error) {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if tenantKey != "" {
		req.SetHeader(HeaderTenant, tenantKey)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, transportErr(err)
	}
	return &ProxyResult{
		Status:      resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}
