package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del portal (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Backend BackendConfig
	Tenant  TenantConfig
	State   StateConfig
	JWT     JWTConfig
}

// AppConfig configuración general.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig API REST de inventario que consume el portal.
// Si URL está vacío se usa la dirección local de desarrollo.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// TenantConfig parámetros de resolución de tenant por origen de la petición.
type TenantConfig struct {
	BaseDomain string   // dominio de producción, ej. invorya.com
	DevHosts   []string // hosts reconocidos como desarrollo local
	DevDefault string   // tenant fijo cuando se desarrolla en local sin subdominio
}

// StateConfig almacenamiento durable local (token, originalToken, currentTenant).
type StateConfig struct {
	Dir string // directorio de los slots; vacío = solo memoria
}

// JWTConfig firma de tokens; solo lo usa cmd/devbackend, el portal trata el token como opaco.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo .env).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BACKEND_URL, TENANT_BASE_DOMAIN, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración .env en el directorio de trabajo
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "inventario-portal"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3000),
		},
		Backend: BackendConfig{
			URL:     getString(v, "BACKEND_URL", "http://localhost:5000"),
			Timeout: time.Duration(getInt(v, "BACKEND_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Tenant: TenantConfig{
			BaseDomain: getString(v, "TENANT_BASE_DOMAIN", ""),
			DevHosts:   splitList(getString(v, "TENANT_DEV_HOSTS", "localhost,127.0.0.1")),
			DevDefault: getString(v, "TENANT_DEV_DEFAULT", "demo"),
		},
		State: StateConfig{
			Dir: getString(v, "STATE_DIR", ".portal-state"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-portal"),
		},
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
