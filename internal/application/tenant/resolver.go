package tenant

import (
	"net"
	"strings"
)

// Context es el origen de una navegación: host de la petición y override explícito.
// Se resuelve en cada navegación; nunca se cachea entre cambios de host.
type Context struct {
	Host  string // puede incluir puerto
	Param string // ?tenant= (desarrollo/pruebas), gana sobre todo lo demás
}

// Resolver deriva la clave de tenant desde el origen de la petición.
// Función pura: sin efectos, misma entrada misma salida.
type Resolver struct {
	// BaseDomain dominio de producción (ej. invorya.com). Si está configurado,
	// el dominio principal y www no resuelven a ningún tenant.
	BaseDomain string
	// DevHosts hosts reconocidos como desarrollo local (localhost, 127.0.0.1).
	DevHosts []string
	// DevDefault tenant fijo para desarrollo local sin subdominio ni parámetro.
	DevDefault string
}

// Resolve aplica la precedencia, en orden, primera coincidencia gana:
//  1. Parámetro explícito.
//  2. Host de desarrollo con prefijo de subdominio (acme.localhost → acme).
//  3. Host de desarrollo a secas → tenant por defecto de desarrollo.
//  4. Producción: primera etiqueta del subdominio si no es www.
//  5. Dominio principal → "" (sin tenant).
func (r *Resolver) Resolve(ctx Context) string {
	if ctx.Param != "" {
		return ctx.Param
	}

	host := stripPort(strings.ToLower(strings.TrimSpace(ctx.Host)))
	if host == "" {
		return ""
	}

	if dev, sub := r.devSubdomain(host); dev {
		if sub != "" {
			return sub
		}
		return r.DevDefault
	}

	return r.prodSubdomain(host)
}

// devSubdomain indica si el host es de desarrollo y, si aplica, su prefijo de subdominio.
func (r *Resolver) devSubdomain(host string) (isDev bool, sub string) {
	for _, dev := range r.DevHosts {
		if host == dev {
			return true, ""
		}
		if strings.HasSuffix(host, "."+dev) {
			labels := strings.Split(host, ".")
			if len(labels) > 1 && labels[0] != "www" && labels[0] != dev {
				return true, labels[0]
			}
			return true, ""
		}
	}
	return false, ""
}

// prodSubdomain extrae la primera etiqueta en producción; "" para dominio principal o www.
func (r *Resolver) prodSubdomain(host string) string {
	if r.BaseDomain != "" {
		base := strings.ToLower(r.BaseDomain)
		if host == base || host == "www."+base {
			return ""
		}
		if strings.HasSuffix(host, "."+base) {
			sub := strings.TrimSuffix(host, "."+base)
			if sub != "" && sub != "www" && !strings.Contains(sub, ".") {
				return sub
			}
		}
		return ""
	}

	// Sin dominio base configurado: sub.dominio.tld → sub; dominio.tld y www → sin tenant.
	labels := strings.Split(host, ".")
	if len(labels) >= 3 && labels[0] != "www" {
		return labels[0]
	}
	return ""
}

// stripPort separa el puerto sin romper literales IPv6 ([::1]:3000 → ::1).
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	// Sin puerto: un literal IPv6 puede venir aún entre corchetes.
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}
