// Package localstore implementa el almacenamiento durable local del portal:
// los tres slots que la SPA guardaba en localStorage (token, originalToken,
// currentTenant). Escrituras atómicas (tmp + rename) para que una lectura
// inmediata nunca vea estado parcial.
package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
)

// Nombres de los slots en disco.
const (
	slotToken         = "token"
	slotOriginalToken = "originalToken"
	slotTenant        = "currentTenant.json"
)

// FileStore slots respaldados en un directorio local.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore crea el directorio si no existe y devuelve el store.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("localstore: directorio vacío")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) read(slot string) string {
	data, err := os.ReadFile(filepath.Join(s.dir, slot))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// write escribe de forma atómica; valor vacío elimina el slot.
func (s *FileStore) write(slot, value string) error {
	path := filepath.Join(s.dir, slot)
	if value == "" {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Token devuelve el token primario ("" si no hay sesión).
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(slotToken)
}

// SetToken guarda el token primario; vacío lo elimina.
func (s *FileStore) SetToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(slotToken, tok)
}

// OriginalToken slot secundario usado solo durante impersonación.
func (s *FileStore) OriginalToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(slotOriginalToken)
}

// SetOriginalToken guarda el token original; vacío lo elimina.
func (s *FileStore) SetOriginalToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(slotOriginalToken, tok)
}

// ClearTokens limpia ambos slots de token de forma consistente para no resucitar
// una identidad vieja (logout, 401, fin de impersonación sin token original).
func (s *FileStore) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(slotToken, ""); err != nil {
		return err
	}
	return s.write(slotOriginalToken, "")
}

// ReadTenant lee el último tenant conocido (nil si no hay o no parsea).
func (s *FileStore) ReadTenant() (*entity.Tenant, error) {
	s.mu.Lock()
	raw := s.read(slotTenant)
	s.mu.Unlock()
	if raw == "" {
		return nil, nil
	}
	var t entity.Tenant
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// WriteTenant sobrescribe el slot con el registro recién obtenido.
func (s *FileStore) WriteTenant(t *entity.Tenant) error {
	if t == nil {
		return s.ClearTenant()
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(slotTenant, string(data))
}

// ClearTenant elimina el slot del tenant cacheado.
func (s *FileStore) ClearTenant() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(slotTenant, "")
}

// MemStore implementación en memoria para tests y para STATE_DIR vacío.
type MemStore struct {
	mu       sync.Mutex
	token    string
	original string
	tenant   *entity.Tenant
}

// NewMemStore store vacío en memoria.
func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemStore) SetToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	return nil
}

func (s *MemStore) OriginalToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

func (s *MemStore) SetOriginalToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = tok
	return nil
}

func (s *MemStore) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.original = ""
	return nil
}

func (s *MemStore) ReadTenant() (*entity.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenant, nil
}

func (s *MemStore) WriteTenant(t *entity.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant = t
	return nil
}

func (s *MemStore) ClearTenant() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant = nil
	return nil
}
