package portal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// PrincipalKind тип принципала сесії
type PrincipalKind string

const (
	// KindAdminStaff сесія співробітника адмін панелі
	KindAdminStaff PrincipalKind = "admin_staff"

	// KindClient сесія клієнта порталу
	KindClient PrincipalKind = "client"
)

// Persistence рівень збереження сесії
type Persistence int

const (
	// SessionOnly сесія живе лише в пам'яті процесу
	SessionOnly Persistence = iota

	// Remembered сесія переживає перезапуск ("remember me")
	Remembered
)

// EmployeeProfile знімок профілю співробітника в сесії
type EmployeeProfile struct {
	EmployeeID string `json:"employee_id"`
	Nome       string `json:"nome"`
	Role       string `json:"role"`
}

// IsMaster перевіряє чи має співробітник elevated права
func (p *EmployeeProfile) IsMaster() bool {
	return p.Role == string(models.EmployeeRoleMaster)
}

// Session серіалізований стан аутентифікації одного принципала.
// Для клієнта зберігається повний знімок запису, включно з VPS
// credentials - портал показує їх на дешборді.
type Session struct {
	Kind        PrincipalKind        `json:"kind"`
	Token       string               `json:"token"`
	Employee    *EmployeeProfile     `json:"employee,omitempty"`
	Client      *models.ClientRecord `json:"client,omitempty"`
	Persistence Persistence          `json:"persistence"`
	SavedAt     time.Time            `json:"saved_at"`
}

// SessionStore зберігає сесії у двох незалежних tier'ах:
// remembered (JSON файл на диску) та session-only (пам'ять процесу).
// Save спочатку чистить обидва tier'и для даного kind, щоб stale
// копія не воскресла після logout. Обидва kind незалежні і можуть
// співіснувати.
type SessionStore struct {
	mu     sync.Mutex
	dir    string
	memory map[PrincipalKind]*Session
}

// NewSessionStore створює новий SessionStore. dir - тека для
// remembered сесій; створюється за потреби.
func NewSessionStore(dir string) (*SessionStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "luid-portal")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	return &SessionStore{
		dir:    dir,
		memory: make(map[PrincipalKind]*Session),
	}, nil
}

// Save серіалізує сесію у вибраний tier, попередньо прибравши
// будь-який запис цього kind з обох tier'ів.
func (s *SessionStore) Save(kind PrincipalKind, session *Session, persistence Persistence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Спочатку чистимо обидва tier'и
	delete(s.memory, kind)
	if err := s.removeFile(kind); err != nil {
		return err
	}

	session.Kind = kind
	session.Persistence = persistence
	session.SavedAt = time.Now()

	if persistence == SessionOnly {
		s.memory[kind] = session
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := os.WriteFile(s.filePath(kind), data, 0o600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	return nil
}

// Load читає сесію: спочатку remembered tier, потім session-only.
// Пошкоджений серіалізований запис тихо видаляється і трактується
// як відсутність сесії - ніколи не повертається як помилка.
func (s *SessionStore) Load(kind PrincipalKind) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath(kind))
	if err == nil {
		var session Session
		if jsonErr := json.Unmarshal(data, &session); jsonErr != nil || session.Token == "" {
			// Corrupt entry - discard and fall through
			_ = s.removeFile(kind)
		} else {
			return &session, true
		}
	}

	if session, ok := s.memory[kind]; ok {
		return session, true
	}

	return nil, false
}

// Clear видаляє сесію даного kind з обох tier'ів
func (s *SessionStore) Clear(kind PrincipalKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memory, kind)
	return s.removeFile(kind)
}

func (s *SessionStore) filePath(kind PrincipalKind) string {
	return filepath.Join(s.dir, fmt.Sprintf("session_%s.json", kind))
}

func (s *SessionStore) removeFile(kind PrincipalKind) error {
	err := os.Remove(s.filePath(kind))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
