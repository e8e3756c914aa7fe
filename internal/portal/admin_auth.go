package portal

import (
	"context"
	"log"
	"sync"
)

// AuthState стан аутентифікаційної машини
type AuthState int

const (
	// StateLoggedOut принципал не аутентифікований
	StateLoggedOut AuthState = iota

	// StateAuthenticating credentials відправлені, відповідь очікується
	StateAuthenticating

	// StateLoggedIn активна сесія встановлена
	StateLoggedIn
)

// String повертає людиночитану назву стану
func (s AuthState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// sessionCache кеш polling запитів прив'язаний до сесії.
// Logout скидає його в "не завантажено" щоб наступний принципал не
// бачив stale дані попереднього.
type sessionCache interface {
	Invalidate()
	Reset()
}

// AdminAuth машина станів входу співробітника:
// LoggedOut -> Authenticating -> LoggedIn. Конструюється явно і
// інжектиться в composition root, ніколи не ambient singleton -
// обидві auth машини (admin і client) незалежні та тестовані окремо.
type AdminAuth struct {
	backend *Backend
	store   *SessionStore

	mu        sync.Mutex
	state     AuthState
	session   *Session
	listeners []func()
	caches    []sessionCache
}

// NewAdminAuth створює нову admin auth машину
func NewAdminAuth(backend *Backend, store *SessionStore) *AdminAuth {
	return &AdminAuth{
		backend: backend,
		store:   store,
		state:   StateLoggedOut,
	}
}

// Restore відновлює сесію зі сховища при старті. Відсутність або
// пошкодження сесії означає LoggedOut, ніколи не помилку.
func (a *AdminAuth) Restore() {
	session, ok := a.store.Load(KindAdminStaff)
	if !ok || session.Employee == nil {
		return
	}

	a.mu.Lock()
	a.state = StateLoggedIn
	a.session = session
	a.mu.Unlock()

	a.notify()
}

// Login валідує credentials співробітника та встановлює сесію.
// Невдача повертає машину в LoggedOut без зміни сесії. Throttling
// повторних невдалих спроб відсутній.
func (a *AdminAuth) Login(ctx context.Context, employeeID, password string, remember bool) error {
	a.setState(StateAuthenticating)

	result, err := a.backend.AuthenticateEmployee(ctx, employeeID, password)
	if err != nil {
		a.setState(StateLoggedOut)
		return err
	}

	session := &Session{
		Token:    result.Token,
		Employee: &result.Employee,
	}

	persistence := SessionOnly
	if remember {
		persistence = Remembered
	}

	if err := a.store.Save(KindAdminStaff, session, persistence); err != nil {
		a.setState(StateLoggedOut)
		return err
	}

	a.mu.Lock()
	a.state = StateLoggedIn
	a.session = session
	caches := a.caches
	a.mu.Unlock()

	// Негайний refetch під новим токеном замість очікування тіка
	for _, c := range caches {
		c.Invalidate()
	}

	log.Printf("✅ Admin session established: %s (%s)", result.Employee.EmployeeID, result.Employee.Role)

	a.notify()
	return nil
}

// Logout чистить сесію в обох tier'ах та скидає прив'язані polling
// кеші: закешовані дані попереднього принципала стають недоступними
// одразу, не після наступного успішного fetch
func (a *AdminAuth) Logout() error {
	a.mu.Lock()
	a.state = StateLoggedOut
	a.session = nil
	caches := a.caches
	a.mu.Unlock()

	for _, c := range caches {
		c.Reset()
	}

	err := a.store.Clear(KindAdminStaff)
	a.notify()
	return err
}

// Current повертає активну сесію та стан машини
func (a *AdminAuth) Current() (*Session, AuthState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session, a.state
}

// Token повертає токен активної сесії ("" якщо LoggedOut)
func (a *AdminAuth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// IsMaster перевіряє чи має поточна сесія elevated права.
// Non-master співробітники бачать ті самі view але мутації приховані.
func (a *AdminAuth) IsMaster() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil && a.session.Employee != nil && a.session.Employee.IsMaster()
}

// BindCache реєструє polling кеш для інвалідації при logout
func (a *AdminAuth) BindCache(c sessionCache) {
	a.mu.Lock()
	a.caches = append(a.caches, c)
	a.mu.Unlock()
}

// OnChange реєструє listener змін стану (використовується route guard'ом)
func (a *AdminAuth) OnChange(fn func()) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *AdminAuth) setState(state AuthState) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
	a.notify()
}

func (a *AdminAuth) notify() {
	a.mu.Lock()
	listeners := a.listeners
	a.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
