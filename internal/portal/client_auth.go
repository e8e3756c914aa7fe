package portal

import (
	"context"
	"log"
	"sync"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/ipinfo"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// ClientAuth машина станів входу клієнта порталу. Завжди валідується
// віддалено; успішний вхід зберігає в сесії повний знімок запису
// клієнта. Знімок не оновлюється автоматично - Refresh перечитує
// запис щоб відобразити зміни зроблені адміном (напр. VM статус).
type ClientAuth struct {
	backend  *Backend
	store    *SessionStore
	ipLookup *ipinfo.Client

	mu        sync.Mutex
	state     AuthState
	session   *Session
	listeners []func()
	caches    []sessionCache
}

// NewClientAuth створює нову client auth машину
func NewClientAuth(backend *Backend, store *SessionStore, ipLookup *ipinfo.Client) *ClientAuth {
	return &ClientAuth{
		backend:  backend,
		store:    store,
		ipLookup: ipLookup,
		state:    StateLoggedOut,
	}
}

// Restore відновлює сесію зі сховища при старті
func (a *ClientAuth) Restore() {
	session, ok := a.store.Load(KindClient)
	if !ok || session.Client == nil {
		return
	}

	a.mu.Lock()
	a.state = StateLoggedIn
	a.session = session
	a.mu.Unlock()

	a.notify()
}

// Login валідує credentials клієнта. Сховище пише запис аудиту з
// публічною IP адресою; збій IP-lookup деградує до "unknown" і
// ніколи не блокує вхід.
func (a *ClientAuth) Login(ctx context.Context, idLuid, senha string, remember bool) error {
	a.setState(StateAuthenticating)

	ipAddress := ipinfo.UnknownIP
	if a.ipLookup != nil {
		ipAddress = a.ipLookup.PublicIP(ctx)
	}

	result, err := a.backend.AuthenticateClient(ctx, idLuid, senha, ipAddress)
	if err != nil {
		a.setState(StateLoggedOut)
		return err
	}

	session := &Session{
		Token:  result.Token,
		Client: result.Record,
	}

	persistence := SessionOnly
	if remember {
		persistence = Remembered
	}

	if err := a.store.Save(KindClient, session, persistence); err != nil {
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

	log.Printf("✅ Client session established: %s", result.Record.IDLuid)

	a.notify()
	return nil
}

// Refresh перечитує запис клієнта та пересохраняє сесію в тому
// самому tier'і. ErrNotFound означає що запис видалено поки клієнт
// був залогінений - сесія примусово чиститься.
func (a *ClientAuth) Refresh(ctx context.Context) error {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return ErrNotAuthenticated
	}

	record, err := a.backend.ClientMe(ctx, session.Token)
	if err != nil {
		if err == ErrNotFound {
			_ = a.Logout()
		}
		return err
	}

	updated := &Session{
		Token:  session.Token,
		Client: record,
	}

	if err := a.store.Save(KindClient, updated, session.Persistence); err != nil {
		return err
	}

	a.mu.Lock()
	a.session = updated
	a.mu.Unlock()

	a.notify()
	return nil
}

// Logout чистить сесію в обох tier'ах та скидає прив'язані кеші щоб
// наступний принципал не бачив транскрипт чи record попереднього
func (a *ClientAuth) Logout() error {
	a.mu.Lock()
	a.state = StateLoggedOut
	a.session = nil
	caches := a.caches
	a.mu.Unlock()

	for _, c := range caches {
		c.Reset()
	}

	err := a.store.Clear(KindClient)
	a.notify()
	return err
}

// Current повертає активну сесію та стан машини
func (a *ClientAuth) Current() (*Session, AuthState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session, a.state
}

// Token повертає токен активної сесії ("" якщо LoggedOut)
func (a *ClientAuth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// Record повертає знімок запису клієнта з сесії (nil якщо LoggedOut)
func (a *ClientAuth) Record() *models.ClientRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	return a.session.Client
}

// BindCache реєструє polling кеш для інвалідації при logout
func (a *ClientAuth) BindCache(c sessionCache) {
	a.mu.Lock()
	a.caches = append(a.caches, c)
	a.mu.Unlock()
}

// OnChange реєструє listener змін стану
func (a *ClientAuth) OnChange(fn func()) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *ClientAuth) setState(state AuthState) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
	a.notify()
}

func (a *ClientAuth) notify() {
	a.mu.Lock()
	listeners := a.listeners
	a.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
