package portal

import "sync"

// sessionSource будь-яка auth машина що має поточну сесію.
// AdminAuth та ClientAuth обидві задовольняють інтерфейс.
type sessionSource interface {
	Current() (*Session, AuthState)
	OnChange(func())
}

// RouteGuard чистa derived-state перевірка: захищений view доступний
// лише при активній сесії відповідного принципала. Перевірка
// переобчислюється при кожній зміні стану сесії (напр. після logout),
// не один раз при монтуванні.
type RouteGuard struct {
	source sessionSource

	mu   sync.Mutex
	subs []chan bool
	last bool
}

// NewRouteGuard створює guard підписаний на зміни auth машини
func NewRouteGuard(source sessionSource) *RouteGuard {
	g := &RouteGuard{source: source}
	g.last = g.Allowed()
	source.OnChange(g.reevaluate)
	return g
}

// Allowed перевіряє чи присутня активна сесія
func (g *RouteGuard) Allowed() bool {
	session, state := g.source.Current()
	return state == StateLoggedIn && session != nil
}

// Subscribe повертає канал що отримує новий вердикт при кожній
// зміні стану сесії. Повільний підписник пропускає проміжні
// вердикти, не блокує auth машину.
func (g *RouteGuard) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	g.mu.Lock()
	g.subs = append(g.subs, ch)
	g.mu.Unlock()
	return ch
}

func (g *RouteGuard) reevaluate() {
	allowed := g.Allowed()

	g.mu.Lock()
	changed := allowed != g.last
	g.last = allowed
	subs := g.subs
	g.mu.Unlock()

	if !changed {
		return
	}

	for _, ch := range subs {
		select {
		case ch <- allowed:
		default:
		}
	}
}
