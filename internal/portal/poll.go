package portal

import (
	"context"
	"log"
	"sync"
	"time"
)

// Query - кешований polling запит до віддаленого сховища. Кожна
// сутність опитується зі своїм фіксованим інтервалом; UI стає
// pseudo-real-time без push. Мутації не патчать кеш оптимістично,
// а інвалідують запит через Invalidate, форсуючи негайний refetch.
//
// Fetch у польоті не блокує наступний тік: повільна рання відповідь
// може перезаписати новішу (last-write-wins). Це прийнятна
// неконсистентність при коротких інтервалах опитування.
type Query[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)

	mu      sync.Mutex
	value   T
	loaded  bool
	lastErr error
	gen     uint64
	subs    []chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	kick   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewQuery створює polling запит. Fetch не викликається до Start.
func NewQuery[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error)) *Query[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Query[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		ctx:      ctx,
		cancel:   cancel,
		kick:     make(chan struct{}, 1),
	}
}

// Start запускає polling loop: негайний fetch, далі за інтервалом
func (q *Query[T]) Start() {
	q.startOnce.Do(func() {
		go q.loop()
	})
}

func (q *Query[T]) loop() {
	q.refetch()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.refetch()
		case <-q.kick:
			q.refetch()
		}
	}
}

// refetch запускає fetch у власній goroutine щоб fetch у польоті
// не блокував наступний тік
func (q *Query[T]) refetch() {
	q.mu.Lock()
	gen := q.gen
	q.mu.Unlock()

	go func() {
		value, err := q.fetch(q.ctx)

		q.mu.Lock()
		if gen != q.gen {
			// Кеш скинуто поки fetch був у польоті: відповідь
			// належить попередній сесії, відкидаємо
			q.mu.Unlock()
			return
		}
		if err != nil {
			q.lastErr = err
			q.mu.Unlock()
			if q.ctx.Err() == nil {
				log.Printf("⚠️ Poll %s failed: %v", q.name, err)
			}
			return
		}
		q.value = value
		q.loaded = true
		q.lastErr = nil
		subs := q.subs
		q.mu.Unlock()

		for _, ch := range subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
}

// Get повертає останнє закешоване значення. false поки перший
// fetch ще не завершився успішно.
func (q *Query[T]) Get() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.value, q.loaded
}

// Err повертає помилку останнього fetch (nil якщо успішний)
func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Invalidate форсує негайний refetch замість очікування тіка.
// Викликається мутаціями після успішного запису.
func (q *Query[T]) Invalidate() {
	select {
	case q.kick <- struct{}{}:
	default:
	}
}

// Reset скидає кеш у стан "ще не завантажено". Викликається при
// logout: дані попереднього принципала не мають бути видимі через
// Get до першого успішного fetch наступного.
func (q *Query[T]) Reset() {
	var zero T
	q.mu.Lock()
	q.value = zero
	q.loaded = false
	q.lastErr = nil
	q.gen++
	q.mu.Unlock()
}

// Subscribe повертає канал що сигналить після кожного оновлення
// кешу. Повільний підписник пропускає сигнали, не блокує polling.
func (q *Query[T]) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	q.mu.Lock()
	q.subs = append(q.subs, ch)
	q.mu.Unlock()
	return ch
}

// Stop зупиняє polling loop (teardown при закритті view)
func (q *Query[T]) Stop() {
	q.stopOnce.Do(q.cancel)
}
