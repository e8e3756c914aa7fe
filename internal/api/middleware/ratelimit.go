package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter обмежує кількість запитів з однієї IP адреси.
// Спроби логіну не throttляться окремо (сумісність з оригінальною
// поведінкою панелі), діє лише загальний per-IP ліміт.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
}

// visitor представляє одного відвідувача
type visitor struct {
	limiter  *tokenBucket
	lastSeen time.Time
}

// tokenBucket реалізація token bucket algorithm
type tokenBucket struct {
	tokens    int
	maxTokens int
	refillAt  time.Time
	mu        sync.Mutex
}

// NewRateLimiter створює новий rate limiter
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     requestsPerMinute,
		window:   time.Minute,
	}

	go rl.cleanupVisitors()

	return rl
}

// RateLimitMiddleware middleware для rate limiting
func (rl *RateLimiter) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := GetIP(r)

		if !rl.allow(ip) {
			respondRateLimited(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow перевіряє чи дозволений запит
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{
			limiter: &tokenBucket{
				tokens:    rl.rate,
				maxTokens: rl.rate,
				refillAt:  time.Now().Add(rl.window),
			},
		}
		rl.visitors[ip] = v
	}

	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.take(rl.window)
}

// take намагається взяти токен
func (tb *tokenBucket) take(window time.Duration) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	if now.After(tb.refillAt) {
		tb.tokens = tb.maxTokens
		tb.refillAt = now.Add(window)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// cleanupVisitors очищає visitors які давно не робили запитів
func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// GetIP отримує IP адресу з запиту
func GetIP(r *http.Request) string {
	// X-Forwarded-For якщо за proxy; беремо першу адресу в ланцюжку
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	return r.RemoteAddr
}

// respondRateLimited відправляє 429 помилку
func respondRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   "Rate limit exceeded",
		"message": "Too many requests. Please try again later.",
	})
}
