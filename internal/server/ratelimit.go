package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

// rateLimiter ограничивает частоту запросов по IP. Используется на
// эндпоинтах аутентификации против перебора паролей.
type rateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{visitors: make(map[string]*rate.Limiter)}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.visitors[ip]; exists {
		return limiter
	}

	// 10 запросов в минуту, всплеск до 5
	limiter := rate.NewLimiter(rate.Every(6*time.Second), 5)
	rl.visitors[ip] = limiter
	return limiter
}

// cleanup периодически сбрасывает накопленные лимитеры
func (rl *rateLimiter) cleanup() {
	for range time.Tick(10 * time.Minute) {
		rl.mu.Lock()
		rl.visitors = make(map[string]*rate.Limiter)
		rl.mu.Unlock()
	}
}

// limit - middleware, отклоняющее запросы сверх лимита
func (rl *rateLimiter) limit(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.getLimiter(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next(w, r, ps)
	}
}
