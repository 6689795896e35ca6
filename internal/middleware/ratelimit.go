package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Limiter cache sizing. Idle clients fall out after limiterTTL.
const (
	limiterCacheSize = 1024
	limiterTTL       = 10 * time.Minute
)

// NewRateLimiter returns a middleware that allows each client address a burst
// of maxBurst requests, refilled at one request per interval. Requests over
// the limit get 429 with a Retry-After header.
//
// The client key is r.RemoteAddr without its port; wire it after
// chimiddleware.RealIP when running behind a proxy.
func NewRateLimiter(interval time.Duration, maxBurst int) func(http.Handler) http.Handler {
	cache := expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterTTL)

	// mu makes lookup-then-insert atomic so concurrent first requests from
	// one client share a single bucket.
	var mu sync.Mutex
	getLimiter := func(addr string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		limiter, ok := cache.Get(addr)
		if !ok {
			limiter = rate.NewLimiter(rate.Every(interval), maxBurst)
			cache.Add(addr, limiter)
		}
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := getLimiter(clientAddr(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxBurst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Max(0, math.Floor(limiter.Tokens())))))
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
