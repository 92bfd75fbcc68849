package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

type rateErr struct {
	Error string `json:"error"`
}

// RateLimitMiddleware rejects requests with 429 once l is exhausted. A nil
// limiter disables limiting.
func RateLimitMiddleware(l *rate.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(l.Limit())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(rateErr{Error: "too many requests"})
		})
	}
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 || limit == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(limit))))
}

// NewLimiter returns nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
