package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/ratelimit"
)

// ClientIP returns the request's client address without the port. Behind
// chi's RealIP middleware RemoteAddr already holds the forwarded address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ErrorWriter renders an application error as an HTTP response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RateLimit rejects requests from a client IP that exceeds limiter. The
// Retry-After hint is set before reject renders an apperror.ErrRateLimited.
func RateLimit(limiter *ratelimit.KeyedRateLimiter, reject ErrorWriter) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.RetryAfter().Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				reject(w, r, apperror.RateLimited("too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
