package middleware

import (
	"net/http"

	"github.com/itchan-dev/textboard/internal/middleware/ratelimiter"
	"github.com/itchan-dev/textboard/internal/utils"
)

func RateLimit(rl *ratelimiter.IdentityRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits each client address separately.
func RateLimitByIP(rl *ratelimiter.IdentityRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, utils.GetIP)
}
