package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/skufinder/skufinder/internal/session"
)

// RateLimitConfig holds configuration for the login rate limiter.
type RateLimitConfig struct {
	Logger *slog.Logger
	// Counter backs the fixed window; both session stores implement it.
	Counter session.Counter
	// Limit is the number of attempts allowed per window. Zero disables
	// the limiter.
	Limit  int
	Window time.Duration
}

// LoginRateLimit returns middleware that rate limits login attempts per
// client IP with a fixed window. The limiter fails open: a counter
// backend error never locks users out.
func LoginRateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Limit <= 0 || cfg.Counter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			count, err := cfg.Counter.IncrWindow(r.Context(), ip, cfg.Window)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("ip", ip),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(cfg.Limit) {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "login"),
					slog.String("ip", ip),
					slog.Int64("count", count),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				retryAfter := int(cfg.Window.Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				msg := fmt.Sprintf(`{"success":false,"error":"Too many login attempts. Retry after %d seconds.","code":"RATE_LIMITED"}`, retryAfter)
				_, _ = w.Write([]byte(msg))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys the window on RemoteAddr, which the RealIP middleware
// has already rewritten for proxied requests. Direct connections carry
// an ip:port pair; the port must not split one client across windows.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
