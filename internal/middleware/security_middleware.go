// Package middleware provides HTTP middleware components.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/utils"
)

// rateWindow tracks request timestamps for one client within the window.
type rateWindow struct {
	timestamps []time.Time
}

// RateLimiter is a sliding-window request limiter keyed by client IP and
// endpoint category. Login endpoints get a tighter budget than the rest of
// the API, so brute-force attempts are throttled without slowing normal use.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateWindow
	limit   int
	window  time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
	}

	// Periodically drop idle clients so the map does not grow unbounded
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-window)
			rl.mu.Lock()
			for key, w := range rl.clients {
				if len(w.timestamps) == 0 || w.timestamps[len(w.timestamps)-1].Before(cutoff) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}()

	return rl
}

// Allow records one request for the key and reports whether it is within
// the configured budget.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.clients[key]
	if !exists {
		w = &rateWindow{}
		rl.clients[key] = w
	}

	// Drop timestamps that fell out of the window
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept

	if len(w.timestamps) >= rl.limit {
		return false
	}

	w.timestamps = append(w.timestamps, now)
	return true
}

// RateLimit is middleware that limits the rate of requests from clients.
//
// Parameters:
//   - limiter: The limiter holding per-client request budgets
//   - category: The endpoint category the budget applies to (e.g., "auth", "api")
//
// Returns:
//   - A middleware function that can be used with an HTTP handler
func RateLimit(limiter *RateLimiter, category string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the client IP address, handling proxies
			clientIP := getClientIP(r)

			// Skip rate limiting for health checks, static assets, etc.
			if isExemptedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(category + ":" + clientIP) {
				log.Warn().
					Str("client_ip", clientIP).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("category", category).
					Msg("Rate limit exceeded")

				// Return 429 Too Many Requests
				w.Header().Set("Retry-After", "60")
				utils.Error(w, http.StatusTooManyRequests, "too_many_requests", "Rate limit exceeded. Please try again later.", nil)
				return
			}

			// Request is allowed, continue to next handler
			next.ServeHTTP(w, r)
		})
	}
}

// SuspiciousRequestBlock is middleware that rejects requests matching known
// attack patterns before they reach any handler.
func SuspiciousRequestBlock() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSuspiciousRequest(r) {
				log.Warn().
					Str("client_ip", getClientIP(r)).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("Blocked suspicious request")

				utils.Forbidden(w, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP address from the request,
// taking into account common proxy headers.
func getClientIP(r *http.Request) string {
	// Check for X-Forwarded-For header
	xForwardedFor := r.Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		// Use the leftmost IP in the list (client IP)
		ips := strings.Split(xForwardedFor, ",")
		ip := strings.TrimSpace(ips[0])
		return ip
	}

	// Check for X-Real-IP header
	xRealIP := r.Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If there's no port in the address, use it as is
		return r.RemoteAddr
	}
	return ip
}

// isExemptedPath returns true if the path should be exempted from
// rate limiting (e.g., health checks, static assets).
func isExemptedPath(path string) bool {
	exemptPrefixes := []string{
		"/health",
		"/version",
		"/static/",
		"/public/",
		"/favicon.ico",
	}

	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// isSuspiciousRequest checks for patterns that might indicate malicious activity.
// This includes SQL injection attempts, path traversal, etc.
func isSuspiciousRequest(r *http.Request) bool {
	// Check path for suspicious patterns
	path := r.URL.Path
	suspiciousPathPatterns := []string{
		"../",
		"/..",
		"/.git",
		"/wp-admin",
		"/wp-login",
		"/phpmyadmin",
		"/admin.php",
	}

	for _, pattern := range suspiciousPathPatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}

	// Check query string for suspicious patterns
	query := r.URL.RawQuery
	suspiciousQueryPatterns := []string{
		"exec(",
		"eval(",
		"SELECT",
		"UNION",
		"INSERT",
		"DELETE",
		"UPDATE",
		"DROP",
		"1=1",
		"script",
		"alert(",
		"onload=",
		"onerror=",
	}

	for _, pattern := range suspiciousQueryPatterns {
		if strings.Contains(strings.ToUpper(query), strings.ToUpper(pattern)) {
			return true
		}
	}

	return false
}
