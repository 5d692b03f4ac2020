package middleware

import (
	"net/http"
	"sync"
	"time"

	"comerciopos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Sliding-window counters per client IP. Two independent maps: a tight one for
// the auth endpoints (login, MFA) and a wide one for the rest of the API, sized
// for a checkout lane firing one request per scanned barcode.

const (
	// maxIntentosAuth bounds password/OTP guessing per IP per minute.
	maxIntentosAuth = 20
	ventanaAuth     = time.Minute

	purgeInterval = 5 * time.Minute
)

type ventana struct {
	mu    sync.Mutex
	count int
	fin   time.Time
}

// permitir counts one hit and reports whether it stays under limit. The window
// resets lazily on the first hit after expiry.
func (v *ventana) permitir(limit int, dur time.Duration) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := time.Now()
	if now.After(v.fin) {
		v.count = 0
		v.fin = now.Add(dur)
	}
	v.count++
	return v.count <= limit
}

type ventanasPorIP struct {
	mu  sync.Mutex
	ips map[string]*ventana
}

func (m *ventanasPorIP) get(ip string) *ventana {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.ips[ip]
	if !ok {
		v = &ventana{}
		m.ips[ip] = v
	}
	return v
}

// purga drops expired windows so IPs that never return don't accumulate.
func (m *ventanasPorIP) purga(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for ip, v := range m.ips {
		v.mu.Lock()
		if now.After(v.fin) {
			delete(m.ips, ip)
			purged++
		}
		v.mu.Unlock()
	}
	return purged
}

var (
	authVentanas = &ventanasPorIP{ips: make(map[string]*ventana)}
	apiVentanas  = &ventanasPorIP{ips: make(map[string]*ventana)}
)

// LoginRateLimiter guards the credential endpoints: login, MFA enrollment and
// OTP verification all share the same per-IP budget.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authVentanas.get(c.ClientIP()).permitir(maxIntentosAuth, ventanaAuth) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Demasiados intentos de autenticación. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general API limiter. The router mounts it wide (per-IP
// per-minute) so a runaway client cannot starve the checkout lanes.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := apiVentanas.get(c.ClientIP())
		if !v.permitir(limit, window) {
			v.mu.Lock()
			fin := v.fin
			v.mu.Unlock()
			c.Header("Retry-After", fin.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purgedAuth := authVentanas.purga(now)
		purgedAPI := apiVentanas.purga(now)
		if purgedAuth > 0 || purgedAPI > 0 {
			log.Debug().
				Int("auth_purged", purgedAuth).
				Int("api_purged", purgedAPI).
				Msg("rate limiter: expired windows purged")
		}
	}
}
