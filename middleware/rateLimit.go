package middleware

import (
	"sync"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// visitorLimiter tracks one token bucket per client IP. Entries idle past
// the cleanup window are dropped so the map does not grow unbounded.
type visitorLimiter struct {
	limiters map[string]*visitorEntry
	mutex    sync.Mutex
	every    time.Duration
	burst    int
}

type visitorEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(every time.Duration, burst int) *visitorLimiter {
	vl := &visitorLimiter{
		limiters: make(map[string]*visitorEntry),
		every:    every,
		burst:    burst,
	}
	go vl.cleanup()
	return vl
}

func (vl *visitorLimiter) allow(ip string) bool {
	vl.mutex.Lock()
	defer vl.mutex.Unlock()

	entry, ok := vl.limiters[ip]
	if !ok {
		entry = &visitorEntry{limiter: rate.NewLimiter(rate.Every(vl.every), vl.burst)}
		vl.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (vl *visitorLimiter) cleanup() {
	for range time.Tick(5 * time.Minute) {
		vl.mutex.Lock()
		for ip, entry := range vl.limiters {
			if time.Since(entry.lastSeen) > 10*time.Minute {
				delete(vl.limiters, ip)
			}
		}
		vl.mutex.Unlock()
	}
}

// RateLimit returns a per-IP limiter for unauthenticated routes. Each client
// gets a bucket of `burst` requests refilling one token per `every`; over
// budget requests are answered with 429 without reaching the handler. The
// login and OTP endpoints sit behind this so a single host cannot hammer
// credential checks or trigger OTP mail fan-out.
func RateLimit(every time.Duration, burst int) fiber.Handler {
	visitors := newVisitorLimiter(every, burst)

	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !visitors.allow(ip) {
			config.Logger.Warn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests",
				"error":   "Too many attempts from this address. Please wait and try again.",
			})
		}
		return c.Next()
	}
}
