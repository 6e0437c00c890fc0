package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/web/locale"
	"github.com/metabo-ui/metabo-ui/web/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(c *gin.Context) string
}

// DefaultRateLimitConfig returns the limits applied to login attempts.
// Requests are keyed on gin's ClientIP, which only honors forwarding
// headers sent by the engine's trusted proxies.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

const maxTrackedKeys = 10000

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	maxKeys  int
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		if len(s.visitors) >= s.maxKeys {
			s.evict(now)
		}
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// evict drops visitors idle for more than a minute; their buckets are full
// again by then. When every visitor is recent the least recently seen one
// is dropped, so the map never grows past maxKeys.
func (s *limiterSet) evict(now time.Time) {
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > time.Minute {
			delete(s.visitors, key)
		}
	}
	for len(s.visitors) > 0 && len(s.visitors) >= s.maxKeys {
		oldestKey, oldest := "", now
		for key, v := range s.visitors {
			if oldestKey == "" || v.lastSeen.Before(oldest) {
				oldestKey, oldest = key, v.lastSeen
			}
		}
		delete(s.visitors, oldestKey)
	}
}

// RateLimitMiddleware limits requests per key with a token bucket. A
// rejected request gets a flash message and is sent back to the page it
// came from.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	set := &limiterSet{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(config.RequestsPerMinute) / 60),
		burst:    config.BurstSize,
		maxKeys:  maxTrackedKeys,
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if set.get(key, time.Now()).Allow() {
			c.Next()
			return
		}

		logger.Warningf("rate limit exceeded for %s on %s", key, c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(60/max(config.RequestsPerMinute, 1)+1))
		session.AddFlash(c, session.FlashDanger, locale.I18nWeb(c, "flash.tooManyRequests"))
		c.Redirect(http.StatusFound, c.Request.URL.Path)
		c.Abort()
	}
}
