package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig describes a fixed window limit, e.g. 10 requests per
// minute per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
}

// Counter state lives in Redis so the limit holds across instances. The
// script keeps INCR and the initial expiry atomic.
var fixedWindowScript = redis.NewScript(`
	local hits = redis.call('INCR', KEYS[1])
	if hits == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return { hits, redis.call('PTTL', KEYS[1]) }
`)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter throttles by client IP using a Redis fixed-window
// counter. When Redis is unreachable it degrades to a per-process
// in-memory limiter instead of failing open completely.
func NewRateLimiter(cfg RateLimitConfig, rdb *redis.Client) gin.HandlerFunc {
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			for ip, v := range visitors {
				if time.Since(v.lastSeen) > 3*cfg.Window {
					delete(visitors, ip)
				}
			}
			mu.Unlock()
		}
	}()

	allowLocal := func(ip string) bool {
		mu.Lock()
		defer mu.Unlock()

		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(rate.Every(cfg.Window/time.Duration(cfg.Requests)), cfg.Requests)}
			visitors[ip] = v
		}
		v.lastSeen = time.Now()

		return v.limiter.Allow()
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		if rdb == nil {
			if !allowLocal(ip) {
				tooManyRequests(c, 0)
				return
			}
			c.Next()
			return
		}

		key := cfg.Prefix + ":ip:" + ip

		vals, err := fixedWindowScript.Run(c.Request.Context(), rdb, []string{key}, cfg.Window.Milliseconds()).Int64Slice()
		if err != nil || len(vals) != 2 {
			if !allowLocal(ip) {
				tooManyRequests(c, 0)
				return
			}
			c.Next()
			return
		}

		if vals[0] > int64(cfg.Requests) {
			tooManyRequests(c, vals[1])
			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context, retryAfterMs int64) {
	if retryAfterMs > 0 {
		secs := (retryAfterMs + 999) / 1000
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "Too many requests",
	})
}
