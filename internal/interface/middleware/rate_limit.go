package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/rockae-api/pkg/response"
)

const msgThrottled = "Request was throttled. Expected available in %d seconds."

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyByIP limits by client address.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ClientIP(c)
	}
}

// KeyByIPAndPath limits by client address and route.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + routeOf(c) + ":ip:" + ClientIP(c)
	}
}

// KeyByUserID limits authenticated callers by user id and anonymous ones by address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ClientIP(c)
		}
		return "rl:user:" + uid
	}
}

// INCR and set the window on the first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit allows max requests per window and key. Counters live in Redis
// when rdb is set; without Redis, or while it is failing, a token bucket per
// key in this process takes over.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	local := newLocalLimiter(max, window)

	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		key := keyFn(c)
		var (
			remaining int
			reset     time.Duration
			ok        bool
			counted   bool
		)
		if rdb != nil {
			res, err := incrExpireScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
			if err == nil && len(res) == 2 {
				count := int(res[0])
				remaining, ok, counted = max-count, count <= max, true
				if res[1] > 0 {
					reset = time.Duration(res[1]) * time.Millisecond
				}
			}
		}
		if !counted {
			remaining, reset, ok = local.take(key)
		}

		resetSec := int((reset + time.Second - 1) / time.Second)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !ok {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Error(fmt.Sprintf(msgThrottled, resetSec), nil))
			return
		}
		c.Next()
	}
}

const localSweepSize = 10000

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// localLimiter keeps one token bucket per key, refilled at max/window with a
// burst of max.
type localLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	every   rate.Limit
	buckets map[string]*bucket
}

func newLocalLimiter(max int, window time.Duration) *localLimiter {
	return &localLimiter{
		max:     max,
		window:  window,
		every:   rate.Every(window / time.Duration(max)),
		buckets: make(map[string]*bucket),
	}
}

func (l *localLimiter) take(key string) (remaining int, reset time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.buckets) >= localSweepSize {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.window {
				delete(l.buckets, k)
			}
		}
	}
	b, found := l.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(l.every, l.max)}
		l.buckets[key] = b
	}
	b.seen = now

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return 0, l.window, false
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return 0, d, false
	}
	return int(b.lim.TokensAt(now)), 0, true
}
