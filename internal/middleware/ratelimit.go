// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

// RateLimitConfig picks the bucket for a request with KeyFunc. Callers
// whose role appears in PerRole are held to that quota instead of Limit,
// in a bucket of their own.
type RateLimitConfig struct {
	Limit    redis_rate.Limit
	PerRole  map[role.Role]redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

type RateLimiter struct {
	redis    *redis_rate.Limiter
	fallback *localLimiter
	cfg      RateLimitConfig
}

// NewRateLimiter limits through Redis and falls back to an in-process
// token bucket when Redis errors or rdb is nil.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByClient
	}

	rl := &RateLimiter{
		fallback: newLocalLimiter(),
		cfg:      cfg,
	}
	if rdb != nil {
		rl.redis = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, limit := rl.bucket(r)

		res, err := rl.allow(r.Context(), key, limit)
		if err != nil {
			if rl.cfg.FailOpen {
				slog.Warn("rate limiter unavailable, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"SERVICE_UNAVAILABLE",
			))
			return
		}

		writeQuotaHeaders(w, res, limit)
		if res.Allowed == 0 {
			writeRateLimited(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) bucket(r *http.Request) (string, redis_rate.Limit) {
	key := rl.cfg.KeyFunc(r)

	actor := GetUserRole(r.Context())
	if limit, ok := rl.cfg.PerRole[actor]; ok {
		return key + ":role:" + string(actor), limit
	}
	return key, rl.cfg.Limit
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	if rl.redis != nil {
		res, err := rl.redis.Allow(ctx, key, limit)
		if err == nil {
			return res, nil
		}
		slog.Debug("redis rate limit failed, using local bucket", "error", err)
	}
	return rl.fallback.allow(key, limit), nil
}

// RoleLimits turns per-role request counts into quotas sharing window and
// burst. Unknown role names are skipped.
func RoleLimits(counts map[string]int, window time.Duration, burst int) map[role.Role]redis_rate.Limit {
	limits := make(map[role.Role]redis_rate.Limit, len(counts))
	for name, n := range counts {
		r, err := role.Parse(name)
		if err != nil {
			continue
		}
		limits[r] = redis_rate.Limit{Rate: n, Burst: min(burst, n), Period: window}
	}
	return limits
}

// KeyByClient keys on the caller's address, trusting the last hop the
// proxy appended.
func KeyByClient(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return "ratelimit:ip:" + strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ratelimit:ip:" + ip
}

// KeyByActor keys on the signed-in member within their business, or on
// the client address for anonymous requests.
func KeyByActor(r *http.Request) string {
	actor := GetActor(r.Context())
	switch {
	case actor.UserID == "":
		return KeyByClient(r)
	case actor.BusinessID == "":
		return "ratelimit:user:" + actor.UserID
	}
	return "ratelimit:biz:" + actor.BusinessID + ":user:" + actor.UserID
}

// KeyByBusiness shares one bucket across every member of a business.
func KeyByBusiness(r *http.Request) string {
	if biz := GetBusinessID(r.Context()); biz != "" {
		return "ratelimit:biz:" + biz
	}
	return KeyByActor(r)
}

func KeyByActorAndRoute(r *http.Request) string {
	return KeyByActor(r) + ":route:" + routeOf(r)
}

// routeOf prefers the matched chi pattern. Group middleware runs before
// the pattern is complete, so ids are collapsed from the raw path then.
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" && !strings.HasSuffix(p, "*") {
			return p
		}
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for i, s := range segments {
		if isIdentifier(s) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isIdentifier(s string) bool {
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func writeQuotaHeaders(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimited(w http.ResponseWriter, res *redis_rate.Result) {
	wait := max(int(math.Ceil(res.RetryAfter.Seconds())), 1)
	w.Header().Set("Retry-After", strconv.Itoa(wait))

	core.JSONError(w, core.NewAppError(
		core.ErrRateLimited,
		fmt.Sprintf("too many requests, retry in %ds", wait),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

// localLimiter holds one token bucket per key. Idle buckets are dropped
// on the first call after each sweep interval.
type localLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

const (
	sweepEvery = 5 * time.Minute
	idleAfter  = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	return &localLimiter{
		buckets:   make(map[string]*localBucket),
		lastSweep: time.Now(),
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	refill := time.Duration(float64(time.Second) / perSecond)
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) > sweepEvery {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > idleAfter {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(b.limiter.TokensAt(now)), 0),
		RetryAfter: -1,
		ResetAfter: refill,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
		res.Remaining = max(res.Remaining-1, 0)
	} else {
		res.RetryAfter = refill
	}
	return res
}

func PerMinute(n, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: n, Burst: burst, Period: time.Minute}
}

func PerHour(n, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: n, Burst: burst, Period: time.Hour}
}
