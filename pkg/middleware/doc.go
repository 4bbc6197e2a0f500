// Package middleware provides the brute-force limiter placed in front of the
// login endpoint.
//
// Attempts are counted per (login, client IP) pair. Two implementations
// exist:
//
// MemoryLoginLimiter: token bucket per key (golang.org/x/time/rate), local
// to one process
//
//	limiter := middleware.NewMemoryLoginLimiter(10, 15*time.Minute)
//	limiter.StartCleanup(ctx)
//
// RedisLoginLimiter: fixed window counter shared by every instance
//
//	limiter := middleware.NewRedisLoginLimiter(redisClient, 10, 15*time.Minute, "")
//
// Either one is mounted with LoginLimit:
//
//	router.Handle("/api/auth/login", middleware.LoginLimit(limiter, 15*time.Minute)(loginHandler))
//
// A successful login resets the counter for its key. A limiter error lets the
// request through.
package middleware
