package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// TrafficLimits configures the API-wide rate limit and the backpressure
// bound on concurrently served requests. Zero values disable the
// corresponding control.
type TrafficLimits struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	AcquireTimeout time.Duration
}

func trafficControlMiddleware(next http.Handler, limits TrafficLimits) http.Handler {
	handler := next
	if limits.MaxConcurrent > 0 {
		timeout := limits.AcquireTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		handler = backpressureMiddleware(handler, limits.MaxConcurrent, timeout)
	}
	if limits.RateLimitRPS > 0 {
		burst := limits.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		handler = rateLimitMiddleware(handler, rate.NewLimiter(rate.Limit(limits.RateLimitRPS), burst))
	}
	return handler
}

func rateLimitMiddleware(next http.Handler, limiter *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds()) + 1
			reservation.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// backpressureMiddleware bounds in-flight requests with a semaphore; a
// request that cannot acquire a slot within the timeout gets 503 instead of
// queueing behind slow pipeline runs.
func backpressureMiddleware(next http.Handler, maxConcurrent int, acquireTimeout time.Duration) http.Handler {
	slots := make(chan struct{}, maxConcurrent)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := time.NewTimer(acquireTimeout)
		defer timer.Stop()

		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			next.ServeHTTP(w, r)
		case <-timer.C:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server saturated"})
		case <-r.Context().Done():
		}
	})
}
