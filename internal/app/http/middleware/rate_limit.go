package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit throttles per client IP at the given rate, e.g. "100-D" for 100
// requests per day. Counters live in process memory, which matches the
// single-instance deployment.
func RateLimit(formatted string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		log.Fatalf("❌ Invalid rate limit %q: %v", formatted, err)
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate))
}
