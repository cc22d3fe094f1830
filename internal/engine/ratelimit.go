package engine

import (
	"context"

	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Inf, 1)

func initLimiter(rps float64, burst int) {
	if rps <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	if burst <= 0 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// WaitTurn blocks until the outbound limiter admits one request or ctx is done.
func WaitTurn(ctx context.Context) error {
	return limiter.Wait(ctx)
}
