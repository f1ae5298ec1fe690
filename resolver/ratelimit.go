package resolver

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// minRateFloor is the minimum rate in requests per second.
	minRateFloor = 1.0

	// maxRateCeiling is the maximum rate in requests per second.
	maxRateCeiling = 100.0

	// emaAlpha is the smoothing factor for the RTT moving average.
	// 0.2 gives ~20% weight to a new observation.
	emaAlpha = 0.2

	// recoveryFactor is the rate multiplier after a fast response.
	recoveryFactor = 1.1

	// backoffFactor limits how much the rate can drop in a single step.
	backoffFactor = 0.5
)

// AdaptiveLimiter paces outgoing fetches. In adaptive mode it slows down
// when servers answer slower than targetRTT and speeds back up when they
// recover; after SetRate it holds a fixed rate.
type AdaptiveLimiter struct {
	limiter   *rate.Limiter
	targetRTT time.Duration
	mu        sync.RWMutex

	emaRTT      time.Duration
	currentRate float64
	fixed       bool
}

// NewAdaptiveLimiter creates a limiter starting at initialRPS that aims for
// responses within targetRTT.
func NewAdaptiveLimiter(initialRPS int, targetRTT time.Duration) *AdaptiveLimiter {
	clamped := clampRate(float64(initialRPS))
	if targetRTT <= 0 {
		targetRTT = time.Second
	}

	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(rate.Limit(clamped), int(math.Ceil(clamped))),
		targetRTT:   targetRTT,
		currentRate: clamped,
		emaRTT:      targetRTT,
	}
}

// Wait blocks until the next fetch may start or ctx is done.
// It is safe to call Wait from multiple goroutines concurrently.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// ObserveRTT records a response time and adjusts the rate.
func (a *AdaptiveLimiter) ObserveRTT(rtt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fixed {
		return
	}

	a.emaRTT = time.Duration(emaAlpha*float64(rtt) + (1-emaAlpha)*float64(a.emaRTT))

	var next float64
	if ratio := float64(a.targetRTT) / float64(a.emaRTT); ratio < 1 {
		next = math.Max(a.currentRate*ratio, a.currentRate*backoffFactor)
	} else {
		next = a.currentRate * recoveryFactor
	}
	next = clampRate(next)

	if math.Abs(next-a.currentRate) > 0.1 {
		a.setLocked(next)
	}
}

// SetRate pins the limiter to rps and stops adaptation.
func (a *AdaptiveLimiter) SetRate(rps int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.fixed = true
	a.setLocked(clampRate(float64(rps)))
}

// CurrentRate returns the current rate limit in requests per second.
func (a *AdaptiveLimiter) CurrentRate() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int(math.Round(a.currentRate))
}

// CurrentEMA returns the moving average of observed response times.
func (a *AdaptiveLimiter) CurrentEMA() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.emaRTT
}

func (a *AdaptiveLimiter) setLocked(rps float64) {
	a.currentRate = rps
	a.limiter.SetLimit(rate.Limit(rps))
	a.limiter.SetBurst(int(math.Ceil(rps)))
}

func clampRate(rps float64) float64 {
	return math.Min(math.Max(rps, minRateFloor), maxRateCeiling)
}
