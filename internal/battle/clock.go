package battle

import "time"

// Ticker is a cancellable periodic tick source.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. The real implementation wraps time.Ticker; tests
// inject a manual clock to advance virtual time deterministically.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

// RealClock returns a Clock backed by time.Ticker.
func RealClock() Clock { return realClock{} }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
