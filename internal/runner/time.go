package runner

import "time"

// Ticker is the part of time.Ticker the poll loop uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimeProvider supplies the clock and tickers, so tests can drive cycles.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// RealTimeProvider implements TimeProvider with the time package.
type RealTimeProvider struct{}

// Now returns the current time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (RealTimeProvider) NewTicker(d time.Duration) Ticker {
	return realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (r realTicker) C() <-chan time.Time {
	return r.ticker.C
}

func (r realTicker) Stop() {
	r.ticker.Stop()
}
