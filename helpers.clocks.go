package main

import "time"

// Clocker gives the time used for stats, maintenance and books events.
type Clocker interface {
	Now() time.Time
}

// TickerClocker is what zap.WithClock expects to stamp log entries.
type TickerClocker interface {
	Clocker
	NewTicker(time.Duration) *time.Ticker
}

// Clock reads the wall time in a fixed location.
type Clock struct {
	loc *time.Location
}

// NewClock returns a UTC clock for production deployments
// and a local one otherwise so dev logs read naturally.
func NewClock(isProd bool) *Clock {
	loc := time.Local
	if isProd {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// TickClock lets any Clocker drive the logger timestamps.
type TickClock struct {
	Clocker
}

func NewTickClock(c Clocker) *TickClock {
	return &TickClock{Clocker: c}
}

func (*TickClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}
