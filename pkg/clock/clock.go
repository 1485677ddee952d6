package clock

import "time"

// Clock supplies the current instant in UTC. Services take it as a
// dependency so tests can pin time instead of sleeping.
type Clock interface {
	Now() time.Time
}

// System is the production clock.
type System struct{}

func NewSystem() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant.
type Fixed struct {
	Instant time.Time
}

func NewFixed(t time.Time) Fixed {
	return Fixed{Instant: t.UTC()}
}

func (f Fixed) Now() time.Time {
	return f.Instant
}
