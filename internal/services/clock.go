// internal/services/clock.go
package services

import "time"

// Clock supplies the current time to every liveness and expiry computation.
// Injected so tests can advance time without sleeping; there is no background
// sweeper anywhere, expiry is always evaluated against Now at query time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
