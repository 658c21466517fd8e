package tracker

import "context"

// StatusSource produces status channel events. Run blocks until the
// context ends; Events is closed when Run returns.
type StatusSource interface {
	Run(ctx context.Context) error
	Events() <-chan StatusEvent
}
