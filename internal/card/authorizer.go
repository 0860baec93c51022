package card

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SimulatedAuthorizer approves every well-formed card after a fixed delay.
// It stands in for a payment gateway integration.
type SimulatedAuthorizer struct {
	delay time.Duration
	now   func() time.Time
}

func NewSimulatedAuthorizer(delay time.Duration) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{delay: delay, now: time.Now}
}

func (a *SimulatedAuthorizer) Authorize(ctx context.Context, _ Card) (Approval, error) {
	started := a.now()
	if a.delay > 0 {
		t := time.NewTimer(a.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Approval{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Approval{}, err
	}
	return Approval{
		Reference:  uuid.NewString(),
		StartedAt:  started,
		ApprovedAt: a.now(),
	}, nil
}
