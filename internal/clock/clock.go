// Package clock abstracts wall time so settlement timestamps stay
// deterministic in tests.
package clock

import (
	"context"
	"time"
)

type Clock interface {
	Now(ctx context.Context) time.Time
}
