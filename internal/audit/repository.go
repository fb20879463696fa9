package audit

import "context"

// Recorder persists workflow events. Recording is best effort: callers
// log failures but never fail the user operation over them.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}
