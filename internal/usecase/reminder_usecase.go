// Package usecase contains the application-specific business rules.
package usecase

import "context"

// SweepResult summarizes one pass of the unread reminder sweep.
type SweepResult struct {
	Examined   int // Messages matched by the unread query.
	Dispatched int // Messages for which a reminder went out.
	Failed     int // Messages whose reminder could not be delivered.
}

// ReminderUsecase defines the interface for the periodic unread-message reminder sweep.
type ReminderUsecase interface {
	// RunSweep finds messages that stayed unread past the configured
	// threshold and notifies their recipients by email and push. Each
	// message is reminded at most once per threshold window. Failures on
	// individual messages are logged and do not abort the sweep.
	RunSweep(ctx context.Context) (*SweepResult, error)
}
