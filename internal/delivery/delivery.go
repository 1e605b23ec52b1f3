// Package delivery defines the contract shared by every transport server.
package delivery

import "context"

// Delivery is a long-running server started by the application entrypoint.
type Delivery interface {
	// Serve blocks handling work until the server is shut down.
	Serve(ctx context.Context) error
}
