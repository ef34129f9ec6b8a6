// Package delivery defines the inbound transports of the service.
package delivery

import "context"

// Delivery is a transport started by the application lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
