package health

import "context"

// Pinger is any component that can answer a liveness probe. The search
// index transport and the cache store both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}
