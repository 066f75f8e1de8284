package ports

import "context"

// HealthChecker reports the availability of one backing dependency.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}
