package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ExtractionChecker checks extraction provider availability.
type ExtractionChecker interface {
	HealthCheck(ctx context.Context) error
}
