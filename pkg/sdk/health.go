package solrmap

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/solrmap/internal/usecase/health"
)

// HealthStatus is the outcome of a health probe.
type HealthStatus struct {
	Status  string                   // "ok", "degraded", "error"
	Checks  map[string]string        // "search", "cache" → "ok"/"error"
	Latency map[string]time.Duration // probe round trips
}

// Healthy reports whether every component answered.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health probes the search index and, when configured, the response cache.
// A degraded client still searches; only an unreachable index is an error status.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	h := HealthStatus{
		Status:  string(report.Status),
		Checks:  make(map[string]string, len(report.Checks)),
		Latency: make(map[string]time.Duration, len(report.Checks)),
	}
	for name, check := range report.Checks {
		h.Checks[name] = string(check.Result)
		h.Latency[name] = time.Duration(check.LatencyMS) * time.Millisecond
	}
	return h
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
