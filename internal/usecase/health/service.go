package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/metrics"
)

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy means every component answered.
	Healthy Status = "ok"
	// Degraded means only optional components failed. Searches still run.
	Degraded Status = "degraded"
	// Unhealthy means the search index did not answer.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one probe.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names used in reports.
const (
	ComponentSearch = "search"
	ComponentCache  = "cache"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 5 * time.Second

// Check is one probe result. Error details stay in logs; /health is public.
type Check struct {
	Result    CheckResult `json:"result"`
	LatencyMS int64       `json:"latency_ms"`
}

// Report aggregates the probes.
type Report struct {
	Status Status
	Checks map[string]Check
}

type component struct {
	name     string
	pinger   Pinger
	critical bool
}

// Service probes the search index and the optional response cache.
type Service struct {
	components []component
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a Service. cache may be nil. A non-positive timeout uses DefaultTimeout.
func New(index, cache Pinger, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		components: []component{{name: ComponentSearch, pinger: index, critical: true}},
		timeout:    timeout,
		now:        time.Now,
		logger:     logger,
	}
	if cache != nil {
		s.components = append(s.components, component{name: ComponentCache, pinger: cache})
	}
	return s
}

// Check probes all components concurrently. A failing index makes the
// service unhealthy; a failing cache only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make([]Check, len(s.components))

	var wg sync.WaitGroup
	for i, c := range s.components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = s.probe(ctx, c)
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]Check, len(checks))}
	for i, c := range s.components {
		report.Checks[c.name] = checks[i]
		up := 1.0
		if checks[i].Result == CheckError {
			up = 0
			switch {
			case c.critical:
				report.Status = Unhealthy
			case report.Status == Healthy:
				report.Status = Degraded
			}
		}
		metrics.ComponentUp.WithLabelValues(c.name).Set(up)
	}
	return report
}

func (s *Service) probe(ctx context.Context, c component) Check {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	err := c.pinger.Ping(ctx)
	check := Check{Result: CheckOK, LatencyMS: s.now().Sub(start).Milliseconds()}
	if err != nil {
		check.Result = CheckError
		s.logger.Warn("Health probe failed",
			zap.String("component", c.name),
			zap.Bool("critical", c.critical),
			zap.Int64("latency_ms", check.LatencyMS),
			zap.Error(err),
		)
	}
	return check
}
