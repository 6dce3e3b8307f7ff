package solrmap

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Outcome labels. Every error maps to exactly one.
const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeRejected    = "rejected"
	outcomeInvalid     = "invalid"
	outcomeParse       = "parse"
	outcomeError       = "error"
)

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrUnavailable):
		return outcomeUnavailable
	case errors.Is(err, ErrRejected):
		return outcomeRejected
	case errors.Is(err, ErrParse), errors.Is(err, ErrUnknownSchema):
		return outcomeParse
	case errors.Is(err, ErrConversion), errors.Is(err, ErrConstruction),
		errors.Is(err, ErrEmptyInput), errors.Is(err, ErrAlreadyRegistered):
		return outcomeInvalid
	}
	return outcomeError
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	documents  *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solrmap",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "solrmap",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solrmap",
			Subsystem: "sdk",
			Name:      "documents_total",
			Help:      "Records sent by save and delete, documents returned by search.",
		}, []string{"operation"}),
	}
	for _, err := range []error{
		registerOrReuse(reg, &m.operations),
		registerOrReuse(reg, &m.duration),
		registerOrReuse(reg, &m.documents),
	} {
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerOrReuse registers c, or points c at the collector another client
// already registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("solrmap: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("solrmap: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records SDK calls. A nil observer records nothing.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one call. docs is the number of documents it moved.
func (o *observer) observe(op string, start time.Time, docs int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	result := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, result).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil && docs > 0 {
			o.metrics.documents.WithLabelValues(op).Add(float64(docs))
		}
	}

	if o.logger == nil {
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", dur), zap.Int("documents", docs)}
	if err != nil {
		o.logger.Warn("Operation failed", append(fields, zap.String("outcome", result), zap.Error(err))...)
		return
	}
	o.logger.Debug("Operation completed", fields...)
}
