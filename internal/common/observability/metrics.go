package observability

import (
	"context"
	"time"

	"application-wizard/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records submission counts and latency through an OpenTelemetry meter
// exported on the Prometheus registry. A zero value is usable and records nothing.
type Observability struct {
	meterProvider      *metric.MeterProvider
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	log = logger.ForComponent(log, "observability")

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	counter, err := meter.Int64Counter(
		"applications.submitted",
		otelmetric.WithDescription("Number of application submissions"),
	)
	if err != nil {
		log.Warn("failed to create submission counter", map[string]interface{}{"error": err})
	}

	duration, err := meter.Float64Histogram(
		"applications.submit.duration",
		otelmetric.WithDescription("Submission processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		log.Warn("failed to create submission histogram", map[string]interface{}{"error": err})
	}

	return &Observability{
		meterProvider:      provider,
		submissionCounter:  counter,
		submissionDuration: duration,
	}
}

func (o *Observability) RecordSubmission(ctx context.Context, status string, elapsed time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, attrs)
	}
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
