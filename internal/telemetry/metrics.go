// Package telemetry records preview harness metrics through OpenTelemetry.
//
// The recorder uses the global meter provider; configure it with
// otel.SetMeterProvider before calling NewRecorder. Use Noop when metrics are
// disabled.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder records registry and runner activity.
type Recorder interface {
	// RecordRegistration records a handle announced for a page key. kind is
	// "container" or "instance".
	RecordRegistration(ctx context.Context, key, kind string)

	// RecordAwait records a completed (or abandoned) await on a page key.
	RecordAwait(ctx context.Context, key string, wait time.Duration, err error)

	// RecordRun records one preview run.
	RecordRun(ctx context.Context, key string, duration time.Duration, err error)

	// RecordPrune records how many inactive entries a prune pass removed.
	RecordPrune(ctx context.Context, removed int)
}

type otelRecorder struct {
	registrations metric.Int64Counter
	awaits        metric.Int64Counter
	awaitLatency  metric.Float64Histogram
	runs          metric.Int64Counter
	runErrors     metric.Int64Counter
	runLatency    metric.Float64Histogram
	pruned        metric.Int64Counter
}

var (
	defaultRecorder     *otelRecorder
	defaultRecorderOnce sync.Once
	defaultRecorderErr  error
)

func getDefaultRecorder() (*otelRecorder, error) {
	defaultRecorderOnce.Do(func() {
		defaultRecorder, defaultRecorderErr = newOtelRecorder(otel.Meter("previewkit"))
	})
	return defaultRecorder, defaultRecorderErr
}

func newOtelRecorder(meter metric.Meter) (*otelRecorder, error) {
	registrations, err := meter.Int64Counter("previewkit.registry.registrations",
		metric.WithDescription("Handles announced to the page-state registry"),
	)
	if err != nil {
		return nil, err
	}
	awaits, err := meter.Int64Counter("previewkit.registry.awaits",
		metric.WithDescription("Completed page-state awaits"),
	)
	if err != nil {
		return nil, err
	}
	awaitLatency, err := meter.Float64Histogram("previewkit.registry.await_ms",
		metric.WithDescription("Time spent waiting for a page to render"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	runs, err := meter.Int64Counter("previewkit.runner.runs",
		metric.WithDescription("Preview runs"),
	)
	if err != nil {
		return nil, err
	}
	runErrors, err := meter.Int64Counter("previewkit.runner.errors",
		metric.WithDescription("Preview runs whose setup failed"),
	)
	if err != nil {
		return nil, err
	}
	runLatency, err := meter.Float64Histogram("previewkit.runner.latency_ms",
		metric.WithDescription("Preview run latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	pruned, err := meter.Int64Counter("previewkit.registry.pruned",
		metric.WithDescription("Inactive registry entries removed"),
	)
	if err != nil {
		return nil, err
	}
	return &otelRecorder{
		registrations: registrations,
		awaits:        awaits,
		awaitLatency:  awaitLatency,
		runs:          runs,
		runErrors:     runErrors,
		runLatency:    runLatency,
		pruned:        pruned,
	}, nil
}

// NewRecorder returns a Recorder backed by OpenTelemetry, or Noop if the
// instruments cannot be created.
func NewRecorder() Recorder {
	r, err := getDefaultRecorder()
	if err != nil {
		return Noop{}
	}
	return r
}

// NewRecorderWithMeter builds a recorder on a specific meter instead of the
// global provider.
func NewRecorderWithMeter(meter metric.Meter) (Recorder, error) {
	r, err := newOtelRecorder(meter)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *otelRecorder) RecordRegistration(ctx context.Context, key, kind string) {
	r.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("page", key),
		attribute.String("kind", kind),
	))
}

func (r *otelRecorder) RecordAwait(ctx context.Context, key string, wait time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("page", key),
		attribute.Bool("success", err == nil),
	)
	r.awaits.Add(ctx, 1, attrs)
	r.awaitLatency.Record(ctx, float64(wait.Microseconds())/1000, attrs)
}

func (r *otelRecorder) RecordRun(ctx context.Context, key string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("page", key),
		attribute.Bool("success", err == nil),
	)
	r.runs.Add(ctx, 1, attrs)
	r.runLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		r.runErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("page", key)))
	}
}

func (r *otelRecorder) RecordPrune(ctx context.Context, removed int) {
	if removed <= 0 {
		return
	}
	r.pruned.Add(ctx, int64(removed))
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordRegistration(context.Context, string, string)        {}
func (Noop) RecordAwait(context.Context, string, time.Duration, error) {}
func (Noop) RecordRun(context.Context, string, time.Duration, error)   {}
func (Noop) RecordPrune(context.Context, int)                          {}
