package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/exo/showcase/internal/asset"
)

type metrics struct {
	hydrations metric.Int64Counter
	fallbacks  metric.Int64Counter
	writeBacks metric.Int64Counter
	conflicts  metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter("github.com/exo/showcase/internal/usecase")

	hydrations, _ := meter.Int64Counter("asset.hydrations",
		metric.WithDescription("Blobs materialized from their reference."))
	fallbacks, _ := meter.Int64Counter("asset.fallbacks",
		metric.WithDescription("Resolutions served from the kind default."))
	writeBacks, _ := meter.Int64Counter("asset.writeback.failures",
		metric.WithDescription("Lazily hydrated blobs that could not be persisted."))
	conflicts, _ := meter.Int64Counter("gallery.conflicts",
		metric.WithDescription("Gallery saves rejected by the version check."))

	return &metrics{
		hydrations: hydrations,
		fallbacks:  fallbacks,
		writeBacks: writeBacks,
		conflicts:  conflicts,
	}
}

func kindAttrs(r asset.Resource, s asset.Slot) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("resource", string(r)),
		attribute.String("slot", string(s)),
	)
}

func (m *metrics) hydrated(ctx context.Context, r asset.Resource, s asset.Slot, fallback bool) {
	m.hydrations.Add(ctx, 1, kindAttrs(r, s))
	if fallback {
		m.fallbacks.Add(ctx, 1, kindAttrs(r, s))
	}
}
