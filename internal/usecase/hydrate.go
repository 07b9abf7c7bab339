package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/exo/showcase/internal/asset"
)

const (
	hydrateConcurrency = 4
	hydrateRate        = 50
)

type HydrateReport struct {
	Scanned  int
	Hydrated int
	Skipped  int
	Failed   int
}

// HydrateAssets materializes every asset field whose blob is absent, up to
// limit fields per resource. An empty resource covers all of them. A field
// that fails to resolve is counted and left for the next run.
func (u Usecase) HydrateAssets(ctx context.Context, r asset.Resource, limit int) (HydrateReport, error) {
	profiles := asset.Profiles()
	if r != "" {
		p, err := asset.Lookup(r)
		if err != nil {
			return HydrateReport{}, err
		}
		profiles = []asset.Profile{p}
	}

	var (
		report   HydrateReport
		hydrated atomic.Int64
		skipped  atomic.Int64
		failed   atomic.Int64
		limiter  = rate.NewLimiter(rate.Limit(hydrateRate), hydrateConcurrency)
	)
	tally := func() HydrateReport {
		report.Hydrated = int(hydrated.Load())
		report.Skipped = int(skipped.Load())
		report.Failed = int(failed.Load())
		return report
	}

	for _, p := range profiles {
		pending, err := u.repo.ListPendingAssets(ctx, p.Resource, limit)
		if err != nil {
			return tally(), fmt.Errorf("list pending %s: %w", p.Resource, err)
		}
		report.Scanned += len(pending)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(hydrateConcurrency)
		for _, pa := range pending {
			k, err := p.Kind(pa.Slot)
			if err != nil {
				failed.Add(1)
				continue
			}
			g.Go(func() error {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				b, err := u.resolve(gctx, k, pa.Path)
				if err != nil {
					failed.Add(1)
					u.logger.WarnContext(gctx, "hydrate failed",
						slog.String("resource", string(k.Resource)),
						slog.String("id", pa.ID.String()),
						slog.String("slot", string(k.Slot)),
						slog.String("err", err.Error()))
					return nil
				}
				path := pa.Path
				ok, err := u.repo.SaveAsset(gctx, k.Resource, pa.ID, Asset{
					Slot:   k.Slot,
					Path:   pa.Path,
					Blob:   b,
					Colors: u.palette(gctx, b),
				}, SaveAssetOption{IfPath: &path, IfUncached: true})
				switch {
				case err != nil:
					failed.Add(1)
					u.logger.WarnContext(gctx, "hydrate save failed",
						slog.String("resource", string(k.Resource)),
						slog.String("id", pa.ID.String()),
						slog.String("slot", string(k.Slot)),
						slog.String("err", err.Error()))
				case ok:
					hydrated.Add(1)
				default:
					skipped.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return tally(), err
		}
	}
	tally()

	u.logger.InfoContext(ctx, "hydrate finished",
		slog.String("resource", string(r)),
		slog.Int("scanned", report.Scanned),
		slog.Int("hydrated", report.Hydrated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))
	return report, nil
}

// RequestHydration schedules HydrateAssets on the worker.
func (u Usecase) RequestHydration(ctx context.Context, r asset.Resource, limit int) error {
	if r != "" {
		if _, err := asset.Lookup(r); err != nil {
			return err
		}
	}
	if u.queue == nil {
		return ErrQueueUnavailable
	}
	return u.queue.EnqueueHydrate(ctx, string(r), limit)
}
