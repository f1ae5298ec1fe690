package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/metrics"
	"github.com/lukemcguire/linktitle/pool"
	"github.com/lukemcguire/linktitle/result"
)

// errNotProcessed marks a link the pool never reported on.
var errNotProcessed = errors.New("link was not processed")

// ResolveBatch resolves every distinct link concurrently and returns one
// Resolution per distinct link, in first-seen order. It blocks until all
// links have finished.
func (r *Resolver) ResolveBatch(ctx context.Context, links []string) *result.Result {
	start := time.Now()
	batchID := uuid.NewString()
	logger := r.logger.With(zap.String("batch_id", batchID))

	distinct := Dedupe(links)
	store := NewStore()
	total := len(distinct)

	logger.Info("resolving links", zap.Int("links", total), zap.Int("concurrency", r.cfg.Concurrency))
	r.metrics.SetPoolConcurrency(r.cfg.Concurrency)

	var done, failed atomic.Int64
	outcomes := pool.Run(ctx, distinct, func(ctx context.Context, link string) (struct{}, error) {
		err := r.Resolve(ctx, store, link)

		finished := done.Add(1)
		failures := failed.Load()
		if err != nil {
			failures = failed.Add(1)
		}
		r.emit(ctx, store, link, err, int(finished), int(failures), total)
		return struct{}{}, err
	}, pool.Options{
		Concurrency: r.cfg.Concurrency,
		IdleTimeout: r.cfg.IdleTimeout,
		Logger:      logger,
	})

	if ce := logger.Check(zap.DebugLevel, "batch store"); ce != nil {
		ce.Write(zap.Any("titles", store.Titles()), zap.Any("redirects", store.Redirects()))
	}

	errs := make(map[string]error, len(outcomes))
	seen := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		seen[o.Job] = true
		if o.Err != nil {
			errs[o.Job] = o.Err
		}
	}

	res := &result.Result{
		Resolutions: make([]result.Resolution, 0, total),
		Stats:       result.BatchStats{BatchID: batchID, Total: total},
	}
	for _, link := range distinct {
		err := errs[link]
		if !seen[link] {
			err = &result.Error{Kind: result.KindUnknown, Link: link, Err: errNotProcessed}
		}

		resolution := describe(store, link, err)
		if resolution.Resolved {
			res.Stats.Resolved++
			r.metrics.IncResolution(metrics.OutcomeResolved, "none")
		} else {
			res.Stats.Failed++
			r.metrics.IncResolution(metrics.OutcomeFailed, string(resolution.Kind))
		}
		res.Resolutions = append(res.Resolutions, resolution)
	}

	res.Stats.Duration = time.Since(start)
	r.metrics.ObserveBatchDuration(res.Stats.Duration, total)
	logger.Info("resolution finished",
		zap.Int("resolved", res.Stats.Resolved),
		zap.Int("failed", res.Stats.Failed),
		zap.Duration("duration", res.Stats.Duration))

	return res
}

// describe builds the Resolution for link from the drained store.
func describe(store *Store, link string, err error) result.Resolution {
	resolution := result.Resolution{Link: link, URL: link, Resolved: err == nil}
	if title, ok := store.Title(link); ok {
		resolution.Title = title
	}
	if target, ok := store.Redirect(link); ok {
		resolution.URL = target
	}
	if err != nil {
		resolution.Kind = result.ClassifyError(err)
		resolution.StatusCode = result.StatusCode(err)
		resolution.Error = err.Error()
	}
	return resolution
}

// emit sends a progress event if a progress channel is configured. The event
// is dropped once ctx is done so a reader that stopped listening cannot stall
// the workers.
func (r *Resolver) emit(ctx context.Context, store *Store, link string, err error, done, failed, total int) {
	if r.progressCh == nil {
		return
	}
	resolution := describe(store, link, err)
	ev := ResolveEvent{
		Link:     link,
		Title:    resolution.Title,
		URL:      resolution.URL,
		Kind:     resolution.Kind,
		Error:    resolution.Error,
		Resolved: resolution.Resolved,
		Done:     done,
		Failed:   failed,
		Total:    total,
	}
	select {
	case r.progressCh <- ev:
	case <-ctx.Done():
	}
}

// Dedupe returns the non-empty links in first-seen order without repeats.
func Dedupe(links []string) []string {
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, link)
	}
	return out
}
