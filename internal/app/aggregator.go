package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

// Aggregator fans out to every venue source, then merges what came back in
// priority order. A failing tier is reported and skipped.
type Aggregator struct {
	sources []domain.VenueSource
	timeout time.Duration
	radiusM float64
}

func NewAggregator(timeout time.Duration, radiusM float64, sources ...domain.VenueSource) *Aggregator {
	ss := append([]domain.VenueSource{}, sources...)
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].Kind().Rank() < ss[j].Kind().Rank() })
	return &Aggregator{sources: ss, timeout: timeout, radiusM: radiusM}
}

type fetchResult struct {
	records []domain.VenueRecord
	report  domain.SourceReport
	failed  bool
}

// Collect returns the merged pool and one report per source. It returns
// domain.ErrNoDataAvailable when no tier produced a usable answer.
func (a *Aggregator) Collect(ctx context.Context, c domain.QueryCriteria) ([]domain.VenueRecord, []domain.SourceReport, error) {
	results := make([]fetchResult, len(a.sources))

	g := new(errgroup.Group)
	g.SetLimit(max(1, len(a.sources)))
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, src, c)
			return nil
		})
	}
	_ = g.Wait()

	var (
		all     []domain.VenueRecord
		reports = make([]domain.SourceReport, 0, len(results))
		ok      int
	)
	for _, r := range results {
		reports = append(reports, r.report)
		if r.failed {
			continue
		}
		ok++
		all = append(all, r.records...)
	}
	if ok == 0 {
		log.Error().Int("sources", len(a.sources)).Msg("every venue source failed")
		return nil, reports, domain.ErrNoDataAvailable
	}
	return Merge(all, a.radiusM), reports, nil
}

func (a *Aggregator) fetchOne(parent context.Context, src domain.VenueSource, c domain.QueryCriteria) fetchResult {
	kind := src.Kind()
	ctx, cancel := context.WithTimeout(parent, a.timeout)
	defer cancel()

	type out struct {
		recs []domain.VenueRecord
		err  error
	}
	ch := make(chan out, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- out{err: domain.NewSourceError(kind, domain.KindInvalidResponse, fmt.Errorf("panic: %v", p))}
			}
		}()
		recs, err := src.Fetch(ctx, c)
		ch <- out{recs: recs, err: err}
	}()

	var res out
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = out{err: domain.NewSourceError(kind, domain.KindTimeout, ctx.Err())}
	}

	rep := domain.SourceReport{Source: kind}
	if res.err != nil {
		se := domain.AsSourceError(kind, res.err)
		rep.Error, rep.Message = se.Kind, se.Message
		log.Warn().Str("source", string(kind)).Str("kind", string(se.Kind)).Err(res.err).Msg("venue source skipped")
		observability.ObserveSource(string(kind), string(se.Kind), 0, 0)
		return fetchResult{report: rep, failed: true}
	}

	kept := make([]domain.VenueRecord, 0, len(res.recs))
	for _, v := range res.recs {
		if err := domain.Validate(v); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				log.Warn().Str("source", string(kind)).Str("venue", ve.RecordID).Str("field", ve.Field).Msg("dropping invalid venue record")
			}
			rep.Dropped++
			continue
		}
		v.SourceRank = kind.Rank()
		if v.Provenance.Source != kind {
			v.Provenance = domain.NewProvenance(kind, v.ID, v.Provenance.FetchedAt)
		}
		if v.Provenance.FetchedAt.IsZero() {
			v.Provenance.FetchedAt = time.Now().UTC()
		}
		if len(v.Provenance.Contributors) == 0 {
			v.Provenance.Contributors = []domain.SourceKind{kind}
		}
		kept = append(kept, v)
	}
	rep.Records = len(kept)
	observability.ObserveSource(string(kind), "ok", len(kept), rep.Dropped)
	log.Debug().Str("source", string(kind)).Int("records", len(kept)).Int("dropped", rep.Dropped).Msg("venue source fetched")
	return fetchResult{records: kept, report: rep}
}
