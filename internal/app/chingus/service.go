package chingus

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/geo"
	"github.com/chingu-voyages/demographics-api/internal/platform/metrics"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// Service answers the member list and country aggregation queries.
type Service struct {
	repo   memberrepo.Repository
	coords *geo.Table
}

func NewService(repo memberrepo.Repository, coords *geo.Table) *Service {
	return &Service{repo: repo, coords: coords}
}

// List returns one page of members matching f.
//
// The page and the total are read concurrently as two independent queries, so under
// concurrent writes the total may reflect a slightly different snapshot than the page.
// Store errors are returned unchanged.
func (s *Service) List(ctx context.Context, f Filter, sort []memberrepo.SortKey, page Page) (ListResult, error) {
	p := BuildPredicate(f)
	if len(sort) == 0 {
		sort = DefaultSort
	}

	var (
		data  []domain.Member
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		ms, err := s.repo.Find(gctx, p, sort, page.Offset(), page.Limit)
		metrics.ObserveStoreQuery("find", time.Since(start), err)
		data = ms
		return err
	})
	g.Go(func() error {
		start := time.Now()
		n, err := s.repo.Count(gctx, p)
		metrics.ObserveStoreQuery("count", time.Since(start), err)
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}

	if data == nil {
		data = []domain.Member{}
	}
	return ListResult{
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: TotalPages(total, page.Limit),
		Data:       data,
	}, nil
}

// AggregateByCountry groups members matching f by country code. No partial result is
// returned when the store fails.
func (s *Service) AggregateByCountry(ctx context.Context, f Filter) ([]CountryCount, error) {
	start := time.Now()
	groups, err := s.repo.GroupByCountry(ctx, BuildPredicate(f))
	metrics.ObserveStoreQuery("group", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return Aggregate(groups, s.coords), nil
}
