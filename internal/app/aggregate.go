package service

import (
	"context"
	"sync"

	"github.com/okian/vibefeed/internal/domain/dedupe"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

// Aggregate fetches every category concurrently and merges the answers in
// category order. A failed category contributes nothing.
func (s *Service) Aggregate(ctx context.Context, origin geo.Point, radiusMeters int, categories []string) []model.Candidate {
	batches := make([][]model.Candidate, len(categories))

	var wg sync.WaitGroup
	for i, category := range categories {
		wg.Add(1)
		go func(i int, category string) {
			defer wg.Done()
			got, err := s.directory.Nearby(ctx, model.NearbyQuery{
				Origin:       origin,
				RadiusMeters: radiusMeters,
				Category:     category,
			})
			if err != nil {
				s.logger.Warn(ctx, "category fetch failed",
					logger.String("category", category),
					logger.Error(err))
				return
			}
			batches[i] = got
		}(i, category)
	}
	wg.Wait()

	return dedupe.Merge(batches, dedupe.WithMaxSize(s.maxCandidates))
}
