package posts

import (
	"context"
	"math"
	"sort"
	"time"

	"mymind/models"
)

// Trending returns the highest-scoring posts created within the last 30
// days. limit <= 0 means the default of 5. The score itself is not part of
// the returned representation.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	cacheable := limit == DefaultTrendingLimit && s.cache != nil
	if cacheable {
		if posts, ok := s.cache.Get(ctx); ok {
			return posts, nil
		}
	}

	now := s.now().UTC()
	candidates, err := s.repo.FindCreatedSince(ctx, now.Add(-trendingWindow))
	if err != nil {
		return nil, err
	}

	ranked := rankTrending(candidates, now, limit)

	if cacheable {
		s.cache.Set(ctx, ranked)
	}
	return ranked, nil
}

// trendingScore weighs engagement against recency decay:
//
//	(likes*2 + comments*3) / age_days^1.5
//
// with age floored at one day so very fresh posts do not blow the quotient
// up.
func trendingScore(p *models.Post, now time.Time) float64 {
	ageDays := now.Sub(p.CreatedAt).Hours() / 24
	if ageDays < 1 {
		ageDays = 1
	}
	engagement := float64(len(p.Likes))*2 + float64(len(p.Comments))*3
	return engagement / math.Pow(ageDays, 1.5)
}

func rankTrending(candidates []models.Post, now time.Time, limit int) []models.Post {
	type scored struct {
		post  models.Post
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		ranked = append(ranked, scored{post: p, score: trendingScore(&p, now)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	top := make([]models.Post, limit)
	for i := range top {
		top[i] = ranked[i].post
	}
	return top
}
