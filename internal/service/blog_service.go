package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sigmadevelopers/portfolio/internal/models"
	"github.com/sigmadevelopers/portfolio/internal/repository"
)

const (
	shareCountKey = "blog:share:%s"
	viewCountKey  = "blog:view:%s"
	pendingSetKey = "blog:counters:pending"
)

// BlogService layers the hot counters (shares, views) over redis so the
// public endpoints never write to postgres; the scheduler folds the deltas
// back into the blog rows.
type BlogService struct {
	blogs *repository.BlogRepository
	cache *redis.Client
	log   zerolog.Logger
}

func NewBlogService(blogs *repository.BlogRepository, cache *redis.Client, log zerolog.Logger) *BlogService {
	return &BlogService{
		blogs: blogs,
		cache: cache,
		log:   log,
	}
}

// Get returns a blog with its live share/view counts (row value plus any
// delta still sitting in redis) and counts the view.
func (s *BlogService) Get(ctx context.Context, id string) (models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return models.Blog{}, err
	}

	if s.cache != nil {
		if err := s.bump(ctx, fmt.Sprintf(viewCountKey, id), id); err != nil {
			s.log.Warn().Err(err).Str("blog_id", id).Msg("view count bump failed")
		}
		blog.ShareCount += s.pending(ctx, fmt.Sprintf(shareCountKey, id))
		blog.ViewCount += s.pending(ctx, fmt.Sprintf(viewCountKey, id))
	}
	return blog, nil
}

func (s *BlogService) List(ctx context.Context, limit, offset int) ([]models.Blog, error) {
	return s.blogs.List(ctx, limit, offset)
}

// Share records a share on the given platform and returns the live total.
func (s *BlogService) Share(ctx context.Context, id string, platform string) (int64, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	total := blog.ShareCount
	if s.cache == nil {
		// Degraded mode: write through to the row.
		if err := s.blogs.AddShareCount(ctx, id, 1); err != nil {
			return 0, err
		}
		return total + 1, nil
	}

	if err := s.bump(ctx, fmt.Sprintf(shareCountKey, id), id); err != nil {
		return 0, fmt.Errorf("share count: %w", err)
	}
	s.log.Debug().Str("blog_id", id).Str("platform", platform).Msg("blog shared")

	return total + s.pending(ctx, fmt.Sprintf(shareCountKey, id)), nil
}

func (s *BlogService) bump(ctx context.Context, key string, blogID string) error {
	pipe := s.cache.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.SAdd(ctx, pendingSetKey, blogID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *BlogService) pending(ctx context.Context, key string) int64 {
	n, err := s.cache.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		s.log.Warn().Err(err).Str("key", key).Msg("pending counter read failed")
	}
	return n
}

// FlushCounters moves accumulated redis deltas into the blog rows. Called
// by the cron scheduler; safe to run concurrently with new shares because
// GETDEL snapshots and clears atomically.
func (s *BlogService) FlushCounters(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	blogIDs, err := s.cache.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		return fmt.Errorf("pending set: %w", err)
	}

	for _, blogID := range blogIDs {
		shares, err := s.cache.GetDel(ctx, fmt.Sprintf(shareCountKey, blogID)).Int64()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("getdel shares %s: %w", blogID, err)
		}
		views, err := s.cache.GetDel(ctx, fmt.Sprintf(viewCountKey, blogID)).Int64()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("getdel views %s: %w", blogID, err)
		}

		if shares > 0 {
			if err := s.blogs.AddShareCount(ctx, blogID, shares); err != nil {
				return fmt.Errorf("flush shares %s: %w", blogID, err)
			}
		}
		if views > 0 {
			if err := s.blogs.AddViewCount(ctx, blogID, views); err != nil {
				return fmt.Errorf("flush views %s: %w", blogID, err)
			}
		}
		if err := s.cache.SRem(ctx, pendingSetKey, blogID).Err(); err != nil {
			return fmt.Errorf("srem %s: %w", blogID, err)
		}
	}

	if len(blogIDs) > 0 {
		s.log.Info().Int("blogs", len(blogIDs)).Msg("counters flushed")
	}
	return nil
}
