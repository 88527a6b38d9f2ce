package redis_storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"LiqLearns/internal/models"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldCurrentSlide = "current_slide"
	fieldCompleted    = "completed"
	fieldTimeSpent    = "time_spent_seconds"
)

func NewRedisClient(addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ProgressRedis keeps one hash for the scalar fields and two sets for viewed
// slides and completed resources per (user, presentation).
type ProgressRedis struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewProgressRedis stores keys under prefix. A zero ttl keeps them forever.
func NewProgressRedis(rdb *goredis.Client, prefix string, ttl time.Duration) *ProgressRedis {
	if prefix == "" {
		prefix = "progress"
	}
	return &ProgressRedis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *ProgressRedis) keys(userID, presentationID uuid.UUID) (hash, viewed, resources string) {
	base := fmt.Sprintf("%s:%s:%s", r.prefix, presentationID, userID)
	return base, base + ":viewed", base + ":resources"
}

func (r *ProgressRedis) Progress(ctx context.Context, userID, presentationID uuid.UUID) (models.PresentationProgress, error) {
	hashKey, viewedKey, resourcesKey := r.keys(userID, presentationID)

	var (
		fields    *goredis.MapStringStringCmd
		viewed    *goredis.StringSliceCmd
		resources *goredis.StringSliceCmd
	)
	_, err := r.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, hashKey)
		viewed = pipe.SMembers(ctx, viewedKey)
		resources = pipe.SMembers(ctx, resourcesKey)
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return models.PresentationProgress{}, fmt.Errorf("read progress: %w", err)
	}

	p := models.PresentationProgress{UserID: userID, PresentationID: presentationID}
	h := fields.Val()
	if v, ok := h[fieldCurrentSlide]; ok {
		p.CurrentSlide, _ = strconv.Atoi(v)
	}
	if v, ok := h[fieldTimeSpent]; ok {
		p.TimeSpentSeconds, _ = strconv.Atoi(v)
	}
	p.Completed = h[fieldCompleted] == "1"

	for _, v := range viewed.Val() {
		if s, err := strconv.Atoi(v); err == nil {
			p.SlidesViewed = append(p.SlidesViewed, s)
		}
	}
	sort.Ints(p.SlidesViewed)
	p.ResourcesCompleted = resources.Val()
	sort.Strings(p.ResourcesCompleted)
	return p, nil
}

func (r *ProgressRedis) UpdateProgress(ctx context.Context, userID, presentationID uuid.UUID, u models.ProgressUpdate) error {
	hashKey, viewedKey, resourcesKey := r.keys(userID, presentationID)

	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if u.CurrentSlide != nil {
			pipe.HSet(ctx, hashKey, fieldCurrentSlide, *u.CurrentSlide)
		}
		if u.Completed != nil {
			completed := 0
			if *u.Completed {
				completed = 1
			}
			pipe.HSet(ctx, hashKey, fieldCompleted, completed)
		}
		if u.TimeSpent != 0 {
			pipe.HIncrBy(ctx, hashKey, fieldTimeSpent, int64(u.TimeSpent))
		}
		if len(u.SlidesViewed) > 0 {
			members := make([]interface{}, 0, len(u.SlidesViewed))
			for _, s := range u.SlidesViewed {
				members = append(members, s)
			}
			pipe.SAdd(ctx, viewedKey, members...)
		}
		if len(u.ResourcesCompleted) > 0 {
			members := make([]interface{}, 0, len(u.ResourcesCompleted))
			for _, id := range u.ResourcesCompleted {
				members = append(members, id)
			}
			pipe.SAdd(ctx, resourcesKey, members...)
		}
		if r.ttl > 0 {
			for _, k := range []string{hashKey, viewedKey, resourcesKey} {
				pipe.Expire(ctx, k, r.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}
