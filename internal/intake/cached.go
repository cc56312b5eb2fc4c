package intake

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/cache"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

// CachedClassifier memoizes another classifier by text and platform.
// Request ids and timestamps are refreshed on every hit.
type CachedClassifier struct {
	next  Classifier
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedClassifier wraps next. A zero ttl uses the cache default.
func NewCachedClassifier(next Classifier, c cache.Cache, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{next: next, cache: c, ttl: ttl, now: time.Now}
}

func (c *CachedClassifier) Name() string { return c.next.Name() }

func (c *CachedClassifier) IsAvailable(ctx context.Context) bool { return c.next.IsAvailable(ctx) }

func (c *CachedClassifier) Classify(ctx context.Context, req ClassifyRequest) (*model.ClassificationRecord, error) {
	key := cache.Key("intake:"+c.next.Name(), req.Text, req.SourcePlatform)

	if data, found := c.cache.Get(key); found {
		var rec model.ClassificationRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			rec.RequestID = ""
			rec.Timestamp = ""
			return finalize(&rec, req, c.now()), nil
		}
		_ = c.cache.Delete(key)
	}

	rec, err := c.next.Classify(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rec); err == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}
	return rec, nil
}
