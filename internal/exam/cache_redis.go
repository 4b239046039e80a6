package exam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// CachedBank is a read-through redis cache in front of another Bank. Review
// of guest tokens re-resolves question sets by exam code on every page view,
// so those lookups land here.
type CachedBank struct {
	next   Bank
	client *redis.Client
	ttl    time.Duration
}

func NewCachedBank(next Bank, client *redis.Client, ttl time.Duration) *CachedBank {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedBank{next: next, client: client, ttl: ttl}
}

func (c *CachedBank) key(examCode string) string {
	return fmt.Sprintf("exam:%s:set", examCode)
}

func (c *CachedBank) Put(ctx context.Context, s QuestionSet) error {
	if err := c.next.Put(ctx, s); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(s.ExamCode)).Err(); err != nil {
		log.WithError(err).WithField("exam_code", s.ExamCode).Warn("question set cache invalidate failed")
	}
	return nil
}

func (c *CachedBank) Get(ctx context.Context, examCode string) (QuestionSet, error) {
	raw, err := c.client.Get(ctx, c.key(examCode)).Bytes()
	switch {
	case err == nil:
		var s QuestionSet
		if jerr := json.Unmarshal(raw, &s); jerr == nil {
			return s, nil
		}
	case !errors.Is(err, redis.Nil):
		log.WithError(err).WithField("exam_code", examCode).Warn("question set cache read failed")
	}

	s, err := c.next.Get(ctx, examCode)
	if err != nil {
		return QuestionSet{}, err
	}
	if buf, jerr := json.Marshal(s); jerr == nil {
		if werr := c.client.Set(ctx, c.key(examCode), buf, c.ttl).Err(); werr != nil {
			log.WithError(werr).WithField("exam_code", examCode).Warn("question set cache write failed")
		}
	}
	return s, nil
}

func (c *CachedBank) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	return c.next.List(ctx, opts)
}
