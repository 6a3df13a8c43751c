package aiquiz

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ExplanationCache memoizes explanations for one result view. A successful
// explanation is never regenerated; concurrent requests for the same pair share a call.
type ExplanationCache struct {
	svc Service

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]string
}

func NewExplanationCache(svc Service) *ExplanationCache {
	return &ExplanationCache{svc: svc, entries: make(map[string]string)}
}

func (c *ExplanationCache) Explain(ctx context.Context, questionID, optionID int64, questionText, optionText string) (string, error) {
	key := fmt.Sprintf("%d:%d", questionID, optionID)

	if text, ok := c.lookup(key); ok {
		return text, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if text, ok := c.lookup(key); ok {
			return text, nil
		}
		text, err := c.svc.ExplainWrongAnswer(ctx, questionText, optionText)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.entries[key] = text
		c.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *ExplanationCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.entries[key]
	return text, ok
}
