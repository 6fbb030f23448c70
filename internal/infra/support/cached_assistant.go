package support

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"course-marketplace/internal/domain/ports/adapter"
	red "course-marketplace/internal/infra/redis"
)

var _ adapter.Assistant = (*CachedAssistant)(nil)

// CachedAssistant memoizes fallback answers per normalized question so
// repeated questions skip the model call. Misses and cache failures both
// degrade to the inner assistant.
type CachedAssistant struct {
	inner adapter.Assistant
	cache *red.ContentCache
}

func NewCachedAssistant(inner adapter.Assistant, cache *red.ContentCache) *CachedAssistant {
	return &CachedAssistant{inner: inner, cache: cache}
}

func (a *CachedAssistant) Answer(ctx context.Context, question string) (string, error) {
	key := answerKey(question)
	if reply, ok := a.cache.Get(ctx, key); ok {
		return reply, nil
	}

	reply, err := a.inner.Answer(ctx, question)
	if err != nil {
		return "", err
	}
	a.cache.Set(ctx, key, reply)
	return reply, nil
}

func answerKey(question string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(norm))
	return "support:answer:" + hex.EncodeToString(sum[:])
}
