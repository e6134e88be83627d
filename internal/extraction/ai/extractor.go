// internal/extraction/ai/extractor.go
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"lender-match-workers/internal/common/logger"
	"lender-match-workers/internal/criteria"
	"lender-match-workers/internal/extraction/textprep"
)

// ErrAllProvidersFailed reports that every configured backend either errored
// or returned unparseable output.
var ErrAllProvidersFailed = errors.New("all extraction providers failed")

const defaultRequestTimeout = 45 * time.Second

// Extractor runs the provider chain over condensed document text. Providers
// are tried in order; the first parseable result wins and is cached by the
// hash of the original (unprepared) text.
type Extractor struct {
	providers []Provider
	cache     Cache
	logger    logger.Logger
	timeout   time.Duration
}

// NewExtractor builds an Extractor. A nil cache disables caching; a
// non-positive timeout falls back to the default per-request timeout.
func NewExtractor(providers []Provider, cache Cache, log logger.Logger, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Extractor{providers: providers, cache: cache, logger: log, timeout: timeout}
}

// ExtractPrograms condenses text, walks the provider chain, and returns the
// first normalized program list. The cache key is the hash of the raw input
// so byte-identical documents short-circuit before any provider call.
func (e *Extractor) ExtractPrograms(ctx context.Context, text string) ([]criteria.ExtractedProgram, error) {
	if len(e.providers) == 0 {
		return nil, ErrAllProvidersFailed
	}

	key := hashText(text)
	if e.cache != nil {
		if programs, ok := e.cache.Get(ctx, key); ok {
			e.logger.Debug("extraction cache hit", map[string]interface{}{"key": key})
			return programs, nil
		}
	}

	prepared := textprep.Prepare(text)
	prompt := fmt.Sprintf("%s\n\n---\n\nDocument text:\n\n%s", extractionPrompt, prepared)

	for _, provider := range e.providers {
		programs, err := e.tryProvider(ctx, provider, prompt)
		if err != nil {
			e.logger.Warn("extraction provider failed", map[string]interface{}{
				"provider": provider.Name(),
				"error":    err.Error(),
			})
			continue
		}
		if e.cache != nil {
			e.cache.Put(ctx, key, programs)
		}
		e.logger.Info("extraction provider succeeded", map[string]interface{}{
			"provider": provider.Name(),
			"programs": len(programs),
		})
		return programs, nil
	}
	return nil, ErrAllProvidersFailed
}

func (e *Extractor) tryProvider(ctx context.Context, provider Provider, prompt string) ([]criteria.ExtractedProgram, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := provider.Complete(reqCtx, prompt)
	if err != nil {
		return nil, err
	}
	rawPrograms, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	return normalizePrograms(rawPrograms)
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
