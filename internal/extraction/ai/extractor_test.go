// internal/extraction/ai/extractor_test.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lender-match-workers/internal/common/logger"
	"lender-match-workers/internal/criteria"
)

// fakeProvider replays a canned response (or error) and counts calls.
type fakeProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const validResponse = `{
  "programs": [
    {
      "name": "Tier 1",
      "tier": "1",
      "criteria": {
        "fico": {"min_score": 720},
        "paynet": {"min_score": 70},
        "loan_amount": {"min_amount": 10000, "max_amount": 250000},
        "time_in_business": {"min_years": 3}
      }
    }
  ]
}`

// ==========================
// Response Parsing
// ==========================

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		count   int
	}{
		{name: "bare json", raw: validResponse, count: 1},
		{name: "markdown fenced", raw: "```json\n" + validResponse + "\n```", count: 1},
		{name: "prose around json", raw: "Here is the result:\n" + validResponse + "\nLet me know!", count: 1},
		{name: "empty programs", raw: `{"programs": []}`, wantErr: true},
		{name: "not json", raw: "I could not process this document.", wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			programs, err := parseResponse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, programs, tt.count)
		})
	}
}

func TestNormalizePrograms(t *testing.T) {
	t.Run("camelCase keys and numeric tier", func(t *testing.T) {
		programs, err := normalizePrograms([]map[string]interface{}{
			{
				"name": "Tier 1",
				"tier": float64(1),
				"criteria": map[string]interface{}{
					"fico":       map[string]interface{}{"minScore": float64(700)},
					"loanAmount": map[string]interface{}{"minAmount": float64(10000), "maxAmount": float64(100000)},
				},
			},
		})
		require.NoError(t, err)
		require.Len(t, programs, 1)
		require.NotNil(t, programs[0].Tier)
		assert.Equal(t, "1", *programs[0].Tier)
		require.NotNil(t, programs[0].Criteria.Fico)
		assert.Equal(t, 700, *programs[0].Criteria.Fico.MinScore)
		assert.Equal(t, 10000, programs[0].Criteria.LoanAmount.MinAmount)
	})

	t.Run("missing loan amount gets the canonical default", func(t *testing.T) {
		programs, err := normalizePrograms([]map[string]interface{}{
			{"name": "A", "criteria": map[string]interface{}{"fico": map[string]interface{}{"min_score": float64(680)}}},
		})
		require.NoError(t, err)
		require.NotNil(t, programs[0].Criteria.LoanAmount)
		assert.Equal(t, 5000, programs[0].Criteria.LoanAmount.MinAmount)
		assert.Equal(t, 500000, programs[0].Criteria.LoanAmount.MaxAmount)
	})

	t.Run("missing name defaults", func(t *testing.T) {
		programs, err := normalizePrograms([]map[string]interface{}{
			{"criteria": map[string]interface{}{}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Standard Program", programs[0].Name)
		assert.Nil(t, programs[0].Tier)
	})
}

// ==========================
// Caches
// ==========================

func cachedPrograms() []criteria.ExtractedProgram {
	return []criteria.ExtractedProgram{{
		Name:     "Tier 1",
		Tier:     criteria.StringPtr("1"),
		Criteria: criteria.CriteriaSet{LoanAmount: criteria.DefaultLoanAmount()},
	}}
}

func TestMemoryCache_TTL(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(30 * time.Minute)
	cache.now = func() time.Time { return now }

	cache.Put(context.Background(), "doc", cachedPrograms())

	got, ok := cache.Get(context.Background(), "doc")
	require.True(t, ok)
	assert.Equal(t, "Tier 1", got[0].Name)

	now = now.Add(31 * time.Minute)
	_, ok = cache.Get(context.Background(), "doc")
	assert.False(t, ok)
}

func TestMemoryCache_EvictsOldestInsert(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(time.Hour)
	cache.now = func() time.Time { return now }

	for i := 0; i < memoryCacheMaxEntries; i++ {
		cache.Put(context.Background(), fmt.Sprintf("doc-%02d", i), cachedPrograms())
		now = now.Add(time.Second)
	}
	cache.Put(context.Background(), "doc-new", cachedPrograms())

	_, ok := cache.Get(context.Background(), "doc-00")
	assert.False(t, ok, "oldest insert should be evicted")
	_, ok = cache.Get(context.Background(), "doc-new")
	assert.True(t, ok)
	_, ok = cache.Get(context.Background(), "doc-01")
	assert.True(t, ok)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client, time.Minute)

	_, ok := cache.Get(context.Background(), "doc")
	assert.False(t, ok)

	cache.Put(context.Background(), "doc", cachedPrograms())
	got, ok := cache.Get(context.Background(), "doc")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Tier 1", got[0].Name)
	require.NotNil(t, got[0].Criteria.LoanAmount)
	assert.Equal(t, 5000, got[0].Criteria.LoanAmount.MinAmount)
}

// ==========================
// Provider Chain
// ==========================

func TestExtractor_FirstProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "gemini", response: validResponse}
	secondary := &fakeProvider{name: "claude", response: validResponse}
	ex := NewExtractor([]Provider{primary, secondary}, nil, logger.NewNoOpLogger(), time.Second)

	programs, err := ex.ExtractPrograms(context.Background(), "FICO 720 minimum")
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "Tier 1", programs[0].Name)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "fallback must not run when primary succeeds")
}

func TestExtractor_FallsBackOnError(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: errors.New("quota exceeded")}
	secondary := &fakeProvider{name: "claude", response: validResponse}
	ex := NewExtractor([]Provider{primary, secondary}, nil, logger.NewNoOpLogger(), time.Second)

	programs, err := ex.ExtractPrograms(context.Background(), "FICO 720 minimum")
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestExtractor_FallsBackOnUnparseableOutput(t *testing.T) {
	primary := &fakeProvider{name: "gemini", response: "not json at all"}
	secondary := &fakeProvider{name: "claude", response: validResponse}
	ex := NewExtractor([]Provider{primary, secondary}, nil, logger.NewNoOpLogger(), time.Second)

	programs, err := ex.ExtractPrograms(context.Background(), "FICO 720 minimum")
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, 1, secondary.calls)
}

func TestExtractor_AllProvidersFailed(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: errors.New("down")}
	secondary := &fakeProvider{name: "claude", response: "garbage"}
	ex := NewExtractor([]Provider{primary, secondary}, nil, logger.NewNoOpLogger(), time.Second)

	_, err := ex.ExtractPrograms(context.Background(), "FICO 720 minimum")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestExtractor_CacheShortCircuitsProviders(t *testing.T) {
	provider := &fakeProvider{name: "gemini", response: validResponse}
	cache := NewMemoryCache(time.Hour)
	ex := NewExtractor([]Provider{provider}, cache, logger.NewNoOpLogger(), time.Second)

	_, err := ex.ExtractPrograms(context.Background(), "FICO 720 minimum")
	require.NoError(t, err)
	_, err = ex.ExtractPrograms(context.Background(), "FICO 720 minimum")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "second identical document must be served from cache")

	_, err = ex.ExtractPrograms(context.Background(), "FICO 640 minimum")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls, "different document must miss the cache")
}
