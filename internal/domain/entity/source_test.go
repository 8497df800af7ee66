package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlConfig_Validate_Boundaries(t *testing.T) {
	base := func() CrawlConfig {
		return CrawlConfig{
			Frequency:          "*/5 * * * *",
			MaxHits:            10,
			Enabled:            true,
			MaxDepth:           2,
			RateLimitPerMinute: 60,
		}
	}

	t.Run("accepts rate_limit_per_minute boundaries", func(t *testing.T) {
		for _, v := range []int{1, 300} {
			c := base()
			c.RateLimitPerMinute = v
			require.NoError(t, c.Validate())
		}
	})

	t.Run("rejects rate_limit_per_minute out of range", func(t *testing.T) {
		for _, v := range []int{0, 500} {
			c := base()
			c.RateLimitPerMinute = v
			assert.Error(t, c.Validate())
		}
	})

	t.Run("accepts max_hits boundaries", func(t *testing.T) {
		for _, v := range []int{1, 10000} {
			c := base()
			c.MaxHits = v
			require.NoError(t, c.Validate())
		}
	})

	t.Run("rejects max_hits out of range", func(t *testing.T) {
		for _, v := range []int{0, 20000} {
			c := base()
			c.MaxHits = v
			assert.Error(t, c.Validate())
		}
	})
}

func TestValidateCronExpression(t *testing.T) {
	assert.NoError(t, ValidateCronExpression("*/5 * * * *"))
	assert.NoError(t, ValidateCronExpression("30 5 * * *"))

	for _, bad := range []string{"* * * *", "* * * * * *", "", "not a cron"} {
		assert.Error(t, ValidateCronExpression(bad), "expected rejection for %q", bad)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusIdle, StatusRunning))
	assert.True(t, CanTransition(StatusRunning, StatusCompleted))
	assert.True(t, CanTransition(StatusRunning, StatusBlocked))
	assert.True(t, CanTransition(StatusBlocked, StatusIdle))
	assert.True(t, CanTransition(StatusPaused, StatusIdle))

	assert.False(t, CanTransition(StatusBlocked, StatusRunning))
	assert.False(t, CanTransition(StatusPaused, StatusRunning))
	assert.False(t, CanTransition(StatusIdle, StatusBlocked))
}

func TestSource_Validate(t *testing.T) {
	s := &Source{
		Name:        "Example Blog",
		URL:         "https://example.com/feed",
		SourceType:  SourceTypeRSS,
		ContentType: ContentTypeRSS,
	}
	require.NoError(t, s.Validate())
	assert.Equal(t, StatusIdle, s.Status)

	s.SourceType = "bogus"
	assert.Error(t, s.Validate())
}
