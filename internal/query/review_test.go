package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueForReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := t0.Add(10 * 24 * time.Hour)

	never := f.concept(t, "never reviewed", "x")
	stale := f.concept(t, "reviewed 4 days ago", "x")
	recent := f.concept(t, "reviewed 1 hour ago", "x")
	f.review(t, stale, now.Add(-4*24*time.Hour))
	f.review(t, recent, now.Add(-time.Hour))

	f.clock.Set(now)
	fresh := f.concept(t, "fresh", "x")

	f.clock.Set(now)
	due, err := f.engine.DueForReview(ctx, 3*24*time.Hour, 0)
	require.NoError(t, err)

	ids := make([]int64, 0, len(due))
	for _, c := range due {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{never, fresh, stale}, ids, "never-reviewed first, then oldest review")
	assert.NotContains(t, ids, recent)
}

func TestDueForReview_DefaultStaleness(t *testing.T) {
	f := newFixture(t)
	now := t0.Add(10 * 24 * time.Hour)

	twoDays := f.concept(t, "two days", "x")
	fourDays := f.concept(t, "four days", "x")
	f.review(t, twoDays, now.Add(-48*time.Hour))
	f.review(t, fourDays, now.Add(-96*time.Hour))

	f.clock.Set(now)
	due, err := f.engine.DueForReview(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"four days"}, names(due))
}

func TestDueForReview_Limit(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		f.concept(t, "pending", "x")
	}

	due, err := f.engine.DueForReview(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestDueForReview_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.DueForReview(context.Background(), -time.Hour, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.engine.DueForReview(context.Background(), 0, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDueForReview_Empty(t *testing.T) {
	f := newFixture(t)

	due, err := f.engine.DueForReview(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, due)
	assert.Empty(t, due)
}
