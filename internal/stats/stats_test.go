package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/stats"
	"github.com/Totarae/linkgate/internal/storage/memory"
	"github.com/Totarae/linkgate/internal/storage/mocks"
	"github.com/Totarae/linkgate/internal/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUserSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	agg := stats.NewAggregator(store)

	s, err := agg.UserSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StatsSummary{}, *s)

	for i, clicks := range []int64{3, 0, 1} {
		l := storetest.NewLink("u1", []string{"aaa", "bbb", "ccc"}[i], time.Now())
		l.ClickCount = clicks
		l.Active = i != 1
		_, err := store.InsertLinkIfAbsent(ctx, l)
		require.NoError(t, err)
	}
	other := storetest.NewLink("u2", "ddd", time.Now())
	other.ClickCount = 100
	_, err = store.InsertLinkIfAbsent(ctx, other)
	require.NoError(t, err)

	s, err = agg.UserSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.TotalLinks)
	assert.Equal(t, int64(4), s.TotalClicks)
	assert.Equal(t, int64(2), s.ActiveLinks)
	assert.Equal(t, 1.3, s.AverageClicks)
}

func TestClicksOverTime_Sparse(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	agg := stats.NewAggregator(store).WithClock(func() time.Time { return now })

	day0 := now.Add(-6 * 24 * time.Hour) // 2024-05-04
	day3 := now.Add(-3 * 24 * time.Hour) // 2024-05-07
	for _, ts := range []time.Time{day3, day0, day0.Add(time.Hour), day3.Add(2 * time.Hour), day3.Add(3 * time.Hour)} {
		require.NoError(t, store.AppendClick(ctx, &model.ClickEvent{LinkID: "L1", Timestamp: ts}))
	}
	// Outside the window and on another link.
	require.NoError(t, store.AppendClick(ctx, &model.ClickEvent{LinkID: "L1", Timestamp: now.Add(-8 * 24 * time.Hour)}))
	require.NoError(t, store.AppendClick(ctx, &model.ClickEvent{LinkID: "L2", Timestamp: day0}))

	series, err := agg.ClicksOverTime(ctx, "L1", 7)
	require.NoError(t, err)
	assert.Equal(t, []model.DailyClicks{
		{Date: "2024-05-04", Count: 2},
		{Date: "2024-05-07", Count: 3},
	}, series)

	from, to := agg.Window(7)
	for i, d := range series {
		day, err := time.Parse("2006-01-02", d.Date)
		require.NoError(t, err)
		assert.False(t, day.After(to))
		assert.False(t, day.AddDate(0, 0, 1).Before(from))
		if i > 0 {
			assert.Less(t, series[i-1].Date, d.Date)
		}
	}
}

func TestClicksOverTime_UTCBuckets(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	agg := stats.NewAggregator(store).WithClock(func() time.Time { return now })

	// 23:30 at UTC-5 on the 8th is the 9th in UTC.
	loc := time.FixedZone("EST", -5*3600)
	require.NoError(t, store.AppendClick(ctx, &model.ClickEvent{LinkID: "L1", Timestamp: time.Date(2024, 5, 8, 23, 30, 0, 0, loc)}))

	series, err := agg.ClicksOverTime(ctx, "L1", 0)
	require.NoError(t, err)
	assert.Equal(t, []model.DailyClicks{{Date: "2024-05-09", Count: 1}}, series)
}

func TestClicksOverTime_DefaultWindow(t *testing.T) {
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	agg := stats.NewAggregator(memory.New()).WithClock(func() time.Time { return now })
	from, to := agg.Window(-1)
	assert.Equal(t, now, to)
	assert.Equal(t, now.AddDate(0, 0, -stats.DefaultWindowDays), from)
}

func TestDegradedData(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	agg := stats.NewAggregator(store)
	down := model.Unavailable("query", errors.New("timeout"))

	store.EXPECT().QueryLinks(gomock.Any(), gomock.Any()).Return(nil, down)
	_, err := agg.UserSummary(context.Background(), "u1")
	assert.ErrorIs(t, err, model.ErrDegradedData)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	store.EXPECT().QueryClicks(gomock.Any(), gomock.Any()).Return(nil, down)
	_, err = agg.ClicksOverTime(context.Background(), "L1", 7)
	assert.ErrorIs(t, err, model.ErrDegradedData)
}

func TestFillGaps(t *testing.T) {
	from := time.Date(2024, 5, 4, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 7, 1, 0, 0, 0, time.UTC)
	got := stats.FillGaps([]model.DailyClicks{
		{Date: "2024-05-04", Count: 2},
		{Date: "2024-05-07", Count: 3},
	}, from, to)

	assert.Equal(t, []model.DailyClicks{
		{Date: "2024-05-04", Count: 2},
		{Date: "2024-05-05", Count: 0},
		{Date: "2024-05-06", Count: 0},
		{Date: "2024-05-07", Count: 3},
	}, got)
}
