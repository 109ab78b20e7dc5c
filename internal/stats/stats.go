// Package stats aggregates link and click data for reporting.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
)

// DefaultWindowDays is used when a non-positive window is requested.
const DefaultWindowDays = 30

const dateLayout = "2006-01-02"

// Aggregator computes read-only statistics from the store.
type Aggregator struct {
	store storage.Store
	now   func() time.Time
}

func NewAggregator(store storage.Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// WithClock returns a copy of a that reads the current time from now.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	cp := *a
	cp.now = now
	return &cp
}

// UserSummary totals the links of ownerID. AverageClicks is rounded to one
// decimal place and is 0 when the owner has no links.
func (a *Aggregator) UserSummary(ctx context.Context, ownerID string) (*model.StatsSummary, error) {
	links, err := a.store.QueryLinks(ctx, model.LinkFilter{OwnerID: ownerID})
	if err != nil {
		return nil, degraded(err)
	}

	s := &model.StatsSummary{TotalLinks: int64(len(links))}
	for _, l := range links {
		s.TotalClicks += l.ClickCount
		if l.Active {
			s.ActiveLinks++
		}
	}
	if s.TotalLinks > 0 {
		s.AverageClicks = round1(float64(s.TotalClicks) / float64(s.TotalLinks))
	}
	return s, nil
}

// ClicksOverTime counts the clicks of linkID per UTC calendar day over the
// last windowDays days, ascending. Days without clicks are omitted.
func (a *Aggregator) ClicksOverTime(ctx context.Context, linkID string, windowDays int) ([]model.DailyClicks, error) {
	from, to := a.Window(windowDays)
	evs, err := a.store.QueryClicks(ctx, model.ClickFilter{LinkID: linkID, From: from, To: to})
	if err != nil {
		return nil, degraded(err)
	}

	counts := make(map[string]int64)
	for _, e := range evs {
		counts[e.Timestamp.UTC().Format(dateLayout)]++
	}
	series := make([]model.DailyClicks, 0, len(counts))
	for d, n := range counts {
		series = append(series, model.DailyClicks{Date: d, Count: n})
	}
	// YYYY-MM-DD sorts lexically in date order.
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series, nil
}

// Window returns the [from, to] range ClicksOverTime uses for windowDays.
func (a *Aggregator) Window(windowDays int) (time.Time, time.Time) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	to := a.now().UTC()
	return to.Add(-time.Duration(windowDays) * 24 * time.Hour), to
}

// FillGaps returns series with a zero entry for every UTC day in [from, to]
// that has no clicks.
func FillGaps(series []model.DailyClicks, from, to time.Time) []model.DailyClicks {
	counts := make(map[string]int64, len(series))
	for _, d := range series {
		counts[d.Date] = d.Count
	}

	day := truncateDay(from)
	last := truncateDay(to)
	var out []model.DailyClicks
	for !day.After(last) {
		key := day.Format(dateLayout)
		out = append(out, model.DailyClicks{Date: key, Count: counts[key]})
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func degraded(err error) error {
	return fmt.Errorf("%w: %w", model.ErrDegradedData, err)
}
