// Package burnrate folds llm_end frames into running cost totals and derives
// a smoothed hourly burn rate, trend and projections from a rolling window.
package burnrate

import (
	"sort"
	"sync"
	"time"

	"github.com/nixlim/hva-top/internal/frame"
)

// windowDuration is the rolling window used for rate calculations.
const windowDuration = 5 * time.Minute

// unknownModel labels calls whose frame carried no model name.
const unknownModel = "unknown"

type modelTotals struct {
	calls int
	cost  float64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the clock used to timestamp folded costs.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker accumulates spend reported on the channel. All methods are safe
// for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	thresholds Thresholds
	now        func() time.Time

	total    float64
	calls    int
	perModel map[string]*modelTotals
	samples  []costSample
	baseline Baseline
}

// NewTracker creates a Tracker with the given color thresholds.
func NewTracker(thresholds Thresholds, opts ...Option) *Tracker {
	t := &Tracker{
		thresholds: thresholds,
		now:        time.Now,
		perModel:   make(map[string]*modelTotals),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fold applies one frame. Only llm_end frames carry cost; a missing cost
// counts as zero.
func (t *Tracker) Fold(f frame.Frame) {
	if f.Type != frame.TypeLLMEnd {
		return
	}
	cost := f.CostOrZero()
	if cost < 0 {
		cost = 0
	}
	model := f.Model
	if model == "" {
		model = unknownModel
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.total += cost
	t.calls++
	mt, ok := t.perModel[model]
	if !ok {
		mt = &modelTotals{}
		t.perModel[model] = mt
	}
	mt.calls++
	mt.cost += cost
	t.record(now)
}

// SetBaseline replaces the historical totals added to TotalCost.
func (t *Tracker) SetBaseline(b Baseline) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline = b
}

// Compute returns the burn rate as of now. It is meant to be called on
// every refresh tick so that the rate decays while nothing is spent.
func (t *Tracker) Compute(now time.Time) BurnRate {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.record(now)

	hourlyRate := t.rate(now.Add(-windowDuration), now)
	return BurnRate{
		TotalCost:         t.baseline.TotalCost + t.total,
		SessionCost:       t.total,
		Calls:             t.calls,
		HourlyRate:        hourlyRate,
		Trend:             t.trend(now),
		PerModel:          t.computePerModel(hourlyRate),
		DailyProjection:   hourlyRate * 24,
		MonthlyProjection: hourlyRate * 720,
		BaselineCost:      t.baseline.TotalCost,
		BaselineTokens:    t.baseline.TotalTokens,
		BaselineDays:      t.baseline.Days,
	}
}

// record appends a cumulative sample and drops samples that are too old to
// matter for either trend window.
func (t *Tracker) record(now time.Time) {
	t.samples = append(t.samples, costSample{cost: t.total, at: now})
	cutoff := now.Add(-2 * windowDuration)
	n := 0
	for _, s := range t.samples {
		if !s.at.Before(cutoff) {
			t.samples[n] = s
			n++
		}
	}
	t.samples = t.samples[:n]
}

// rate is the hourly spend between from and to. The starting point is the
// last sample at or before from, or the first one after it when the history
// is shorter than the window.
func (t *Tracker) rate(from, to time.Time) float64 {
	var start, end *costSample
	for i := range t.samples {
		s := &t.samples[i]
		if s.at.After(to) {
			continue
		}
		if !s.at.After(from) {
			if start == nil || !s.at.Before(start.at) {
				start = s
			}
		}
		if end == nil || !s.at.Before(end.at) {
			end = s
		}
	}
	if start == nil {
		for i := range t.samples {
			s := &t.samples[i]
			if s.at.After(from) && !s.at.After(to) && (start == nil || s.at.Before(start.at)) {
				start = s
			}
		}
	}
	if start == nil || end == nil {
		return 0
	}

	elapsed := end.at.Sub(start.at)
	if elapsed <= 0 {
		return 0
	}
	diff := end.cost - start.cost
	if diff < 0 {
		return 0
	}
	return diff / elapsed.Hours()
}

// trend compares the current window's rate against the previous window's.
func (t *Tracker) trend(now time.Time) TrendDirection {
	currentStart := now.Add(-windowDuration)
	current := t.rate(currentStart, now)
	previous := t.rate(now.Add(-2*windowDuration), currentStart)

	if previous == 0 && current == 0 {
		return TrendFlat
	}
	// Small epsilon to avoid jitter.
	diff := current - previous
	if diff > 0.001 {
		return TrendUp
	}
	if diff < -0.001 {
		return TrendDown
	}
	return TrendFlat
}

// computePerModel splits the hourly rate across models in proportion to
// their share of session spend. Results are sorted by cost descending.
func (t *Tracker) computePerModel(hourlyRate float64) []ModelBurnRate {
	result := make([]ModelBurnRate, 0, len(t.perModel))
	for model, mt := range t.perModel {
		var modelHourly float64
		if t.total > 0 {
			modelHourly = (mt.cost / t.total) * hourlyRate
		}
		result = append(result, ModelBurnRate{
			Model:      model,
			Calls:      mt.calls,
			HourlyRate: modelHourly,
			TotalCost:  mt.cost,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalCost != result[j].TotalCost {
			return result[i].TotalCost > result[j].TotalCost
		}
		return result[i].Model < result[j].Model
	})
	return result
}

// ColorForRate returns the display color for the given hourly rate
// based on the tracker's configured thresholds.
func (t *Tracker) ColorForRate(hourlyRate float64) RateColor {
	t.mu.Lock()
	defer t.mu.Unlock()

	return colorForRate(hourlyRate, t.thresholds)
}

// colorForRate is the pure function for threshold comparison.
func colorForRate(hourlyRate float64, th Thresholds) RateColor {
	switch {
	case hourlyRate < th.GreenBelow:
		return ColorGreen
	case hourlyRate < th.YellowBelow:
		return ColorYellow
	default:
		return ColorRed
	}
}
