package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps one course's rule set in memory. Batch deletes mirror the
// real repository's all-or-nothing contract.
type fakeRepo struct {
	rs *RuleSet
}

func newFakeRepo(rs *RuleSet) *fakeRepo {
	return &fakeRepo{rs: rs}
}

func (f *fakeRepo) LoadPricingData(_ context.Context, _ string) (*RuleSet, error) {
	return f.rs, nil
}

func (f *fakeRepo) DeleteTimeBands(_ context.Context, _ string, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []*TimeBand
	for _, b := range f.rs.TimeBands {
		if !drop[b.ID] {
			kept = append(kept, b)
		}
	}
	f.rs.TimeBands = kept
	return nil
}

func (f *fakeRepo) DeletePriceRules(_ context.Context, _ string, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []*PriceRule
	for _, r := range f.rs.PriceRules {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	f.rs.PriceRules = kept
	return nil
}

func (f *fakeRepo) CreateSeason(context.Context, *Season) error       { return nil }
func (f *fakeRepo) UpdateSeason(context.Context, *Season) error       { return nil }
func (f *fakeRepo) DeleteSeason(context.Context, string, string) error { return nil }
func (f *fakeRepo) CreateTimeBand(context.Context, *TimeBand) error   { return nil }
func (f *fakeRepo) UpdateTimeBand(context.Context, *TimeBand) error   { return nil }
func (f *fakeRepo) CreatePriceRule(context.Context, *PriceRule) error { return nil }
func (f *fakeRepo) UpdatePriceRule(context.Context, *PriceRule) error { return nil }
func (f *fakeRepo) CreateOverride(context.Context, *SpecialOverride) error { return nil }
func (f *fakeRepo) UpdateOverride(context.Context, *SpecialOverride) error { return nil }
func (f *fakeRepo) DeleteOverride(context.Context, string, string) error   { return nil }
func (f *fakeRepo) UpsertBaseProduct(context.Context, *BaseProduct) error  { return nil }
func (f *fakeRepo) ReplaceCanonicalBands(context.Context, string, []CanonicalBand) error {
	return nil
}

func band(id, label string, start, end int) *TimeBand {
	return &TimeBand{ID: id, CourseID: "course-1", Label: label, StartMinute: start, EndMinute: end, Active: true}
}

func TestDedupeTimeBands(t *testing.T) {
	ctx := context.Background()

	t.Run("identical bands collapse to the first seen", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			TimeBands: []*TimeBand{
				band("b1", "Morning", 360, 720),
				band("b2", "morning", 360, 720),
				band("b3", "MORNING ", 360, 720),
				band("b4", "Afternoon", 720, 1080),
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupeTimeBands(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		require.Len(t, repo.rs.TimeBands, 2)
		assert.Equal(t, "b1", repo.rs.TimeBands[0].ID)
		assert.Equal(t, "b4", repo.rs.TimeBands[1].ID)
	})

	t.Run("same label with different window is not a duplicate", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			TimeBands: []*TimeBand{
				band("b1", "Morning", 360, 720),
				band("b2", "Morning", 360, 660),
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupeTimeBands(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})

	t.Run("canonical allowlist drops non-canonical bands", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			TimeBands: []*TimeBand{
				band("b1", "Morning", 360, 720),
				band("b2", "Morning", 360, 720), // duplicate of canonical
				band("b3", "Twilight", 960, 1200),
			},
			CanonicalBands: []CanonicalBand{
				{CourseID: "course-1", Label: "Morning", StartMinute: 360, EndMinute: 720},
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupeTimeBands(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		require.Len(t, repo.rs.TimeBands, 1)
		assert.Equal(t, "b1", repo.rs.TimeBands[0].ID)
	})

	t.Run("idempotent", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			TimeBands: []*TimeBand{
				band("b1", "Morning", 360, 720),
				band("b2", "Morning", 360, 720),
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupeTimeBands(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		removed, err = svc.DedupeTimeBands(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})
}

func dupRule(id, name string, priority int, updatedAt time.Time) *PriceRule {
	return &PriceRule{
		ID: id, CourseID: "course-1", Name: name,
		PriceType: PriceDelta, PriceValue: 10,
		Priority: priority, Active: true, UpdatedAt: updatedAt,
	}
}

func TestDedupePriceRules(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("n identical rules collapse to one", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			PriceRules: []*PriceRule{
				dupRule("r1", "Weekend Surge", 5, now),
				dupRule("r2", "weekend  surge", 5, now),
				dupRule("r3", "WEEKEND SURGE", 5, now),
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupePriceRules(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		require.Len(t, repo.rs.PriceRules, 1)
		assert.Equal(t, "r1", repo.rs.PriceRules[0].ID)
	})

	t.Run("behaviorally different rules survive", func(t *testing.T) {
		a := dupRule("r1", "Surge", 5, now)
		b := dupRule("r2", "Surge", 5, now)
		b.PriceValue = 12 // differs

		repo := newFakeRepo(&RuleSet{CourseID: "course-1", PriceRules: []*PriceRule{a, b}})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupePriceRules(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})

	t.Run("canonical courses keep the dominant rule per band", func(t *testing.T) {
		bandID := "b1"
		r1 := dupRule("r1", "Morning A", 5, now)
		r1.Filters.TimeBandID = &bandID
		r2 := dupRule("r2", "Morning B", 9, now)
		r2.Filters.TimeBandID = &bandID
		r3 := dupRule("r3", "Bandless", 1, now) // no band: always kept

		repo := newFakeRepo(&RuleSet{
			CourseID:   "course-1",
			PriceRules: []*PriceRule{r1, r2, r3},
			CanonicalBands: []CanonicalBand{
				{CourseID: "course-1", Label: "Morning", StartMinute: 360, EndMinute: 720},
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupePriceRules(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		ids := []string{}
		for _, r := range repo.rs.PriceRules {
			ids = append(ids, r.ID)
		}
		assert.ElementsMatch(t, []string{"r2", "r3"}, ids)
	})
}

func TestDedupePriceRulesByName(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("highest_priority keeps the strongest rule", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			PriceRules: []*PriceRule{
				dupRule("r1", "Early Bird", 3, now),
				dupRule("r2", "early bird", 8, now.Add(-time.Hour)),
				dupRule("r3", "Other", 1, now),
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupePriceRulesByName(ctx, "course-1", StrategyHighestPriority)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		ids := []string{}
		for _, r := range repo.rs.PriceRules {
			ids = append(ids, r.ID)
		}
		assert.ElementsMatch(t, []string{"r2", "r3"}, ids)
	})

	t.Run("latest keeps the most recently updated rule", func(t *testing.T) {
		repo := newFakeRepo(&RuleSet{
			CourseID: "course-1",
			PriceRules: []*PriceRule{
				dupRule("r1", "Early Bird", 9, now.Add(-time.Hour)),
				dupRule("r2", "early bird", 1, now),
			},
		})
		svc := NewDedupeService(repo)

		removed, err := svc.DedupePriceRulesByName(ctx, "course-1", StrategyLatest)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		require.Len(t, repo.rs.PriceRules, 1)
		assert.Equal(t, "r2", repo.rs.PriceRules[0].ID)
	})

	t.Run("unknown strategy is rejected", func(t *testing.T) {
		svc := NewDedupeService(newFakeRepo(&RuleSet{CourseID: "course-1"}))
		_, err := svc.DedupePriceRulesByName(ctx, "course-1", "newest_first")
		assert.Error(t, err)
	})
}
