package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() *Engine {
	return NewEngineWithClock(func() time.Time { return testNow })
}

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func baseRuleSet(base float64) *RuleSet {
	return &RuleSet{
		CourseID:    "course-1",
		BaseProduct: &BaseProduct{CourseID: "course-1", GreenFeeBaseUSD: base},
	}
}

// Saturday June 7 2025, 10:00, 2 players.
func baseInput() CalcInput {
	return CalcInput{
		CourseID: "course-1",
		Date:     day("2025-06-07"),
		Minute:   10 * 60,
		Players:  2,
	}
}

func TestEngineBasePrice(t *testing.T) {
	e := fixedClock()

	t.Run("base product supplies the starting price", func(t *testing.T) {
		res, err := e.Calculate(baseRuleSet(80), baseInput())
		require.NoError(t, err)
		assert.Equal(t, 80.0, res.BasePrice)
		assert.Equal(t, 80.0, res.FinalPricePerPlayer)
		assert.Equal(t, 160.0, res.TotalPrice)
		assert.Empty(t, res.AppliedRules)
	})

	t.Run("fallback base is used when the course has no base product", func(t *testing.T) {
		in := baseInput()
		in.FallbackBase = fptr(55)
		res, err := e.Calculate(&RuleSet{CourseID: "course-1"}, in)
		require.NoError(t, err)
		assert.Equal(t, 55.0, res.FinalPricePerPlayer)
	})

	t.Run("no base and no fallback is an error", func(t *testing.T) {
		_, err := e.Calculate(&RuleSet{CourseID: "course-1"}, baseInput())
		assert.ErrorIs(t, err, ErrNoBasePrice)
	})
}

func TestEngineFoldOrderAndTypes(t *testing.T) {
	e := fixedClock()
	rs := baseRuleSet(100)
	rs.PriceRules = []*PriceRule{
		{ID: "r-mult", Name: "weekend surge", PriceType: PriceMultiplier, PriceValue: 1.2, Priority: 10, Active: true, UpdatedAt: testNow},
		{ID: "r-delta", Name: "cart bundle", PriceType: PriceDelta, PriceValue: 15, Priority: 20, Active: true, UpdatedAt: testNow},
		{ID: "r-fixed", Name: "member rate", PriceType: PriceFixed, PriceValue: 90, Priority: 30, Active: true, UpdatedAt: testNow},
	}

	res, err := e.Calculate(rs, baseInput())
	require.NoError(t, err)

	// Priority descending: fixed(90) -> +15 -> *1.2
	require.Len(t, res.AppliedRules, 3)
	assert.Equal(t, "r-fixed", res.AppliedRules[0].RuleID)
	assert.Equal(t, 90.0, res.AppliedRules[0].ResultPrice)
	assert.Equal(t, "r-delta", res.AppliedRules[1].RuleID)
	assert.Equal(t, 105.0, res.AppliedRules[1].ResultPrice)
	assert.Equal(t, "r-mult", res.AppliedRules[2].RuleID)
	assert.InDelta(t, 126.0, res.AppliedRules[2].ResultPrice, 1e-9)
	assert.InDelta(t, 126.0, res.FinalPricePerPlayer, 1e-9)
}

func TestEnginePriorityTieBreak(t *testing.T) {
	e := fixedClock()
	rs := baseRuleSet(100)
	older := testNow.Add(-time.Hour)
	rs.PriceRules = []*PriceRule{
		{ID: "r-old", Name: "stale fixed", PriceType: PriceFixed, PriceValue: 70, Priority: 10, Active: true, UpdatedAt: older},
		{ID: "r-new", Name: "fresh fixed", PriceType: PriceFixed, PriceValue: 85, Priority: 10, Active: true, UpdatedAt: testNow},
	}

	res, err := e.Calculate(rs, baseInput())
	require.NoError(t, err)

	// Same priority: most recently updated applies first, the stale fixed
	// rule then overwrites it last in the fold.
	require.Len(t, res.AppliedRules, 2)
	assert.Equal(t, "r-new", res.AppliedRules[0].RuleID)
	assert.Equal(t, "r-old", res.AppliedRules[1].RuleID)
	assert.Equal(t, 70.0, res.FinalPricePerPlayer)
}

func TestEngineInputOrderIndependence(t *testing.T) {
	e := fixedClock()

	rules := []*PriceRule{
		{ID: "a", Name: "a", PriceType: PriceFixed, PriceValue: 90, Priority: 5, Active: true, UpdatedAt: testNow},
		{ID: "b", Name: "b", PriceType: PriceDelta, PriceValue: -10, Priority: 4, Active: true, UpdatedAt: testNow},
		{ID: "c", Name: "c", PriceType: PriceMultiplier, PriceValue: 1.5, Priority: 3, Active: true, UpdatedAt: testNow},
		{ID: "d", Name: "d", PriceType: PriceDelta, PriceValue: 2, Priority: 2, Active: true, UpdatedAt: testNow},
	}

	want := 0.0
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]*PriceRule, len(rules))
		copy(shuffled, rules)
		rng.Shuffle(len(shuffled), func(x, y int) { shuffled[x], shuffled[y] = shuffled[y], shuffled[x] })

		rs := baseRuleSet(100)
		rs.PriceRules = shuffled
		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		if i == 0 {
			want = res.FinalPricePerPlayer
		}
		assert.Equal(t, want, res.FinalPricePerPlayer, "storage order must not affect the result")
	}
}

func TestEnginePerRuleClamp(t *testing.T) {
	e := fixedClock()
	rs := baseRuleSet(100)
	rs.PriceRules = []*PriceRule{
		{ID: "r1", Name: "surge", PriceType: PriceMultiplier, PriceValue: 3, Priority: 20, Active: true, UpdatedAt: testNow, MaxPrice: fptr(150)},
		{ID: "r2", Name: "late deal", PriceType: PriceDelta, PriceValue: -200, Priority: 10, Active: true, UpdatedAt: testNow, MinPrice: fptr(25)},
	}

	res, err := e.Calculate(rs, baseInput())
	require.NoError(t, err)

	// 100*3=300 clamped to 150 immediately, then 150-200 clamped to 25.
	require.Len(t, res.AppliedRules, 2)
	assert.Equal(t, 150.0, res.AppliedRules[0].ResultPrice)
	assert.Equal(t, 25.0, res.AppliedRules[1].ResultPrice)
	assert.Equal(t, 25.0, res.FinalPricePerPlayer)
}

func TestEngineRoundToLastRuleOnly(t *testing.T) {
	e := fixedClock()

	t.Run("last rule's step rounds the final price", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "first", PriceType: PriceDelta, PriceValue: 3, Priority: 20, Active: true, UpdatedAt: testNow, RoundTo: fptr(10)},
			{ID: "r2", Name: "last", PriceType: PriceMultiplier, PriceValue: 1.13, Priority: 10, Active: true, UpdatedAt: testNow, RoundTo: fptr(5)},
		}
		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)

		// (100+3)*1.13 = 116.39 -> rounded to nearest 5 = 115.
		// The earlier rule's step of 10 is ignored.
		assert.Equal(t, 115.0, res.FinalPricePerPlayer)
		assert.Equal(t, 115.0, res.AppliedRules[1].ResultPrice)
	})

	t.Run("midpoint rounds away from zero", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "half step", PriceType: PriceDelta, PriceValue: 2.5, Priority: 10, Active: true, UpdatedAt: testNow, RoundTo: fptr(5)},
		}
		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		assert.Equal(t, 105.0, res.FinalPricePerPlayer)
	})
}

func TestEngineOverrides(t *testing.T) {
	e := fixedClock()

	t.Run("block override rejects the slot", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.Overrides = []*SpecialOverride{{
			ID: "o1", Name: "club tournament", OverrideType: OverrideBlock, Active: true,
			StartDate: day("2025-06-07"), EndDate: day("2025-06-08"),
		}}
		_, err := e.Calculate(rs, baseInput())
		assert.ErrorIs(t, err, ErrBookingBlocked)
	})

	t.Run("block wins even when a price override also covers the slot", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.Overrides = []*SpecialOverride{
			{ID: "o-price", Name: "holiday rate", OverrideType: OverridePrice, PriceValue: fptr(200), Priority: 99, Active: true, StartDate: day("2025-06-07"), EndDate: day("2025-06-07")},
			{ID: "o-block", Name: "closure", OverrideType: OverrideBlock, Priority: 1, Active: true, StartDate: day("2025-06-07"), EndDate: day("2025-06-07")},
		}
		_, err := e.Calculate(rs, baseInput())
		assert.ErrorIs(t, err, ErrBookingBlocked)
	})

	t.Run("price override replaces the rule fold", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "surge", PriceType: PriceMultiplier, PriceValue: 2, Priority: 10, Active: true, UpdatedAt: testNow},
		}
		rs.Overrides = []*SpecialOverride{{
			ID: "o1", Name: "holiday rate", OverrideType: OverridePrice, PriceValue: fptr(65), Active: true,
			StartDate: day("2025-06-07"), EndDate: day("2025-06-07"),
		}}
		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		require.Len(t, res.AppliedRules, 1)
		assert.Equal(t, "override", res.AppliedRules[0].Type)
		assert.Equal(t, 65.0, res.FinalPricePerPlayer)
	})

	t.Run("highest priority price override wins", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.Overrides = []*SpecialOverride{
			{ID: "o-low", Name: "low", OverrideType: OverridePrice, PriceValue: fptr(40), Priority: 1, Active: true, StartDate: day("2025-06-07"), EndDate: day("2025-06-07")},
			{ID: "o-high", Name: "high", OverrideType: OverridePrice, PriceValue: fptr(75), Priority: 2, Active: true, StartDate: day("2025-06-07"), EndDate: day("2025-06-07")},
		}
		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		assert.Equal(t, 75.0, res.FinalPricePerPlayer)
	})

	t.Run("minute-scoped override only covers its window", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.Overrides = []*SpecialOverride{{
			ID: "o1", Name: "morning closure", OverrideType: OverrideBlock, Active: true,
			StartDate: day("2025-06-07"), EndDate: day("2025-06-07"),
			StartMinute: iptr(6 * 60), EndMinute: iptr(9 * 60),
		}}

		in := baseInput()
		in.Minute = 8 * 60
		_, err := e.Calculate(rs, in)
		assert.ErrorIs(t, err, ErrBookingBlocked)

		in.Minute = 9 * 60 // end is exclusive
		res, err := e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.FinalPricePerPlayer)
	})

	t.Run("inactive override is ignored", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.Overrides = []*SpecialOverride{{
			ID: "o1", Name: "closure", OverrideType: OverrideBlock, Active: false,
			StartDate: day("2025-06-07"), EndDate: day("2025-06-07"),
		}}
		_, err := e.Calculate(rs, baseInput())
		assert.NoError(t, err)
	})
}

func TestEngineSeasonAndBandResolution(t *testing.T) {
	e := fixedClock()
	rs := baseRuleSet(100)
	rs.Seasons = []*Season{
		{ID: "s-low", Name: "shoulder", StartDate: day("2025-01-01"), EndDate: day("2025-12-31"), Priority: 1, Active: true, UpdatedAt: testNow},
		{ID: "s-high", Name: "summer peak", StartDate: day("2025-06-01"), EndDate: day("2025-08-31"), Priority: 5, Active: true, UpdatedAt: testNow},
		{ID: "s-off", Name: "disabled", StartDate: day("2025-06-01"), EndDate: day("2025-08-31"), Priority: 9, Active: false, UpdatedAt: testNow},
	}
	rs.TimeBands = []*TimeBand{
		{ID: "b-all", Label: "All Day", StartMinute: 0, EndMinute: 1440, Active: true},
		{ID: "b-am", Label: "Morning", StartMinute: 6 * 60, EndMinute: 12 * 60, Active: true},
	}
	rs.PriceRules = []*PriceRule{
		{ID: "r-season", Name: "peak season", Filters: RuleFilters{SeasonID: sptr("s-high")}, PriceType: PriceMultiplier, PriceValue: 1.5, Priority: 10, Active: true, UpdatedAt: testNow},
		{ID: "r-band", Name: "morning special", Filters: RuleFilters{TimeBandID: sptr("b-am")}, PriceType: PriceDelta, PriceValue: -20, Priority: 5, Active: true, UpdatedAt: testNow},
	}

	res, err := e.Calculate(rs, baseInput())
	require.NoError(t, err)

	// Highest-priority active season; earliest-start containing band.
	assert.Equal(t, "s-high", res.SeasonID)
	assert.Equal(t, "b-all", res.TimeBandID)

	// The band rule targets b-am, which is not the resolved band.
	require.Len(t, res.AppliedRules, 1)
	assert.Equal(t, "r-season", res.AppliedRules[0].RuleID)
	assert.Equal(t, 150.0, res.FinalPricePerPlayer)
}

func TestEngineRuleFilters(t *testing.T) {
	e := fixedClock()

	t.Run("dow filter", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "weekend", Filters: RuleFilters{Dow: []int{0, 6}}, PriceType: PriceMultiplier, PriceValue: 1.25, Priority: 1, Active: true, UpdatedAt: testNow},
		}

		in := baseInput() // 2025-06-07 is a Saturday
		res, err := e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 125.0, res.FinalPricePerPlayer)

		in.Date = day("2025-06-09") // Monday
		res, err = e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.FinalPricePerPlayer)
	})

	t.Run("players range", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "group discount", Filters: RuleFilters{PlayersMin: iptr(3)}, PriceType: PriceDelta, PriceValue: -10, Priority: 1, Active: true, UpdatedAt: testNow},
		}

		in := baseInput()
		in.Players = 2
		res, err := e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.FinalPricePerPlayer)

		in.Players = 4
		res, err = e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 90.0, res.FinalPricePerPlayer)
	})

	t.Run("occupancy defaults to zero", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "demand surge", Filters: RuleFilters{OccupancyMin: fptr(80)}, PriceType: PriceMultiplier, PriceValue: 1.4, Priority: 1, Active: true, UpdatedAt: testNow},
		}

		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.FinalPricePerPlayer)

		in := baseInput()
		in.OccupancyPercent = fptr(90)
		res, err = e.Calculate(rs, in)
		require.NoError(t, err)
		assert.InDelta(t, 140.0, res.FinalPricePerPlayer, 1e-9)
	})

	t.Run("negative lead time floors to zero for non-negative ranges", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "walk-in", Filters: RuleFilters{LeadTimeMax: fptr(1)}, PriceType: PriceDelta, PriceValue: -5, Priority: 1, Active: true, UpdatedAt: testNow},
		}

		in := baseInput()
		in.LeadTimeHours = fptr(-2) // tee time already passed
		res, err := e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 95.0, res.FinalPricePerPlayer)
	})

	t.Run("negative lower bound compares against the raw lead time", func(t *testing.T) {
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "grace window", Filters: RuleFilters{LeadTimeMin: fptr(-1), LeadTimeMax: fptr(0)}, PriceType: PriceDelta, PriceValue: 5, Priority: 1, Active: true, UpdatedAt: testNow},
		}

		in := baseInput()
		in.LeadTimeHours = fptr(-0.5)
		res, err := e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 105.0, res.FinalPricePerPlayer)

		in.LeadTimeHours = fptr(-3) // below the raw lower bound
		res, err = e.Calculate(rs, in)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.FinalPricePerPlayer)
	})

	t.Run("effective window is evaluated against the clock", func(t *testing.T) {
		future := testNow.Add(24 * time.Hour)
		rs := baseRuleSet(100)
		rs.PriceRules = []*PriceRule{
			{ID: "r1", Name: "upcoming promo", Filters: RuleFilters{EffectiveFrom: &future}, PriceType: PriceDelta, PriceValue: -30, Priority: 1, Active: true, UpdatedAt: testNow},
		}

		res, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.FinalPricePerPlayer)
	})
}

func TestEngineDeterminism(t *testing.T) {
	e := fixedClock()
	rs := baseRuleSet(100)
	rs.PriceRules = []*PriceRule{
		{ID: "r1", Name: "surge", PriceType: PriceMultiplier, PriceValue: 1.17, Priority: 2, Active: true, UpdatedAt: testNow, RoundTo: fptr(1)},
		{ID: "r2", Name: "bundle", PriceType: PriceDelta, PriceValue: 12.5, Priority: 3, Active: true, UpdatedAt: testNow},
	}

	first, err := e.Calculate(rs, baseInput())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Calculate(rs, baseInput())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
