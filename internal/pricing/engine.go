package pricing

import (
	"math"
	"sort"
	"time"
)

// CalcInput is one pricing request against a loaded rule set.
// Minute is the tee time as minutes from local midnight.
type CalcInput struct {
	CourseID         string
	Date             time.Time
	Minute           int
	Players          int
	LeadTimeHours    *float64 // derived from the clock when nil
	OccupancyPercent *float64 // defaults to 0 when nil
	FallbackBase     *float64 // used only when the course has no BaseProduct
}

// Engine computes deterministic prices. The clock is injected so that two
// calls with the same rule set, input and clock always produce the same
// result.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using the wall clock.
func NewEngine() *Engine {
	return NewEngineWithClock(time.Now)
}

// NewEngineWithClock creates an Engine with a custom clock.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Calculate resolves the per-player and total price for the request.
// Returns ErrNoBasePrice when the course has no base product and no fallback
// was supplied, and ErrBookingBlocked when an active block override covers
// the requested slot.
func (e *Engine) Calculate(rs *RuleSet, in CalcInput) (*CalcResult, error) {
	now := e.now().UTC()

	// 1. Base price
	var base float64
	switch {
	case rs.BaseProduct != nil:
		base = rs.BaseProduct.GreenFeeBaseUSD
	case in.FallbackBase != nil:
		base = *in.FallbackBase
	default:
		return nil, ErrNoBasePrice
	}

	// 2-3. Season and time band; absence of either just narrows rule matching.
	season := resolveSeason(rs.Seasons, in.Date)
	band := resolveBand(rs.TimeBands, in.Minute)

	// 4. Lead time: hours between now and the tee time when not supplied.
	// Negative values are floored to 0 for matching; the raw value is kept
	// for rules declaring an explicitly negative lower bound.
	var leadRaw float64
	if in.LeadTimeHours != nil {
		leadRaw = *in.LeadTimeHours
	} else {
		teeAt := in.Date.Truncate(24 * time.Hour).Add(time.Duration(in.Minute) * time.Minute)
		leadRaw = teeAt.Sub(now).Hours()
	}

	// 5. Occupancy defaults to 0.
	var occupancy float64
	if in.OccupancyPercent != nil {
		occupancy = *in.OccupancyPercent
	}

	// 6. Block overrides short-circuit everything else.
	var priceOverrides []*SpecialOverride
	for _, o := range rs.Overrides {
		if !o.Active || !o.Covers(in.Date, in.Minute) {
			continue
		}
		if o.OverrideType == OverrideBlock {
			return nil, ErrBookingBlocked
		}
		if o.OverrideType == OverridePrice && o.PriceValue != nil {
			priceOverrides = append(priceOverrides, o)
		}
	}

	result := &CalcResult{
		BasePrice:    base,
		AppliedRules: []AppliedRule{},
		Players:      in.Players,
		CalculatedAt: now,
	}
	if season != nil {
		result.SeasonID = season.ID
	}
	if band != nil {
		result.TimeBandID = band.ID
	}

	running := base
	var lastRule *PriceRule

	if len(priceOverrides) > 0 {
		// 7. A price override replaces the whole fold.
		sort.SliceStable(priceOverrides, func(i, j int) bool {
			a, b := priceOverrides[i], priceOverrides[j]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			return a.UpdatedAt.After(b.UpdatedAt)
		})
		o := priceOverrides[0]
		running = *o.PriceValue
		result.AppliedRules = append(result.AppliedRules, AppliedRule{
			RuleID:      o.ID,
			Name:        o.Name,
			Type:        "override",
			Value:       *o.PriceValue,
			ResultPrice: running,
		})
	} else {
		// 8. Fold matching rules, priority descending, latest update first.
		matched := matchRules(rs.PriceRules, matchContext{
			season:    season,
			band:      band,
			dow:       int(in.Date.Weekday()),
			leadRaw:   leadRaw,
			occupancy: occupancy,
			players:   in.Players,
			now:       now,
		})
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			return a.UpdatedAt.After(b.UpdatedAt)
		})

		for _, r := range matched {
			switch r.PriceType {
			case PriceFixed:
				running = r.PriceValue
			case PriceDelta:
				running += r.PriceValue
			case PriceMultiplier:
				running *= r.PriceValue
			default:
				continue
			}
			// Clamping is local to the rule that declared it.
			if r.MinPrice != nil && running < *r.MinPrice {
				running = *r.MinPrice
			}
			if r.MaxPrice != nil && running > *r.MaxPrice {
				running = *r.MaxPrice
			}
			result.AppliedRules = append(result.AppliedRules, AppliedRule{
				RuleID:      r.ID,
				Name:        r.Name,
				Type:        string(r.PriceType),
				Value:       r.PriceValue,
				ResultPrice: running,
			})
			lastRule = r
		}
	}

	// 9. Round to the last applied rule's step, if it declared one.
	if lastRule != nil && lastRule.RoundTo != nil && *lastRule.RoundTo > 0 {
		step := *lastRule.RoundTo
		running = math.Round(running/step) * step
		if n := len(result.AppliedRules); n > 0 {
			result.AppliedRules[n-1].ResultPrice = running
		}
	}

	// 10. Totals
	result.FinalPricePerPlayer = running
	result.TotalPrice = running * float64(in.Players)
	return result, nil
}

// resolveSeason picks the active season covering the day, highest priority
// first, then most recently updated.
func resolveSeason(seasons []*Season, day time.Time) *Season {
	var best *Season
	for _, s := range seasons {
		if !s.Active || !s.Covers(day) {
			continue
		}
		if best == nil ||
			s.Priority > best.Priority ||
			(s.Priority == best.Priority && s.UpdatedAt.After(best.UpdatedAt)) {
			best = s
		}
	}
	return best
}

// resolveBand picks the first active band (ascending start) containing the
// minute-of-day.
func resolveBand(bands []*TimeBand, minute int) *TimeBand {
	var best *TimeBand
	for _, b := range bands {
		if !b.Active || !b.Contains(minute) {
			continue
		}
		if best == nil || b.StartMinute < best.StartMinute {
			best = b
		}
	}
	return best
}

type matchContext struct {
	season    *Season
	band      *TimeBand
	dow       int
	leadRaw   float64
	occupancy float64
	players   int
	now       time.Time
}

func matchRules(rules []*PriceRule, ctx matchContext) []*PriceRule {
	var out []*PriceRule
	for _, r := range rules {
		if r.Active && ruleMatches(r, ctx) {
			out = append(out, r)
		}
	}
	return out
}

// ruleMatches checks every present filter; absent filters are wildcards.
func ruleMatches(r *PriceRule, ctx matchContext) bool {
	f := r.Filters

	if f.SeasonID != nil {
		if ctx.season == nil || ctx.season.ID != *f.SeasonID {
			return false
		}
	}
	if len(f.Dow) > 0 {
		found := false
		for _, d := range f.Dow {
			if d == ctx.dow {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.TimeBandID != nil {
		if ctx.band == nil || ctx.band.ID != *f.TimeBandID {
			return false
		}
	}

	lead := math.Max(ctx.leadRaw, 0)
	if f.LeadTimeMin != nil {
		if *f.LeadTimeMin < 0 {
			// Negative-capable range: compare against the raw value.
			if ctx.leadRaw < *f.LeadTimeMin {
				return false
			}
		} else if lead < *f.LeadTimeMin {
			return false
		}
	}
	if f.LeadTimeMax != nil && lead > *f.LeadTimeMax {
		return false
	}

	if f.OccupancyMin != nil && ctx.occupancy < *f.OccupancyMin {
		return false
	}
	if f.OccupancyMax != nil && ctx.occupancy > *f.OccupancyMax {
		return false
	}

	if f.PlayersMin != nil && ctx.players < *f.PlayersMin {
		return false
	}
	if f.PlayersMax != nil && ctx.players > *f.PlayersMax {
		return false
	}

	if f.EffectiveFrom != nil && ctx.now.Before(*f.EffectiveFrom) {
		return false
	}
	if f.EffectiveTo != nil && ctx.now.After(*f.EffectiveTo) {
		return false
	}

	return true
}
