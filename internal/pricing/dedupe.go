package pricing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DedupeStrategy selects which duplicate survives when deduping by name.
type DedupeStrategy string

const (
	// StrategyHighestPriority keeps the rule with the greatest priority,
	// tie-broken by latest update.
	StrategyHighestPriority DedupeStrategy = "highest_priority"
	// StrategyLatest keeps the most recently updated rule regardless of
	// priority.
	StrategyLatest DedupeStrategy = "latest"
)

// DedupeService detects and removes semantically duplicate time bands and
// price rules for one course at a time. It only computes delete sets; the
// repository owns atomicity. The service holds no state between calls, so a
// successful run followed by an immediate re-run removes nothing.
//
// Concurrent runs against the same course are not coordinated here; callers
// must serialize them.
type DedupeService struct {
	repo Repository
}

func NewDedupeService(repo Repository) *DedupeService {
	return &DedupeService{repo: repo}
}

// DedupeTimeBands removes duplicate time bands. Courses with a configured
// canonical band set keep only bands matching that set (one per canonical
// entry); other courses keep the first-seen band per semantic key.
func (s *DedupeService) DedupeTimeBands(ctx context.Context, courseID string) (int, error) {
	rs, err := s.repo.LoadPricingData(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("load pricing data failed: %w", err)
	}

	var remove []string

	if len(rs.CanonicalBands) > 0 {
		allowed := make(map[string]bool, len(rs.CanonicalBands))
		for _, c := range rs.CanonicalBands {
			allowed[bandKey(c.Label, c.StartMinute, c.EndMinute)] = true
		}
		seen := make(map[string]bool)
		for _, b := range rs.TimeBands {
			key := bandKey(b.Label, b.StartMinute, b.EndMinute)
			if !allowed[key] || seen[key] {
				remove = append(remove, b.ID)
				continue
			}
			seen[key] = true
		}
	} else {
		seen := make(map[string]bool)
		for _, b := range rs.TimeBands {
			key := bandKey(b.Label, b.StartMinute, b.EndMinute)
			if seen[key] {
				remove = append(remove, b.ID)
				continue
			}
			seen[key] = true
		}
	}

	if err := s.repo.DeleteTimeBands(ctx, courseID, remove); err != nil {
		return 0, err
	}
	return len(remove), nil
}

// DedupePriceRules removes duplicate price rules. Courses with a canonical
// band set group band-scoped rules per time band and keep the dominant rule
// of each group (rules without a band are always kept); other courses fall
// back to a full composite semantic key, keeping the first-seen rule per key.
func (s *DedupeService) DedupePriceRules(ctx context.Context, courseID string) (int, error) {
	rs, err := s.repo.LoadPricingData(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("load pricing data failed: %w", err)
	}

	var remove []string

	if len(rs.CanonicalBands) > 0 {
		groups := make(map[string][]*PriceRule)
		for _, r := range rs.PriceRules {
			if r.Filters.TimeBandID == nil {
				continue // band-less rules are always kept
			}
			groups[*r.Filters.TimeBandID] = append(groups[*r.Filters.TimeBandID], r)
		}
		for _, group := range groups {
			if len(group) < 2 {
				continue
			}
			keep := dominantRule(group, StrategyHighestPriority)
			for _, r := range group {
				if r.ID != keep.ID {
					remove = append(remove, r.ID)
				}
			}
		}
	} else {
		seen := make(map[string]bool)
		for _, r := range rs.PriceRules {
			key := ruleKey(r)
			if seen[key] {
				remove = append(remove, r.ID)
				continue
			}
			seen[key] = true
		}
	}

	if err := s.repo.DeletePriceRules(ctx, courseID, remove); err != nil {
		return 0, err
	}
	return len(remove), nil
}

// DedupePriceRulesByName groups rules by normalized name and keeps one per
// group according to the strategy.
func (s *DedupeService) DedupePriceRulesByName(ctx context.Context, courseID string, strategy DedupeStrategy) (int, error) {
	if strategy != StrategyHighestPriority && strategy != StrategyLatest {
		return 0, fmt.Errorf("unknown dedupe strategy %q", strategy)
	}

	rs, err := s.repo.LoadPricingData(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("load pricing data failed: %w", err)
	}

	groups := make(map[string][]*PriceRule)
	for _, r := range rs.PriceRules {
		groups[normalizeLabel(r.Name)] = append(groups[normalizeLabel(r.Name)], r)
	}

	var remove []string
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		keep := dominantRule(group, strategy)
		for _, r := range group {
			if r.ID != keep.ID {
				remove = append(remove, r.ID)
			}
		}
	}

	if err := s.repo.DeletePriceRules(ctx, courseID, remove); err != nil {
		return 0, err
	}
	return len(remove), nil
}

// dominantRule picks the survivor of a duplicate group.
func dominantRule(group []*PriceRule, strategy DedupeStrategy) *PriceRule {
	sorted := make([]*PriceRule, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if strategy == StrategyLatest {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.UpdatedAt.After(b.UpdatedAt)
	})
	return sorted[0]
}

// normalizeLabel lower-cases, trims and collapses inner whitespace so that
// "Early Bird " and "early  bird" share a key.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func bandKey(label string, start, end int) string {
	return normalizeLabel(label) + "|" + strconv.Itoa(start) + "|" + strconv.Itoa(end)
}

// ruleKey builds a composite semantic key over every field that affects rule
// behavior. Records differing only by id or timestamps collide.
func ruleKey(r *PriceRule) string {
	var b strings.Builder
	b.WriteString(normalizeLabel(r.Name))
	b.WriteByte('|')
	b.WriteString(keyStrPtr(r.Filters.SeasonID))
	b.WriteByte('|')
	for _, d := range r.Filters.Dow {
		b.WriteString(strconv.Itoa(d))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(keyStrPtr(r.Filters.TimeBandID))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.Filters.LeadTimeMin))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.Filters.LeadTimeMax))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.Filters.OccupancyMin))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.Filters.OccupancyMax))
	b.WriteByte('|')
	b.WriteString(keyIntPtr(r.Filters.PlayersMin))
	b.WriteByte('|')
	b.WriteString(keyIntPtr(r.Filters.PlayersMax))
	b.WriteByte('|')
	b.WriteString(keyTimePtr(r.Filters.EffectiveFrom))
	b.WriteByte('|')
	b.WriteString(keyTimePtr(r.Filters.EffectiveTo))
	b.WriteByte('|')
	b.WriteString(string(r.PriceType))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(r.PriceValue, 'f', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.Priority))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(r.Active))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.MinPrice))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.MaxPrice))
	b.WriteByte('|')
	b.WriteString(keyFloatPtr(r.RoundTo))
	return b.String()
}

func keyStrPtr(p *string) string {
	if p == nil {
		return "~"
	}
	return *p
}

func keyFloatPtr(p *float64) string {
	if p == nil {
		return "~"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func keyIntPtr(p *int) string {
	if p == nil {
		return "~"
	}
	return strconv.Itoa(*p)
}

func keyTimePtr(p *time.Time) string {
	if p == nil {
		return "~"
	}
	return p.UTC().Format(time.RFC3339)
}
