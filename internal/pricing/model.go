package pricing

import (
	"net/http"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
)

var (
	ErrNoBasePrice      = apperror.New(http.StatusServiceUnavailable, "pricing unavailable")
	ErrBookingBlocked   = apperror.New(http.StatusConflict, "tee time not bookable")
	ErrSeasonNotFound   = apperror.New(http.StatusNotFound, "season not found")
	ErrBandNotFound     = apperror.New(http.StatusNotFound, "time band not found")
	ErrRuleNotFound     = apperror.New(http.StatusNotFound, "price rule not found")
	ErrOverrideNotFound = apperror.New(http.StatusNotFound, "special override not found")
	ErrInvalidDateRange = apperror.New(http.StatusBadRequest, "start date must not be after end date")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidPriceType = apperror.New(http.StatusBadRequest, "invalid price type")
)

// PriceType determines how a rule's value is folded into the running price.
type PriceType string

const (
	PriceFixed      PriceType = "fixed"
	PriceDelta      PriceType = "delta"
	PriceMultiplier PriceType = "multiplier"
)

// OverrideType distinguishes price-forcing overrides from booking blocks.
type OverrideType string

const (
	OverridePrice OverrideType = "price"
	OverrideBlock OverrideType = "block"
)

// Season is a named date range (e.g. high/low season) scoping price rules.
// Date bounds are inclusive calendar days in the course's local time.
type Season struct {
	ID        string
	CourseID  string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Priority  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the season's date range contains the given day.
func (s *Season) Covers(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(s.StartDate.Truncate(24*time.Hour)) && !d.After(s.EndDate.Truncate(24*time.Hour))
}

// TimeBand is a named half-open daily window [StartMinute, EndMinute).
// Minutes are counted from local midnight.
type TimeBand struct {
	ID          string
	CourseID    string
	Label       string
	StartMinute int
	EndMinute   int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contains reports whether the band's window contains the given minute-of-day.
func (b *TimeBand) Contains(minute int) bool {
	return minute >= b.StartMinute && minute < b.EndMinute
}

// RuleFilters are the optional match conditions of a PriceRule.
// A nil field is a wildcard; a present field must be satisfied by the request.
type RuleFilters struct {
	SeasonID      *string
	Dow           []int // 0=Sunday .. 6=Saturday; empty means any day
	TimeBandID    *string
	LeadTimeMin   *float64
	LeadTimeMax   *float64
	OccupancyMin  *float64
	OccupancyMax  *float64
	PlayersMin    *int
	PlayersMax    *int
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
}

// PriceRule adjusts the running price when all of its filters match.
type PriceRule struct {
	ID         string
	CourseID   string
	Name       string
	Filters    RuleFilters
	PriceType  PriceType
	PriceValue float64
	Priority   int
	Active     bool
	MinPrice   *float64
	MaxPrice   *float64
	RoundTo    *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SpecialOverride is an administrator exception (holiday, tournament,
// closure) that takes precedence over every price rule. StartMinute and
// EndMinute are optional; when nil, the override covers the whole day.
type SpecialOverride struct {
	ID           string
	CourseID     string
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	StartMinute  *int
	EndMinute    *int
	OverrideType OverrideType
	PriceValue   *float64
	Priority     int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Covers reports whether the override window contains the given day/minute.
func (o *SpecialOverride) Covers(day time.Time, minute int) bool {
	d := day.Truncate(24 * time.Hour)
	if d.Before(o.StartDate.Truncate(24*time.Hour)) || d.After(o.EndDate.Truncate(24*time.Hour)) {
		return false
	}
	if o.StartMinute != nil && minute < *o.StartMinute {
		return false
	}
	if o.EndMinute != nil && minute >= *o.EndMinute {
		return false
	}
	return true
}

// BaseProduct supplies the starting green fee before rule evaluation.
// One row per course.
type BaseProduct struct {
	CourseID        string
	GreenFeeBaseUSD float64
	CartFeeUSD      *float64
	CaddieFeeUSD    *float64
	InsuranceFeeUSD *float64
	UpdatedAt       time.Time
}

// CanonicalBand is one entry of a course's canonical time-band allowlist.
// Courses with at least one entry have their bands deduped against the
// allowlist instead of first-seen-per-key.
type CanonicalBand struct {
	CourseID    string
	Label       string
	StartMinute int
	EndMinute   int
}

// RuleSet is the full pricing configuration of one course, as loaded by the
// repository. Absent sub-collections are empty slices, never nil maps of
// surprise; BaseProduct is nil when the course has none.
type RuleSet struct {
	CourseID       string
	Seasons        []*Season
	TimeBands      []*TimeBand
	PriceRules     []*PriceRule
	Overrides      []*SpecialOverride
	BaseProduct    *BaseProduct
	CanonicalBands []CanonicalBand
}

// AppliedRule records one step of the price fold for explainability.
type AppliedRule struct {
	RuleID      string  `json:"rule_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	ResultPrice float64 `json:"result_price"`
}

// CalcResult is the ephemeral outcome of one price calculation.
type CalcResult struct {
	BasePrice           float64
	AppliedRules        []AppliedRule
	FinalPricePerPlayer float64
	TotalPrice          float64
	Players             int
	SeasonID            string
	TimeBandID          string
	CalculatedAt        time.Time
}
