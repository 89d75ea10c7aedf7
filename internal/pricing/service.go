package pricing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
)

var (
	ErrInvalidDate    = apperror.New(http.StatusBadRequest, "date must be YYYY-MM-DD")
	ErrInvalidTime    = apperror.New(http.StatusBadRequest, "time must be HH:mm")
	ErrInvalidPlayers = apperror.New(http.StatusBadRequest, "players must be at least 1")
)

// CalculateRequest is the wire-level pricing request. Date and Time use the
// platform's fixed formats ("2006-01-02", "15:04").
type CalculateRequest struct {
	CourseID         string
	Date             string
	Time             string
	Players          int
	LeadTimeHours    *float64
	OccupancyPercent *float64
	FallbackBase     *float64
}

// Service loads a course's rule set and runs the engine over it, and exposes
// the administrator CRUD for pricing records.
type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) (*CalcResult, error)
	GetRuleSet(ctx context.Context, courseID string) (*RuleSet, error)

	CreateSeason(ctx context.Context, s *Season) error
	UpdateSeason(ctx context.Context, s *Season) error
	DeleteSeason(ctx context.Context, courseID, id string) error

	CreateTimeBand(ctx context.Context, b *TimeBand) error
	UpdateTimeBand(ctx context.Context, b *TimeBand) error
	DeleteTimeBand(ctx context.Context, courseID, id string) error

	CreatePriceRule(ctx context.Context, r *PriceRule) error
	UpdatePriceRule(ctx context.Context, r *PriceRule) error
	DeletePriceRule(ctx context.Context, courseID, id string) error

	CreateOverride(ctx context.Context, o *SpecialOverride) error
	UpdateOverride(ctx context.Context, o *SpecialOverride) error
	DeleteOverride(ctx context.Context, courseID, id string) error

	UpsertBaseProduct(ctx context.Context, p *BaseProduct) error
	ReplaceCanonicalBands(ctx context.Context, courseID string, bands []CanonicalBand) error
}

type service struct {
	repo   Repository
	engine *Engine
}

func NewService(repo Repository, engine *Engine) Service {
	return &service{repo: repo, engine: engine}
}

func (s *service) Calculate(ctx context.Context, req CalculateRequest) (*CalcResult, error) {
	in, err := parseCalcInput(req)
	if err != nil {
		return nil, err
	}

	rs, err := s.repo.LoadPricingData(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load pricing data failed: %w", err)
	}

	return s.engine.Calculate(rs, in)
}

func (s *service) GetRuleSet(ctx context.Context, courseID string) (*RuleSet, error) {
	return s.repo.LoadPricingData(ctx, courseID)
}

func parseCalcInput(req CalculateRequest) (CalcInput, error) {
	day, err := ParseDate(req.Date)
	if err != nil {
		return CalcInput{}, ErrInvalidDate
	}
	minute, err := ParseClock(req.Time)
	if err != nil {
		return CalcInput{}, ErrInvalidTime
	}
	if req.Players < 1 {
		return CalcInput{}, ErrInvalidPlayers
	}
	return CalcInput{
		CourseID:         req.CourseID,
		Date:             day,
		Minute:           minute,
		Players:          req.Players,
		LeadTimeHours:    req.LeadTimeHours,
		OccupancyPercent: req.OccupancyPercent,
		FallbackBase:     req.FallbackBase,
	}, nil
}

// ParseDate parses a calendar date in the platform's wire format.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// ParseClock parses "HH:mm" into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes from midnight as "HH:mm".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func (s *service) CreateSeason(ctx context.Context, sn *Season) error {
	if err := validateSeason(sn); err != nil {
		return err
	}
	return s.repo.CreateSeason(ctx, sn)
}

func (s *service) UpdateSeason(ctx context.Context, sn *Season) error {
	if err := validateSeason(sn); err != nil {
		return err
	}
	return s.repo.UpdateSeason(ctx, sn)
}

func (s *service) DeleteSeason(ctx context.Context, courseID, id string) error {
	return s.repo.DeleteSeason(ctx, courseID, id)
}

func (s *service) CreateTimeBand(ctx context.Context, b *TimeBand) error {
	if err := validateTimeBand(b); err != nil {
		return err
	}
	return s.repo.CreateTimeBand(ctx, b)
}

func (s *service) UpdateTimeBand(ctx context.Context, b *TimeBand) error {
	if err := validateTimeBand(b); err != nil {
		return err
	}
	return s.repo.UpdateTimeBand(ctx, b)
}

func (s *service) DeleteTimeBand(ctx context.Context, courseID, id string) error {
	return s.repo.DeleteTimeBands(ctx, courseID, []string{id})
}

func (s *service) CreatePriceRule(ctx context.Context, r *PriceRule) error {
	if err := validatePriceRule(r); err != nil {
		return err
	}
	return s.repo.CreatePriceRule(ctx, r)
}

func (s *service) UpdatePriceRule(ctx context.Context, r *PriceRule) error {
	if err := validatePriceRule(r); err != nil {
		return err
	}
	return s.repo.UpdatePriceRule(ctx, r)
}

func (s *service) DeletePriceRule(ctx context.Context, courseID, id string) error {
	return s.repo.DeletePriceRules(ctx, courseID, []string{id})
}

func (s *service) CreateOverride(ctx context.Context, o *SpecialOverride) error {
	if err := validateOverride(o); err != nil {
		return err
	}
	return s.repo.CreateOverride(ctx, o)
}

func (s *service) UpdateOverride(ctx context.Context, o *SpecialOverride) error {
	if err := validateOverride(o); err != nil {
		return err
	}
	return s.repo.UpdateOverride(ctx, o)
}

func (s *service) DeleteOverride(ctx context.Context, courseID, id string) error {
	return s.repo.DeleteOverride(ctx, courseID, id)
}

func (s *service) UpsertBaseProduct(ctx context.Context, p *BaseProduct) error {
	if p.GreenFeeBaseUSD < 0 {
		return apperror.New(http.StatusBadRequest, "green fee must not be negative")
	}
	return s.repo.UpsertBaseProduct(ctx, p)
}

func (s *service) ReplaceCanonicalBands(ctx context.Context, courseID string, bands []CanonicalBand) error {
	for _, b := range bands {
		if b.StartMinute >= b.EndMinute {
			return ErrInvalidTimeRange
		}
	}
	return s.repo.ReplaceCanonicalBands(ctx, courseID, bands)
}

func validateSeason(s *Season) error {
	if s.StartDate.After(s.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}

func validateTimeBand(b *TimeBand) error {
	if b.StartMinute >= b.EndMinute {
		return ErrInvalidTimeRange
	}
	return nil
}

func validatePriceRule(r *PriceRule) error {
	switch r.PriceType {
	case PriceFixed, PriceDelta, PriceMultiplier:
	default:
		return ErrInvalidPriceType
	}
	for _, d := range r.Filters.Dow {
		if d < 0 || d > 6 {
			return apperror.New(http.StatusBadRequest, "dow values must be 0-6")
		}
	}
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		return apperror.New(http.StatusBadRequest, "min price must not exceed max price")
	}
	return nil
}

func validateOverride(o *SpecialOverride) error {
	if o.StartDate.After(o.EndDate) {
		return ErrInvalidDateRange
	}
	if o.StartMinute != nil && o.EndMinute != nil && *o.StartMinute >= *o.EndMinute {
		return ErrInvalidTimeRange
	}
	switch o.OverrideType {
	case OverridePrice:
		if o.PriceValue == nil {
			return apperror.New(http.StatusBadRequest, "price override requires a price value")
		}
	case OverrideBlock:
	default:
		return apperror.New(http.StatusBadRequest, "invalid override type")
	}
	return nil
}
