package http

import (
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pricing"
)

// CalculateRequestBody is the public price-calculation payload.
type CalculateRequestBody struct {
	CourseID         string   `json:"course_id" binding:"required,uuid"`
	Date             string   `json:"date" binding:"required"`
	Time             string   `json:"time" binding:"required"`
	Players          int      `json:"players" binding:"required,min=1"`
	LeadTimeHours    *float64 `json:"lead_time_hours"`
	OccupancyPercent *float64 `json:"occupancy_percent" binding:"omitempty,min=0,max=100"`
	BasePrice        *float64 `json:"base_price" binding:"omitempty,min=0"`
}

// Validate performs custom validation for CalculateRequestBody.
func (r *CalculateRequestBody) Validate() error {
	if _, err := pricing.ParseDate(r.Date); err != nil {
		return pricing.ErrInvalidDate
	}
	if _, err := pricing.ParseClock(r.Time); err != nil {
		return pricing.ErrInvalidTime
	}
	return nil
}

// CalculateResponse explains one computed price.
type CalculateResponse struct {
	BasePrice           float64               `json:"base_price"`
	AppliedRules        []pricing.AppliedRule `json:"applied_rules"`
	FinalPricePerPlayer float64               `json:"final_price_per_player"`
	TotalPrice          float64               `json:"total_price"`
	Players             int                   `json:"players"`
	SeasonID            string                `json:"season_id,omitempty"`
	TimeBandID          string                `json:"time_band_id,omitempty"`
	CalculatedAt        time.Time             `json:"calculated_at"`
}

func NewCalculateResponse(r *pricing.CalcResult) CalculateResponse {
	return CalculateResponse{
		BasePrice:           r.BasePrice,
		AppliedRules:        r.AppliedRules,
		FinalPricePerPlayer: r.FinalPricePerPlayer,
		TotalPrice:          r.TotalPrice,
		Players:             r.Players,
		SeasonID:            r.SeasonID,
		TimeBandID:          r.TimeBandID,
		CalculatedAt:        r.CalculatedAt,
	}
}

// SeasonBody is the admin create/update payload for seasons.
type SeasonBody struct {
	CourseID  string `json:"course_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Priority  int    `json:"priority"`
	Active    bool   `json:"active"`
}

func (r *SeasonBody) Validate() error {
	if _, err := pricing.ParseDate(r.StartDate); err != nil {
		return pricing.ErrInvalidDate
	}
	if _, err := pricing.ParseDate(r.EndDate); err != nil {
		return pricing.ErrInvalidDate
	}
	return nil
}

func (r *SeasonBody) ToModel() *pricing.Season {
	start, _ := pricing.ParseDate(r.StartDate)
	end, _ := pricing.ParseDate(r.EndDate)
	return &pricing.Season{
		CourseID:  r.CourseID,
		Name:      r.Name,
		StartDate: start,
		EndDate:   end,
		Priority:  r.Priority,
		Active:    r.Active,
	}
}

type SeasonResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSeasonResponse(s *pricing.Season) SeasonResponse {
	return SeasonResponse{
		ID:        s.ID,
		CourseID:  s.CourseID,
		Name:      s.Name,
		StartDate: s.StartDate.Format("2006-01-02"),
		EndDate:   s.EndDate.Format("2006-01-02"),
		Priority:  s.Priority,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// TimeBandBody is the admin create/update payload for time bands.
type TimeBandBody struct {
	CourseID  string `json:"course_id" binding:"required,uuid"`
	Label     string `json:"label" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Active    bool   `json:"active"`
}

func (r *TimeBandBody) Validate() error {
	if _, err := pricing.ParseClock(r.StartTime); err != nil {
		return pricing.ErrInvalidTime
	}
	if _, err := pricing.ParseClock(r.EndTime); err != nil {
		return pricing.ErrInvalidTime
	}
	return nil
}

func (r *TimeBandBody) ToModel() *pricing.TimeBand {
	start, _ := pricing.ParseClock(r.StartTime)
	end, _ := pricing.ParseClock(r.EndTime)
	return &pricing.TimeBand{
		CourseID:    r.CourseID,
		Label:       r.Label,
		StartMinute: start,
		EndMinute:   end,
		Active:      r.Active,
	}
}

type TimeBandResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Label     string    `json:"label"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTimeBandResponse(b *pricing.TimeBand) TimeBandResponse {
	return TimeBandResponse{
		ID:        b.ID,
		CourseID:  b.CourseID,
		Label:     b.Label,
		StartTime: pricing.FormatClock(b.StartMinute),
		EndTime:   pricing.FormatClock(b.EndMinute),
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// RuleFiltersBody mirrors pricing.RuleFilters on the wire. Absent fields are
// wildcards.
type RuleFiltersBody struct {
	SeasonID      *string    `json:"season_id" binding:"omitempty,uuid"`
	Dow           []int      `json:"dow" binding:"omitempty,dive,min=0,max=6"`
	TimeBandID    *string    `json:"time_band_id" binding:"omitempty,uuid"`
	LeadTimeMin   *float64   `json:"lead_time_min"`
	LeadTimeMax   *float64   `json:"lead_time_max"`
	OccupancyMin  *float64   `json:"occupancy_min" binding:"omitempty,min=0,max=100"`
	OccupancyMax  *float64   `json:"occupancy_max" binding:"omitempty,min=0,max=100"`
	PlayersMin    *int       `json:"players_min" binding:"omitempty,min=1"`
	PlayersMax    *int       `json:"players_max" binding:"omitempty,min=1"`
	EffectiveFrom *time.Time `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
}

// PriceRuleBody is the admin create/update payload for price rules.
type PriceRuleBody struct {
	CourseID   string          `json:"course_id" binding:"required,uuid"`
	Name       string          `json:"name" binding:"required"`
	Filters    RuleFiltersBody `json:"filters"`
	PriceType  string          `json:"price_type" binding:"required,oneof=fixed delta multiplier"`
	PriceValue float64         `json:"price_value"`
	Priority   int             `json:"priority"`
	Active     bool            `json:"active"`
	MinPrice   *float64        `json:"min_price" binding:"omitempty,min=0"`
	MaxPrice   *float64        `json:"max_price" binding:"omitempty,min=0"`
	RoundTo    *float64        `json:"round_to" binding:"omitempty,gt=0"`
}

func (r *PriceRuleBody) Validate() error {
	return nil
}

func (r *PriceRuleBody) ToModel() *pricing.PriceRule {
	return &pricing.PriceRule{
		CourseID: r.CourseID,
		Name:     r.Name,
		Filters: pricing.RuleFilters{
			SeasonID:      r.Filters.SeasonID,
			Dow:           r.Filters.Dow,
			TimeBandID:    r.Filters.TimeBandID,
			LeadTimeMin:   r.Filters.LeadTimeMin,
			LeadTimeMax:   r.Filters.LeadTimeMax,
			OccupancyMin:  r.Filters.OccupancyMin,
			OccupancyMax:  r.Filters.OccupancyMax,
			PlayersMin:    r.Filters.PlayersMin,
			PlayersMax:    r.Filters.PlayersMax,
			EffectiveFrom: r.Filters.EffectiveFrom,
			EffectiveTo:   r.Filters.EffectiveTo,
		},
		PriceType:  pricing.PriceType(r.PriceType),
		PriceValue: r.PriceValue,
		Priority:   r.Priority,
		Active:     r.Active,
		MinPrice:   r.MinPrice,
		MaxPrice:   r.MaxPrice,
		RoundTo:    r.RoundTo,
	}
}

type PriceRuleResponse struct {
	ID         string          `json:"id"`
	CourseID   string          `json:"course_id"`
	Name       string          `json:"name"`
	Filters    RuleFiltersBody `json:"filters"`
	PriceType  string          `json:"price_type"`
	PriceValue float64         `json:"price_value"`
	Priority   int             `json:"priority"`
	Active     bool            `json:"active"`
	MinPrice   *float64        `json:"min_price,omitempty"`
	MaxPrice   *float64        `json:"max_price,omitempty"`
	RoundTo    *float64        `json:"round_to,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func NewPriceRuleResponse(p *pricing.PriceRule) PriceRuleResponse {
	return PriceRuleResponse{
		ID:       p.ID,
		CourseID: p.CourseID,
		Name:     p.Name,
		Filters: RuleFiltersBody{
			SeasonID:      p.Filters.SeasonID,
			Dow:           p.Filters.Dow,
			TimeBandID:    p.Filters.TimeBandID,
			LeadTimeMin:   p.Filters.LeadTimeMin,
			LeadTimeMax:   p.Filters.LeadTimeMax,
			OccupancyMin:  p.Filters.OccupancyMin,
			OccupancyMax:  p.Filters.OccupancyMax,
			PlayersMin:    p.Filters.PlayersMin,
			PlayersMax:    p.Filters.PlayersMax,
			EffectiveFrom: p.Filters.EffectiveFrom,
			EffectiveTo:   p.Filters.EffectiveTo,
		},
		PriceType:  string(p.PriceType),
		PriceValue: p.PriceValue,
		Priority:   p.Priority,
		Active:     p.Active,
		MinPrice:   p.MinPrice,
		MaxPrice:   p.MaxPrice,
		RoundTo:    p.RoundTo,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// OverrideBody is the admin create/update payload for special overrides.
type OverrideBody struct {
	CourseID     string   `json:"course_id" binding:"required,uuid"`
	Name         string   `json:"name" binding:"required"`
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	StartTime    *string  `json:"start_time"`
	EndTime      *string  `json:"end_time"`
	OverrideType string   `json:"override_type" binding:"required,oneof=price block"`
	PriceValue   *float64 `json:"price_value" binding:"omitempty,min=0"`
	Priority     int      `json:"priority"`
	Active       bool     `json:"active"`
}

func (r *OverrideBody) Validate() error {
	if _, err := pricing.ParseDate(r.StartDate); err != nil {
		return pricing.ErrInvalidDate
	}
	if _, err := pricing.ParseDate(r.EndDate); err != nil {
		return pricing.ErrInvalidDate
	}
	if r.StartTime != nil {
		if _, err := pricing.ParseClock(*r.StartTime); err != nil {
			return pricing.ErrInvalidTime
		}
	}
	if r.EndTime != nil {
		if _, err := pricing.ParseClock(*r.EndTime); err != nil {
			return pricing.ErrInvalidTime
		}
	}
	return nil
}

func (r *OverrideBody) ToModel() *pricing.SpecialOverride {
	start, _ := pricing.ParseDate(r.StartDate)
	end, _ := pricing.ParseDate(r.EndDate)
	o := &pricing.SpecialOverride{
		CourseID:     r.CourseID,
		Name:         r.Name,
		StartDate:    start,
		EndDate:      end,
		OverrideType: pricing.OverrideType(r.OverrideType),
		PriceValue:   r.PriceValue,
		Priority:     r.Priority,
		Active:       r.Active,
	}
	if r.StartTime != nil {
		m, _ := pricing.ParseClock(*r.StartTime)
		o.StartMinute = &m
	}
	if r.EndTime != nil {
		m, _ := pricing.ParseClock(*r.EndTime)
		o.EndMinute = &m
	}
	return o
}

type OverrideResponse struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Name         string    `json:"name"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	StartTime    *string   `json:"start_time,omitempty"`
	EndTime      *string   `json:"end_time,omitempty"`
	OverrideType string    `json:"override_type"`
	PriceValue   *float64  `json:"price_value,omitempty"`
	Priority     int       `json:"priority"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewOverrideResponse(o *pricing.SpecialOverride) OverrideResponse {
	resp := OverrideResponse{
		ID:           o.ID,
		CourseID:     o.CourseID,
		Name:         o.Name,
		StartDate:    o.StartDate.Format("2006-01-02"),
		EndDate:      o.EndDate.Format("2006-01-02"),
		OverrideType: string(o.OverrideType),
		PriceValue:   o.PriceValue,
		Priority:     o.Priority,
		Active:       o.Active,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.StartMinute != nil {
		s := pricing.FormatClock(*o.StartMinute)
		resp.StartTime = &s
	}
	if o.EndMinute != nil {
		e := pricing.FormatClock(*o.EndMinute)
		resp.EndTime = &e
	}
	return resp
}

// BaseProductBody is the admin upsert payload for a course's base fees.
type BaseProductBody struct {
	GreenFeeBaseUSD float64  `json:"green_fee_base_usd" binding:"min=0"`
	CartFeeUSD      *float64 `json:"cart_fee_usd" binding:"omitempty,min=0"`
	CaddieFeeUSD    *float64 `json:"caddie_fee_usd" binding:"omitempty,min=0"`
	InsuranceFeeUSD *float64 `json:"insurance_fee_usd" binding:"omitempty,min=0"`
}

func (r *BaseProductBody) Validate() error {
	return nil
}

// CanonicalBandsBody replaces a course's canonical band allowlist.
type CanonicalBandsBody struct {
	Bands []CanonicalBandBody `json:"bands" binding:"required,dive"`
}

type CanonicalBandBody struct {
	Label     string `json:"label" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

func (r *CanonicalBandsBody) Validate() error {
	for _, b := range r.Bands {
		if _, err := pricing.ParseClock(b.StartTime); err != nil {
			return pricing.ErrInvalidTime
		}
		if _, err := pricing.ParseClock(b.EndTime); err != nil {
			return pricing.ErrInvalidTime
		}
	}
	return nil
}

// DedupeRequestBody triggers the administrative dedupe routine.
type DedupeRequestBody struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	Type     string `json:"type" binding:"required,oneof=time_bands price_rules all price_rules_by_name"`
	Strategy string `json:"strategy" binding:"omitempty,oneof=highest_priority latest"`
}

func (r *DedupeRequestBody) Validate() error {
	return nil
}

// DedupeResponse reports how many records a dedupe run removed.
type DedupeResponse struct {
	RemovedCount int `json:"removed_count"`
}

// RuleSetResponse is the admin dump of a course's full pricing data.
type RuleSetResponse struct {
	CourseID       string              `json:"course_id"`
	Seasons        []SeasonResponse    `json:"seasons"`
	TimeBands      []TimeBandResponse  `json:"time_bands"`
	PriceRules     []PriceRuleResponse `json:"price_rules"`
	Overrides      []OverrideResponse  `json:"overrides"`
	BaseProduct    *BaseProductBody    `json:"base_product,omitempty"`
	CanonicalBands []CanonicalBandBody `json:"canonical_bands"`
}

func NewRuleSetResponse(rs *pricing.RuleSet) RuleSetResponse {
	resp := RuleSetResponse{
		CourseID:       rs.CourseID,
		Seasons:        make([]SeasonResponse, 0, len(rs.Seasons)),
		TimeBands:      make([]TimeBandResponse, 0, len(rs.TimeBands)),
		PriceRules:     make([]PriceRuleResponse, 0, len(rs.PriceRules)),
		Overrides:      make([]OverrideResponse, 0, len(rs.Overrides)),
		CanonicalBands: make([]CanonicalBandBody, 0, len(rs.CanonicalBands)),
	}
	for _, s := range rs.Seasons {
		resp.Seasons = append(resp.Seasons, NewSeasonResponse(s))
	}
	for _, b := range rs.TimeBands {
		resp.TimeBands = append(resp.TimeBands, NewTimeBandResponse(b))
	}
	for _, p := range rs.PriceRules {
		resp.PriceRules = append(resp.PriceRules, NewPriceRuleResponse(p))
	}
	for _, o := range rs.Overrides {
		resp.Overrides = append(resp.Overrides, NewOverrideResponse(o))
	}
	for _, c := range rs.CanonicalBands {
		resp.CanonicalBands = append(resp.CanonicalBands, CanonicalBandBody{
			Label:     c.Label,
			StartTime: pricing.FormatClock(c.StartMinute),
			EndTime:   pricing.FormatClock(c.EndMinute),
		})
	}
	if rs.BaseProduct != nil {
		resp.BaseProduct = &BaseProductBody{
			GreenFeeBaseUSD: rs.BaseProduct.GreenFeeBaseUSD,
			CartFeeUSD:      rs.BaseProduct.CartFeeUSD,
			CaddieFeeUSD:    rs.BaseProduct.CaddieFeeUSD,
			InsuranceFeeUSD: rs.BaseProduct.InsuranceFeeUSD,
		}
	}
	return resp
}
