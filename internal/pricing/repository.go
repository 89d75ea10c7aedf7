package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the rule store: it owns persistence of all pricing records
// for a course and the atomicity of batched deletions. The engine and the
// dedupe service never touch the database directly.
type Repository interface {
	// LoadPricingData loads the complete rule set of one course. Absent
	// sub-collections come back as empty slices; a missing base product is
	// returned as nil, not an error.
	LoadPricingData(ctx context.Context, courseID string) (*RuleSet, error)

	CreateSeason(ctx context.Context, s *Season) error
	UpdateSeason(ctx context.Context, s *Season) error
	DeleteSeason(ctx context.Context, courseID, id string) error

	CreateTimeBand(ctx context.Context, b *TimeBand) error
	UpdateTimeBand(ctx context.Context, b *TimeBand) error

	CreatePriceRule(ctx context.Context, r *PriceRule) error
	UpdatePriceRule(ctx context.Context, r *PriceRule) error

	CreateOverride(ctx context.Context, o *SpecialOverride) error
	UpdateOverride(ctx context.Context, o *SpecialOverride) error
	DeleteOverride(ctx context.Context, courseID, id string) error

	UpsertBaseProduct(ctx context.Context, p *BaseProduct) error
	ReplaceCanonicalBands(ctx context.Context, courseID string, bands []CanonicalBand) error

	// DeleteTimeBands and DeletePriceRules remove the given ids in a single
	// transaction: either every row is deleted or none is.
	DeleteTimeBands(ctx context.Context, courseID string, ids []string) error
	DeletePriceRules(ctx context.Context, courseID string, ids []string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) LoadPricingData(ctx context.Context, courseID string) (*RuleSet, error) {
	rs := &RuleSet{
		CourseID:       courseID,
		Seasons:        []*Season{},
		TimeBands:      []*TimeBand{},
		PriceRules:     []*PriceRule{},
		Overrides:      []*SpecialOverride{},
		CanonicalBands: []CanonicalBand{},
	}

	if err := r.loadSeasons(ctx, rs); err != nil {
		return nil, err
	}
	if err := r.loadTimeBands(ctx, rs); err != nil {
		return nil, err
	}
	if err := r.loadPriceRules(ctx, rs); err != nil {
		return nil, err
	}
	if err := r.loadOverrides(ctx, rs); err != nil {
		return nil, err
	}
	if err := r.loadBaseProduct(ctx, rs); err != nil {
		return nil, err
	}
	if err := r.loadCanonicalBands(ctx, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *pgxRepository) loadSeasons(ctx context.Context, rs *RuleSet) error {
	query, args, err := psql.Select(
		"id", "course_id", "name", "start_date", "end_date",
		"priority", "active", "created_at", "updated_at",
	).
		From("public.pricing_seasons").
		Where(squirrel.Eq{"course_id": rs.CourseID}).
		OrderBy("start_date").
		ToSql()
	if err != nil {
		return fmt.Errorf("build seasons query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load seasons failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s Season
		if err := rows.Scan(
			&s.ID, &s.CourseID, &s.Name, &s.StartDate, &s.EndDate,
			&s.Priority, &s.Active, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan season failed: %w", err)
		}
		rs.Seasons = append(rs.Seasons, &s)
	}
	return rows.Err()
}

func (r *pgxRepository) loadTimeBands(ctx context.Context, rs *RuleSet) error {
	query, args, err := psql.Select(
		"id", "course_id", "label", "start_minute", "end_minute",
		"active", "created_at", "updated_at",
	).
		From("public.pricing_time_bands").
		Where(squirrel.Eq{"course_id": rs.CourseID}).
		OrderBy("start_minute").
		ToSql()
	if err != nil {
		return fmt.Errorf("build time bands query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load time bands failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b TimeBand
		if err := rows.Scan(
			&b.ID, &b.CourseID, &b.Label, &b.StartMinute, &b.EndMinute,
			&b.Active, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan time band failed: %w", err)
		}
		rs.TimeBands = append(rs.TimeBands, &b)
	}
	return rows.Err()
}

func (r *pgxRepository) loadPriceRules(ctx context.Context, rs *RuleSet) error {
	query, args, err := psql.Select(
		"id", "course_id", "name",
		"season_id", "dow", "time_band_id",
		"lead_time_min", "lead_time_max", "occupancy_min", "occupancy_max",
		"players_min", "players_max", "effective_from", "effective_to",
		"price_type", "price_value", "priority", "active",
		"min_price", "max_price", "round_to",
		"created_at", "updated_at",
	).
		From("public.pricing_rules").
		Where(squirrel.Eq{"course_id": rs.CourseID}).
		OrderBy("priority DESC", "updated_at DESC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build price rules query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load price rules failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PriceRule
		if err := rows.Scan(
			&p.ID, &p.CourseID, &p.Name,
			&p.Filters.SeasonID, &p.Filters.Dow, &p.Filters.TimeBandID,
			&p.Filters.LeadTimeMin, &p.Filters.LeadTimeMax,
			&p.Filters.OccupancyMin, &p.Filters.OccupancyMax,
			&p.Filters.PlayersMin, &p.Filters.PlayersMax,
			&p.Filters.EffectiveFrom, &p.Filters.EffectiveTo,
			&p.PriceType, &p.PriceValue, &p.Priority, &p.Active,
			&p.MinPrice, &p.MaxPrice, &p.RoundTo,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan price rule failed: %w", err)
		}
		rs.PriceRules = append(rs.PriceRules, &p)
	}
	return rows.Err()
}

func (r *pgxRepository) loadOverrides(ctx context.Context, rs *RuleSet) error {
	query, args, err := psql.Select(
		"id", "course_id", "name", "start_date", "end_date",
		"start_minute", "end_minute", "override_type", "price_value",
		"priority", "active", "created_at", "updated_at",
	).
		From("public.pricing_overrides").
		Where(squirrel.Eq{"course_id": rs.CourseID}).
		OrderBy("start_date").
		ToSql()
	if err != nil {
		return fmt.Errorf("build overrides query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load overrides failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o SpecialOverride
		if err := rows.Scan(
			&o.ID, &o.CourseID, &o.Name, &o.StartDate, &o.EndDate,
			&o.StartMinute, &o.EndMinute, &o.OverrideType, &o.PriceValue,
			&o.Priority, &o.Active, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan override failed: %w", err)
		}
		rs.Overrides = append(rs.Overrides, &o)
	}
	return rows.Err()
}

func (r *pgxRepository) loadBaseProduct(ctx context.Context, rs *RuleSet) error {
	query, args, err := psql.Select(
		"course_id", "green_fee_base_usd", "cart_fee_usd",
		"caddie_fee_usd", "insurance_fee_usd", "updated_at",
	).
		From("public.base_products").
		Where(squirrel.Eq{"course_id": rs.CourseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build base product query failed: %w", err)
	}

	var p BaseProduct
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&p.CourseID, &p.GreenFeeBaseUSD, &p.CartFeeUSD,
		&p.CaddieFeeUSD, &p.InsuranceFeeUSD, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// Not an error: the engine decides whether a missing base is fatal.
		return nil
	}
	if err != nil {
		return fmt.Errorf("load base product failed: %w", err)
	}
	rs.BaseProduct = &p
	return nil
}

func (r *pgxRepository) loadCanonicalBands(ctx context.Context, rs *RuleSet) error {
	query, args, err := psql.Select("course_id", "label", "start_minute", "end_minute").
		From("public.canonical_time_bands").
		Where(squirrel.Eq{"course_id": rs.CourseID}).
		OrderBy("start_minute").
		ToSql()
	if err != nil {
		return fmt.Errorf("build canonical bands query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load canonical bands failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CanonicalBand
		if err := rows.Scan(&c.CourseID, &c.Label, &c.StartMinute, &c.EndMinute); err != nil {
			return fmt.Errorf("scan canonical band failed: %w", err)
		}
		rs.CanonicalBands = append(rs.CanonicalBands, c)
	}
	return rows.Err()
}

func (r *pgxRepository) CreateSeason(ctx context.Context, s *Season) error {
	query, args, err := psql.Insert("public.pricing_seasons").
		Columns("course_id", "name", "start_date", "end_date", "priority", "active").
		Values(s.CourseID, s.Name, s.StartDate, s.EndDate, s.Priority, s.Active).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create season query failed: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *pgxRepository) UpdateSeason(ctx context.Context, s *Season) error {
	query, args, err := psql.Update("public.pricing_seasons").
		Set("name", s.Name).
		Set("start_date", s.StartDate).
		Set("end_date", s.EndDate).
		Set("priority", s.Priority).
		Set("active", s.Active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID, "course_id": s.CourseID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update season query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSeasonNotFound
		}
		return fmt.Errorf("update season failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteSeason(ctx context.Context, courseID, id string) error {
	query, args, err := psql.Delete("public.pricing_seasons").
		Where(squirrel.Eq{"id": id, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete season query failed: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete season failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSeasonNotFound
	}
	return nil
}

func (r *pgxRepository) CreateTimeBand(ctx context.Context, b *TimeBand) error {
	query, args, err := psql.Insert("public.pricing_time_bands").
		Columns("course_id", "label", "start_minute", "end_minute", "active").
		Values(b.CourseID, b.Label, b.StartMinute, b.EndMinute, b.Active).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create time band query failed: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *pgxRepository) UpdateTimeBand(ctx context.Context, b *TimeBand) error {
	query, args, err := psql.Update("public.pricing_time_bands").
		Set("label", b.Label).
		Set("start_minute", b.StartMinute).
		Set("end_minute", b.EndMinute).
		Set("active", b.Active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "course_id": b.CourseID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update time band query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBandNotFound
		}
		return fmt.Errorf("update time band failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreatePriceRule(ctx context.Context, p *PriceRule) error {
	query, args, err := psql.Insert("public.pricing_rules").
		Columns(
			"course_id", "name",
			"season_id", "dow", "time_band_id",
			"lead_time_min", "lead_time_max", "occupancy_min", "occupancy_max",
			"players_min", "players_max", "effective_from", "effective_to",
			"price_type", "price_value", "priority", "active",
			"min_price", "max_price", "round_to",
		).
		Values(
			p.CourseID, p.Name,
			p.Filters.SeasonID, p.Filters.Dow, p.Filters.TimeBandID,
			p.Filters.LeadTimeMin, p.Filters.LeadTimeMax,
			p.Filters.OccupancyMin, p.Filters.OccupancyMax,
			p.Filters.PlayersMin, p.Filters.PlayersMax,
			p.Filters.EffectiveFrom, p.Filters.EffectiveTo,
			p.PriceType, p.PriceValue, p.Priority, p.Active,
			p.MinPrice, p.MaxPrice, p.RoundTo,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create price rule query failed: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *pgxRepository) UpdatePriceRule(ctx context.Context, p *PriceRule) error {
	query, args, err := psql.Update("public.pricing_rules").
		Set("name", p.Name).
		Set("season_id", p.Filters.SeasonID).
		Set("dow", p.Filters.Dow).
		Set("time_band_id", p.Filters.TimeBandID).
		Set("lead_time_min", p.Filters.LeadTimeMin).
		Set("lead_time_max", p.Filters.LeadTimeMax).
		Set("occupancy_min", p.Filters.OccupancyMin).
		Set("occupancy_max", p.Filters.OccupancyMax).
		Set("players_min", p.Filters.PlayersMin).
		Set("players_max", p.Filters.PlayersMax).
		Set("effective_from", p.Filters.EffectiveFrom).
		Set("effective_to", p.Filters.EffectiveTo).
		Set("price_type", p.PriceType).
		Set("price_value", p.PriceValue).
		Set("priority", p.Priority).
		Set("active", p.Active).
		Set("min_price", p.MinPrice).
		Set("max_price", p.MaxPrice).
		Set("round_to", p.RoundTo).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID, "course_id": p.CourseID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update price rule query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("update price rule failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreateOverride(ctx context.Context, o *SpecialOverride) error {
	query, args, err := psql.Insert("public.pricing_overrides").
		Columns(
			"course_id", "name", "start_date", "end_date",
			"start_minute", "end_minute", "override_type", "price_value",
			"priority", "active",
		).
		Values(
			o.CourseID, o.Name, o.StartDate, o.EndDate,
			o.StartMinute, o.EndMinute, o.OverrideType, o.PriceValue,
			o.Priority, o.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create override query failed: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *pgxRepository) UpdateOverride(ctx context.Context, o *SpecialOverride) error {
	query, args, err := psql.Update("public.pricing_overrides").
		Set("name", o.Name).
		Set("start_date", o.StartDate).
		Set("end_date", o.EndDate).
		Set("start_minute", o.StartMinute).
		Set("end_minute", o.EndMinute).
		Set("override_type", o.OverrideType).
		Set("price_value", o.PriceValue).
		Set("priority", o.Priority).
		Set("active", o.Active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": o.ID, "course_id": o.CourseID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update override query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOverrideNotFound
		}
		return fmt.Errorf("update override failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteOverride(ctx context.Context, courseID, id string) error {
	query, args, err := psql.Delete("public.pricing_overrides").
		Where(squirrel.Eq{"id": id, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete override query failed: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete override failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOverrideNotFound
	}
	return nil
}

func (r *pgxRepository) UpsertBaseProduct(ctx context.Context, p *BaseProduct) error {
	const query = `
		INSERT INTO public.base_products
			(course_id, green_fee_base_usd, cart_fee_usd, caddie_fee_usd, insurance_fee_usd)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (course_id) DO UPDATE SET
			green_fee_base_usd = EXCLUDED.green_fee_base_usd,
			cart_fee_usd = EXCLUDED.cart_fee_usd,
			caddie_fee_usd = EXCLUDED.caddie_fee_usd,
			insurance_fee_usd = EXCLUDED.insurance_fee_usd,
			updated_at = now()
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(
		ctx, query,
		p.CourseID, p.GreenFeeBaseUSD, p.CartFeeUSD, p.CaddieFeeUSD, p.InsuranceFeeUSD,
	).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert base product failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ReplaceCanonicalBands(ctx context.Context, courseID string, bands []CanonicalBand) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace canonical bands failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM public.canonical_time_bands WHERE course_id = $1`, courseID,
	); err != nil {
		return fmt.Errorf("clear canonical bands failed: %w", err)
	}
	for _, b := range bands {
		if _, err := tx.Exec(ctx,
			`INSERT INTO public.canonical_time_bands (course_id, label, start_minute, end_minute)
			 VALUES ($1, $2, $3, $4)`,
			courseID, b.Label, b.StartMinute, b.EndMinute,
		); err != nil {
			return fmt.Errorf("insert canonical band failed: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *pgxRepository) DeleteTimeBands(ctx context.Context, courseID string, ids []string) error {
	return r.deleteByIDs(ctx, "public.pricing_time_bands", courseID, ids)
}

func (r *pgxRepository) DeletePriceRules(ctx context.Context, courseID string, ids []string) error {
	return r.deleteByIDs(ctx, "public.pricing_rules", courseID, ids)
}

// deleteByIDs removes the given rows in one transaction so a dedupe batch is
// all-or-nothing.
func (r *pgxRepository) deleteByIDs(ctx context.Context, table, courseID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := psql.Delete(table).
		Where(squirrel.Eq{"course_id": courseID, "id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build batch delete query failed: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch delete failed: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("batch delete failed: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		// A concurrent writer removed part of the set; abort so the caller
		// can re-run the dedupe against fresh data.
		return fmt.Errorf("batch delete affected %d of %d rows", tag.RowsAffected(), len(ids))
	}
	return tx.Commit(ctx)
}
