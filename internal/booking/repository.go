package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// CountPlayers sums players already holding the given tee time,
	// excluding cancelled bookings.
	CountPlayers(ctx context.Context, courseID string, teeDate time.Time, teeMinute int) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"course_id", "user_id", "tee_date", "tee_minute", "players",
			"holes", "status", "total_cents", "currency", "quote_hash", "promo_code",
		).
		Values(
			b.CourseID, b.UserID, b.TeeDate, b.TeeMinute, b.Players,
			b.Holes, b.Status, b.TotalCents, b.Currency, b.QuoteHash, b.PromoCode,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(
		"b.id", "b.course_id", "c.name", "b.user_id", "u.name",
		"b.tee_date", "b.tee_minute", "b.players", "b.holes", "b.status",
		"b.total_cents", "b.currency", "b.quote_hash", "b.promo_code",
		"b.created_at", "b.updated_at",
	).
		From("public.bookings b").
		Join("public.courses c ON b.course_id = c.id").
		Join("public.users u ON b.user_id = u.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var b Booking
	var userName *string
	if err := row.Scan(
		&b.ID, &b.CourseID, &b.CourseName, &b.UserID, &userName,
		&b.TeeDate, &b.TeeMinute, &b.Players, &b.Holes, &b.Status,
		&b.TotalCents, &b.Currency, &b.QuoteHash, &b.PromoCode,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	if userName != nil {
		b.UserName = *userName
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(
		"b.id", "b.course_id", "c.name", "b.user_id", "u.name",
		"b.tee_date", "b.tee_minute", "b.players", "b.holes", "b.status",
		"b.total_cents", "b.currency", "b.quote_hash", "b.promo_code",
		"b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.courses c ON b.course_id = c.id").
		Join("public.users u ON b.user_id = u.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.CourseID != "" {
		query = query.Where(squirrel.Eq{"b.course_id": filter.CourseID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.tee_date": filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.tee_date": filter.DateTo})
	}

	orderBy := "b.tee_date"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}
	order := "ASC"
	if filter.SortOrder == "DESC" {
		order = "DESC"
	}
	query = query.OrderBy(orderBy+" "+order, "b.tee_minute ASC")

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	total := 0
	for rows.Next() {
		var b Booking
		var userName *string
		if err := rows.Scan(
			&b.ID, &b.CourseID, &b.CourseName, &b.UserID, &userName,
			&b.TeeDate, &b.TeeMinute, &b.Players, &b.Holes, &b.Status,
			&b.TotalCents, &b.Currency, &b.QuoteHash, &b.PromoCode,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		if userName != nil {
			b.UserName = *userName
		}
		bookings = append(bookings, &b)
	}
	return bookings, total, rows.Err()
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CountPlayers(ctx context.Context, courseID string, teeDate time.Time, teeMinute int) (int, error) {
	query, args, err := psql.Select("COALESCE(SUM(players), 0)").
		From("public.bookings").
		Where(squirrel.Eq{"course_id": courseID, "tee_date": teeDate, "tee_minute": teeMinute}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count players query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count players failed: %w", err)
	}
	return count, nil
}
