package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context, filter Filter) ([]*Course, int, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const courseColumns = "id, name, description, address, city, holes, latitude, longitude, photo_path, thumb_path, active, created_at, updated_at"

func (r *pgxRepository) Create(ctx context.Context, co *Course) error {
	query, args, err := psql.Insert("public.courses").
		Columns("name", "description", "address", "city", "holes", "latitude", "longitude", "active").
		Values(co.Name, co.Description, co.Address, co.City, co.Holes, co.Latitude, co.Longitude, co.Active).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create course query failed: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&co.ID, &co.CreatedAt, &co.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Course, error) {
	query, args, err := psql.Select(courseColumns).
		From("public.courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get course query failed: %w", err)
	}

	var co Course
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&co.ID, &co.Name, &co.Description, &co.Address, &co.City, &co.Holes,
		&co.Latitude, &co.Longitude, &co.PhotoPath, &co.ThumbPath,
		&co.Active, &co.CreatedAt, &co.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course failed: %w", err)
	}
	return &co, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Course, int, error) {
	query := psql.Select(courseColumns, "count(*) OVER() as total_count").
		From("public.courses")

	if filter.City != "" {
		query = query.Where(squirrel.Eq{"city": filter.City})
	}
	if filter.Keyword != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Keyword + "%"})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"active": true})
	}

	query = query.OrderBy("name")
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list courses query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses failed: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	total := 0
	for rows.Next() {
		var co Course
		if err := rows.Scan(
			&co.ID, &co.Name, &co.Description, &co.Address, &co.City, &co.Holes,
			&co.Latitude, &co.Longitude, &co.PhotoPath, &co.ThumbPath,
			&co.Active, &co.CreatedAt, &co.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan course failed: %w", err)
		}
		courses = append(courses, &co)
	}
	return courses, total, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, co *Course) error {
	query, args, err := psql.Update("public.courses").
		Set("name", co.Name).
		Set("description", co.Description).
		Set("address", co.Address).
		Set("city", co.City).
		Set("holes", co.Holes).
		Set("latitude", co.Latitude).
		Set("longitude", co.Longitude).
		Set("photo_path", co.PhotoPath).
		Set("thumb_path", co.ThumbPath).
		Set("active", co.Active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": co.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update course query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&co.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update course failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete course query failed: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete course failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
