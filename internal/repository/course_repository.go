package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/persistence"
)

// CourseFilter captures catalog search parameters.
type CourseFilter struct {
	InstructorID *string
	Specialty    *string
	Statuses     []domain.CourseStatus
	MinPrice     *int64
	MaxPrice     *int64
	SearchTerm   *string
	Limit        int
	Offset       int
}

// CourseRepository encapsulates course persistence.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Course, error)
	ListWithFilter(ctx context.Context, filter CourseFilter) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const courseColumns = `id, instructor_id, title, slug, description, specialty, price_amount, price_currency,
               cover_url, status, published_at, rating_avg, rating_count, created_at, updated_at`

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (instructor_id, title, slug, description, specialty, price_amount, price_currency, cover_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		course.InstructorID,
		course.Title,
		course.Slug,
		course.Description,
		course.Specialty,
		course.Price.Amount,
		course.Price.Currency,
		course.CoverURL,
		course.Status,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET title=$1, slug=$2, description=$3, specialty=$4, price_amount=$5, price_currency=$6,
            cover_url=$7, status=$8, published_at=$9, rating_avg=$10, rating_count=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.db(ctx).Exec(ctx, query,
		course.Title,
		course.Slug,
		course.Description,
		course.Specialty,
		course.Price.Amount,
		course.Price.Currency,
		course.CoverURL,
		course.Status,
		course.PublishedAt,
		course.RatingAvg,
		course.RatingCount,
		course.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return r.fetchSingle(ctx, `SELECT `+courseColumns+` FROM courses WHERE id=$1`, id)
}

func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	return r.fetchSingle(ctx, `SELECT `+courseColumns+` FROM courses WHERE slug=$1`, slug)
}

func (r *courseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Course, error) {
	var course domain.Course
	if err := scanCourse(r.db(ctx).QueryRow(ctx, query, arg), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) ListWithFilter(ctx context.Context, filter CourseFilter) ([]domain.Course, error) {
	base := `SELECT ` + courseColumns + ` FROM courses`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InstructorID != nil {
		args = append(args, *filter.InstructorID)
		clauses = append(clauses, fmt.Sprintf("instructor_id=$%d", len(args)))
	}
	if filter.Specialty != nil {
		args = append(args, *filter.Specialty)
		clauses = append(clauses, fmt.Sprintf("specialty=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price_amount >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price_amount <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Course
	for rows.Next() {
		var course domain.Course
		if err := scanCourse(rows, &course); err != nil {
			return nil, err
		}
		result = append(result, course)
	}
	return result, rows.Err()
}

func scanCourse(row pgx.Row, course *domain.Course) error {
	return row.Scan(
		&course.ID,
		&course.InstructorID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.Specialty,
		&course.Price.Amount,
		&course.Price.Currency,
		&course.CoverURL,
		&course.Status,
		&course.PublishedAt,
		&course.RatingAvg,
		&course.RatingCount,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
}
