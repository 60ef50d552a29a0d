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

// EnrollmentRepository encapsulates enrollment persistence.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	Update(ctx context.Context, enrollment *domain.Enrollment) error
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string, statuses []domain.EnrollmentStatus, limit, offset int) ([]domain.Enrollment, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const enrollmentColumns = `id, student_id, course_id, price_paid_amount, price_paid_currency, promo_code_id, status, created_at, updated_at`

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        INSERT INTO enrollments (student_id, course_id, price_paid_amount, price_paid_currency, promo_code_id, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.PricePaid.Amount,
		enrollment.PricePaid.Currency,
		enrollment.PromoCodeID,
		enrollment.Status,
	).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `UPDATE enrollments SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db(ctx).Exec(ctx, query, enrollment.Status, enrollment.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	return r.fetchSingle(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id=$1`, id)
}

func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id=$1 AND course_id=$2`
	if err := scanEnrollment(r.db(ctx).QueryRow(ctx, query, studentID, courseID), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	if err := scanEnrollment(r.db(ctx).QueryRow(ctx, query, arg), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string, statuses []domain.EnrollmentStatus, limit, offset int) ([]domain.Enrollment, error) {
	clauses := []string{"student_id=$1"}
	args := []any{studentID}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		enrollmentColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Enrollment
	for rows.Next() {
		var enrollment domain.Enrollment
		if err := scanEnrollment(rows, &enrollment); err != nil {
			return nil, err
		}
		result = append(result, enrollment)
	}
	return result, rows.Err()
}

func scanEnrollment(row pgx.Row, enrollment *domain.Enrollment) error {
	return row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.PricePaid.Amount,
		&enrollment.PricePaid.Currency,
		&enrollment.PromoCodeID,
		&enrollment.Status,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)
}
