package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/persistence"
)

// ReviewRepository encapsulates review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*domain.Review, error)
	ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]domain.Review, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates the repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

func (r *reviewRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const reviewColumns = `id, course_id, student_id, stars, comment, created_at, updated_at`

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (course_id, student_id, stars, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		review.CourseID,
		review.StudentID,
		review.Stars,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (r *reviewRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*domain.Review, error) {
	const query = `SELECT ` + reviewColumns + ` FROM reviews WHERE student_id=$1 AND course_id=$2`
	var review domain.Review
	if err := scanReview(r.db(ctx).QueryRow(ctx, query, studentID, courseID), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE course_id=$1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		reviewColumns, limit, offset)
	rows, err := r.db(ctx).Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := scanReview(rows, &review); err != nil {
			return nil, err
		}
		result = append(result, review)
	}
	return result, rows.Err()
}

func scanReview(row pgx.Row, review *domain.Review) error {
	return row.Scan(
		&review.ID,
		&review.CourseID,
		&review.StudentID,
		&review.Stars,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
}
