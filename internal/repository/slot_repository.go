package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/persistence"
)

// SlotFilter captures availability search parameters.
type SlotFilter struct {
	InstructorID *string
	CourseID     *string
	From         *time.Time
	To           *time.Time
	OpenOnly     bool
	Limit        int
	Offset       int
}

// SlotRepository encapsulates availability slot persistence.
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.AvailabilitySlot) error
	Update(ctx context.Context, slot *domain.AvailabilitySlot) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	ListWithFilter(ctx context.Context, filter SlotFilter) ([]domain.AvailabilitySlot, error)
}

type slotRepository struct {
	pool *pgxpool.Pool
}

// NewSlotRepository instantiates the repository.
func NewSlotRepository(pool *pgxpool.Pool) SlotRepository {
	return &slotRepository{pool: pool}
}

func (r *slotRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const slotColumns = `id, instructor_id, course_id, starts_at, ends_at, capacity, booked_count, status, created_at, updated_at`

func (r *slotRepository) Create(ctx context.Context, slot *domain.AvailabilitySlot) error {
	const query = `
        INSERT INTO availability_slots (instructor_id, course_id, starts_at, ends_at, capacity, booked_count, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		slot.InstructorID,
		slot.CourseID,
		slot.StartsAt,
		slot.EndsAt,
		slot.Capacity,
		slot.BookedCount,
		slot.Status,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
}

func (r *slotRepository) Update(ctx context.Context, slot *domain.AvailabilitySlot) error {
	const query = `
        UPDATE availability_slots SET starts_at=$1, ends_at=$2, capacity=$3, booked_count=$4, status=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db(ctx).Exec(ctx, query,
		slot.StartsAt,
		slot.EndsAt,
		slot.Capacity,
		slot.BookedCount,
		slot.Status,
		slot.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slotRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM availability_slots WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	var slot domain.AvailabilitySlot
	if err := scanSlot(r.db(ctx).QueryRow(ctx, `SELECT `+slotColumns+` FROM availability_slots WHERE id=$1`, id), &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) ListWithFilter(ctx context.Context, filter SlotFilter) ([]domain.AvailabilitySlot, error) {
	base := `SELECT ` + slotColumns + ` FROM availability_slots`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InstructorID != nil {
		args = append(args, *filter.InstructorID)
		clauses = append(clauses, fmt.Sprintf("instructor_id=$%d", len(args)))
	}
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		clauses = append(clauses, fmt.Sprintf("course_id=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("starts_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("ends_at <= $%d", len(args)))
	}
	if filter.OpenOnly {
		args = append(args, domain.SlotStatusOpen)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY starts_at ASC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AvailabilitySlot
	for rows.Next() {
		var slot domain.AvailabilitySlot
		if err := scanSlot(rows, &slot); err != nil {
			return nil, err
		}
		result = append(result, slot)
	}
	return result, rows.Err()
}

func scanSlot(row pgx.Row, slot *domain.AvailabilitySlot) error {
	return row.Scan(
		&slot.ID,
		&slot.InstructorID,
		&slot.CourseID,
		&slot.StartsAt,
		&slot.EndsAt,
		&slot.Capacity,
		&slot.BookedCount,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
}
