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

// BookingFilter captures booking listing parameters.
type BookingFilter struct {
	StudentID    *string
	SlotID       *string
	InstructorID *string
	Statuses     []domain.BookingStatus
	Limit        int
	Offset       int
}

// BookingRepository encapsulates booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	CountActiveBySlot(ctx context.Context, slotID string) (int, error)
	ListWithFilter(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates the repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const bookingColumns = `b.id, b.student_id, b.slot_id, b.course_id, b.status, b.note, b.cancelled_at, b.created_at, b.updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (student_id, slot_id, course_id, status, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		booking.StudentID,
		booking.SlotID,
		booking.CourseID,
		booking.Status,
		booking.Note,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	const query = `
        UPDATE bookings SET status=$1, note=$2, cancelled_at=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.db(ctx).Exec(ctx, query,
		booking.Status,
		booking.Note,
		booking.CancelledAt,
		booking.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var booking domain.Booking
	if err := scanBooking(r.db(ctx).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id=$1`, id), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CountActiveBySlot(ctx context.Context, slotID string) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE slot_id=$1 AND status IN ('PENDING','CONFIRMED')`
	var count int
	if err := r.db(ctx).QueryRow(ctx, query, slotID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepository) ListWithFilter(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	base := `SELECT ` + bookingColumns + ` FROM bookings b`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.InstructorID != nil {
		base += ` JOIN availability_slots s ON s.id = b.slot_id`
		args = append(args, *filter.InstructorID)
		clauses = append(clauses, fmt.Sprintf("s.instructor_id=$%d", len(args)))
	}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("b.student_id=$%d", len(args)))
	}
	if filter.SlotID != nil {
		args = append(args, *filter.SlotID)
		clauses = append(clauses, fmt.Sprintf("b.slot_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("b.status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY b.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		var booking domain.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		result = append(result, booking)
	}
	return result, rows.Err()
}

func scanBooking(row pgx.Row, booking *domain.Booking) error {
	return row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.SlotID,
		&booking.CourseID,
		&booking.Status,
		&booking.Note,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
}
