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

// PaymentFilter captures payment listing parameters.
type PaymentFilter struct {
	PayerID  *string
	Purpose  *domain.PaymentPurpose
	Statuses []domain.PaymentStatus
	Limit    int
	Offset   int
}

// PaymentRepository encapsulates payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)
	ListWithFilter(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates the repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const paymentColumns = `id, payer_id, purpose, reference_id, amount, currency, status, idempotency_key, provider_ref, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (payer_id, purpose, reference_id, amount, currency, status, idempotency_key, provider_ref)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		payment.PayerID,
		payment.Purpose,
		payment.ReferenceID,
		payment.Amount.Amount,
		payment.Amount.Currency,
		payment.Status,
		payment.IdempotencyKey,
		payment.ProviderRef,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	const query = `UPDATE payments SET status=$1, provider_ref=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.db(ctx).Exec(ctx, query, payment.Status, payment.ProviderRef, payment.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.fetchSingle(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
}

func (r *paymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	return r.fetchSingle(ctx, `SELECT `+paymentColumns+` FROM payments WHERE idempotency_key=$1`, key)
}

func (r *paymentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	var payment domain.Payment
	if err := scanPayment(r.db(ctx).QueryRow(ctx, query, arg), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListWithFilter(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PayerID != nil {
		args = append(args, *filter.PayerID)
		clauses = append(clauses, fmt.Sprintf("payer_id=$%d", len(args)))
	}
	if filter.Purpose != nil {
		args = append(args, *filter.Purpose)
		clauses = append(clauses, fmt.Sprintf("purpose=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		paymentColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}

func scanPayment(row pgx.Row, payment *domain.Payment) error {
	return row.Scan(
		&payment.ID,
		&payment.PayerID,
		&payment.Purpose,
		&payment.ReferenceID,
		&payment.Amount.Amount,
		&payment.Amount.Currency,
		&payment.Status,
		&payment.IdempotencyKey,
		&payment.ProviderRef,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
}
