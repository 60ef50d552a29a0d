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

// AuditFilter captures audit log listing parameters.
type AuditFilter struct {
	ActorID *string
	Command *string
	Outcome *domain.AuditOutcome
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// AuditRepository encapsulates audit log persistence.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
	ListWithFilter(ctx context.Context, filter AuditFilter) ([]domain.AuditLog, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates the repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const auditColumns = `id, actor_type, actor_id, command, outcome, error_code, duration_ms, created_at`

// Record always writes against the pool directly. Audit entries must survive
// the surrounding transaction being rolled back.
func (r *auditRepository) Record(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (actor_type, actor_id, command, outcome, error_code, duration_ms)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ActorType,
		entry.ActorID,
		entry.Command,
		entry.Outcome,
		entry.ErrorCode,
		entry.DurationMS,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListWithFilter(ctx context.Context, filter AuditFilter) ([]domain.AuditLog, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id=$%d", len(args)))
	}
	if filter.Command != nil {
		args = append(args, *filter.Command)
		clauses = append(clauses, fmt.Sprintf("command=$%d", len(args)))
	}
	if filter.Outcome != nil {
		args = append(args, *filter.Outcome)
		clauses = append(clauses, fmt.Sprintf("outcome=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM audit_logs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		auditColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		if err := scanAudit(rows, &entry); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanAudit(row pgx.Row, entry *domain.AuditLog) error {
	return row.Scan(
		&entry.ID,
		&entry.ActorType,
		&entry.ActorID,
		&entry.Command,
		&entry.Outcome,
		&entry.ErrorCode,
		&entry.DurationMS,
		&entry.CreatedAt,
	)
}
