package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/persistence"
)

// PromoRepository encapsulates promo code persistence.
type PromoRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	Update(ctx context.Context, promo *domain.PromoCode) error
	GetByID(ctx context.Context, id string) (*domain.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.PromoCode, error)
}

type promoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository instantiates the repository.
func NewPromoRepository(pool *pgxpool.Pool) PromoRepository {
	return &promoRepository{pool: pool}
}

func (r *promoRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const promoColumns = `id, code, discount_type, percent_off, amount_off, amount_off_currency, valid_from, valid_until,
               max_redemptions, redeemed_count, active, created_at, updated_at`

func (r *promoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	const query = `
        INSERT INTO promo_codes (code, discount_type, percent_off, amount_off, amount_off_currency, valid_from, valid_until, max_redemptions, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		promo.Code,
		promo.DiscountType,
		promo.PercentOff,
		promo.AmountOff.Amount,
		nullableCurrency(promo.AmountOff.Currency),
		promo.ValidFrom,
		promo.ValidUntil,
		promo.MaxRedemptions,
		promo.Active,
	).Scan(&promo.ID, &promo.CreatedAt, &promo.UpdatedAt)
}

func (r *promoRepository) Update(ctx context.Context, promo *domain.PromoCode) error {
	const query = `
        UPDATE promo_codes SET valid_from=$1, valid_until=$2, max_redemptions=$3, redeemed_count=$4, active=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db(ctx).Exec(ctx, query,
		promo.ValidFrom,
		promo.ValidUntil,
		promo.MaxRedemptions,
		promo.RedeemedCount,
		promo.Active,
		promo.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *promoRepository) GetByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	return r.fetchSingle(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE id=$1`, id)
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	return r.fetchSingle(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code=$1`, code)
}

func (r *promoRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.PromoCode, error) {
	var promo domain.PromoCode
	if err := scanPromo(r.db(ctx).QueryRow(ctx, query, arg), &promo); err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.PromoCode, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	if activeOnly {
		where = "active"
	}
	query := fmt.Sprintf(`SELECT %s FROM promo_codes WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		promoColumns, where, limit, offset)

	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PromoCode
	for rows.Next() {
		var promo domain.PromoCode
		if err := scanPromo(rows, &promo); err != nil {
			return nil, err
		}
		result = append(result, promo)
	}
	return result, rows.Err()
}

func scanPromo(row pgx.Row, promo *domain.PromoCode) error {
	var currency *string
	if err := row.Scan(
		&promo.ID,
		&promo.Code,
		&promo.DiscountType,
		&promo.PercentOff,
		&promo.AmountOff.Amount,
		&currency,
		&promo.ValidFrom,
		&promo.ValidUntil,
		&promo.MaxRedemptions,
		&promo.RedeemedCount,
		&promo.Active,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	); err != nil {
		return err
	}
	if currency != nil {
		promo.AmountOff.Currency = domain.Currency(*currency)
	}
	return nil
}

func nullableCurrency(currency domain.Currency) *string {
	if currency == "" {
		return nil
	}
	value := string(currency)
	return &value
}
