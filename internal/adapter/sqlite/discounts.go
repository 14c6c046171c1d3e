package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

var _ domain.DiscountRepository = (*DiscountRepository)(nil)

// DiscountRepository implements domain.DiscountRepository using SQLite.
type DiscountRepository struct {
	db *sql.DB
}

const discountColumns = `id, tenant_id, automation_version_id, code, percent, applies_to,
	kind, used_at, expires_at, created_at`

func (r *DiscountRepository) ListByVersion(ctx context.Context, versionID string) ([]domain.DiscountOffer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+discountColumns+` FROM discount_offers
		 WHERE automation_version_id = ? ORDER BY created_at, kind`, versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing discount offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.DiscountOffer
	for rows.Next() {
		o, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}

	return offers, rows.Err()
}

func (r *DiscountRepository) Insert(ctx context.Context, o domain.DiscountOffer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO discount_offers (`+discountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TenantID, o.AutomationVersionID, domain.NormalizeDiscountCode(o.Code),
		o.Percent, string(o.AppliesTo), string(o.Kind),
		formatNullTime(o.UsedAt), formatNullTime(o.ExpiresAt),
		formatTime(o.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) && strings.Contains(err.Error(), "discount_offers.kind") {
			return &domain.DuplicateOfferKindError{AutomationVersionID: o.AutomationVersionID, Kind: o.Kind}
		}
		return fmt.Errorf("inserting discount offer: %w", err)
	}
	return nil
}

func (r *DiscountRepository) GetByID(ctx context.Context, id string) (domain.DiscountOffer, error) {
	o, err := scanDiscount(r.db.QueryRowContext(ctx,
		`SELECT `+discountColumns+` FROM discount_offers WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DiscountOffer{}, domain.ErrDiscountNotFound
	}
	return o, err
}

func (r *DiscountRepository) FindByCode(ctx context.Context, tenantID, code string) (domain.DiscountOffer, error) {
	o, err := scanDiscount(r.db.QueryRowContext(ctx,
		`SELECT `+discountColumns+` FROM discount_offers WHERE tenant_id = ? AND code = ?`,
		tenantID, domain.NormalizeDiscountCode(code),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DiscountOffer{}, domain.ErrDiscountNotFound
	}
	return o, err
}

// MarkUsed relies on the used_at IS NULL guard so that only one of several
// concurrent callers observes an affected row.
func (r *DiscountRepository) MarkUsed(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE discount_offers SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		formatTime(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("marking discount offer used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func scanDiscount(row scanner) (domain.DiscountOffer, error) {
	var o domain.DiscountOffer
	var appliesTo, kind, createdAt string
	var usedAt, expiresAt sql.NullString

	err := row.Scan(&o.ID, &o.TenantID, &o.AutomationVersionID, &o.Code, &o.Percent,
		&appliesTo, &kind, &usedAt, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DiscountOffer{}, err
		}
		return domain.DiscountOffer{}, fmt.Errorf("scanning discount offer: %w", err)
	}

	o.AppliesTo = domain.DiscountScope(appliesTo)
	o.Kind = domain.OfferKind(kind)
	o.UsedAt = parseNullTime(usedAt)
	o.ExpiresAt = parseNullTime(expiresAt)
	o.CreatedAt = parseTime(createdAt)

	return o, nil
}
