package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

var _ domain.QuoteRepository = (*QuoteRepository)(nil)

// QuoteRepository implements domain.QuoteRepository using SQLite.
type QuoteRepository struct {
	db *sql.DB
}

const quoteColumns = `id, tenant_id, automation_version_id, status, complexity, currency,
	setup_fee, unit_price, effective_unit_price, estimated_volume, estimated_monthly_spend,
	discounts_applied, discount_offer_ids, created_at, updated_at`

// appliedDiscountRow is the JSON shape of one entry in quotes.discounts_applied.
type appliedDiscountRow struct {
	Source    string  `json:"source"`
	Percent   float64 `json:"percent"`
	AppliesTo string  `json:"appliesTo"`
	Amount    float64 `json:"amount"`
}

func (r *QuoteRepository) Create(ctx context.Context, q domain.Quote) error {
	status, err := domain.ToDBQuoteStatus(q.Status)
	if err != nil {
		return err
	}

	applied := make([]appliedDiscountRow, 0, len(q.DiscountsApplied))
	for _, d := range q.DiscountsApplied {
		applied = append(applied, appliedDiscountRow{
			Source:    d.Source,
			Percent:   d.Percent,
			AppliesTo: string(d.AppliesTo),
			Amount:    d.Amount,
		})
	}
	appliedJSON, err := json.Marshal(applied)
	if err != nil {
		return fmt.Errorf("encoding applied discounts: %w", err)
	}

	offerIDs := q.DiscountOfferIDs
	if offerIDs == nil {
		offerIDs = []string{}
	}
	offerIDsJSON, err := json.Marshal(offerIDs)
	if err != nil {
		return fmt.Errorf("encoding discount offer ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quotes (`+quoteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.TenantID, q.AutomationVersionID, status, string(q.Complexity), q.Currency,
		q.SetupFee, q.UnitPrice, q.EffectiveUnitPrice, q.EstimatedVolume, q.EstimatedMonthlySpend,
		string(appliedJSON), string(offerIDsJSON),
		formatTime(q.CreatedAt),
		formatTime(q.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting quote: %w", err)
	}
	return nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (domain.Quote, error) {
	q, err := scanQuote(r.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return q, err
}

func (r *QuoteRepository) Latest(ctx context.Context, versionID string) (domain.Quote, error) {
	q, err := scanQuote(r.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes
		 WHERE automation_version_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, versionID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return q, err
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id string, from, to domain.QuoteStatus) error {
	fromDB, err := domain.ToDBQuoteStatus(from)
	if err != nil {
		return err
	}
	toDB, err := domain.ToDBQuoteStatus(to)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		toDB, formatTime(time.Now()), id, fromDB,
	)
	if err != nil {
		return fmt.Errorf("updating quote status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrStatusConflict
}

// Sign runs the offer redemptions and the SENT to SIGNED write in one
// transaction so a failed step leaves every offer unused.
func (r *QuoteRepository) Sign(ctx context.Context, id string, offerIDs []string, at time.Time) (err error) {
	sent, _ := domain.ToDBQuoteStatus(domain.QuoteSent)
	signed, _ := domain.ToDBQuoteStatus(domain.QuoteSigned)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sign transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, offerID := range offerIDs {
		result, err := tx.ExecContext(ctx,
			`UPDATE discount_offers SET used_at = ? WHERE id = ? AND used_at IS NULL`,
			formatTime(at), offerID,
		)
		if err != nil {
			return fmt.Errorf("redeeming discount offer %s: %w", offerID, err)
		}
		ok, err := affected(result)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		found, err := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM discount_offers WHERE id = ?)`, offerID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("discount offer %s: %w", offerID, domain.ErrDiscountNotFound)
		}
		return fmt.Errorf("discount offer %s: %w", offerID, domain.ErrDiscountAlreadyUsed)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE quotes SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		signed, formatTime(at), id, sent,
	)
	if err != nil {
		return fmt.Errorf("signing quote: %w", err)
	}
	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		found, err := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM quotes WHERE id = ?)`, id)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrQuoteNotFound
		}
		return domain.ErrStatusConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sign transaction: %w", err)
	}
	return nil
}

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return rows > 0, nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking row: %w", err)
	}
	return exists, nil
}

func scanQuote(row scanner) (domain.Quote, error) {
	var q domain.Quote
	var status, complexity, appliedJSON, offerIDsJSON, createdAt, updatedAt string

	err := row.Scan(&q.ID, &q.TenantID, &q.AutomationVersionID, &status, &complexity, &q.Currency,
		&q.SetupFee, &q.UnitPrice, &q.EffectiveUnitPrice, &q.EstimatedVolume, &q.EstimatedMonthlySpend,
		&appliedJSON, &offerIDsJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quote{}, err
		}
		return domain.Quote{}, fmt.Errorf("scanning quote: %w", err)
	}

	q.Status, err = domain.FromDBQuoteStatus(status)
	if err != nil {
		return domain.Quote{}, err
	}
	q.Complexity = domain.Complexity(complexity)

	var applied []appliedDiscountRow
	if err := json.Unmarshal([]byte(appliedJSON), &applied); err != nil {
		return domain.Quote{}, fmt.Errorf("decoding applied discounts: %w", err)
	}
	for _, d := range applied {
		q.DiscountsApplied = append(q.DiscountsApplied, domain.AppliedDiscount{
			Source:    d.Source,
			Percent:   d.Percent,
			AppliesTo: domain.DiscountScope(d.AppliesTo),
			Amount:    d.Amount,
		})
	}
	if err := json.Unmarshal([]byte(offerIDsJSON), &q.DiscountOfferIDs); err != nil {
		return domain.Quote{}, fmt.Errorf("decoding discount offer ids: %w", err)
	}

	q.CreatedAt = parseTime(createdAt)
	q.UpdatedAt = parseTime(updatedAt)

	return q, nil
}
