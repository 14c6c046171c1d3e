package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

var _ domain.AutomationRepository = (*AutomationRepository)(nil)

// AutomationRepository implements domain.AutomationRepository using SQLite.
type AutomationRepository struct {
	db *sql.DB
}

const automationColumns = `id, tenant_id, automation_id, name, status, created_at, updated_at`

func (r *AutomationRepository) Create(ctx context.Context, v domain.AutomationVersion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO automation_versions (`+automationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.TenantID, v.AutomationID, v.Name, string(v.Status),
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting automation version: %w", err)
	}
	return nil
}

func (r *AutomationRepository) GetByID(ctx context.Context, id string) (domain.AutomationVersion, error) {
	v, err := scanAutomation(r.db.QueryRowContext(ctx,
		`SELECT `+automationColumns+` FROM automation_versions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AutomationVersion{}, domain.ErrAutomationNotFound
	}
	return v, err
}

func (r *AutomationRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.AutomationVersion, error) {
	query := `SELECT ` + automationColumns + ` FROM automation_versions WHERE 1 = 1`
	var args []any

	if filter.TenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, filter.TenantID)
	}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC, id`

	// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing automation versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.AutomationVersion
	for rows.Next() {
		v, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

func (r *AutomationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LifecycleStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_versions SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(to), formatTime(time.Now()), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("updating automation status: %w", err)
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

func (r *AutomationRepository) HasEarlierVersions(ctx context.Context, tenantID, versionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM automation_versions o
		   JOIN automation_versions v ON v.id = ?
		   WHERE o.tenant_id = ? AND o.id <> v.id
		     AND (o.created_at < v.created_at
		          OR (o.created_at = v.created_at AND o.id < v.id))
		 )`,
		versionID, tenantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking earlier versions: %w", err)
	}
	return exists, nil
}

func scanAutomation(row scanner) (domain.AutomationVersion, error) {
	var v domain.AutomationVersion
	var status, createdAt, updatedAt string

	err := row.Scan(&v.ID, &v.TenantID, &v.AutomationID, &v.Name, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AutomationVersion{}, err
		}
		return domain.AutomationVersion{}, fmt.Errorf("scanning automation version: %w", err)
	}

	v.Status = domain.LifecycleStatus(status)
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)

	return v, nil
}
