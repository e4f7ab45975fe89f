package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kissesu/claude-token-monitor/internal/models"
)

const providerColumns = `id, api_key_hash, api_key_prefix, display_name, base_url,
	is_active, first_seen_at, last_seen_at`

// RecognizeProvider resolves a raw credential to its provider row and makes
// it the single active provider. The deactivate-then-activate sequence runs
// in one transaction so no reader ever observes zero or two active rows.
func (db *DB) RecognizeProvider(apiKey, baseURL string) (*models.Provider, error) {
	ctx := context.Background()
	hash := models.HashAPIKey(apiKey)
	now := time.Now().Format(time.RFC3339)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := providerByHash(ctx, tx, hash)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE providers SET is_active = 0"); err != nil {
		return nil, fmt.Errorf("failed to deactivate providers: %w", err)
	}

	if existing != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE providers SET last_seen_at = ?, base_url = COALESCE(NULLIF(?, ''), base_url), is_active = 1
			 WHERE id = ?`,
			now, baseURL, existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reactivate provider: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit recognition: %w", err)
		}

		updated := existing.Activated(baseURL)
		updated.LastSeenAt = now
		return &updated, nil
	}

	provider := models.NewProvider(apiKey, "", baseURL)
	provider.FirstSeenAt = now
	provider.LastSeenAt = now

	result, err := tx.ExecContext(ctx,
		`INSERT INTO providers (api_key_hash, api_key_prefix, display_name, base_url, is_active, first_seen_at, last_seen_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		provider.APIKeyHash,
		provider.APIKeyPrefix,
		nullString(provider.DisplayName),
		nullString(provider.BaseURL),
		provider.FirstSeenAt,
		provider.LastSeenAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert provider: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		provider.ID = id
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recognition: %w", err)
	}

	return &provider, nil
}

// CreateProvider registers a credential by hand. Unlike recognition it never
// steals the active flag: a manual add must not disturb the tracked live
// session. Adding an already-known credential only updates the display name.
func (db *DB) CreateProvider(apiKey, displayName string) (*models.Provider, error) {
	ctx := context.Background()
	hash := models.HashAPIKey(apiKey)

	existing, err := db.providerByHashConn(ctx, hash)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if displayName != "" && displayName != existing.DisplayName {
			if err := db.RenameProvider(existing.ID, displayName); err != nil {
				return nil, err
			}
			existing.DisplayName = displayName
		}
		return existing, nil
	}

	provider := models.NewProvider(apiKey, displayName, "")
	provider.IsActive = false

	result, err := db.ExecContext(ctx,
		`INSERT INTO providers (api_key_hash, api_key_prefix, display_name, base_url, is_active, first_seen_at, last_seen_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		provider.APIKeyHash,
		provider.APIKeyPrefix,
		nullString(provider.DisplayName),
		nullString(provider.BaseURL),
		provider.FirstSeenAt,
		provider.LastSeenAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert provider: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		provider.ID = id
	}

	return &provider, nil
}

// ListProviders returns all providers, most recently seen first.
func (db *DB) ListProviders(activeOnly bool) ([]models.Provider, error) {
	query := "SELECT " + providerColumns + " FROM providers ORDER BY last_seen_at DESC"
	if activeOnly {
		query = "SELECT " + providerColumns + " FROM providers WHERE is_active = 1 ORDER BY last_seen_at DESC"
	}

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var providers []models.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	return providers, rows.Err()
}

// ActiveProvider returns the single active provider, or nil when none is.
func (db *DB) ActiveProvider() (*models.Provider, error) {
	row := db.QueryRowContext(context.Background(),
		"SELECT "+providerColumns+" FROM providers WHERE is_active = 1 LIMIT 1")

	p, err := scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RenameProvider sets the user-assigned display name.
func (db *DB) RenameProvider(providerID int64, displayName string) error {
	res, err := db.ExecContext(context.Background(),
		"UPDATE providers SET display_name = ? WHERE id = ?",
		nullString(displayName), providerID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename provider: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("provider %d not found", providerID)
	}
	return nil
}

// DeleteProvider removes a provider and everything recorded under it:
// usage events first, then rollups, then switch logs, then the row itself,
// in one transaction.
func (db *DB) DeleteProvider(providerID int64) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		"DELETE FROM message_usage WHERE provider_id = ?",
		"DELETE FROM daily_stats WHERE provider_id = ?",
		"DELETE FROM provider_switch_logs WHERE provider_id = ?",
		"DELETE FROM providers WHERE id = ?",
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt, providerID); err != nil {
			return fmt.Errorf("failed to delete provider %d: %w", providerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit provider deletion: %w", err)
	}
	return nil
}

// LogProviderSwitch appends to the switch audit log.
func (db *DB) LogProviderSwitch(providerID int64) error {
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO provider_switch_logs (provider_id, switched_at) VALUES (?, ?)",
		providerID, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to log provider switch: %w", err)
	}
	return nil
}

// RecentSwitches returns the latest switch log entries, newest first.
func (db *DB) RecentSwitches(limit int) ([]models.ProviderSwitch, error) {
	rows, err := db.QueryContext(context.Background(),
		"SELECT id, provider_id, switched_at FROM provider_switch_logs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query switch logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var switches []models.ProviderSwitch
	for rows.Next() {
		var s models.ProviderSwitch
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.SwitchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan switch log: %w", err)
		}
		switches = append(switches, s)
	}

	return switches, rows.Err()
}

// providerByHash looks a provider up by credential hash inside a transaction.
func providerByHash(ctx context.Context, tx *sql.Tx, hash string) (*models.Provider, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE api_key_hash = ?", hash)

	p, err := scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) providerByHashConn(ctx context.Context, hash string) (*models.Provider, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE api_key_hash = ?", hash)

	p, err := scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (models.Provider, error) {
	var p models.Provider
	var displayName, baseURL sql.NullString
	var isActive int64

	err := row.Scan(
		&p.ID,
		&p.APIKeyHash,
		&p.APIKeyPrefix,
		&displayName,
		&baseURL,
		&isActive,
		&p.FirstSeenAt,
		&p.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan provider: %w", err)
	}

	p.DisplayName = displayName.String
	p.BaseURL = baseURL.String
	p.IsActive = isActive == 1
	return p, nil
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
