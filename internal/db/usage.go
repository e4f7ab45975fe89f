package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kissesu/claude-token-monitor/internal/models"
)

// dateLayout is the calendar-date key of daily_stats rows.
const dateLayout = "2006-01-02"

// RecordUsage applies one parsed usage record for a provider.
//
// Replaying a message that is already stored is a successful no-op. A new
// message inserts the raw event and additively upserts the daily rollup;
// the existence check, insert and upsert run in one transaction so two
// near-simultaneous events for a brand-new session cannot both count it.
func (db *DB) RecordUsage(providerID int64, record *models.UsageRecord) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Idempotent replay: (provider_id, message_id) already accounted.
	var one int64
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM message_usage WHERE provider_id = ? AND message_id = ? LIMIT 1",
		providerID, record.MessageID,
	).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check message existence: %w", err)
	}

	// The rollup date is derived once here and stored on the event row, so
	// the session-existence check below and the daily_stats key can never
	// disagree on what day a timestamp falls on.
	date := localDate(record.CreatedAt)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO message_usage (provider_id, session_id, message_id, model,
			input_tokens, output_tokens, cache_read_tokens, cache_creation_tokens,
			cost_usd, created_at, usage_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		providerID,
		record.SessionID,
		record.MessageID,
		record.Model,
		record.Usage.InputTokens,
		record.Usage.OutputTokens,
		record.Usage.CacheReadTokens,
		record.Usage.CacheCreationTokens,
		record.Usage.CostUSD,
		record.CreatedAt,
		date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}

	// A session is new for the day if no other event of it landed on the
	// same local date. The row just inserted is excluded by message id.
	var sessionSeen int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM message_usage
		 WHERE provider_id = ? AND session_id = ? AND message_id != ?
		   AND usage_date = ?`,
		providerID, record.SessionID, record.MessageID, date,
	).Scan(&sessionSeen)
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}

	sessionIncrement := 0
	if sessionSeen == 0 {
		sessionIncrement = 1
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_stats (provider_id, date, total_input_tokens, total_output_tokens,
			total_cache_read_tokens, total_cache_creation_tokens, total_cost_usd,
			session_count, message_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
		 ON CONFLICT(provider_id, date) DO UPDATE SET
			total_input_tokens = total_input_tokens + excluded.total_input_tokens,
			total_output_tokens = total_output_tokens + excluded.total_output_tokens,
			total_cache_read_tokens = total_cache_read_tokens + excluded.total_cache_read_tokens,
			total_cache_creation_tokens = total_cache_creation_tokens + excluded.total_cache_creation_tokens,
			total_cost_usd = total_cost_usd + excluded.total_cost_usd,
			session_count = session_count + excluded.session_count,
			message_count = message_count + excluded.message_count`,
		providerID,
		date,
		record.Usage.InputTokens,
		record.Usage.OutputTokens,
		record.Usage.CacheReadTokens,
		record.Usage.CacheCreationTokens,
		record.Usage.CostUSD,
		sessionIncrement,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily rollup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage record: %w", err)
	}
	return nil
}

// LifetimeStats recomputes the full snapshot from raw usage events.
func (db *DB) LifetimeStats() (*models.LifetimeStats, error) {
	ctx := context.Background()
	var stats models.LifetimeStats

	err := db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(cache_read_tokens), 0),
			COALESCE(SUM(cache_creation_tokens), 0),
			COALESCE(SUM(cost_usd), 0),
			COUNT(DISTINCT session_id),
			COUNT(*)
		 FROM message_usage`,
	).Scan(
		&stats.TotalInputTokens,
		&stats.TotalOutputTokens,
		&stats.TotalCacheReadTokens,
		&stats.TotalCacheCreationTokens,
		&stats.TotalCostUSD,
		&stats.TotalSessions,
		&stats.TotalMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lifetime totals: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT model, SUM(input_tokens), SUM(output_tokens), SUM(cache_read_tokens),
			SUM(cache_creation_tokens), SUM(cost_usd), COUNT(*)
		 FROM message_usage GROUP BY model`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query model breakdown: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m models.ModelUsage
		err := rows.Scan(
			&m.Model,
			&m.InputTokens,
			&m.OutputTokens,
			&m.CacheReadTokens,
			&m.CacheCreationTokens,
			&m.CostUSD,
			&m.MessageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model usage: %w", err)
		}
		stats.Models = append(stats.Models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Finalize()
	return &stats, nil
}

// TodayProviderStats left-joins every provider against today's rollup, so
// providers with no activity today appear with zeros.
func (db *DB) TodayProviderStats() ([]models.ProviderStats, error) {
	today := time.Now().Format(dateLayout)

	rows, err := db.QueryContext(context.Background(),
		`SELECT
			p.id, p.api_key_hash, p.api_key_prefix, p.display_name, p.base_url,
			p.is_active, p.first_seen_at, p.last_seen_at,
			COALESCE(d.total_input_tokens, 0),
			COALESCE(d.total_output_tokens, 0),
			COALESCE(d.total_cache_read_tokens, 0),
			COALESCE(d.total_cache_creation_tokens, 0),
			COALESCE(d.total_cost_usd, 0)
		 FROM providers p
		 LEFT JOIN daily_stats d ON p.id = d.provider_id AND d.date = ?
		 ORDER BY p.last_seen_at DESC`,
		today,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query today provider stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []models.ProviderStats
	for rows.Next() {
		var s models.ProviderStats
		var displayName, baseURL sql.NullString
		var isActive int64

		err := rows.Scan(
			&s.Provider.ID,
			&s.Provider.APIKeyHash,
			&s.Provider.APIKeyPrefix,
			&displayName,
			&baseURL,
			&isActive,
			&s.Provider.FirstSeenAt,
			&s.Provider.LastSeenAt,
			&s.TodayInputTokens,
			&s.TodayOutputTokens,
			&s.TodayCacheReadTokens,
			&s.TodayCacheCreationTokens,
			&s.TodayCostUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider stats: %w", err)
		}

		s.Provider.DisplayName = displayName.String
		s.Provider.BaseURL = baseURL.String
		s.Provider.IsActive = isActive == 1

		total := s.TodayCacheReadTokens + s.TodayInputTokens
		if total > 0 {
			s.CacheHitRate = float64(s.TodayCacheReadTokens) / float64(total)
		}

		result = append(result, s)
	}

	return result, rows.Err()
}

// TodayStats sums today's rollups across all providers.
func (db *DB) TodayStats() (*models.TodayStats, error) {
	today := time.Now().Format(dateLayout)
	var stats models.TodayStats

	err := db.QueryRowContext(context.Background(),
		`SELECT
			COALESCE(SUM(total_input_tokens), 0),
			COALESCE(SUM(total_output_tokens), 0),
			COALESCE(SUM(total_cache_read_tokens), 0),
			COALESCE(SUM(total_cache_creation_tokens), 0),
			COALESCE(SUM(total_cost_usd), 0),
			COALESCE(SUM(session_count), 0),
			COALESCE(SUM(message_count), 0)
		 FROM daily_stats WHERE date = ?`,
		today,
	).Scan(
		&stats.InputTokens,
		&stats.OutputTokens,
		&stats.CacheReadTokens,
		&stats.CacheCreationTokens,
		&stats.CostUSD,
		&stats.SessionCount,
		&stats.MessageCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query today stats: %w", err)
	}

	stats.Finalize()
	return &stats, nil
}

// DailyActivity sums rollups across all providers per date over an
// inclusive range, ascending. Dates with no activity are omitted.
func (db *DB) DailyActivity(startDate, endDate string) ([]models.DailyActivity, error) {
	rows, err := db.QueryContext(context.Background(),
		`SELECT
			date,
			COALESCE(SUM(total_input_tokens), 0),
			COALESCE(SUM(total_output_tokens), 0),
			COALESCE(SUM(total_cost_usd), 0),
			COALESCE(SUM(session_count), 0),
			COALESCE(SUM(message_count), 0)
		 FROM daily_stats
		 WHERE date BETWEEN ? AND ?
		 GROUP BY date
		 ORDER BY date ASC`,
		startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []models.DailyActivity
	for rows.Next() {
		var a models.DailyActivity
		err := rows.Scan(
			&a.Date,
			&a.InputTokens,
			&a.OutputTokens,
			&a.CostUSD,
			&a.SessionCount,
			&a.MessageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// DailyRollup returns the stored rollup for one provider and date, or nil
// when the provider had no activity that day.
func (db *DB) DailyRollup(providerID int64, date string) (*models.DailyActivity, error) {
	var a models.DailyActivity
	a.Date = date

	err := db.QueryRowContext(context.Background(),
		`SELECT total_input_tokens, total_output_tokens, total_cost_usd,
			session_count, message_count
		 FROM daily_stats WHERE provider_id = ? AND date = ?`,
		providerID, date,
	).Scan(&a.InputTokens, &a.OutputTokens, &a.CostUSD, &a.SessionCount, &a.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily rollup: %w", err)
	}

	return &a, nil
}

// localDate derives the rollup date from an event timestamp in local
// wall-clock time, so "today" queries line up with what a user expects.
// Unparseable timestamps fall back to the current local date.
func localDate(createdAt string) string {
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		return t.Local().Format(dateLayout)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		return t.Local().Format(dateLayout)
	}
	return time.Now().Format(dateLayout)
}
