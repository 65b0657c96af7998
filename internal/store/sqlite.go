package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
// Timestamps are stored as UTC unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Strategies with their cached performance snapshot
	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		asset_class TEXT,
		rules TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		total_trades INTEGER NOT NULL DEFAULT 0,
		win_rate REAL NOT NULL DEFAULT 0,
		profit_factor REAL NOT NULL DEFAULT 0,
		avg_risk_reward REAL NOT NULL DEFAULT 0,
		max_drawdown REAL NOT NULL DEFAULT 0,
		net_pnl REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Trades, open or closed
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		stop_loss REAL NOT NULL DEFAULT 0,
		target REAL,
		quantity REAL NOT NULL,
		fees REAL NOT NULL DEFAULT 0,
		pnl REAL NOT NULL DEFAULT 0,
		pnl_percentage REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		entry_date INTEGER NOT NULL,
		exit_date INTEGER,
		strategy_id TEXT,
		tags TEXT,
		notes TEXT,
		emotion TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Journal entries
	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_id TEXT,
		date INTEGER NOT NULL,
		emotion TEXT NOT NULL,
		stress_level INTEGER NOT NULL,
		profitability REAL NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		tags TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_trades_user_status_exit ON trades(user_id, status, exit_date);
	CREATE INDEX IF NOT EXISTS idx_trades_user_strategy ON trades(user_id, strategy_id);
	CREATE INDEX IF NOT EXISTS idx_strategies_user ON strategies(user_id);
	CREATE INDEX IF NOT EXISTS idx_journal_user_date ON journal(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_journal_trade ON journal(trade_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(tags)
	return string(data)
}

func decodeTags(raw sql.NullString) []string {
	tags := []string{}
	if raw.Valid && raw.String != "" {
		json.Unmarshal([]byte(raw.String), &tags)
	}
	return tags
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ============================================================================
// Trades
// ============================================================================

const tradeColumns = `id, user_id, symbol, side, entry_price, exit_price, stop_loss, target, quantity, fees,
	pnl, pnl_percentage, status, entry_date, exit_date, strategy_id, tags, notes, emotion, created_at, updated_at`

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	var exitPrice, target sql.NullFloat64
	var exitDate sql.NullInt64
	var strategyID, tags, notes, emotion sql.NullString
	var entryDate, createdAt, updatedAt int64

	if err := row.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Side, &t.EntryPrice, &exitPrice, &t.StopLoss, &target,
		&t.Quantity, &t.Fees, &t.PnL, &t.PnLPercentage, &t.Status, &entryDate, &exitDate, &strategyID,
		&tags, &notes, &emotion, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if exitPrice.Valid {
		v := exitPrice.Float64
		t.ExitPrice = &v
	}
	if target.Valid {
		v := target.Float64
		t.Target = &v
	}
	if exitDate.Valid {
		v := fromMillis(exitDate.Int64)
		t.ExitDate = &v
	}
	t.EntryDate = fromMillis(entryDate)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	t.StrategyID = strategyID.String
	t.Notes = notes.String
	t.Emotion = models.Emotion(emotion.String)
	t.Tags = decodeTags(tags)
	return &t, nil
}

// CreateTrade inserts a new trade.
func (s *SQLiteStore) CreateTrade(ctx context.Context, trade *models.Trade) error {
	query := `INSERT INTO trades (` + tradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		trade.ID, trade.UserID, trade.Symbol, trade.Side, trade.EntryPrice, nullFloat(trade.ExitPrice),
		trade.StopLoss, nullFloat(trade.Target), trade.Quantity, trade.Fees, trade.PnL, trade.PnLPercentage,
		trade.Status, toMillis(trade.EntryDate), nullMillis(trade.ExitDate), nullString(trade.StrategyID),
		encodeTags(trade.Tags), trade.Notes, string(trade.Emotion), toMillis(trade.CreatedAt), toMillis(trade.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// UpdateTrade overwrites every mutable column of an existing trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	query := `UPDATE trades SET symbol = ?, side = ?, entry_price = ?, exit_price = ?, stop_loss = ?, target = ?,
		quantity = ?, fees = ?, pnl = ?, pnl_percentage = ?, status = ?, entry_date = ?, exit_date = ?,
		strategy_id = ?, tags = ?, notes = ?, emotion = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		trade.Symbol, trade.Side, trade.EntryPrice, nullFloat(trade.ExitPrice), trade.StopLoss,
		nullFloat(trade.Target), trade.Quantity, trade.Fees, trade.PnL, trade.PnLPercentage, trade.Status,
		toMillis(trade.EntryDate), nullMillis(trade.ExitDate), nullString(trade.StrategyID),
		encodeTags(trade.Tags), trade.Notes, string(trade.Emotion), toMillis(trade.UpdatedAt),
		trade.ID, trade.UserID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	return expectAffected(result, "trade", trade.ID)
}

// DeleteTrade removes a trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return expectAffected(result, "trade", id)
}

// GetTrade returns a single trade owned by userID.
func (s *SQLiteStore) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ? AND user_id = ?", id, userID)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("trade", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// GetTrades retrieves trades matching the filter.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.StrategyID != "" {
		query += " AND strategy_id = ?"
		args = append(args, filter.StrategyID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if len(filter.Tags) > 0 {
		query += " AND EXISTS (SELECT 1 FROM json_each(trades.tags) WHERE json_each.value IN (" +
			placeholders(len(filter.Tags)) + "))"
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
	}
	if !filter.ExitFrom.IsZero() {
		query += " AND exit_date >= ?"
		args = append(args, toMillis(filter.ExitFrom))
	}
	if !filter.ExitTo.IsZero() {
		query += " AND exit_date <= ?"
		args = append(args, toMillis(filter.ExitTo))
	}

	switch filter.Order {
	case OrderExitAsc:
		// NULL exit dates sort first in ascending order
		query += " ORDER BY exit_date ASC, id ASC"
	default:
		query += " ORDER BY entry_date DESC, id DESC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *t)
	}

	return trades, rows.Err()
}

// CountTradesByStrategy counts trades of any status referencing a strategy.
func (s *SQLiteStore) CountTradesByStrategy(ctx context.Context, userID, strategyID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trades WHERE user_id = ? AND strategy_id = ?", userID, strategyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// ============================================================================
// Strategies
// ============================================================================

const strategyColumns = `id, user_id, name, asset_class, rules, status, total_trades, win_rate, profit_factor,
	avg_risk_reward, max_drawdown, net_pnl, created_at, updated_at`

func scanStrategy(row rowScanner) (*models.Strategy, error) {
	var st models.Strategy
	var assetClass, rules sql.NullString
	var createdAt, updatedAt int64
	p := &st.Performance

	if err := row.Scan(&st.ID, &st.UserID, &st.Name, &assetClass, &rules, &st.Status, &p.TotalTrades,
		&p.WinRate, &p.ProfitFactor, &p.AvgRiskReward, &p.MaxDrawdown, &p.NetPnL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st.AssetClass = assetClass.String
	st.Rules = rules.String
	st.CreatedAt = fromMillis(createdAt)
	st.UpdatedAt = fromMillis(updatedAt)
	return &st, nil
}

// CreateStrategy inserts a new strategy including its initial snapshot.
func (s *SQLiteStore) CreateStrategy(ctx context.Context, st *models.Strategy) error {
	p := st.Performance
	_, err := s.db.ExecContext(ctx, `INSERT INTO strategies (`+strategyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.UserID, st.Name, st.AssetClass, st.Rules, st.Status, p.TotalTrades, p.WinRate,
		p.ProfitFactor, p.AvgRiskReward, p.MaxDrawdown, p.NetPnL, toMillis(st.CreatedAt), toMillis(st.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert strategy: %w", err)
	}
	return nil
}

// UpdateStrategy writes descriptive fields only.
func (s *SQLiteStore) UpdateStrategy(ctx context.Context, st *models.Strategy) error {
	result, err := s.db.ExecContext(ctx, `UPDATE strategies SET name = ?, asset_class = ?, rules = ?, status = ?,
		updated_at = ? WHERE id = ? AND user_id = ?`,
		st.Name, st.AssetClass, st.Rules, st.Status, toMillis(st.UpdatedAt), st.ID, st.UserID)
	if err != nil {
		return fmt.Errorf("failed to update strategy: %w", err)
	}
	return expectAffected(result, "strategy", st.ID)
}

// GetStrategy returns a single strategy owned by userID.
func (s *SQLiteStore) GetStrategy(ctx context.Context, userID, id string) (*models.Strategy, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+strategyColumns+" FROM strategies WHERE id = ? AND user_id = ?", id, userID)
	st, err := scanStrategy(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("strategy", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	return st, nil
}

// ListStrategies returns the user's strategies, newest first.
func (s *SQLiteStore) ListStrategies(ctx context.Context, userID string) ([]models.Strategy, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+strategyColumns+" FROM strategies WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	strategies := []models.Strategy{}
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, *st)
	}
	return strategies, rows.Err()
}

// DeleteStrategy removes a strategy unless a trade still references it.
func (s *SQLiteStore) DeleteStrategy(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trades WHERE user_id = ? AND strategy_id = ?", userID, id).Scan(&refs); err != nil {
		return fmt.Errorf("failed to count trades: %w", err)
	}
	if refs > 0 {
		return apperrors.NewStoreError("delete", "strategy", id, apperrors.ErrStrategyInUse)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM strategies WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	if err := expectAffected(result, "strategy", id); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateStrategyPerformance overwrites the six snapshot columns in one statement.
func (s *SQLiteStore) UpdateStrategyPerformance(ctx context.Context, userID, id string, p models.PerformanceSnapshot) error {
	result, err := s.db.ExecContext(ctx, `UPDATE strategies SET total_trades = ?, win_rate = ?, profit_factor = ?,
		avg_risk_reward = ?, max_drawdown = ?, net_pnl = ? WHERE id = ? AND user_id = ?`,
		p.TotalTrades, p.WinRate, p.ProfitFactor, p.AvgRiskReward, p.MaxDrawdown, p.NetPnL, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update strategy performance: %w", err)
	}
	return expectAffected(result, "strategy", id)
}

// ============================================================================
// Journal
// ============================================================================

const journalColumns = `id, user_id, trade_id, date, emotion, stress_level, profitability, content, tags,
	created_at, updated_at`

func scanJournalEntry(row rowScanner) (*models.JournalEntry, error) {
	var e models.JournalEntry
	var tradeID, tags sql.NullString
	var date, createdAt, updatedAt int64

	if err := row.Scan(&e.ID, &e.UserID, &tradeID, &date, &e.Emotion, &e.StressLevel, &e.Profitability,
		&e.Content, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.TradeID = tradeID.String
	e.Date = fromMillis(date)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	e.Tags = decodeTags(tags)
	return &e, nil
}

// CreateJournalEntry inserts a journal entry.
func (s *SQLiteStore) CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO journal (`+journalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, nullString(entry.TradeID), toMillis(entry.Date), entry.Emotion,
		entry.StressLevel, entry.Profitability, entry.Content, encodeTags(entry.Tags),
		toMillis(entry.CreatedAt), toMillis(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// UpdateJournalEntry overwrites an existing journal entry.
func (s *SQLiteStore) UpdateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	result, err := s.db.ExecContext(ctx, `UPDATE journal SET trade_id = ?, date = ?, emotion = ?, stress_level = ?,
		profitability = ?, content = ?, tags = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		nullString(entry.TradeID), toMillis(entry.Date), entry.Emotion, entry.StressLevel, entry.Profitability,
		entry.Content, encodeTags(entry.Tags), toMillis(entry.UpdatedAt), entry.ID, entry.UserID)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	return expectAffected(result, "journal entry", entry.ID)
}

// DeleteJournalEntry removes a journal entry.
func (s *SQLiteStore) DeleteJournalEntry(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM journal WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return expectAffected(result, "journal entry", id)
}

// GetJournalEntry returns a single entry with its linked trade populated.
func (s *SQLiteStore) GetJournalEntry(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+journalColumns+" FROM journal WHERE id = ? AND user_id = ?", id, userID)
	entry, err := scanJournalEntry(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("journal entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}

	entries := []models.JournalEntry{*entry}
	if err := s.populateTrades(ctx, userID, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// GetJournal retrieves journal entries matching the filter.
func (s *SQLiteStore) GetJournal(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error) {
	query := "SELECT " + journalColumns + " FROM journal WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.TradeID != "" {
		query += " AND trade_id = ?"
		args = append(args, filter.TradeID)
	}
	if !filter.From.IsZero() {
		query += " AND date >= ?"
		args = append(args, toMillis(filter.From))
	}
	if !filter.To.IsZero() {
		query += " AND date <= ?"
		args = append(args, toMillis(filter.To))
	}
	if filter.Emotion != "" {
		query += " AND emotion = ?"
		args = append(args, filter.Emotion)
	}
	if len(filter.Tags) > 0 {
		query += " AND EXISTS (SELECT 1 FROM json_each(journal.tags) WHERE json_each.value IN (" +
			placeholders(len(filter.Tags)) + "))"
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
	}

	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if filter.PopulateTrade {
		if err := s.populateTrades(ctx, filter.UserID, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// populateTrades attaches the linked trade to each entry that references one.
// References to trades that no longer exist are left unpopulated.
func (s *SQLiteStore) populateTrades(ctx context.Context, userID string, entries []models.JournalEntry) error {
	ids := make([]interface{}, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.TradeID != "" && !seen[e.TradeID] {
			seen[e.TradeID] = true
			ids = append(ids, e.TradeID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query := "SELECT " + tradeColumns + " FROM trades WHERE id IN (" + placeholders(len(ids)) + ")"
	args := ids
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query linked trades: %w", err)
	}
	defer rows.Close()

	trades := make(map[string]*models.Trade, len(ids))
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return fmt.Errorf("failed to scan linked trade: %w", err)
		}
		trades[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range entries {
		if t, ok := trades[entries[i].TradeID]; ok {
			entries[i].Trade = t
		}
	}
	return nil
}

func expectAffected(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}
