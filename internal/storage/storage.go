// Package storage persists bet records and renders ledger state for the
// terminal.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// Dialect selects placeholder syntax and column types.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLStore implements ledger.Store on a SQL database. Timestamps are
// stored as Unix nanoseconds and the frozen recommendation as JSON so the
// same queries serve both dialects.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// NewSQLStore wraps an open database. Call EnsureSchema before use.
func NewSQLStore(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, dialect: dialect, logger: logger}
}

func (s *SQLStore) schema() []string {
	floatType, intType := "DOUBLE PRECISION", "BIGINT"
	if s.dialect == DialectSQLite {
		floatType, intType = "REAL", "INTEGER"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bet_records (
			id             TEXT PRIMARY KEY,
			game_id        TEXT NOT NULL,
			market_type    TEXT NOT NULL,
			state          TEXT NOT NULL,
			stake_units    %[1]s NOT NULL,
			outcome        TEXT,
			realized_units %[1]s,
			recommendation TEXT NOT NULL,
			created_at     %[2]s NOT NULL,
			updated_at     %[2]s NOT NULL,
			version        %[2]s NOT NULL
		)`, floatType, intType),
		`CREATE INDEX IF NOT EXISTS idx_bet_records_state ON bet_records(state)`,
		`CREATE INDEX IF NOT EXISTS idx_bet_records_created_at ON bet_records(created_at)`,
	}
}

// EnsureSchema creates the bet_records table and its indexes.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.schema() {
		_, err := s.db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const selectColumns = `SELECT id, state, stake_units, outcome, realized_units, recommendation,
	created_at, updated_at, version FROM bet_records`

// Save inserts a new record.
func (s *SQLStore) Save(ctx context.Context, rec *types.BetRecord) error {
	recJSON, err := json.Marshal(rec.Recommendation)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}

	query := s.rebind(`INSERT INTO bet_records (
		id, game_id, market_type, state, stake_units, outcome, realized_units,
		recommendation, created_at, updated_at, version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Recommendation.Game.ID,
		string(rec.Recommendation.Selection.MarketType),
		string(rec.State),
		rec.StakeUnits,
		nullOutcome(rec.Outcome),
		nullFloat(rec.RealizedUnits),
		string(recJSON),
		rec.CreatedAt.UnixNano(),
		rec.UpdatedAt.UnixNano(),
		rec.Version,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}

	s.logger.Debug("bet-stored",
		zap.String("bet-id", rec.ID),
		zap.String("state", string(rec.State)))
	return nil
}

// Load returns one record by full ID.
func (s *SQLStore) Load(ctx context.Context, id string) (*types.BetRecord, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectColumns+` WHERE id = ?`), id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bet %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load bet %s: %w", id, err)
	}
	return rec, nil
}

// List returns records matching filter ordered by creation time.
func (s *SQLStore) List(ctx context.Context, filter ledger.Filter) ([]*types.BetRecord, error) {
	query := selectColumns
	var args []interface{}
	if filter.State != "" {
		query += ` WHERE state = ?`
		args = append(args, string(filter.State))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var out []*types.BetRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bets: %w", err)
	}
	return out, nil
}

// Update writes rec when the stored version is rec.Version-1.
func (s *SQLStore) Update(ctx context.Context, rec *types.BetRecord) error {
	query := s.rebind(`UPDATE bet_records
		SET state = ?, stake_units = ?, outcome = ?, realized_units = ?, updated_at = ?, version = ?
		WHERE id = ? AND version = ?`)

	res, err := s.db.ExecContext(ctx, query,
		string(rec.State),
		rec.StakeUnits,
		nullOutcome(rec.Outcome),
		nullFloat(rec.RealizedUnits),
		rec.UpdatedAt.UnixNano(),
		rec.Version,
		rec.ID,
		rec.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update bet: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bet rows affected: %w", err)
	}
	if n == 1 {
		s.logger.Debug("bet-updated",
			zap.String("bet-id", rec.ID),
			zap.String("state", string(rec.State)),
			zap.Int("version", rec.Version))
		return nil
	}

	var one int
	err = s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM bet_records WHERE id = ?`), rec.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("bet %s: %w", rec.ID, types.ErrNotFound)
	}
	return fmt.Errorf("bet %s version %d: %w", rec.ID, rec.Version-1, types.ErrConflict)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	s.logger.Info("closing-bet-store", zap.String("dialect", string(s.dialect)))
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*types.BetRecord, error) {
	var (
		rec                  types.BetRecord
		state, recJSON       string
		outcome              sql.NullString
		realized             sql.NullFloat64
		createdAt, updatedAt int64
	)

	err := row.Scan(&rec.ID, &state, &rec.StakeUnits, &outcome, &realized, &recJSON,
		&createdAt, &updatedAt, &rec.Version)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal([]byte(recJSON), &rec.Recommendation)
	if err != nil {
		return nil, fmt.Errorf("unmarshal recommendation: %w", err)
	}

	rec.State = types.BetState(state)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if outcome.Valid {
		o := types.Outcome(outcome.String)
		rec.Outcome = &o
	}
	if realized.Valid {
		v := realized.Float64
		rec.RealizedUnits = &v
	}
	return &rec, nil
}

func nullOutcome(o *types.Outcome) sql.NullString {
	if o == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*o), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
