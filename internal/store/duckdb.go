// Package store persists downloaded price bars in a local DuckDB database
// so repeated runs for the same ticker skip the network.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/quantlab-io/quantsandbox/internal/types"
)

// ErrNotFound is returned when no bars exist for the requested symbol.
var ErrNotFound = errors.New("no bars stored for symbol")

// BarStore reads and writes price bar series.
type BarStore interface {
	// SaveBars stores a series, replacing any prior bars for the symbol.
	SaveBars(symbol string, bars []types.PriceBar) error
	// LoadBars returns the ordered series for a symbol, optionally
	// bounded by start and end dates (inclusive).
	LoadBars(symbol string, start, end optional.Option[time.Time]) ([]types.PriceBar, error)
	// Count returns the number of stored bars for a symbol.
	Count(symbol string) (int, error)
	// Close releases the underlying database.
	Close() error
}

// DuckDBStore implements BarStore on a DuckDB database file.
type DuckDBStore struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) the database at path. An empty path
// opens an in-memory database, which tests use.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB database: %w", err)
	}

	store := &DuckDBStore{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			time TIMESTAMP NOT NULL,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create bars table: %w", err)
	}

	return nil
}

// SaveBars implements BarStore. The series is validated before anything is
// written and the replace happens in one transaction.
func (s *DuckDBStore) SaveBars(symbol string, bars []types.PriceBar) error {
	if err := types.ValidateSeries(bars); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM bars WHERE symbol = ?`, symbol); err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to clear prior bars: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO bars (id, symbol, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()

		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		_, err := stmt.Exec(
			uuid.New().String(),
			symbol,
			bar.Time,
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		)
		if err != nil {
			tx.Rollback()

			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bars: %w", err)
	}

	return nil
}

// LoadBars implements BarStore.
func (s *DuckDBStore) LoadBars(symbol string, start, end optional.Option[time.Time]) ([]types.PriceBar, error) {
	query := s.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time ASC")

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []types.PriceBar

	for rows.Next() {
		bar := types.PriceBar{Symbol: symbol}
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bars: %w", err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	return bars, nil
}

// Count implements BarStore.
func (s *DuckDBStore) Count(symbol string) (int, error) {
	sqlText, args, err := s.sq.
		Select("COUNT(*)").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := s.db.QueryRow(sqlText, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bars: %w", err)
	}

	return count, nil
}

// Close implements BarStore.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
