package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/database"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/registry"
	"github.com/volatiletech/null"
)

// New returns a store using db. The schema must already be migrated.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errNilDatabase
	}
	return &Store{db: db}, nil
}

// Migrate brings the schema up to date with the migrations in dir
func (s *Store) Migrate(dir string) error {
	return database.Migrate(s.db, dir, "up", "")
}

// Load returns the selector for symbol
func (s *Store) Load(ctx context.Context, symbol string) (*registry.Selector, error) {
	var (
		id      string
		optimal null.String
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, optimal_kind FROM selector WHERE symbol = ?`, symbol).Scan(&id, &optimal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %w", symbol, registry.ErrSelectorNotFound)
	}
	if err != nil {
		return nil, err
	}

	sel, err := registry.NewSelector(symbol)
	if err != nil {
		return nil, err
	}
	if optimal.Valid {
		sel.Optimal = base.Kind(optimal.String)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, params, bounds, best_balance, narrow_from_below, stability_counter, iterations, updated_at
		FROM tested_strategy WHERE selector_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t              registry.TestedStrategy
			kind           string
			params, bounds string
			updatedAt      string
		)
		if err = rows.Scan(&kind, &params, &bounds, &t.BestBalance, &t.NarrowFromBelow,
			&t.StabilityCounter, &t.Iterations, &updatedAt); err != nil {
			return nil, err
		}
		t.Kind = base.Kind(kind)
		if err = json.Unmarshal([]byte(params), &t.Params); err != nil {
			return nil, fmt.Errorf("%w: %s %s params: %w", registry.ErrCorruptRegistryState, symbol, kind, err)
		}
		if err = json.Unmarshal([]byte(bounds), &t.Bounds); err != nil {
			return nil, fmt.Errorf("%w: %s %s bounds: %w", registry.ErrCorruptRegistryState, symbol, kind, err)
		}
		if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("%w: %s %s updated at: %w", registry.ErrCorruptRegistryState, symbol, kind, err)
		}
		sel.Tested[t.Kind] = &t
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if err = sel.Validate(); err != nil {
		return nil, err
	}
	return sel, nil
}

// Save upserts the selector and every tested strategy in a single
// transaction
func (s *Store) Save(ctx context.Context, sel *registry.Selector) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf(log.DatabaseMgr, "Save transaction begin failed: %v", err)
		return err
	}
	err = upsert(ctx, tx, sel)
	if err != nil {
		log.Errorf(log.DatabaseMgr, "Save %s failed: %v", sel.Symbol, err)
		if rErr := tx.Rollback(); rErr != nil {
			log.Errorf(log.DatabaseMgr, "Save transaction rollback failed: %v", rErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		log.Errorf(log.DatabaseMgr, "Save transaction commit failed: %v", err)
		if rErr := tx.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) {
			log.Errorf(log.DatabaseMgr, "Save transaction rollback failed: %v", rErr)
		}
		return err
	}
	log.Debugf(log.Registry, "saved %s with %d tested strategies", sel.Symbol, len(sel.Tested))
	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, sel *registry.Selector) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	newID, err := uuid.NewV4()
	if err != nil {
		return err
	}
	optimal := null.NewString(string(sel.Optimal), sel.Optimal != "")
	_, err = tx.ExecContext(ctx,
		`INSERT INTO selector (id, symbol, optimal_kind, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET optimal_kind = excluded.optimal_kind, updated_at = excluded.updated_at`,
		newID.String(), sel.Symbol, optimal, now, now)
	if err != nil {
		return err
	}
	var selectorID string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM selector WHERE symbol = ?`, sel.Symbol).Scan(&selectorID); err != nil {
		return err
	}

	for _, kind := range sel.Kinds() {
		t := sel.Tested[kind]
		params, err := json.Marshal(t.Params)
		if err != nil {
			return err
		}
		bounds, err := json.Marshal(t.Bounds)
		if err != nil {
			return err
		}
		rowID, err := uuid.NewV4()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tested_strategy (id, selector_id, kind, params, bounds, best_balance, narrow_from_below, stability_counter, iterations, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(selector_id, kind) DO UPDATE SET
				params = excluded.params,
				bounds = excluded.bounds,
				best_balance = excluded.best_balance,
				narrow_from_below = excluded.narrow_from_below,
				stability_counter = excluded.stability_counter,
				iterations = excluded.iterations,
				updated_at = excluded.updated_at`,
			rowID.String(), selectorID, string(kind), string(params), string(bounds), t.BestBalance,
			t.NarrowFromBelow, t.StabilityCounter, t.Iterations, t.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("%s %s: %w", sel.Symbol, kind, err)
		}
	}
	return nil
}

// List returns every stored selector ordered by symbol
func (s *Store) List(ctx context.Context) ([]*registry.Selector, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM selector ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	var symbols []string
	for rows.Next() {
		var symbol string
		if err = rows.Scan(&symbol); err != nil {
			_ = rows.Close()
			return nil, err
		}
		symbols = append(symbols, symbol)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	// rows must be closed first as the connection pool holds one connection
	resp := make([]*registry.Selector, 0, len(symbols))
	for i := range symbols {
		sel, err := s.Load(ctx, symbols[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, sel)
	}
	return resp, nil
}
