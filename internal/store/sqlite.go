package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// SQLiteStore persists alerts to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block the evaluation loop's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.L().Info("sqlite alert store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			kind              TEXT NOT NULL,
			is_active         INTEGER NOT NULL DEFAULT 1,
			created_at        INTEGER NOT NULL,
			last_triggered_at INTEGER,
			payload           TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_active_symbol ON alerts(is_active, symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// payload is the kind-specific part of an alert, stored as one JSON column.
type payload struct {
	PriceTarget      *model.PriceTargetPayload      `json:"price_target,omitempty"`
	PercentageChange *model.PercentageChangePayload `json:"percentage_change,omitempty"`
	IndicatorChain   *model.IndicatorChainPayload   `json:"indicator_chain,omitempty"`
}

func (s *SQLiteStore) Save(ctx context.Context, alert *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(payload{
		PriceTarget:      alert.PriceTarget,
		PercentageChange: alert.PercentageChange,
		IndicatorChain:   alert.IndicatorChain,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var triggered any
	if alert.LastTriggeredAt != nil {
		triggered = alert.LastTriggeredAt.Unix()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, user_id, symbol, kind, is_active, created_at, last_triggered_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			symbol = excluded.symbol,
			kind = excluded.kind,
			is_active = excluded.is_active,
			last_triggered_at = excluded.last_triggered_at,
			payload = excluded.payload`,
		alert.ID, alert.UserID, alert.Symbol, string(alert.Kind),
		boolToInt(alert.IsActive), alert.CreatedAt.Unix(), triggered, string(body))
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, symbol, kind, is_active, created_at, last_triggered_at, payload
		 FROM alerts WHERE id = ?`, id)
	alert, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return alert, err
}

func (s *SQLiteStore) ListActive(ctx context.Context) ([]*model.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, symbol, kind, is_active, created_at, last_triggered_at, payload
		 FROM alerts WHERE is_active = 1 ORDER BY symbol, id`)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*model.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) MarkTriggered(ctx context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Conditional update doubles as the claim: only one caller can flip
	// is_active from 1 to 0.
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET is_active = 0, last_triggered_at = ? WHERE id = ? AND is_active = 1`,
		at.Unix(), id)
	if err != nil {
		return false, fmt.Errorf("mark triggered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark triggered: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var (
		alert     model.Alert
		kind      string
		active    int
		created   int64
		triggered sql.NullInt64
		body      string
	)
	if err := row.Scan(&alert.ID, &alert.UserID, &alert.Symbol, &kind,
		&active, &created, &triggered, &body); err != nil {
		return nil, err
	}
	alert.Kind = model.AlertKind(kind)
	alert.IsActive = active != 0
	alert.CreatedAt = time.Unix(created, 0).UTC()
	if triggered.Valid {
		t := time.Unix(triggered.Int64, 0).UTC()
		alert.LastTriggeredAt = &t
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("unmarshal payload for %s: %w", alert.ID, err)
	}
	alert.PriceTarget = p.PriceTarget
	alert.PercentageChange = p.PercentageChange
	alert.IndicatorChain = p.IndicatorChain
	return &alert, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
