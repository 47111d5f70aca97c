package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists bot history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS syncs (
			id                    TEXT PRIMARY KEY,
			timestamp             INTEGER NOT NULL,
			reason                TEXT,
			balance_coins         REAL,
			earn_passive_per_hour REAL,
			last_sync_update      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_syncs_ts ON syncs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id                    TEXT PRIMARY KEY,
			timestamp             INTEGER NOT NULL,
			upgrade_id            TEXT NOT NULL,
			name                  TEXT,
			section               TEXT,
			price                 REAL,
			profit_per_hour_delta REAL,
			payback_hours         REAL,
			balance_after         REAL,
			earn_passive_per_hour REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_upgrade ON purchases(upgrade_id)`,

		`CREATE TABLE IF NOT EXISTS plans (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			action     TEXT,
			upgrade_id TEXT,
			wake_at    INTEGER,
			buy_at     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plans_ts ON plans(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSync(evt *SyncEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO syncs
		(id, timestamp, reason, balance_coins, earn_passive_per_hour, last_sync_update)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.Reason,
		evt.BalanceCoins, evt.EarnPassivePerHour, evt.LastSyncUpdate.Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordPurchase(evt *PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// SQLite REAL cannot hold +Inf; zero-income upgrades store NULL.
	var payback sql.NullFloat64
	if !math.IsInf(evt.PaybackHours, 0) {
		payback = sql.NullFloat64{Float64: evt.PaybackHours, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO purchases
		(id, timestamp, upgrade_id, name, section, price, profit_per_hour_delta,
		 payback_hours, balance_after, earn_passive_per_hour)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.UpgradeID, evt.Name, evt.Section,
		evt.Price, evt.ProfitPerHourDelta, payback,
		evt.BalanceAfter, evt.EarnPassivePerHour,
	)
	return err
}

func (r *SQLiteRecorder) RecordPlan(evt *PlanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := evt.PlanID
	if id == "" {
		id = uuid.NewString()
	}
	var buyAt sql.NullInt64
	if !evt.BuyAt.IsZero() {
		buyAt = sql.NullInt64{Int64: evt.BuyAt.Unix(), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO plans
		(id, timestamp, action, upgrade_id, wake_at, buy_at)
		VALUES (?,?,?,?,?,?)`,
		id, time.Now().Unix(), evt.Action, evt.UpgradeID, evt.WakeAt.Unix(), buyAt,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
