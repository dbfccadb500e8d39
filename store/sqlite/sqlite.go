/*
Package sqlite provides a SQLite-backed implementation of contract.Store.

PURPOSE:
  Default persistent backend for the server and CLI. The same schema is
  mirrored in store/postgres for production deployments; only minor SQL
  dialect differences apply.

INTERFACES IMPLEMENTED:
  contract.Reader: baseline, events, change requests, legacy rows, line items
  contract.Writer: baseline capture, event append, fixture writes

APPEND-ONLY ENFORCEMENT:
  - baseline_engineers / baseline_billing: written once per contract
  - resource_events / billing_events: INSERT only, no UPDATE or DELETE
  - Reset() wipes everything, for demo scenarios only

KEY TABLES:
  baseline_engineers:  Roster frozen at signing
  baseline_billing:    Monthly amounts frozen at signing
  change_requests:     Amendments and their status
  resource_events:     ADD/REMOVE/MODIFY rows of change requests
  billing_events:      Signed billing deltas of change requests
  legacy_engineers:    Pre-baseline roster table
  cr_line_items:       Per-engineer billing lines of change requests

STORAGE FORMATS:
  Dates are TEXT 'YYYY-MM-DD', months TEXT 'YYYY-MM', money TEXT decimal
  strings (exact, no float rounding), timestamps fixed-width UTC TEXT so
  they sort lexically.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./skillbridge.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := contract.NewEngine(store)

SEE ALSO:
  - contract/store.go: Interface definitions
  - store/memory: In-memory implementation for tests
  - store/postgres: PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Store implements contract.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ contract.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open database")
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate database")
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Change requests (status owned by the approval workflow)
	CREATE TABLE IF NOT EXISTS change_requests (
		id INTEGER PRIMARY KEY,
		contract_id INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_change_requests_contract
		ON change_requests(contract_id);

	-- Baseline roster (written once per contract)
	CREATE TABLE IF NOT EXISTS baseline_engineers (
		id INTEGER PRIMARY KEY,
		contract_id INTEGER NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		rating TEXT,
		unit_rate TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_baseline_engineers_contract_start
		ON baseline_engineers(contract_id, start_date);

	-- Baseline billing (written once per contract)
	CREATE TABLE IF NOT EXISTS baseline_billing (
		contract_id INTEGER NOT NULL,
		billing_month TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (contract_id, billing_month)
	);

	-- Resource events (append-only)
	CREATE TABLE IF NOT EXISTS resource_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		change_request_id INTEGER NOT NULL REFERENCES change_requests(id),
		action TEXT NOT NULL CHECK (action IN ('ADD', 'REMOVE', 'MODIFY')),
		engineer_id INTEGER,
		role TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		rating_old TEXT,
		rating_new TEXT,
		unit_rate_old TEXT,
		unit_rate_new TEXT,
		start_date_old TEXT,
		start_date_new TEXT,
		end_date_old TEXT,
		end_date_new TEXT,
		effective_start TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: events of a change request in fold order
	CREATE INDEX IF NOT EXISTS idx_resource_events_cr_order
		ON resource_events(change_request_id, effective_start, created_at, id);

	-- Billing events (append-only)
	CREATE TABLE IF NOT EXISTS billing_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		change_request_id INTEGER NOT NULL REFERENCES change_requests(id),
		billing_month TEXT NOT NULL,
		delta_amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_billing_events_cr_month
		ON billing_events(change_request_id, billing_month);

	-- Legacy roster (pre-baseline contracts)
	CREATE TABLE IF NOT EXISTS legacy_engineers (
		id INTEGER PRIMARY KEY,
		contract_id INTEGER NOT NULL,
		engineer_level TEXT NOT NULL DEFAULT '',
		start_date TEXT,
		end_date TEXT,
		billing_type TEXT NOT NULL DEFAULT '',
		rating TEXT,
		salary TEXT,
		hourly_rate TEXT,
		hours TEXT,
		subtotal TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_legacy_engineers_contract
		ON legacy_engineers(contract_id, start_date);

	-- Change request engineer line items
	CREATE TABLE IF NOT EXISTS cr_line_items (
		id INTEGER PRIMARY KEY,
		change_request_id INTEGER NOT NULL,
		engineer_level TEXT NOT NULL DEFAULT '',
		start_date TEXT,
		end_date TEXT,
		billing_type TEXT NOT NULL DEFAULT '',
		rating TEXT,
		salary TEXT,
		hourly_rate TEXT,
		hours TEXT,
		subtotal TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_cr_line_items_cr
		ON cr_line_items(change_request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// =============================================================================
// BASELINE STORE
// =============================================================================

// CaptureBaseline writes a contract's baseline once.
func (s *Store) CaptureBaseline(ctx context.Context, contractID contract.ContractID, engineers []contract.BaselineEngineer, billing []contract.BaselineBilling) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var existing int
		err := tx.QueryRowContext(ctx, `
			SELECT (SELECT COUNT(*) FROM baseline_engineers WHERE contract_id = ?)
			     + (SELECT COUNT(*) FROM baseline_billing WHERE contract_id = ?)`,
			contractID, contractID,
		).Scan(&existing)
		if err != nil {
			return eris.Wrap(err, "sqlite: check baseline")
		}
		if existing > 0 {
			return generic.ErrBaselineExists
		}

		now := s.timestamp()
		for _, eng := range engineers {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO baseline_engineers (id, contract_id, role, level, rating, unit_rate, start_date, end_date, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				idArg(int64(eng.ID)), contractID, eng.Role, eng.Level,
				decimalArg(eng.Rating), decimalArg(eng.UnitRate),
				eng.StartDate.String(), dateArg(eng.EndDate), now,
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert baseline engineer")
			}
		}
		for _, b := range billing {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO baseline_billing (contract_id, billing_month, amount, created_at)
				VALUES (?, ?, ?, ?)`,
				contractID, b.BillingMonth.String(), b.Amount.String(), now,
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert baseline billing")
			}
		}
		return nil
	})
}

// BaselineEngineers returns the baseline roster ordered by start date.
func (s *Store) BaselineEngineers(ctx context.Context, contractID contract.ContractID) ([]contract.BaselineEngineer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, role, level, rating, unit_rate, start_date, end_date
		FROM baseline_engineers
		WHERE contract_id = ?
		ORDER BY start_date, id`,
		contractID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query baseline engineers")
	}
	defer rows.Close()

	out := []contract.BaselineEngineer{}
	for rows.Next() {
		var (
			b                contract.BaselineEngineer
			rating, unitRate sql.NullString
			start            string
			end              sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.ContractID, &b.Role, &b.Level, &rating, &unitRate, &start, &end); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan baseline engineer")
		}
		b.Rating = parseNullDecimal(rating)
		b.UnitRate = parseNullDecimal(unitRate)
		b.StartDate = parseDate(start)
		b.EndDate = parseDatePtr(end)
		out = append(out, b)
	}
	return out, rows.Err()
}

// BaselineBilling returns the baseline billing schedule, newest month first.
func (s *Store) BaselineBilling(ctx context.Context, contractID contract.ContractID) ([]contract.BaselineBilling, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT contract_id, billing_month, amount
		FROM baseline_billing
		WHERE contract_id = ?
		ORDER BY billing_month DESC`,
		contractID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query baseline billing")
	}
	defer rows.Close()

	out := []contract.BaselineBilling{}
	for rows.Next() {
		var (
			b             contract.BaselineBilling
			month, amount string
		)
		if err := rows.Scan(&b.ContractID, &month, &amount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan baseline billing")
		}
		if b.BillingMonth, err = generic.ParseYearMonth(month); err != nil {
			return nil, eris.Wrap(err, "sqlite: baseline billing month")
		}
		b.Amount = generic.MustParseDecimal(amount)
		out = append(out, b)
	}
	return out, rows.Err()
}

// =============================================================================
// CHANGE REQUEST STORE
// =============================================================================

// SaveChangeRequest inserts or updates a change request. Status changes come
// from the approval workflow.
func (s *Store) SaveChangeRequest(ctx context.Context, cr contract.ChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.timestamp()
	if !cr.CreatedAt.IsZero() {
		createdAt = cr.CreatedAt.UTC().Format(timestampLayout)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO change_requests (id, contract_id, title, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status`,
		cr.ID, cr.ContractID, cr.Title, cr.Status, createdAt,
	)
	return eris.Wrap(err, "sqlite: save change request")
}

// ChangeRequests lists a contract's change requests by id.
func (s *Store) ChangeRequests(ctx context.Context, contractID contract.ContractID) ([]contract.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, title, status, created_at
		FROM change_requests
		WHERE contract_id = ?
		ORDER BY id`,
		contractID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query change requests")
	}
	defer rows.Close()

	out := []contract.ChangeRequest{}
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// ChangeRequest looks up one change request.
func (s *Store) ChangeRequest(ctx context.Context, id contract.ChangeRequestID) (contract.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, title, status, created_at
		FROM change_requests
		WHERE id = ?`,
		id,
	)
	cr, err := scanChangeRequest(row)
	if eris.Is(err, sql.ErrNoRows) {
		return contract.ChangeRequest{}, eris.Wrapf(generic.ErrChangeRequestNotFound, "sqlite: change request %d", id)
	}
	return cr, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChangeRequest(row scanner) (contract.ChangeRequest, error) {
	var (
		cr        contract.ChangeRequest
		createdAt string
	)
	if err := row.Scan(&cr.ID, &cr.ContractID, &cr.Title, &cr.Status, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return cr, err
		}
		return cr, eris.Wrap(err, "sqlite: scan change request")
	}
	cr.CreatedAt = parseTimestamp(createdAt)
	return cr, nil
}

// =============================================================================
// EVENT LOG
// =============================================================================

// AppendEvents inserts all events in one transaction.
func (s *Store) AppendEvents(ctx context.Context, resource []contract.ResourceEvent, billing []contract.BillingEvent) ([]contract.ResourceEvent, []contract.BillingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storedResource := make([]contract.ResourceEvent, len(resource))
	storedBilling := make([]contract.BillingEvent, len(billing))
	now := s.now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, ev := range resource {
			if ev.CreatedAt.IsZero() {
				ev.CreatedAt = now
			}
			id, err := s.insertResourceEvent(ctx, tx, ev.Row())
			if err != nil {
				return err
			}
			ev.ID = contract.EventID(id)
			storedResource[i] = ev
		}
		for i, ev := range billing {
			if ev.CreatedAt.IsZero() {
				ev.CreatedAt = now
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO billing_events (id, change_request_id, billing_month, delta_amount, description, type, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				idArg(int64(ev.ID)), ev.ChangeRequestID, ev.BillingMonth.String(), ev.DeltaAmount.String(),
				ev.Description, string(ev.Type), ev.CreatedAt.UTC().Format(timestampLayout),
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert billing event")
			}
			id, err := res.LastInsertId()
			if err != nil {
				return eris.Wrap(err, "sqlite: billing event id")
			}
			ev.ID = contract.EventID(id)
			storedBilling[i] = ev
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return storedResource, storedBilling, nil
}

func (s *Store) insertResourceEvent(ctx context.Context, db execer, r contract.ResourceEventRow) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO resource_events (
			id, change_request_id, action, engineer_id, role, level,
			rating_old, rating_new, unit_rate_old, unit_rate_new,
			start_date_old, start_date_new, end_date_old, end_date_new,
			effective_start, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idArg(int64(r.ID)), r.ChangeRequestID, string(r.Action), idArg(int64(r.EngineerID)), r.Role, r.Level,
		decimalArg(r.RatingOld), decimalArg(r.RatingNew), decimalArg(r.UnitRateOld), decimalArg(r.UnitRateNew),
		dateArg(r.StartDateOld), dateArg(r.StartDateNew), dateArg(r.EndDateOld), dateArg(r.EndDateNew),
		r.EffectiveStart.String(), r.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert resource event")
	}
	id, err := res.LastInsertId()
	return id, eris.Wrap(err, "sqlite: resource event id")
}

// ResourceEvents returns every resource event of the contract's change
// requests, whatever their status, in fold order.
func (s *Store) ResourceEvents(ctx context.Context, contractID contract.ContractID) ([]contract.ResourceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.change_request_id, e.action, e.engineer_id, e.role, e.level,
			e.rating_old, e.rating_new, e.unit_rate_old, e.unit_rate_new,
			e.start_date_old, e.start_date_new, e.end_date_old, e.end_date_new,
			e.effective_start, e.created_at
		FROM resource_events e
		JOIN change_requests cr ON cr.id = e.change_request_id
		WHERE cr.contract_id = ?
		ORDER BY e.effective_start, e.created_at, e.id`,
		contractID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query resource events")
	}
	defer rows.Close()

	out := []contract.ResourceEvent{}
	for rows.Next() {
		ev, err := scanResourceEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanResourceEvent(rows *sql.Rows) (contract.ResourceEvent, error) {
	var (
		r                                  contract.ResourceEventRow
		action                             string
		engineerID                         sql.NullInt64
		ratingOld, ratingNew               sql.NullString
		unitRateOld, unitRateNew           sql.NullString
		startOld, startNew, endOld, endNew sql.NullString
		effectiveStart, createdAt          string
	)
	err := rows.Scan(
		&r.ID, &r.ChangeRequestID, &action, &engineerID, &r.Role, &r.Level,
		&ratingOld, &ratingNew, &unitRateOld, &unitRateNew,
		&startOld, &startNew, &endOld, &endNew,
		&effectiveStart, &createdAt,
	)
	if err != nil {
		return contract.ResourceEvent{}, eris.Wrap(err, "sqlite: scan resource event")
	}

	r.Action = contract.Action(action)
	r.EngineerID = contract.EngineerID(engineerID.Int64)
	r.RatingOld = parseNullDecimal(ratingOld)
	r.RatingNew = parseNullDecimal(ratingNew)
	r.UnitRateOld = parseNullDecimal(unitRateOld)
	r.UnitRateNew = parseNullDecimal(unitRateNew)
	r.StartDateOld = parseDatePtr(startOld)
	r.StartDateNew = parseDatePtr(startNew)
	r.EndDateOld = parseDatePtr(endOld)
	r.EndDateNew = parseDatePtr(endNew)
	r.EffectiveStart = parseDate(effectiveStart)
	r.CreatedAt = parseTimestamp(createdAt)

	ev, err := r.Event()
	return ev, eris.Wrap(err, "sqlite: decode resource event")
}

// BillingEvents returns every billing event of the contract's change requests.
func (s *Store) BillingEvents(ctx context.Context, contractID contract.ContractID) ([]contract.BillingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.change_request_id, b.billing_month, b.delta_amount, b.description, b.type, b.created_at
		FROM billing_events b
		JOIN change_requests cr ON cr.id = b.change_request_id
		WHERE cr.contract_id = ?
		ORDER BY b.billing_month, b.id`,
		contractID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query billing events")
	}
	defer rows.Close()

	out := []contract.BillingEvent{}
	for rows.Next() {
		var (
			ev                          contract.BillingEvent
			month, delta, typ, created string
		)
		if err := rows.Scan(&ev.ID, &ev.ChangeRequestID, &month, &delta, &ev.Description, &typ, &created); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan billing event")
		}
		if ev.BillingMonth, err = generic.ParseYearMonth(month); err != nil {
			return nil, eris.Wrap(err, "sqlite: billing event month")
		}
		ev.DeltaAmount = generic.MustParseDecimal(delta)
		ev.Type = contract.BillingEventType(typ)
		ev.CreatedAt = parseTimestamp(created)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// =============================================================================
// LEGACY ENGINEERS & LINE ITEMS
// =============================================================================

// SaveLegacyEngineers inserts legacy roster rows.
func (s *Store) SaveLegacyEngineers(ctx context.Context, engineers []contract.LegacyEngineer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range engineers {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO legacy_engineers (id, contract_id, engineer_level, start_date, end_date,
					billing_type, rating, salary, hourly_rate, hours, subtotal)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				idArg(int64(e.ID)), e.ContractID, e.EngineerLevel, dateArg(e.StartDate), dateArg(e.EndDate),
				e.BillingType, decimalArg(e.Rating), decimalArg(e.Salary),
				decimalArg(e.HourlyRate), decimalArg(e.Hours), decimalArg(e.Subtotal),
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert legacy engineer")
			}
		}
		return nil
	})
}

// LegacyEngineers returns a contract's legacy rows ordered by start date.
func (s *Store) LegacyEngineers(ctx context.Context, contractID contract.ContractID) ([]contract.LegacyEngineer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, engineer_level, start_date, end_date,
			billing_type, rating, salary, hourly_rate, hours, subtotal
		FROM legacy_engineers
		WHERE contract_id = ?
		ORDER BY start_date IS NULL, start_date, id`,
		contractID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query legacy engineers")
	}
	defer rows.Close()

	out := []contract.LegacyEngineer{}
	for rows.Next() {
		var (
			e  contract.LegacyEngineer
			bf billingFields
		)
		if err := rows.Scan(&e.ID, &e.ContractID, &e.EngineerLevel, &bf.start, &bf.end,
			&e.BillingType, &bf.rating, &bf.salary, &bf.hourlyRate, &bf.hours, &bf.subtotal); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan legacy engineer")
		}
		e.StartDate, e.EndDate = parseDatePtr(bf.start), parseDatePtr(bf.end)
		e.Rating, e.Salary = parseNullDecimal(bf.rating), parseNullDecimal(bf.salary)
		e.HourlyRate, e.Hours, e.Subtotal = parseNullDecimal(bf.hourlyRate), parseNullDecimal(bf.hours), parseNullDecimal(bf.subtotal)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveLineItems inserts change request line items.
func (s *Store) SaveLineItems(ctx context.Context, items []contract.EngineerLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, it := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO cr_line_items (id, change_request_id, engineer_level, start_date, end_date,
					billing_type, rating, salary, hourly_rate, hours, subtotal)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				idArg(int64(it.ID)), it.ChangeRequestID, it.EngineerLevel, dateArg(it.StartDate), dateArg(it.EndDate),
				it.BillingType, decimalArg(it.Rating), decimalArg(it.Salary),
				decimalArg(it.HourlyRate), decimalArg(it.Hours), decimalArg(it.Subtotal),
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert line item")
			}
		}
		return nil
	})
}

// LineItems returns a change request's line items in id order.
func (s *Store) LineItems(ctx context.Context, changeRequestID contract.ChangeRequestID) ([]contract.EngineerLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, change_request_id, engineer_level, start_date, end_date,
			billing_type, rating, salary, hourly_rate, hours, subtotal
		FROM cr_line_items
		WHERE change_request_id = ?
		ORDER BY id`,
		changeRequestID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query line items")
	}
	defer rows.Close()

	out := []contract.EngineerLineItem{}
	for rows.Next() {
		var (
			it contract.EngineerLineItem
			bf billingFields
		)
		if err := rows.Scan(&it.ID, &it.ChangeRequestID, &it.EngineerLevel, &bf.start, &bf.end,
			&it.BillingType, &bf.rating, &bf.salary, &bf.hourlyRate, &bf.hours, &bf.subtotal); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan line item")
		}
		it.StartDate, it.EndDate = parseDatePtr(bf.start), parseDatePtr(bf.end)
		it.Rating, it.Salary = parseNullDecimal(bf.rating), parseNullDecimal(bf.salary)
		it.HourlyRate, it.Hours, it.Subtotal = parseNullDecimal(bf.hourlyRate), parseNullDecimal(bf.hours), parseNullDecimal(bf.subtotal)
		out = append(out, it)
	}
	return out, rows.Err()
}

// billingFields holds the nullable columns shared by legacy rows and line items.
type billingFields struct {
	start, end                                    sql.NullString
	rating, salary, hourlyRate, hours, subtotal sql.NullString
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset wipes all tables. For demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"resource_events", "billing_events", "cr_line_items", "change_requests",
		"baseline_engineers", "baseline_billing", "legacy_engineers",
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return eris.Wrapf(err, "sqlite: reset %s", t)
			}
		}
		// AUTOINCREMENT counters live in sqlite_sequence.
		if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence"); err != nil && !strings.Contains(err.Error(), "no such table") {
			return eris.Wrap(err, "sqlite: reset sequences")
		}
		return nil
	})
}

// Helper functions

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

// idArg stores zero ids as NULL so SQLite assigns one.
func idArg(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func decimalArg(nd decimal.NullDecimal) any {
	if p := generic.NullToString(nd); p != nil {
		return *p
	}
	return nil
}

func dateArg(tp *generic.TimePoint) any {
	if tp == nil || tp.IsZero() {
		return nil
	}
	return tp.String()
}

func parseNullDecimal(ns sql.NullString) decimal.NullDecimal {
	if !ns.Valid {
		return decimal.NullDecimal{}
	}
	return generic.SomeString(ns.String)
}

func parseDate(s string) generic.TimePoint {
	tp, _ := generic.ParseDate(s)
	return tp
}

func parseDatePtr(ns sql.NullString) *generic.TimePoint {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	tp, err := generic.ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &tp
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
