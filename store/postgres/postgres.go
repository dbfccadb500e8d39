// Package postgres implements contract.Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

//go:embed schema.sql
var schemaSQL string

// migrationLockID serializes concurrent Migrate calls across deploys.
const migrationLockID = 4921170

// Pool is the subset of *pgxpool.Pool used by the store. pgxmock's pool
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// Store implements contract.Store using pgxpool.
type Store struct {
	pool Pool
}

var _ contract.Store = (*Store)(nil)

// New connects a pooled Store.
func New(ctx context.Context, connString string, poolCfg *PoolConfig) (*Store, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Migrate applies the embedded schema under an advisory lock.
func (s *Store) Migrate(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "postgres.migrate"))

	if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "postgres: acquire migration lock")
	}
	defer func() {
		if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("postgres: failed to release migration lock", zap.Error(err))
		}
	}()

	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return eris.Wrap(err, "postgres: apply schema")
	}
	log.Info("schema applied")
	return nil
}

// =============================================================================
// BASELINE
// =============================================================================

// CaptureBaseline writes a contract's baseline in one transaction.
func (s *Store) CaptureBaseline(ctx context.Context, contractID contract.ContractID, engineers []contract.BaselineEngineer, billing []contract.BaselineBilling) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin baseline capture")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing int64
	err = tx.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM baseline_engineers WHERE contract_id = $1)
		     + (SELECT COUNT(*) FROM baseline_billing WHERE contract_id = $1)`,
		int64(contractID),
	).Scan(&existing)
	if err != nil {
		return eris.Wrap(err, "postgres: check baseline")
	}
	if existing > 0 {
		return generic.ErrBaselineExists
	}

	explicitIDs := false
	for _, eng := range engineers {
		explicitIDs = explicitIDs || eng.ID != 0
		_, err := tx.Exec(ctx, `
			INSERT INTO baseline_engineers (id, contract_id, role, level, rating, unit_rate, start_date, end_date)
			VALUES (COALESCE($1::bigint, nextval(pg_get_serial_sequence('baseline_engineers', 'id'))), $2, $3, $4, $5, $6, $7, $8)`,
			idArg(int64(eng.ID)), int64(contractID), eng.Role, eng.Level,
			decimalArg(eng.Rating), decimalArg(eng.UnitRate),
			eng.StartDate.Time, dateArg(eng.EndDate),
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert baseline engineer")
		}
	}
	if explicitIDs {
		if err := syncSequence(ctx, tx, "baseline_engineers"); err != nil {
			return err
		}
	}

	for _, b := range billing {
		_, err := tx.Exec(ctx, `
			INSERT INTO baseline_billing (contract_id, billing_month, amount)
			VALUES ($1, $2, $3)`,
			int64(contractID), b.BillingMonth.Start().Time, b.Amount.String(),
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert baseline billing")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit baseline capture")
}

// BaselineEngineers returns the baseline roster ordered by start date.
func (s *Store) BaselineEngineers(ctx context.Context, contractID contract.ContractID) ([]contract.BaselineEngineer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, contract_id, role, level, rating::text, unit_rate::text, start_date, end_date
		FROM baseline_engineers
		WHERE contract_id = $1
		ORDER BY start_date, id`,
		int64(contractID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query baseline engineers")
	}
	defer rows.Close()

	out := []contract.BaselineEngineer{}
	for rows.Next() {
		var (
			id, cid          int64
			b                contract.BaselineEngineer
			rating, unitRate pgtype.Text
			start, end       pgtype.Date
		)
		if err := rows.Scan(&id, &cid, &b.Role, &b.Level, &rating, &unitRate, &start, &end); err != nil {
			return nil, eris.Wrap(err, "postgres: scan baseline engineer")
		}
		b.ID = contract.EngineerID(id)
		b.ContractID = contract.ContractID(cid)
		b.Rating = textDecimal(rating)
		b.UnitRate = textDecimal(unitRate)
		b.StartDate = generic.DateOf(start.Time)
		b.EndDate = datePtr(end)
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate baseline engineers")
}

// BaselineBilling returns the baseline billing schedule, newest month first.
func (s *Store) BaselineBilling(ctx context.Context, contractID contract.ContractID) ([]contract.BaselineBilling, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT contract_id, billing_month, amount::text
		FROM baseline_billing
		WHERE contract_id = $1
		ORDER BY billing_month DESC`,
		int64(contractID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query baseline billing")
	}
	defer rows.Close()

	out := []contract.BaselineBilling{}
	for rows.Next() {
		var (
			cid    int64
			month  pgtype.Date
			amount string
		)
		if err := rows.Scan(&cid, &month, &amount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan baseline billing")
		}
		out = append(out, contract.BaselineBilling{
			ContractID:   contract.ContractID(cid),
			BillingMonth: generic.YearMonthOf(generic.DateOf(month.Time)),
			Amount:       generic.MustParseDecimal(amount),
		})
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate baseline billing")
}

// =============================================================================
// CHANGE REQUESTS
// =============================================================================

// SaveChangeRequest upserts a change request.
func (s *Store) SaveChangeRequest(ctx context.Context, cr contract.ChangeRequest) error {
	var createdAt any
	if !cr.CreatedAt.IsZero() {
		createdAt = cr.CreatedAt.UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO change_requests (id, contract_id, title, status, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, now()))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status`,
		int64(cr.ID), int64(cr.ContractID), cr.Title, cr.Status, createdAt,
	)
	return eris.Wrap(err, "postgres: save change request")
}

// ChangeRequests lists a contract's change requests by id.
func (s *Store) ChangeRequests(ctx context.Context, contractID contract.ContractID) ([]contract.ChangeRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, contract_id, title, status, created_at
		FROM change_requests
		WHERE contract_id = $1
		ORDER BY id`,
		int64(contractID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query change requests")
	}
	defer rows.Close()

	out := []contract.ChangeRequest{}
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan change request")
		}
		out = append(out, cr)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate change requests")
}

// ChangeRequest looks up one change request.
func (s *Store) ChangeRequest(ctx context.Context, id contract.ChangeRequestID) (contract.ChangeRequest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, contract_id, title, status, created_at
		FROM change_requests
		WHERE id = $1`,
		int64(id),
	)
	cr, err := scanChangeRequest(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return contract.ChangeRequest{}, eris.Wrapf(generic.ErrChangeRequestNotFound, "postgres: change request %d", id)
	}
	if err != nil {
		return contract.ChangeRequest{}, eris.Wrap(err, "postgres: get change request")
	}
	return cr, nil
}

func scanChangeRequest(row pgx.Row) (contract.ChangeRequest, error) {
	var (
		id, cid int64
		cr      contract.ChangeRequest
	)
	if err := row.Scan(&id, &cid, &cr.Title, &cr.Status, &cr.CreatedAt); err != nil {
		return cr, err
	}
	cr.ID = contract.ChangeRequestID(id)
	cr.ContractID = contract.ContractID(cid)
	return cr, nil
}

// =============================================================================
// EVENT LOG
// =============================================================================

// AppendEvents inserts all events in one transaction and returns them with
// their assigned ids and creation times.
func (s *Store) AppendEvents(ctx context.Context, resource []contract.ResourceEvent, billing []contract.BillingEvent) ([]contract.ResourceEvent, []contract.BillingEvent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: begin append")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	storedResource := make([]contract.ResourceEvent, len(resource))
	explicitResource := false
	for i, ev := range resource {
		explicitResource = explicitResource || ev.ID != 0
		r := ev.Row()
		var createdAt any
		if !r.CreatedAt.IsZero() {
			createdAt = r.CreatedAt.UTC()
		}

		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO resource_events (
				id, change_request_id, action, engineer_id, role, level,
				rating_old, rating_new, unit_rate_old, unit_rate_new,
				start_date_old, start_date_new, end_date_old, end_date_new,
				effective_start, created_at
			) VALUES (
				COALESCE($1::bigint, nextval(pg_get_serial_sequence('resource_events', 'id'))),
				$2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
				COALESCE($16::timestamptz, now())
			)
			RETURNING id, created_at`,
			idArg(int64(r.ID)), int64(r.ChangeRequestID), string(r.Action), idArg(int64(r.EngineerID)), r.Role, r.Level,
			decimalArg(r.RatingOld), decimalArg(r.RatingNew), decimalArg(r.UnitRateOld), decimalArg(r.UnitRateNew),
			dateArg(r.StartDateOld), dateArg(r.StartDateNew), dateArg(r.EndDateOld), dateArg(r.EndDateNew),
			r.EffectiveStart.Time, createdAt,
		).Scan(&id, &ev.CreatedAt)
		if err != nil {
			return nil, nil, eris.Wrap(err, "postgres: insert resource event")
		}
		ev.ID = contract.EventID(id)
		storedResource[i] = ev
	}
	if explicitResource {
		if err := syncSequence(ctx, tx, "resource_events"); err != nil {
			return nil, nil, err
		}
	}

	storedBilling := make([]contract.BillingEvent, len(billing))
	for i, ev := range billing {
		var createdAt any
		if !ev.CreatedAt.IsZero() {
			createdAt = ev.CreatedAt.UTC()
		}
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO billing_events (change_request_id, billing_month, delta_amount, description, type, created_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, now()))
			RETURNING id, created_at`,
			int64(ev.ChangeRequestID), ev.BillingMonth.Start().Time, ev.DeltaAmount.String(),
			ev.Description, string(ev.Type), createdAt,
		).Scan(&id, &ev.CreatedAt)
		if err != nil {
			return nil, nil, eris.Wrap(err, "postgres: insert billing event")
		}
		ev.ID = contract.EventID(id)
		storedBilling[i] = ev
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: commit append")
	}
	return storedResource, storedBilling, nil
}

// ResourceEvents returns every resource event of the contract's change
// requests, whatever their status, in fold order.
func (s *Store) ResourceEvents(ctx context.Context, contractID contract.ContractID) ([]contract.ResourceEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.change_request_id, e.action, e.engineer_id, e.role, e.level,
			e.rating_old::text, e.rating_new::text, e.unit_rate_old::text, e.unit_rate_new::text,
			e.start_date_old, e.start_date_new, e.end_date_old, e.end_date_new,
			e.effective_start, e.created_at
		FROM resource_events e
		JOIN change_requests cr ON cr.id = e.change_request_id
		WHERE cr.contract_id = $1
		ORDER BY e.effective_start, e.created_at, e.id`,
		int64(contractID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query resource events")
	}
	defer rows.Close()

	out := []contract.ResourceEvent{}
	for rows.Next() {
		var (
			id, crID                           int64
			action                             string
			engineerID                         pgtype.Int8
			r                                  contract.ResourceEventRow
			ratingOld, ratingNew               pgtype.Text
			unitRateOld, unitRateNew           pgtype.Text
			startOld, startNew, endOld, endNew pgtype.Date
			effectiveStart                     pgtype.Date
		)
		err := rows.Scan(&id, &crID, &action, &engineerID, &r.Role, &r.Level,
			&ratingOld, &ratingNew, &unitRateOld, &unitRateNew,
			&startOld, &startNew, &endOld, &endNew,
			&effectiveStart, &r.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan resource event")
		}
		r.ID = contract.EventID(id)
		r.ChangeRequestID = contract.ChangeRequestID(crID)
		r.Action = contract.Action(action)
		r.EngineerID = contract.EngineerID(engineerID.Int64)
		r.RatingOld, r.RatingNew = textDecimal(ratingOld), textDecimal(ratingNew)
		r.UnitRateOld, r.UnitRateNew = textDecimal(unitRateOld), textDecimal(unitRateNew)
		r.StartDateOld, r.StartDateNew = datePtr(startOld), datePtr(startNew)
		r.EndDateOld, r.EndDateNew = datePtr(endOld), datePtr(endNew)
		r.EffectiveStart = generic.DateOf(effectiveStart.Time)

		ev, err := r.Event()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: decode resource event")
		}
		out = append(out, ev)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate resource events")
}

// BillingEvents returns every billing event of the contract's change requests.
func (s *Store) BillingEvents(ctx context.Context, contractID contract.ContractID) ([]contract.BillingEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.change_request_id, b.billing_month, b.delta_amount::text, b.description, b.type, b.created_at
		FROM billing_events b
		JOIN change_requests cr ON cr.id = b.change_request_id
		WHERE cr.contract_id = $1
		ORDER BY b.billing_month, b.id`,
		int64(contractID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query billing events")
	}
	defer rows.Close()

	out := []contract.BillingEvent{}
	for rows.Next() {
		var (
			id, crID    int64
			month       pgtype.Date
			delta, typ  string
			ev          contract.BillingEvent
		)
		if err := rows.Scan(&id, &crID, &month, &delta, &ev.Description, &typ, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan billing event")
		}
		ev.ID = contract.EventID(id)
		ev.ChangeRequestID = contract.ChangeRequestID(crID)
		ev.BillingMonth = generic.YearMonthOf(generic.DateOf(month.Time))
		ev.DeltaAmount = generic.MustParseDecimal(delta)
		ev.Type = contract.BillingEventType(typ)
		out = append(out, ev)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate billing events")
}

// =============================================================================
// LEGACY ENGINEERS & LINE ITEMS
// =============================================================================

// SaveLegacyEngineers inserts legacy roster rows.
func (s *Store) SaveLegacyEngineers(ctx context.Context, engineers []contract.LegacyEngineer) error {
	rows := make([]billingRow, len(engineers))
	for i, e := range engineers {
		rows[i] = billingRow{
			id: int64(e.ID), owner: int64(e.ContractID), level: e.EngineerLevel,
			start: e.StartDate, end: e.EndDate, billingType: e.BillingType,
			rating: e.Rating, salary: e.Salary, hourlyRate: e.HourlyRate, hours: e.Hours, subtotal: e.Subtotal,
		}
	}
	return s.insertBillingRows(ctx, "legacy_engineers", "contract_id", rows)
}

// LegacyEngineers returns a contract's legacy rows ordered by start date.
func (s *Store) LegacyEngineers(ctx context.Context, contractID contract.ContractID) ([]contract.LegacyEngineer, error) {
	rows, err := s.queryBillingRows(ctx, "legacy_engineers", "contract_id", int64(contractID),
		"ORDER BY start_date NULLS LAST, id")
	if err != nil {
		return nil, err
	}
	out := make([]contract.LegacyEngineer, len(rows))
	for i, r := range rows {
		out[i] = contract.LegacyEngineer{
			ID: contract.EngineerID(r.id), ContractID: contract.ContractID(r.owner), EngineerLevel: r.level,
			StartDate: r.start, EndDate: r.end, BillingType: r.billingType,
			Rating: r.rating, Salary: r.salary, HourlyRate: r.hourlyRate, Hours: r.hours, Subtotal: r.subtotal,
		}
	}
	return out, nil
}

// SaveLineItems inserts change request line items.
func (s *Store) SaveLineItems(ctx context.Context, items []contract.EngineerLineItem) error {
	rows := make([]billingRow, len(items))
	for i, it := range items {
		rows[i] = billingRow{
			id: int64(it.ID), owner: int64(it.ChangeRequestID), level: it.EngineerLevel,
			start: it.StartDate, end: it.EndDate, billingType: it.BillingType,
			rating: it.Rating, salary: it.Salary, hourlyRate: it.HourlyRate, hours: it.Hours, subtotal: it.Subtotal,
		}
	}
	return s.insertBillingRows(ctx, "cr_line_items", "change_request_id", rows)
}

// LineItems returns a change request's line items in id order.
func (s *Store) LineItems(ctx context.Context, changeRequestID contract.ChangeRequestID) ([]contract.EngineerLineItem, error) {
	rows, err := s.queryBillingRows(ctx, "cr_line_items", "change_request_id", int64(changeRequestID), "ORDER BY id")
	if err != nil {
		return nil, err
	}
	out := make([]contract.EngineerLineItem, len(rows))
	for i, r := range rows {
		out[i] = contract.EngineerLineItem{
			ID: contract.LineItemID(r.id), ChangeRequestID: contract.ChangeRequestID(r.owner), EngineerLevel: r.level,
			StartDate: r.start, EndDate: r.end, BillingType: r.billingType,
			Rating: r.rating, Salary: r.salary, HourlyRate: r.hourlyRate, Hours: r.hours, Subtotal: r.subtotal,
		}
	}
	return out, nil
}

// billingRow is the column set shared by legacy_engineers and cr_line_items.
type billingRow struct {
	id, owner                                   int64
	level, billingType                          string
	start, end                                  *generic.TimePoint
	rating, salary, hourlyRate, hours, subtotal decimal.NullDecimal
}

// insertBillingRows writes rows into table; table and ownerColumn are
// package constants, never caller input.
func (s *Store) insertBillingRows(ctx context.Context, table, ownerColumn string, rows []billingRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrapf(err, "postgres: begin insert %s", table)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	explicitIDs := false
	for _, r := range rows {
		explicitIDs = explicitIDs || r.id != 0
		_, err := tx.Exec(ctx, `
			INSERT INTO `+table+` (id, `+ownerColumn+`, engineer_level, start_date, end_date,
				billing_type, rating, salary, hourly_rate, hours, subtotal)
			VALUES (COALESCE($1::bigint, nextval(pg_get_serial_sequence('`+table+`', 'id'))),
				$2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			idArg(r.id), r.owner, r.level, dateArg(r.start), dateArg(r.end), r.billingType,
			decimalArg(r.rating), decimalArg(r.salary), decimalArg(r.hourlyRate), decimalArg(r.hours), decimalArg(r.subtotal),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert %s", table)
		}
	}
	if explicitIDs {
		if err := syncSequence(ctx, tx, table); err != nil {
			return err
		}
	}
	return eris.Wrapf(tx.Commit(ctx), "postgres: commit insert %s", table)
}

func (s *Store) queryBillingRows(ctx context.Context, table, ownerColumn string, owner int64, orderBy string) ([]billingRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, `+ownerColumn+`, engineer_level, start_date, end_date, billing_type,
			rating::text, salary::text, hourly_rate::text, hours::text, subtotal::text
		FROM `+table+`
		WHERE `+ownerColumn+` = $1
		`+orderBy,
		owner,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
	}
	defer rows.Close()

	out := []billingRow{}
	for rows.Next() {
		var (
			r                                           billingRow
			start, end                                  pgtype.Date
			rating, salary, hourlyRate, hours, subtotal pgtype.Text
		)
		if err := rows.Scan(&r.id, &r.owner, &r.level, &start, &end, &r.billingType,
			&rating, &salary, &hourlyRate, &hours, &subtotal); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", table)
		}
		r.start, r.end = datePtr(start), datePtr(end)
		r.rating, r.salary = textDecimal(rating), textDecimal(salary)
		r.hourlyRate, r.hours, r.subtotal = textDecimal(hourlyRate), textDecimal(hours), textDecimal(subtotal)
		out = append(out, r)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: iterate %s", table)
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset truncates every table. For demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		TRUNCATE resource_events, billing_events, cr_line_items, change_requests,
			baseline_engineers, baseline_billing, legacy_engineers
		RESTART IDENTITY CASCADE`)
	return eris.Wrap(err, "postgres: reset")
}

// syncSequence moves a serial past explicitly inserted ids.
func syncSequence(ctx context.Context, tx pgx.Tx, table string) error {
	_, err := tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('`+table+`', 'id'),
			GREATEST((SELECT COALESCE(MAX(id), 0) FROM `+table+`), 1))`)
	return eris.Wrapf(err, "postgres: sync %s sequence", table)
}

// Helper functions

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
	return tp.Time
}

func textDecimal(t pgtype.Text) decimal.NullDecimal {
	if !t.Valid {
		return decimal.NullDecimal{}
	}
	return generic.SomeString(t.String)
}

func datePtr(d pgtype.Date) *generic.TimePoint {
	if !d.Valid {
		return nil
	}
	tp := generic.DateOf(d.Time)
	return &tp
}
