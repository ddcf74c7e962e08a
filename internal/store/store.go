// Package store persists accounts, transactions, budget items, goals and
// settings in SQLite (default) or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/theirongolddev/cashpulse/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQL-backed data store.
type Store struct {
	db     *sql.DB
	driver string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens or creates the database. For sqlite, dsn is a file path.
func Open(driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		if dir := filepath.Dir(dsn); dir != "" && dsn != ":memory:" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("creating data dir: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unknown driver %q: %w", driver, model.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// q rewrites ? placeholders into the driver's syntax.
func (s *Store) q(query string) string {
	return Rebind(s.driver, query)
}

// Rebind converts ? placeholders to $1, $2, ... for postgres.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Accounts returns every account ordered by id.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, available_balance, status FROM accounts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var status string
		if err := rows.Scan(&a.ID, &a.Name, &a.AvailableBalance, &status); err != nil {
			return nil, err
		}
		a.Status = model.AccountStatus(status)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// TransactionsBetween returns transactions dated within [since, until),
// ordered by date then id. A zero bound is open.
func (s *Store) TransactionsBetween(ctx context.Context, since, until time.Time) ([]model.Transaction, error) {
	query := "SELECT id, account_id, amount, tx_date, description, category FROM transactions WHERE 1=1"
	var args []any
	if !since.IsZero() {
		query += " AND tx_date >= ?"
		args = append(args, formatDate(since))
	}
	if !until.IsZero() {
		query += " AND tx_date < ?"
		args = append(args, formatDate(until))
	}
	query += " ORDER BY tx_date, id"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var date string
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Amount, &date, &tx.Description, &tx.Category); err != nil {
			return nil, err
		}
		tx.Date = parseDate(date)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Goals returns goals ordered by priority, most important first.
func (s *Store) Goals(ctx context.Context) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, target, saved, monthly_allocation, due_date, priority
		FROM goals ORDER BY priority, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		var due string
		if err := rows.Scan(&g.ID, &g.Name, &g.Target, &g.Saved, &g.MonthlyAllocation, &due, &g.Priority); err != nil {
			return nil, err
		}
		g.DueDate = parseDate(due)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Goal returns a single goal or ErrNotFound.
func (s *Store) Goal(ctx context.Context, id string) (model.Goal, error) {
	var g model.Goal
	var due string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, name, target, saved, monthly_allocation, due_date, priority
		FROM goals WHERE id = ?`), id).Scan(&g.ID, &g.Name, &g.Target, &g.Saved, &g.MonthlyAllocation, &due, &g.Priority)
	if errors.Is(err, sql.ErrNoRows) {
		return g, fmt.Errorf("goal %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return g, err
	}
	g.DueDate = parseDate(due)
	return g, nil
}

// BudgetItems returns every budget item ordered by id.
func (s *Store) BudgetItems(ctx context.Context) ([]model.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, frequency, amount, days_per_week, budget_group, parent_category
		FROM budget_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.BudgetItem
	for rows.Next() {
		var item model.BudgetItem
		var freq, group string
		if err := rows.Scan(&item.ID, &item.Name, &freq, &item.Amount, &item.DaysPerWeek, &group, &item.ParentCategory); err != nil {
			return nil, err
		}
		item.Frequency = model.Frequency(freq)
		item.Group = model.BudgetGroup(group)
		items = append(items, item)
	}
	return items, rows.Err()
}

// Settings returns the stored user settings, or the defaults when none are saved.
func (s *Store) Settings(ctx context.Context) (model.UserSettings, error) {
	var us model.UserSettings
	var cadence, method, strategy string
	err := s.db.QueryRowContext(ctx, `SELECT payday_of_month, cadence, budget_method, needs_pct, wants_pct, savings_pct, strategy
		FROM user_settings WHERE id = 1`).Scan(&us.PaydayOfMonth, &cadence, &method, &us.NeedsPct, &us.WantsPct, &us.SavingsPct, &strategy)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return us, err
	}
	us.Cadence = model.Cadence(cadence)
	us.BudgetMethod = model.BudgetMethod(method)
	us.Strategy = model.Strategy(strategy)
	return us, nil
}

// UpdateGoalAllocation writes a goal's new allocation and due date.
func (s *Store) UpdateGoalAllocation(ctx context.Context, id string, allocation int64, due time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE goals SET monthly_allocation = ?, due_date = ?, updated_at = ? WHERE id = ?`),
		allocation, formatDate(due), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("goal %q: %w", id, ErrNotFound)
	}
	return nil
}

// SaveAccount inserts or updates an account.
func (s *Store) SaveAccount(ctx context.Context, a model.Account) error {
	return s.saveAccount(ctx, s.db, a)
}

// SaveTransaction inserts or updates a transaction.
func (s *Store) SaveTransaction(ctx context.Context, tx model.Transaction) error {
	return s.saveTransaction(ctx, s.db, tx)
}

// SaveGoal inserts or updates a goal.
func (s *Store) SaveGoal(ctx context.Context, g model.Goal) error {
	return s.saveGoal(ctx, s.db, g)
}

// SaveBudgetItem inserts or updates a budget item.
func (s *Store) SaveBudgetItem(ctx context.Context, item model.BudgetItem) error {
	return s.saveBudgetItem(ctx, s.db, item)
}

// SaveSettings replaces the stored user settings.
func (s *Store) SaveSettings(ctx context.Context, us model.UserSettings) error {
	return s.saveSettings(ctx, s.db, us)
}

func (s *Store) saveAccount(ctx context.Context, ex execer, a model.Account) error {
	_, err := ex.ExecContext(ctx, s.q(`INSERT INTO accounts (id, name, available_balance, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			available_balance = excluded.available_balance, status = excluded.status`),
		a.ID, a.Name, a.AvailableBalance, string(a.Status))
	return err
}

func (s *Store) saveTransaction(ctx context.Context, ex execer, tx model.Transaction) error {
	_, err := ex.ExecContext(ctx, s.q(`INSERT INTO transactions (id, account_id, amount, tx_date, description, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET account_id = excluded.account_id, amount = excluded.amount,
			tx_date = excluded.tx_date, description = excluded.description, category = excluded.category`),
		tx.ID, tx.AccountID, tx.Amount, formatDate(tx.Date), tx.Description, tx.Category)
	return err
}

func (s *Store) saveGoal(ctx context.Context, ex execer, g model.Goal) error {
	_, err := ex.ExecContext(ctx, s.q(`INSERT INTO goals (id, name, target, saved, monthly_allocation, due_date, priority, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, target = excluded.target, saved = excluded.saved,
			monthly_allocation = excluded.monthly_allocation, due_date = excluded.due_date,
			priority = excluded.priority, updated_at = excluded.updated_at`),
		g.ID, g.Name, g.Target, g.Saved, g.MonthlyAllocation, formatDate(g.DueDate), g.Priority,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) saveBudgetItem(ctx context.Context, ex execer, item model.BudgetItem) error {
	_, err := ex.ExecContext(ctx, s.q(`INSERT INTO budget_items (id, name, frequency, amount, days_per_week, budget_group, parent_category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, frequency = excluded.frequency, amount = excluded.amount,
			days_per_week = excluded.days_per_week, budget_group = excluded.budget_group,
			parent_category = excluded.parent_category`),
		item.ID, item.Name, string(item.Frequency), item.Amount, item.DaysPerWeek, string(item.Group), item.ParentCategory)
	return err
}

func (s *Store) saveSettings(ctx context.Context, ex execer, us model.UserSettings) error {
	_, err := ex.ExecContext(ctx, s.q(`INSERT INTO user_settings (id, payday_of_month, cadence, budget_method, needs_pct, wants_pct, savings_pct, strategy)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payday_of_month = excluded.payday_of_month, cadence = excluded.cadence,
			budget_method = excluded.budget_method, needs_pct = excluded.needs_pct,
			wants_pct = excluded.wants_pct, savings_pct = excluded.savings_pct, strategy = excluded.strategy`),
		us.PaydayOfMonth, string(us.Cadence), string(us.BudgetMethod), us.NeedsPct, us.WantsPct, us.SavingsPct, string(us.Strategy))
	return err
}

// Counts reports how many rows each table holds.
type Counts struct {
	Accounts     int
	Transactions int
	Goals        int
	BudgetItems  int
	Files        int
}

// Count returns row counts for the summary view.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	var c Counts
	for _, t := range []struct {
		table string
		dst   *int
	}{
		{"accounts", &c.Accounts},
		{"transactions", &c.Transactions},
		{"goals", &c.Goals},
		{"budget_items", &c.BudgetItems},
		{"file_tracker", &c.Files},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return c, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
