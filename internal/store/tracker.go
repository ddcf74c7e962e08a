package store

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
	Records   int
}

// ImportBatch is the set of records decoded from one import file.
type ImportBatch struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	Goals        []model.Goal
	BudgetItems  []model.BudgetItem
	Settings     *model.UserSettings
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (s *Store) GetTrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes, records FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Records); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveImport stores every record of a batch and its file tracking info in
// one transaction.
func (s *Store) SaveImport(ctx context.Context, b ImportBatch, path string, fi FileInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range b.Accounts {
		if err := s.saveAccount(ctx, tx, a); err != nil {
			return fmt.Errorf("account %q: %w", a.ID, err)
		}
	}
	for _, t := range b.Transactions {
		if err := s.saveTransaction(ctx, tx, t); err != nil {
			return fmt.Errorf("transaction %q: %w", t.ID, err)
		}
	}
	for _, g := range b.Goals {
		if err := s.saveGoal(ctx, tx, g); err != nil {
			return fmt.Errorf("goal %q: %w", g.ID, err)
		}
	}
	for _, item := range b.BudgetItems {
		if err := s.saveBudgetItem(ctx, tx, item); err != nil {
			return fmt.Errorf("budget item %q: %w", item.ID, err)
		}
	}
	if b.Settings != nil {
		if err := s.saveSettings(ctx, tx, *b.Settings); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, records, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET mtime_ns = excluded.mtime_ns, size_bytes = excluded.size_bytes,
			records = excluded.records, imported_at = excluded.imported_at`),
		path, fi.MtimeNs, fi.SizeBytes, fi.Records, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFileTracker removes a file tracking entry so the file is imported again.
func (s *Store) DeleteFileTracker(ctx context.Context, filePath string) error {
	_, err := s.db.ExecContext(ctx, s.q("DELETE FROM file_tracker WHERE file_path = ?"), filePath)
	return err
}
