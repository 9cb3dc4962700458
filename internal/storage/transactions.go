package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oskarw/kassa/internal/common"
	"github.com/oskarw/kassa/internal/model"
)

const transactionColumns = "id, verification_id, date, description, amount, category_id, confidence, method"

// SaveTransactions persists a batch of imported transactions and returns the
// number actually inserted. A transaction whose verification_id is already
// present is silently skipped, so re-importing the same statement is safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, verification_id, date, description, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(verification_id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		if txn.ID == "" || txn.VerificationID == "" {
			return 0, fmt.Errorf("transaction is missing an identifier")
		}
		res, execErr := stmt.ExecContext(ctx,
			txn.ID, txn.VerificationID, txn.Date, txn.Description, txn.Amount.String())
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
		}
		rows, raErr := res.RowsAffected()
		if raErr != nil {
			return 0, fmt.Errorf("failed to read insert result: %w", raErr)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

// GetUncategorizedTransactions returns all transactions without a category,
// oldest first.
func (s *SQLiteStorage) GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE category_id IS NULL
		ORDER BY date, id`)
}

// GetClassifiedTransactions returns all transactions with a confirmed
// category, oldest first. This is the training set for the learning
// strategies.
func (s *SQLiteStorage) GetClassifiedTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE category_id IS NOT NULL
		ORDER BY date, id`)
}

// GetTransactionByID returns the transaction with the given ID, or
// common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// AssignCategory records one classification event. Category, confidence and
// method are written in a single statement, so a transaction is never left
// with a category but no confidence or the other way around.
func (s *SQLiteStorage) AssignCategory(ctx context.Context, transactionID string, categoryID int64, confidence float64, method model.ClassificationMethod) error {
	if !method.Valid() {
		return fmt.Errorf("unknown classification method %q", method)
	}
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("confidence must be in [0,1], got %.2f", confidence)
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE id = ?", categoryID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("category %d: %w", categoryID, common.ErrNotFound)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?, confidence = ?, method = ?
		WHERE id = ?`,
		categoryID, confidence, string(method), transactionID)
	if err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn    model.Transaction
		amount string
		method sql.NullString
	)
	err := row.Scan(
		&txn.ID, &txn.VerificationID, &txn.Date, &txn.Description,
		&amount, &txn.CategoryID, &txn.Confidence, &method,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s has unparsable amount %q: %w", txn.ID, amount, err)
	}
	if method.Valid {
		m := model.ClassificationMethod(method.String)
		txn.Method = &m
	}
	return &txn, nil
}
