package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// ErrBalanceMismatch is returned by Commit when the balance derived from the
// stored rows differs from the outcome's balance, which means the account
// changed between LoadAccount and Commit.
var ErrBalanceMismatch = errors.New("derived balance does not match import outcome")

// Transaction is a stored, imported transaction.
type Transaction struct {
	ID          int64
	AccountID   string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Merchant    string
	Category    string
	Balance     *decimal.Decimal
	Reference   string
	Fingerprint string
	BatchID     string
	SourceLine  int
}

// Commit writes every accepted row of out and the re-derived account balance
// in one transaction. Nothing is written if any row fails.
func (s *Store) Commit(ctx context.Context, batchID string, out *model.ImportOutcome) error {
	return s.ExecTx(ctx, func(tx *Store) error {
		if _, err := tx.Account(ctx, out.AccountID); err != nil {
			return err
		}

		for _, a := range out.Inserted {
			if err := tx.insert(ctx, out.AccountID, batchID, a); err != nil {
				return err
			}
		}

		balance, err := tx.refreshBalance(ctx, out.AccountID)
		if err != nil {
			return err
		}
		if !balance.Equal(out.Balance) {
			return fmt.Errorf("%w: stored %s, outcome %s", ErrBalanceMismatch, balance.StringFixed(2), out.Balance.StringFixed(2))
		}
		return nil
	})
}

func (s *Store) insert(ctx context.Context, accountID, batchID string, a model.Accepted) error {
	c := a.Candidate

	var categoryID sql.NullInt64
	if a.CategoryID != 0 {
		categoryID = sql.NullInt64{Int64: a.CategoryID, Valid: true}
	}
	var balance decimal.NullDecimal
	if c.Balance != nil {
		balance = decimal.NullDecimal{Decimal: *c.Balance, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			account_id, date, description, amount, merchant, category_id,
			balance, reference, fingerprint, batch_id, source_line
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, accountID, c.DateString(), c.Description, c.Amount, c.Merchant, categoryID,
		balance, c.Reference, a.Fingerprint, batchID, c.Line)
	if err != nil {
		var sqliteErr sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite.ErrConstraintUnique {
			return fmt.Errorf("%w: line %d (%s)", ErrDuplicateFingerprint, c.Line, a.Fingerprint)
		}
		return fmt.Errorf("inserting line %d: %w", c.Line, err)
	}
	return nil
}

// Transactions lists an account's stored transactions by date, then insertion
// order.
func (s *Store) Transactions(ctx context.Context, accountID string) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.account_id, t.date, t.description, t.amount, t.merchant,
			COALESCE(c.name, ''), t.balance, t.reference, t.fingerprint, t.batch_id, t.source_line
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.account_id = ?
		ORDER BY t.date, t.id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		var date string
		var balance decimal.NullDecimal
		err := rows.Scan(&t.ID, &t.AccountID, &date, &t.Description, &t.Amount, &t.Merchant,
			&t.Category, &balance, &t.Reference, &t.Fingerprint, &t.BatchID, &t.SourceLine)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("parsing date of transaction %d: %w", t.ID, err)
		}
		if balance.Valid {
			b := balance.Decimal
			t.Balance = &b
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
